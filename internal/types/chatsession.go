package types

import (
  "time"

  "github.com/google/uuid"
)

// DefaultSessionTitle is used when a session is created without a title.
const DefaultSessionTitle = "New Chat"

// MaxTitleLength bounds session titles on create and rename.
const MaxTitleLength = 100

// SessionListLimit caps how many sessions the history listing returns.
const SessionListLimit = 50

type ChatSession struct {
  ID          uuid.UUID         `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  Title       string            `gorm:"column:title;not null" json:"title"`
  CreatedAt   time.Time         `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt   time.Time         `gorm:"not null;default:now()" json:"updated_at"`
}

func (ChatSession) TableName() string {
  return "chat_session"
}
