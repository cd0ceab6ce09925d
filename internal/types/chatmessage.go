package types

import (
  "time"

  "github.com/google/uuid"
)

const (
  RoleUser        = "user"
  RoleAssistant   = "assistant"
)

const (
  MessageTypeText   = "text"
  MessageTypeImage  = "image"
)

type ChatMessage struct {
  ID          uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  ChatID      uuid.UUID       `gorm:"column:chat_id;index;not null" json:"chat_id"`
  Role        string          `gorm:"column:role;not null" json:"role"`
  Content     string          `gorm:"column:content;not null" json:"content"`
  Type        string          `gorm:"column:type;not null;default:text" json:"type"`
  ImageURL    *string         `gorm:"column:image_url" json:"image_url,omitempty"`
  CreatedAt   time.Time       `gorm:"not null;default:now()" json:"created_at"`
}

func (ChatMessage) TableName() string {
  return "chat_message"
}
