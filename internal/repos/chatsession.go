package repos

import (
    "context"
    "time"

    "github.com/google/uuid"
    "gorm.io/gorm"

    "github.com/wavelength-chat/wavelength-backend/internal/logger"
    "github.com/wavelength-chat/wavelength-backend/internal/types"
)

type ChatSessionRepo interface {
    CreateSession(ctx context.Context, tx *gorm.DB, session *types.ChatSession) (*types.ChatSession, error)
    GetSessionByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ChatSession, error)
    ListSessions(ctx context.Context, tx *gorm.DB, limit int) ([]types.ChatSession, error)
    UpdateTitle(ctx context.Context, tx *gorm.DB, id uuid.UUID, title string) (*types.ChatSession, error)
    TouchSession(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
    DeleteSession(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type chatSessionRepo struct {
    db      *gorm.DB
    log     *logger.Logger
}

func NewChatSessionRepo(db *gorm.DB, baseLog *logger.Logger) ChatSessionRepo {
    return &chatSessionRepo{
        db: db,
        log: baseLog.With("repo", "ChatSessionRepo"),
    }
}

func (csr *chatSessionRepo) CreateSession(ctx context.Context, tx *gorm.DB, session *types.ChatSession) (*types.ChatSession, error) {
    if tx == nil {
        tx = csr.db
    }
    if session.ID == uuid.Nil {
        session.ID = uuid.New()
    }
    if err := tx.WithContext(ctx).Create(session).Error; err != nil {
        csr.log.Error("failed to create chat session", "error", err)
        return nil, err
    }
    return session, nil
}

func (csr *chatSessionRepo) GetSessionByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ChatSession, error) {
    if tx == nil {
        tx = csr.db
    }
    var s types.ChatSession
    if err := tx.WithContext(ctx).
        Where("id = ?", id).
        First(&s).Error; err != nil {
        return nil, err
    }
    return &s, nil
}

func (csr *chatSessionRepo) ListSessions(ctx context.Context, tx *gorm.DB, limit int) ([]types.ChatSession, error) {
    if tx == nil {
        tx = csr.db
    }
    var sessions []types.ChatSession
    if err := tx.WithContext(ctx).
        Order("updated_at DESC").
        Limit(limit).
        Find(&sessions).Error; err != nil {
        csr.log.Error("failed to list chat sessions", "error", err)
        return nil, err
    }
    return sessions, nil
}

func (csr *chatSessionRepo) UpdateTitle(ctx context.Context, tx *gorm.DB, id uuid.UUID, title string) (*types.ChatSession, error) {
    if tx == nil {
        tx = csr.db
    }
    var s types.ChatSession
    if err := tx.WithContext(ctx).
        Where("id = ?", id).
        First(&s).Error; err != nil {
        return nil, err
    }
    s.Title = title
    s.UpdatedAt = time.Now().UTC()
    if err := tx.WithContext(ctx).
        Model(&types.ChatSession{}).
        Where("id = ?", id).
        Updates(map[string]interface{}{"title": s.Title, "updated_at": s.UpdatedAt}).Error; err != nil {
        csr.log.Error("failed to update chat session title", "error", err)
        return nil, err
    }
    return &s, nil
}

func (csr *chatSessionRepo) TouchSession(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
    if tx == nil {
        tx = csr.db
    }
    now := time.Now().UTC()
    if err := tx.WithContext(ctx).
        Model(&types.ChatSession{}).
        Where("id = ?", id).
        Update("updated_at", &now).Error; err != nil {
        return err
    }
    return nil
}

func (csr *chatSessionRepo) DeleteSession(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
    if tx == nil {
        tx = csr.db
    }
    // Messages go with the session via fk_chat_message_chat_id ON DELETE CASCADE.
    if err := tx.WithContext(ctx).
        Where("id = ?", id).
        Delete(&types.ChatSession{}).Error; err != nil {
        csr.log.Error("failed to delete chat session", "error", err)
        return err
    }
    return nil
}
