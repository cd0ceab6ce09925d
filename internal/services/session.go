package services

import (
  "context"
  "errors"
  "fmt"
  "strings"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/wavelength-chat/wavelength-backend/internal/cache"
  "github.com/wavelength-chat/wavelength-backend/internal/logger"
  "github.com/wavelength-chat/wavelength-backend/internal/repos"
  "github.com/wavelength-chat/wavelength-backend/internal/types"
)

type SessionService interface {
  CreateSession(ctx context.Context, title string) (*types.ChatSession, error)
  ListSessions(ctx context.Context) ([]types.ChatSession, error)
  LoadSession(ctx context.Context, id uuid.UUID) (*types.ChatSession, []*types.ChatMessage, error)
  RenameSession(ctx context.Context, id uuid.UUID, title string) (*types.ChatSession, error)
  DeleteSession(ctx context.Context, id uuid.UUID) (*types.ChatSession, error)
}

type sessionService struct {
  log           *logger.Logger
  sessionRepo   repos.ChatSessionRepo
  messageRepo   repos.ChatMessageRepo
  sessionCache  cache.SessionCache
}

func NewSessionService(log *logger.Logger, sessionRepo repos.ChatSessionRepo, messageRepo repos.ChatMessageRepo, sessionCache cache.SessionCache) SessionService {
  return &sessionService{
    log:           log.With("service", "SessionService"),
    sessionRepo:   sessionRepo,
    messageRepo:   messageRepo,
    sessionCache:  sessionCache,
  }
}

func (ss *sessionService) CreateSession(ctx context.Context, title string) (*types.ChatSession, error) {
  title = strings.TrimSpace(title)
  if title == "" {
    title = types.DefaultSessionTitle
  }
  if len([]rune(title)) > types.MaxTitleLength {
    return nil, types.NewValidationError("title", fmt.Sprintf("title cannot be longer than %d characters", types.MaxTitleLength))
  }
  session, err := ss.sessionRepo.CreateSession(ctx, nil, &types.ChatSession{Title: title})
  if err != nil {
    return nil, err
  }
  ss.sessionCache.Invalidate(ctx)
  ss.log.Info("chat session created", "chatID", session.ID, "title", session.Title)
  return session, nil
}

func (ss *sessionService) ListSessions(ctx context.Context) ([]types.ChatSession, error) {
  if sessions, ok := ss.sessionCache.Get(ctx); ok {
    return sessions, nil
  }
  sessions, err := ss.sessionRepo.ListSessions(ctx, nil, types.SessionListLimit)
  if err != nil {
    return nil, err
  }
  ss.sessionCache.Set(ctx, sessions)
  return sessions, nil
}

func (ss *sessionService) LoadSession(ctx context.Context, id uuid.UUID) (*types.ChatSession, []*types.ChatMessage, error) {
  session, err := ss.sessionRepo.GetSessionByID(ctx, nil, id)
  if err != nil {
    return nil, nil, mapNotFound(err)
  }
  messages, err := ss.messageRepo.GetByChatID(ctx, nil, id)
  if err != nil {
    return nil, nil, err
  }
  return session, messages, nil
}

func (ss *sessionService) RenameSession(ctx context.Context, id uuid.UUID, title string) (*types.ChatSession, error) {
  title = strings.TrimSpace(title)
  if title == "" {
    return nil, types.NewValidationError("title", "title is required and cannot be empty")
  }
  if len([]rune(title)) > types.MaxTitleLength {
    return nil, types.NewValidationError("title", fmt.Sprintf("title cannot be longer than %d characters", types.MaxTitleLength))
  }
  session, err := ss.sessionRepo.UpdateTitle(ctx, nil, id, title)
  if err != nil {
    return nil, mapNotFound(err)
  }
  ss.sessionCache.Invalidate(ctx)
  ss.log.Info("chat session renamed", "chatID", id, "title", title)
  return session, nil
}

func (ss *sessionService) DeleteSession(ctx context.Context, id uuid.UUID) (*types.ChatSession, error) {
  session, err := ss.sessionRepo.GetSessionByID(ctx, nil, id)
  if err != nil {
    return nil, mapNotFound(err)
  }
  if err := ss.sessionRepo.DeleteSession(ctx, nil, id); err != nil {
    return nil, err
  }
  ss.sessionCache.Invalidate(ctx)
  ss.log.Info("chat session deleted", "chatID", id, "title", session.Title)
  return session, nil
}

func mapNotFound(err error) error {
  if errors.Is(err, gorm.ErrRecordNotFound) {
    return types.ErrSessionNotFound
  }
  return err
}
