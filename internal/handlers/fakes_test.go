package handlers

import (
  "context"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/wavelength-chat/wavelength-backend/internal/logger"
  "github.com/wavelength-chat/wavelength-backend/internal/services"
  "github.com/wavelength-chat/wavelength-backend/internal/types"
)

type fakeChatService struct {
  fragments     []string
  failAfter     int // fail after this many fragments; -1 means fail before any
  err           error
  gotMessages   []services.PromptMessage
  gotChatID     *uuid.UUID
}

func (f *fakeChatService) StreamCompletion(ctx context.Context, messages []services.PromptMessage, chatID *uuid.UUID, sink services.FragmentSink) error {
  f.gotMessages = messages
  f.gotChatID = chatID
  if f.err != nil && f.failAfter < 0 {
    return f.err
  }
  for i, fragment := range f.fragments {
    if f.err != nil && i == f.failAfter {
      return f.err
    }
    if err := sink.WriteFragment(fragment); err != nil {
      return err
    }
  }
  return nil
}

type fakeImageService struct {
  result      *services.ImageResult
  err         error
  gotPrompt   string
  gotChatID   *uuid.UUID
}

func (f *fakeImageService) GenerateImage(ctx context.Context, prompt string, chatID *uuid.UUID, size, quality string) (*services.ImageResult, error) {
  f.gotPrompt = prompt
  f.gotChatID = chatID
  if f.err != nil {
    return nil, f.err
  }
  return f.result, nil
}

type fakeSessionService struct {
  session     *types.ChatSession
  sessions    []types.ChatSession
  messages    []*types.ChatMessage
  err         error
  gotTitle    string
  gotID       uuid.UUID
}

func (f *fakeSessionService) CreateSession(ctx context.Context, title string) (*types.ChatSession, error) {
  f.gotTitle = title
  if f.err != nil {
    return nil, f.err
  }
  return f.session, nil
}

func (f *fakeSessionService) ListSessions(ctx context.Context) ([]types.ChatSession, error) {
  if f.err != nil {
    return nil, f.err
  }
  return f.sessions, nil
}

func (f *fakeSessionService) LoadSession(ctx context.Context, id uuid.UUID) (*types.ChatSession, []*types.ChatMessage, error) {
  f.gotID = id
  if f.err != nil {
    return nil, nil, f.err
  }
  return f.session, f.messages, nil
}

func (f *fakeSessionService) RenameSession(ctx context.Context, id uuid.UUID, title string) (*types.ChatSession, error) {
  f.gotID = id
  f.gotTitle = title
  if f.err != nil {
    return nil, f.err
  }
  return f.session, nil
}

func (f *fakeSessionService) DeleteSession(ctx context.Context, id uuid.UUID) (*types.ChatSession, error) {
  f.gotID = id
  if f.err != nil {
    return nil, f.err
  }
  return f.session, nil
}

func testRouter(chat services.ChatService, image services.ImageService, session services.SessionService) *gin.Engine {
  gin.SetMode(gin.TestMode)
  log := logger.NewNop()
  router := gin.New()
  api := router.Group("/api")
  if chat != nil {
    api.POST("/chat", NewChatHandler(log, chat).StreamChat)
  }
  if image != nil {
    api.POST("/image-generation", NewImageHandler(log, image).GenerateImage)
  }
  if session != nil {
    sh := NewSessionHandler(log, session)
    api.POST("/chats", sh.CreateSession)
    api.GET("/chats", sh.ListSessions)
    api.GET("/chats/:id", sh.LoadSession)
    api.PATCH("/chats/:id", sh.RenameSession)
    api.DELETE("/chats/:id", sh.DeleteSession)
  }
  return router
}
