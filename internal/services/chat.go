package services

import (
  "context"
  "strings"

  "github.com/google/uuid"

  "github.com/wavelength-chat/wavelength-backend/internal/cache"
  "github.com/wavelength-chat/wavelength-backend/internal/logger"
  "github.com/wavelength-chat/wavelength-backend/internal/repos"
  "github.com/wavelength-chat/wavelength-backend/internal/types"
)

// FragmentSink receives assistant text fragments in upstream arrival order.
// A write error means the downstream consumer is gone and aborts the stream.
type FragmentSink interface {
  WriteFragment(fragment string) error
}

type ChatService interface {
  StreamCompletion(ctx context.Context, messages []PromptMessage, chatID *uuid.UUID, sink FragmentSink) error
}

type chatService struct {
  log           *logger.Logger
  openAI        OpenAIService
  sessionRepo   repos.ChatSessionRepo
  messageRepo   repos.ChatMessageRepo
  sessionCache  cache.SessionCache
}

func NewChatService(log *logger.Logger, openAI OpenAIService, sessionRepo repos.ChatSessionRepo, messageRepo repos.ChatMessageRepo, sessionCache cache.SessionCache) ChatService {
  return &chatService{
    log:           log.With("service", "ChatService"),
    openAI:        openAI,
    sessionRepo:   sessionRepo,
    messageRepo:   messageRepo,
    sessionCache:  sessionCache,
  }
}

// StreamCompletion forwards the conversation to the completion API and relays
// every fragment to the sink. When the upstream stream ends cleanly the
// accumulated assistant reply is persisted against chatID. The user message,
// if one trails the prompt list, is persisted before the upstream call so it
// always precedes the assistant message it provoked.
func (cs *chatService) StreamCompletion(ctx context.Context, messages []PromptMessage, chatID *uuid.UUID, sink FragmentSink) error {
  if len(messages) == 0 {
    return types.NewValidationError("messages", "messages array is required")
  }

  if chatID != nil {
    last := messages[len(messages)-1]
    if last.Role == types.RoleUser {
      cs.saveMessage(ctx, *chatID, &types.ChatMessage{
        ChatID:   *chatID,
        Role:     types.RoleUser,
        Content:  last.Content,
        Type:     types.MessageTypeText,
      })
    }
  }

  var assistant strings.Builder
  err := cs.openAI.StreamChatCompletion(ctx, messages, func(fragment string) error {
    if err := sink.WriteFragment(fragment); err != nil {
      return err
    }
    assistant.WriteString(fragment)
    return nil
  })
  if err != nil {
    // Nothing durable is written for a failed or interrupted stream; whatever
    // the client already rendered stays transient until the next reload.
    cs.log.Warn("completion stream did not finish", "error", err)
    return err
  }

  content := strings.TrimSpace(assistant.String())
  if chatID != nil && content != "" {
    cs.saveMessage(ctx, *chatID, &types.ChatMessage{
      ChatID:   *chatID,
      Role:     types.RoleAssistant,
      Content:  content,
      Type:     types.MessageTypeText,
    })
  }
  return nil
}

// saveMessage is a best-effort auxiliary write: a store failure here is logged
// and the streaming flow carries on.
func (cs *chatService) saveMessage(ctx context.Context, chatID uuid.UUID, msg *types.ChatMessage) {
  if _, err := cs.messageRepo.CreateMessages(ctx, nil, []*types.ChatMessage{msg}); err != nil {
    cs.log.Warn("failed to save chat message", "chatID", chatID, "role", msg.Role, "error", err)
    return
  }
  if err := cs.sessionRepo.TouchSession(ctx, nil, chatID); err != nil {
    cs.log.Warn("failed to bump session updated_at", "chatID", chatID, "error", err)
  }
  cs.sessionCache.Invalidate(ctx)
}
