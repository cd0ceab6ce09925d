package handlers

import (
  "encoding/json"
  "fmt"
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/wavelength-chat/wavelength-backend/internal/logger"
  "github.com/wavelength-chat/wavelength-backend/internal/services"
)

type ChatHandler struct {
  log           *logger.Logger
  chatService   services.ChatService
}

func NewChatHandler(log *logger.Logger, chatService services.ChatService) *ChatHandler {
  return &ChatHandler{
    log:          log.With("handler", "ChatHandler"),
    chatService:  chatService,
  }
}

type streamChatRequest struct {
  Messages    []services.PromptMessage    `json:"messages"`
  ChatID      string                      `json:"chatId"`
}

// sseFragmentSink frames fragments as data: {"content": ...}\n\n and flushes
// each one before the next upstream chunk is read. The event-stream headers
// go out with the first frame, so a failure before any frame can still answer
// with a plain JSON error.
type sseFragmentSink struct {
  writer    gin.ResponseWriter
  wrote     bool
}

func (s *sseFragmentSink) WriteFragment(fragment string) error {
  payload, err := json.Marshal(gin.H{"content": fragment})
  if err != nil {
    return err
  }
  if !s.wrote {
    header := s.writer.Header()
    header.Set("Content-Type", "text/event-stream")
    header.Set("Cache-Control", "no-cache")
    header.Set("Connection", "keep-alive")
  }
  if _, err := fmt.Fprintf(s.writer, "data: %s\n\n", payload); err != nil {
    return err
  }
  s.wrote = true
  s.writer.Flush()
  return nil
}

// StreamChat relays a conversation to the completion API as a server-sent
// event stream, terminated by connection close.
func (ch *ChatHandler) StreamChat(c *gin.Context) {
  var req streamChatRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  if len(req.Messages) == 0 {
    c.JSON(http.StatusBadRequest, gin.H{"error": "messages array is required"})
    return
  }
  var chatID *uuid.UUID
  if req.ChatID != "" {
    id, err := uuid.Parse(req.ChatID)
    if err != nil {
      c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
      return
    }
    chatID = &id
  }

  sink := &sseFragmentSink{writer: c.Writer}
  if err := ch.chatService.StreamCompletion(c.Request.Context(), req.Messages, chatID, sink); err != nil {
    if !sink.wrote {
      // No frame went out, so neither did the event-stream headers; a JSON
      // error response still works.
      respondError(c, err)
      return
    }
    // Mid-stream failure: the only signal left is closing the stream early.
    ch.log.Warn("stream aborted after partial output", "error", err)
  }
}
