package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/wavelength-chat/wavelength-backend/internal/logger"
  "github.com/wavelength-chat/wavelength-backend/internal/services"
)

type SessionHandler struct {
  log               *logger.Logger
  sessionService    services.SessionService
}

func NewSessionHandler(log *logger.Logger, sessionService services.SessionService) *SessionHandler {
  return &SessionHandler{
    log:             log.With("handler", "SessionHandler"),
    sessionService:  sessionService,
  }
}

type createSessionRequest struct {
  Title     string    `json:"title"`
}

type renameSessionRequest struct {
  Title     string    `json:"title"`
}

func (sh *SessionHandler) CreateSession(c *gin.Context) {
  var req createSessionRequest
  if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  session, err := sh.sessionService.CreateSession(c.Request.Context(), req.Title)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{
    "success":  true,
    "chatId":   session.ID,
    "session":  session,
  })
}

func (sh *SessionHandler) ListSessions(c *gin.Context) {
  sessions, err := sh.sessionService.ListSessions(c.Request.Context())
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{
    "chats":  sessions,
    "count":  len(sessions),
  })
}

func (sh *SessionHandler) LoadSession(c *gin.Context) {
  id, ok := sessionID(c)
  if !ok {
    return
  }
  session, messages, err := sh.sessionService.LoadSession(c.Request.Context(), id)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{
    "success":   true,
    "session":   session,
    "messages":  messages,
  })
}

func (sh *SessionHandler) RenameSession(c *gin.Context) {
  id, ok := sessionID(c)
  if !ok {
    return
  }
  var req renameSessionRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  session, err := sh.sessionService.RenameSession(c.Request.Context(), id, req.Title)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{
    "success":      true,
    "message":      "Chat updated successfully",
    "updatedChat":  session,
  })
}

func (sh *SessionHandler) DeleteSession(c *gin.Context) {
  id, ok := sessionID(c)
  if !ok {
    return
  }
  session, err := sh.sessionService.DeleteSession(c.Request.Context(), id)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{
    "success":      true,
    "message":      "Chat deleted successfully",
    "deletedChat":  session,
  })
}

func sessionID(c *gin.Context) (uuid.UUID, bool) {
  id, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
    return uuid.Nil, false
  }
  return id, true
}
