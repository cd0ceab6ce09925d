package handlers

import (
  "errors"
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/wavelength-chat/wavelength-backend/internal/logger"
  "github.com/wavelength-chat/wavelength-backend/internal/services"
  "github.com/wavelength-chat/wavelength-backend/internal/types"
)

type ImageHandler struct {
  log             *logger.Logger
  imageService    services.ImageService
}

func NewImageHandler(log *logger.Logger, imageService services.ImageService) *ImageHandler {
  return &ImageHandler{
    log:           log.With("handler", "ImageHandler"),
    imageService:  imageService,
  }
}

type generateImageRequest struct {
  Prompt      string      `json:"prompt"`
  ChatID      string      `json:"chatId"`
  Size        string      `json:"size"`
  Quality     string      `json:"quality"`
}

func (ih *ImageHandler) GenerateImage(c *gin.Context) {
  var req generateImageRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
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

  result, err := ih.imageService.GenerateImage(c.Request.Context(), req.Prompt, chatID, req.Size, req.Quality)
  if err != nil {
    var ue *types.UpstreamError
    if errors.As(err, &ue) {
      c.JSON(http.StatusInternalServerError, gin.H{
        "error":    "Image generation failed",
        "details":  ue.Body,
      })
      return
    }
    respondError(c, err)
    return
  }

  c.JSON(http.StatusOK, gin.H{
    "success":    true,
    "imageUrl":   result.ImageURL,
    "prompt":     result.Prompt,
    "size":       result.Size,
    "quality":    result.Quality,
  })
}
