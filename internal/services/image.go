package services

import (
  "bytes"
  "context"
  "encoding/base64"
  "fmt"
  "strings"

  "github.com/google/uuid"

  "github.com/wavelength-chat/wavelength-backend/internal/cache"
  "github.com/wavelength-chat/wavelength-backend/internal/logger"
  "github.com/wavelength-chat/wavelength-backend/internal/repos"
  "github.com/wavelength-chat/wavelength-backend/internal/types"
)

const (
  DefaultImageSize      = "1024x1024"
  DefaultImageQuality   = "standard"
)

type ImageResult struct {
  ImageURL    string    `json:"imageUrl"`
  Prompt      string    `json:"prompt"`
  Size        string    `json:"size"`
  Quality     string    `json:"quality"`
}

type ImageService interface {
  GenerateImage(ctx context.Context, prompt string, chatID *uuid.UUID, size, quality string) (*ImageResult, error)
}

type imageService struct {
  log           *logger.Logger
  openAI        OpenAIService
  sessionRepo   repos.ChatSessionRepo
  messageRepo   repos.ChatMessageRepo
  bucket        BucketService
  sessionCache  cache.SessionCache
}

// NewImageService builds the image relay. bucket may be nil, in which case
// generated images are returned and persisted as data URIs.
func NewImageService(log *logger.Logger, openAI OpenAIService, sessionRepo repos.ChatSessionRepo, messageRepo repos.ChatMessageRepo, bucket BucketService, sessionCache cache.SessionCache) ImageService {
  return &imageService{
    log:           log.With("service", "ImageService"),
    openAI:        openAI,
    sessionRepo:   sessionRepo,
    messageRepo:   messageRepo,
    bucket:        bucket,
    sessionCache:  sessionCache,
  }
}

func (is *imageService) GenerateImage(ctx context.Context, prompt string, chatID *uuid.UUID, size, quality string) (*ImageResult, error) {
  prompt = strings.TrimSpace(prompt)
  if prompt == "" {
    return nil, types.NewValidationError("prompt", "prompt is required")
  }
  if size == "" {
    size = DefaultImageSize
  }
  if quality == "" {
    quality = DefaultImageQuality
  }

  if chatID != nil {
    is.saveMessage(ctx, *chatID, &types.ChatMessage{
      ChatID:   *chatID,
      Role:     types.RoleUser,
      Content:  prompt,
      Type:     types.MessageTypeImage,
    })
  }

  img, err := is.openAI.GenerateImage(ctx, prompt, size, quality)
  if err != nil {
    return nil, err
  }

  imageURL := is.storeImage(ctx, img)

  if chatID != nil {
    is.saveMessage(ctx, *chatID, &types.ChatMessage{
      ChatID:     *chatID,
      Role:       types.RoleAssistant,
      Content:    fmt.Sprintf("Generated image for: %q", prompt),
      Type:       types.MessageTypeImage,
      ImageURL:   &imageURL,
    })
  }

  return &ImageResult{
    ImageURL:   imageURL,
    Prompt:     prompt,
    Size:       size,
    Quality:    quality,
  }, nil
}

// storeImage uploads the PNG to the bucket when one is configured and falls
// back to a data URI otherwise.
func (is *imageService) storeImage(ctx context.Context, img GeneratedImage) string {
  dataURI := "data:image/png;base64," + img.B64PNG
  if is.bucket == nil {
    return dataURI
  }
  raw, err := base64.StdEncoding.DecodeString(img.B64PNG)
  if err != nil {
    is.log.Warn("generated image was not valid base64, keeping data URI", "error", err)
    return dataURI
  }
  key := fmt.Sprintf("generated_images/%s.png", uuid.New().String())
  if err := is.bucket.UploadFile(ctx, key, bytes.NewReader(raw)); err != nil {
    is.log.Warn("failed to upload generated image to bucket, keeping data URI", "error", err)
    return dataURI
  }
  return is.bucket.GetPublicURL(key)
}

func (is *imageService) saveMessage(ctx context.Context, chatID uuid.UUID, msg *types.ChatMessage) {
  if _, err := is.messageRepo.CreateMessages(ctx, nil, []*types.ChatMessage{msg}); err != nil {
    is.log.Warn("failed to save chat message", "chatID", chatID, "role", msg.Role, "error", err)
    return
  }
  if err := is.sessionRepo.TouchSession(ctx, nil, chatID); err != nil {
    is.log.Warn("failed to bump session updated_at", "chatID", chatID, "error", err)
  }
  is.sessionCache.Invalidate(ctx)
}
