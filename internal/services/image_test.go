package services

import (
  "context"
  "strings"
  "testing"

  "github.com/wavelength-chat/wavelength-backend/internal/cache"
  "github.com/wavelength-chat/wavelength-backend/internal/logger"
  "github.com/wavelength-chat/wavelength-backend/internal/types"
)

func newImageFixture(openAI *fakeOpenAI) (ImageService, *memStore, *memSessionRepo) {
  store := newMemStore()
  sessionRepo := &memSessionRepo{store: store}
  messageRepo := &memMessageRepo{store: store}
  svc := NewImageService(logger.NewNop(), openAI, sessionRepo, messageRepo, nil, cache.NoopSessionCache{})
  return svc, store, sessionRepo
}

func TestGenerateImage_WhitespacePromptRejectedBeforeAnything(t *testing.T) {
  tests := []struct {
    name    string
    prompt  string
  }{
    {name: "empty", prompt: ""},
    {name: "spaces", prompt: "   "},
    {name: "tabs and newlines", prompt: "\t\n "},
  }
  for _, tt := range tests {
    t.Run(tt.name, func(t *testing.T) {
      openAI := &fakeOpenAI{imageB64: "aGk="}
      svc, store, sessionRepo := newImageFixture(openAI)
      chatID := createTestSession(t, sessionRepo, "images")

      _, err := svc.GenerateImage(context.Background(), tt.prompt, &chatID, "", "")
      if !types.IsValidation(err) {
        t.Fatalf("GenerateImage() error = %v, want ValidationError", err)
      }
      if openAI.imageCalls != 0 {
        t.Errorf("upstream called %d times, want 0", openAI.imageCalls)
      }
      if len(store.messages) != 0 {
        t.Errorf("store has %d messages, want 0", len(store.messages))
      }
    })
  }
}

func TestGenerateImage_PersistsPromptAndResult(t *testing.T) {
  openAI := &fakeOpenAI{imageB64: "aW1hZ2VieXRlcw=="}
  svc, store, sessionRepo := newImageFixture(openAI)
  chatID := createTestSession(t, sessionRepo, "images")

  result, err := svc.GenerateImage(context.Background(), "a red fox", &chatID, "", "")
  if err != nil {
    t.Fatalf("GenerateImage() error = %v", err)
  }
  if result.Size != DefaultImageSize || result.Quality != DefaultImageQuality {
    t.Errorf("defaults not applied: size=%q quality=%q", result.Size, result.Quality)
  }
  if !strings.HasPrefix(result.ImageURL, "data:image/png;base64,") {
    t.Errorf("ImageURL = %q, want data URI", result.ImageURL)
  }

  msgs, _ := (&memMessageRepo{store: store}).GetByChatID(context.Background(), nil, chatID)
  if len(msgs) != 2 {
    t.Fatalf("store has %d messages, want 2", len(msgs))
  }
  if msgs[0].Role != types.RoleUser || msgs[0].Type != types.MessageTypeImage || msgs[0].Content != "a red fox" {
    t.Errorf("user message = %+v, want user image prompt first", msgs[0])
  }
  if msgs[1].Role != types.RoleAssistant || msgs[1].Type != types.MessageTypeImage {
    t.Errorf("assistant message = %+v, want assistant image message", msgs[1])
  }
  if msgs[1].ImageURL == nil || *msgs[1].ImageURL != result.ImageURL {
    t.Error("assistant message image_url does not match the returned result")
  }
  if want := `Generated image for: "a red fox"`; msgs[1].Content != want {
    t.Errorf("assistant content = %q, want %q", msgs[1].Content, want)
  }
}

func TestGenerateImage_UpstreamFailureKeepsPromptOnly(t *testing.T) {
  openAI := &fakeOpenAI{imageErr: &types.UpstreamError{StatusCode: 500, Body: "bad paint"}}
  svc, store, sessionRepo := newImageFixture(openAI)
  chatID := createTestSession(t, sessionRepo, "images")

  _, err := svc.GenerateImage(context.Background(), "a red fox", &chatID, "", "")
  if !types.IsUpstream(err) {
    t.Fatalf("GenerateImage() error = %v, want UpstreamError", err)
  }

  msgs, _ := (&memMessageRepo{store: store}).GetByChatID(context.Background(), nil, chatID)
  if len(msgs) != 1 || msgs[0].Role != types.RoleUser {
    t.Errorf("store kept %d messages, want only the user prompt", len(msgs))
  }
}

func TestGenerateImage_NoChatIDPersistsNothing(t *testing.T) {
  openAI := &fakeOpenAI{imageB64: "aGk="}
  svc, store, _ := newImageFixture(openAI)

  result, err := svc.GenerateImage(context.Background(), "a red fox", nil, "256x256", "hd")
  if err != nil {
    t.Fatalf("GenerateImage() error = %v", err)
  }
  if result.Size != "256x256" || result.Quality != "hd" {
    t.Errorf("explicit size/quality not echoed: %+v", result)
  }
  if len(store.messages) != 0 {
    t.Errorf("store has %d messages, want 0", len(store.messages))
  }
}
