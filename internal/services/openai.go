package services

import (
  "bufio"
  "bytes"
  "context"
  "encoding/json"
  "fmt"
  "io"
  "net/http"
  "os"
  "strings"
  "time"

  "github.com/wavelength-chat/wavelength-backend/internal/logger"
  "github.com/wavelength-chat/wavelength-backend/internal/types"
)

// PromptMessage is one role/content pair forwarded to the completion API,
// oldest first.
type PromptMessage struct {
  Role        string      `json:"role"`
  Content     string      `json:"content"`
}

type GeneratedImage struct {
  B64PNG      string
}

type OpenAIService interface {
  // StreamChatCompletion opens one streaming completion request and invokes
  // onFragment for every text fragment in upstream arrival order. The
  // concatenation of all fragments is the full assistant reply.
  StreamChatCompletion(ctx context.Context, messages []PromptMessage, onFragment func(fragment string) error) error
  GenerateImage(ctx context.Context, prompt, size, quality string) (GeneratedImage, error)
}

type openAIService struct {
  log               *logger.Logger
  client            *http.Client
  baseURL           string
  apiKey            string
  chatModel         string
}

func NewOpenAIService(log *logger.Logger) (OpenAIService, error) {
  serviceLog := log.With("service", "OpenAIService")
  baseURL := os.Getenv("OPENAI_API_URL")
  if baseURL == "" {
    baseURL = "https://api.openai.com/v1"
  }
  apiKey := os.Getenv("OPENAI_API_KEY")
  if apiKey == "" {
    serviceLog.Warn("OPENAI_API_KEY not set; calls might fail or be unauthorized")
  }
  chatModel := os.Getenv("OPENAI_CHAT_MODEL")
  if chatModel == "" {
    chatModel = "gpt-4o-mini"
  }
  // No overall timeout here: completion streams stay open for as long as the
  // model keeps talking.
  httpClient := &http.Client{}
  return &openAIService{
    log:        serviceLog,
    client:     httpClient,
    baseURL:    strings.TrimRight(baseURL, "/"),
    apiKey:     apiKey,
    chatModel:  chatModel,
  }, nil
}

type chatCompletionRequest struct {
  Model         string            `json:"model"`
  Messages      []PromptMessage   `json:"messages"`
  Temperature   float64           `json:"temperature"`
  Stream        bool              `json:"stream"`
}

type chatCompletionChunk struct {
  Choices []struct {
    Delta struct {
      Content   string    `json:"content"`
    } `json:"delta"`
  } `json:"choices"`
}

func (oa *openAIService) StreamChatCompletion(ctx context.Context, messages []PromptMessage, onFragment func(fragment string) error) error {
  payload, err := json.Marshal(chatCompletionRequest{
    Model:        oa.chatModel,
    Messages:     messages,
    Temperature:  0.7,
    Stream:       true,
  })
  if err != nil {
    return fmt.Errorf("marshal completion request: %w", err)
  }

  req, err := http.NewRequestWithContext(ctx, http.MethodPost, oa.baseURL+"/chat/completions", bytes.NewReader(payload))
  if err != nil {
    oa.log.Warn("failed to build completion request", "error", err)
    return err
  }
  req.Header.Set("Content-Type", "application/json")
  if oa.apiKey != "" {
    req.Header.Set("Authorization", "Bearer "+oa.apiKey)
  }

  resp, err := oa.client.Do(req)
  if err != nil {
    oa.log.Warn("failed to call completion API", "error", err)
    return err
  }
  defer resp.Body.Close()

  if resp.StatusCode < 200 || resp.StatusCode > 299 {
    bodyBytes, _ := io.ReadAll(resp.Body)
    oa.log.Warn("completion API responded with non-2xx", "statusCode", resp.StatusCode, "body", string(bodyBytes))
    return &types.UpstreamError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
  }

  // One sequential reader loop; a fragment is handed downstream before the
  // next upstream line is read.
  scanner := bufio.NewScanner(resp.Body)
  scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
  for scanner.Scan() {
    line := scanner.Text()
    if !strings.HasPrefix(line, "data: ") {
      continue
    }
    data := strings.TrimPrefix(line, "data: ")
    if data == "[DONE]" {
      continue
    }
    var chunk chatCompletionChunk
    if err := json.Unmarshal([]byte(data), &chunk); err != nil {
      // Upstream is not under our control; a malformed frame is dropped, not fatal.
      oa.log.Debug("skipping malformed completion frame", "error", err)
      continue
    }
    if len(chunk.Choices) == 0 {
      continue
    }
    content := chunk.Choices[0].Delta.Content
    if content == "" {
      continue
    }
    if err := onFragment(content); err != nil {
      return err
    }
  }
  if err := scanner.Err(); err != nil {
    oa.log.Warn("completion stream read failed", "error", err)
    return fmt.Errorf("read completion stream: %w", err)
  }
  return nil
}

type imageGenerationRequest struct {
  Model           string      `json:"model"`
  Prompt          string      `json:"prompt"`
  Size            string      `json:"size"`
  Quality         string      `json:"quality"`
  ResponseFormat  string      `json:"response_format"`
  N               int         `json:"n"`
}

type imageGenerationResponse struct {
  Data []struct {
    B64JSON   string    `json:"b64_json"`
  } `json:"data"`
}

func (oa *openAIService) GenerateImage(ctx context.Context, prompt, size, quality string) (GeneratedImage, error) {
  var out GeneratedImage

  payload, err := json.Marshal(imageGenerationRequest{
    Model:           "dall-e-3",
    Prompt:          prompt,
    Size:            size,
    Quality:         quality,
    ResponseFormat:  "b64_json",
    N:               1,
  })
  if err != nil {
    return out, fmt.Errorf("marshal image request: %w", err)
  }

  // Image generation is a single synchronous round trip, so a bounded client
  // timeout is fine here.
  reqCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
  defer cancel()

  req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, oa.baseURL+"/images/generations", bytes.NewReader(payload))
  if err != nil {
    oa.log.Warn("failed to build image request", "error", err)
    return out, err
  }
  req.Header.Set("Content-Type", "application/json")
  if oa.apiKey != "" {
    req.Header.Set("Authorization", "Bearer "+oa.apiKey)
  }

  resp, err := oa.client.Do(req)
  if err != nil {
    oa.log.Warn("failed to call image API", "error", err)
    return out, err
  }
  defer resp.Body.Close()

  if resp.StatusCode < 200 || resp.StatusCode > 299 {
    bodyBytes, _ := io.ReadAll(resp.Body)
    oa.log.Warn("image API responded with non-2xx", "statusCode", resp.StatusCode, "body", string(bodyBytes))
    return out, &types.UpstreamError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
  }

  bodyBytes, err := io.ReadAll(resp.Body)
  if err != nil {
    oa.log.Warn("failed to read image API response body", "error", err)
    return out, err
  }
  var parsed imageGenerationResponse
  if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
    return out, fmt.Errorf("parse image response: %w", err)
  }
  if len(parsed.Data) == 0 || parsed.Data[0].B64JSON == "" {
    return out, fmt.Errorf("image response contained no image data")
  }
  out.B64PNG = parsed.Data[0].B64JSON
  oa.log.Info("image generation call success")
  return out, nil
}
