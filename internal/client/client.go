package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to the chat backend. It is the Go counterpart of the browser
// API layer: discrete JSON calls for the session lifecycle, one streaming
// call for completions.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type StoredMessage struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chat_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	ImageURL  *string   `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// StreamCallbacks observe a completion stream. OnStart fires when the first
// bytes of the response body arrive, OnChunk once per decoded fragment.
type StreamCallbacks struct {
	OnStart func()
	OnChunk func(content string)
}

type streamFrame struct {
	Content string `json:"content"`
}

// SendChatMessage posts the conversation and folds the SSE-shaped response
// through the callbacks. It returns once the stream is exhausted.
func (c *Client) SendChatMessage(ctx context.Context, messages []Message, chatID string, cb StreamCallbacks) error {
	payload, err := json.Marshal(map[string]interface{}{
		"messages": messages,
		"chatId":   chatID,
	})
	if err != nil {
		return fmt.Errorf("marshal chat request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}

	started := false
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if !started {
			started = true
			if cb.OnStart != nil {
				cb.OnStart()
			}
		}
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if strings.TrimSpace(data) == "" {
			continue
		}
		var frame streamFrame
		if err := json.Unmarshal([]byte(data), &frame); err != nil {
			// Malformed frames are dropped, same as the backend does upstream.
			continue
		}
		if frame.Content != "" && cb.OnChunk != nil {
			cb.OnChunk(frame.Content)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read chat stream: %w", err)
	}
	return nil
}

type ImageGenerationRequest struct {
	Prompt  string `json:"prompt"`
	ChatID  string `json:"chatId,omitempty"`
	Size    string `json:"size,omitempty"`
	Quality string `json:"quality,omitempty"`
}

type ImageGenerationResponse struct {
	Success  bool   `json:"success"`
	ImageURL string `json:"imageUrl"`
	Prompt   string `json:"prompt"`
	Size     string `json:"size"`
	Quality  string `json:"quality"`
}

func (c *Client) GenerateImage(ctx context.Context, req ImageGenerationRequest) (*ImageGenerationResponse, error) {
	var out ImageGenerationResponse
	if err := c.postJSON(ctx, http.MethodPost, "/api/image-generation", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type CreateChatResponse struct {
	Success bool    `json:"success"`
	ChatID  string  `json:"chatId"`
	Session Session `json:"session"`
}

func (c *Client) CreateChat(ctx context.Context, title string) (*CreateChatResponse, error) {
	var out CreateChatResponse
	body := map[string]string{}
	if title != "" {
		body["title"] = title
	}
	if err := c.postJSON(ctx, http.MethodPost, "/api/chats", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type ChatHistoryResponse struct {
	Chats []Session `json:"chats"`
	Count int       `json:"count"`
}

func (c *Client) ChatHistory(ctx context.Context) (*ChatHistoryResponse, error) {
	var out ChatHistoryResponse
	if err := c.postJSON(ctx, http.MethodGet, "/api/chats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type LoadChatResponse struct {
	Success  bool            `json:"success"`
	Session  Session         `json:"session"`
	Messages []StoredMessage `json:"messages"`
}

func (c *Client) LoadChat(ctx context.Context, chatID string) (*LoadChatResponse, error) {
	var out LoadChatResponse
	if err := c.postJSON(ctx, http.MethodGet, "/api/chats/"+chatID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type renameChatResponse struct {
	Success     bool    `json:"success"`
	UpdatedChat Session `json:"updatedChat"`
}

func (c *Client) RenameChat(ctx context.Context, chatID, title string) (*Session, error) {
	var out renameChatResponse
	if err := c.postJSON(ctx, http.MethodPatch, "/api/chats/"+chatID, map[string]string{"title": title}, &out); err != nil {
		return nil, err
	}
	return &out.UpdatedChat, nil
}

type deleteChatResponse struct {
	Success     bool    `json:"success"`
	DeletedChat Session `json:"deletedChat"`
}

func (c *Client) DeleteChat(ctx context.Context, chatID string) (*Session, error) {
	var out deleteChatResponse
	if err := c.postJSON(ctx, http.MethodDelete, "/api/chats/"+chatID, nil, &out); err != nil {
		return nil, err
	}
	return &out.DeletedChat, nil
}

func (c *Client) postJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	bodyBytes, _ := io.ReadAll(resp.Body)
	var parsed struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(bodyBytes, &parsed); err == nil && parsed.Error != "" {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, parsed.Error)
	}
	return fmt.Errorf("HTTP %d", resp.StatusCode)
}
