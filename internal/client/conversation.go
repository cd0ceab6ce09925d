package client

import (
	"context"
	"errors"
	"sync"

	"github.com/wavelength-chat/wavelength-backend/internal/logger"
)

// SendState is the per-conversation send lifecycle. Only one send may be
// between Sending and Streaming at a time.
type SendState int

const (
	StateIdle SendState = iota
	StateSending
	StateStreaming
	StateSettledSuccess
	StateSettledError
)

// ErrSendInProgress rejects a send while another one is still outstanding.
var ErrSendInProgress = errors.New("a send is already in progress for this conversation")

// apologyMessage is substituted as a fresh assistant message when a send
// fails. The failed transient message is left in place.
const apologyMessage = "Sorry, I encountered an error. Please try again."

const (
	ModeText  = "text"
	ModeImage = "image"
)

// ConversationMessage is the view-side message shape, including the transient
// assistant message that accumulates streamed fragments.
type ConversationMessage struct {
	Role     string
	Content  string
	Type     string
	ImageURL string
}

// Conversation holds one chat thread's view state and drives sends against
// the backend. The session row is created lazily, right before the first
// message goes out, so abandoned empty conversations never hit the store.
type Conversation struct {
	api *Client
	log *logger.Logger

	mu       sync.Mutex
	state    SendState
	chatID   string
	created  bool
	messages []ConversationMessage

	// OnUpdate, when set, fires after every message mutation. UI refresh hook.
	OnUpdate func()
}

func NewConversation(api *Client, log *logger.Logger) *Conversation {
	return &Conversation{
		api:   api,
		log:   log.With("component", "Conversation"),
		state: StateIdle,
	}
}

// Resume attaches the conversation to an existing session and replaces the
// local history with the persisted one.
func (cv *Conversation) Resume(ctx context.Context, chatID string) error {
	loaded, err := cv.api.LoadChat(ctx, chatID)
	if err != nil {
		return err
	}
	cv.mu.Lock()
	cv.chatID = loaded.Session.ID
	cv.created = true
	cv.messages = cv.messages[:0]
	for _, m := range loaded.Messages {
		msg := ConversationMessage{Role: m.Role, Content: m.Content, Type: m.Type}
		if m.ImageURL != nil {
			msg.ImageURL = *m.ImageURL
		}
		cv.messages = append(cv.messages, msg)
	}
	cv.state = StateIdle
	cv.mu.Unlock()
	cv.notify()
	return nil
}

func (cv *Conversation) State() SendState {
	cv.mu.Lock()
	defer cv.mu.Unlock()
	return cv.state
}

func (cv *Conversation) ChatID() string {
	cv.mu.Lock()
	defer cv.mu.Unlock()
	return cv.chatID
}

// Messages returns a snapshot of the conversation, transient content included.
func (cv *Conversation) Messages() []ConversationMessage {
	cv.mu.Lock()
	defer cv.mu.Unlock()
	out := make([]ConversationMessage, len(cv.messages))
	copy(out, cv.messages)
	return out
}

// Send pushes one user message through the text or image flow and blocks
// until the send settles. A second Send while one is outstanding fails with
// ErrSendInProgress.
func (cv *Conversation) Send(ctx context.Context, content, mode string) error {
	cv.mu.Lock()
	if cv.state == StateSending || cv.state == StateStreaming {
		cv.mu.Unlock()
		return ErrSendInProgress
	}
	cv.state = StateSending
	first := len(cv.messages) == 0 && !cv.created
	cv.mu.Unlock()

	if first {
		cv.createSession(ctx, content)
	}

	cv.mu.Lock()
	cv.messages = append(cv.messages, ConversationMessage{Role: "user", Content: content, Type: mode})
	chatID := cv.chatID
	cv.mu.Unlock()
	cv.notify()

	var err error
	if mode == ModeImage {
		err = cv.sendImage(ctx, content, chatID)
	} else {
		err = cv.sendText(ctx, chatID)
	}

	if err != nil {
		cv.mu.Lock()
		cv.state = StateSettledError
		cv.messages = append(cv.messages, ConversationMessage{Role: "assistant", Content: apologyMessage, Type: ModeText})
		cv.mu.Unlock()
		cv.notify()
		return err
	}

	cv.mu.Lock()
	cv.state = StateSettledSuccess
	cv.mu.Unlock()
	return nil
}

// createSession is best effort: when it fails the conversation simply stays
// unpersisted and streaming continues without a chat id.
func (cv *Conversation) createSession(ctx context.Context, firstMessage string) {
	title := GenerateChatTitle(firstMessage)
	created, err := cv.api.CreateChat(ctx, title)
	if err != nil {
		cv.log.Warn("failed to create chat session, continuing unpersisted", "error", err)
		return
	}
	cv.mu.Lock()
	cv.chatID = created.ChatID
	cv.created = true
	cv.mu.Unlock()
}

func (cv *Conversation) sendText(ctx context.Context, chatID string) error {
	cv.mu.Lock()
	apiMessages := make([]Message, 0, len(cv.messages))
	for _, m := range cv.messages {
		apiMessages = append(apiMessages, Message{Role: m.Role, Content: m.Content})
	}
	// The transient assistant message: appended empty, grown chunk by chunk.
	cv.messages = append(cv.messages, ConversationMessage{Role: "assistant", Content: "", Type: ModeText})
	transient := len(cv.messages) - 1
	cv.mu.Unlock()
	cv.notify()

	return cv.api.SendChatMessage(ctx, apiMessages, chatID, StreamCallbacks{
		OnStart: func() {
			cv.mu.Lock()
			if cv.state == StateSending {
				cv.state = StateStreaming
			}
			cv.mu.Unlock()
		},
		OnChunk: func(chunk string) {
			cv.mu.Lock()
			cv.messages[transient].Content += chunk
			cv.mu.Unlock()
			cv.notify()
		},
	})
}

func (cv *Conversation) sendImage(ctx context.Context, prompt, chatID string) error {
	result, err := cv.api.GenerateImage(ctx, ImageGenerationRequest{
		Prompt:  prompt,
		ChatID:  chatID,
		Size:    "1024x1024",
		Quality: "standard",
	})
	if err != nil {
		return err
	}
	cv.mu.Lock()
	cv.messages = append(cv.messages, ConversationMessage{
		Role:     "assistant",
		Content:  result.Prompt,
		Type:     ModeImage,
		ImageURL: result.ImageURL,
	})
	cv.mu.Unlock()
	cv.notify()
	return nil
}

func (cv *Conversation) notify() {
	if cv.OnUpdate != nil {
		cv.OnUpdate()
	}
}
