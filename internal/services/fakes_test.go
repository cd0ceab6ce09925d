package services

import (
  "context"
  "errors"
  "sort"
  "sync"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/wavelength-chat/wavelength-backend/internal/types"
)

// memStore backs the in-memory repo fakes. Deleting a session removes its
// messages, mirroring the ON DELETE CASCADE constraint.
type memStore struct {
  mu        sync.Mutex
  clock     time.Time
  sessions  map[uuid.UUID]*types.ChatSession
  messages  []*types.ChatMessage
}

func newMemStore() *memStore {
  return &memStore{
    clock:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
    sessions:  make(map[uuid.UUID]*types.ChatSession),
  }
}

// tick hands out strictly increasing timestamps so created_at ordering is
// deterministic.
func (s *memStore) tick() time.Time {
  s.clock = s.clock.Add(time.Second)
  return s.clock
}

type memSessionRepo struct {
  store *memStore
}

func (r *memSessionRepo) CreateSession(ctx context.Context, tx *gorm.DB, session *types.ChatSession) (*types.ChatSession, error) {
  r.store.mu.Lock()
  defer r.store.mu.Unlock()
  if session.ID == uuid.Nil {
    session.ID = uuid.New()
  }
  now := r.store.tick()
  session.CreatedAt = now
  session.UpdatedAt = now
  cp := *session
  r.store.sessions[session.ID] = &cp
  return session, nil
}

func (r *memSessionRepo) GetSessionByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ChatSession, error) {
  r.store.mu.Lock()
  defer r.store.mu.Unlock()
  s, ok := r.store.sessions[id]
  if !ok {
    return nil, gorm.ErrRecordNotFound
  }
  cp := *s
  return &cp, nil
}

func (r *memSessionRepo) ListSessions(ctx context.Context, tx *gorm.DB, limit int) ([]types.ChatSession, error) {
  r.store.mu.Lock()
  defer r.store.mu.Unlock()
  var out []types.ChatSession
  for _, s := range r.store.sessions {
    out = append(out, *s)
  }
  sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
  if len(out) > limit {
    out = out[:limit]
  }
  return out, nil
}

func (r *memSessionRepo) UpdateTitle(ctx context.Context, tx *gorm.DB, id uuid.UUID, title string) (*types.ChatSession, error) {
  r.store.mu.Lock()
  defer r.store.mu.Unlock()
  s, ok := r.store.sessions[id]
  if !ok {
    return nil, gorm.ErrRecordNotFound
  }
  s.Title = title
  s.UpdatedAt = r.store.tick()
  cp := *s
  return &cp, nil
}

func (r *memSessionRepo) TouchSession(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
  r.store.mu.Lock()
  defer r.store.mu.Unlock()
  s, ok := r.store.sessions[id]
  if !ok {
    return gorm.ErrRecordNotFound
  }
  s.UpdatedAt = r.store.tick()
  return nil
}

func (r *memSessionRepo) DeleteSession(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
  r.store.mu.Lock()
  defer r.store.mu.Unlock()
  delete(r.store.sessions, id)
  kept := r.store.messages[:0]
  for _, m := range r.store.messages {
    if m.ChatID != id {
      kept = append(kept, m)
    }
  }
  r.store.messages = kept
  return nil
}

type memMessageRepo struct {
  store *memStore
}

func (r *memMessageRepo) CreateMessages(ctx context.Context, tx *gorm.DB, msgs []*types.ChatMessage) ([]*types.ChatMessage, error) {
  r.store.mu.Lock()
  defer r.store.mu.Unlock()
  for _, m := range msgs {
    if m.ID == uuid.Nil {
      m.ID = uuid.New()
    }
    m.CreatedAt = r.store.tick()
    cp := *m
    r.store.messages = append(r.store.messages, &cp)
  }
  return msgs, nil
}

func (r *memMessageRepo) GetByChatID(ctx context.Context, tx *gorm.DB, chatID uuid.UUID) ([]*types.ChatMessage, error) {
  r.store.mu.Lock()
  defer r.store.mu.Unlock()
  var out []*types.ChatMessage
  for _, m := range r.store.messages {
    if m.ChatID == chatID {
      cp := *m
      out = append(out, &cp)
    }
  }
  sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
  return out, nil
}

// fakeOpenAI scripts the upstream: either emits fragments then ends cleanly,
// or fails before/midway. onChatCall observes when the stream is opened.
type fakeOpenAI struct {
  mu            sync.Mutex
  fragments     []string
  chatErr       error
  failAfter     int     // fragments emitted before chatErr; -1 means fail before any
  imageB64      string
  imageErr      error
  chatCalls     int
  imageCalls    int
  onChatCall    func()
}

func (f *fakeOpenAI) StreamChatCompletion(ctx context.Context, messages []PromptMessage, onFragment func(string) error) error {
  f.mu.Lock()
  f.chatCalls++
  f.mu.Unlock()
  if f.onChatCall != nil {
    f.onChatCall()
  }
  if f.chatErr != nil && f.failAfter < 0 {
    return f.chatErr
  }
  for i, frag := range f.fragments {
    if f.chatErr != nil && i == f.failAfter {
      return f.chatErr
    }
    if err := onFragment(frag); err != nil {
      return err
    }
  }
  if f.chatErr != nil && f.failAfter >= len(f.fragments) {
    return f.chatErr
  }
  return nil
}

func (f *fakeOpenAI) GenerateImage(ctx context.Context, prompt, size, quality string) (GeneratedImage, error) {
  f.mu.Lock()
  f.imageCalls++
  f.mu.Unlock()
  if f.imageErr != nil {
    return GeneratedImage{}, f.imageErr
  }
  return GeneratedImage{B64PNG: f.imageB64}, nil
}

var errSinkClosed = errors.New("sink closed")

// fragmentCollector is a FragmentSink that records everything it receives.
type fragmentCollector struct {
  fragments   []string
  failAt      int   // index at which WriteFragment errors; -1 disables
}

func (fc *fragmentCollector) WriteFragment(fragment string) error {
  if fc.failAt >= 0 && len(fc.fragments) == fc.failAt {
    return errSinkClosed
  }
  fc.fragments = append(fc.fragments, fragment)
  return nil
}
