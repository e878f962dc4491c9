package conversation

import (
	"sync"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry in a conversation window. Messages are immutable once
// appended.
type Message struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Store holds bounded per-conversation message windows. Windows are created
// lazily on first reference. Each window has its own lock, so operations on
// different conversation ids never block each other; append and trim happen
// under the same lock, so a window is never observed above its cap.
type Store struct {
	mu        sync.RWMutex
	windows   map[string]*window
	windowMax int
	contextN  int
}

type window struct {
	mu       sync.Mutex
	messages []Message
}

func NewStore(windowMax, contextN int) *Store {
	if windowMax <= 0 {
		windowMax = 6
	}
	if contextN <= 0 || contextN > windowMax {
		contextN = 3
	}
	return &Store{
		windows:   make(map[string]*window),
		windowMax: windowMax,
		contextN:  contextN,
	}
}

func (s *Store) get(id string) *window {
	s.mu.RLock()
	w, ok := s.windows[id]
	s.mu.RUnlock()
	if ok {
		return w
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok := s.windows[id]; ok {
		return w
	}
	w = &window{}
	s.windows[id] = w
	return w
}

// Append adds a message to the window for id, evicting from the front when
// the window exceeds its cap. Relative order of the remainder is preserved.
func (s *Store) Append(id string, msg Message) {
	w := s.get(id)
	w.mu.Lock()
	defer w.mu.Unlock()
	w.messages = append(w.messages, msg)
	if excess := len(w.messages) - s.windowMax; excess > 0 {
		w.messages = append([]Message(nil), w.messages[excess:]...)
	}
}

// Context returns the most recent contextN messages, oldest-first. The
// result is a copy; callers cannot mutate the window through it.
func (s *Store) Context(id string) []Message {
	w := s.get(id)
	w.mu.Lock()
	defer w.mu.Unlock()
	start := len(w.messages) - s.contextN
	if start < 0 {
		start = 0
	}
	return append([]Message(nil), w.messages[start:]...)
}

// History returns the full current window for id, oldest-first, and whether
// the conversation exists.
func (s *Store) History(id string) ([]Message, bool) {
	s.mu.RLock()
	w, ok := s.windows[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Message(nil), w.messages...), true
}

// Clear removes the conversation entirely and reports whether it existed.
func (s *Store) Clear(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.windows[id]; !ok {
		return false
	}
	delete(s.windows, id)
	return true
}

// Len reports the current window length for id.
func (s *Store) Len(id string) int {
	s.mu.RLock()
	w, ok := s.windows[id]
	s.mu.RUnlock()
	if !ok {
		return 0
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.messages)
}
