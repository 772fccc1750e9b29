// Package history keeps volatile per-user records of chat and execution
// activity. It backs the HTTP surface's history endpoints and is not
// persisted across restarts.
package history

import (
	"sync"
	"time"

	"github.com/hupe1980/codesmith/core"
)

// DefaultMaxRecords bounds how many records are retained per user. Older
// records are dropped first.
const DefaultMaxRecords = 100

// ChatRecord captures one completed generation request.
type ChatRecord struct {
	Prompt    string                `json:"prompt"`
	Language  string                `json:"language"`
	ModelUsed string                `json:"model_used"`
	Response  core.SelectedResponse `json:"response"`
	Timestamp time.Time             `json:"timestamp"`
}

// ExecutionRecord captures one sandbox run.
type ExecutionRecord struct {
	Language  string               `json:"language"`
	Result    core.ExecutionResult `json:"result"`
	Timestamp time.Time            `json:"timestamp"`
}

type userHistory struct {
	chats      []ChatRecord
	executions []ExecutionRecord
}

// InMemoryStore is a volatile history store keyed by user id. It is safe for
// concurrent access; returned slices are copies.
type InMemoryStore struct {
	mu    sync.RWMutex
	max   int
	users map[string]*userHistory
}

// InMemoryStoreOptions configures an InMemoryStore.
type InMemoryStoreOptions struct {
	// MaxRecords caps retained records per user and kind.
	MaxRecords int
}

// NewInMemoryStore constructs an empty history store.
func NewInMemoryStore(optFns ...func(o *InMemoryStoreOptions)) *InMemoryStore {
	opts := InMemoryStoreOptions{MaxRecords: DefaultMaxRecords}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxRecords <= 0 {
		opts.MaxRecords = DefaultMaxRecords
	}
	return &InMemoryStore{max: opts.MaxRecords, users: make(map[string]*userHistory)}
}

func (s *InMemoryStore) userLocked(userID string) *userHistory {
	h, ok := s.users[userID]
	if !ok {
		h = &userHistory{}
		s.users[userID] = h
	}
	return h
}

// AppendChat records a completed generation for the user.
func (s *InMemoryStore) AppendChat(userID string, rec ChatRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.userLocked(userID)
	h.chats = append(h.chats, rec)
	if len(h.chats) > s.max {
		h.chats = h.chats[len(h.chats)-s.max:]
	}
}

// AppendExecution records a sandbox run for the user.
func (s *InMemoryStore) AppendExecution(userID string, rec ExecutionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.userLocked(userID)
	h.executions = append(h.executions, rec)
	if len(h.executions) > s.max {
		h.executions = h.executions[len(h.executions)-s.max:]
	}
}

// Chats returns the user's chat records, oldest first.
func (s *InMemoryStore) Chats(userID string) []ChatRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.users[userID]
	if !ok {
		return nil
	}
	return append([]ChatRecord(nil), h.chats...)
}

// Executions returns the user's execution records, oldest first.
func (s *InMemoryStore) Executions(userID string) []ExecutionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.users[userID]
	if !ok {
		return nil
	}
	return append([]ExecutionRecord(nil), h.executions...)
}

// Clear drops all records for the user.
func (s *InMemoryStore) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, userID)
}
