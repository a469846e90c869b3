package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/policydesk/internal/core/domain"
	"github.com/custodia-labs/policydesk/internal/core/ports/driven"
)

// Ensure TranscriptStore implements the interface.
var _ driven.TranscriptStore = (*TranscriptStore)(nil)

// TranscriptStore is an in-memory implementation of driven.TranscriptStore.
// It is used when history is disabled and in tests.
type TranscriptStore struct {
	mu       sync.RWMutex
	messages []domain.ChatMessage
}

// NewTranscriptStore creates a new in-memory transcript store.
func NewTranscriptStore() *TranscriptStore {
	return &TranscriptStore{}
}

// Append archives one message.
func (s *TranscriptStore) Append(_ context.Context, msg domain.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg.Clone())
	return nil
}

// List returns archived messages in append order.
func (s *TranscriptStore) List(_ context.Context) ([]domain.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ChatMessage, len(s.messages))
	for i, m := range s.messages {
		out[i] = m.Clone()
	}
	return out, nil
}

// Clear removes every archived message.
func (s *TranscriptStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	return nil
}
