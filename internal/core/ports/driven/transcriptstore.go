package driven

import (
	"context"

	"github.com/custodia-labs/policydesk/internal/core/domain"
)

// TranscriptStore archives the conversation so it survives restarts.
type TranscriptStore interface {
	// Append archives one message. Messages are stored in call order.
	Append(ctx context.Context, msg domain.ChatMessage) error

	// List returns archived messages in append order.
	List(ctx context.Context) ([]domain.ChatMessage, error)

	// Clear removes every archived message.
	Clear(ctx context.Context) error
}
