package driving

import (
	"context"

	"github.com/custodia-labs/policydesk/internal/core/domain"
)

// ChatSession holds the ordered conversation transcript.
type ChatSession interface {
	// Ask appends the question, submits it and appends the answer.
	// It returns the assistant message that was appended. Questions are
	// serialised: Ask fails with domain.ErrQuestionPending while waiting.
	Ask(ctx context.Context, question string) (domain.ChatMessage, error)

	// Transcript returns a copy of the conversation in append order.
	Transcript() []domain.ChatMessage

	// Phase returns the current chat phase.
	Phase() domain.ChatPhase

	// SetDraft stores the pending question input.
	SetDraft(text string)

	// Draft returns the pending question input.
	Draft() string

	// ClearAll empties the transcript.
	ClearAll()
}
