package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/policydesk/internal/core/domain"
)

// DocumentRoster is the client's last-known-good mirror of the service's
// document collection.
type DocumentRoster interface {
	// Refresh fetches the collection and replaces the roster atomically.
	// On failure the previous roster is kept and the error is returned.
	Refresh(ctx context.Context) error

	// Documents returns a copy of the roster.
	Documents() []domain.Document

	// Len returns the number of documents in the roster.
	Len() int

	// IsEmpty reports whether the roster holds no documents.
	IsEmpty() bool

	// LastRefreshed returns when the roster was last replaced.
	LastRefreshed() time.Time
}
