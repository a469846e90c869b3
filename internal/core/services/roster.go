package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/policydesk/internal/core/domain"
	"github.com/custodia-labs/policydesk/internal/core/ports/driven"
	"github.com/custodia-labs/policydesk/internal/core/ports/driving"
	"github.com/custodia-labs/policydesk/internal/logger"
)

// Ensure Roster implements the interface.
var _ driving.DocumentRoster = (*Roster)(nil)

// Roster mirrors the indexing service's document collection.
//
// Refreshes may overlap. Each refresh and each Clear takes a ticket when
// it starts, and a result is applied only if no later ticket has been
// applied already, so a slow response never overwrites a newer one.
type Roster struct {
	client driven.IndexClient

	mu          sync.RWMutex
	documents   []domain.Document
	refreshedAt time.Time
	issued      uint64
	applied     uint64
}

// NewRoster creates an empty roster backed by client.
func NewRoster(client driven.IndexClient) *Roster {
	return &Roster{client: client}
}

// Refresh fetches the document collection and replaces the roster.
func (r *Roster) Refresh(ctx context.Context) error {
	ticket := r.nextTicket()

	docs, err := r.client.ListDocuments(ctx)
	if err != nil {
		logger.Warn("roster refresh failed: %v", err)
		return fmt.Errorf("refresh documents: %w", err)
	}

	fresh := make([]domain.Document, len(docs))
	copy(fresh, docs)

	r.mu.Lock()
	defer r.mu.Unlock()
	if ticket < r.applied {
		logger.Debug("discarding stale roster refresh %d (applied %d)", ticket, r.applied)
		return nil
	}
	r.documents = fresh
	r.refreshedAt = time.Now()
	r.applied = ticket
	logger.Debug("roster refreshed: %d documents", len(fresh))
	return nil
}

// Clear empties the roster without contacting the service.
// Refreshes that started before Clear are discarded when they finish.
func (r *Roster) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.issued++
	r.applied = r.issued
	r.documents = nil
	r.refreshedAt = time.Now()
}

// Documents returns a copy of the roster in service order.
func (r *Roster) Documents() []domain.Document {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Document, len(r.documents))
	copy(out, r.documents)
	return out
}

// Len returns the number of documents.
func (r *Roster) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.documents)
}

// IsEmpty reports whether the roster holds no documents.
func (r *Roster) IsEmpty() bool {
	return r.Len() == 0
}

// LastRefreshed returns when the roster was last replaced.
// The zero time means it has never been loaded.
func (r *Roster) LastRefreshed() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.refreshedAt
}

func (r *Roster) nextTicket() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.issued++
	return r.issued
}
