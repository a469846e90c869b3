package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/policydesk/internal/core/domain"
	"github.com/custodia-labs/policydesk/internal/core/ports/driven"
	"github.com/custodia-labs/policydesk/internal/core/ports/driving"
	"github.com/custodia-labs/policydesk/internal/logger"
)

// Ensure DocumentAdmin implements the interface.
var _ driving.DocumentAdmin = (*DocumentAdmin)(nil)

type rosterClearer interface {
	Clear()
}

type transcriptClearer interface {
	ClearAll()
}

type viewForcer interface {
	Force(view domain.View)
}

// DocumentAdmin runs the delete-all workflow.
type DocumentAdmin struct {
	client   driven.IndexClient
	roster   rosterClearer
	chat     transcriptClearer
	views    viewForcer
	notifier driven.Notifier

	mu       sync.Mutex
	deleting bool
}

// NewDocumentAdmin creates a document admin. notifier may be nil.
func NewDocumentAdmin(
	client driven.IndexClient,
	roster rosterClearer,
	chat transcriptClearer,
	views viewForcer,
	notifier driven.Notifier,
) *DocumentAdmin {
	return &DocumentAdmin{
		client:   client,
		roster:   roster,
		chat:     chat,
		views:    views,
		notifier: orNop(notifier),
	}
}

// DeleteAll removes every document from the service. On success the
// roster and transcript are emptied and the upload view is forced. On
// failure all local state is left untouched.
func (a *DocumentAdmin) DeleteAll(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return domain.ErrNotConfirmed
	}

	a.mu.Lock()
	if a.deleting {
		a.mu.Unlock()
		return domain.ErrDeleteInProgress
	}
	a.deleting = true
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.deleting = false
		a.mu.Unlock()
	}()

	logger.Section("Delete all documents")
	if err := a.client.DeleteAllDocuments(ctx); err != nil {
		logger.Warn("delete all failed: %v", err)
		a.notifier.Notify(domain.NewNotification(domain.LevelError, "Failed to delete documents", err.Error()))
		return fmt.Errorf("delete all documents: %w", err)
	}

	a.roster.Clear()
	a.chat.ClearAll()
	a.views.Force(domain.ViewUpload)

	a.notifier.Notify(domain.NewNotification(domain.LevelSuccess, "Documents deleted",
		"All documents and their indexed content were removed"))
	return nil
}

// Ping checks that the indexing service is reachable.
func (a *DocumentAdmin) Ping(ctx context.Context) error {
	if err := a.client.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}
