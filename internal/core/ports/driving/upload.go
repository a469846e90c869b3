package driving

import (
	"context"

	"github.com/custodia-labs/policydesk/internal/core/domain"
)

// UploadOrchestrator runs the select, upload, progress, refresh and
// view-switch pipeline.
type UploadOrchestrator interface {
	// Select adds files to the selection.
	Select(files ...domain.UploadFile)

	// Deselect removes a file from the selection by name.
	Deselect(name string) bool

	// ClearSelection empties the selection.
	ClearSelection()

	// Selection returns the selected files in order.
	Selection() []domain.UploadFile

	// StartUpload uploads the selection and blocks until the response
	// arrives. Only one upload may be in flight.
	StartUpload(ctx context.Context) (*domain.UploadResult, error)

	// Phase returns the current upload phase.
	Phase() domain.UploadPhase

	// Progress returns the simulated progress percentage.
	Progress() int

	// Snapshot returns phase, progress and selection consistently.
	Snapshot() domain.UploadSnapshot

	// OnProgress registers an observer for every distinct progress value.
	OnProgress(fn func(int))
}
