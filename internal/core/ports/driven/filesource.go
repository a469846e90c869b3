package driven

import (
	"context"

	"github.com/custodia-labs/policydesk/internal/core/domain"
)

// FileEventKind describes a change in a watched directory.
type FileEventKind int

const (
	// FileAdded means a candidate document appeared or changed.
	FileAdded FileEventKind = iota
	// FileRemoved means a candidate document disappeared.
	FileRemoved
)

// FileEvent is a change to the set of candidate documents.
type FileEvent struct {
	Kind FileEventKind
	File domain.UploadFile
}

// FileSource lists candidate documents for upload.
type FileSource interface {
	// Scan returns the current candidate documents sorted by name.
	Scan() ([]domain.UploadFile, error)

	// Watch streams changes until ctx is cancelled. The channel is closed
	// when watching stops.
	Watch(ctx context.Context) (<-chan FileEvent, error)

	// Dir returns the directory being scanned.
	Dir() string
}
