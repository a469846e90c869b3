package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DocumentStatus is the ingestion state reported by the indexing service.
type DocumentStatus string

// Known document statuses.
const (
	DocumentProcessing DocumentStatus = "processing"
	DocumentCompleted  DocumentStatus = "completed"
	DocumentFailed     DocumentStatus = "failed"
)

// IsValid returns true if the status is one the service is known to report.
func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocumentProcessing, DocumentCompleted, DocumentFailed:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s DocumentStatus) String() string {
	return string(s)
}

// Document is the client's read-only copy of a document owned by the
// indexing service. It is replaced wholesale on every roster refresh.
type Document struct {
	// ID is the service-assigned identifier. It may be empty, in which
	// case the filename and roster position identify the document.
	ID string

	// Filename is the uploaded file's name.
	Filename string

	// NumPages is the page count extracted by the service.
	NumPages int

	// ChunksCount is the number of indexed chunks.
	ChunksCount int

	// Status is the ingestion state.
	Status DocumentStatus

	// UploadDate is when the service accepted the upload.
	UploadDate time.Time
}

// Key returns a stable identity for the document within a roster.
func (d Document) Key() string {
	if d.ID != "" {
		return d.ID
	}
	return d.Filename
}

// UploadResult is the service's answer to an upload request.
type UploadResult struct {
	// Documents lists the documents the service processed.
	Documents []Document

	// Message is the service's human-readable summary, if any.
	Message string
}

// Summary describes the upload for the user. It always states how many
// documents the service returned; a service message that does not already
// carry that count has it appended.
func (r *UploadResult) Summary() string {
	n := len(r.Documents)
	msg := strings.TrimSpace(r.Message)
	if msg == "" {
		return fmt.Sprintf("Successfully processed %d documents", n)
	}
	count := strconv.Itoa(n)
	for _, word := range strings.Fields(msg) {
		if strings.Trim(word, ".,;:()") == count {
			return msg
		}
	}
	return fmt.Sprintf("%s (%d documents)", msg, n)
}
