package driven

import (
	"context"

	"github.com/custodia-labs/policydesk/internal/core/domain"
)

// IndexClient is the remote indexing service. It is a pure request/response
// wrapper with no local state and no retries.
//
// Every method fails with a *domain.NetworkError (transport failure) or a
// *domain.ServiceError (non-2xx response).
type IndexClient interface {
	// ListDocuments returns every document known to the service.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// UploadFiles sends the files for ingestion. files must be non-empty.
	UploadFiles(ctx context.Context, files []domain.UploadFile) (*domain.UploadResult, error)

	// DeleteAllDocuments removes every document and its indexed content.
	DeleteAllDocuments(ctx context.Context) error

	// SubmitQuestion asks a question against the indexed documents.
	// question must be non-empty after trimming whitespace.
	SubmitQuestion(ctx context.Context, question string, topK int) (*domain.AnswerResult, error)

	// Ping checks that the service is reachable.
	Ping(ctx context.Context) error
}
