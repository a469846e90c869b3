package driving

import "context"

// DocumentAdmin runs destructive operations on the document collection.
type DocumentAdmin interface {
	// DeleteAll removes every document. The caller must have obtained
	// explicit user confirmation; confirmed=false fails without any call.
	DeleteAll(ctx context.Context, confirmed bool) error

	// Ping checks that the indexing service is reachable.
	Ping(ctx context.Context) error
}
