package driving

import "context"

// Poller refreshes state in the background.
type Poller interface {
	// Start begins polling.
	// Blocks until context is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop ends polling and waits for an in-flight refresh.
	Stop()
}
