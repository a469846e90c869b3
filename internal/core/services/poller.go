package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/policydesk/internal/core/domain"
	"github.com/custodia-labs/policydesk/internal/core/ports/driving"
	"github.com/custodia-labs/policydesk/internal/logger"
)

// DefaultPollInterval is how often the poller checks on documents that
// are still being processed.
const DefaultPollInterval = 5 * time.Second

// Ensure RosterPoller implements the interface.
var _ driving.Poller = (*RosterPoller)(nil)

// RosterPoller refreshes the roster in the background while any document
// is still being processed by the service. It is idle otherwise.
type RosterPoller struct {
	roster   driving.DocumentRoster
	interval time.Duration
	onChange func()

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewRosterPoller creates a poller. onChange, if set, is called after
// every successful background refresh.
func NewRosterPoller(roster driving.DocumentRoster, interval time.Duration, onChange func()) *RosterPoller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &RosterPoller{
		roster:   roster,
		interval: interval,
		onChange: onChange,
	}
}

// Start begins polling. It blocks until Stop is called or ctx is done.
func (p *RosterPoller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.stopCh = make(chan struct{})
	stopCh := p.stopCh
	p.wg.Add(1)
	p.mu.Unlock()

	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.markStopped(stopCh)
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

// Stop ends polling and waits for an in-progress refresh to finish.
func (p *RosterPoller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stopCh)
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *RosterPoller) markStopped(stopCh chan struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running && p.stopCh == stopCh {
		p.running = false
		close(p.stopCh)
	}
}

func (p *RosterPoller) poll(ctx context.Context) {
	if !hasProcessing(p.roster.Documents()) {
		return
	}
	logger.Debug("polling roster: documents still processing")
	if err := p.roster.Refresh(ctx); err != nil {
		return
	}
	if p.onChange != nil {
		p.onChange()
	}
}

func hasProcessing(docs []domain.Document) bool {
	for _, d := range docs {
		if d.Status == domain.DocumentProcessing {
			return true
		}
	}
	return false
}
