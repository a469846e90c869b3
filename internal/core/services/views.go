package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/policydesk/internal/core/domain"
	"github.com/custodia-labs/policydesk/internal/core/ports/driving"
	"github.com/custodia-labs/policydesk/internal/logger"
)

// Ensure ViewController implements the interface.
var _ driving.ViewController = (*ViewController)(nil)

// ViewController owns the active view. At most one delayed transition is
// pending at a time; scheduling, navigating or forcing cancels it.
type ViewController struct {
	mu        sync.Mutex
	current   domain.View
	pending   *time.Timer
	seq       uint64
	observers []func(domain.View)
}

// NewViewController creates a controller showing initial.
func NewViewController(initial domain.View) *ViewController {
	if !initial.IsValid() {
		initial = domain.ViewUpload
	}
	return &ViewController{current: initial}
}

// OnChange registers fn to be called after every view change.
// fn runs on the goroutine that caused the change and must not block.
func (c *ViewController) OnChange(fn func(domain.View)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// Current returns the active view.
func (c *ViewController) Current() domain.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Navigate switches to view on explicit user request.
func (c *ViewController) Navigate(view domain.View) error {
	if !view.IsValid() {
		return fmt.Errorf("%w: unknown view %d", domain.ErrValidation, int(view))
	}
	c.set(view)
	return nil
}

// ScheduleTransition switches to view after delay. A later call to any
// of ScheduleTransition, Navigate or Force supersedes it.
func (c *ViewController) ScheduleTransition(view domain.View, delay time.Duration) {
	if !view.IsValid() {
		return
	}

	c.mu.Lock()
	c.cancelPendingLocked()
	c.seq++
	seq := c.seq
	c.pending = time.AfterFunc(delay, func() {
		c.fire(seq, view)
	})
	c.mu.Unlock()

	logger.Debug("view transition to %s scheduled in %s", view, delay)
}

// Force switches to view immediately, cancelling any pending transition.
func (c *ViewController) Force(view domain.View) {
	if !view.IsValid() {
		return
	}
	c.set(view)
}

// HasPending reports whether a delayed transition is waiting to fire.
func (c *ViewController) HasPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending != nil
}

func (c *ViewController) set(view domain.View) {
	c.mu.Lock()
	c.cancelPendingLocked()
	observers := c.swapLocked(view)
	c.mu.Unlock()

	for _, fn := range observers {
		fn(view)
	}
}

func (c *ViewController) fire(seq uint64, view domain.View) {
	c.mu.Lock()
	if seq != c.seq || c.pending == nil {
		c.mu.Unlock()
		return
	}
	c.pending = nil
	observers := c.swapLocked(view)
	c.mu.Unlock()

	for _, fn := range observers {
		fn(view)
	}
}

// swapLocked sets the view and returns the observers to notify, or nil
// when the view did not change.
func (c *ViewController) swapLocked(view domain.View) []func(domain.View) {
	if c.current == view {
		return nil
	}
	logger.Debug("view %s -> %s", c.current, view)
	c.current = view
	observers := make([]func(domain.View), len(c.observers))
	copy(observers, c.observers)
	return observers
}

func (c *ViewController) cancelPendingLocked() {
	if c.pending == nil {
		return
	}
	c.pending.Stop()
	c.pending = nil
	c.seq++
}
