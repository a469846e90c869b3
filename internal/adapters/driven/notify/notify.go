// Package notify delivers user-facing notifications to the console's
// outputs: the log, a terminal stream, or a channel drained by the TUI.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/custodia-labs/policydesk/internal/core/domain"
	"github.com/custodia-labs/policydesk/internal/core/ports/driven"
	"github.com/custodia-labs/policydesk/internal/logger"
)

var (
	_ driven.Notifier = Log{}
	_ driven.Notifier = (*Writer)(nil)
	_ driven.Notifier = (*Channel)(nil)
	_ driven.Notifier = Multi(nil)
)

// Log routes notifications to the process logger by level.
type Log struct{}

// Notify implements driven.Notifier.
func (Log) Notify(n domain.Notification) {
	switch n.Level {
	case domain.LevelError:
		logger.Error("%s", n)
	case domain.LevelWarning:
		logger.Warn("%s", n)
	default:
		logger.Info("%s", n)
	}
}

// Writer prints one line per notification. Info notifications are only
// printed when verbose is set.
type Writer struct {
	mu      sync.Mutex
	w       io.Writer
	verbose bool
}

// NewWriter creates a notifier printing to w.
func NewWriter(w io.Writer, verbose bool) *Writer {
	return &Writer{w: w, verbose: verbose}
}

// Notify implements driven.Notifier.
func (p *Writer) Notify(n domain.Notification) {
	if n.Level == domain.LevelInfo && !p.verbose {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "%s %s\n", levelTag(n.Level), n)
}

func levelTag(level domain.NotificationLevel) string {
	switch level {
	case domain.LevelSuccess:
		return "[ok]"
	case domain.LevelWarning:
		return "[warn]"
	case domain.LevelError:
		return "[error]"
	default:
		return "[info]"
	}
}

// Channel buffers notifications for a single consumer. When the buffer
// is full the notification is dropped so producers never block.
type Channel struct {
	ch      chan domain.Notification
	mu      sync.Mutex
	dropped int
}

// NewChannel creates a channel notifier with the given buffer size.
func NewChannel(size int) *Channel {
	if size < 1 {
		size = 1
	}
	return &Channel{ch: make(chan domain.Notification, size)}
}

// Notify implements driven.Notifier.
func (c *Channel) Notify(n domain.Notification) {
	select {
	case c.ch <- n:
	default:
		c.mu.Lock()
		c.dropped++
		c.mu.Unlock()
		logger.Debug("notification dropped: %s", n)
	}
}

// C returns the receive side.
func (c *Channel) C() <-chan domain.Notification {
	return c.ch
}

// Dropped returns how many notifications were discarded.
func (c *Channel) Dropped() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

// Multi fans a notification out to every notifier in order.
type Multi []driven.Notifier

// Notify implements driven.Notifier.
func (m Multi) Notify(n domain.Notification) {
	for _, target := range m {
		if target != nil {
			target.Notify(n)
		}
	}
}
