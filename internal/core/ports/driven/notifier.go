package driven

import "github.com/custodia-labs/policydesk/internal/core/domain"

// Notifier delivers transient user-facing notifications.
// Implementations must not block the caller for long.
type Notifier interface {
	Notify(n domain.Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(n domain.Notification)

// Notify calls f(n).
func (f NotifierFunc) Notify(n domain.Notification) {
	f(n)
}
