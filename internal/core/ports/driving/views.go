package driving

import (
	"time"

	"github.com/custodia-labs/policydesk/internal/core/domain"
)

// ViewController owns the single active view.
type ViewController interface {
	// Current returns the active view.
	Current() domain.View

	// Navigate sets the active view on explicit user request.
	Navigate(view domain.View) error

	// ScheduleTransition switches to view after delay unless superseded.
	ScheduleTransition(view domain.View, delay time.Duration)

	// Force switches immediately and cancels any pending transition.
	Force(view domain.View)

	// OnChange registers an observer called after every view change.
	OnChange(fn func(domain.View))
}
