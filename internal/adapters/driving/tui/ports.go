// Package tui provides the interactive terminal console for policydesk.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/policydesk/internal/core/domain"
	"github.com/custodia-labs/policydesk/internal/core/ports/driven"
	"github.com/custodia-labs/policydesk/internal/core/ports/driving"
)

// Ports aggregates the services the TUI drives.
type Ports struct {
	// Roster mirrors the service's document collection.
	Roster driving.DocumentRoster

	// Uploads runs the upload pipeline.
	Uploads driving.UploadOrchestrator

	// Chat holds the conversation.
	Chat driving.ChatSession

	// Views owns the active view.
	Views driving.ViewController

	// Admin deletes every document.
	Admin driving.DocumentAdmin

	// Files lists the upload directory. Optional.
	Files driven.FileSource

	// Notifications streams service notifications to the status bar. Optional.
	Notifications <-chan domain.Notification
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	switch {
	case p.Roster == nil:
		return ErrMissingRoster
	case p.Uploads == nil:
		return ErrMissingUploads
	case p.Chat == nil:
		return ErrMissingChat
	case p.Views == nil:
		return ErrMissingViews
	case p.Admin == nil:
		return ErrMissingAdmin
	}
	return nil
}
