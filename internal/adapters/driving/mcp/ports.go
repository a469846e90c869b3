package mcp

import (
	"github.com/custodia-labs/policydesk/internal/core/domain"
	"github.com/custodia-labs/policydesk/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Roster mirrors the service's documents.
	Roster driving.DocumentRoster

	// Chat answers questions.
	Chat driving.ChatSession

	// Uploads runs the upload pipeline. Optional.
	Uploads driving.UploadOrchestrator

	// Admin deletes every document. Optional.
	Admin driving.DocumentAdmin

	// ExpandFiles turns local paths and patterns into upload files.
	// Required for upload_documents.
	ExpandFiles func(paths []string) ([]domain.UploadFile, error)
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Roster == nil {
		return ErrMissingRoster
	}
	if p.Chat == nil {
		return ErrMissingChat
	}
	return nil
}
