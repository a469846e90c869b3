package services

import (
	"context"

	"github.com/custodia-labs/policydesk/internal/core/domain"
	"github.com/custodia-labs/policydesk/internal/core/ports/driven"
	"github.com/custodia-labs/policydesk/internal/logger"
)

// ConsoleOptions configures NewConsole.
type ConsoleOptions struct {
	// Notifier receives user-facing notifications. Optional.
	Notifier driven.Notifier

	// Transcripts archives the conversation. Optional.
	Transcripts driven.TranscriptStore

	// Upload tunes the upload pipeline. Zero values use the defaults.
	Upload UploadConfig

	// TopK is the number of passages retrieved per question.
	TopK int

	// InitialView is the view shown at start.
	InitialView domain.View
}

// Console wires the services that make up one console session around a
// single indexing service client.
type Console struct {
	Roster  *Roster
	Views   *ViewController
	Uploads *UploadOrchestrator
	Chat    *ChatSession
	Admin   *DocumentAdmin
}

// NewConsole creates the services for one session.
func NewConsole(client driven.IndexClient, opts ConsoleOptions) *Console {
	roster := NewRoster(client)
	views := NewViewController(opts.InitialView)

	chatOpts := []ChatOption{WithTopK(opts.TopK)}
	if opts.Transcripts != nil {
		chatOpts = append(chatOpts, WithTranscriptStore(opts.Transcripts))
	}
	chat := NewChatSession(client, roster, opts.Notifier, chatOpts...)

	return &Console{
		Roster:  roster,
		Views:   views,
		Uploads: NewUploadOrchestrator(client, roster, views, opts.Notifier, opts.Upload),
		Chat:    chat,
		Admin:   NewDocumentAdmin(client, roster, chat, views, opts.Notifier),
	}
}

// Start restores the archived transcript and loads the roster.
// A restore failure is logged; a refresh failure is returned so the
// caller can report it, but the console remains usable.
func (c *Console) Start(ctx context.Context) error {
	if err := c.Chat.Restore(ctx); err != nil {
		logger.Error("%v", err)
	}
	return c.Roster.Refresh(ctx)
}
