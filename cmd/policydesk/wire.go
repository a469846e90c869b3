package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/policydesk/internal/adapters/driven/config/file"
	"github.com/custodia-labs/policydesk/internal/adapters/driven/filesystem"
	"github.com/custodia-labs/policydesk/internal/adapters/driven/indexapi"
	"github.com/custodia-labs/policydesk/internal/adapters/driven/notify"
	"github.com/custodia-labs/policydesk/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/policydesk/internal/adapters/driving/cli"
	"github.com/custodia-labs/policydesk/internal/core/ports/driven"
	"github.com/custodia-labs/policydesk/internal/core/services"
	"github.com/custodia-labs/policydesk/internal/logger"
)

// notificationBuffer is how many notifications the TUI may fall behind by.
const notificationBuffer = 32

// dataDirName holds the transcript archive inside the config directory.
const dataDirName = "data"

// build wires the services for one invocation.
func build(ctx context.Context, opts cli.Options) (*cli.Dependencies, error) {
	configDir := opts.ConfigDir
	if configDir == "" {
		dir, err := file.DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("resolve config directory: %w", err)
		}
		configDir = dir
	}

	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(store)

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if opts.BaseURL != "" {
		settings.API.BaseURL = opts.BaseURL
	}
	if opts.TopK > 0 {
		settings.Chat.TopK = opts.TopK
	}

	client, err := indexapi.NewClient(indexapi.Config{
		BaseURL:           settings.API.BaseURL,
		Timeout:           settings.API.Timeout,
		RequestsPerSecond: settings.API.RequestsPerSecond,
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("using indexing service at %s", client.APIURL())

	var closers []func() error

	var transcripts driven.TranscriptStore
	if settings.History.Enabled {
		db, err := sqlite.NewStore(filepath.Join(configDir, dataDirName))
		if err != nil {
			logger.Warn("transcript history disabled: %v", err)
		} else {
			transcripts = db.TranscriptStore()
			closers = append(closers, db.Close)
		}
	}

	channel := notify.NewChannel(notificationBuffer)
	console := services.NewConsole(client, services.ConsoleOptions{
		Notifier:    notify.Multi{notify.Log{}, channel},
		Transcripts: transcripts,
		TopK:        settings.Chat.TopK,
	})
	if err := console.Start(ctx); err != nil {
		logger.Warn("initial document refresh failed: %v", err)
	}

	uploadDir := settings.Upload.Directory
	if uploadDir == "" {
		if uploadDir, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("resolve upload directory: %w", err)
		}
	}
	source := filesystem.New(uploadDir)
	closers = append(closers, source.Close)

	return &cli.Dependencies{
		Roster:        console.Roster,
		Uploads:       console.Uploads,
		Chat:          console.Chat,
		Views:         console.Views,
		Admin:         console.Admin,
		Settings:      settingsService,
		Poller:        services.NewRosterPoller(console.Roster, services.DefaultPollInterval, nil),
		Files:         source,
		ExpandFiles:   filesystem.Expand,
		Notifications: channel.C(),
		BaseURL:       settings.API.BaseURL,
		Close: func() error {
			var errs []error
			for _, c := range closers {
				errs = append(errs, c())
			}
			return errors.Join(errs...)
		},
	}, nil
}
