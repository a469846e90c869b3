package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/policydesk/internal/core/domain"
)

func newLoadedConsole(t *testing.T, client *mockIndexClient, notifier *recordingNotifier) *Console {
	t.Helper()
	client.listFn = func(context.Context) ([]domain.Document, error) { return docs("policy.pdf"), nil }
	console := NewConsole(client, ConsoleOptions{Notifier: notifier, Upload: fastUploadConfig()})
	require.NoError(t, console.Start(context.Background()))
	_, err := console.Chat.Ask(context.Background(), "Is dental covered?")
	require.NoError(t, err)
	require.NoError(t, console.Views.Navigate(domain.ViewChat))
	return console
}

func TestDocumentAdmin_NotConfirmed(t *testing.T) {
	client := &mockIndexClient{}
	console := newLoadedConsole(t, client, &recordingNotifier{})

	err := console.Admin.DeleteAll(context.Background(), false)

	assert.ErrorIs(t, err, domain.ErrNotConfirmed)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, _, deletes, _ := client.calls()
	assert.Equal(t, 0, deletes)
	assert.Equal(t, 1, console.Roster.Len())
	assert.Len(t, console.Chat.Transcript(), 2)
}

func TestDocumentAdmin_Success(t *testing.T) {
	client := &mockIndexClient{}
	notifier := &recordingNotifier{}
	console := newLoadedConsole(t, client, notifier)

	err := console.Admin.DeleteAll(context.Background(), true)

	require.NoError(t, err)
	assert.True(t, console.Roster.IsEmpty())
	assert.Empty(t, console.Chat.Transcript())
	assert.Equal(t, domain.ViewUpload, console.Views.Current())
	assert.Contains(t, notifier.levels(), domain.LevelSuccess)
}

func TestDocumentAdmin_Failure(t *testing.T) {
	client := &mockIndexClient{}
	notifier := &recordingNotifier{}
	console := newLoadedConsole(t, client, notifier)
	client.deleteFn = func(context.Context) error {
		return &domain.NetworkError{Op: "delete documents", Err: errors.New("connection reset")}
	}

	err := console.Admin.DeleteAll(context.Background(), true)

	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.Equal(t, 1, console.Roster.Len())
	assert.Len(t, console.Chat.Transcript(), 2)
	assert.Equal(t, domain.ViewChat, console.Views.Current())
	assert.Equal(t, []domain.NotificationLevel{domain.LevelError}, notifier.levels())
}

func TestDocumentAdmin_ConcurrentDeleteRejected(t *testing.T) {
	client := &mockIndexClient{}
	console := newLoadedConsole(t, client, &recordingNotifier{})

	entered := make(chan struct{})
	release := make(chan struct{})
	client.mu.Lock()
	client.deleteFn = func(context.Context) error {
		close(entered)
		<-release
		return nil
	}
	client.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- console.Admin.DeleteAll(context.Background(), true) }()
	<-entered

	err := console.Admin.DeleteAll(context.Background(), true)
	assert.ErrorIs(t, err, domain.ErrDeleteInProgress)

	close(release)
	require.NoError(t, <-done)
	_, _, deletes, _ := client.calls()
	assert.Equal(t, 1, deletes)
}

func TestDocumentAdmin_Ping(t *testing.T) {
	client := &mockIndexClient{}
	admin := NewDocumentAdmin(client, NewRoster(client), NewChatSession(client, stubRoster{}, nil),
		NewViewController(domain.ViewUpload), nil)

	require.NoError(t, admin.Ping(context.Background()))

	client.pingFn = func(context.Context) error { return &domain.ServiceError{Op: "ping", Status: 503} }
	assert.ErrorIs(t, admin.Ping(context.Background()), domain.ErrService)
}
