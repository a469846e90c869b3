package upload

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/policydesk/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/policydesk/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/policydesk/internal/adapters/driving/tui/tuitest"
	"github.com/custodia-labs/policydesk/internal/core/domain"
	"github.com/custodia-labs/policydesk/internal/core/ports/driven"
	"github.com/custodia-labs/policydesk/internal/core/services"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func testFiles() []domain.UploadFile {
	return []domain.UploadFile{
		domain.FileFromBytes("auto.pdf", []byte("%PDF-auto")),
		domain.FileFromBytes("home.pdf", []byte("%PDF-home")),
	}
}

func newTestView(t *testing.T, source *tuitest.FileSource) (*View, *services.Console, *tuitest.StubClient) {
	t.Helper()
	client := tuitest.NewStubClient()
	console := services.NewConsole(client, services.ConsoleOptions{})
	var files driven.FileSource
	if source != nil {
		files = source
	}
	v := NewView(context.Background(), styles.DefaultStyles(), nil, console.Uploads, files)
	v.SetDimensions(100, 30)
	return v, console, client
}

func scanned(t *testing.T, v *View) {
	t.Helper()
	v, _ = v.Update(messages.FilesScanned{Files: testFiles()})
	require.Len(t, v.Files(), 2)
}

func TestView_InitWithoutFileSource(t *testing.T) {
	v, _, _ := newTestView(t, nil)

	assert.Nil(t, v.Init())
	assert.ErrorIs(t, v.Err(), errNoFileSource)
}

func TestView_InitScansAndWatches(t *testing.T) {
	source := tuitest.NewFileSource(testFiles()...)
	v, _, _ := newTestView(t, source)

	cmd := v.Init()
	require.NotNil(t, cmd)

	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	require.Len(t, batch, 2)

	for _, c := range batch {
		v, _ = v.Update(c())
	}
	assert.Len(t, v.Files(), 2)
	assert.NotNil(t, v.events)
}

func TestView_ScanError(t *testing.T) {
	v, _, _ := newTestView(t, tuitest.NewFileSource())

	v, _ = v.Update(messages.FilesScanned{Err: errors.New("permission denied")})

	require.Error(t, v.Err())
	assert.Contains(t, v.View(), "permission denied")
}

func TestView_ToggleSelection(t *testing.T) {
	v, console, _ := newTestView(t, tuitest.NewFileSource())
	scanned(t, v)

	v, _ = v.Update(runes(" "))
	assert.Equal(t, []string{"auto.pdf"}, console.Uploads.Snapshot().Selection)
	assert.Contains(t, v.View(), "[x] auto.pdf")

	v, _ = v.Update(runes(" "))
	assert.Empty(t, console.Uploads.Snapshot().Selection)
}

func TestView_SelectAllAndClear(t *testing.T) {
	v, console, _ := newTestView(t, tuitest.NewFileSource())
	scanned(t, v)

	v, _ = v.Update(runes("a"))
	assert.Equal(t, []string{"auto.pdf", "home.pdf"}, console.Uploads.Snapshot().Selection)
	assert.Contains(t, v.View(), "2 file(s) selected")

	v, _ = v.Update(runes("c"))
	assert.Empty(t, console.Uploads.Snapshot().Selection)
}

func TestView_UploadEmptySelection(t *testing.T) {
	v, _, _ := newTestView(t, tuitest.NewFileSource())
	scanned(t, v)

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.ErrorIs(t, v.Err(), domain.ErrEmptySelection)
}

func TestView_UploadSelection(t *testing.T) {
	v, console, client := newTestView(t, tuitest.NewFileSource())
	scanned(t, v)
	v, _ = v.Update(runes("a"))

	v, cmd := v.Update(runes("u"))
	require.NotNil(t, cmd)

	msg, ok := cmd().(messages.UploadFinished)
	require.True(t, ok)
	require.NoError(t, msg.Err)
	assert.Len(t, msg.Result.Documents, 2)

	v, _ = v.Update(msg)
	assert.NoError(t, v.Err())
	assert.Contains(t, v.View(), "Uploaded 2 document(s)")
	assert.Empty(t, console.Uploads.Snapshot().Selection)
	assert.Len(t, client.Docs, 2)
}

func TestView_UploadFailureKeepsSelection(t *testing.T) {
	v, console, client := newTestView(t, tuitest.NewFileSource())
	client.UploadErr = &domain.ServiceError{Op: "upload documents", Status: 500, Body: "boom"}
	scanned(t, v)
	v, _ = v.Update(runes(" "))

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	v, _ = v.Update(cmd())

	assert.ErrorIs(t, v.Err(), domain.ErrService)
	assert.Equal(t, []string{"auto.pdf"}, console.Uploads.Snapshot().Selection)
}

func TestView_FileEvents(t *testing.T) {
	source := tuitest.NewFileSource()
	v, console, _ := newTestView(t, source)
	scanned(t, v)
	console.Uploads.Select(testFiles()...)

	v, cmd := v.Update(messages.WatchStarted{Events: source.Events})
	require.NotNil(t, cmd)

	source.Events <- driven.FileEvent{Kind: driven.FileAdded, File: domain.FileFromBytes("claims.pdf", nil)}
	v, cmd = v.Update(cmd())
	require.NotNil(t, cmd)
	assert.Len(t, v.Files(), 3)

	source.Events <- driven.FileEvent{Kind: driven.FileRemoved, File: domain.UploadFile{Name: "home.pdf"}}
	v, _ = v.Update(cmd())
	assert.Len(t, v.Files(), 2)
	assert.Equal(t, []string{"auto.pdf"}, console.Uploads.Snapshot().Selection)
}

func TestView_WatchError(t *testing.T) {
	v, _, _ := newTestView(t, tuitest.NewFileSource())

	v, cmd := v.Update(messages.WatchStarted{Err: errors.New("too many watches")})

	assert.Nil(t, cmd)
	assert.Contains(t, v.Err().Error(), "watch /policies")
}
