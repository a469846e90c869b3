package mcp

import (
	"context"
	"time"

	"github.com/custodia-labs/policydesk/internal/core/domain"
)

// mockRoster is a mock implementation of driving.DocumentRoster.
type mockRoster struct {
	documents []domain.Document
	next      []domain.Document
	refreshed time.Time
	err       error
	refreshes int
}

func (m *mockRoster) Refresh(_ context.Context) error {
	m.refreshes++
	if m.err != nil {
		return m.err
	}
	if m.next != nil {
		m.documents = m.next
	}
	m.refreshed = time.Now()
	return nil
}

func (m *mockRoster) Documents() []domain.Document {
	out := make([]domain.Document, len(m.documents))
	copy(out, m.documents)
	return out
}

func (m *mockRoster) Len() int                 { return len(m.documents) }
func (m *mockRoster) IsEmpty() bool            { return len(m.documents) == 0 }
func (m *mockRoster) LastRefreshed() time.Time { return m.refreshed }

// mockChat is a mock implementation of driving.ChatSession.
type mockChat struct {
	reply      domain.ChatMessage
	err        error
	asked      []string
	transcript []domain.ChatMessage
}

func (m *mockChat) Ask(_ context.Context, question string) (domain.ChatMessage, error) {
	m.asked = append(m.asked, question)
	return m.reply, m.err
}

func (m *mockChat) Transcript() []domain.ChatMessage { return m.transcript }
func (m *mockChat) Phase() domain.ChatPhase          { return domain.ChatIdle }
func (m *mockChat) SetDraft(string)                  {}
func (m *mockChat) Draft() string                    { return "" }
func (m *mockChat) ClearAll()                        { m.transcript = nil }

// mockUploads is a mock implementation of driving.UploadOrchestrator.
type mockUploads struct {
	selection domain.SelectionSet
	result    *domain.UploadResult
	err       error
	uploaded  [][]string
}

func (m *mockUploads) Select(files ...domain.UploadFile) { m.selection.Add(files...) }
func (m *mockUploads) Deselect(name string) bool         { return m.selection.Remove(name) }
func (m *mockUploads) ClearSelection()                   { m.selection.Clear() }
func (m *mockUploads) Selection() []domain.UploadFile    { return m.selection.Files() }
func (m *mockUploads) Phase() domain.UploadPhase         { return domain.UploadIdle }
func (m *mockUploads) Progress() int                     { return 0 }
func (m *mockUploads) OnProgress(func(int))              {}

func (m *mockUploads) Snapshot() domain.UploadSnapshot {
	return domain.UploadSnapshot{Phase: domain.UploadIdle, Selection: m.selection.Names()}
}

func (m *mockUploads) StartUpload(_ context.Context) (*domain.UploadResult, error) {
	if m.selection.IsEmpty() {
		return nil, domain.ErrEmptySelection
	}
	m.uploaded = append(m.uploaded, m.selection.Names())
	if m.err != nil {
		return nil, m.err
	}
	m.selection.Clear()
	return m.result, nil
}

// mockAdmin is a mock implementation of driving.DocumentAdmin.
type mockAdmin struct {
	err     error
	deletes int
}

func (m *mockAdmin) DeleteAll(_ context.Context, confirmed bool) error {
	if !confirmed {
		return domain.ErrNotConfirmed
	}
	m.deletes++
	return m.err
}

func (m *mockAdmin) Ping(_ context.Context) error { return m.err }

func sampleDocs() []domain.Document {
	return []domain.Document{
		{
			ID:          "d-1",
			Filename:    "plan summary.pdf",
			NumPages:    12,
			ChunksCount: 40,
			Status:      domain.DocumentCompleted,
			UploadDate:  time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
		},
		{Filename: "rider.pdf", NumPages: 2, Status: domain.DocumentProcessing},
	}
}
