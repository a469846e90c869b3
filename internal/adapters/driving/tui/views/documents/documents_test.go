package documents

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/policydesk/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/policydesk/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/policydesk/internal/core/domain"
)

// MockRoster implements driving.DocumentRoster for testing.
type MockRoster struct {
	Docs        []domain.Document
	RefreshFunc func(ctx context.Context) error
	Refreshed   time.Time
	Refreshes   int
}

func (m *MockRoster) Refresh(ctx context.Context) error {
	m.Refreshes++
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx)
	}
	return nil
}

func (m *MockRoster) Documents() []domain.Document { return m.Docs }
func (m *MockRoster) Len() int                     { return len(m.Docs) }
func (m *MockRoster) IsEmpty() bool                { return len(m.Docs) == 0 }
func (m *MockRoster) LastRefreshed() time.Time     { return m.Refreshed }

func sampleDocs() []domain.Document {
	return []domain.Document{
		{
			ID:          "d-1",
			Filename:    "home.pdf",
			NumPages:    12,
			ChunksCount: 40,
			Status:      domain.DocumentCompleted,
			UploadDate:  time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
		},
		{Filename: "auto.pdf", NumPages: 4, ChunksCount: 0, Status: domain.DocumentProcessing},
		{ID: "d-3", Filename: "travel.pdf", NumPages: 2, ChunksCount: 5, Status: domain.DocumentFailed},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewView(t *testing.T) {
	v := NewView(context.Background(), styles.DefaultStyles(), nil, &MockRoster{})

	require.NotNil(t, v)
	assert.Equal(t, 0, v.SelectedIndex())
	assert.Nil(t, v.Init())
}

func TestView_Empty(t *testing.T) {
	v := NewView(context.Background(), nil, nil, &MockRoster{})

	view := v.View()
	assert.Contains(t, view, "Indexed documents (0)")
	assert.Contains(t, view, "No documents indexed.")
}

func TestView_RendersTable(t *testing.T) {
	roster := &MockRoster{Docs: sampleDocs(), Refreshed: time.Now()}
	v := NewView(context.Background(), nil, nil, roster)
	v.SetDimensions(120, 40)

	view := v.View()
	assert.Contains(t, view, "Indexed documents (3)")
	assert.Contains(t, view, "Updated")
	for _, want := range []string{"FILENAME", "home.pdf", "auto.pdf", "travel.pdf", "processing", "failed", "40"} {
		assert.Contains(t, view, want)
	}
}

func TestView_Navigation(t *testing.T) {
	v := NewView(context.Background(), nil, nil, &MockRoster{Docs: sampleDocs()})

	v, _ = v.Update(key("down"))
	v, _ = v.Update(key("j"))
	v, _ = v.Update(key("j"))
	assert.Equal(t, 2, v.SelectedIndex())

	v, _ = v.Update(key("up"))
	assert.Equal(t, 1, v.SelectedIndex())
}

func TestView_ScrollIndicator(t *testing.T) {
	v := NewView(context.Background(), nil, nil, &MockRoster{Docs: sampleDocs()})
	v.SetDimensions(120, 11)

	v, _ = v.Update(key("down"))
	view := v.View()

	assert.Contains(t, view, "[2-2 of 3]")
	assert.Contains(t, view, "auto.pdf")
	assert.NotContains(t, view, "home.pdf")
}

func TestView_Refresh(t *testing.T) {
	roster := &MockRoster{Docs: sampleDocs()}
	v := NewView(context.Background(), nil, nil, roster)

	v, cmd := v.Update(key("r"))
	require.NotNil(t, cmd)
	assert.True(t, v.Loading())
	assert.Contains(t, v.View(), "Refreshing documents...")

	msg := cmd()
	assert.Equal(t, messages.DocumentsRefreshed{}, msg)
	assert.Equal(t, 1, roster.Refreshes)

	v, _ = v.Update(msg)
	assert.False(t, v.Loading())
	assert.NoError(t, v.Err())
}

func TestView_RefreshError(t *testing.T) {
	roster := &MockRoster{
		Docs: sampleDocs(),
		RefreshFunc: func(context.Context) error {
			return &domain.NetworkError{Op: "list documents", Err: errors.New("connection refused")}
		},
	}
	v := NewView(context.Background(), nil, nil, roster)

	_, cmd := v.Update(key("r"))
	v, _ = v.Update(cmd())

	assert.ErrorIs(t, v.Err(), domain.ErrNetwork)
	view := v.View()
	assert.Contains(t, view, "connection refused")
	assert.Contains(t, view, "home.pdf")
}

func TestView_DeleteRequested(t *testing.T) {
	v := NewView(context.Background(), nil, nil, &MockRoster{Docs: sampleDocs()})

	_, cmd := v.Update(key("D"))

	require.NotNil(t, cmd)
	assert.Equal(t, messages.DeleteRequested{}, cmd())
}

func TestView_DeleteWithNoDocuments(t *testing.T) {
	v := NewView(context.Background(), nil, nil, &MockRoster{})

	v, cmd := v.Update(key("D"))

	assert.Nil(t, cmd)
	assert.ErrorIs(t, v.Err(), domain.ErrNoDocuments)
}

func TestView_ClampsAfterRosterShrinks(t *testing.T) {
	roster := &MockRoster{Docs: sampleDocs()}
	v := NewView(context.Background(), nil, nil, roster)
	v, _ = v.Update(key("j"))
	v, _ = v.Update(key("j"))

	roster.Docs = nil
	v, _ = v.Update(messages.DeleteFinished{})

	assert.Equal(t, 0, v.SelectedIndex())
}
