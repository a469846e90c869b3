package confirm

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(s string) tea.KeyMsg {
	if s == "esc" {
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestDialog_ClosedByDefault(t *testing.T) {
	d := NewDialog(nil, nil)

	assert.False(t, d.IsOpen())
	assert.Empty(t, d.View())

	_, cmd := d.Update(key("y"))
	assert.Nil(t, cmd)
}

func TestDialog_Confirm(t *testing.T) {
	d := NewDialog(nil, nil)
	d.Open("Delete all documents?", "This cannot be undone.")
	require.True(t, d.IsOpen())
	assert.Contains(t, d.View(), "Delete all documents?")

	d, cmd := d.Update(key("y"))

	require.NotNil(t, cmd)
	assert.Equal(t, Answered{Confirmed: true}, cmd())
	assert.False(t, d.IsOpen())
}

func TestDialog_Cancel(t *testing.T) {
	for _, k := range []string{"n", "N", "esc"} {
		t.Run(k, func(t *testing.T) {
			d := NewDialog(nil, nil)
			d.Open("Delete?", "")

			d, cmd := d.Update(key(k))

			require.NotNil(t, cmd)
			assert.Equal(t, Answered{Confirmed: false}, cmd())
			assert.False(t, d.IsOpen())
		})
	}
}

func TestDialog_SwallowsOtherKeys(t *testing.T) {
	d := NewDialog(nil, nil)
	d.Open("Delete?", "")

	d, cmd := d.Update(key("x"))

	assert.Nil(t, cmd)
	assert.True(t, d.IsOpen())
}
