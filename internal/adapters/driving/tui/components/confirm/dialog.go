// Package confirm provides a yes/no confirmation dialog for the TUI.
package confirm

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/policydesk/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/policydesk/internal/adapters/driving/tui/styles"
)

// Answered is emitted when the user answers the dialog.
type Answered struct {
	Confirmed bool
}

// Dialog asks the user to confirm an action. While open it captures all
// key input.
type Dialog struct {
	styles *styles.Styles
	keymap *keymap.KeyMap
	title  string
	body   string
	open   bool
}

// NewDialog creates a closed dialog.
func NewDialog(s *styles.Styles, km *keymap.KeyMap) *Dialog {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Dialog{styles: s, keymap: km}
}

// Open shows the dialog with the given text.
func (d *Dialog) Open(title, body string) {
	d.title = title
	d.body = body
	d.open = true
}

// IsOpen reports whether the dialog is showing.
func (d *Dialog) IsOpen() bool {
	return d.open
}

// Update answers the dialog on confirm or cancel keys. Other keys are
// swallowed.
func (d *Dialog) Update(msg tea.Msg) (*Dialog, tea.Cmd) {
	if !d.open {
		return d, nil
	}
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return d, nil
	}

	switch {
	case keymap.Matches(km.String(), d.keymap.Confirm):
		d.open = false
		return d, answer(true)
	case keymap.Matches(km.String(), d.keymap.Cancel):
		d.open = false
		return d, answer(false)
	}
	return d, nil
}

// View renders the dialog, or nothing when closed.
func (d *Dialog) View() string {
	if !d.open {
		return ""
	}
	var b strings.Builder
	b.WriteString(d.styles.Error.Bold(true).Render(d.title))
	b.WriteString("\n\n")
	b.WriteString(d.styles.Normal.Render(d.body))
	b.WriteString("\n\n")
	b.WriteString(d.styles.Help.Render("[y] confirm   [n/esc] cancel"))
	return d.styles.Dialog.Render(b.String())
}

func answer(confirmed bool) tea.Cmd {
	return func() tea.Msg {
		return Answered{Confirmed: confirmed}
	}
}
