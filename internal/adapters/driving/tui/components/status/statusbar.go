// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/policydesk/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/policydesk/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/policydesk/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/policydesk/internal/core/domain"
)

// NotificationTTL is how long a notification stays on the bar.
const NotificationTTL = 5 * time.Second

// State represents the current application state for display.
type State string

const (
	StateReady     State = "ready"
	StateUploading State = "uploading"
	StateWaiting   State = "waiting"
	StateDeleting  State = "deleting"
)

// Bar displays application status, the latest notification and
// keybinding hints.
type Bar struct {
	styles       *styles.Styles
	hints        []key.Binding
	state        State
	notification *domain.Notification
	expires      time.Time
	documents    int
	width        int
	now          func() time.Time
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		hints:  km.UploadHelp(),
		state:  StateReady,
		width:  80,
		now:    time.Now,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update expires notifications on ticks.
func (s *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.NotificationReceived:
		s.Notify(msg.Notification)
	case messages.Tick:
		if s.notification != nil && !msg.Time.Before(s.expires) {
			s.notification = nil
		}
	}
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (s *Bar) renderLeft() string {
	if s.notification != nil {
		return s.styles.ForLevel(s.notification.Level).Render(s.notification.String())
	}
	switch s.state {
	case StateUploading:
		return s.styles.Muted.Render("Uploading...")
	case StateWaiting:
		return s.styles.Muted.Render("Waiting for answer...")
	case StateDeleting:
		return s.styles.Muted.Render("Deleting documents...")
	case StateReady:
	}
	return s.styles.Muted.Render(fmt.Sprintf("Ready · %d documents", s.documents))
}

func (s *Bar) renderRight() string {
	hints := make([]string, 0, len(s.hints))
	for _, b := range s.hints {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Help.Render(strings.Join(hints, " | "))
}

// Notify shows n until NotificationTTL has passed.
func (s *Bar) Notify(n domain.Notification) {
	s.notification = &n
	s.expires = s.now().Add(NotificationTTL)
}

// Notification returns the notification on display, or nil.
func (s *Bar) Notification() *domain.Notification {
	return s.notification
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetHints sets the keybinding hints.
func (s *Bar) SetHints(hints []key.Binding) {
	s.hints = hints
}

// SetDocumentCount sets the number of indexed documents shown when idle.
func (s *Bar) SetDocumentCount(n int) {
	s.documents = n
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets the status bar to default state.
func (s *Bar) Clear() {
	s.state = StateReady
	s.notification = nil
}
