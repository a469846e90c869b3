// Package chat provides the question and answer view for the TUI.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/policydesk/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/policydesk/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/policydesk/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/policydesk/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/policydesk/internal/core/domain"
	"github.com/custodia-labs/policydesk/internal/core/ports/driving"
)

// View shows the conversation and the question input.
type View struct {
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap
	chat   driving.ChatSession
	roster driving.DocumentRoster

	input    *input.QuestionInput
	viewport viewport.Model
	spinner  spinner.Model

	pending  bool
	rendered int
	err      error
	width    int
	height   int
}

// NewView creates a new chat view.
func NewView(
	ctx context.Context,
	s *styles.Styles,
	km *keymap.KeyMap,
	chat driving.ChatSession,
	roster driving.DocumentRoster,
) *View {
	if ctx == nil {
		ctx = context.Background()
	}
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	v := &View{
		ctx:      ctx,
		styles:   s,
		keymap:   km,
		chat:     chat,
		roster:   roster,
		input:    input.NewQuestionInput(s),
		viewport: viewport.New(80, 10),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(s.Muted),
		),
		rendered: -1,
	}
	v.input.SetValue(chat.Draft())
	return v
}

// Init focuses the input and renders the transcript.
func (v *View) Init() tea.Cmd {
	v.sync()
	return v.input.Focus()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)

	case messages.AnswerReceived:
		v.pending = false
		v.err = msg.Err
		v.sync()
		return v, nil

	case spinner.TickMsg:
		v.sync()
		if !v.pending {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case tea.MouseMsg:
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd
	}

	v.sync()
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.Type {
	case tea.KeyPgUp:
		v.viewport.HalfPageUp()
		return v, nil
	case tea.KeyPgDown:
		v.viewport.HalfPageDown()
		return v, nil
	}

	if keymap.Matches(msg.String(), v.keymap.Send) {
		return v, v.submit()
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	v.chat.SetDraft(v.input.Value())
	return v, cmd
}

func (v *View) submit() tea.Cmd {
	question := strings.TrimSpace(v.input.Value())
	if question == "" || v.pending {
		return nil
	}
	if v.roster.IsEmpty() {
		v.err = domain.ErrNoDocuments
		return nil
	}

	v.pending = true
	v.err = nil
	v.input.Reset()
	v.chat.SetDraft("")

	ctx, chat := v.ctx, v.chat
	ask := func() tea.Msg {
		reply, err := chat.Ask(ctx, question)
		return messages.AnswerReceived{Reply: reply, Err: err}
	}
	return tea.Batch(ask, v.spinner.Tick)
}

// sync re-renders the transcript when it has grown or shrunk.
func (v *View) sync() {
	transcript := v.chat.Transcript()
	if len(transcript) == v.rendered {
		return
	}
	v.rendered = len(transcript)
	v.viewport.SetContent(v.renderTranscript(transcript))
	v.viewport.GotoBottom()
}

func (v *View) renderTranscript(transcript []domain.ChatMessage) string {
	if len(transcript) == 0 {
		return v.styles.Muted.Render("Ask a question about your uploaded policy documents.")
	}
	blocks := make([]string, 0, len(transcript))
	for _, m := range transcript {
		blocks = append(blocks, v.renderMessage(m))
	}
	return strings.Join(blocks, "\n\n")
}

func (v *View) renderMessage(m domain.ChatMessage) string {
	wrap := v.styles.Normal.Width(max(v.width-4, 20))

	var b strings.Builder
	if m.Role == domain.RoleUser {
		b.WriteString(v.styles.UserLabel.Render("You"))
	} else {
		b.WriteString(v.styles.AssistantLabel.Render("Assistant"))
		switch label := m.GroundingLabel(); label {
		case domain.GroundedLabel:
			b.WriteString(" " + v.styles.Grounded.Render("● "+label))
		case domain.LimitedInformationLabel:
			b.WriteString(" " + v.styles.Limited.Render("● "+label))
		}
	}
	b.WriteString("\n")
	b.WriteString(wrap.Render(m.Content))

	if len(m.Citations) > 0 {
		b.WriteString("\n")
		b.WriteString(v.styles.Subtitle.Render("Sources"))
		for i, c := range m.Citations {
			b.WriteString("\n")
			b.WriteString(v.styles.Normal.Render(
				fmt.Sprintf("[%d] Page %d · %s relevant", i+1, c.PageNumber, c.FormatRelevance())))
			if c.Snippet != "" {
				b.WriteString("\n")
				b.WriteString(v.styles.Muted.Width(max(v.width-8, 20)).Render("    " + c.Snippet))
			}
		}
	}
	return b.String()
}

// View renders the chat view.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Ask about your policies"))
	b.WriteString("\n\n")
	b.WriteString(v.viewport.View())
	b.WriteString("\n\n")

	switch {
	case v.pending:
		b.WriteString(v.spinner.View() + v.styles.Muted.Render(" Thinking..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(errorText(v.err)))
	case v.roster.IsEmpty():
		b.WriteString(v.styles.Warning.Render("No documents indexed yet. Upload documents first."))
	}
	b.WriteString("\n")
	b.WriteString(v.input.View())
	return b.String()
}

func errorText(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoDocuments):
		return "Upload documents before asking questions."
	case errors.Is(err, domain.ErrQuestionPending):
		return "Please wait for the current answer."
	default:
		return "Error: " + err.Error()
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.input.SetWidth(width)
	v.viewport.Width = width
	v.viewport.Height = max(height-8, 3)
	v.rendered = -1
	v.sync()
}

// Pending reports whether a question is awaiting its answer.
func (v *View) Pending() bool {
	return v.pending
}

// Err returns the last error shown by the view.
func (v *View) Err() error {
	return v.err
}

// Input returns the question input.
func (v *View) Input() *input.QuestionInput {
	return v.input
}
