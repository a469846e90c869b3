// Package documents provides the indexed documents view for the TUI.
package documents

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/custodia-labs/policydesk/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/policydesk/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/policydesk/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/policydesk/internal/core/domain"
	"github.com/custodia-labs/policydesk/internal/core/ports/driving"
)

// View lists the documents in the roster.
type View struct {
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap
	roster driving.DocumentRoster

	selected     int
	scrollOffset int
	width        int
	height       int
	loading      bool
	err          error
}

// NewView creates a new documents view.
func NewView(ctx context.Context, s *styles.Styles, km *keymap.KeyMap, roster driving.DocumentRoster) *View {
	if ctx == nil {
		ctx = context.Background()
	}
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		ctx:    ctx,
		styles: s,
		keymap: km,
		roster: roster,
		width:  80,
		height: 24,
	}
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Refresh returns a command that reloads the roster.
func (v *View) Refresh() tea.Cmd {
	v.loading = true
	ctx, roster := v.ctx, v.roster
	return func() tea.Msg {
		return messages.DocumentsRefreshed{Err: roster.Refresh(ctx)}
	}
}

// Update handles messages for the documents view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.DocumentsRefreshed:
		v.loading = false
		v.err = msg.Err
		v.clamp()
		return v, nil

	case messages.DeleteFinished:
		v.err = msg.Err
		v.clamp()
		return v, nil
	}

	v.clamp()
	return v, nil
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	switch {
	case keymap.Matches(k, v.keymap.Up):
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case keymap.Matches(k, v.keymap.Down):
		if v.selected < v.roster.Len()-1 {
			v.selected++
			v.adjustScroll()
		}
	case keymap.Matches(k, v.keymap.Refresh):
		return v, v.Refresh()
	case keymap.Matches(k, v.keymap.DeleteAll):
		if v.roster.IsEmpty() {
			v.err = domain.ErrNoDocuments
			return v, nil
		}
		return v, func() tea.Msg { return messages.DeleteRequested{} }
	}
	return v, nil
}

// clamp keeps the cursor inside the roster after it changed.
func (v *View) clamp() {
	n := v.roster.Len()
	if v.selected >= n {
		v.selected = n - 1
	}
	if v.selected < 0 {
		v.selected = 0
	}
	v.adjustScroll()
}

// adjustScroll adjusts the scroll offset to keep the selected item visible.
func (v *View) adjustScroll() {
	visibleItems := v.visibleItemCount()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	} else if v.selected >= v.scrollOffset+visibleItems {
		v.scrollOffset = v.selected - visibleItems + 1
	}
}

// visibleItemCount returns the number of rows that can be displayed.
func (v *View) visibleItemCount() int {
	available := v.height - 10
	if available < 1 {
		available = 1
	}
	return available
}

// View renders the documents view.
func (v *View) View() string {
	docs := v.roster.Documents()

	var b strings.Builder
	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Indexed documents (%d)", len(docs))))
	b.WriteString("\n")
	if last := v.roster.LastRefreshed(); !last.IsZero() {
		b.WriteString(v.styles.Muted.Render("Updated " + last.Local().Format("15:04:05")))
	}
	b.WriteString("\n\n")

	if v.loading {
		b.WriteString(v.styles.Muted.Render("Refreshing documents..."))
		b.WriteString("\n\n")
	}

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
	}

	if len(docs) == 0 {
		b.WriteString(v.styles.Muted.Render("No documents indexed. Upload documents from the Upload tab."))
		return b.String()
	}

	visibleItems := v.visibleItemCount()
	end := min(v.scrollOffset+visibleItems, len(docs))
	b.WriteString(v.renderTable(docs[v.scrollOffset:end]))

	if len(docs) > visibleItems {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]", v.scrollOffset+1, end, len(docs))))
	}
	return b.String()
}

func (v *View) renderTable(docs []domain.Document) string {
	header := v.styles.Subtitle.Padding(0, 1)
	cell := v.styles.Normal.Padding(0, 1)
	highlight := v.styles.Selected.Padding(0, 1)
	cursor := v.selected - v.scrollOffset

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(v.styles.Muted).
		Headers("FILENAME", "PAGES", "CHUNKS", "STATUS", "UPLOADED").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return header
			case row == cursor:
				return highlight
			case col == 3:
				return v.styles.ForStatus(docs[row].Status).Padding(0, 1)
			default:
				return cell
			}
		})

	for _, d := range docs {
		uploaded := "-"
		if !d.UploadDate.IsZero() {
			uploaded = d.UploadDate.Local().Format("2006-01-02 15:04")
		}
		t.Row(d.Filename, strconv.Itoa(d.NumPages), strconv.Itoa(d.ChunksCount), d.Status.String(), uploaded)
	}
	return t.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.adjustScroll()
}

// SelectedIndex returns the highlighted row.
func (v *View) SelectedIndex() int {
	return v.selected
}

// Loading reports whether a refresh is in flight.
func (v *View) Loading() bool {
	return v.loading
}

// Err returns the last error shown by the view.
func (v *View) Err() error {
	return v.err
}
