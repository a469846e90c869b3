// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/policydesk/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/policydesk/internal/core/domain"
)

// FileList displays candidate upload files in a navigable list and marks
// the ones that are selected.
type FileList struct {
	files    []domain.UploadFile
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewFileList creates a new file list component.
func NewFileList(s *styles.Styles) *FileList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &FileList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the file list.
func (l *FileList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (l *FileList) Update(msg tea.Msg) (*FileList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		}
	}
	return l, nil
}

// View renders the list. isSelected reports whether a file is in the
// upload selection.
func (l *FileList) View(isSelected func(name string) bool) string {
	if len(l.files) == 0 {
		return l.styles.Muted.Render("No PDF documents found")
	}

	visible := l.height
	if visible < 1 {
		visible = 1
	}
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := start + visible
	if end > len(l.files) {
		end = len(l.files)
	}

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, l.renderFile(i, isSelected(l.files[i].Name)))
	}
	return strings.Join(lines, "\n")
}

func (l *FileList) renderFile(index int, checked bool) string {
	f := l.files[index]

	box := "[ ]"
	if checked {
		box = "[x]"
	}

	name := f.Name
	maxNameLen := l.width - 24
	if maxNameLen < 10 {
		maxNameLen = 10
	}
	if len(name) > maxNameLen {
		name = name[:maxNameLen-3] + "..."
	}

	meta := formatSize(f.Size)
	if f.Pages > 0 {
		meta = fmt.Sprintf("%d pp · %s", f.Pages, meta)
	}

	line := fmt.Sprintf("%s %-*s  ", box, maxNameLen, name)
	if index == l.selected {
		return l.styles.Selected.Render("> "+line) + l.styles.Muted.Render(meta)
	}
	return l.styles.Normal.Render("  "+line) + l.styles.Muted.Render(meta)
}

// SetFiles replaces the listed files, keeping the cursor in range.
func (l *FileList) SetFiles(files []domain.UploadFile) {
	l.files = files
	l.clamp()
}

// Upsert adds f or replaces the listed file with the same name, keeping
// the list sorted by name.
func (l *FileList) Upsert(f domain.UploadFile) {
	for i := range l.files {
		if l.files[i].Name == f.Name {
			l.files[i] = f
			return
		}
	}
	l.files = append(l.files, f)
	sort.Slice(l.files, func(i, j int) bool { return l.files[i].Name < l.files[j].Name })
}

// Remove drops the named file from the list.
func (l *FileList) Remove(name string) bool {
	for i := range l.files {
		if l.files[i].Name == name {
			l.files = append(l.files[:i], l.files[i+1:]...)
			l.clamp()
			return true
		}
	}
	return false
}

// Files returns the listed files.
func (l *FileList) Files() []domain.UploadFile {
	return l.files
}

// Current returns the file under the cursor.
func (l *FileList) Current() (domain.UploadFile, bool) {
	if len(l.files) == 0 {
		return domain.UploadFile{}, false
	}
	return l.files[l.selected], true
}

// Cursor returns the index of the highlighted file.
func (l *FileList) Cursor() int {
	return l.selected
}

// MoveUp moves the cursor up.
func (l *FileList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves the cursor down.
func (l *FileList) MoveDown() {
	if l.selected < len(l.files)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *FileList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of listed files.
func (l *FileList) Count() int {
	return len(l.files)
}

func (l *FileList) clamp() {
	if l.selected >= len(l.files) {
		l.selected = len(l.files) - 1
	}
	if l.selected < 0 {
		l.selected = 0
	}
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
