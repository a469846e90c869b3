// Package upload provides the file selection and upload view for the TUI.
package upload

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/policydesk/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/policydesk/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/policydesk/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/policydesk/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/policydesk/internal/core/domain"
	"github.com/custodia-labs/policydesk/internal/core/ports/driven"
	"github.com/custodia-labs/policydesk/internal/core/ports/driving"
)

// errNoFileSource is shown when the console was started without an
// upload directory.
var errNoFileSource = errors.New("no upload directory configured")

// View lists the PDFs in the upload directory and uploads the selection.
type View struct {
	ctx     context.Context
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	uploads driving.UploadOrchestrator
	files   driven.FileSource

	list     *list.FileList
	progress progress.Model
	events   <-chan driven.FileEvent

	result *domain.UploadResult
	err    error
	width  int
	height int
}

// NewView creates a new upload view. files may be nil.
func NewView(
	ctx context.Context,
	s *styles.Styles,
	km *keymap.KeyMap,
	uploads driving.UploadOrchestrator,
	files driven.FileSource,
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
	return &View{
		ctx:      ctx,
		styles:   s,
		keymap:   km,
		uploads:  uploads,
		files:    files,
		list:     list.NewFileList(s),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

// Init scans the upload directory and starts watching it.
func (v *View) Init() tea.Cmd {
	if v.files == nil {
		v.err = errNoFileSource
		return nil
	}
	return tea.Batch(v.scan(), v.watch())
}

func (v *View) scan() tea.Cmd {
	files := v.files
	return func() tea.Msg {
		found, err := files.Scan()
		return messages.FilesScanned{Files: found, Err: err}
	}
}

func (v *View) watch() tea.Cmd {
	ctx, files := v.ctx, v.files
	return func() tea.Msg {
		events, err := files.Watch(ctx)
		return messages.WatchStarted{Events: events, Err: err}
	}
}

func (v *View) next() tea.Cmd {
	return messages.Listen(v.events, func(e driven.FileEvent) tea.Msg {
		return messages.FileChanged{Event: e}
	})
}

// Update handles messages for the upload view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.FilesScanned:
		if msg.Err != nil {
			v.err = fmt.Errorf("scan %s: %w", v.files.Dir(), msg.Err)
			return v, nil
		}
		v.list.SetFiles(msg.Files)
		return v, nil

	case messages.WatchStarted:
		if msg.Err != nil {
			v.err = fmt.Errorf("watch %s: %w", v.files.Dir(), msg.Err)
			return v, nil
		}
		v.events = msg.Events
		return v, v.next()

	case messages.FileChanged:
		switch msg.Event.Kind {
		case driven.FileAdded:
			v.list.Upsert(msg.Event.File)
		case driven.FileRemoved:
			v.list.Remove(msg.Event.File.Name)
			v.uploads.Deselect(msg.Event.File.Name)
		}
		return v, v.next()

	case messages.UploadFinished:
		v.result, v.err = msg.Result, msg.Err
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.uploads.Phase() == domain.UploadUploading {
		return v, nil
	}

	k := msg.String()
	switch {
	case keymap.Matches(k, v.keymap.Up), keymap.Matches(k, v.keymap.Down):
		v.list, _ = v.list.Update(msg)
	case keymap.Matches(k, v.keymap.Toggle):
		v.toggle()
	case keymap.Matches(k, v.keymap.SelectAll):
		v.uploads.Select(v.list.Files()...)
	case keymap.Matches(k, v.keymap.ClearSelection):
		v.uploads.ClearSelection()
	case keymap.Matches(k, v.keymap.Upload):
		return v, v.startUpload()
	}
	return v, nil
}

func (v *View) toggle() {
	f, ok := v.list.Current()
	if !ok {
		return
	}
	if !v.uploads.Deselect(f.Name) {
		v.uploads.Select(f)
	}
}

func (v *View) startUpload() tea.Cmd {
	if len(v.uploads.Selection()) == 0 {
		v.err = domain.ErrEmptySelection
		return nil
	}
	v.err = nil
	v.result = nil

	ctx, uploads := v.ctx, v.uploads
	return func() tea.Msg {
		result, err := uploads.StartUpload(ctx)
		return messages.UploadFinished{Result: result, Err: err}
	}
}

// View renders the upload view.
func (v *View) View() string {
	snap := v.uploads.Snapshot()
	selected := make(map[string]bool, len(snap.Selection))
	for _, name := range snap.Selection {
		selected[name] = true
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Upload policy documents"))
	b.WriteString("\n")
	if v.files != nil {
		b.WriteString(v.styles.Muted.Render(v.files.Dir()))
	}
	b.WriteString("\n\n")

	b.WriteString(v.list.View(func(name string) bool { return selected[name] }))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Normal.Render(fmt.Sprintf("%d file(s) selected", len(snap.Selection))))
	b.WriteString("\n")

	if snap.Phase == domain.UploadUploading || snap.Progress > 0 {
		b.WriteString("\n")
		b.WriteString(v.progress.ViewAs(float64(snap.Progress) / 100))
		b.WriteString("\n")
	}

	switch {
	case v.err != nil:
		b.WriteString("\n")
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case v.result != nil:
		b.WriteString("\n")
		b.WriteString(v.styles.Success.Render(summary(v.result)))
	}
	return b.String()
}

func summary(r *domain.UploadResult) string {
	if r.Message != "" {
		return r.Message
	}
	return fmt.Sprintf("Uploaded %d document(s)", len(r.Documents))
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.list.SetDimensions(width, height-12)
	w := width - 8
	if w > 60 {
		w = 60
	}
	if w < 10 {
		w = 10
	}
	v.progress.Width = w
}

// Err returns the last error shown by the view.
func (v *View) Err() error {
	return v.err
}

// Files returns the listed files.
func (v *View) Files() []domain.UploadFile {
	return v.list.Files()
}
