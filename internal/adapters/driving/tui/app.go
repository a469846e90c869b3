package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/policydesk/internal/adapters/driving/tui/components/confirm"
	"github.com/custodia-labs/policydesk/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/policydesk/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/policydesk/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/policydesk/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/policydesk/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/policydesk/internal/adapters/driving/tui/views/documents"
	"github.com/custodia-labs/policydesk/internal/adapters/driving/tui/views/upload"
	"github.com/custodia-labs/policydesk/internal/core/domain"
)

// tickInterval drives notification expiry and background re-renders.
const tickInterval = time.Second

// chromeHeight is the number of lines taken by the tabs and status bar.
const chromeHeight = 4

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	uploadView    *upload.View
	chatView      *chat.View
	documentsView *documents.View
	statusBar     *status.Bar
	dialog        *confirm.Dialog

	// progress and viewChange coalesce observer callbacks from the
	// services into at most one pending message each.
	progress   chan struct{}
	viewChange chan struct{}

	deleting bool
	err      error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	a := &App{
		ports:      ports,
		ctx:        context.Background(),
		styles:     styles.DefaultStyles(),
		keymap:     keymap.DefaultKeyMap(),
		progress:   make(chan struct{}, 1),
		viewChange: make(chan struct{}, 1),
	}
	a.statusBar = status.NewBar(a.styles, a.keymap)
	a.dialog = confirm.NewDialog(a.styles, a.keymap)
	a.buildViews()

	ports.Uploads.OnProgress(func(int) { signal(a.progress) })
	ports.Views.OnChange(func(domain.View) { signal(a.viewChange) })

	return a, nil
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

func (a *App) buildViews() {
	p := a.ports
	a.uploadView = upload.NewView(a.ctx, a.styles, a.keymap, p.Uploads, p.Files)
	a.chatView = chat.NewView(a.ctx, a.styles, a.keymap, p.Chat, p.Roster)
	a.documentsView = documents.NewView(a.ctx, a.styles, a.keymap, p.Roster)
}

// WithContext sets the context for the app. Service calls started by the
// views are cancelled with it.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.buildViews()
	if a.ready {
		a.resize()
	}
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	a.switchedTo(a.ports.Views.Current())
	return tea.Batch(
		tea.SetWindowTitle("policydesk"),
		a.documentsView.Refresh(),
		a.uploadView.Init(),
		a.chatView.Init(),
		a.listenProgress(),
		a.listenViews(),
		a.listenNotifications(),
		messages.TickEvery(tickInterval),
	)
}

func (a *App) listenProgress() tea.Cmd {
	return messages.Listen(a.progress, func(struct{}) tea.Msg {
		return messages.ProgressChanged{}
	})
}

func (a *App) listenViews() tea.Cmd {
	views := a.ports.Views
	return messages.Listen(a.viewChange, func(struct{}) tea.Msg {
		return messages.ViewChanged{View: views.Current()}
	})
}

func (a *App) listenNotifications() tea.Cmd {
	return messages.Listen(a.ports.Notifications, func(n domain.Notification) tea.Msg {
		return messages.NotificationReceived{Notification: n}
	})
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := a.update(msg)
	a.refreshStatus()
	return a, cmd
}

//nolint:gocyclo // central message router
func (a *App) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.resize()
		return nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.ProgressChanged:
		return a.listenProgress()

	case messages.ViewChanged:
		a.switchedTo(msg.View)
		return tea.Batch(a.listenViews(), a.focus(msg.View))

	case messages.NotificationReceived:
		a.statusBar, _ = a.statusBar.Update(msg)
		return a.listenNotifications()

	case messages.Tick:
		a.statusBar, _ = a.statusBar.Update(msg)
		a.chatView, _ = a.chatView.Update(msg)
		return messages.TickEvery(tickInterval)

	case messages.FilesScanned, messages.WatchStarted, messages.FileChanged, messages.UploadFinished:
		a.uploadView, cmd = a.uploadView.Update(msg)
		return cmd

	case messages.AnswerReceived, spinner.TickMsg:
		a.chatView, cmd = a.chatView.Update(msg)
		return cmd

	case messages.DocumentsRefreshed:
		a.documentsView, cmd = a.documentsView.Update(msg)
		return cmd

	case messages.DeleteRequested:
		a.dialog.Open(
			"Delete all documents?",
			fmt.Sprintf("All %d documents, their indexed content and the conversation\nwill be removed. This cannot be undone.",
				a.ports.Roster.Len()),
		)
		return nil

	case confirm.Answered:
		if !msg.Confirmed {
			return nil
		}
		return a.deleteAll()

	case messages.DeleteFinished:
		a.deleting = false
		a.err = msg.Err
		a.documentsView, _ = a.documentsView.Update(msg)
		a.chatView, _ = a.chatView.Update(msg)
		return nil

	case messages.ErrorOccurred:
		a.err = msg.Err
		return nil

	case messages.Quit:
		return tea.Quit
	}

	return a.forward(msg)
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	k := msg.String()
	if keymap.Matches(k, a.keymap.ForceQuit) {
		return tea.Quit
	}

	if a.dialog.IsOpen() {
		var cmd tea.Cmd
		a.dialog, cmd = a.dialog.Update(msg)
		return cmd
	}

	current := a.ports.Views.Current()
	switch {
	case keymap.Matches(k, a.keymap.NextView):
		return a.navigate(current, 1)
	case keymap.Matches(k, a.keymap.PrevView):
		return a.navigate(current, -1)
	case current != domain.ViewChat && keymap.Matches(k, a.keymap.Quit):
		return tea.Quit
	}
	return a.forward(msg)
}

// navigate moves step views from current, wrapping around.
func (a *App) navigate(current domain.View, step int) tea.Cmd {
	all := domain.Views()
	next := all[(int(current)+step+len(all))%len(all)]
	if err := a.ports.Views.Navigate(next); err != nil {
		a.err = err
		return nil
	}
	a.switchedTo(next)
	return a.focus(next)
}

// switchedTo updates the chrome for the active view.
func (a *App) switchedTo(view domain.View) {
	switch view {
	case domain.ViewUpload:
		a.statusBar.SetHints(a.keymap.UploadHelp())
	case domain.ViewChat:
		a.statusBar.SetHints(a.keymap.ChatHelp())
	case domain.ViewDocuments:
		a.statusBar.SetHints(a.keymap.DocumentsHelp())
	}
}

func (a *App) focus(view domain.View) tea.Cmd {
	if view == domain.ViewChat {
		return a.chatView.Input().Focus()
	}
	return nil
}

func (a *App) deleteAll() tea.Cmd {
	a.deleting = true
	ctx, admin := a.ctx, a.ports.Admin
	return func() tea.Msg {
		return messages.DeleteFinished{Err: admin.DeleteAll(ctx, true)}
	}
}

// forward passes msg to the active view.
func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.ports.Views.Current() {
	case domain.ViewUpload:
		a.uploadView, cmd = a.uploadView.Update(msg)
	case domain.ViewChat:
		a.chatView, cmd = a.chatView.Update(msg)
	case domain.ViewDocuments:
		a.documentsView, cmd = a.documentsView.Update(msg)
	}
	return cmd
}

func (a *App) refreshStatus() {
	a.statusBar.SetDocumentCount(a.ports.Roster.Len())
	switch {
	case a.deleting:
		a.statusBar.SetState(status.StateDeleting)
	case a.ports.Uploads.Phase() == domain.UploadUploading:
		a.statusBar.SetState(status.StateUploading)
	case a.chatView.Pending():
		a.statusBar.SetState(status.StateWaiting)
	default:
		a.statusBar.SetState(status.StateReady)
	}
	if a.dialog.IsOpen() {
		a.statusBar.SetHints(a.keymap.ConfirmHelp())
	} else {
		a.switchedTo(a.ports.Views.Current())
	}
}

func (a *App) resize() {
	body := a.height - chromeHeight
	a.uploadView.SetDimensions(a.width, body)
	a.chatView.SetDimensions(a.width, body)
	a.documentsView.SetDimensions(a.width, body)
	a.statusBar.SetWidth(a.width)
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	body := a.activeView()
	if a.dialog.IsOpen() {
		body = lipgloss.Place(a.width, a.height-chromeHeight, lipgloss.Center, lipgloss.Center, a.dialog.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		a.renderTabs(),
		"",
		lipgloss.NewStyle().Height(a.height-chromeHeight).Render(body),
		a.statusBar.View(),
	)
}

func (a *App) activeView() string {
	switch a.ports.Views.Current() {
	case domain.ViewChat:
		return a.chatView.View()
	case domain.ViewDocuments:
		return a.documentsView.View()
	default:
		return a.uploadView.View()
	}
}

func (a *App) renderTabs() string {
	current := a.ports.Views.Current()
	tabs := make([]string, 0, len(domain.Views()))
	for _, v := range domain.Views() {
		label := v.Title()
		if v == domain.ViewDocuments {
			label = fmt.Sprintf("%s (%d)", label, a.ports.Roster.Len())
		}
		if v == current {
			tabs = append(tabs, a.styles.ActiveTab.Render(label))
		} else {
			tabs = append(tabs, a.styles.Tab.Render(label))
		}
	}
	return a.styles.Title.Render("policydesk") + "  " + strings.Join(tabs, " ")
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the active view.
func (a *App) CurrentView() domain.View {
	return a.ports.Views.Current()
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has received its first window size.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions (for testing).
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.resize()
}

// StatusBar returns the status bar component.
func (a *App) StatusBar() *status.Bar {
	return a.statusBar
}

// DialogOpen reports whether a confirmation dialog is showing.
func (a *App) DialogOpen() bool {
	return a.dialog.IsOpen()
}
