// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/policydesk/internal/core/domain"
	"github.com/custodia-labs/policydesk/internal/core/ports/driven"
)

// DocumentsRefreshed signals a roster refresh finished.
type DocumentsRefreshed struct {
	Err error
}

// UploadFinished carries the outcome of an upload.
type UploadFinished struct {
	Result *domain.UploadResult
	Err    error
}

// ProgressChanged signals the upload progress moved. The current value
// is read from the orchestrator, so several changes may share one message.
type ProgressChanged struct{}

// AnswerReceived carries the reply to a question.
type AnswerReceived struct {
	Reply domain.ChatMessage
	Err   error
}

// DeleteRequested asks the app to confirm a delete-all.
type DeleteRequested struct{}

// DeleteFinished carries the outcome of a delete-all.
type DeleteFinished struct {
	Err error
}

// ViewChanged signals the active view changed.
type ViewChanged struct {
	View domain.View
}

// NotificationReceived carries a notification from the services.
type NotificationReceived struct {
	Notification domain.Notification
}

// FilesScanned carries the documents found in the upload directory.
type FilesScanned struct {
	Files []domain.UploadFile
	Err   error
}

// WatchStarted carries the event stream of the upload directory.
type WatchStarted struct {
	Events <-chan driven.FileEvent
	Err    error
}

// FileChanged carries one change in the upload directory.
type FileChanged struct {
	Event driven.FileEvent
}

// Tick is the once-per-second heartbeat.
type Tick struct {
	Time time.Time
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// Listen returns a command that waits for the next value on ch and wraps
// it. It yields no message once ch is closed, which ends the subscription.
func Listen[T any](ch <-chan T, wrap func(T) tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		v, ok := <-ch
		if !ok {
			return nil
		}
		return wrap(v)
	}
}

// TickEvery schedules a Tick after d.
func TickEvery(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return Tick{Time: t}
	})
}
