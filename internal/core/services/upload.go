package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/policydesk/internal/core/domain"
	"github.com/custodia-labs/policydesk/internal/core/ports/driven"
	"github.com/custodia-labs/policydesk/internal/core/ports/driving"
	"github.com/custodia-labs/policydesk/internal/logger"
)

// Ensure UploadOrchestrator implements the interface.
var _ driving.UploadOrchestrator = (*UploadOrchestrator)(nil)

// UploadConfig tunes the simulated progress and the post-upload timers.
type UploadConfig struct {
	// TickInterval is how often simulated progress advances.
	TickInterval time.Duration

	// TickStep is added to progress on every tick.
	TickStep int

	// SoftCap is the highest progress reached before the response arrives.
	SoftCap int

	// ViewSwitchDelay is how long after a successful upload the chat view
	// is shown.
	ViewSwitchDelay time.Duration

	// ResetDelay is how long after completion progress returns to zero.
	ResetDelay time.Duration
}

// DefaultUploadConfig returns the timings used by the console.
func DefaultUploadConfig() UploadConfig {
	return UploadConfig{
		TickInterval:    500 * time.Millisecond,
		TickStep:        10,
		SoftCap:         90,
		ViewSwitchDelay: time.Second,
		ResetDelay:      time.Second,
	}
}

func (c UploadConfig) withDefaults() UploadConfig {
	d := DefaultUploadConfig()
	if c.TickInterval <= 0 {
		c.TickInterval = d.TickInterval
	}
	if c.TickStep <= 0 {
		c.TickStep = d.TickStep
	}
	if c.SoftCap <= 0 || c.SoftCap >= 100 {
		c.SoftCap = d.SoftCap
	}
	if c.ViewSwitchDelay <= 0 {
		c.ViewSwitchDelay = d.ViewSwitchDelay
	}
	if c.ResetDelay <= 0 {
		c.ResetDelay = d.ResetDelay
	}
	return c
}

// documentRefresher is the part of the roster the upload pipeline needs.
type documentRefresher interface {
	Refresh(ctx context.Context) error
}

// transitionScheduler is the part of the view controller the upload
// pipeline needs.
type transitionScheduler interface {
	ScheduleTransition(view domain.View, delay time.Duration)
}

// UploadOrchestrator drives the upload pipeline: selection, simulated
// progress, the upload request, roster refresh and the switch to chat.
//
// Progress observers are called with every distinct progress value in
// order. Emissions are serialised by emitMu, which is always taken
// before mu; observers may read the orchestrator but must not start
// an upload.
type UploadOrchestrator struct {
	client   driven.IndexClient
	roster   documentRefresher
	views    transitionScheduler
	notifier driven.Notifier
	cfg      UploadConfig

	emitMu sync.Mutex

	mu         sync.Mutex
	selection  domain.SelectionSet
	phase      domain.UploadPhase
	progress   int
	generation uint64
	resetTimer *time.Timer
	observers  []func(int)
}

// NewUploadOrchestrator creates an upload orchestrator.
// notifier may be nil.
func NewUploadOrchestrator(
	client driven.IndexClient,
	roster documentRefresher,
	views transitionScheduler,
	notifier driven.Notifier,
	cfg UploadConfig,
) *UploadOrchestrator {
	return &UploadOrchestrator{
		client:   client,
		roster:   roster,
		views:    views,
		notifier: orNop(notifier),
		cfg:      cfg.withDefaults(),
		phase:    domain.UploadIdle,
	}
}

// OnProgress registers fn to receive progress values.
func (o *UploadOrchestrator) OnProgress(fn func(int)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.observers = append(o.observers, fn)
}

// Select adds files to the selection, replacing files with the same name.
func (o *UploadOrchestrator) Select(files ...domain.UploadFile) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.selection.Add(files...)
}

// Deselect removes the named file from the selection.
func (o *UploadOrchestrator) Deselect(name string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.selection.Remove(name)
}

// ClearSelection empties the selection.
func (o *UploadOrchestrator) ClearSelection() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.selection.Clear()
}

// Selection returns the selected files in order.
func (o *UploadOrchestrator) Selection() []domain.UploadFile {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.selection.Files()
}

// Phase returns the current upload phase.
func (o *UploadOrchestrator) Phase() domain.UploadPhase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

// Progress returns the simulated progress percentage.
func (o *UploadOrchestrator) Progress() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.progress
}

// Snapshot returns phase, progress and selection consistently.
func (o *UploadOrchestrator) Snapshot() domain.UploadSnapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return domain.UploadSnapshot{
		Phase:     o.phase,
		Progress:  o.progress,
		Selection: o.selection.Names(),
	}
}

// StartUpload uploads the current selection and blocks until the service
// answers.
//
// On success the uploaded files leave the selection, progress jumps to
// 100, the roster is refreshed and the chat view is scheduled. A roster
// refresh failure is reported as a warning and does not fail the upload.
// On failure the selection is kept so the user can retry. In both cases
// progress returns to zero after the reset delay.
func (o *UploadOrchestrator) StartUpload(ctx context.Context) (*domain.UploadResult, error) {
	o.mu.Lock()
	if o.phase == domain.UploadUploading {
		o.mu.Unlock()
		return nil, domain.ErrUploadInProgress
	}
	if o.selection.IsEmpty() {
		o.mu.Unlock()
		return nil, domain.ErrEmptySelection
	}
	o.phase = domain.UploadUploading
	o.generation++
	gen := o.generation
	if o.resetTimer != nil {
		o.resetTimer.Stop()
		o.resetTimer = nil
	}
	batch := o.selection.Batch()
	files := batch.Files
	o.mu.Unlock()

	logger.Section("Upload")
	defer logger.Timed(fmt.Sprintf("upload of %d file(s)", len(files)))()
	defer o.finish(gen)

	o.setProgress(gen, 0)

	stop := o.startTicker(gen)
	result, err := o.client.UploadFiles(ctx, files)
	stop()

	if err != nil {
		logger.Warn("upload failed: %v", err)
		o.notifier.Notify(domain.NewNotification(domain.LevelError, "Upload failed", err.Error()))
		return nil, fmt.Errorf("upload documents: %w", err)
	}

	if result == nil {
		result = &domain.UploadResult{}
	}
	o.setProgress(gen, 100)

	o.mu.Lock()
	o.selection.RemoveBatch(batch)
	o.mu.Unlock()

	if err := o.roster.Refresh(ctx); err != nil {
		o.notifier.Notify(domain.NewNotification(domain.LevelWarning,
			"Document list not refreshed", err.Error()))
	}

	o.views.ScheduleTransition(domain.ViewChat, o.cfg.ViewSwitchDelay)

	o.notifier.Notify(domain.NewNotification(domain.LevelSuccess, "Upload complete", result.Summary()))
	return result, nil
}

// startTicker advances progress until the soft cap. The returned stop
// function blocks until the ticker goroutine has exited, so no tick can
// land after it returns.
func (o *UploadOrchestrator) startTicker(gen uint64) (stop func()) {
	done := make(chan struct{})
	exited := make(chan struct{})

	go func() {
		defer close(exited)
		ticker := time.NewTicker(o.cfg.TickInterval)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if capped := o.advance(gen); capped {
					return
				}
			}
		}
	}()

	return func() {
		close(done)
		<-exited
	}
}

// advance adds one tick of progress and reports whether the soft cap was
// reached.
func (o *UploadOrchestrator) advance(gen uint64) bool {
	o.emitMu.Lock()
	defer o.emitMu.Unlock()

	o.mu.Lock()
	if gen != o.generation || o.phase != domain.UploadUploading {
		o.mu.Unlock()
		return true
	}
	next := o.progress + o.cfg.TickStep
	if next > o.cfg.SoftCap {
		next = o.cfg.SoftCap
	}
	changed := next != o.progress
	o.progress = next
	observers := o.copyObserversLocked()
	o.mu.Unlock()

	if changed {
		emit(observers, next)
	}
	return next >= o.cfg.SoftCap
}

func (o *UploadOrchestrator) setProgress(gen uint64, value int) {
	o.emitMu.Lock()
	defer o.emitMu.Unlock()

	o.mu.Lock()
	if gen != o.generation {
		o.mu.Unlock()
		return
	}
	changed := value != o.progress
	o.progress = value
	observers := o.copyObserversLocked()
	o.mu.Unlock()

	if changed {
		emit(observers, value)
	}
}

// finish returns the pipeline to idle and schedules the progress reset.
func (o *UploadOrchestrator) finish(gen uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation {
		return
	}
	o.phase = domain.UploadIdle
	o.resetTimer = time.AfterFunc(o.cfg.ResetDelay, func() {
		o.reset(gen)
	})
}

func (o *UploadOrchestrator) reset(gen uint64) {
	o.emitMu.Lock()
	defer o.emitMu.Unlock()

	o.mu.Lock()
	if gen != o.generation || o.phase != domain.UploadIdle {
		o.mu.Unlock()
		return
	}
	o.resetTimer = nil
	changed := o.progress != 0
	o.progress = 0
	observers := o.copyObserversLocked()
	o.mu.Unlock()

	if changed {
		emit(observers, 0)
	}
}

func (o *UploadOrchestrator) copyObserversLocked() []func(int) {
	observers := make([]func(int), len(o.observers))
	copy(observers, o.observers)
	return observers
}

func emit(observers []func(int), value int) {
	for _, fn := range observers {
		fn(value)
	}
}
