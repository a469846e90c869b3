package services

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/policydesk/internal/core/domain"
)

func fastUploadConfig() UploadConfig {
	return UploadConfig{
		TickInterval:    2 * time.Millisecond,
		TickStep:        10,
		SoftCap:         90,
		ViewSwitchDelay: 10 * time.Millisecond,
		ResetDelay:      20 * time.Millisecond,
	}
}

type uploadFixture struct {
	client   *mockIndexClient
	roster   *Roster
	views    *ViewController
	notifier *recordingNotifier
	progress *progressRecorder
	uploads  *UploadOrchestrator
}

func newUploadFixture() *uploadFixture {
	f := &uploadFixture{
		client:   &mockIndexClient{},
		notifier: &recordingNotifier{},
		progress: &progressRecorder{},
	}
	f.roster = NewRoster(f.client)
	f.views = NewViewController(domain.ViewUpload)
	f.uploads = NewUploadOrchestrator(f.client, f.roster, f.views, f.notifier, fastUploadConfig())
	f.uploads.OnProgress(f.progress.record)
	return f
}

// waitForCap blocks until simulated progress reaches the soft cap.
func waitForCap(o *UploadOrchestrator) {
	deadline := time.Now().Add(2 * time.Second)
	for o.Progress() < 90 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
}

func TestDefaultUploadConfig(t *testing.T) {
	cfg := DefaultUploadConfig()

	assert.Equal(t, 10, cfg.TickStep)
	assert.Equal(t, 90, cfg.SoftCap)
	assert.Equal(t, time.Second, cfg.ViewSwitchDelay)
	assert.Equal(t, time.Second, cfg.ResetDelay)
}

func TestUploadConfig_WithDefaults(t *testing.T) {
	cfg := UploadConfig{SoftCap: 150}.withDefaults()

	assert.Equal(t, DefaultUploadConfig().TickInterval, cfg.TickInterval)
	assert.Equal(t, 90, cfg.SoftCap)
	assert.Equal(t, time.Second, cfg.ResetDelay)
}

func TestUploadOrchestrator_Selection(t *testing.T) {
	f := newUploadFixture()

	f.uploads.Select(domain.FileFromBytes("a.pdf", []byte("a")), domain.FileFromBytes("b.pdf", []byte("b")))
	f.uploads.Select(domain.FileFromBytes("a.pdf", []byte("a2")))

	assert.Equal(t, []string{"a.pdf", "b.pdf"}, f.uploads.Snapshot().Selection)
	assert.True(t, f.uploads.Deselect("a.pdf"))
	assert.False(t, f.uploads.Deselect("a.pdf"))
	assert.Len(t, f.uploads.Selection(), 1)

	f.uploads.ClearSelection()
	assert.Empty(t, f.uploads.Selection())
}

func TestUploadOrchestrator_EmptySelection(t *testing.T) {
	f := newUploadFixture()

	result, err := f.uploads.StartUpload(context.Background())

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrEmptySelection)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, uploads, _, _ := f.client.calls()
	assert.Equal(t, 0, uploads)
	assert.Equal(t, domain.UploadIdle, f.uploads.Phase())
}

func TestUploadOrchestrator_Success(t *testing.T) {
	f := newUploadFixture()
	f.client.uploadFn = func(_ context.Context, files []domain.UploadFile) (*domain.UploadResult, error) {
		waitForCap(f.uploads)
		return &domain.UploadResult{Documents: docs("a.pdf", "b.pdf")}, nil
	}
	f.client.listFn = func(context.Context) ([]domain.Document, error) { return docs("a.pdf", "b.pdf"), nil }

	f.uploads.Select(domain.FileFromBytes("a.pdf", []byte("a")), domain.FileFromBytes("b.pdf", []byte("b")))

	result, err := f.uploads.StartUpload(context.Background())

	require.NoError(t, err)
	require.Len(t, result.Documents, 2)
	assert.Equal(t, domain.UploadIdle, f.uploads.Phase())
	assert.Equal(t, 100, f.uploads.Progress())
	assert.Empty(t, f.uploads.Selection())
	assert.Equal(t, 2, f.roster.Len())
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, f.client.lastFiles)
	assert.Equal(t, []domain.NotificationLevel{domain.LevelSuccess}, f.notifier.levels())

	assert.Eventually(t, func() bool {
		return f.views.Current() == domain.ViewChat
	}, time.Second, 2*time.Millisecond)
	assert.Eventually(t, func() bool {
		return f.uploads.Progress() == 0
	}, time.Second, 2*time.Millisecond)
}

func TestUploadOrchestrator_ProgressSequence(t *testing.T) {
	f := newUploadFixture()
	f.client.uploadFn = func(context.Context, []domain.UploadFile) (*domain.UploadResult, error) {
		waitForCap(f.uploads)
		return &domain.UploadResult{}, nil
	}
	f.uploads.Select(domain.FileFromBytes("a.pdf", nil))

	_, err := f.uploads.StartUpload(context.Background())
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		v := f.progress.snapshot()
		return len(v) > 0 && v[len(v)-1] == 0
	}, time.Second, 2*time.Millisecond)

	assert.Equal(t, []int{10, 20, 30, 40, 50, 60, 70, 80, 90, 100, 0}, f.progress.snapshot())
}

func TestUploadOrchestrator_ProgressNeverExceedsCapBeforeResponse(t *testing.T) {
	f := newUploadFixture()
	f.client.uploadFn = func(context.Context, []domain.UploadFile) (*domain.UploadResult, error) {
		time.Sleep(60 * time.Millisecond)
		return nil, errors.New("boom")
	}
	f.uploads.Select(domain.FileFromBytes("a.pdf", nil))

	_, err := f.uploads.StartUpload(context.Background())
	require.Error(t, err)

	values := f.progress.snapshot()
	prev := 0
	for _, v := range values {
		assert.LessOrEqual(t, v, 90)
		assert.GreaterOrEqual(t, v, prev)
		prev = v
	}
}

func TestUploadOrchestrator_Failure(t *testing.T) {
	f := newUploadFixture()
	f.client.uploadFn = func(context.Context, []domain.UploadFile) (*domain.UploadResult, error) {
		return nil, &domain.ServiceError{Op: "upload documents", Status: 500, Body: "extraction failed"}
	}
	f.uploads.Select(domain.FileFromBytes("a.pdf", nil))

	result, err := f.uploads.StartUpload(context.Background())

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrService)
	assert.Equal(t, domain.UploadIdle, f.uploads.Phase())
	assert.Equal(t, []string{"a.pdf"}, f.uploads.Snapshot().Selection)
	assert.Equal(t, []domain.NotificationLevel{domain.LevelError}, f.notifier.levels())

	list, _, _, _ := f.client.calls()
	assert.Equal(t, 0, list)
	assert.False(t, f.views.HasPending())
	assert.Equal(t, domain.ViewUpload, f.views.Current())
	assert.NotContains(t, f.progress.snapshot(), 100)
}

func TestUploadOrchestrator_ConcurrentStartRejected(t *testing.T) {
	f := newUploadFixture()
	release := make(chan struct{})
	entered := make(chan struct{})
	f.client.uploadFn = func(context.Context, []domain.UploadFile) (*domain.UploadResult, error) {
		close(entered)
		<-release
		return &domain.UploadResult{}, nil
	}
	f.uploads.Select(domain.FileFromBytes("a.pdf", nil))

	done := make(chan error, 1)
	go func() {
		_, err := f.uploads.StartUpload(context.Background())
		done <- err
	}()
	<-entered

	assert.Equal(t, domain.UploadUploading, f.uploads.Phase())
	_, err := f.uploads.StartUpload(context.Background())
	assert.ErrorIs(t, err, domain.ErrUploadInProgress)
	assert.ErrorIs(t, err, domain.ErrConflict)

	close(release)
	require.NoError(t, <-done)
	_, uploads, _, _ := f.client.calls()
	assert.Equal(t, 1, uploads)
}

func TestUploadOrchestrator_FilesAddedDuringUploadKept(t *testing.T) {
	f := newUploadFixture()
	entered := make(chan struct{})
	release := make(chan struct{})
	f.client.uploadFn = func(context.Context, []domain.UploadFile) (*domain.UploadResult, error) {
		close(entered)
		<-release
		return &domain.UploadResult{}, nil
	}
	f.uploads.Select(domain.FileFromBytes("a.pdf", nil))

	done := make(chan error, 1)
	go func() {
		_, err := f.uploads.StartUpload(context.Background())
		done <- err
	}()
	<-entered
	f.uploads.Select(domain.FileFromBytes("late.pdf", nil))
	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, []string{"late.pdf"}, f.uploads.Snapshot().Selection)
}

func TestUploadOrchestrator_SameNameReplacementDuringUploadKept(t *testing.T) {
	f := newUploadFixture()
	entered := make(chan struct{})
	release := make(chan struct{})
	var sent [][]byte
	f.client.uploadFn = func(_ context.Context, files []domain.UploadFile) (*domain.UploadResult, error) {
		for _, file := range files {
			sent = append(sent, contentOf(file))
		}
		close(entered)
		<-release
		return &domain.UploadResult{}, nil
	}
	f.uploads.Select(domain.FileFromBytes("a.pdf", []byte("first")), domain.FileFromBytes("b.pdf", []byte("b")))

	done := make(chan error, 1)
	go func() {
		_, err := f.uploads.StartUpload(context.Background())
		done <- err
	}()
	<-entered
	f.uploads.Select(domain.FileFromBytes("a.pdf", []byte("second")))
	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, [][]byte{[]byte("first"), []byte("b")}, sent)
	selection := f.uploads.Selection()
	require.Len(t, selection, 1)
	assert.Equal(t, "a.pdf", selection[0].Name)
	assert.Equal(t, []byte("second"), contentOf(selection[0]))
}

// contentOf reads an upload file, returning nil when it cannot be opened.
func contentOf(file domain.UploadFile) []byte {
	rc, err := file.Open()
	if err != nil {
		return nil
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	return data
}

func TestUploadOrchestrator_RosterRefreshFailureIsWarning(t *testing.T) {
	f := newUploadFixture()
	f.client.listFn = func(context.Context) ([]domain.Document, error) {
		return nil, &domain.NetworkError{Op: "list documents", Err: errors.New("timeout")}
	}
	f.uploads.Select(domain.FileFromBytes("a.pdf", nil))

	result, err := f.uploads.StartUpload(context.Background())

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, []domain.NotificationLevel{domain.LevelWarning, domain.LevelSuccess}, f.notifier.levels())
	assert.Eventually(t, func() bool {
		return f.views.Current() == domain.ViewChat
	}, time.Second, 2*time.Millisecond)
}

func TestUploadOrchestrator_NewUploadCancelsPendingReset(t *testing.T) {
	f := newUploadFixture()
	f.uploads.cfg.ResetDelay = 30 * time.Millisecond
	f.uploads.Select(domain.FileFromBytes("a.pdf", nil))
	_, err := f.uploads.StartUpload(context.Background())
	require.NoError(t, err)
	require.Equal(t, 100, f.uploads.Progress())

	release := make(chan struct{})
	f.client.mu.Lock()
	f.client.uploadFn = func(context.Context, []domain.UploadFile) (*domain.UploadResult, error) {
		<-release
		return &domain.UploadResult{}, nil
	}
	f.client.mu.Unlock()
	f.uploads.Select(domain.FileFromBytes("b.pdf", nil))

	done := make(chan error, 1)
	go func() {
		_, err := f.uploads.StartUpload(context.Background())
		done <- err
	}()

	assert.Eventually(t, func() bool {
		return f.uploads.Progress() >= 90
	}, time.Second, 2*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 90, f.uploads.Progress())

	close(release)
	require.NoError(t, <-done)
}

func TestUploadOrchestrator_UsesServiceMessage(t *testing.T) {
	f := newUploadFixture()
	f.client.uploadFn = func(context.Context, []domain.UploadFile) (*domain.UploadResult, error) {
		return &domain.UploadResult{
			Message:   "Successfully processed 1 documents",
			Documents: []domain.Document{{Filename: "a.pdf"}},
		}, nil
	}
	f.uploads.Select(domain.FileFromBytes("a.pdf", nil))

	_, err := f.uploads.StartUpload(context.Background())
	require.NoError(t, err)

	f.notifier.mu.Lock()
	defer f.notifier.mu.Unlock()
	require.Len(t, f.notifier.items, 1)
	assert.Equal(t, "Successfully processed 1 documents", f.notifier.items[0].Message)
}

func TestUploadOrchestrator_SuccessNotificationNamesCount(t *testing.T) {
	f := newUploadFixture()
	f.client.uploadFn = func(context.Context, []domain.UploadFile) (*domain.UploadResult, error) {
		return &domain.UploadResult{
			Message:   "Upload accepted",
			Documents: []domain.Document{{Filename: "a.pdf"}, {Filename: "b.pdf"}},
		}, nil
	}
	f.uploads.Select(domain.FileFromBytes("a.pdf", nil), domain.FileFromBytes("b.pdf", nil))

	_, err := f.uploads.StartUpload(context.Background())
	require.NoError(t, err)

	f.notifier.mu.Lock()
	defer f.notifier.mu.Unlock()
	require.Len(t, f.notifier.items, 1)
	assert.Equal(t, domain.LevelSuccess, f.notifier.items[0].Level)
	assert.Equal(t, "Upload accepted (2 documents)", f.notifier.items[0].Message)
}
