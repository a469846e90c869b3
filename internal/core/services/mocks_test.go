package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/policydesk/internal/core/domain"
	"github.com/custodia-labs/policydesk/internal/core/ports/driven"
)

// mockIndexClient implements driven.IndexClient for testing.
// Each method delegates to its func field when set.
type mockIndexClient struct {
	mu sync.Mutex

	listFn   func(ctx context.Context) ([]domain.Document, error)
	uploadFn func(ctx context.Context, files []domain.UploadFile) (*domain.UploadResult, error)
	deleteFn func(ctx context.Context) error
	askFn    func(ctx context.Context, question string, topK int) (*domain.AnswerResult, error)
	pingFn   func(ctx context.Context) error

	listCalls   int
	uploadCalls int
	deleteCalls int
	askCalls    int
	lastTopK    int
	lastFiles   []string
}

var _ driven.IndexClient = (*mockIndexClient)(nil)

func (m *mockIndexClient) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	m.mu.Lock()
	m.listCalls++
	fn := m.listFn
	m.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(ctx)
}

func (m *mockIndexClient) UploadFiles(ctx context.Context, files []domain.UploadFile) (*domain.UploadResult, error) {
	m.mu.Lock()
	m.uploadCalls++
	m.lastFiles = m.lastFiles[:0]
	for _, f := range files {
		m.lastFiles = append(m.lastFiles, f.Name)
	}
	fn := m.uploadFn
	m.mu.Unlock()
	if fn == nil {
		return &domain.UploadResult{}, nil
	}
	return fn(ctx, files)
}

func (m *mockIndexClient) DeleteAllDocuments(ctx context.Context) error {
	m.mu.Lock()
	m.deleteCalls++
	fn := m.deleteFn
	m.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (m *mockIndexClient) SubmitQuestion(ctx context.Context, question string, topK int) (*domain.AnswerResult, error) {
	m.mu.Lock()
	m.askCalls++
	m.lastTopK = topK
	fn := m.askFn
	m.mu.Unlock()
	if fn == nil {
		return &domain.AnswerResult{Answer: "ok"}, nil
	}
	return fn(ctx, question, topK)
}

func (m *mockIndexClient) Ping(ctx context.Context) error {
	if m.pingFn == nil {
		return nil
	}
	return m.pingFn(ctx)
}

func (m *mockIndexClient) calls() (list, upload, del, ask int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls, m.uploadCalls, m.deleteCalls, m.askCalls
}

// recordingNotifier collects notifications.
type recordingNotifier struct {
	mu    sync.Mutex
	items []domain.Notification
}

func (r *recordingNotifier) Notify(n domain.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

func (r *recordingNotifier) levels() []domain.NotificationLevel {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.NotificationLevel, len(r.items))
	for i, n := range r.items {
		out[i] = n.Level
	}
	return out
}

func (r *recordingNotifier) titles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.items))
	for i, n := range r.items {
		out[i] = n.Title
	}
	return out
}

// progressRecorder collects progress emissions.
type progressRecorder struct {
	mu     sync.Mutex
	values []int
}

func (p *progressRecorder) record(v int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values = append(p.values, v)
}

func (p *progressRecorder) snapshot() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]int, len(p.values))
	copy(out, p.values)
	return out
}

// failingTranscriptStore fails every operation.
type failingTranscriptStore struct {
	err error
}

func (f failingTranscriptStore) Append(context.Context, domain.ChatMessage) error { return f.err }
func (f failingTranscriptStore) List(context.Context) ([]domain.ChatMessage, error) {
	return nil, f.err
}
func (f failingTranscriptStore) Clear(context.Context) error { return f.err }

func docs(names ...string) []domain.Document {
	out := make([]domain.Document, len(names))
	for i, n := range names {
		out[i] = domain.Document{ID: "id-" + n, Filename: n, Status: domain.DocumentCompleted}
	}
	return out
}

func boolPtr(b bool) *bool { return &b }
