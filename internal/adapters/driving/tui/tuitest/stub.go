// Package tuitest provides an in-memory indexing service for TUI tests.
package tuitest

import (
	"context"
	"sync"

	"github.com/custodia-labs/policydesk/internal/core/domain"
	"github.com/custodia-labs/policydesk/internal/core/ports/driven"
)

var _ driven.IndexClient = (*StubClient)(nil)

// StubClient is an in-memory driven.IndexClient. Uploaded files become
// completed documents. Each Err field, when set, fails the matching call.
type StubClient struct {
	mu sync.Mutex

	Docs      []domain.Document
	Answer    domain.AnswerResult
	Questions []string

	ListErr   error
	UploadErr error
	DeleteErr error
	AskErr    error
	PingErr   error
}

// NewStubClient returns a stub holding docs.
func NewStubClient(docs ...domain.Document) *StubClient {
	grounded := true
	return &StubClient{
		Docs: docs,
		Answer: domain.AnswerResult{
			Answer:   "Water damage is covered up to the policy limit.",
			Grounded: &grounded,
			Citations: []domain.Citation{
				{PageNumber: 3, Snippet: "Sudden water damage is covered.", RelevanceScore: 0.92},
			},
		},
	}
}

// ListDocuments implements driven.IndexClient.
func (s *StubClient) ListDocuments(context.Context) ([]domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	out := make([]domain.Document, len(s.Docs))
	copy(out, s.Docs)
	return out, nil
}

// UploadFiles implements driven.IndexClient.
func (s *StubClient) UploadFiles(_ context.Context, files []domain.UploadFile) (*domain.UploadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UploadErr != nil {
		return nil, s.UploadErr
	}
	result := &domain.UploadResult{}
	for _, f := range files {
		doc := domain.Document{
			ID:          f.Name,
			Filename:    f.Name,
			NumPages:    f.Pages,
			ChunksCount: 1,
			Status:      domain.DocumentCompleted,
		}
		s.Docs = append(s.Docs, doc)
		result.Documents = append(result.Documents, doc)
	}
	return result, nil
}

// DeleteAllDocuments implements driven.IndexClient.
func (s *StubClient) DeleteAllDocuments(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	s.Docs = nil
	return nil
}

// SubmitQuestion implements driven.IndexClient.
func (s *StubClient) SubmitQuestion(_ context.Context, question string, _ int) (*domain.AnswerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Questions = append(s.Questions, question)
	if s.AskErr != nil {
		return nil, s.AskErr
	}
	answer := s.Answer
	return &answer, nil
}

// Ping implements driven.IndexClient.
func (s *StubClient) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.PingErr
}

// SetDocs replaces the stored documents.
func (s *StubClient) SetDocs(docs ...domain.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Docs = docs
}

// Asked returns the questions received so far.
func (s *StubClient) Asked() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.Questions))
	copy(out, s.Questions)
	return out
}

// SampleDocs returns two completed documents.
func SampleDocs() []domain.Document {
	return []domain.Document{
		{ID: "d-1", Filename: "home.pdf", NumPages: 12, ChunksCount: 40, Status: domain.DocumentCompleted},
		{ID: "d-2", Filename: "auto.pdf", NumPages: 4, ChunksCount: 9, Status: domain.DocumentProcessing},
	}
}

// FileSource is an in-memory driven.FileSource.
type FileSource struct {
	Files   []domain.UploadFile
	Events  chan driven.FileEvent
	ScanErr error
}

var _ driven.FileSource = (*FileSource)(nil)

// NewFileSource returns a source listing files.
func NewFileSource(files ...domain.UploadFile) *FileSource {
	return &FileSource{Files: files, Events: make(chan driven.FileEvent, 8)}
}

// Scan implements driven.FileSource.
func (f *FileSource) Scan() ([]domain.UploadFile, error) {
	return f.Files, f.ScanErr
}

// Watch implements driven.FileSource.
func (f *FileSource) Watch(context.Context) (<-chan driven.FileEvent, error) {
	return f.Events, nil
}

// Dir implements driven.FileSource.
func (f *FileSource) Dir() string {
	return "/policies"
}
