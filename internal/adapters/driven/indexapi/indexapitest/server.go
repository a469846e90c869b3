// Package indexapitest provides an in-process fake of the document
// indexing service for tests. It serves the same routes and payloads as
// the real service and keeps documents in memory.
package indexapitest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Route names used with FailWith, Delay and Requests.
const (
	RouteHealth    = "health"
	RouteList      = "list"
	RouteUpload    = "upload"
	RouteQuery     = "query"
	RouteDeleteAll = "delete"
)

// NotGroundedAnswer is returned when no documents are indexed.
const NotGroundedAnswer = "The provided documents do not contain information to answer this question."

// Document is the service's document record.
type Document struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	UploadDate  string `json:"upload_date"`
	NumPages    int    `json:"num_pages"`
	Status      string `json:"status"`
	ChunksCount int    `json:"chunks_count"`
}

// Citation is a retrieved passage.
type Citation struct {
	PageNumber     int     `json:"page_number"`
	ChunkID        string  `json:"chunk_id"`
	TextSnippet    string  `json:"text_snippet"`
	RelevanceScore float64 `json:"relevance_score"`
}

// Answer is the query response.
type Answer struct {
	Answer            string     `json:"answer"`
	Citations         []Citation `json:"citations"`
	HasGroundedAnswer bool       `json:"has_grounded_answer"`
}

// AnswerFunc produces the answer to a question.
type AnswerFunc func(question string, topK int, docs []Document) Answer

type failure struct {
	status int
	detail string
}

// Server is a fake indexing service.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	docs      []Document
	answer    AnswerFunc
	failures  map[string]failure
	delays    map[string]time.Duration
	requests  map[string]int
	questions []string
	uploaded  map[string][]byte
}

// NewServer starts a fake service. Close it when done.
func NewServer() *Server {
	s := &Server{
		failures: make(map[string]failure),
		delays:   make(map[string]time.Duration),
		requests: make(map[string]int),
		uploaded: make(map[string][]byte),
	}

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/", s.wrap(RouteHealth, s.handleHealth)).Methods(http.MethodGet)
	api.HandleFunc("/documents", s.wrap(RouteList, s.handleList)).Methods(http.MethodGet)
	api.HandleFunc("/documents", s.wrap(RouteDeleteAll, s.handleDeleteAll)).Methods(http.MethodDelete)
	api.HandleFunc("/upload", s.wrap(RouteUpload, s.handleUpload)).Methods(http.MethodPost)
	api.HandleFunc("/query", s.wrap(RouteQuery, s.handleQuery)).Methods(http.MethodPost)

	s.Server = httptest.NewServer(r)
	return s
}

// SetAnswer replaces the default answer generator.
func (s *Server) SetAnswer(fn AnswerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answer = fn
}

// FailWith makes route answer with status and a FastAPI-style detail
// until ClearFailures is called.
func (s *Server) FailWith(route string, status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = failure{status: status, detail: detail}
}

// ClearFailures restores normal behaviour on every route.
func (s *Server) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]failure)
}

// Delay holds every request on route for d before handling it.
func (s *Server) Delay(route string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays[route] = d
}

// Seed adds documents as if they had been uploaded.
func (s *Server) Seed(filenames ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range filenames {
		s.docs = append(s.docs, newDocument(name, 1))
	}
}

// Documents returns the stored documents.
func (s *Server) Documents() []Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Document, len(s.docs))
	copy(out, s.docs)
	return out
}

// Uploaded returns the bytes received for filename.
func (s *Server) Uploaded(filename string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploaded[filename]
}

// Requests returns how many requests reached route.
func (s *Server) Requests(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[route]
}

// Questions returns the questions received, in order.
func (s *Server) Questions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.questions))
	copy(out, s.questions)
	return out
}

func (s *Server) wrap(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests[route]++
		delay := s.delays[route]
		fail, failing := s.failures[route]
		s.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		if failing {
			writeJSON(w, fail.status, map[string]any{"detail": fail.detail})
			return
		}
		h(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Health Insurance RAG API is running"})
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Documents())
}

func (s *Server) handleDeleteAll(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	n := len(s.docs)
	s.docs = nil
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Deleted %d documents from database and cleared vector store", n),
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": err.Error()})
		return
	}
	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]any{{"loc": []string{"body", "files"}, "msg": "field required"}},
		})
		return
	}

	processed := make([]Document, 0, len(headers))
	for _, fh := range headers {
		if !strings.HasSuffix(fh.Filename, ".pdf") {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"detail": err.Error()})
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"detail": err.Error()})
			return
		}

		doc := newDocument(fh.Filename, 1)
		s.mu.Lock()
		s.uploaded[fh.Filename] = data
		s.docs = append(s.docs, doc)
		s.mu.Unlock()
		processed = append(processed, doc)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":   fmt.Sprintf("Successfully processed %d documents", len(processed)),
		"documents": processed,
	})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string `json:"question"`
		TopK     int    `json:"top_k"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": err.Error()})
		return
	}
	if req.TopK == 0 {
		req.TopK = 5
	}

	s.mu.Lock()
	s.questions = append(s.questions, req.Question)
	fn := s.answer
	docs := make([]Document, len(s.docs))
	copy(docs, s.docs)
	s.mu.Unlock()

	if fn == nil {
		fn = defaultAnswer
	}
	writeJSON(w, http.StatusOK, fn(req.Question, req.TopK, docs))
}

func defaultAnswer(question string, topK int, docs []Document) Answer {
	if len(docs) == 0 {
		return Answer{Answer: NotGroundedAnswer, Citations: []Citation{}}
	}
	citations := make([]Citation, 0, topK)
	for i, d := range docs {
		if i >= topK {
			break
		}
		citations = append(citations, Citation{
			PageNumber:     1,
			ChunkID:        d.ID + "_0",
			TextSnippet:    "Excerpt from " + d.Filename + "...",
			RelevanceScore: 0.9 - float64(i)*0.1,
		})
	}
	return Answer{
		Answer:            "Based on your documents: " + question,
		Citations:         citations,
		HasGroundedAnswer: true,
	}
}

func newDocument(filename string, pages int) Document {
	return Document{
		ID:          uuid.NewString(),
		Filename:    filename,
		UploadDate:  time.Now().UTC().Format("2006-01-02T15:04:05.000000+00:00"),
		NumPages:    pages,
		Status:      "completed",
		ChunksCount: pages * 2,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
