package indexapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/policydesk/internal/core/domain"
	"github.com/custodia-labs/policydesk/internal/core/ports/driven"
	"github.com/custodia-labs/policydesk/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.IndexClient = (*Client)(nil)

// Endpoint paths relative to the API prefix.
const (
	APIPrefix     = "/api"
	pathHealth    = "/"
	pathDocuments = "/documents"
	pathUpload    = "/upload"
	pathQuery     = "/query"
)

// UploadField is the multipart field carrying uploaded files.
const UploadField = "files"

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 512

// Config holds configuration for the index API client.
type Config struct {
	// BaseURL is the service host, e.g. http://localhost:8000.
	BaseURL string

	// Timeout bounds every request (default: domain.DefaultTimeout).
	Timeout time.Duration

	// RequestsPerSecond paces requests. Zero disables pacing.
	RequestsPerSecond float64

	// HTTPClient overrides the transport. Optional.
	HTTPClient *http.Client
}

// Client talks to the indexing service over HTTP.
type Client struct {
	http    *http.Client
	apiURL  string
	timeout time.Duration
	limiter *RateLimiter
}

// NewClient creates a client for the service at cfg.BaseURL.
func NewClient(cfg Config) (*Client, error) {
	if err := domain.ValidateBaseURL(cfg.BaseURL); err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = domain.DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		http:    httpClient,
		apiURL:  strings.TrimRight(cfg.BaseURL, "/") + APIPrefix,
		timeout: cfg.Timeout,
		limiter: NewRateLimiter(cfg.RequestsPerSecond),
	}, nil
}

// APIURL returns the API root the client talks to.
func (c *Client) APIURL() string {
	return c.apiURL
}

// Wire formats.

type documentDTO struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	UploadDate  string `json:"upload_date"`
	NumPages    int    `json:"num_pages"`
	Status      string `json:"status"`
	ChunksCount int    `json:"chunks_count"`
}

type uploadResponseDTO struct {
	Message   string        `json:"message"`
	Documents []documentDTO `json:"documents"`
}

type queryRequestDTO struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k"`
}

type citationDTO struct {
	PageNumber     int     `json:"page_number"`
	ChunkID        string  `json:"chunk_id"`
	TextSnippet    string  `json:"text_snippet"`
	RelevanceScore float64 `json:"relevance_score"`
}

type queryResponseDTO struct {
	Answer            string        `json:"answer"`
	Citations         []citationDTO `json:"citations"`
	HasGroundedAnswer *bool         `json:"has_grounded_answer"`
}

type errorDTO struct {
	Detail json.RawMessage `json:"detail"`
}

// ListDocuments returns every document known to the service.
func (c *Client) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	const op = "list documents"

	var dtos []documentDTO
	if err := c.do(ctx, op, http.MethodGet, pathDocuments, nil, "", &dtos); err != nil {
		return nil, err
	}

	docs := make([]domain.Document, len(dtos))
	for i, d := range dtos {
		docs[i] = d.toDomain()
	}
	return docs, nil
}

// UploadFiles streams files to the service as one multipart request.
func (c *Client) UploadFiles(ctx context.Context, files []domain.UploadFile) (*domain.UploadResult, error) {
	const op = "upload documents"

	if len(files) == 0 {
		return nil, domain.ErrEmptySelection
	}

	readers, err := openAll(files)
	if err != nil {
		return nil, err
	}

	body, contentType := multipartBody(files, readers)
	defer body.Close()

	var resp uploadResponseDTO
	if err := c.do(ctx, op, http.MethodPost, pathUpload, body, contentType, &resp); err != nil {
		return nil, err
	}

	result := &domain.UploadResult{
		Message:   resp.Message,
		Documents: make([]domain.Document, len(resp.Documents)),
	}
	for i, d := range resp.Documents {
		result.Documents[i] = d.toDomain()
	}
	return result, nil
}

// DeleteAllDocuments removes every document and its indexed content.
func (c *Client) DeleteAllDocuments(ctx context.Context) error {
	return c.do(ctx, "delete documents", http.MethodDelete, pathDocuments, nil, "", nil)
}

// SubmitQuestion asks a question against the indexed documents.
func (c *Client) SubmitQuestion(ctx context.Context, question string, topK int) (*domain.AnswerResult, error) {
	const op = "submit question"

	if strings.TrimSpace(question) == "" {
		return nil, domain.ErrEmptyQuestion
	}
	if topK <= 0 {
		topK = domain.DefaultTopK
	}

	payload, err := json.Marshal(queryRequestDTO{Question: question, TopK: topK})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var resp queryResponseDTO
	if err := c.do(ctx, op, http.MethodPost, pathQuery, bytes.NewReader(payload), "application/json", &resp); err != nil {
		return nil, err
	}

	result := &domain.AnswerResult{
		Answer:   resp.Answer,
		Grounded: resp.HasGroundedAnswer,
	}
	if len(resp.Citations) > 0 {
		result.Citations = make([]domain.Citation, len(resp.Citations))
		for i, cit := range resp.Citations {
			result.Citations[i] = domain.Citation{
				PageNumber:     cit.PageNumber,
				ChunkID:        cit.ChunkID,
				Snippet:        cit.TextSnippet,
				RelevanceScore: cit.RelevanceScore,
			}
		}
	}
	return result, nil
}

// Ping checks that the service answers its health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, "ping", http.MethodGet, pathHealth, nil, "", nil)
}

// do sends one request and decodes a 2xx JSON response into out.
// out may be nil when the response body is not needed.
func (c *Client) do(
	ctx context.Context,
	op, method, path string,
	body io.Reader,
	contentType string,
	out any,
) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return &domain.NetworkError{Op: op, Err: err}
	}

	url := c.apiURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	logger.Debug("%s %s", method, url)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	logger.Debug("%s %s -> %d in %s", method, url, resp.StatusCode, time.Since(start).Round(time.Millisecond))
	c.limiter.Observe(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.ServiceError{Op: op, Status: resp.StatusCode, Body: errorDetail(resp.Body)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return &domain.NetworkError{Op: op, Err: err}
		}
		return &domain.ServiceError{
			Op:     op,
			Status: resp.StatusCode,
			Body:   fmt.Sprintf("invalid response: %v", err),
		}
	}
	return nil
}

// errorDetail extracts FastAPI's "detail" field, falling back to the raw
// body.
func errorDetail(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var dto errorDTO
	if json.Unmarshal(raw, &dto) == nil && len(dto.Detail) > 0 {
		var s string
		if json.Unmarshal(dto.Detail, &s) == nil {
			return s
		}
		return string(dto.Detail)
	}
	return strings.TrimSpace(string(raw))
}

// openAll opens every file up front so a missing file fails before any
// bytes are sent.
func openAll(files []domain.UploadFile) ([]io.ReadCloser, error) {
	readers := make([]io.ReadCloser, 0, len(files))
	for _, f := range files {
		if f.Open == nil {
			closeAll(readers)
			return nil, fmt.Errorf("%w: %s has no content", domain.ErrValidation, f.Name)
		}
		rc, err := f.Open()
		if err != nil {
			closeAll(readers)
			return nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		readers = append(readers, rc)
	}
	return readers, nil
}

func closeAll(readers []io.ReadCloser) {
	for _, rc := range readers {
		_ = rc.Close()
	}
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// multipartBody streams the files through a pipe. Closing the returned
// reader stops the writer and closes the files.
func multipartBody(files []domain.UploadFile, readers []io.ReadCloser) (io.ReadCloser, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		defer closeAll(readers)
		for i, f := range files {
			header := make(textproto.MIMEHeader)
			header.Set("Content-Disposition",
				fmt.Sprintf(`form-data; name="%s"; filename="%s"`, UploadField, quoteEscaper.Replace(f.Name)))
			header.Set("Content-Type", contentTypeFor(f.Name))

			part, err := mw.CreatePart(header)
			if err != nil {
				_ = pw.CloseWithError(err)
				return
			}
			if _, err := io.Copy(part, readers[i]); err != nil {
				_ = pw.CloseWithError(fmt.Errorf("read %s: %w", f.Name, err))
				return
			}
		}
		_ = pw.CloseWithError(mw.Close())
	}()

	return pr, mw.FormDataContentType()
}

func contentTypeFor(name string) string {
	if strings.EqualFold(filepath.Ext(name), ".pdf") {
		return "application/pdf"
	}
	return "application/octet-stream"
}

func (d documentDTO) toDomain() domain.Document {
	return domain.Document{
		ID:          d.ID,
		Filename:    d.Filename,
		NumPages:    d.NumPages,
		ChunksCount: d.ChunksCount,
		Status:      domain.DocumentStatus(d.Status),
		UploadDate:  parseTimestamp(d.UploadDate),
	}
}

// timestampLayouts covers ISO 8601 as emitted by Python's isoformat,
// with and without an offset.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// parseTimestamp returns the zero time for empty or unrecognised input.
func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	logger.Debug("unrecognised timestamp %q", s)
	return time.Time{}
}

// IsTimeout reports whether err was caused by the request timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
