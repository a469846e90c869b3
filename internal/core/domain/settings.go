package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const unknownDescription = "Unknown"

// Defaults for application settings.
const (
	DefaultBaseURL           = "http://localhost:8000"
	DefaultTimeout           = 2 * time.Minute
	DefaultRequestsPerSecond = 5.0
	DefaultTopK              = 5
	MaxTopK                  = 50
)

// APISettings configures the connection to the indexing service.
type APISettings struct {
	// BaseURL selects the API host. The "/api" prefix is added by the client.
	BaseURL string

	// Timeout bounds every remote request.
	Timeout time.Duration

	// RequestsPerSecond is the client-side rate limit. Zero disables limiting.
	RequestsPerSecond float64
}

// ChatSettings configures question submission.
type ChatSettings struct {
	// TopK is the number of passages the service retrieves per question.
	TopK int
}

// UploadSettings configures the document picker.
type UploadSettings struct {
	// Directory is scanned and watched for documents to select.
	Directory string
}

// HistorySettings configures the transcript archive.
type HistorySettings struct {
	// Enabled archives the transcript between sessions.
	Enabled bool
}

// AppSettings holds the user-configurable application settings.
type AppSettings struct {
	API     APISettings
	Chat    ChatSettings
	Upload  UploadSettings
	History HistorySettings
}

// DefaultAppSettings returns settings suitable for a local indexing service.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		API: APISettings{
			BaseURL:           DefaultBaseURL,
			Timeout:           DefaultTimeout,
			RequestsPerSecond: DefaultRequestsPerSecond,
		},
		Chat: ChatSettings{
			TopK: DefaultTopK,
		},
		History: HistorySettings{
			Enabled: true,
		},
	}
}

// Validate checks the settings for values the client cannot work with.
func (s AppSettings) Validate() error {
	if err := ValidateBaseURL(s.API.BaseURL); err != nil {
		return err
	}
	if s.API.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrValidation)
	}
	if s.API.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: requests per second must not be negative", ErrValidation)
	}
	if s.Chat.TopK < 1 || s.Chat.TopK > MaxTopK {
		return fmt.Errorf("%w: top_k must be between 1 and %d", ErrValidation, MaxTopK)
	}
	return nil
}

// ValidateBaseURL checks that raw is an absolute http(s) URL.
func ValidateBaseURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("%w: base URL is required", ErrValidation)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: base URL: %w", ErrValidation, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: base URL must use http or https", ErrValidation)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: base URL must include a host", ErrValidation)
	}
	return nil
}
