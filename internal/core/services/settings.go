package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/policydesk/internal/core/domain"
	"github.com/custodia-labs/policydesk/internal/core/ports/driven"
	"github.com/custodia-labs/policydesk/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	KeyBaseURL           = "api.base_url"
	KeyTimeoutSeconds    = "api.timeout_seconds"
	KeyRequestsPerSecond = "api.requests_per_second"
	KeyTopK              = "chat.top_k"
	KeyUploadDirectory   = "upload.directory"
	KeyHistoryEnabled    = "history.enabled"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings. Missing or unusable
// values fall back to the defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		API: domain.APISettings{
			BaseURL:           s.getBaseURL(defaults.API.BaseURL),
			Timeout:           time.Duration(s.getInt(KeyTimeoutSeconds, int(defaults.API.Timeout/time.Second))) * time.Second,
			RequestsPerSecond: s.getFloat(KeyRequestsPerSecond, defaults.API.RequestsPerSecond),
		},
		Chat: domain.ChatSettings{
			TopK: s.getTopK(defaults.Chat.TopK),
		},
		Upload: domain.UploadSettings{
			Directory: s.configStore.GetString(KeyUploadDirectory),
		},
		History: domain.HistorySettings{
			Enabled: s.getBool(KeyHistoryEnabled, defaults.History.Enabled),
		},
	}

	return settings, nil
}

// Save validates and persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	if err := s.configStore.Set(KeyBaseURL, strings.TrimRight(settings.API.BaseURL, "/")); err != nil {
		return fmt.Errorf("save base_url: %w", err)
	}
	if err := s.configStore.Set(KeyTimeoutSeconds, int(settings.API.Timeout/time.Second)); err != nil {
		return fmt.Errorf("save timeout: %w", err)
	}
	if err := s.configStore.Set(KeyRequestsPerSecond, settings.API.RequestsPerSecond); err != nil {
		return fmt.Errorf("save requests_per_second: %w", err)
	}
	if err := s.configStore.Set(KeyTopK, settings.Chat.TopK); err != nil {
		return fmt.Errorf("save top_k: %w", err)
	}
	if err := s.configStore.Set(KeyUploadDirectory, settings.Upload.Directory); err != nil {
		return fmt.Errorf("save upload directory: %w", err)
	}
	if err := s.configStore.Set(KeyHistoryEnabled, settings.History.Enabled); err != nil {
		return fmt.Errorf("save history: %w", err)
	}

	return s.configStore.Save()
}

// Set parses value for key and saves the result.
func (s *SettingsService) Set(key, value string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	value = strings.TrimSpace(value)
	switch key {
	case KeyBaseURL:
		settings.API.BaseURL = value
	case KeyTimeoutSeconds:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be a whole number of seconds", domain.ErrValidation, key)
		}
		settings.API.Timeout = time.Duration(n) * time.Second
	case KeyRequestsPerSecond:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s must be a number", domain.ErrValidation, key)
		}
		settings.API.RequestsPerSecond = f
	case KeyTopK:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be a whole number", domain.ErrValidation, key)
		}
		settings.Chat.TopK = n
	case KeyUploadDirectory:
		settings.Upload.Directory = value
	case KeyHistoryEnabled:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrValidation, key)
		}
		settings.History.Enabled = b
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrValidation, key)
	}

	return s.Save(settings)
}

// Keys lists the supported configuration keys.
func (s *SettingsService) Keys() []string {
	return []string{
		KeyBaseURL,
		KeyTimeoutSeconds,
		KeyRequestsPerSecond,
		KeyTopK,
		KeyUploadDirectory,
		KeyHistoryEnabled,
	}
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Path returns where settings are persisted.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getBaseURL(defaultVal string) string {
	val := strings.TrimSpace(s.configStore.GetString(KeyBaseURL))
	if val == "" || domain.ValidateBaseURL(val) != nil {
		return defaultVal
	}
	return strings.TrimRight(val, "/")
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getTopK(defaultVal int) int {
	val := s.configStore.GetInt(KeyTopK)
	if val < 1 || val > domain.MaxTopK {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	raw, exists := s.configStore.Get(key)
	if !exists {
		return defaultVal
	}
	switch v := raw.(type) {
	case float64:
		if v >= 0 {
			return v
		}
	case int64:
		if v >= 0 {
			return float64(v)
		}
	case int:
		if v >= 0 {
			return float64(v)
		}
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			return f
		}
	}
	return defaultVal
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}
