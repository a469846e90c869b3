package driven

// ConfigStore holds the flat dot-keyed settings ("api.base_url").
// Typed getters return the zero value for missing keys and for values
// of another type.
type ConfigStore interface {
	// Get returns the raw value and whether the key is set.
	Get(key string) (any, bool)

	GetString(key string) string

	// GetInt accepts any integral numeric encoding (TOML yields int64).
	GetInt(key string) int

	GetBool(key string) bool

	// Set stores a value. File-backed stores persist it immediately.
	Set(key string, value any) error

	// Save persists the whole configuration.
	Save() error

	// Path describes where the configuration lives.
	Path() string
}
