package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/policydesk/internal/core/domain"
	"github.com/custodia-labs/policydesk/internal/core/ports/driven"
	"github.com/custodia-labs/policydesk/internal/core/ports/driving"
	"github.com/custodia-labs/policydesk/internal/logger"
)

// EnvBaseURL overrides the configured service address.
const EnvBaseURL = "POLICYDESK_BASE_URL"

// defaultEnvFile is loaded when present; a missing default file is not an error.
const defaultEnvFile = ".env"

// version is set at build time.
var version = "dev"

// Options are resolved from the global flags and the environment and
// handed to the Builder.
type Options struct {
	// ConfigDir overrides ~/.policydesk.
	ConfigDir string

	// BaseURL overrides the configured service address when non-empty.
	BaseURL string

	// TopK overrides the configured passages-per-question when positive.
	TopK int

	// Verbose enables debug logging.
	Verbose bool
}

// Dependencies are the services the commands drive.
type Dependencies struct {
	Roster   driving.DocumentRoster
	Uploads  driving.UploadOrchestrator
	Chat     driving.ChatSession
	Views    driving.ViewController
	Admin    driving.DocumentAdmin
	Settings driving.SettingsService

	// Poller refreshes the roster while the TUI runs. Optional.
	Poller driving.Poller

	// Files lists and watches the upload directory. Optional.
	Files driven.FileSource

	// ExpandFiles turns path arguments into upload files.
	ExpandFiles func(args []string) ([]domain.UploadFile, error)

	// Notifications delivers notifications to the TUI. Optional.
	Notifications <-chan domain.Notification

	// BaseURL is the address of the indexing service in use.
	BaseURL string

	// Close releases stores and watchers. Optional.
	Close func() error
}

// Builder constructs the dependencies for one invocation.
type Builder func(ctx context.Context, opts Options) (*Dependencies, error)

var (
	builder Builder
	deps    *Dependencies
)

// Global flags.
var (
	flagVerbose   bool
	flagBaseURL   string
	flagConfigDir string
	flagEnvFile   string
)

// topKOverride is set by commands that accept --top-k.
var topKOverride int

var rootCmd = &cobra.Command{
	Use:   "policydesk",
	Short: "Chat with your policy documents",
	Long: `Policydesk uploads policy documents to an indexing service and answers
questions about them, citing the pages it used.

Run without a subcommand to open the interactive console.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		return teardown()
	},
	RunE: runTUI,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
	pf.StringVar(&flagBaseURL, "base-url", "", "Indexing service address (overrides "+EnvBaseURL+" and config)")
	pf.StringVar(&flagConfigDir, "config", "", "Configuration directory (default ~/.policydesk)")
	pf.StringVar(&flagEnvFile, "env-file", defaultEnvFile, "Environment file to load")
}

// SetBuilder sets the function used to construct command dependencies.
func SetBuilder(b Builder) {
	builder = b
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(flagVerbose)
	return loadEnvFile(cmd)
}

// loadEnvFile loads the env file without overriding variables that are
// already set. Only an explicitly requested file must exist.
func loadEnvFile(cmd *cobra.Command) error {
	if flagEnvFile == "" {
		return nil
	}
	err := godotenv.Load(flagEnvFile)
	if err == nil {
		logger.Debug("loaded environment from %s", flagEnvFile)
		return nil
	}
	if errors.Is(err, os.ErrNotExist) && !cmd.Flags().Changed("env-file") {
		return nil
	}
	return fmt.Errorf("load env file: %w", err)
}

// options resolves the global flags and environment.
func options() Options {
	baseURL := flagBaseURL
	if baseURL == "" {
		baseURL = os.Getenv(EnvBaseURL)
	}
	return Options{
		ConfigDir: flagConfigDir,
		BaseURL:   baseURL,
		TopK:      topKOverride,
		Verbose:   flagVerbose,
	}
}

// dependencies builds the services on first use.
func dependencies(cmd *cobra.Command) (*Dependencies, error) {
	if deps != nil {
		return deps, nil
	}
	if builder == nil {
		return nil, ErrNotConfigured
	}
	d, err := builder(commandContext(cmd), options())
	if err != nil {
		return nil, err
	}
	deps = d
	return deps, nil
}

func teardown() error {
	if deps == nil || deps.Close == nil {
		deps = nil
		return nil
	}
	err := deps.Close()
	deps = nil
	return err
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
