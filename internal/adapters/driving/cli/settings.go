package cli

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/policydesk/internal/core/domain"
	"github.com/custodia-labs/policydesk/internal/core/ports/driving"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change how policydesk connects to the indexing service.

Settings are stored in config.toml in the configuration directory.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a single setting",
	Long: `Change a single setting by its configuration key.

Keys:
  api.base_url             Indexing service address
  api.timeout_seconds      Request timeout in seconds
  api.requests_per_second  Client-side rate limit (0 disables)
  chat.top_k               Passages retrieved per question
  upload.directory         Directory offered in the upload view
  history.enabled          Keep the conversation between sessions`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings file location",
	Args:  cobra.NoArgs,
	RunE:  runSettingsPath,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Walk through every setting, keeping the current value on empty input.`,
	Args:  cobra.NoArgs,
	RunE:  runSettingsWizard,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsPathCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	rootCmd.AddCommand(settingsCmd)
}

func settingsService(cmd *cobra.Command) (driving.SettingsService, error) {
	d, err := dependencies(cmd)
	if err != nil {
		return nil, err
	}
	if d.Settings == nil {
		return nil, fmt.Errorf("settings service: %w", ErrNotConfigured)
	}
	return d.Settings, nil
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	svc, err := settingsService(cmd)
	if err != nil {
		return err
	}

	settings, err := svc.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[API]")
	cmd.Printf("  Base URL: %s\n", settings.API.BaseURL)
	cmd.Printf("  Timeout: %s\n", settings.API.Timeout)
	if settings.API.RequestsPerSecond > 0 {
		cmd.Printf("  Rate limit: %g requests/s\n", settings.API.RequestsPerSecond)
	} else {
		cmd.Println("  Rate limit: off")
	}
	cmd.Println()

	cmd.Println("[Chat]")
	cmd.Printf("  Top K: %d\n", settings.Chat.TopK)
	cmd.Println()

	cmd.Println("[Upload]")
	dir := settings.Upload.Directory
	if dir == "" {
		dir = "(current directory)"
	}
	cmd.Printf("  Directory: %s\n", dir)
	cmd.Println()

	cmd.Println("[History]")
	cmd.Printf("  Enabled: %s\n", yesNo(settings.History.Enabled))
	cmd.Println()

	cmd.Printf("Stored in %s\n", svc.Path())
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	svc, err := settingsService(cmd)
	if err != nil {
		return err
	}

	if err := svc.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}

	cmd.Printf("Set %s = %s\n", args[0], args[1])
	return nil
}

func runSettingsPath(cmd *cobra.Command, _ []string) error {
	svc, err := settingsService(cmd)
	if err != nil {
		return err
	}
	cmd.Println(svc.Path())
	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	svc, err := settingsService(cmd)
	if err != nil {
		return err
	}

	settings, err := svc.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Policydesk Settings Wizard")
	cmd.Println("==========================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Printf("Indexing service address [%s]: ", settings.API.BaseURL)
	if v := readLine(reader); v != "" {
		settings.API.BaseURL = strings.TrimRight(v, "/")
	}

	cmd.Printf("Request timeout in seconds [%d]: ", int(settings.API.Timeout/time.Second))
	if v := readLine(reader); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: timeout must be a whole number of seconds", domain.ErrValidation)
		}
		settings.API.Timeout = time.Duration(n) * time.Second
	}

	cmd.Printf("Passages per question [%d]: ", settings.Chat.TopK)
	if v := readLine(reader); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: top_k must be a whole number", domain.ErrValidation)
		}
		settings.Chat.TopK = n
	}

	cmd.Printf("Upload directory [%s]: ", settings.Upload.Directory)
	if v := readLine(reader); v != "" {
		settings.Upload.Directory = v
	}

	cmd.Printf("Keep conversation history (y/n) [%s]: ", yesNo(settings.History.Enabled))
	if v := readLine(reader); v != "" {
		settings.History.Enabled = strings.HasPrefix(strings.ToLower(v), "y")
	}

	if err := svc.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Println()
	cmd.Println("Settings saved.")
	return nil
}

// Helper functions.

func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n') //nolint:errcheck // EOF yields the partial line
	return strings.TrimSpace(input)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
