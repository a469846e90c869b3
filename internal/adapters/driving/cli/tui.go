package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/policydesk/internal/adapters/driving/tui"
	"github.com/custodia-labs/policydesk/internal/logger"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive console",
	Long: `Launch the interactive console. This is also what runs when policydesk
is started without a subcommand.

Controls:
  tab / shift+tab  Switch between Upload, Chat and Documents
  space            Select a file for upload
  a / c            Select all / clear the selection
  enter            Upload the selection, or ask the typed question
  r                Refresh the document list
  D                Delete all documents (asks for confirmation)
  q / ctrl+c       Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

// runProgram runs the bubbletea program. Tests replace it.
var runProgram = func(ctx context.Context, model tea.Model) error {
	_, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("tui panic: %v", r)
		}
	}()

	d, err := dependencies(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	// The poller is long-running and only needed while the console is open.
	if d.Poller != nil {
		go func() {
			if err := d.Poller.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("poller stopped: %v", err)
			}
		}()
		defer d.Poller.Stop()
	}

	app, err := tui.NewApp(&tui.Ports{
		Roster:        d.Roster,
		Uploads:       d.Uploads,
		Chat:          d.Chat,
		Views:         d.Views,
		Admin:         d.Admin,
		Files:         d.Files,
		Notifications: d.Notifications,
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(ctx)

	if err := runProgram(ctx, app); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
