package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/policydesk/internal/core/domain"
)

var deleteAllCmd = &cobra.Command{
	Use:   "delete-all",
	Short: "Delete every indexed document",
	Long: `Delete every document from the indexing service and clear the
conversation history. This cannot be undone.

You are asked to confirm unless --yes is given. Without a terminal,
--yes is required.`,
	Args: cobra.NoArgs,
	RunE: runDeleteAll,
}

// deleteYes is the --yes flag of the delete-all command.
var deleteYes bool

// isTerminal is replaced in tests.
var isTerminal = term.IsTerminal

func init() {
	deleteAllCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(deleteAllCmd)
}

func runDeleteAll(cmd *cobra.Command, _ []string) error {
	d, err := dependencies(cmd)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	out := cmd.OutOrStdout()

	if !deleteYes {
		if !isTerminalReader(cmd.InOrStdin()) {
			return fmt.Errorf("%w: stdin is not a terminal, pass --yes to delete", domain.ErrNotConfirmed)
		}

		count := "all"
		if err := d.Roster.Refresh(ctx); err == nil {
			count = fmt.Sprintf("all %d", d.Roster.Len())
		}
		fmt.Fprintf(out, "Delete %s documents and the conversation history? This cannot be undone. [y/N]: ", count)

		if !confirmed(cmd.InOrStdin()) {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	if err := d.Admin.DeleteAll(ctx, true); err != nil {
		return fmt.Errorf("failed to delete documents: %w", err)
	}

	fmt.Fprintln(out, "All documents deleted.")
	return nil
}

func confirmed(r io.Reader) bool {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func isTerminalReader(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return isTerminal(-1)
	}
	return isTerminal(int(f.Fd()))
}
