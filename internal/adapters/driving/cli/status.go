package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the connection to the indexing service",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	d, err := dependencies(cmd)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Service:   %s\n", d.BaseURL)
	if d.Settings != nil {
		fmt.Fprintf(out, "Config:    %s\n", d.Settings.Path())
	}

	if err := d.Admin.Ping(ctx); err != nil {
		fmt.Fprintln(out, "Status:    unreachable")
		return err
	}
	fmt.Fprintln(out, "Status:    ok")

	if err := d.Roster.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	fmt.Fprintf(out, "Documents: %d\n", d.Roster.Len())
	return nil
}
