package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var documentsCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"docs", "ls"},
	Short:   "List indexed documents",
	Long: `List the documents known to the indexing service.

Examples:
  policydesk documents
  policydesk documents -o json`,
	Args: cobra.NoArgs,
	RunE: runDocuments,
}

// documentsFormat is the --output flag of the documents command.
var documentsFormat string

func init() {
	documentsCmd.Flags().StringVarP(&documentsFormat, "output", "o", formatTable, "Output format: table, json or yaml")
	rootCmd.AddCommand(documentsCmd)
}

func runDocuments(cmd *cobra.Command, _ []string) error {
	if err := validFormat(documentsFormat); err != nil {
		return err
	}

	d, err := dependencies(cmd)
	if err != nil {
		return err
	}

	if err := d.Roster.Refresh(commandContext(cmd)); err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	return writeDocuments(cmd.OutOrStdout(), d.Roster.Documents(), documentsFormat)
}
