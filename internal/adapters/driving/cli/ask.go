package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/policydesk/internal/core/domain"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about the indexed documents",
	Long: `Ask a question and print the answer with the passages it was based on.

Examples:
  policydesk ask "What is my deductible?"
  policydesk ask --top-k 10 Is flood damage covered`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&topKOverride, "top-k", "k", 0, "Passages to retrieve (default from settings)")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if topKOverride < 0 || topKOverride > domain.MaxTopK {
		return fmt.Errorf("%w: --top-k must be between 1 and %d", domain.ErrValidation, domain.MaxTopK)
	}

	d, err := dependencies(cmd)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	if err := d.Roster.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to load documents: %w", err)
	}

	reply, err := d.Chat.Ask(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}

	writeAnswer(cmd.OutOrStdout(), reply)
	return nil
}
