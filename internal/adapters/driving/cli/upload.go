package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/policydesk/internal/core/domain"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <path>...",
	Short: "Upload PDF documents for indexing",
	Long: `Upload one or more PDF documents to the indexing service.

Arguments may be files, directories (every PDF directly inside) or glob
patterns. Patterns support ** to match nested directories.

Examples:
  policydesk upload policy.pdf rider.pdf
  policydesk upload ~/Documents/insurance
  policydesk upload 'claims/**/*.pdf'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	d, err := dependencies(cmd)
	if err != nil {
		return err
	}
	if d.ExpandFiles == nil {
		return ErrNotConfigured
	}

	files, err := d.ExpandFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return domain.ErrEmptySelection
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Uploading %d file(s)...\n", len(files))
	for _, f := range files {
		fmt.Fprintf(out, "  %s\n", describeFile(f))
	}

	if isTerminalWriter(out) {
		bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(40))
		d.Uploads.OnProgress(func(p int) {
			fmt.Fprintf(out, "\r%s", bar.ViewAs(float64(p)/100))
		})
	}

	d.Uploads.Select(files...)
	result, err := d.Uploads.StartUpload(commandContext(cmd))
	if isTerminalWriter(out) {
		fmt.Fprintln(out)
	}
	if err != nil {
		d.Uploads.ClearSelection()
		return err
	}

	fmt.Fprintln(out, result.Summary())
	if len(result.Documents) > 0 {
		return writeDocuments(out, result.Documents, formatTable)
	}
	return nil
}

func describeFile(f domain.UploadFile) string {
	if f.Pages > 0 {
		return fmt.Sprintf("%s (%d pages)", f.Name, f.Pages)
	}
	return f.Name
}

func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isTerminal(int(f.Fd()))
}
