package cli

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/policydesk/internal/adapters/driven/config/file"
	"github.com/custodia-labs/policydesk/internal/adapters/driven/filesystem"
	"github.com/custodia-labs/policydesk/internal/adapters/driven/indexapi"
	"github.com/custodia-labs/policydesk/internal/adapters/driven/indexapi/indexapitest"
	"github.com/custodia-labs/policydesk/internal/core/services"
)

// fixture runs commands against real services backed by a fake
// indexing service.
type fixture struct {
	server   *indexapitest.Server
	console  *services.Console
	settings *services.SettingsService
	opts     Options
	builds   int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	srv := indexapitest.NewServer()
	t.Cleanup(srv.Close)

	client, err := indexapi.NewClient(indexapi.Config{BaseURL: srv.URL})
	require.NoError(t, err)

	store, err := file.NewConfigStore(t.TempDir())
	require.NoError(t, err)

	f := &fixture{
		server: srv,
		console: services.NewConsole(client, services.ConsoleOptions{
			Upload: services.UploadConfig{ResetDelay: 1, ViewSwitchDelay: 1},
		}),
		settings: services.NewSettingsService(store),
	}

	resetCommandState(t)
	SetBuilder(func(_ context.Context, opts Options) (*Dependencies, error) {
		f.opts = opts
		f.builds++
		return &Dependencies{
			Roster:      f.console.Roster,
			Uploads:     f.console.Uploads,
			Chat:        f.console.Chat,
			Views:       f.console.Views,
			Admin:       f.console.Admin,
			Settings:    f.settings,
			ExpandFiles: filesystem.Expand,
			BaseURL:     srv.URL,
		}, nil
	})
	return f
}

// resetCommandState restores flags and package state between tests.
func resetCommandState(t *testing.T) {
	t.Helper()
	reset := func() {
		builder = nil
		deps = nil
		isTerminal = func(int) bool { return false }
		resetFlags(rootCmd)
	}
	reset()
	t.Cleanup(reset)
}

func resetFlags(cmd *cobra.Command) {
	clear := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(clear)
	cmd.PersistentFlags().VisitAll(clear)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()
	if stdin == nil {
		stdin = &bytes.Buffer{}
	}
	if args == nil {
		args = []string{}
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(stdin)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	err := Execute(context.Background())
	return buf.String(), err
}
