// cmd/demoplay/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &sourceOptions{}
	root := &cobra.Command{
		Use:   "demoplay",
		Short: "Play scripted chat transcripts in the terminal",
		Long: `Lists, validates and plays scripted user/assistant conversations.

Scenarios come from a running player server (--server) or straight from
a scenario directory (--dir).

Examples:
  demoplay list --dir data/scenarios
  demoplay play intro --server http://localhost:8080
  demoplay validate data/scenarios`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.server, "server", "", "Base URL of a player server")
	root.PersistentFlags().StringVar(&opts.dir, "dir", "", "Scenario directory for offline playback (defaults to the configured one)")
	root.PersistentFlags().StringVar(&opts.snippetDir, "snippets", "", "Snippet directory for offline playback (defaults to the configured one)")

	root.AddCommand(
		newListCommand(opts),
		newPlayCommand(opts),
		newValidateCommand(),
	)
	return root
}
