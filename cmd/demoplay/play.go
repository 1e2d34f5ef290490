// cmd/demoplay/play.go
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/zageabb/reflex-AgentDemo/internal/models"
	"github.com/zageabb/reflex-AgentDemo/internal/playback"
	"github.com/zageabb/reflex-AgentDemo/internal/transcript"
	"github.com/zageabb/reflex-AgentDemo/internal/tui"
	"github.com/zageabb/reflex-AgentDemo/internal/utils"
)

type playOptions struct {
	plain   bool
	instant bool
	verbose bool
}

func newPlayCommand(opts *sourceOptions) *cobra.Command {
	po := &playOptions{}
	cmd := &cobra.Command{
		Use:   "play [scenario-id]",
		Short: "Play a scenario, interactively on a terminal",
		Long: `Plays a scenario with typing animation. On a terminal an interactive
viewer starts (n/p: next/previous, r: restart, q: quit). Otherwise, or with
--plain, the scenario plays once and the transcript is printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := opts.open()
			if err != nil {
				return err
			}
			scenarios, err := src.catalog.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(scenarios) == 0 {
				return fmt.Errorf("no scenarios available")
			}

			start := 0
			if len(args) == 1 {
				start = indexOf(scenarios, args[0])
				if start < 0 {
					return fmt.Errorf("scenario %q not found", args[0])
				}
			}

			logger := utils.GetLogger()
			logger.SetLogLevel(src.cfg.Server.LogLevel)
			pacing := playback.PacingFromConfig(src.cfg.Pacing)
			if po.instant {
				pacing = playback.Pacing{}
			}

			interactive := !po.plain && isatty.IsTerminal(os.Stdout.Fd())
			if interactive {
				if !po.verbose {
					logger.SetOutput(io.Discard)
				}
				return playInteractive(cmd.Context(), src, pacing, logger, scenarios, start)
			}
			return playOnce(cmd.Context(), src, pacing, logger, scenarios[start].ID)
		},
	}
	cmd.Flags().BoolVar(&po.plain, "plain", false, "Print the finished transcript instead of starting the viewer")
	cmd.Flags().BoolVar(&po.instant, "instant", false, "Skip typing and thinking delays")
	cmd.Flags().BoolVarP(&po.verbose, "verbose", "v", false, "Keep logging while the viewer runs")
	return cmd
}

func indexOf(scenarios []models.Scenario, id string) int {
	for i, sc := range scenarios {
		if sc.ID == id {
			return i
		}
	}
	return -1
}

func newController(surface transcript.Surface, src *sources, pacing playback.Pacing, logger *utils.Logger) *playback.Controller {
	return playback.NewController(playback.Dependencies{
		Surface:  surface,
		Catalog:  src.catalog,
		Steps:    src.steps,
		Snippets: src.snippets,
		Pacing:   pacing,
		Sleeper:  playback.SystemSleeper{},
		Logger:   logger,
	})
}

func playInteractive(ctx context.Context, src *sources, pacing playback.Pacing, logger *utils.Logger, scenarios []models.Scenario, start int) error {
	feed := tui.NewFeed()
	controller := newController(feed.Surface(), src, pacing, logger)
	defer controller.Close()

	play := func(id string, restart bool) {
		controller.Launch(ctx, id, playback.Options{Restart: restart})
	}
	return tui.Run(tui.NewModel(feed, scenarios, play, start))
}

func playOnce(ctx context.Context, src *sources, pacing playback.Pacing, logger *utils.Logger, scenarioID string) error {
	doc := transcript.NewDocument()
	controller := newController(doc, src, pacing, logger)
	defer controller.Close()

	outcome, err := controller.StartPlayback(ctx, scenarioID, playback.Options{})
	printTranscript(os.Stdout, doc.Snapshot())
	if err != nil {
		return err
	}
	if outcome != playback.OutcomeCompleted {
		return fmt.Errorf("playback %s", outcome)
	}
	return nil
}

func printTranscript(w io.Writer, snap transcript.Snapshot) {
	for i, e := range snap.Entries {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s %s\n", e.Icon, e.Speaker)
		if body := transcript.PlainText(e.Content); body != "" {
			fmt.Fprintln(w, body)
		}
		for _, s := range e.Snippets {
			for _, line := range strings.Split(transcript.PlainText(s), "\n") {
				fmt.Fprintf(w, "  │ %s\n", line)
			}
		}
		for _, warning := range e.Warnings {
			fmt.Fprintf(w, "⚠ %s\n", warning)
		}
	}
	if snap.Feedback.Message != "" {
		fmt.Fprintf(w, "\n%s\n", snap.Feedback.Message)
	}
}
