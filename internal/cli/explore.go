package cli

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/flowscope/flowscope/pkg/flow"
	"github.com/flowscope/flowscope/pkg/pipeline"
)

// exploreCommand creates the explore command, an interactive terminal view of
// a snapshot's container hierarchy. Toggling a container re-runs the full
// layout and convert pipeline so the footer always shows the real render
// cost of the current collapse state.
func (c *CLI) exploreCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "explore [file]",
		Short: "Explore a snapshot's hierarchy interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := flow.ReadSnapshotFile(args[0])
			if err != nil {
				return err
			}

			runner, err := c.newRunner(noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			// The pipeline's log output would corrupt the TUI frame.
			opts := pipeline.Options{
				Layout:             cfg.Layout.layoutOptions(),
				ShowPropertyLabels: cfg.Render.ShowPropertyLabels,
				EnableAnimations:   cfg.Render.EnableAnimations,
				Logger:             newLogger(io.Discard, LogInfo),
			}

			ctx := cmd.Context()
			model := NewExploreModel(s)
			model.Render = func(s flow.Snapshot) RenderStats {
				return runPipeline(ctx, runner, s, opts)
			}

			final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
			if err != nil {
				return err
			}

			if m, ok := final.(ExploreModel); ok {
				printInfo("%d of %d nodes visible", len(m.Snapshot.VisibleNodes()), m.Snapshot.NodeCount())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the layout cache")
	return cmd
}

// runPipeline executes one layout+convert run and compresses the result into
// footer stats.
func runPipeline(ctx context.Context, runner *pipeline.Runner, s flow.Snapshot, opts pipeline.Options) RenderStats {
	result, err := runner.Execute(ctx, s, opts)
	if err != nil {
		return RenderStats{Err: err}
	}
	return RenderStats{
		Elements: result.Stats.ElementCount,
		Edges:    result.Stats.EdgeCount,
		Cached:   result.CacheInfo.LayoutHit,
	}
}
