package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flowscope/flowscope/pkg/flow"
	"github.com/flowscope/flowscope/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output     string  // output file path, "-" for stdout
	labels     bool    // render edge property labels
	animations bool    // mark animated edge styles in the output
	refresh    bool    // bypass the layout cache read
	noCache    bool    // disable the layout cache entirely
	full       bool    // emit the full pipeline result instead of just the render graph
	nodeWidth  float64 // layout node width in pixels
	nodeHeight float64 // layout node height in pixels
	rankSep    float64 // vertical rank separation in pixels
	nodeSep    float64 // horizontal node separation in pixels
}

// renderCommand creates the render command. It reads a snapshot file, runs
// the layout and convert stages, and writes the render graph as JSON.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a flow snapshot to a positioned render graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			return c.runRender(ctx, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: input name with .render.json, - for stdout)")
	cmd.Flags().BoolVar(&opts.labels, "labels", false, "render edge property labels")
	cmd.Flags().BoolVar(&opts.animations, "animations", false, "mark animated edge styles in the output")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute the layout even if cached")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the layout cache")
	cmd.Flags().BoolVar(&opts.full, "full", false, "emit the full pipeline result (layout, stats, cache info)")
	cmd.Flags().Float64Var(&opts.nodeWidth, "node-width", 0, "node width in pixels (0 = default)")
	cmd.Flags().Float64Var(&opts.nodeHeight, "node-height", 0, "node height in pixels (0 = default)")
	cmd.Flags().Float64Var(&opts.rankSep, "rank-sep", 0, "vertical rank separation in pixels (0 = default)")
	cmd.Flags().Float64Var(&opts.nodeSep, "node-sep", 0, "horizontal node separation in pixels (0 = default)")

	return cmd
}

// runRender loads the snapshot, executes the pipeline, and writes the result.
func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	logger.Infof("Rendering %s", input)

	s, err := flow.ReadSnapshotFile(input)
	if err != nil {
		return err
	}
	logger.Infof("Loaded snapshot: %d nodes, %d containers, %d edges",
		s.NodeCount(), s.ContainerCount(), s.EdgeCount())

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	p := newProgress(logger)
	result, err := runner.Execute(ctx, s, pipelineOptions(cfg, opts))
	if err != nil {
		return err
	}
	p.done(fmt.Sprintf("Rendered %d elements, %d edges",
		result.Stats.ElementCount, result.Stats.EdgeCount))

	data, err := marshalResult(result, opts.full)
	if err != nil {
		return err
	}

	path := outputPath(opts.output, input)
	if path == "-" {
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return err
	}

	printSuccess("Generated %s", path)
	printStats(result.Stats.ElementCount, result.Stats.EdgeCount, result.CacheInfo.LayoutHit)
	return nil
}

// pipelineOptions merges config defaults with the command's flags.
func pipelineOptions(cfg Config, opts *renderOpts) pipeline.Options {
	layoutOpts := cfg.Layout.layoutOptions()
	if opts.nodeWidth > 0 {
		layoutOpts.NodeWidth = opts.nodeWidth
	}
	if opts.nodeHeight > 0 {
		layoutOpts.NodeHeight = opts.nodeHeight
	}
	if opts.rankSep > 0 {
		layoutOpts.RankSep = opts.rankSep
	}
	if opts.nodeSep > 0 {
		layoutOpts.NodeSep = opts.nodeSep
	}
	return pipeline.Options{
		Layout:             layoutOpts,
		ShowPropertyLabels: opts.labels || cfg.Render.ShowPropertyLabels,
		EnableAnimations:   opts.animations || cfg.Render.EnableAnimations,
		Refresh:            opts.refresh,
	}
}

// marshalResult serializes either the bare render graph or the full result.
func marshalResult(result *pipeline.Result, full bool) ([]byte, error) {
	if full {
		return json.MarshalIndent(result, "", "  ")
	}
	return result.Graph.MarshalIndent()
}

// outputPath derives the output file path. An explicit output wins; otherwise
// the input's extension is replaced with ".render.json".
func outputPath(output, input string) string {
	if output != "" {
		return output
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".render.json"
}
