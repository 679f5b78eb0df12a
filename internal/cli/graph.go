package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harmonyhq/linework/pkg/merge"
	"github.com/harmonyhq/linework/pkg/sketch"
)

// Output formats for the graph command.
const (
	formatDOT = "dot"
	formatSVG = "svg"
	formatPNG = "png"
)

// graphCommand creates the graph command for exporting layer topology.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		layerID  string
		output   string
		format   string
		detailed bool
	)
	eps := merge.DefaultEpsilon()

	cmd := &cobra.Command{
		Use:   "graph [scene.json]",
		Short: "Export a layer's merged topology as a Graphviz graph",
		Long: `Export a layer's merged topology as a Graphviz graph.

The graph command builds the layer's network (after welding, splitting, and
short-segment filtering) and writes it as DOT, SVG, or PNG. Vertices are
pinned to their world coordinates and each connected component gets its own
fill color, which makes welding and splitting mistakes easy to spot.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraph(cmd.Context(), args[0], layerID, output, format, detailed, eps)
		},
	}

	cmd.Flags().StringVarP(&layerID, "layer", "l", "", "layer ID to export (default: interactive picker)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.<format>)")
	cmd.Flags().StringVarP(&format, "format", "f", formatSVG, "output format: dot, svg, png")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "label vertices with coordinates and edges with line IDs")
	cmd.Flags().Float64Var(&eps.Endpoints, "weld-eps", eps.Endpoints, "endpoint welding tolerance (world units)")
	cmd.Flags().Float64Var(&eps.Intersection, "intersect-eps", eps.Intersection, "intersection snapping tolerance (world units)")
	cmd.Flags().Float64Var(&eps.ShortSegment, "short-eps", eps.ShortSegment, "minimum surviving segment length (world units)")

	return cmd
}

func (c *CLI) runGraph(ctx context.Context, input, layerID, output, format string, detailed bool, eps merge.Epsilon) error {
	scene, err := sketch.ReadSceneFile(input)
	if err != nil {
		return fmt.Errorf("load scene %s: %w", input, err)
	}

	if layerID == "" {
		layerID, err = pickLayer(scene)
		if err != nil {
			return err
		}
	}

	net, err := merge.Topology(scene.LayerPolylines(layerID), merge.Options{
		LayerID: layerID,
		Eps:     eps,
		Logger:  c.Logger,
	})
	if err != nil {
		return fmt.Errorf("analyze layer %s: %w", layerID, err)
	}
	if len(net.Edges) == 0 {
		printWarning("Layer %s has no edges", layerID)
	}

	dot := merge.ToDOT(net, merge.DotOptions{Detailed: detailed})

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", format))
	spinner.Start()

	var data []byte
	switch format {
	case formatDOT:
		data = []byte(dot)
	case formatSVG:
		data, err = merge.RenderDOTSVG(dot)
	case formatPNG:
		data, err = merge.RenderDOTPNG(dot)
	default:
		spinner.Stop()
		return fmt.Errorf("unknown format %q (want dot, svg, or png)", format)
	}
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render %s: %w", format, err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + "." + format
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Graph exported")
	printFile(outputPath)
	printDetail("%d vertices, %d edges, %d components", len(net.Vertices), len(net.Edges), len(net.Components))

	return nil
}
