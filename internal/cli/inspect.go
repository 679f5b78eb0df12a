package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harmonyhq/linework/pkg/merge"
	"github.com/harmonyhq/linework/pkg/sketch"
)

// inspectCommand creates the inspect command for examining a scene file.
func (c *CLI) inspectCommand() *cobra.Command {
	var layerID string
	eps := merge.DefaultEpsilon()

	cmd := &cobra.Command{
		Use:   "inspect [scene.json]",
		Short: "Show scene contents and layer topology",
		Long: `Show scene contents and layer topology.

Without --layer, inspect prints the scene's layers with their polyline and
point counts. With --layer, it additionally builds the layer's network and
reports vertices, edges, and connected components as the merge command
would see them, without modifying anything.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(args[0], layerID, eps)
		},
	}

	cmd.Flags().StringVarP(&layerID, "layer", "l", "", "layer ID to analyze")
	cmd.Flags().Float64Var(&eps.Endpoints, "weld-eps", eps.Endpoints, "endpoint welding tolerance (world units)")
	cmd.Flags().Float64Var(&eps.Intersection, "intersect-eps", eps.Intersection, "intersection snapping tolerance (world units)")
	cmd.Flags().Float64Var(&eps.ShortSegment, "short-eps", eps.ShortSegment, "minimum surviving segment length (world units)")

	return cmd
}

func (c *CLI) runInspect(input, layerID string, eps merge.Epsilon) error {
	scene, err := sketch.ReadSceneFile(input)
	if err != nil {
		return fmt.Errorf("load scene %s: %w", input, err)
	}

	name := scene.Name
	if name == "" {
		name = scene.ID
	}
	fmt.Println(StyleTitle.Render(name))
	printKeyValue("Layers", fmt.Sprintf("%d", len(scene.Layers)))
	printKeyValue("Polylines", fmt.Sprintf("%d", len(scene.Polylines)))
	printNewline()

	for _, l := range scene.Layers {
		shapes := scene.LayerPolylines(l.ID)
		points := 0
		for _, p := range shapes {
			points += len(p.Points)
		}
		label := l.Name
		if label == "" {
			label = l.ID
		}
		marker := " "
		if l.ID == layerID {
			marker = iconArrow
		}
		fmt.Printf("%s %s %s\n", StyleDim.Render(marker), StyleValue.Render(label),
			StyleDim.Render(fmt.Sprintf("(%d lines, %d points)", len(shapes), points)))
	}

	if layerID == "" {
		return nil
	}
	if _, ok := scene.Layer(layerID); !ok && len(scene.Layers) > 0 {
		return fmt.Errorf("layer %s not found in scene", layerID)
	}

	net, err := merge.Topology(scene.LayerPolylines(layerID), merge.Options{
		LayerID: layerID,
		Eps:     eps,
		Logger:  c.Logger,
	})
	if err != nil {
		return fmt.Errorf("analyze layer %s: %w", layerID, err)
	}

	printNewline()
	fmt.Println(StyleTitle.Render("Topology"))
	printKeyValue("Vertices", fmt.Sprintf("%d", len(net.Vertices)))
	printKeyValue("Edges", fmt.Sprintf("%d", len(net.Edges)))
	printKeyValue("Components", fmt.Sprintf("%d", len(net.Components)))

	return nil
}
