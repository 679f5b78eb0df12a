package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harmonyhq/linework/pkg/cache"
	"github.com/harmonyhq/linework/pkg/merge"
	"github.com/harmonyhq/linework/pkg/sketch"
)

// mergeCommand creates the merge command for normalizing a scene layer.
func (c *CLI) mergeCommand() *cobra.Command {
	var (
		layerID string
		output  string
		noCache bool
		dryRun  bool
	)
	eps := merge.DefaultEpsilon()

	cmd := &cobra.Command{
		Use:   "merge [scene.json]",
		Short: "Normalize one layer of a scene into a consistent network",
		Long: `Normalize one layer of a scene into a topologically consistent network.

The merge command welds nearby polyline endpoints together, splits strokes
where they cross, drops segments shorter than the configured tolerance, and
re-serializes each connected component as a single polyline. Polylines on
other layers pass through untouched.

If --layer is omitted and the scene has layers, an interactive picker opens.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runMerge(cmd.Context(), args[0], layerID, output, eps, noCache, dryRun)
		},
	}

	cmd.Flags().StringVarP(&layerID, "layer", "l", "", "layer ID to normalize (default: interactive picker)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.merged.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would change without writing output")
	cmd.Flags().Float64Var(&eps.Endpoints, "weld-eps", eps.Endpoints, "endpoint welding tolerance (world units)")
	cmd.Flags().Float64Var(&eps.Intersection, "intersect-eps", eps.Intersection, "intersection snapping tolerance (world units)")
	cmd.Flags().Float64Var(&eps.ShortSegment, "short-eps", eps.ShortSegment, "minimum surviving segment length (world units)")

	return cmd
}

// mergePayload is the cacheable merge output for one layer.
type mergePayload struct {
	Merged    []sketch.Polyline `json:"merged"`
	LineIDMap map[string]string `json:"lineIdMap,omitempty"`
	Changed   bool              `json:"changed"`
	Stats     merge.Stats       `json:"stats"`
}

// runMerge loads the scene, normalizes the chosen layer, and writes output.
func (c *CLI) runMerge(ctx context.Context, input, layerID, output string, eps merge.Epsilon, noCache, dryRun bool) error {
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
	if _, ok := scene.Layer(layerID); !ok && len(scene.Layers) > 0 {
		return fmt.Errorf("layer %s not found in scene", layerID)
	}

	store, err := newCache(noCache)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	defer store.Close()

	layerShapes := scene.LayerPolylines(layerID)
	payload, cached, err := c.mergeLayer(ctx, store, layerShapes, layerID, eps)
	if err != nil {
		return err
	}

	if dryRun {
		if payload.Changed {
			printInfo("Layer %s would change", layerID)
		} else {
			printInfo("Layer %s is already normalized", layerID)
		}
		printMergeStats(payload.Stats.Lines, payload.Stats.Splits, payload.Stats.Components, cached)
		return nil
	}

	next := make([]sketch.Polyline, 0, len(scene.Polylines))
	for _, p := range scene.Polylines {
		if p.LayerID != layerID {
			next = append(next, p)
		}
	}
	scene.Polylines = append(next, payload.Merged...)

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".merged.json"
	}
	if err := sketch.WriteSceneFile(scene, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Merge complete")
	printFile(outputPath)
	printMergeStats(payload.Stats.Lines, payload.Stats.Splits, payload.Stats.Components, cached)
	printNewline()
	printNextStep("Visualize", "linework graph "+outputPath+" --layer "+layerID)

	return nil
}

// mergeLayer normalizes the layer's shapes, consulting the cache first.
func (c *CLI) mergeLayer(ctx context.Context, store cache.Cache, layerShapes []sketch.Polyline, layerID string, eps merge.Epsilon) (mergePayload, bool, error) {
	var payload mergePayload

	key, err := mergeKey(layerShapes, layerID, eps)
	if err != nil {
		return payload, false, fmt.Errorf("hash layer shapes: %w", err)
	}
	if data, hit, cerr := store.Get(ctx, key); cerr == nil && hit {
		if json.Unmarshal(data, &payload) == nil {
			return payload, true, nil
		}
	}

	logger := loggerFromContext(ctx)
	prog := newProgress(logger)
	res, err := merge.Merge(layerShapes, merge.Options{
		LayerID: layerID,
		Eps:     eps,
		Logger:  logger,
	})
	if err != nil {
		return payload, false, fmt.Errorf("merge layer %s: %w", layerID, err)
	}
	prog.done(fmt.Sprintf("Normalized %d lines into %d components", res.Stats.Lines, res.Stats.Components))

	payload = mergePayload{
		Merged:    res.Polylines,
		LineIDMap: res.LineIDMap,
		Changed:   res.Changed,
		Stats:     res.Stats,
	}
	if data, jerr := json.Marshal(payload); jerr == nil {
		_ = store.Set(ctx, key, data, 0)
	}
	return payload, false, nil
}

// mergeKey hashes the layer's shapes and tolerances into a cache key.
func mergeKey(layerShapes []sketch.Polyline, layerID string, eps merge.Epsilon) (string, error) {
	data, err := json.Marshal(layerShapes)
	if err != nil {
		return "", err
	}
	return cache.MergeKey(cache.Hash(data), cache.MergeKeyOpts{
		LayerID:      layerID,
		Endpoints:    eps.Endpoints,
		Intersection: eps.Intersection,
		ShortSegment: eps.ShortSegment,
	}), nil
}
