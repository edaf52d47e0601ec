package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/go-drift/frost/pkg/graphics"
	"github.com/go-drift/frost/pkg/scene"
)

type renderOptions struct {
	output  string
	frames  int
	dumpOps string
	engine  string
}

func (o *renderOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "PNG file to write (default: <scene>.png)")
	cmd.Flags().IntVar(&o.frames, "frames", 1, "Number of frames to run before writing")
	cmd.Flags().StringVar(&o.dumpOps, "dump-ops", "", "Write the last frame's drawing operations as JSON")
	cmd.Flags().StringVar(&o.engine, "engine", "", "Override the scene's blur engine (box or gaussian)")
}

func (o *renderOptions) outputPath(scenePath string) string {
	if o.output != "" {
		return o.output
	}
	return strings.TrimSuffix(scenePath, filepath.Ext(scenePath)) + ".png"
}

func newRenderCmd() *cobra.Command {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render <scene.yaml>",
		Short: "Render a scene to PNG",
		Long: `Build the scene, run its frame loop and write the final frame.

Blur views capture during the pre-draw pass of each frame, so the first
frame already shows blurred content. Use --frames to run the loop longer,
for example when bindings are resolved after the first layout pass.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return renderScene(args[0], opts)
		},
	}
	opts.addFlags(cmd)
	return cmd
}

// renderScene loads, builds and renders the scene at path.
func renderScene(path string, opts *renderOptions) error {
	if opts.frames < 1 {
		return fmt.Errorf("--frames must be at least 1, got %d", opts.frames)
	}
	doc, err := scene.Load(path)
	if err != nil {
		return err
	}
	if opts.engine != "" {
		doc.Engine = opts.engine
	}
	s, err := scene.Build(doc, filepath.Dir(path))
	if err != nil {
		return fmt.Errorf("failed to build scene: %w", err)
	}
	defer s.Window.Close()

	size := s.Window.Size()
	canvas := graphics.NewRasterCanvas(int(math.Ceil(size.Width)), int(math.Ceil(size.Height)))
	defer canvas.Close()

	drawn := s.DrawFrames(canvas, opts.frames-1)
	var ops *graphics.DisplayList
	if opts.dumpOps != "" {
		// Record the last frame, then replay it onto the raster surface.
		recorder := &graphics.PictureRecorder{}
		if s.Window.DrawFrame(recorder.BeginRecording(size)) {
			drawn++
		}
		ops = recorder.EndRecording()
		ops.Paint(canvas)
	} else {
		drawn += s.DrawFrames(canvas, 1)
	}
	if drawn == 0 {
		return fmt.Errorf("no frame was presented")
	}

	out := opts.outputPath(path)
	if err := writePNG(out, canvas); err != nil {
		return err
	}
	if ops != nil {
		if err := writeOps(opts.dumpOps, ops); err != nil {
			return err
		}
	}

	for i, bv := range s.Blurs {
		st := bv.Stats()
		bw, bh := bv.BufferSize()
		slog.Debug("blur view",
			slog.Int("index", i),
			slog.String("state", bv.State().String()),
			slog.Int("bufferWidth", bw),
			slog.Int("bufferHeight", bh),
			slog.Uint64("captured", st.Captured),
			slog.Uint64("skipped", st.Skipped),
			slog.Uint64("failed", st.Failed))
	}
	slog.Info("rendered", slog.String("scene", path), slog.String("output", out), slog.Int("frames", drawn))
	return nil
}

func writePNG(path string, canvas *graphics.RasterCanvas) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := canvas.EncodePNG(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return f.Close()
}

func writeOps(path string, list *graphics.DisplayList) error {
	data, err := json.MarshalIndent(list.Ops(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode ops: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write ops: %w", err)
	}
	return nil
}
