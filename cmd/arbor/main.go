// arbor - terminal scene viewer
// Loads a glTF/GLB model into a scene graph and renders it in the terminal
// with the software backend.
//
// Controls:
//
//	Mouse drag  - Rotate model (yaw/pitch)
//	Scroll, +/- - Zoom in/out
//	W/S A/D Q/E - Pitch, yaw and roll
//	Space       - Random spin
//	R           - Reset view
//	T           - Cycle shading (unlit, flat, gouraud)
//	B           - Toggle bounding boxes
//	C           - Toggle frustum culling
//	G           - Toggle grid and axes
//	L           - Aim light (move mouse, click to set, Esc to cancel)
//	?           - Toggle HUD
//	Esc         - Quit
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/taigrr/arbor/pkg/config"
)

var version = "dev"

type flags struct {
	config   string
	fps      int
	bg       string
	shading  string
	texture  string
	logFile  string
	grid     bool
	axes     bool
	bounds   bool
	snapshot string
	size     string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := fang.Execute(ctx, rootCmd(), fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	return newRootCmd(&flags{})
}

func newRootCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "arbor [flags] <model.glb|model.gltf>",
		Short: "View glTF models in the terminal",
		Long: `arbor renders glTF and GLB models in the terminal.

Controls:
  Mouse drag  - Rotate model
  Scroll, +/- - Zoom in/out
  W/S A/D Q/E - Pitch, yaw and roll
  Space       - Random spin
  R           - Reset view
  T           - Cycle shading
  B           - Toggle bounding boxes
  C           - Toggle frustum culling
  G           - Toggle grid and axes
  L           - Aim light (mouse to aim, click to set)
  ?           - Toggle HUD
  Esc         - Quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			log, err := cfg.Log.Logger()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if f.snapshot != "" {
				var w, h int
				if _, err := fmt.Sscanf(f.size, "%dx%d", &w, &h); err != nil || w <= 0 || h <= 0 {
					return fmt.Errorf("invalid --size %q, want WIDTHxHEIGHT", f.size)
				}
				return snapshot(cfg, log, args[0], f.snapshot, w, h)
			}
			return view(cmd.Context(), cfg, log, args[0])
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.config, "config", "c", "", "TOML config file")
	fl.IntVar(&f.fps, "fps", 60, "target frames per second")
	fl.StringVar(&f.bg, "bg", "30,30,40", "background color (R,G,B)")
	fl.StringVar(&f.shading, "shading", "gouraud", "shading for untextured meshes (unlit, flat, gouraud)")
	fl.StringVar(&f.texture, "texture", "", "texture (PNG/JPG) for meshes without one")
	fl.StringVar(&f.logFile, "log", "", "write logs to this file")
	fl.BoolVar(&f.grid, "grid", false, "show the ground grid")
	fl.BoolVar(&f.axes, "axes", false, "show the world axes")
	fl.BoolVar(&f.bounds, "bounds", false, "draw bounding boxes")
	fl.StringVar(&f.snapshot, "snapshot", "", "render one frame to this PNG file and exit")
	fl.StringVar(&f.size, "size", "320x180", "snapshot size in pixels")

	cmd.AddCommand(configCmd())
	return cmd
}

// load reads the config file, then applies the flags the user set.
func (f *flags) load(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if f.config != "" {
		var err error
		if cfg, err = config.Load(f.config); err != nil {
			return cfg, err
		}
	}
	set := cmd.Flags().Changed
	if set("fps") {
		cfg.Viewer.FPS = f.fps
	}
	if set("bg") {
		var r, g, b uint8
		if _, err := fmt.Sscanf(f.bg, "%d,%d,%d", &r, &g, &b); err != nil {
			return cfg, fmt.Errorf("invalid --bg %q: %w", f.bg, err)
		}
		cfg.Render.Background = [3]uint8{r, g, b}
	}
	if set("shading") {
		cfg.Render.Shading = f.shading
	}
	if set("texture") {
		cfg.Render.Texture = f.texture
	}
	if set("log") {
		cfg.Log.File = f.logFile
	}
	if set("grid") {
		cfg.Viewer.Grid = f.grid
	}
	if set("axes") {
		cfg.Viewer.Axes = f.axes
	}
	if set("bounds") {
		cfg.Render.BoundingBoxes = f.bounds
	}
	return cfg, cfg.Validate()
}

func configCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Default()
			if path != "" {
				var err error
				if cfg, err = config.Load(path); err != nil {
					return err
				}
			}
			data, err := cfg.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&path, "config", "c", "", "TOML config file")
	return cmd
}

// snapshot renders a single frame of the model to a PNG file.
func snapshot(cfg config.Config, log *zap.Logger, modelPath, out string, width, height int) error {
	v, err := newViewer(cfg, log, modelPath, width, height)
	if err != nil {
		return err
	}
	frame, err := v.frame()
	if err != nil {
		return err
	}
	log.Info("snapshot rendered",
		zap.Int("draws", len(frame.Draws)),
		zap.Int("culled", frame.Stats.Culled),
		zap.Int("triangles", v.backend.Stats().Triangles))
	return v.fb.SavePNG(out)
}
