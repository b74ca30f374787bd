// Package config loads viewer and renderer settings from TOML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/taigrr/arbor/pkg/scene"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Shading modes accepted by Render.Shading.
var Shadings = []string{"unlit", "flat", "gouraud"}

// Config is the complete configuration file.
type Config struct {
	Render RenderConfig `toml:"render"`
	Camera CameraConfig `toml:"camera"`
	Light  LightConfig  `toml:"light"`
	Viewer ViewerConfig `toml:"viewer"`
	Log    LogConfig    `toml:"log"`
}

type RenderConfig struct {
	Background    [3]uint8 `toml:"background"`
	Shading       string   `toml:"shading"`
	Culling       bool     `toml:"culling"`
	BoundingBoxes bool     `toml:"bounding_boxes"`
	FlatNormals   bool     `toml:"flat_normals"`
	Texture       string   `toml:"texture"` // fallback texture when a model has none
}

type CameraConfig struct {
	FOV      float64 `toml:"fov"` // degrees
	Near     float64 `toml:"near"`
	Far      float64 `toml:"far"`
	Distance float64 `toml:"distance"`
}

type LightConfig struct {
	Kind      string     `toml:"kind"`
	Direction [3]float64 `toml:"direction"` // points from the light toward the scene
	Color     [3]float64 `toml:"color"`
	Ambient   float64    `toml:"ambient"`
}

type ViewerConfig struct {
	FPS  int  `toml:"fps"`
	HUD  bool `toml:"hud"`
	Grid bool `toml:"grid"`
	Axes bool `toml:"axes"`

	// Spring frequency and damping of the orbit velocity decay.
	SpringFrequency float64 `toml:"spring_frequency"`
	SpringDamping   float64 `toml:"spring_damping"`
}

type LogConfig struct {
	File  string `toml:"file"` // empty disables logging
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Render: RenderConfig{
			Background: [3]uint8{30, 30, 40},
			Shading:    "gouraud",
			Culling:    true,
		},
		Camera: CameraConfig{FOV: 60, Near: 0.1, Far: 100, Distance: 5},
		Light: LightConfig{
			Kind:      "directional",
			Direction: [3]float64{-0.5, -1, -0.3},
			Color:     [3]float64{1, 1, 1},
			Ambient:   0.15,
		},
		Viewer: ViewerConfig{
			FPS:             60,
			HUD:             true,
			SpringFrequency: 4,
			SpringDamping:   1,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads a TOML file over the defaults.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	cfg, err := Decode(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML bytes over the defaults.
func Parse(data []byte) (Config, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads TOML over the defaults and validates the result. Unknown
// keys are rejected.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("%w: %s", ErrInvalid, strict.String())
		}
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Marshal encodes the configuration as TOML.
func (c Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// Validate reports every out-of-range setting.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}
	if !slices.Contains(Shadings, c.Render.Shading) {
		bad("render.shading %q is not one of %v", c.Render.Shading, Shadings)
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		bad("camera.fov %g must be in (0, 180)", c.Camera.FOV)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		bad("camera clip planes %g..%g", c.Camera.Near, c.Camera.Far)
	}
	if c.Camera.Distance <= 0 {
		bad("camera.distance %g must be positive", c.Camera.Distance)
	}
	if _, err := c.Light.LightKind(); err != nil {
		errs = append(errs, err)
	}
	if c.Light.Ambient < 0 || c.Light.Ambient > 1 {
		bad("light.ambient %g must be in [0, 1]", c.Light.Ambient)
	}
	if c.Viewer.FPS <= 0 {
		bad("viewer.fps %d must be positive", c.Viewer.FPS)
	}
	if c.Viewer.SpringFrequency <= 0 || c.Viewer.SpringDamping < 0 {
		bad("viewer spring %g/%g", c.Viewer.SpringFrequency, c.Viewer.SpringDamping)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		bad("log.level %q", c.Log.Level)
	}
	return errors.Join(errs...)
}

// FOVRadians returns the vertical field of view in radians.
func (c CameraConfig) FOVRadians() float64 {
	return c.FOV * math.Pi / 180
}

// LightKind maps Kind onto a scene light kind.
func (c LightConfig) LightKind() (scene.LightKind, error) {
	switch c.Kind {
	case "directional":
		return scene.Directional, nil
	case "point":
		return scene.Point, nil
	case "spot":
		return scene.Spot, nil
	}
	return 0, fmt.Errorf("%w: light.kind %q", ErrInvalid, c.Kind)
}

// Light builds the scene light described by c.
func (c LightConfig) Light() (scene.Light, error) {
	kind, err := c.LightKind()
	if err != nil {
		return scene.Light{}, err
	}
	l := scene.DefaultLight(kind)
	l.Color.X, l.Color.Y, l.Color.Z = c.Color[0], c.Color[1], c.Color[2]
	l.Ambient = c.Ambient
	return l, nil
}

// Logger builds a JSON file logger, or a no-op logger when File is empty.
func (c LogConfig) Logger() (*zap.Logger, error) {
	if c.File == "" {
		return zap.NewNop(), nil
	}
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{c.File}
	zc.ErrorOutputPaths = []string{c.File}
	zc.Sampling = nil
	log, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return log, nil
}
