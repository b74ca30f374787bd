package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/arbor/pkg/math3d"
	"github.com/taigrr/arbor/pkg/scene"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
[render]
background = [0, 0, 0]
shading = "flat"
bounding_boxes = true

[camera]
fov = 45.0
distance = 8.0

[light]
kind = "point"
color = [1.0, 0.5, 0.25]

[viewer]
grid = true
`))
	require.NoError(t, err)

	assert.Equal(t, [3]uint8{0, 0, 0}, cfg.Render.Background)
	assert.Equal(t, "flat", cfg.Render.Shading)
	assert.True(t, cfg.Render.BoundingBoxes)
	assert.True(t, cfg.Render.Culling, "unset keys keep defaults")
	assert.Equal(t, 45.0, cfg.Camera.FOV)
	assert.Equal(t, 8.0, cfg.Camera.Distance)
	assert.Equal(t, 0.1, cfg.Camera.Near)
	assert.True(t, cfg.Viewer.Grid)
	assert.Equal(t, 60, cfg.Viewer.FPS)

	l, err := cfg.Light.Light()
	require.NoError(t, err)
	assert.Equal(t, scene.Point, l.Kind)
	assert.Equal(t, math3d.V3(1, 0.5, 0.25), l.Color)
	assert.Equal(t, 0.15, l.Ambient)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{"unknown key", "[render]\nshadows = true\n"},
		{"unknown table", "[audio]\nvolume = 1\n"},
		{"bad shading", "[render]\nshading = \"phong\"\n"},
		{"bad fov", "[camera]\nfov = 180.0\n"},
		{"clip planes", "[camera]\nnear = 10.0\nfar = 5.0\n"},
		{"light kind", "[light]\nkind = \"area\"\n"},
		{"ambient", "[light]\nambient = 2.0\n"},
		{"fps", "[viewer]\nfps = 0\n"},
		{"log level", "[log]\nlevel = \"loud\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.toml))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestParseSyntaxError(t *testing.T) {
	_, err := Parse([]byte("[render\n"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalid)
}

func TestValidateReportsAll(t *testing.T) {
	cfg := Default()
	cfg.Render.Shading = "x"
	cfg.Viewer.FPS = -1
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render.shading")
	assert.Contains(t, err.Error(), "viewer.fps")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "arbor.toml")
	require.NoError(t, os.WriteFile(path, []byte("[viewer]\nfps = 30\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Viewer.FPS)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMarshalRoundTrip(t *testing.T) {
	want := Default()
	want.Render.Shading = "unlit"
	want.Log.File = "/tmp/arbor.log"
	data, err := want.Marshal()
	require.NoError(t, err)

	got, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLogger(t *testing.T) {
	log, err := LogConfig{Level: "debug"}.Logger()
	require.NoError(t, err)
	assert.NotNil(t, log)

	path := filepath.Join(t.TempDir(), "arbor.log")
	log, err = LogConfig{File: path, Level: "warn"}.Logger()
	require.NoError(t, err)
	log.Info("dropped")
	log.Warn("kept")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), "kept")
}

func TestFOVRadians(t *testing.T) {
	assert.InDelta(t, 1.0471975511965976, CameraConfig{FOV: 60}.FOVRadians(), 1e-12)
}
