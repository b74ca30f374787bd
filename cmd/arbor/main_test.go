package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/arbor/pkg/config"
)

func TestFlagsOverrideConfig(t *testing.T) {
	f := &flags{}
	cmd := newRootCmd(f)
	require.NoError(t, cmd.ParseFlags([]string{"--fps", "30", "--bg", "1,2,3", "--grid", "--shading", "flat"}))

	cfg, err := f.load(cmd)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Viewer.FPS)
	assert.Equal(t, [3]uint8{1, 2, 3}, cfg.Render.Background)
	assert.True(t, cfg.Viewer.Grid)
	assert.Equal(t, "flat", cfg.Render.Shading)
	assert.False(t, cfg.Viewer.Axes, "unset flags keep config values")
}

func TestFlagsValidate(t *testing.T) {
	f := &flags{}
	cmd := newRootCmd(f)
	require.NoError(t, cmd.ParseFlags([]string{"--shading", "phong"}))
	_, err := f.load(cmd)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestConfigCommandPrintsDefaults(t *testing.T) {
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"config"})
	require.NoError(t, cmd.Execute())

	cfg, err := config.Parse(out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}
