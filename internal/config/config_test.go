package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	s := Default()
	require.NoError(t, s.Validate())
	assert.Equal(t, 5, s.Portals.RecursionLimit)
	assert.InDelta(t, 0.05, s.Portals.NearClipOffset, 1e-6)
	assert.InDelta(t, 0.2, s.Portals.NearClipLimit, 1e-6)
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), s)

	s, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portalview.toml")
	data := `
[window]
width = 800
fps = 30

[portals]
recursion_limit = 2
teleport_cooldown = "1s"

[log]
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 800, s.Window.Width)
	assert.Equal(t, 720, s.Window.Height, "unset keys keep defaults")
	assert.Equal(t, int32(30), s.Window.FPS)
	assert.Equal(t, 2, s.Portals.RecursionLimit)
	assert.Equal(t, "debug", s.Log.Level)

	ps := s.PortalSettings()
	assert.Equal(t, time.Second, ps.TeleportCooldown)
	assert.Equal(t, 2, ps.RecursionLimit)
	assert.InDelta(t, 50, ps.MaxRenderDistance, 1e-6)
}

func TestLoadRejectsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[window\nwidth = "), 0o644))
	_, err := Load(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("[portals]\nteleport_cooldown = \"soon\"\n"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.toml")
	s := Default()
	s.Portals.TeleportCooldown = Duration(250 * time.Millisecond)
	s.Camera.X11Mouse = true
	require.NoError(t, s.Save(path))

	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s, back)
}

func TestValidate(t *testing.T) {
	s := Default()
	s.Window.Width = 0
	s.Camera.FovY = 190
	s.Portals.RecursionLimit = -1
	s.Colors.Sky = "blue"
	s.Audio.Volume = 2

	err := s.Validate()
	require.Error(t, err)
	for _, want := range []string{"window size", "camera fov", "recursion limit", "audio volume", "sky colour"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestParseColor(t *testing.T) {
	cases := []struct {
		in   string
		want color.RGBA
	}{
		{"#ff8000", color.RGBA{255, 128, 0, 255}},
		{"#10203040", color.RGBA{16, 32, 48, 64}},
		{"1 0 0", color.RGBA{255, 0, 0, 255}},
		{"0.5, 0.5, 0.5, 0", color.RGBA{128, 128, 128, 0}},
		{" 2 -1 1 ", color.RGBA{255, 0, 255, 255}},
	}
	for _, tc := range cases {
		got, err := ParseColor(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	for _, bad := range []string{"", "#12345", "#zzzzzz", "1 2", "a b c"} {
		_, err := ParseColor(bad)
		assert.Error(t, err, bad)
	}
}
