// Package config holds the application settings: built-in defaults, an
// optional TOML settings file and command-line overrides applied by main.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"
	"time"

	"portalview/internal/portal"

	"github.com/pelletier/go-toml/v2"
)

type Window struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
	FPS    int32  `toml:"fps"`
	MSAA   bool   `toml:"msaa"`
}

type Camera struct {
	FovY             float32 `toml:"fov"`
	Near             float32 `toml:"near"`
	Far              float32 `toml:"far"`
	MouseSensitivity float32 `toml:"mouse_sensitivity"`
	MoveSpeed        float32 `toml:"move_speed"`
	// X11Mouse reads the pointer from the X server instead of raylib.
	X11Mouse bool `toml:"x11_mouse"`
}

type Portals struct {
	RecursionLimit    int      `toml:"recursion_limit"`
	NearClipOffset    float32  `toml:"near_clip_offset"`
	NearClipLimit     float32  `toml:"near_clip_limit"`
	MaxRenderDistance float32  `toml:"max_render_distance"`
	TeleportCooldown  Duration `toml:"teleport_cooldown"`
	ScreenThickness   float32  `toml:"screen_thickness"`
}

type Log struct {
	Level      string `toml:"level"`
	RaylibInfo bool   `toml:"raylib_info"`
}

type Audio struct {
	Enabled bool    `toml:"enabled"`
	Volume  float32 `toml:"volume"`
}

type Colors struct {
	Sky      string `toml:"sky"`
	Fallback string `toml:"fallback"`
}

type Settings struct {
	Window  Window  `toml:"window"`
	Camera  Camera  `toml:"camera"`
	Portals Portals `toml:"portals"`
	Log     Log     `toml:"log"`
	Audio   Audio   `toml:"audio"`
	Colors  Colors  `toml:"colors"`
}

func Default() Settings {
	p := portal.DefaultSettings()
	return Settings{
		Window: Window{
			Width:  1280,
			Height: 720,
			Title:  "portalview",
			FPS:    60,
			MSAA:   true,
		},
		Camera: Camera{
			FovY:             70,
			Near:             0.05,
			Far:              500,
			MouseSensitivity: 0.12,
			MoveSpeed:        4,
		},
		Portals: Portals{
			RecursionLimit:    p.RecursionLimit,
			NearClipOffset:    p.NearClipOffset,
			NearClipLimit:     p.NearClipLimit,
			MaxRenderDistance: 50,
			TeleportCooldown:  Duration(p.TeleportCooldown),
			ScreenThickness:   p.ScreenThickness,
		},
		Log:   Log{Level: "warn"},
		Audio: Audio{Enabled: true, Volume: 0.8},
		Colors: Colors{
			Sky:      "#87a9c9",
			Fallback: "#181820",
		},
	}
}

// Load reads path on top of the defaults. A missing file is not an
// error.
func Load(path string) (Settings, error) {
	s := Default()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("read settings: %w", err)
	}
	if err := toml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return s, nil
}

// Save writes s as TOML.
func (s Settings) Save(path string) error {
	data, err := toml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Settings) Validate() error {
	var errs []error
	if s.Window.Width <= 0 || s.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", s.Window.Width, s.Window.Height))
	}
	if s.Window.FPS < 0 {
		errs = append(errs, fmt.Errorf("fps %d must not be negative", s.Window.FPS))
	}
	if s.Camera.FovY <= 0 || s.Camera.FovY >= 180 {
		errs = append(errs, fmt.Errorf("camera fov %g out of range (0, 180)", s.Camera.FovY))
	}
	if s.Camera.Near <= 0 || s.Camera.Far <= s.Camera.Near {
		errs = append(errs, fmt.Errorf("camera clip range [%g, %g] is invalid", s.Camera.Near, s.Camera.Far))
	}
	if s.Portals.RecursionLimit < 0 {
		errs = append(errs, fmt.Errorf("recursion limit %d must not be negative", s.Portals.RecursionLimit))
	}
	if s.Portals.NearClipLimit < 0 {
		errs = append(errs, fmt.Errorf("near clip limit %g must not be negative", s.Portals.NearClipLimit))
	}
	if s.Portals.MaxRenderDistance < 0 {
		errs = append(errs, fmt.Errorf("max render distance %g must not be negative", s.Portals.MaxRenderDistance))
	}
	if s.Portals.TeleportCooldown < 0 {
		errs = append(errs, fmt.Errorf("teleport cooldown %s must not be negative", time.Duration(s.Portals.TeleportCooldown)))
	}
	if s.Audio.Volume < 0 || s.Audio.Volume > 1 {
		errs = append(errs, fmt.Errorf("audio volume %g out of range [0, 1]", s.Audio.Volume))
	}
	if _, err := ParseColor(s.Colors.Sky); err != nil {
		errs = append(errs, fmt.Errorf("sky colour: %w", err))
	}
	if _, err := ParseColor(s.Colors.Fallback); err != nil {
		errs = append(errs, fmt.Errorf("fallback colour: %w", err))
	}
	return errors.Join(errs...)
}

// PortalSettings converts the portal section for the core.
func (s Settings) PortalSettings() portal.Settings {
	return portal.Settings{
		RecursionLimit:    s.Portals.RecursionLimit,
		NearClipOffset:    s.Portals.NearClipOffset,
		NearClipLimit:     s.Portals.NearClipLimit,
		MaxRenderDistance: s.Portals.MaxRenderDistance,
		TeleportCooldown:  time.Duration(s.Portals.TeleportCooldown),
		ScreenThickness:   s.Portals.ScreenThickness,
	}
}

// Duration is a time.Duration written as a string ("1s", "250ms") in
// TOML.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// ParseColor accepts "#rrggbb", "#rrggbbaa" or three or four
// comma-separated 0..1 floats, the way scene files store colours.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		if len(hex) != 6 && len(hex) != 8 {
			return color.RGBA{}, fmt.Errorf("bad hex colour %q", s)
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("bad hex colour %q: %w", s, err)
		}
		if len(hex) == 6 {
			v = v<<8 | 0xff
		}
		return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
	}

	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	if len(parts) != 3 && len(parts) != 4 {
		return color.RGBA{}, fmt.Errorf("bad colour %q", s)
	}
	c := [4]uint8{0, 0, 0, 255}
	for i, p := range parts {
		f, err := strconv.ParseFloat(p, 32)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("bad colour %q: %w", s, err)
		}
		if f < 0 {
			f = 0
		} else if f > 1 {
			f = 1
		}
		c[i] = uint8(f*255 + 0.5)
	}
	return color.RGBA{R: c[0], G: c[1], B: c[2], A: c[3]}, nil
}
