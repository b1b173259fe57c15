// Package scene describes the demo world: portals and how they link,
// travellers, static props and the player start. Scenes are read from
// JSON, YAML or TOML files and can be watched for changes.
package scene

import (
	"errors"
	"fmt"

	"portalview/internal/geom"

	"github.com/go-gl/mathgl/mgl32"
)

// Vec3 is written as a three element array in every format.
type Vec3 [3]float32

func (v Vec3) Mgl() mgl32.Vec3 {
	return mgl32.Vec3(v)
}

// Transform is a position and Euler rotation in degrees (pitch, yaw,
// roll).
type Transform struct {
	Position Vec3 `json:"position" yaml:"position" toml:"position"`
	Rotation Vec3 `json:"rotation" yaml:"rotation" toml:"rotation"`
}

func (t Transform) Pose() geom.Pose {
	return geom.PoseAt(t.Position.Mgl(), t.Rotation[0], t.Rotation[1], t.Rotation[2])
}

type Portal struct {
	Name      string `json:"name" yaml:"name" toml:"name"`
	Link      string `json:"link" yaml:"link" toml:"link"`
	Transform `yaml:",inline"`
	// Width and height of the screen.
	Size [2]float32 `json:"size" yaml:"size" toml:"size"`
	// Frame is the colour of the doorway around the screen.
	Frame string `json:"frame,omitempty" yaml:"frame,omitempty" toml:"frame,omitempty"`
	// RecursionLimit overrides the configured limit when set.
	RecursionLimit *int `json:"recursion_limit,omitempty" yaml:"recursion_limit,omitempty" toml:"recursion_limit,omitempty"`
}

type Traveller struct {
	Name      string `json:"name" yaml:"name" toml:"name"`
	Transform `yaml:",inline"`
	Size      Vec3   `json:"size" yaml:"size" toml:"size"`
	Color     string `json:"color" yaml:"color" toml:"color"`
	Velocity  Vec3   `json:"velocity" yaml:"velocity" toml:"velocity"`
	// Clone is "spawn" (default) or "pooled".
	Clone string `json:"clone,omitempty" yaml:"clone,omitempty" toml:"clone,omitempty"`
	// Follows names another traveller this one is carried along with.
	Follows string `json:"follows,omitempty" yaml:"follows,omitempty" toml:"follows,omitempty"`
}

type Prop struct {
	Name string `json:"name" yaml:"name" toml:"name"`
	// Shape is "cube" or "plane".
	Shape     string `json:"shape" yaml:"shape" toml:"shape"`
	Transform `yaml:",inline"`
	Size      Vec3   `json:"size" yaml:"size" toml:"size"`
	Color     string `json:"color" yaml:"color" toml:"color"`
	Texture   string `json:"texture,omitempty" yaml:"texture,omitempty" toml:"texture,omitempty"`
}

type Player struct {
	Position Vec3    `json:"position" yaml:"position" toml:"position"`
	Yaw      float32 `json:"yaw" yaml:"yaw" toml:"yaw"`
	Pitch    float32 `json:"pitch" yaml:"pitch" toml:"pitch"`
}

// Sounds are audio files resolved like textures. Both are optional.
type Sounds struct {
	// Ambient loops for as long as the scene is shown.
	Ambient string `json:"ambient,omitempty" yaml:"ambient,omitempty" toml:"ambient,omitempty"`
	// Teleport plays whenever a traveller crosses a portal.
	Teleport string `json:"teleport,omitempty" yaml:"teleport,omitempty" toml:"teleport,omitempty"`
}

type Scene struct {
	Name       string      `json:"name" yaml:"name" toml:"name"`
	Sky        string      `json:"sky,omitempty" yaml:"sky,omitempty" toml:"sky,omitempty"`
	Player     Player      `json:"player" yaml:"player" toml:"player"`
	Portals    []Portal    `json:"portals" yaml:"portals" toml:"portals"`
	Travellers []Traveller `json:"travellers" yaml:"travellers" toml:"travellers"`
	Props      []Prop      `json:"props" yaml:"props" toml:"props"`
	Sounds     Sounds      `json:"sounds,omitempty" yaml:"sounds,omitempty" toml:"sounds,omitempty"`

	// Dir is the directory the scene was loaded from; textures resolve
	// relative to it.
	Dir string `json:"-" yaml:"-" toml:"-"`
}

var ErrInvalidScene = errors.New("invalid scene")

// Validate checks names, links and sizes. All problems are reported
// together, wrapped in ErrInvalidScene.
func (s *Scene) Validate() error {
	var errs []error
	names := make(map[string]bool, len(s.Portals))
	for i, p := range s.Portals {
		switch {
		case p.Name == "":
			errs = append(errs, fmt.Errorf("portal #%d has no name", i))
		case names[p.Name]:
			errs = append(errs, fmt.Errorf("portal %q defined twice", p.Name))
		}
		names[p.Name] = true
		if p.Size[0] <= 0 || p.Size[1] <= 0 {
			errs = append(errs, fmt.Errorf("portal %q: size %v must be positive", p.Name, p.Size))
		}
		if p.RecursionLimit != nil && *p.RecursionLimit < 0 {
			errs = append(errs, fmt.Errorf("portal %q: negative recursion limit", p.Name))
		}
	}
	links := make(map[string]string, len(s.Portals))
	for _, p := range s.Portals {
		links[p.Name] = p.Link
	}
	for _, p := range s.Portals {
		switch {
		case p.Link == "":
		case p.Link == p.Name:
			errs = append(errs, fmt.Errorf("portal %q links to itself", p.Name))
		case !names[p.Link]:
			errs = append(errs, fmt.Errorf("portal %q links to unknown portal %q", p.Name, p.Link))
		case links[p.Link] != "" && links[p.Link] != p.Name:
			errs = append(errs, fmt.Errorf("portal %q links to %q, which links to %q", p.Name, p.Link, links[p.Link]))
		}
	}

	travellers := make(map[string]bool, len(s.Travellers))
	for _, t := range s.Travellers {
		if t.Name == "" || travellers[t.Name] {
			errs = append(errs, fmt.Errorf("traveller %q: missing or duplicate name", t.Name))
		}
		travellers[t.Name] = true
		if t.Size[0] <= 0 || t.Size[1] <= 0 || t.Size[2] <= 0 {
			errs = append(errs, fmt.Errorf("traveller %q: size %v must be positive", t.Name, t.Size))
		}
		switch t.Clone {
		case "", "spawn", "pooled":
		default:
			errs = append(errs, fmt.Errorf("traveller %q: unknown clone strategy %q", t.Name, t.Clone))
		}
	}
	for _, t := range s.Travellers {
		if t.Follows != "" && (!travellers[t.Follows] || t.Follows == t.Name) {
			errs = append(errs, fmt.Errorf("traveller %q follows unknown traveller %q", t.Name, t.Follows))
		}
	}

	for _, p := range s.Props {
		switch p.Shape {
		case "cube", "plane":
		default:
			errs = append(errs, fmt.Errorf("prop %q: unknown shape %q", p.Name, p.Shape))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidScene, errors.Join(errs...))
	}
	return nil
}

// Links returns each linked pair once, in file order.
func (s *Scene) Links() [][2]string {
	seen := make(map[string]bool)
	var out [][2]string
	for _, p := range s.Portals {
		if p.Link == "" || seen[p.Name] || seen[p.Link] {
			continue
		}
		seen[p.Name], seen[p.Link] = true, true
		out = append(out, [2]string{p.Name, p.Link})
	}
	return out
}
