package main

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"portalview/internal/audio"
	"portalview/internal/config"
	"portalview/internal/convert"
	"portalview/internal/engine3D"
	"portalview/internal/geom"
	"portalview/internal/portal"
	"portalview/internal/scene"
	"portalview/internal/utils"

	"github.com/go-gl/mathgl/mgl32"
)

var sceneFiles = []string{"scene.json", "scene.yaml", "scene.yml", "scene.toml"}

// openScene loads the scene named on the command line. An empty path
// gives the built-in scene. A .pkg archive is unpacked into a temporary
// directory first; cleanup removes it.
func openScene(path string) (s *scene.Scene, cleanup func(), err error) {
	cleanup = func() {}
	if path == "" {
		return scene.Default(), cleanup, nil
	}
	if !isPkg(path) {
		s, err = scene.Load(path)
		return s, cleanup, err
	}

	dir, err := os.MkdirTemp("", "portalview-")
	if err != nil {
		return nil, cleanup, err
	}
	cleanup = func() { os.RemoveAll(dir) }

	utils.Info("Unpacking %s...", path)
	if err := convert.ExtractPkg(path, dir); err != nil {
		cleanup()
		return nil, func() {}, err
	}
	for _, name := range sceneFiles {
		candidate := filepath.Join(dir, name)
		if _, statErr := os.Stat(candidate); statErr == nil {
			s, err = scene.Load(candidate)
			if err != nil {
				cleanup()
				return nil, func() {}, err
			}
			return s, cleanup, nil
		}
	}
	cleanup()
	return nil, func() {}, fmt.Errorf("%s: no scene file in package: %w", path, os.ErrNotExist)
}

func isPkg(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pkg")
}

// follower is a companion body carried along with a traveller. It moves
// with its master and is remapped with it by the registry.
type follower struct {
	body    *engine3D.Body
	graphic *engine3D.Graphic
	master  *engine3D.Body
}

// sceneState is everything built from one scene description. It is
// replaced as a whole when the scene is reloaded.
type sceneState struct {
	scene    *scene.Scene
	world    *engine3D.World
	renderer *engine3D.Renderer
	registry *portal.Registry
	pipeline *portal.Pipeline
	overlap  *portal.OverlapTracker
	pool     *portal.PooledClone
	audio    *audio.Manager

	travellers []*portal.Traveller
	bodies     []*engine3D.Body
	followers  []follower
}

func parseColorOr(s string, fallback color.RGBA) color.RGBA {
	if s == "" {
		return fallback
	}
	c, err := config.ParseColor(s)
	if err != nil {
		utils.Warn("%v, using default", err)
		return fallback
	}
	return c
}

var (
	defaultPropColor      = color.RGBA{R: 160, G: 160, B: 160, A: 255}
	defaultTravellerColor = color.RGBA{R: 220, G: 220, B: 220, A: 255}
)

// frameWidth is the thickness of the doorway around a portal screen.
const frameWidth = 0.12

// buildScene creates the world, the portals and the travellers of s. The
// player becomes a traveller of the new registry.
func buildScene(s *scene.Scene, settings config.Settings, player *engine3D.Player, textures convert.Cache) (*sceneState, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	sky := parseColorOr(settings.Colors.Sky, color.RGBA{A: 255})
	sky = parseColorOr(s.Sky, sky)
	fallback := parseColorOr(settings.Colors.Fallback, portal.DefaultFallback)

	world, err := engine3D.NewWorld(sky)
	if err != nil {
		return nil, err
	}
	renderer := engine3D.NewRenderer(world)
	st := &sceneState{
		scene:    s,
		world:    world,
		renderer: renderer,
		registry: portal.NewRegistry(),
		pipeline: portal.NewPipeline(renderer),
		overlap:  portal.NewOverlapTracker(),
		pool:     portal.NewPooledClone(),
		audio:    audio.NewManager(settings.Audio.Volume),
	}
	st.pipeline.Fallback = fallback

	st.addProps(s, textures)
	if err := st.addPortals(s, settings, fallback); err != nil {
		st.Close()
		return nil, err
	}
	st.addSounds(s)
	st.addTravellers(s)
	st.travellers = append(st.travellers, portal.NewTraveller("player", player, nil, portal.WithHooks(st.hooks())))

	utils.Info("Scene %q: %d portals, %d travellers, %d props",
		s.Name, len(s.Portals), len(s.Travellers), len(s.Props))
	return st, nil
}

func (st *sceneState) addProps(s *scene.Scene, textures convert.Cache) {
	for _, p := range s.Props {
		shape := engine3D.ShapeCube
		if p.Shape == "plane" {
			shape = engine3D.ShapePlane
		}
		prop := st.world.AddProp(p.Name, shape, p.Pose(), p.Size.Mgl(), parseColorOr(p.Color, defaultPropColor))
		if p.Texture == "" {
			continue
		}
		path := utils.FindTextureFile(s.Dir, p.Texture)
		if path == "" {
			utils.Warn("Prop %s: texture %s not found", p.Name, p.Texture)
			continue
		}
		img, err := textures.Load(path)
		if err != nil {
			utils.Error("Prop %s: failed to load texture %s: %v", p.Name, path, err)
			continue
		}
		prop.SetTexture(img)
	}
}

func (st *sceneState) addPortals(s *scene.Scene, settings config.Settings, fallback color.RGBA) error {
	for _, sp := range s.Portals {
		w, h := sp.Size[0], sp.Size[1]
		pose := sp.Pose()

		ps := settings.PortalSettings()
		if sp.RecursionLimit != nil {
			ps.RecursionLimit = *sp.RecursionLimit
		}
		screen := st.world.NewScreen(w, h, fallback)
		p := portal.NewPortal(sp.Name, pose, screen, ps)
		if err := st.registry.Add(p); err != nil {
			return err
		}

		if sp.Frame != "" {
			st.addFrame(sp.Name, pose, w, h, parseColorOr(sp.Frame, defaultPropColor))
		}
		utils.Debug("Added portal %s at %v", sp.Name, pose.Position)
	}
	for _, l := range s.Links() {
		if err := st.registry.Link(l[0], l[1]); err != nil {
			return err
		}
	}
	return nil
}

// addFrame surrounds a screen with two posts and a lintel.
func (st *sceneState) addFrame(name string, pose geom.Pose, w, h float32, c color.RGBA) {
	fw := float32(frameWidth)
	depth := fw * 2
	parts := []struct {
		offset mgl32.Vec3
		size   mgl32.Vec3
	}{
		{mgl32.Vec3{w/2 + fw/2, 0, 0}, mgl32.Vec3{fw, h + fw*2, depth}},
		{mgl32.Vec3{-w/2 - fw/2, 0, 0}, mgl32.Vec3{fw, h + fw*2, depth}},
		{mgl32.Vec3{0, h/2 + fw/2, 0}, mgl32.Vec3{w, fw, depth}},
	}
	for i, part := range parts {
		local := geom.Pose{Position: part.offset, Rotation: mgl32.QuatIdent()}
		st.world.AddProp(fmt.Sprintf("%s-frame-%d", name, i), engine3D.ShapeCube, pose.Mul(local), part.size, c)
	}
}

func (st *sceneState) addSounds(s *scene.Scene) {
	if s.Sounds.Ambient != "" {
		st.audio.PlayMusic(utils.ResolveAssetPath(s.Dir, s.Sounds.Ambient), true)
	}
	if s.Sounds.Teleport != "" {
		st.audio.LoadEffect("teleport", utils.ResolveAssetPath(s.Dir, s.Sounds.Teleport))
	}
}

func (st *sceneState) hooks() portal.Hooks {
	return portal.Hooks{
		OnPostTeleport: func(t *portal.Traveller, from, to *portal.Portal) {
			utils.Debug("%s teleported %s -> %s", t.Name, from.Name, to.Name)
			st.audio.PlayEffect("teleport")
		},
	}
}

func (st *sceneState) addTravellers(s *scene.Scene) {
	byName := make(map[string]*portal.Traveller)
	bodies := make(map[string]*engine3D.Body)

	for _, tr := range s.Travellers {
		if tr.Follows != "" {
			continue
		}
		pose := tr.Pose()
		body := engine3D.NewBody(pose, tr.Velocity.Mgl())
		graphic := st.world.NewGraphic(tr.Size.Mgl(), parseColorOr(tr.Color, defaultTravellerColor), pose)

		opts := []portal.TravellerOption{portal.WithHooks(st.hooks())}
		if tr.Clone == "pooled" {
			opts = append(opts, portal.WithCloneStrategy(st.pool))
		}
		t := portal.NewTraveller(tr.Name, body, graphic, opts...)
		st.travellers = append(st.travellers, t)
		st.bodies = append(st.bodies, body)
		byName[tr.Name] = t
		bodies[tr.Name] = body
	}

	for _, tr := range s.Travellers {
		if tr.Follows == "" {
			continue
		}
		master, ok := byName[tr.Follows]
		if !ok {
			utils.Warn("Traveller %s follows %s, which is not a free traveller", tr.Name, tr.Follows)
			continue
		}
		pose := tr.Pose()
		f := follower{
			body:    engine3D.NewBody(pose, bodies[tr.Follows].Velocity()),
			graphic: st.world.NewGraphic(tr.Size.Mgl(), parseColorOr(tr.Color, defaultTravellerColor), pose),
			master:  bodies[tr.Follows],
		}
		st.registry.AttachCompanion(master, f.body)
		st.followers = append(st.followers, f)
	}
}

// Step advances every moving body by dt seconds. Followers take their
// master's velocity.
func (st *sceneState) Step(dt float32) {
	for _, b := range st.bodies {
		b.Step(dt)
	}
	for _, f := range st.followers {
		f.body.SetVelocity(f.master.Velocity())
		f.body.Step(dt)
		f.graphic.SetPose(f.body.Pose())
	}
}

// Close releases the portals' render targets, every GPU resource of the
// world and the scene's sounds.
func (st *sceneState) Close() {
	st.overlap.Reset()
	st.registry.Clear()
	st.pool.Drain()
	st.world.Unload()
	st.audio.Close()
}
