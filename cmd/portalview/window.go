package main

import (
	"time"

	"portalview/internal/config"
	"portalview/internal/convert"
	"portalview/internal/debug"
	"portalview/internal/engine3D"
	"portalview/internal/geom"
	"portalview/internal/portal"
	"portalview/internal/scene"
	"portalview/internal/utils"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// maxStep bounds the simulation step after a stall so bodies do not jump
// across a trigger in one frame.
const maxStep = 0.05

type Window struct {
	settings config.Settings
	textures convert.Cache
	player   *engine3D.Player
	state    *sceneState

	watcher      *scene.Watcher
	pointer      *utils.GlobalPointer
	debugOverlay *debug.DebugOverlay

	lastFrameTime time.Time
	stats         []portal.RenderStats
}

func NewWindow(s *scene.Scene, settings config.Settings, textures convert.Cache) (*Window, error) {
	lens := geom.Projection{
		FovY:   settings.Camera.FovY,
		Aspect: float32(settings.Window.Width) / float32(settings.Window.Height),
		Near:   settings.Camera.Near,
		Far:    settings.Camera.Far,
	}
	player := engine3D.NewPlayer(s.Player.Position.Mgl(), s.Player.Yaw, s.Player.Pitch, lens)

	state, err := buildScene(s, settings, player, textures)
	if err != nil {
		return nil, err
	}

	window := &Window{
		settings:      settings,
		textures:      textures,
		player:        player,
		state:         state,
		debugOverlay:  debug.NewDebugOverlay(),
		lastFrameTime: time.Now(),
	}

	if settings.Camera.X11Mouse {
		pointer, err := utils.NewGlobalPointer()
		if err != nil {
			utils.Warn("X11 pointer unavailable, using raylib input: %v", err)
		} else {
			window.pointer = pointer
		}
	}
	if window.pointer == nil {
		rl.DisableCursor()
	}
	return window, nil
}

// Watch reloads the scene whenever path changes on disk.
func (window *Window) Watch(path string) error {
	w, err := scene.Watch(path)
	if err != nil {
		return err
	}
	window.watcher = w
	utils.Info("Watching %s for changes", path)
	return nil
}

func (window *Window) Run() {
	rl.SetTargetFPS(window.settings.Window.FPS)

	for !rl.WindowShouldClose() {
		window.Update()

		rl.BeginDrawing()
		window.Draw()
		rl.EndDrawing()
	}
}

func (window *Window) Close() {
	if window.watcher != nil {
		window.watcher.Close()
	}
	if window.pointer != nil {
		window.pointer.Close()
	}
	window.state.Close()
}

func (window *Window) Update() {
	currentTime := time.Now()
	deltaTime := float32(currentTime.Sub(window.lastFrameTime).Seconds())
	window.lastFrameTime = currentTime
	if deltaTime > maxStep {
		deltaTime = maxStep
	}

	window.pollReload()

	if rl.IsKeyPressed(rl.KeyF8) {
		utils.ShowDebugUI = !utils.ShowDebugUI
	}
	if rl.IsKeyPressed(rl.KeyR) {
		window.swap(window.state.scene)
	}

	window.handleInput()
	window.player.Step(deltaTime)
	window.state.Step(deltaTime)

	st := window.state
	for _, ev := range st.overlap.Update(st.registry, st.travellers) {
		st.registry.Dispatch(ev)
	}
	st.registry.HandleTravellers(window.player)
	st.audio.Update()

	// Teleports move bodies; graphics follow before the frame is drawn.
	for _, t := range st.travellers {
		t.SyncGraphic()
	}

	if utils.ShowDebugUI {
		window.debugOverlay.Update()
	}
}

func (window *Window) handleInput() {
	cam := window.settings.Camera

	var dx, dy float32
	if window.pointer != nil {
		var err error
		dx, dy, err = window.pointer.Delta()
		if err != nil {
			utils.Debug("X11 pointer: %v", err)
		}
	} else {
		d := rl.GetMouseDelta()
		dx, dy = d.X, d.Y
	}
	window.player.Look(dx, dy, cam.MouseSensitivity)

	var forward, strafe, up float32
	if rl.IsKeyDown(rl.KeyW) {
		forward++
	}
	if rl.IsKeyDown(rl.KeyS) {
		forward--
	}
	if rl.IsKeyDown(rl.KeyD) {
		strafe++
	}
	if rl.IsKeyDown(rl.KeyA) {
		strafe--
	}
	if rl.IsKeyDown(rl.KeySpace) {
		up++
	}
	if rl.IsKeyDown(rl.KeyLeftShift) {
		up--
	}
	window.player.Walk(forward, strafe, cam.MoveSpeed)
	v := window.player.Velocity()
	v[1] = up * cam.MoveSpeed
	window.player.SetVelocity(v)
}

// pollReload swaps in a reloaded scene between frames. A scene that
// fails to load or build leaves the current one running.
func (window *Window) pollReload() {
	if window.watcher == nil {
		return
	}
	select {
	case r := <-window.watcher.Reloads():
		if r.Err != nil {
			utils.Error("Scene reload failed: %v", r.Err)
			return
		}
		window.swap(r.Scene)
	default:
	}
}

func (window *Window) swap(s *scene.Scene) {
	next, err := buildScene(s, window.settings, window.player, window.textures)
	if err != nil {
		utils.Error("Failed to build scene %s: %v", s.Name, err)
		return
	}
	window.state.Close()
	window.state = next
	window.stats = nil
	utils.Info("Scene %s loaded", s.Name)
}

func (window *Window) Draw() {
	w, h := window.state.renderer.OutputSize()
	window.player.SetAspect(w, h)

	window.stats = window.state.pipeline.Frame(window.state.registry, window.player)
	window.state.renderer.DrawMain(window.player)

	if utils.ShowDebugUI {
		window.debugOverlay.Draw(window.debugFrame())
	}
}

func (window *Window) debugFrame() debug.Frame {
	st := window.state
	viewer := geom.NewViewer(window.player.Pose(), window.player.Projection())

	f := debug.Frame{
		Scene:      st.scene.Name,
		Stats:      window.stats,
		Travellers: len(st.travellers),
		Player:     window.player.Pose(),
	}
	for _, p := range st.registry.Portals() {
		f.Screens = append(f.Screens, debug.ScreenBounds{
			Portal: p.Name,
			Bounds: geom.ProjectToViewportBounds(p.ScreenBox(), viewer),
		})
	}
	for _, t := range st.travellers {
		if st.registry.TrackedBy(t) != nil {
			f.Tracked++
		}
	}
	return f
}
