// Package debug draws the F8 overlay: frame timing, memory, per-portal
// render statistics and the projected bounds of every portal screen.
package debug

import (
	"fmt"
	"runtime"
	"time"

	"portalview/internal/geom"
	"portalview/internal/portal"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// ScreenBounds is a portal screen projected for the main camera.
type ScreenBounds struct {
	Portal string
	Bounds geom.ViewportBounds
}

// Frame is what the overlay shows for one frame.
type Frame struct {
	Scene      string
	Stats      []portal.RenderStats
	Screens    []ScreenBounds
	Travellers int
	Tracked    int
	Player     geom.Pose
}

type DebugOverlay struct {
	ShowBoundingBoxes bool

	fontHeight int
	lineHeight int
	width      int

	lastUpdateTime time.Time
	memStats       runtime.MemStats
}

func NewDebugOverlay() *DebugOverlay {
	d := &DebugOverlay{
		ShowBoundingBoxes: true,
		fontHeight:        16,
		lineHeight:        20,
		width:             380,
	}
	runtime.ReadMemStats(&d.memStats)
	d.lastUpdateTime = time.Now()
	return d
}

// Update samples memory statistics once a second and handles the
// overlay's own keys.
func (d *DebugOverlay) Update() {
	if time.Since(d.lastUpdateTime) >= time.Second {
		runtime.ReadMemStats(&d.memStats)
		d.lastUpdateTime = time.Now()
	}
	if rl.IsKeyPressed(rl.KeyB) {
		d.ShowBoundingBoxes = !d.ShowBoundingBoxes
	}
}

func (d *DebugOverlay) Draw(f Frame) {
	if d.ShowBoundingBoxes {
		d.drawScreenBounds(f.Screens)
	}

	h := int32(rl.GetScreenHeight())
	rl.DrawRectangle(0, 0, int32(d.width), h, rl.NewColor(0, 0, 0, 160))

	ui := NewUIContext(10, 10, d.lineHeight, d.fontHeight)
	ui.Header(fmt.Sprintf("Scene: %s", f.Scene))
	ui.IndentLabel(fmt.Sprintf("FPS: %d", rl.GetFPS()), 10)
	ui.IndentLabel(fmt.Sprintf("Frame Time: %.2f ms", rl.GetFrameTime()*1000), 10)
	ui.IndentLabel(fmt.Sprintf("Heap Alloc: %.2f MB", float64(d.memStats.HeapAlloc)/1024/1024), 10)
	ui.IndentLabel(fmt.Sprintf("Goroutines: %d", runtime.NumGoroutine()), 10)
	ui.Separator()

	pos := f.Player.Position
	fwd := f.Player.Forward()
	ui.Header("Player:")
	ui.IndentLabel(fmt.Sprintf("Position: %.2f %.2f %.2f", pos[0], pos[1], pos[2]), 10)
	ui.IndentLabel(fmt.Sprintf("Forward: %.2f %.2f %.2f", fwd[0], fwd[1], fwd[2]), 10)
	ui.IndentLabel(fmt.Sprintf("Travellers: %d (%d in thresholds)", f.Travellers, f.Tracked), 10)
	ui.Separator()

	ui.Header("Portals:")
	var passes, fallbacks int
	for _, s := range f.Stats {
		passes += s.Passes
		fallbacks += s.Fallbacks
		if s.Skip != portal.Rendered {
			ui.ColorLabel(fmt.Sprintf("%s: %s", s.Portal, s.Skip), 10, rl.Gray)
			continue
		}
		col := rl.White
		if s.Fallbacks > 0 {
			col = rl.Orange
		}
		ui.ColorLabel(fmt.Sprintf("%s: %d levels, %d passes, %d oblique, %d fallback",
			s.Portal, s.Levels, s.Passes, s.Oblique, s.Fallbacks), 10, col)
	}
	ui.IndentLabel(fmt.Sprintf("Total: %d passes, %d fallbacks", passes, fallbacks), 10)
	ui.Separator()
	ui.ColorLabel("[B] screen bounds  [F8] hide", 0, rl.LightGray)
}
