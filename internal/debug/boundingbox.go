package debug

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// drawScreenBounds outlines each portal screen's viewport bounds. Viewport
// y grows upwards, window y downwards.
func (d *DebugOverlay) drawScreenBounds(screens []ScreenBounds) {
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	for _, s := range screens {
		b := s.Bounds
		if b.IsEmpty() {
			continue
		}
		x := b.XMin * w
		y := (1 - b.YMax) * h
		rect := rl.NewRectangle(x, y, (b.XMax-b.XMin)*w, (b.YMax-b.YMin)*h)
		rl.DrawRectangleLinesEx(rect, 2, rl.NewColor(0, 255, 0, 255))

		// Centre marker.
		cx, cy := int32(rect.X+rect.Width/2), int32(rect.Y+rect.Height/2)
		rl.DrawRectangle(cx-2, cy-2, 4, 4, rl.Red)
		rl.DrawText(s.Portal, int32(x)+4, int32(y)+4, int32(d.fontHeight), rl.NewColor(0, 255, 255, 200))
	}
}
