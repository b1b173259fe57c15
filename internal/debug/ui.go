package debug

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// UIContext lays out overlay text top to bottom.
type UIContext struct {
	X, Y       int
	BaseX      int
	LineHeight int
	FontHeight int
}

func NewUIContext(x, y, lineHeight, fontHeight int) *UIContext {
	return &UIContext{
		X:          x,
		Y:          y,
		BaseX:      x,
		LineHeight: lineHeight,
		FontHeight: fontHeight,
	}
}

func (ui *UIContext) drawText(text string, x, y int32, color rl.Color) {
	rl.DrawText(text, x, y, int32(ui.FontHeight), color)
}

func (ui *UIContext) Label(text string) {
	ui.drawText(text, int32(ui.X), int32(ui.Y), rl.White)
	ui.Y += ui.LineHeight
}

func (ui *UIContext) IndentLabel(text string, indent int) {
	ui.ColorLabel(text, indent, rl.White)
}

func (ui *UIContext) ColorLabel(text string, indent int, color rl.Color) {
	ui.drawText(text, int32(ui.X+indent), int32(ui.Y), color)
	ui.Y += ui.LineHeight
}

func (ui *UIContext) Separator() {
	ui.Y += ui.LineHeight / 2
}

func (ui *UIContext) Header(text string) {
	ui.drawText(text, int32(ui.X), int32(ui.Y), rl.Yellow)
	ui.Y += ui.LineHeight
}
