package engine3D

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Target is a portal render texture with its own depth buffer.
type Target struct {
	rt rl.RenderTexture2D
}

func NewTarget(width, height int) *Target {
	rt := rl.LoadRenderTexture(int32(width), int32(height))
	rl.SetTextureFilter(rt.Texture, rl.FilterBilinear)
	rl.SetTextureWrap(rt.Texture, rl.TextureWrapClamp)
	return &Target{rt: rt}
}

func (t *Target) Size() (int, int) {
	return int(t.rt.Texture.Width), int(t.rt.Texture.Height)
}

func (t *Target) Texture() rl.Texture2D {
	return t.rt.Texture
}

func (t *Target) valid() bool {
	return t != nil && t.rt.ID != 0
}

func (t *Target) Release() {
	if t.rt.ID != 0 {
		rl.UnloadRenderTexture(t.rt)
		t.rt = rl.RenderTexture2D{}
	}
}
