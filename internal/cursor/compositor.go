package cursor

import (
	"github.com/bryanchriswhite/screenfreeze/internal/frame"
)

// Composite alpha-blends sprite onto dst in place. The sprite rectangle is
// clipped to the frame; a sprite entirely off-frame leaves dst untouched.
// Only the B, G and R bytes are written.
func Composite(dst *frame.PixelBuffer, sprite *Sprite) {
	if dst == nil || sprite == nil || !sprite.Valid() {
		return
	}

	x0, x1 := clip(int(sprite.PosX), int(sprite.Width), int(dst.Width))
	y0, y1 := clip(int(sprite.PosY), int(sprite.Height), int(dst.Height))
	if x0 >= x1 || y0 >= y1 {
		return
	}

	for y := y0; y < y1; y++ {
		cy := y - int(sprite.PosY)
		for x := x0; x < x1; x++ {
			cx := x - int(sprite.PosX)
			t := sprite.At(cx, cy)
			if t.A == 0 {
				continue
			}

			alpha := float32(t.A) / 255.0
			i := dst.PixOffset(x, y)
			dst.Pix[i+frame.OffsetB] = blend(dst.Pix[i+frame.OffsetB], t.B, alpha)
			dst.Pix[i+frame.OffsetG] = blend(dst.Pix[i+frame.OffsetG], t.G, alpha)
			dst.Pix[i+frame.OffsetR] = blend(dst.Pix[i+frame.OffsetR], t.R, alpha)
		}
	}
}

// clip returns the half-open span [pos, pos+size) intersected with [0, limit)
func clip(pos, size, limit int) (int, int) {
	return max(pos, 0), min(pos+size, limit)
}

// blend is the "over" operator for one channel, truncated toward zero
func blend(dst, src uint8, alpha float32) uint8 {
	return uint8(float32(dst)*(1-alpha) + float32(src)*alpha)
}
