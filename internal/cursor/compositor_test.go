package cursor

import (
	"bytes"
	"math/rand/v2"
	"testing"

	"github.com/bryanchriswhite/screenfreeze/internal/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filledFrame(width, height uint32, seed uint64) *frame.PixelBuffer {
	buf := frame.Alloc(width, height)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	for i := range buf.Pix {
		buf.Pix[i] = uint8(rng.UintN(256))
	}
	return buf
}

func solidSprite(x, y int32, w, h uint16, t Texel) *Sprite {
	pixels := make([]Texel, int(w)*int(h))
	for i := range pixels {
		pixels[i] = t
	}
	return &Sprite{PosX: x, PosY: y, Width: w, Height: h, Pixels: pixels}
}

func TestCompositeOpaqueReplacesColor(t *testing.T) {
	dst := filledFrame(8, 8, 1)
	before := bytes.Clone(dst.Pix)

	Composite(dst, solidSprite(2, 3, 2, 2, Texel{R: 10, G: 20, B: 30, A: 255}))

	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			i := dst.PixOffset(x, y)
			inside := x >= 2 && x < 4 && y >= 3 && y < 5
			if inside {
				assert.Equal(t, []byte{30, 20, 10}, dst.Pix[i:i+3], "pixel (%d,%d)", x, y)
			} else {
				assert.Equal(t, before[i:i+3], dst.Pix[i:i+3], "pixel (%d,%d)", x, y)
			}
			assert.Equal(t, before[i+frame.OffsetA], dst.Pix[i+frame.OffsetA], "padding byte (%d,%d)", x, y)
		}
	}
}

func TestCompositeTransparentLeavesFrame(t *testing.T) {
	dst := filledFrame(8, 8, 2)
	before := bytes.Clone(dst.Pix)

	Composite(dst, solidSprite(0, 0, 8, 8, Texel{R: 255, G: 255, B: 255, A: 0}))

	assert.Equal(t, before, dst.Pix)
}

func TestCompositeHalfAlphaTruncates(t *testing.T) {
	dst := frame.Alloc(1, 1)
	dst.Pix[frame.OffsetB] = 100
	dst.Pix[frame.OffsetG] = 0
	dst.Pix[frame.OffsetR] = 255

	Composite(dst, solidSprite(0, 0, 1, 1, Texel{R: 0, G: 201, B: 51, A: 128}))

	alpha := float32(128) / 255.0
	assert.Equal(t, uint8(float32(100)*(1-alpha)+float32(51)*alpha), dst.Pix[frame.OffsetB])
	assert.Equal(t, uint8(float32(201)*alpha), dst.Pix[frame.OffsetG])
	assert.Equal(t, uint8(float32(255)*(1-alpha)), dst.Pix[frame.OffsetR])
	assert.Equal(t, uint8(75), dst.Pix[frame.OffsetB])
	assert.Equal(t, uint8(100), dst.Pix[frame.OffsetG])
}

func TestCompositeOutsideFrameIsNoop(t *testing.T) {
	tests := []struct {
		name string
		x, y int32
	}{
		{"left", -4, 2},
		{"above", 2, -4},
		{"right", 10, 2},
		{"below", 2, 10},
		{"far negative", -40000, -40000},
		{"far positive", 32767, 32767},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := filledFrame(10, 10, 3)
			before := bytes.Clone(dst.Pix)

			Composite(dst, solidSprite(tt.x, tt.y, 4, 4, Texel{R: 1, G: 2, B: 3, A: 255}))

			assert.Equal(t, before, dst.Pix)
		})
	}
}

func TestCompositeUsesSpriteOffsets(t *testing.T) {
	dst := frame.Alloc(4, 4)
	sprite := &Sprite{PosX: -1, PosY: -1, Width: 3, Height: 3, Pixels: make([]Texel, 9)}
	for i := range sprite.Pixels {
		sprite.Pixels[i] = Texel{R: uint8(i), G: uint8(i), B: uint8(i), A: 255}
	}

	Composite(dst, sprite)

	// Only the sprite's bottom-right 2x2 lands on the frame.
	assert.Equal(t, uint8(4), dst.Pix[dst.PixOffset(0, 0)])
	assert.Equal(t, uint8(5), dst.Pix[dst.PixOffset(1, 0)])
	assert.Equal(t, uint8(7), dst.Pix[dst.PixOffset(0, 1)])
	assert.Equal(t, uint8(8), dst.Pix[dst.PixOffset(1, 1)])
	assert.Equal(t, uint8(0), dst.Pix[dst.PixOffset(2, 2)])
}

func TestCompositeInvalidSpriteIsNoop(t *testing.T) {
	dst := filledFrame(4, 4, 4)
	before := bytes.Clone(dst.Pix)

	Composite(dst, &Sprite{Width: 2, Height: 2, Pixels: make([]Texel, 3)})
	Composite(dst, nil)
	Composite(nil, solidSprite(0, 0, 1, 1, Texel{A: 255}))

	assert.Equal(t, before, dst.Pix)
}

func TestCompositeClippingProperty(t *testing.T) {
	const width, height = 37, 23
	rng := rand.New(rand.NewPCG(42, 7))

	for iter := 0; iter < 500; iter++ {
		w := uint16(1 + rng.IntN(12))
		h := uint16(1 + rng.IntN(12))
		// Bias positions toward the four edges and corners.
		x := int32(rng.IntN(2*int(w)+4)) - int32(w) - 2
		if rng.IntN(2) == 0 {
			x += width
		}
		y := int32(rng.IntN(2*int(h)+4)) - int32(h) - 2
		if rng.IntN(2) == 0 {
			y += height
		}

		// Stride wider than the row so padding bytes would expose overruns.
		stride := uint32(width*frame.BytesPerPixel + 8)
		pix := make([]byte, int(stride)*height)
		for i := range pix {
			pix[i] = uint8(rng.UintN(256))
		}
		dst, err := frame.New(width, height, stride, pix)
		require.NoError(t, err)
		before := bytes.Clone(dst.Pix)

		sprite := solidSprite(x, y, w, h, Texel{R: 1, G: 2, B: 3, A: 255})
		require.NotPanics(t, func() { Composite(dst, sprite) })

		for py := 0; py < height; py++ {
			for off := 0; off < int(stride); off++ {
				i := py*int(stride) + off
				px := off / frame.BytesPerPixel
				ch := off % frame.BytesPerPixel
				inside := px < width && ch != frame.OffsetA &&
					int32(px) >= x && int32(px) < x+int32(w) &&
					int32(py) >= y && int32(py) < y+int32(h)
				if inside {
					want := [3]byte{3, 2, 1}[ch]
					if dst.Pix[i] != want {
						t.Fatalf("iter %d: sprite %dx%d at (%d,%d): byte (%d,%d,%d) = %d, want %d", iter, w, h, x, y, px, py, ch, dst.Pix[i], want)
					}
				} else if dst.Pix[i] != before[i] {
					t.Fatalf("iter %d: sprite %dx%d at (%d,%d): byte outside sprite modified at (%d,%d,%d)", iter, w, h, x, y, px, py, ch)
				}
			}
		}
	}
}
