package frame

import (
	"fmt"
	"image"
	"image/color"
)

// BytesPerPixel is fixed: every pixel is packed as B, G, R, A/padding
const BytesPerPixel = 4

// Byte offsets of each channel within a pixel
const (
	OffsetB = 0
	OffsetG = 1
	OffsetR = 2
	OffsetA = 3
)

// PixelBuffer is a packed 32-bit BGRA image as returned by a ZPixmap snapshot.
// Row y occupies Pix[y*Stride : y*Stride+Stride].
type PixelBuffer struct {
	Width  uint32
	Height uint32
	Stride uint32
	Pix    []byte
}

// New wraps pix as a PixelBuffer after checking its geometry
func New(width, height, stride uint32, pix []byte) (*PixelBuffer, error) {
	if uint64(stride) < uint64(width)*BytesPerPixel {
		return nil, fmt.Errorf("stride %d is smaller than %d pixels of %d bytes", stride, width, BytesPerPixel)
	}
	if want := uint64(stride) * uint64(height); uint64(len(pix)) != want {
		return nil, fmt.Errorf("pixel data is %d bytes, expected %d (stride %d x height %d)", len(pix), want, stride, height)
	}
	return &PixelBuffer{Width: width, Height: height, Stride: stride, Pix: pix}, nil
}

// Alloc returns a zeroed buffer with a tightly packed stride
func Alloc(width, height uint32) *PixelBuffer {
	stride := width * BytesPerPixel
	return &PixelBuffer{
		Width:  width,
		Height: height,
		Stride: stride,
		Pix:    make([]byte, int(stride)*int(height)),
	}
}

// Len returns the size of the pixel data in bytes
func (b *PixelBuffer) Len() int {
	return len(b.Pix)
}

// Row returns the bytes of row y, including any scanline padding
func (b *PixelBuffer) Row(y int) []byte {
	start := y * int(b.Stride)
	return b.Pix[start : start+int(b.Stride)]
}

// PixOffset returns the index of the first byte of pixel (x, y)
func (b *PixelBuffer) PixOffset(x, y int) int {
	return y*int(b.Stride) + x*BytesPerPixel
}

// ColorModel implements image.Image
func (b *PixelBuffer) ColorModel() color.Model {
	return color.RGBAModel
}

// Bounds implements image.Image
func (b *PixelBuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, int(b.Width), int(b.Height))
}

// At implements image.Image. The fourth byte is treated as padding, so every
// pixel is opaque.
func (b *PixelBuffer) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}.In(b.Bounds())) {
		return color.RGBA{}
	}
	i := b.PixOffset(x, y)
	return color.RGBA{
		R: b.Pix[i+OffsetR],
		G: b.Pix[i+OffsetG],
		B: b.Pix[i+OffsetB],
		A: 0xff,
	}
}
