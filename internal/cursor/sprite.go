package cursor

// Texel is one non-premultiplied RGBA8 sprite pixel
type Texel struct {
	R, G, B, A uint8
}

// TexelFromARGB unpacks a 32-bit 0xAARRGGBB value
func TexelFromARGB(p uint32) Texel {
	return Texel{
		A: uint8(p >> 24),
		R: uint8(p >> 16),
		G: uint8(p >> 8),
		B: uint8(p),
	}
}

// Sprite is a snapshot of the pointer image. PosX/PosY is the on-screen
// position of the sprite's top-left texel; the hotspot has already been
// applied and must not be subtracted again.
type Sprite struct {
	PosX   int32
	PosY   int32
	HotX   uint16
	HotY   uint16
	Width  uint16
	Height uint16
	Pixels []Texel
}

// Valid reports whether Pixels holds exactly Width*Height texels
func (s *Sprite) Valid() bool {
	return len(s.Pixels) == int(s.Width)*int(s.Height)
}

// At returns the texel at sprite-relative (cx, cy)
func (s *Sprite) At(cx, cy int) Texel {
	return s.Pixels[cy*int(s.Width)+cx]
}
