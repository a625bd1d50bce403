package cursor

import (
	"errors"

	"github.com/bryanchriswhite/screenfreeze/internal/errs"
	"github.com/bryanchriswhite/screenfreeze/internal/logger"
)

// Minimum cursor-shape extension version that provides cursor images
const (
	MinMajorVersion = 2
	MinMinorVersion = 0
)

// Image is the raw cursor record as reported by the windowing service.
// X/Y is the pointer position, Pixels are packed 0xAARRGGBB values.
type Image struct {
	X      int16
	Y      int16
	Width  uint16
	Height uint16
	Xhot   uint16
	Yhot   uint16
	Serial uint32
	Pixels []uint32
}

// Source is the windowing service's cursor-shape facility
type Source interface {
	// QueryVersion negotiates the extension version, returning what the
	// service supports
	QueryVersion(major, minor uint32) (uint32, uint32, error)

	// CursorImage fetches the current cursor record
	CursorImage() (*Image, error)
}

// Sampler reads the current pointer sprite from a Source
type Sampler struct {
	source Source
}

// NewSampler creates a sampler over src
func NewSampler(src Source) *Sampler {
	return &Sampler{source: src}
}

// Sample issues a single cursor query and decodes it into a Sprite
func (s *Sampler) Sample() (*Sprite, error) {
	log := logger.WithComponent("cursor")

	major, minor, err := s.source.QueryVersion(MinMajorVersion, MinMinorVersion)
	if err != nil {
		if errors.Is(err, errs.UnsupportedExtension) {
			return nil, err
		}
		return nil, errs.Wrap(err, errs.CursorUnavailable, "Failed to query cursor extension")
	}
	if major < MinMajorVersion || (major == MinMajorVersion && minor < MinMinorVersion) {
		return nil, errs.New(errs.UnsupportedExtension, "xfixes version is too old (%d.%d, need %d.%d)",
			major, minor, MinMajorVersion, MinMinorVersion)
	}

	img, err := s.source.CursorImage()
	if err != nil {
		return nil, errs.Wrap(err, errs.CursorUnavailable, "Failed to get cursor image")
	}
	if img == nil {
		return nil, errs.New(errs.CursorUnavailable, "Failed to get cursor image: empty reply")
	}

	sprite, err := decode(img)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Int32("x", sprite.PosX).
		Int32("y", sprite.PosY).
		Uint16("width", sprite.Width).
		Uint16("height", sprite.Height).
		Uint16("xhot", sprite.HotX).
		Uint16("yhot", sprite.HotY).
		Uint32("serial", img.Serial).
		Msg("Cursor sampled")

	return sprite, nil
}

// decode converts the raw record, anchoring the sprite at the pointer
// position minus the hotspot. Signed arithmetic keeps a hotspot larger than
// the position from wrapping.
func decode(img *Image) (*Sprite, error) {
	want := int(img.Width) * int(img.Height)
	if len(img.Pixels) != want {
		return nil, errs.New(errs.CursorUnavailable, "malformed cursor image: %d pixels for %dx%d",
			len(img.Pixels), img.Width, img.Height)
	}

	pixels := make([]Texel, want)
	for i, p := range img.Pixels {
		pixels[i] = TexelFromARGB(p)
	}

	return &Sprite{
		PosX:   int32(img.X) - int32(img.Xhot),
		PosY:   int32(img.Y) - int32(img.Yhot),
		HotX:   img.Xhot,
		HotY:   img.Yhot,
		Width:  img.Width,
		Height: img.Height,
		Pixels: pixels,
	}, nil
}
