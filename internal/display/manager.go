package display

import (
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/bryanchriswhite/screenfreeze/internal/capture"
	"github.com/bryanchriswhite/screenfreeze/internal/cursor"
	"github.com/bryanchriswhite/screenfreeze/internal/errs"
	"github.com/bryanchriswhite/screenfreeze/internal/frame"
	"github.com/bryanchriswhite/screenfreeze/internal/logger"
)

// AllPlanes is the plane mask selecting every bit of every pixel
const AllPlanes uint32 = 0xffffffff

// Manager owns the X11 connection and implements capture.Display
type Manager struct {
	conn   *xgb.Conn
	setup  *xproto.SetupInfo
	screen *xproto.ScreenInfo
}

// NewManager connects to the X server. An empty name uses $DISPLAY.
func NewManager(name string) (*Manager, error) {
	conn, err := xgb.NewConnDisplay(name)
	if err != nil {
		return nil, errs.Wrap(fmt.Errorf("failed to connect to X server: %w", err),
			errs.ConnectionFailed, "Failed to open display")
	}

	setup := xproto.Setup(conn)
	screen := setup.DefaultScreen(conn)

	logger.WithComponent("display").Debug().
		Uint16("width", screen.WidthInPixels).
		Uint16("height", screen.HeightInPixels).
		Uint8("depth", screen.RootDepth).
		Uint32("root", uint32(screen.Root)).
		Int("max_request_bytes", int(setup.MaximumRequestLength)*4).
		Msg("Connected to X server")

	return &Manager{
		conn:   conn,
		setup:  setup,
		screen: screen,
	}, nil
}

// Open is a capture.Opener for the named display
func Open(name string) capture.Opener {
	return func() (capture.Display, error) {
		m, err := NewManager(name)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
}

// Close closes the X connection
func (m *Manager) Close() error {
	m.conn.Close()
	return nil
}

// Geometry returns the default screen's size and root depth
func (m *Manager) Geometry() (capture.Geometry, error) {
	g := capture.Geometry{
		Width:  uint32(m.screen.WidthInPixels),
		Height: uint32(m.screen.HeightInPixels),
		Depth:  m.screen.RootDepth,
	}

	if _, err := m.stride(g); err != nil {
		return capture.Geometry{}, err
	}
	return g, nil
}

// MaxRequestBytes converts the setup's MaximumRequestLength, counted in
// 4-byte units, to bytes
func (m *Manager) MaxRequestBytes() int {
	return int(m.setup.MaximumRequestLength) * 4
}

// Snapshot reads the root window as a ZPixmap image
func (m *Manager) Snapshot(g capture.Geometry) (*frame.PixelBuffer, error) {
	stride, err := m.stride(g)
	if err != nil {
		return nil, err
	}

	reply, err := xproto.GetImage(
		m.conn,
		xproto.ImageFormatZPixmap,
		xproto.Drawable(m.screen.Root),
		0, 0,
		uint16(g.Width), uint16(g.Height),
		AllPlanes,
	).Reply()
	if err != nil {
		return nil, errs.Wrap(fmt.Errorf("failed to get image: %w", err), errs.SnapshotFailed, "Failed to capture screen")
	}

	logger.WithComponent("display").Debug().
		Int("bytes", len(reply.Data)).
		Uint8("depth", reply.Depth).
		Uint32("stride", stride).
		Int("expected", int(stride)*int(g.Height)).
		Msg("Screen snapshot received")

	buf, err := frame.New(g.Width, g.Height, stride, reply.Data)
	if err != nil {
		return nil, errs.Wrap(err, errs.SnapshotFailed, "Failed to capture screen")
	}
	return buf, nil
}

// CursorSource returns an XFixes-backed cursor source on this connection
func (m *Manager) CursorSource() cursor.Source {
	return cursor.NewXFixesSource(m.conn)
}

// stride finds the pixmap format for the depth and derives the padded
// scanline length. Only 32 bits per pixel is supported.
func (m *Manager) stride(g capture.Geometry) (uint32, error) {
	for _, format := range m.setup.PixmapFormats {
		if format.Depth != g.Depth {
			continue
		}
		if format.BitsPerPixel != frame.BytesPerPixel*8 {
			return 0, errs.New(errs.SnapshotFailed, "unsupported pixel format: depth %d has %d bits per pixel",
				g.Depth, format.BitsPerPixel)
		}
		return paddedStride(g.Width, uint32(format.ScanlinePad)), nil
	}
	return 0, errs.New(errs.SnapshotFailed, "no pixmap format found for depth %d", g.Depth)
}

// paddedStride rounds a row of width 32-bit pixels up to scanlinePad bits
func paddedStride(width, scanlinePad uint32) uint32 {
	unpadded := width * frame.BytesPerPixel
	padBytes := scanlinePad / 8
	if padBytes == 0 {
		return unpadded
	}
	return ((unpadded + padBytes - 1) / padBytes) * padBytes
}

// getAtom gets an atom ID by name
func (m *Manager) getAtom(name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(m.conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("failed to intern atom %s: %w", name, err)
	}
	return reply.Atom, nil
}

var (
	_ capture.Display = (*Manager)(nil)
	_ capture.Surface = (*Surface)(nil)
	_ capture.Window  = (*Window)(nil)
)
