package display

import (
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/bryanchriswhite/screenfreeze/internal/capture"
	"github.com/bryanchriswhite/screenfreeze/internal/errs"
	"github.com/bryanchriswhite/screenfreeze/internal/logger"
	"github.com/bryanchriswhite/screenfreeze/internal/transfer"
)

// Surface is a screen-sized pixmap plus the graphics context used to draw
// into it
type Surface struct {
	conn   *xgb.Conn
	pixmap xproto.Pixmap
	gc     xproto.Gcontext
	width  uint16
	depth  byte
	closed bool
}

// NewSurface creates the backing pixmap and its GC
func (m *Manager) NewSurface(g capture.Geometry) (capture.Surface, error) {
	pixmap, err := xproto.NewPixmapId(m.conn)
	if err != nil {
		return nil, errs.Wrap(fmt.Errorf("failed to create pixmap ID: %w", err), errs.WindowSetupFailed, "Failed to create backing surface")
	}

	err = xproto.CreatePixmapChecked(
		m.conn,
		g.Depth,
		pixmap,
		xproto.Drawable(m.screen.Root),
		uint16(g.Width), uint16(g.Height),
	).Check()
	if err != nil {
		return nil, errs.Wrap(fmt.Errorf("failed to create pixmap: %w", err), errs.WindowSetupFailed, "Failed to create backing surface")
	}

	gc, err := xproto.NewGcontextId(m.conn)
	if err != nil {
		xproto.FreePixmap(m.conn, pixmap)
		return nil, errs.Wrap(fmt.Errorf("failed to create graphics context ID: %w", err), errs.WindowSetupFailed, "Failed to create backing surface")
	}

	if err := xproto.CreateGCChecked(m.conn, gc, xproto.Drawable(pixmap), 0, nil).Check(); err != nil {
		xproto.FreePixmap(m.conn, pixmap)
		return nil, errs.Wrap(fmt.Errorf("failed to create GC: %w", err), errs.WindowSetupFailed, "Failed to create backing surface")
	}

	logger.WithComponent("display").Debug().
		Uint32("pixmap_id", uint32(pixmap)).
		Uint32("gc_id", uint32(gc)).
		Msg("Backing surface created")

	return &Surface{
		conn:   m.conn,
		pixmap: pixmap,
		gc:     gc,
		width:  uint16(g.Width),
		depth:  g.Depth,
	}, nil
}

// PutChunk uploads a run of rows with a checked PutImage, blocking until the
// server has processed it
func (s *Surface) PutChunk(c transfer.Chunk) error {
	if s.closed {
		return fmt.Errorf("surface already released")
	}

	err := xproto.PutImageChecked(
		s.conn,
		xproto.ImageFormatZPixmap,
		xproto.Drawable(s.pixmap),
		s.gc,
		s.width,
		uint16(c.Rows),
		0, int16(c.DstY), // dst x, y
		0, // left pad
		s.depth,
		c.Data,
	).Check()
	if err != nil {
		return fmt.Errorf("failed to put image: %w", err)
	}
	return nil
}

// Close frees the GC and pixmap. A window already using the pixmap as its
// background keeps its own reference on the server.
func (s *Surface) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	xproto.FreeGC(s.conn, s.gc)
	xproto.FreePixmap(s.conn, s.pixmap)
	return nil
}
