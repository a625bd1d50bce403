package cursor

import (
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xfixes"
	"github.com/bryanchriswhite/screenfreeze/internal/errs"
)

// XFixesSource reads the cursor through the X11 XFixes extension
type XFixesSource struct {
	conn *xgb.Conn
}

// NewXFixesSource creates a cursor source on an open X connection
func NewXFixesSource(conn *xgb.Conn) *XFixesSource {
	return &XFixesSource{conn: conn}
}

// QueryVersion initializes the extension and negotiates its version.
// The server refuses XFixes requests until the version has been queried.
func (s *XFixesSource) QueryVersion(major, minor uint32) (uint32, uint32, error) {
	if err := xfixes.Init(s.conn); err != nil {
		return 0, 0, errs.Wrap(err, errs.UnsupportedExtension, "XFixes extension not available")
	}

	reply, err := xfixes.QueryVersion(s.conn, major, minor).Reply()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to query XFixes version: %w", err)
	}

	return reply.MajorVersion, reply.MinorVersion, nil
}

// CursorImage fetches the current cursor image
func (s *XFixesSource) CursorImage() (*Image, error) {
	reply, err := xfixes.GetCursorImage(s.conn).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get cursor image: %w", err)
	}
	if reply == nil {
		return nil, fmt.Errorf("failed to get cursor image: no reply")
	}

	return &Image{
		X:      reply.X,
		Y:      reply.Y,
		Width:  reply.Width,
		Height: reply.Height,
		Xhot:   reply.Xhot,
		Yhot:   reply.Yhot,
		Serial: reply.CursorSerial,
		Pixels: reply.CursorImage,
	}, nil
}
