package display

import (
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/bryanchriswhite/screenfreeze/internal/capture"
	"github.com/bryanchriswhite/screenfreeze/internal/errs"
	"github.com/bryanchriswhite/screenfreeze/internal/logger"
)

const bypassCompositorAtom = "_NET_WM_BYPASS_COMPOSITOR"

// Window is the override-redirect window presenting the frozen frame
type Window struct {
	m  *Manager
	id xproto.Window
}

// NewWindow creates a full-screen window with the surface's pixmap as its
// background. Override-redirect keeps the window manager from decorating or
// moving it.
func (m *Manager) NewWindow(g capture.Geometry, background capture.Surface) (capture.Window, error) {
	s, ok := background.(*Surface)
	if !ok {
		return nil, errs.New(errs.WindowSetupFailed, "background surface %T does not belong to this display", background)
	}
	if s.closed {
		return nil, errs.New(errs.WindowSetupFailed, "background surface already released")
	}

	windowID, err := xproto.NewWindowId(m.conn)
	if err != nil {
		return nil, errs.Wrap(fmt.Errorf("failed to create window ID: %w", err), errs.WindowSetupFailed, "Failed to create window")
	}

	// Values are ordered by mask bit
	mask := uint32(xproto.CwBackPixmap | xproto.CwOverrideRedirect)
	values := []uint32{
		uint32(s.pixmap),
		1, // override-redirect
	}

	err = xproto.CreateWindowChecked(
		m.conn,
		g.Depth,
		windowID,
		m.screen.Root,
		0, 0, // x, y
		uint16(g.Width), uint16(g.Height),
		0, // border width
		xproto.WindowClassInputOutput,
		m.screen.RootVisual,
		mask,
		values,
	).Check()
	if err != nil {
		return nil, errs.Wrap(fmt.Errorf("failed to create window: %w", err), errs.WindowSetupFailed, "Failed to create window")
	}

	logger.WithComponent("display").Debug().
		Uint32("window_id", uint32(windowID)).
		Uint32("width", g.Width).
		Uint32("height", g.Height).
		Msg("Freeze window created")

	return &Window{m: m, id: windowID}, nil
}

func (w *Window) conn() *xgb.Conn {
	return w.m.conn
}

// SetName sets WM_NAME
func (w *Window) SetName(name string) error {
	err := xproto.ChangePropertyChecked(
		w.conn(),
		xproto.PropModeReplace,
		w.id,
		xproto.AtomWmName,
		xproto.AtomString,
		8,
		uint32(len(name)),
		[]byte(name),
	).Check()
	if err != nil {
		return errs.Wrap(err, errs.WindowSetupFailed, "Failed to set window name")
	}
	return nil
}

// SetClass sets WM_CLASS
func (w *Window) SetClass(instance, class string) error {
	// WM_CLASS format: instance\0class\0
	classStr := instance + "\x00" + class + "\x00"

	err := xproto.ChangePropertyChecked(
		w.conn(),
		xproto.PropModeReplace,
		w.id,
		xproto.AtomWmClass,
		xproto.AtomString,
		8,
		uint32(len(classStr)),
		[]byte(classStr),
	).Check()
	if err != nil {
		return errs.Wrap(err, errs.WindowSetupFailed, "Failed to set window class")
	}
	return nil
}

// BypassCompositor sets _NET_WM_BYPASS_COMPOSITOR to 1
func (w *Window) BypassCompositor() error {
	atom, err := w.m.getAtom(bypassCompositorAtom)
	if err != nil {
		return errs.Wrap(err, errs.WindowSetupFailed, "Failed to get compositor bypass atom")
	}

	value := make([]byte, 4)
	xgb.Put32(value, 1)

	err = xproto.ChangePropertyChecked(
		w.conn(),
		xproto.PropModeReplace,
		w.id,
		atom,
		xproto.AtomCardinal,
		32,
		1,
		value,
	).Check()
	if err != nil {
		return errs.Wrap(err, errs.WindowSetupFailed, "Failed to set compositor bypass hint")
	}
	return nil
}

// Show maps the window, puts it on top of the stack, syncs, and focuses it
func (w *Window) Show() error {
	if err := xproto.MapWindowChecked(w.conn(), w.id).Check(); err != nil {
		return errs.Wrap(fmt.Errorf("failed to map window: %w", err), errs.WindowSetupFailed, "Failed to show window")
	}

	err := xproto.ConfigureWindowChecked(
		w.conn(),
		w.id,
		xproto.ConfigWindowStackMode,
		[]uint32{xproto.StackModeAbove},
	).Check()
	if err != nil {
		return errs.Wrap(fmt.Errorf("failed to raise window: %w", err), errs.WindowSetupFailed, "Failed to show window")
	}

	// Ensure that commands have completed
	w.conn().Sync()

	err = xproto.SetInputFocusChecked(
		w.conn(),
		xproto.InputFocusParent,
		w.id,
		xproto.TimeCurrentTime,
	).Check()
	if err != nil {
		return errs.Wrap(fmt.Errorf("failed to set input focus: %w", err), errs.WindowSetupFailed, "Failed to show window")
	}

	logger.WithComponent("display").Debug().
		Uint32("window_id", uint32(w.id)).
		Msg("Freeze window mapped")

	return nil
}

// Destroy removes the window from the screen
func (w *Window) Destroy() error {
	xproto.DestroyWindow(w.conn(), w.id)
	w.conn().Sync()
	return nil
}
