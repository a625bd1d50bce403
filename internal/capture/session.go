package capture

import (
	"context"

	"github.com/bryanchriswhite/screenfreeze/internal/cursor"
	"github.com/bryanchriswhite/screenfreeze/internal/errs"
	"github.com/bryanchriswhite/screenfreeze/internal/frame"
	"github.com/bryanchriswhite/screenfreeze/internal/logger"
	"github.com/bryanchriswhite/screenfreeze/internal/transfer"
)

// Options configures one freeze run
type Options struct {
	ShowCursor  bool
	Command     []string
	WindowName  string
	WindowClass string

	// DumpPath, when set, receives the composited frame as a BMP
	DumpPath string
}

// Session captures the screen, presents it as a frozen backdrop and runs
// the foreground command
type Session struct {
	open      Opener
	runner    Runner
	composite func(*frame.PixelBuffer, *cursor.Sprite)
}

// NewSession creates a session that connects through open and starts the
// command with runner
func NewSession(open Opener, runner Runner) *Session {
	return &Session{
		open:      open,
		runner:    runner,
		composite: cursor.Composite,
	}
}

// Run executes the pipeline once. Every acquired resource is released on
// every return path.
func (s *Session) Run(ctx context.Context, opts Options) error {
	log := logger.WithComponent("session")

	if len(opts.Command) == 0 {
		return errs.New(errs.ChildSpawnFailed, "no executable given")
	}

	display, err := s.open()
	if err != nil {
		if errs.KindOf(err) == errs.Unknown {
			return errs.Wrap(err, errs.ConnectionFailed, "Failed to open display")
		}
		return err
	}
	defer display.Close()

	g, err := display.Geometry()
	if err != nil {
		return err
	}
	log.Debug().
		Uint32("width", g.Width).
		Uint32("height", g.Height).
		Uint8("depth", g.Depth).
		Msg("Screen geometry")

	surface, err := display.NewSurface(g)
	if err != nil {
		return err
	}
	defer surface.Close()

	if err := s.freeze(display, g, surface, opts); err != nil {
		return err
	}

	window, err := display.NewWindow(g, surface)
	if err != nil {
		return err
	}

	// The window holds the background now; release the surface before mapping
	if err := surface.Close(); err != nil {
		window.Destroy()
		return errs.Wrap(err, errs.WindowSetupFailed, "Failed to release backing surface")
	}

	if err := present(window, opts); err != nil {
		window.Destroy()
		return err
	}

	argv := opts.Command
	log.Debug().Strs("argv", argv).Msg("Starting command")

	code, err := s.runner.Run(ctx, argv)
	if err != nil {
		return err
	}

	log.Debug().Int("exit_code", code).Msg("Command exited")
	return nil
}

// freeze captures the screen, composites the cursor and uploads the result
// into surface. The pixel buffer does not outlive this call.
func (s *Session) freeze(display Display, g Geometry, surface Surface, opts Options) error {
	log := logger.WithComponent("session")

	// The pointer may move between sampling and the snapshot; the frame is
	// static so that staleness is accepted.
	var sprite *cursor.Sprite
	if opts.ShowCursor {
		var err error
		sprite, err = cursor.NewSampler(display.CursorSource()).Sample()
		if err != nil {
			return err
		}
	}

	buf, err := display.Snapshot(g)
	if err != nil {
		return err
	}

	if sprite != nil {
		s.composite(buf, sprite)
	}

	if opts.DumpPath != "" {
		if err := buf.DumpBMP(opts.DumpPath); err != nil {
			log.Warn().Err(err).Str("path", opts.DumpPath).Msg("Failed to dump frame")
		} else {
			log.Debug().Str("path", opts.DumpPath).Msg("Frame dumped")
		}
	}

	return transfer.Transmit(buf, display.MaxRequestBytes(), transfer.PutImageOverhead, surface)
}

func present(window Window, opts Options) error {
	if err := window.SetName(opts.WindowName); err != nil {
		return err
	}
	if err := window.SetClass(opts.WindowClass, opts.WindowClass); err != nil {
		return err
	}
	if err := window.BypassCompositor(); err != nil {
		return err
	}
	return window.Show()
}
