package capture

import (
	"context"

	"github.com/bryanchriswhite/screenfreeze/internal/cursor"
	"github.com/bryanchriswhite/screenfreeze/internal/frame"
	"github.com/bryanchriswhite/screenfreeze/internal/transfer"
)

// Geometry describes the default screen
type Geometry struct {
	Width  uint32
	Height uint32
	Depth  uint8
}

// Display is the windowing service the session drives. Every call blocks
// until the service has answered.
type Display interface {
	// Geometry returns the default screen's size and color depth
	Geometry() (Geometry, error)

	// MaxRequestBytes returns the largest single request the transport accepts
	MaxRequestBytes() int

	// Snapshot captures the whole screen with all planes
	Snapshot(g Geometry) (*frame.PixelBuffer, error)

	// CursorSource returns the cursor-shape facility
	CursorSource() cursor.Source

	// NewSurface allocates an off-screen surface the size of the screen
	NewSurface(g Geometry) (Surface, error)

	// NewWindow creates a full-screen, borderless, override-redirect window
	// whose background is the surface's contents
	NewWindow(g Geometry, background Surface) (Window, error)

	// Close releases the connection
	Close() error
}

// Surface is an off-screen pixel store that accepts transfer chunks.
// Close is idempotent.
type Surface interface {
	transfer.Sink
	Close() error
}

// Window is the top-level presentation window
type Window interface {
	SetName(name string) error
	SetClass(instance, class string) error

	// BypassCompositor asks the compositing manager to leave the window alone
	BypassCompositor() error

	// Show maps and raises the window, syncs, then claims input focus
	Show() error

	Destroy() error
}

// Runner spawns the foreground program and waits for it
type Runner interface {
	// Run returns the program's exit code; err is set only when the program
	// could not be started
	Run(ctx context.Context, argv []string) (int, error)
}

// Opener connects to the windowing service
type Opener func() (Display, error)
