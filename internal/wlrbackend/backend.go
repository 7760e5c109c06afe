// Package wlrbackend runs a wlral.Compositor on top of wlroots.
package wlrbackend

import (
	"errors"
	"fmt"
	"maps"
	"os"

	"deedles.dev/wlr"
	"deedles.dev/wlral"
	"deedles.dev/wlral/internal/util"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/charmbracelet/log"
)

// Backend implements wlral.Backend with wlroots. It also renders
// every mapped window onto the outputs that it overlaps.
type Backend struct {
	c *wlral.Compositor

	display    wlr.Display
	backend    wlr.Backend
	renderer   wlr.Renderer
	allocator  wlr.Allocator
	compositor wlr.Compositor
	layout     wlr.OutputLayout
	cursor     wlr.Cursor
	cursorMgr  wlr.XCursorManager
	seat       wlr.Seat
	xdgShell   wlr.XDGShell
	xwayland   wlr.Xwayland
	xconn      *xgbutil.XUtil

	nextID   wlral.SurfaceID
	ids      map[wlr.Surface]wlral.SurfaceID
	surfaces map[wlral.SurfaceID]surfaceTree
	outputs  map[wlr.Output]*output

	// claimed holds the X windows that have been matched to an
	// Xwayland surface.
	claimed map[xproto.Window]wlral.SurfaceID

	keyboards int
	timers    *util.Timers
}

const (
	compositorVersion = 5
	xdgShellVersion   = 3
	cursorSize        = 24
)

// surfaceTree is a native surface with subsurfaces and popups that
// are rendered along with it.
type surfaceTree interface {
	surface() wlr.Surface
	forEachSurface(func(s wlr.Surface, x, y int))

	// observe is called once per output frame. The bindings report no
	// surface commits, so this is where adapters notice them.
	observe()
}

// New creates the wlroots display and its globals. Logging from
// wlroots itself goes to stderr and is enabled when debug logging
// is.
func New() *Backend {
	level := wlr.Error
	if log.GetLevel() <= log.DebugLevel {
		level = wlr.Debug
	}
	wlr.InitLog(level, nil)

	b := Backend{
		ids:      make(map[wlr.Surface]wlral.SurfaceID),
		surfaces: make(map[wlral.SurfaceID]surfaceTree),
		outputs:  make(map[wlr.Output]*output),
		claimed:  make(map[xproto.Window]wlral.SurfaceID),
		timers:   util.NewTimers(nil),
	}

	b.display = wlr.CreateDisplay()
	b.backend = wlr.AutocreateBackend(b.display)
	b.renderer = wlr.AutocreateRenderer(b.backend)
	b.renderer.InitWLDisplay(b.display)
	b.allocator = wlr.AutocreateAllocator(b.backend, b.renderer)

	b.compositor = wlr.CreateCompositor(b.display, compositorVersion, b.renderer)
	wlr.CreateDataDeviceManager(b.display)

	b.layout = wlr.CreateOutputLayout()
	b.xdgShell = wlr.CreateXDGShell(b.display, xdgShellVersion)

	b.cursor = wlr.CreateCursor()
	b.cursor.AttachOutputLayout(b.layout)
	b.cursorMgr = wlr.CreateXCursorManager("", cursorSize)
	b.cursorMgr.Load(1)

	b.seat = wlr.CreateSeat(b.display, "seat0")
	b.xwayland = wlr.CreateXwayland(b.display, b.compositor, true)

	return &b
}

func (b *Backend) Bind(c *wlral.Compositor) {
	b.c = c

	b.backend.OnNewOutput(b.onNewOutput)
	b.backend.OnNewInput(b.onNewInput)
	b.xdgShell.OnNewSurface(b.onNewXDGSurface)

	b.cursor.OnMotion(b.onCursorMotion)
	b.cursor.OnMotionAbsolute(b.onCursorMotionAbsolute)
	b.cursor.OnButton(b.onCursorButton)
	b.cursor.OnAxis(b.onCursorAxis)
	b.cursor.OnFrame(b.onCursorFrame)
	b.seat.OnRequestSetCursor(b.onRequestSetCursor)

	if b.xwayland.Valid() {
		b.xwayland.OnNewSurface(b.onNewXwaylandSurface)
	}
}

func (b *Backend) Start() error {
	if err := b.backend.Start(); err != nil {
		return fmt.Errorf("start backend: %w", err)
	}

	socket, err := b.display.AddSocketAuto()
	if err != nil {
		return fmt.Errorf("add socket: %w", err)
	}
	if err := os.Setenv("WAYLAND_DISPLAY", socket); err != nil {
		return err
	}
	if b.xwayland.Valid() {
		if err := os.Setenv("DISPLAY", b.xwayland.Server().DisplayName()); err != nil {
			return err
		}
	}

	log.Info("listening", "socket", socket)
	return nil
}

func (b *Backend) Run() error {
	b.display.Run()
	return nil
}

// Terminate stops the event loop, causing Run to return.
func (b *Backend) Terminate() {
	b.display.Terminate()
}

func (b *Backend) Destroy() {
	if b.xconn != nil {
		b.xconn.Conn().Close()
	}
	b.display.Destroy()
	b.layout.Destroy()
	b.cursorMgr.Destroy()
	b.cursor.Destroy()
}

func (b *Backend) Seat() wlral.Seat                 { return seat{b} }
func (b *Backend) Cursor() wlral.NativeCursor       { return cursor{b} }
func (b *Backend) OutputLayout() wlral.OutputLayout { return outputLayout{b} }
func (b *Backend) Timers() wlral.Timers             { return b.timers }

// Session returns nil. The wlroots session is owned by the
// automatically created backend and is not exposed.
func (b *Backend) Session() wlral.Session { return nil }

// register assigns an ID to a new native surface. The ID can't be
// looked up by wl_surface until attach is called.
func (b *Backend) register(tree surfaceTree) wlral.SurfaceID {
	b.nextID++
	b.surfaces[b.nextID] = tree
	return b.nextID
}

func (b *Backend) attach(s wlr.Surface, id wlral.SurfaceID) {
	b.ids[s] = id
}

func (b *Backend) detach(s wlr.Surface) {
	delete(b.ids, s)
}

func (b *Backend) forget(id wlral.SurfaceID) {
	delete(b.surfaces, id)
	maps.DeleteFunc(b.ids, func(_ wlr.Surface, v wlral.SurfaceID) bool { return v == id })
	maps.DeleteFunc(b.claimed, func(_ xproto.Window, v wlral.SurfaceID) bool { return v == id })
}

// idOf returns the ID of s, or zero if s isn't a known window
// surface.
func (b *Backend) idOf(s wlr.Surface) wlral.SurfaceID {
	return b.ids[s]
}

var errUnknownSurface = errors.New("unknown surface")

// surfaceOf returns the native surface with the given ID.
func (b *Backend) surfaceOf(id wlral.SurfaceID) (wlr.Surface, error) {
	tree, ok := b.surfaces[id]
	if !ok || !tree.surface().Valid() {
		return wlr.Surface{}, fmt.Errorf("%w: %v", errUnknownSurface, id)
	}
	return tree.surface(), nil
}

// xconnect returns a connection to the Xwayland server, opening it
// on first use. Xwayland is started lazily, so it can't be opened
// until the first X client has connected.
func (b *Backend) xconnect() *xgbutil.XUtil {
	if (b.xconn != nil) || !b.xwayland.Valid() {
		return b.xconn
	}

	display := b.xwayland.Server().DisplayName()
	xconn, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		log.Error("connect to Xwayland", "display", display, "err", err)
		return nil
	}
	b.xconn = xconn
	log.Debug("connected to Xwayland", "display", display)
	return xconn
}
