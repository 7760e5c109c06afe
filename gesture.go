package wlral

import (
	"deedles.dev/wlral/geom"
	"github.com/charmbracelet/log"
)

// FallbackMinSize is the smallest size that an interactive resize
// will shrink a window to when the client doesn't specify a minimum.
var FallbackMinSize = geom.Sz(128, 24)

// GestureFilter is an EventFilter that drives interactive moves and
// resizes. While a gesture is active it consumes pointer motion, and
// the next button release ends it.
type GestureFilter struct {
	NopEventFilter

	windows *WindowManager
	gesture gesture
	cursor  NativeCursor
}

type gesture interface {
	window() *Window
	motion(geom.Point[float64])
	end()
}

func newGestureFilter(windows *WindowManager, cursor NativeCursor) *GestureFilter {
	return &GestureFilter{
		windows: windows,
		cursor:  cursor,
	}
}

// Active reports whether a gesture is in progress.
func (g *GestureFilter) Active() bool {
	return g.gesture != nil
}

// StartMove starts moving req.Window with the pointer, taking it out
// of the maximized and fullscreen states. Only the focused window can
// be moved. It returns false if the gesture was not started.
func (g *GestureFilter) StartMove(req MoveRequest) bool {
	if !g.windows.WindowHasFocus(req.Window) {
		log.Debug("move request from unfocused window", "window", req.Window)
		return false
	}

	if req.Window.Maximized() {
		req.Window.SetMaximized(false)
	}
	if req.Window.Fullscreen() {
		req.Window.SetFullscreen(false)
	}

	g.start(&gestureMove{req: req})
	g.setCursor("grabbing")
	return true
}

// StartResize starts resizing req.Window with the pointer. Only the
// focused window can be resized. It returns false if the gesture was
// not started.
func (g *GestureFilter) StartResize(req ResizeRequest) bool {
	if !g.windows.WindowHasFocus(req.Window) {
		log.Debug("resize request from unfocused window", "window", req.Window)
		return false
	}

	if req.Window.Resizing() {
		req.Window.SetResizing(false)
	}
	req.Window.SetResizing(true)
	g.start(&gestureResize{
		req:   req,
		start: req.Window.Extents(),
	})
	return true
}

func (g *GestureFilter) start(next gesture) {
	if g.gesture != nil {
		g.gesture.end()
	}
	g.gesture = next
}

// Cancel ends the active gesture, if any.
func (g *GestureFilter) Cancel() {
	if g.gesture == nil {
		return
	}

	g.gesture.end()
	g.gesture = nil
	g.setCursor("left_ptr")
}

func (g *GestureFilter) setCursor(name string) {
	if g.cursor != nil {
		g.cursor.SetImage(name)
	}
}

func (g *GestureFilter) HandlePointerMotionEvent(ev MotionEvent) bool {
	if g.gesture == nil {
		return false
	}
	if g.gesture.window().Destroyed() {
		g.Cancel()
		return false
	}

	g.gesture.motion(ev.Position)
	return true
}

func (g *GestureFilter) HandlePointerButtonEvent(ev ButtonEvent) bool {
	if (g.gesture == nil) || (ev.State != ButtonReleased) {
		return false
	}

	g.Cancel()
	return true
}

type gestureMove struct {
	req MoveRequest
}

func (m *gestureMove) window() *Window {
	return m.req.Window
}

func (m *gestureMove) motion(p geom.Point[float64]) {
	m.req.Window.MoveTo(geom.PConv[int](p.Sub(m.req.DragPoint.AsDisplacement())))
}

func (m *gestureMove) end() {}

type gestureResize struct {
	req   ResizeRequest
	start geom.Rectangle
}

func (m *gestureResize) window() *Window {
	return m.req.Window
}

func (m *gestureResize) motion(p geom.Point[float64]) {
	m.req.Window.SetExtents(resizeExtents(
		m.start,
		m.req.Edges,
		geom.DConv[int](p.Diff(m.req.CursorPosition)),
		m.req.Window.MinSize(),
		m.req.Window.MaxSize(),
	))
}

func (m *gestureResize) end() {
	if !m.req.Window.Destroyed() {
		m.req.Window.SetResizing(false)
	}
}

// resizeExtents moves the given edges of start by d. If both of a
// pair of opposite edges are given, top and left take precedence. The
// result is clamped to the size limits, keeping the edges opposite to
// the moving ones in place.
func resizeExtents(start geom.Rectangle, edges geom.Edges, d geom.Displacement[int], minSize, maxSize geom.Size) geom.Rectangle {
	if minSize.Width <= 0 {
		minSize.Width = FallbackMinSize.Width
	}
	if minSize.Height <= 0 {
		minSize.Height = FallbackMinSize.Height
	}
	minSize.Width = min(minSize.Width, start.Width())
	minSize.Height = min(minSize.Height, start.Height())

	r := start
	switch {
	case edges&geom.EdgeTop != 0:
		r.Size.Height -= d.DY
	case edges&geom.EdgeBottom != 0:
		r.Size.Height += d.DY
	}
	switch {
	case edges&geom.EdgeLeft != 0:
		r.Size.Width -= d.DX
	case edges&geom.EdgeRight != 0:
		r.Size.Width += d.DX
	}

	r.Size = r.Size.Clamp(minSize, maxSize)
	if edges&geom.EdgeTop != 0 {
		r.TopLeft.Y = start.Bottom() - r.Height()
	}
	if edges&geom.EdgeLeft != 0 {
		r.TopLeft.X = start.Right() - r.Width()
	}
	return r
}
