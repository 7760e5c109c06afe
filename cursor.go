package wlral

import (
	"deedles.dev/wlral/geom"
)

// CursorManager routes pointer events through the event filters and
// delivers the ones that aren't consumed to clients.
type CursorManager struct {
	cursor  NativeCursor
	seat    Seat
	windows *WindowManager
	filters *EventFilterManager
}

func newCursorManager(cursor NativeCursor, seat Seat, windows *WindowManager, filters *EventFilterManager) *CursorManager {
	return &CursorManager{
		cursor:  cursor,
		seat:    seat,
		windows: windows,
		filters: filters,
	}
}

// Position returns the cursor's position in the layout.
func (m *CursorManager) Position() geom.Point[float64] {
	return m.cursor.Position()
}

// Warp moves the cursor to p without generating motion.
func (m *CursorManager) Warp(p geom.Point[float64]) {
	m.cursor.Warp(p)
}

// surfaceAt returns the window whose buffer is under p along with p
// in that window's surface-local coordinates.
func (m *CursorManager) surfaceAt(p geom.Point[float64]) (*Window, geom.Point[float64], bool) {
	w, ok := m.windows.WindowBufferAt(geom.PConv[int](p))
	if !ok {
		return nil, geom.Point[float64]{}, false
	}

	origin := geom.PConv[float64](w.BufferExtents().TopLeft)
	return w, p.Sub(origin.AsDisplacement()), true
}

// HandleMotion must be called by the backend after it has moved the
// cursor.
func (m *CursorManager) HandleMotion(ev MotionEvent) {
	if m.filters.HandlePointerMotionEvent(ev) {
		return
	}

	w, local, ok := m.surfaceAt(ev.Position)
	if !ok {
		m.cursor.SetImage("left_ptr")
		m.seat.PointerClearFocus()
		return
	}

	focus := m.seat.PointerFocusedSurface() != w.surface.ID()
	m.seat.PointerNotifyEnter(w.surface.ID(), local)
	if !focus {
		m.seat.PointerNotifyMotion(ev.Time, local)
	}
}

// HandleButton must be called by the backend when a pointer button
// is pressed or released. Pressing a button over a window focuses it.
func (m *CursorManager) HandleButton(ev ButtonEvent) {
	if m.filters.HandlePointerButtonEvent(ev) {
		return
	}

	if ev.State == ButtonPressed {
		w, ok := m.windows.WindowBufferAt(geom.PConv[int](ev.Position))
		if ok && w.CanReceiveFocus() {
			m.windows.FocusWindow(w)
		}
	}

	m.seat.PointerNotifyButton(ev.Time, ev.Button, ev.State)
}

// HandleAxis must be called by the backend when a scroll event
// occurs.
func (m *CursorManager) HandleAxis(ev AxisEvent) {
	if m.filters.HandlePointerAxisEvent(ev) {
		return
	}

	m.seat.PointerNotifyAxis(ev)
}

// HandleFrame must be called by the backend at the end of each group
// of pointer events.
func (m *CursorManager) HandleFrame() {
	m.seat.PointerNotifyFrame()
}
