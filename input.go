package wlral

import (
	"time"

	"deedles.dev/wlral/geom"
	"golang.org/x/exp/slices"
)

type ButtonState int

const (
	ButtonReleased ButtonState = iota
	ButtonPressed
)

type KeyState int

const (
	KeyReleased KeyState = iota
	KeyPressed
)

// Button is a Linux input event button code.
type Button uint32

const (
	BtnLeft   Button = 0x110
	BtnRight  Button = 0x111
	BtnMiddle Button = 0x112
)

// Modifiers is a bitmask of keyboard modifiers. The values match
// wlroots' wlr_keyboard_modifier.
type Modifiers uint32

const (
	ModShift Modifiers = 1 << iota
	ModCaps
	ModCtrl
	ModAlt
	ModMod2
	ModMod3
	ModLogo
	ModMod5
)

type AxisSource int

const (
	AxisSourceWheel AxisSource = iota
	AxisSourceFinger
	AxisSourceContinuous
	AxisSourceWheelTilt
)

type AxisOrientation int

const (
	AxisVertical AxisOrientation = iota
	AxisHorizontal
)

// Keysym is an XKB keysym.
type Keysym uint32

const (
	KeyNoSymbol Keysym = 0
	KeyEscape   Keysym = 0xff1b
	KeyReturn   Keysym = 0xff0d
	KeyTab      Keysym = 0xff09

	// KeySwitchVT1 is XF86Switch_VT_1. The keysyms for the other
	// virtual terminals follow it in order up to XF86Switch_VT_12.
	KeySwitchVT1  Keysym = 0x1008fe01
	KeySwitchVT12 Keysym = 0x1008fe0c
)

type KeyboardEvent struct {
	Time      time.Time
	Keycode   uint32
	State     KeyState
	Keysyms   []Keysym
	Modifiers Modifiers
}

// Keysym returns the event's keysym if it produced exactly one.
func (ev KeyboardEvent) Keysym() Keysym {
	if len(ev.Keysyms) != 1 {
		return KeyNoSymbol
	}
	return ev.Keysyms[0]
}

type MotionEvent struct {
	Time time.Time

	// Position is the cursor's position after the motion was applied.
	Position geom.Point[float64]
	Delta    geom.Displacement[float64]
}

type ButtonEvent struct {
	Time     time.Time
	Position geom.Point[float64]
	Button   Button
	State    ButtonState
}

type AxisEvent struct {
	Time          time.Time
	Position      geom.Point[float64]
	Source        AxisSource
	Orientation   AxisOrientation
	Delta         float64
	DeltaDiscrete int32
}

// EventFilter can intercept input events before they are delivered
// to clients. Each method returns true if it consumed the event.
type EventFilter interface {
	HandleKeyboardEvent(KeyboardEvent) bool
	HandlePointerMotionEvent(MotionEvent) bool
	HandlePointerButtonEvent(ButtonEvent) bool
	HandlePointerAxisEvent(AxisEvent) bool
}

// NopEventFilter consumes nothing. Embed it to implement only some of
// the methods of EventFilter.
type NopEventFilter struct{}

func (NopEventFilter) HandleKeyboardEvent(KeyboardEvent) bool    { return false }
func (NopEventFilter) HandlePointerMotionEvent(MotionEvent) bool { return false }
func (NopEventFilter) HandlePointerButtonEvent(ButtonEvent) bool { return false }
func (NopEventFilter) HandlePointerAxisEvent(AxisEvent) bool     { return false }

// EventFilterManager runs events through a list of filters in the
// order in which they were added, stopping at the first one that
// consumes the event.
type EventFilterManager struct {
	filters []*filterEntry
}

type filterEntry struct {
	f EventFilter
}

// Add appends f to the list of filters.
func (m *EventFilterManager) Add(f EventFilter) Listener {
	e := &filterEntry{f: f}
	m.filters = append(m.filters, e)
	return Listener{remove: func() {
		i := slices.Index(m.filters, e)
		if i >= 0 {
			m.filters = slices.Delete(m.filters, i, i+1)
		}
	}}
}

func (m *EventFilterManager) dispatch(handle func(EventFilter) bool) bool {
	for _, e := range slices.Clone(m.filters) {
		if handle(e.f) {
			return true
		}
	}
	return false
}

func (m *EventFilterManager) HandleKeyboardEvent(ev KeyboardEvent) bool {
	return m.dispatch(func(f EventFilter) bool { return f.HandleKeyboardEvent(ev) })
}

func (m *EventFilterManager) HandlePointerMotionEvent(ev MotionEvent) bool {
	return m.dispatch(func(f EventFilter) bool { return f.HandlePointerMotionEvent(ev) })
}

func (m *EventFilterManager) HandlePointerButtonEvent(ev ButtonEvent) bool {
	return m.dispatch(func(f EventFilter) bool { return f.HandlePointerButtonEvent(ev) })
}

func (m *EventFilterManager) HandlePointerAxisEvent(ev AxisEvent) bool {
	return m.dispatch(func(f EventFilter) bool { return f.HandlePointerAxisEvent(ev) })
}
