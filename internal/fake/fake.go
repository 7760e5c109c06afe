// Package fake provides in-memory implementations of the native
// interfaces for testing code built on top of wlral.
package fake

import (
	"time"

	"deedles.dev/wlral"
	"deedles.dev/wlral/geom"
)

var nextID wlral.SurfaceID

// Toplevel is an XDG toplevel without client-side decorations that
// acknowledges configures only when told to.
type Toplevel struct {
	id       wlral.SurfaceID
	geometry geom.Rectangle
	state    wlral.ToplevelState
	serial   uint32
	pending  map[uint32]geom.Size

	Closed bool
}

func NewToplevel(size geom.Size) *Toplevel {
	nextID++
	return &Toplevel{
		id:       nextID,
		geometry: geom.RectAt(geom.Pt(0, 0), size),
		pending:  make(map[uint32]geom.Size),
	}
}

func (s *Toplevel) ID() wlral.SurfaceID                 { return s.id }
func (s *Toplevel) Buffer() geom.Rectangle              { return s.geometry }
func (s *Toplevel) SendEnter(wlral.NativeOutput)        {}
func (s *Toplevel) SendLeave(wlral.NativeOutput)        {}
func (s *Toplevel) Role() wlral.XDGRole                 { return wlral.XDGRoleToplevel }
func (s *Toplevel) Geometry() geom.Rectangle            { return s.geometry }
func (s *Toplevel) Toplevel() wlral.ToplevelState       { return s.state }
func (s *Toplevel) Popup() wlral.XDGPopup               { return wlral.XDGPopup{} }
func (s *Toplevel) Title() string                       { return "" }
func (s *Toplevel) AppID() string                       { return "" }
func (s *Toplevel) SendClose()                          { s.Closed = true }
func (s *Toplevel) SetActivated(v bool) uint32          { s.state.Activated = v; return s.configure() }
func (s *Toplevel) SetMaximized(v bool) uint32          { s.state.Maximized = v; return s.configure() }
func (s *Toplevel) SetFullscreen(v bool) uint32         { s.state.Fullscreen = v; return s.configure() }
func (s *Toplevel) SetResizing(v bool) uint32           { s.state.Resizing = v; return s.configure() }
func (s *Toplevel) SetMinSize(size geom.Size)           { s.state.MinSize = size }
func (s *Toplevel) PendingSize(serial uint32) geom.Size { return s.pending[serial] }
func (s *Toplevel) LatestSerial() uint32                { return s.serial }

func (s *Toplevel) configure() uint32 {
	s.serial++
	return s.serial
}

func (s *Toplevel) SetSize(size geom.Size) uint32 {
	serial := s.configure()
	s.pending[serial] = size
	return serial
}

// Ack applies every pending size up to and including the latest
// configure and returns the serial to commit with.
func (s *Toplevel) Ack() uint32 {
	if size, ok := s.pending[s.serial]; ok {
		s.geometry.Size = size
	}
	clear(s.pending)
	return s.serial
}

// Output is an enabled output with a single mode.
type Output struct {
	name    string
	size    geom.Size
	enabled bool
}

func NewOutput(name string, size geom.Size) *Output {
	return &Output{name: name, size: size}
}

func (o *Output) Name() string                              { return o.name }
func (o *Output) Description() string                       { return o.name }
func (o *Output) Enabled() bool                             { return o.enabled }
func (o *Output) Mode() (wlral.OutputMode, bool)            { return o.mode(), o.enabled }
func (o *Output) Modes() []wlral.OutputMode                 { return []wlral.OutputMode{o.mode()} }
func (o *Output) PreferredMode() (wlral.OutputMode, bool)   { return o.mode(), true }
func (o *Output) Scale() float32                            { return 1 }
func (o *Output) Transform() wlral.OutputTransform          { return wlral.TransformNormal }
func (o *Output) Enable(v bool)                             { o.enabled = v }
func (o *Output) SetMode(m wlral.OutputMode)                { o.size = m.Size }
func (o *Output) SetCustomMode(size geom.Size, refresh int) { o.size = size }
func (o *Output) SetScale(float32)                          {}
func (o *Output) SetTransform(wlral.OutputTransform)        {}
func (o *Output) Test() bool                                { return true }
func (o *Output) Commit() error                             { return nil }
func (o *Output) Rollback()                                 {}
func (o *Output) EffectiveResolution() geom.Size            { return o.size }
func (o *Output) CreateGlobal()                             {}
func (o *Output) Destroy()                                  {}

func (o *Output) mode() wlral.OutputMode {
	return wlral.OutputMode{Size: o.size, Refresh: 60000}
}

// Layout places outputs left to right in the order they are added.
type Layout struct {
	order     []wlral.NativeOutput
	positions map[wlral.NativeOutput]geom.Point[int]
}

func (l *Layout) AddAuto(out wlral.NativeOutput) {
	var x int
	for _, o := range l.order {
		x = max(x, l.positions[o].X+o.EffectiveResolution().Width)
	}
	l.Add(out, geom.Pt(x, 0))
}

func (l *Layout) Add(out wlral.NativeOutput, p geom.Point[int]) {
	if l.positions == nil {
		l.positions = make(map[wlral.NativeOutput]geom.Point[int])
	}
	if _, ok := l.positions[out]; !ok {
		l.order = append(l.order, out)
	}
	l.positions[out] = p
}

func (l *Layout) Remove(out wlral.NativeOutput) {
	delete(l.positions, out)
	for i, o := range l.order {
		if o == out {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
}

func (l *Layout) Position(out wlral.NativeOutput) (geom.Point[int], bool) {
	p, ok := l.positions[out]
	return p, ok
}

// Seat tracks focus and counts the events delivered to clients.
type Seat struct {
	KeyboardFocus wlral.SurfaceID
	PointerFocus  wlral.SurfaceID
	Keys          int
}

func (s *Seat) KeyboardFocusedSurface() wlral.SurfaceID                        { return s.KeyboardFocus }
func (s *Seat) KeyboardNotifyEnter(id wlral.SurfaceID)                         { s.KeyboardFocus = id }
func (s *Seat) KeyboardClearFocus()                                            { s.KeyboardFocus = 0 }
func (s *Seat) KeyboardNotifyKey(time.Time, uint32, wlral.KeyState)            { s.Keys++ }
func (s *Seat) KeyboardNotifyModifiers(wlral.Modifiers)                        {}
func (s *Seat) PointerFocusedSurface() wlral.SurfaceID                         { return s.PointerFocus }
func (s *Seat) PointerNotifyEnter(id wlral.SurfaceID, _ geom.Point[float64])   { s.PointerFocus = id }
func (s *Seat) PointerNotifyMotion(time.Time, geom.Point[float64])             {}
func (s *Seat) PointerNotifyButton(time.Time, wlral.Button, wlral.ButtonState) {}
func (s *Seat) PointerNotifyAxis(wlral.AxisEvent)                              {}
func (s *Seat) PointerNotifyFrame()                                            {}
func (s *Seat) PointerClearFocus()                                             { s.PointerFocus = 0 }

type Cursor struct {
	Pos   geom.Point[float64]
	Image string
}

func (c *Cursor) Position() geom.Point[float64] { return c.Pos }
func (c *Cursor) Warp(p geom.Point[float64])    { c.Pos = p }
func (c *Cursor) SetImage(name string)          { c.Image = name }

// Timers never fire on their own.
type Timers struct{}

func (Timers) AfterFunc(time.Duration, func()) func() { return func() {} }

// Backend ties the other fakes together. Run returns immediately.
type Backend struct {
	Input   Seat
	Pointer Cursor
	Layout  Layout
}

func (b *Backend) Bind(*wlral.Compositor)           {}
func (b *Backend) Start() error                     { return nil }
func (b *Backend) Run() error                       { return nil }
func (b *Backend) Destroy()                         {}
func (b *Backend) Seat() wlral.Seat                 { return &b.Input }
func (b *Backend) Cursor() wlral.NativeCursor       { return &b.Pointer }
func (b *Backend) OutputLayout() wlral.OutputLayout { return &b.Layout }
func (b *Backend) Timers() wlral.Timers             { return Timers{} }
func (b *Backend) Session() wlral.Session           { return nil }

// Compositor creates a compositor on a new fake backend.
func Compositor() (*wlral.Compositor, *Backend) {
	var b Backend
	c, err := wlral.NewCompositor(&b, nil)
	if err != nil {
		panic(err)
	}
	return c, &b
}

// AddOutput adds an output of the given size to c.
func AddOutput(c *wlral.Compositor, name string, size geom.Size) *wlral.Output {
	out, err := c.OutputManager().HandleNewOutput(NewOutput(name, size))
	if err != nil {
		panic(err)
	}
	return out
}

// MapToplevel creates a toplevel window of the given size in the
// normal layer and maps it.
func MapToplevel(c *wlral.Compositor, size geom.Size) (*wlral.Window, *Toplevel) {
	s := NewToplevel(size)
	w := c.WindowManager().NewWindow(wlral.LayerNormal, wlral.NewXDGSurface(s))
	w.HandleMap()
	return w, s
}
