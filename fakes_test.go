package wlral

import (
	"errors"
	"fmt"
	"time"

	"deedles.dev/wlral/geom"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/icccm"
)

var nextSurfaceID SurfaceID

func newSurfaceID() SurfaceID {
	nextSurfaceID++
	return nextSurfaceID
}

type fakeNative struct {
	id      SurfaceID
	buffer  geom.Rectangle
	entered []NativeOutput
	left    []NativeOutput
}

func (s *fakeNative) ID() SurfaceID              { return s.id }
func (s *fakeNative) Buffer() geom.Rectangle     { return s.buffer }
func (s *fakeNative) SendEnter(out NativeOutput) { s.entered = append(s.entered, out) }
func (s *fakeNative) SendLeave(out NativeOutput) { s.left = append(s.left, out) }

type fakeXDG struct {
	fakeNative

	role     XDGRole
	geometry geom.Rectangle
	state    ToplevelState
	popup    XDGPopup
	title    string
	appID    string
	closed   bool

	serial  uint32
	pending map[uint32]geom.Size
}

// newFakeToplevel returns a toplevel without client-side decorations.
func newFakeToplevel(size geom.Size) *fakeXDG {
	return &fakeXDG{
		fakeNative: fakeNative{id: newSurfaceID(), buffer: geom.RectAt(geom.Pt(0, 0), size)},
		role:       XDGRoleToplevel,
		geometry:   geom.RectAt(geom.Pt(0, 0), size),
		pending:    make(map[uint32]geom.Size),
	}
}

func newFakePopup(parent SurfaceID, size geom.Size) *fakeXDG {
	s := newFakeToplevel(size)
	s.role = XDGRolePopup
	s.popup.Parent = parent
	return s
}

func (s *fakeXDG) Role() XDGRole            { return s.role }
func (s *fakeXDG) Geometry() geom.Rectangle { return s.geometry }
func (s *fakeXDG) Toplevel() ToplevelState  { return s.state }
func (s *fakeXDG) Popup() XDGPopup          { return s.popup }
func (s *fakeXDG) Title() string            { return s.title }
func (s *fakeXDG) AppID() string            { return s.appID }
func (s *fakeXDG) SendClose()               { s.closed = true }

func (s *fakeXDG) configure() uint32 {
	s.serial++
	return s.serial
}

func (s *fakeXDG) SetSize(size geom.Size) uint32 {
	serial := s.configure()
	s.pending[serial] = size
	return serial
}

func (s *fakeXDG) SetActivated(v bool) uint32  { s.state.Activated = v; return s.configure() }
func (s *fakeXDG) SetMaximized(v bool) uint32  { s.state.Maximized = v; return s.configure() }
func (s *fakeXDG) SetFullscreen(v bool) uint32 { s.state.Fullscreen = v; return s.configure() }
func (s *fakeXDG) SetResizing(v bool) uint32   { s.state.Resizing = v; return s.configure() }

// ack applies the size from the given configure as a well-behaved
// client would and returns the serial for Window.HandleCommit.
func (s *fakeXDG) ack(serial uint32) uint32 {
	if size, ok := s.pending[serial]; ok {
		delete(s.pending, serial)
		s.buffer.Size = s.buffer.Size.Add(size.Sub(s.geometry.Size))
		s.geometry.Size = size
	}
	return serial
}

// ackLatest acknowledges the most recent configure.
func (s *fakeXDG) ackLatest() uint32 {
	return s.ack(s.serial)
}

type fakeLayer struct {
	fakeNative

	state  LayerSurfaceState
	closed bool
}

func newFakeLayer(layer ShellLayer, size geom.Size) *fakeLayer {
	return &fakeLayer{
		fakeNative: fakeNative{id: newSurfaceID(), buffer: geom.RectAt(geom.Pt(0, 0), size)},
		state:      LayerSurfaceState{Layer: layer, DesiredSize: size},
	}
}

func (s *fakeLayer) Current() LayerSurfaceState { return s.state }
func (s *fakeLayer) Close()                     { s.closed = true }

func (s *fakeLayer) Configure(size geom.Size) uint32 {
	s.state.DesiredSize = size
	return 0
}

type fakeXwayland struct {
	fakeNative

	window     xproto.Window
	geometry   geom.Rectangle
	hints      *icccm.NormalHints
	activated  bool
	maximized  bool
	fullscreen bool
	title      string
	class      string
	closed     bool
	configured []geom.Rectangle
}

func newFakeXwayland(r geom.Rectangle) *fakeXwayland {
	id := newSurfaceID()
	return &fakeXwayland{
		fakeNative: fakeNative{id: id},
		window:     xproto.Window(id),
		geometry:   r,
	}
}

func (s *fakeXwayland) Window() xproto.Window         { return s.window }
func (s *fakeXwayland) Geometry() geom.Rectangle      { return s.geometry }
func (s *fakeXwayland) SizeHints() *icccm.NormalHints { return s.hints }
func (s *fakeXwayland) Activate(v bool)               { s.activated = v }
func (s *fakeXwayland) Maximized() bool               { return s.maximized }
func (s *fakeXwayland) SetMaximized(v bool)           { s.maximized = v }
func (s *fakeXwayland) Fullscreen() bool              { return s.fullscreen }
func (s *fakeXwayland) SetFullscreen(v bool)          { s.fullscreen = v }
func (s *fakeXwayland) Title() string                 { return s.title }
func (s *fakeXwayland) Class() string                 { return s.class }
func (s *fakeXwayland) Close()                        { s.closed = true }

func (s *fakeXwayland) Configure(r geom.Rectangle) {
	s.configured = append(s.configured, r)
	s.geometry = r
}

type fakeOutput struct {
	name      string
	enabled   bool
	mode      OutputMode
	hasMode   bool
	modes     []OutputMode
	preferred int
	scale     float32
	transform OutputTransform

	commitErr error
	reject    bool
	commits   int
	globals   int
	destroyed bool
}

func newFakeOutput(name string, size geom.Size) *fakeOutput {
	return &fakeOutput{
		name:      name,
		modes:     []OutputMode{{Size: size, Refresh: 60000}},
		preferred: 0,
		scale:     1,
	}
}

func (o *fakeOutput) Name() string                   { return o.name }
func (o *fakeOutput) Description() string            { return "fake " + o.name }
func (o *fakeOutput) Enabled() bool                  { return o.enabled }
func (o *fakeOutput) Mode() (OutputMode, bool)       { return o.mode, o.hasMode }
func (o *fakeOutput) Modes() []OutputMode            { return o.modes }
func (o *fakeOutput) Scale() float32                 { return o.scale }
func (o *fakeOutput) Transform() OutputTransform     { return o.transform }
func (o *fakeOutput) Enable(v bool)                  { o.enabled = v }
func (o *fakeOutput) SetScale(f float32)             { o.scale = f }
func (o *fakeOutput) SetTransform(t OutputTransform) { o.transform = t }
func (o *fakeOutput) Test() bool                     { return !o.reject }
func (o *fakeOutput) Rollback()                      {}
func (o *fakeOutput) CreateGlobal()                  { o.globals++ }
func (o *fakeOutput) Destroy()                       { o.destroyed = true }

func (o *fakeOutput) PreferredMode() (OutputMode, bool) {
	if (o.preferred < 0) || (o.preferred >= len(o.modes)) {
		return OutputMode{}, false
	}
	return o.modes[o.preferred], true
}

func (o *fakeOutput) SetMode(m OutputMode) {
	o.mode = m
	o.hasMode = true
}

func (o *fakeOutput) SetCustomMode(size geom.Size, refresh int) {
	o.SetMode(OutputMode{Size: size, Refresh: refresh})
}

func (o *fakeOutput) Commit() error {
	o.commits++
	return o.commitErr
}

func (o *fakeOutput) EffectiveResolution() geom.Size {
	size := o.mode.Size
	switch o.transform {
	case Transform90, Transform270, TransformFlipped90, TransformFlipped270:
		size = geom.Sz(size.Height, size.Width)
	}
	return size.Div(o.scale)
}

// fakeLayout places automatically added outputs left to right.
type fakeLayout struct {
	order     []NativeOutput
	positions map[NativeOutput]geom.Point[int]
}

func newFakeLayout() *fakeLayout {
	return &fakeLayout{positions: make(map[NativeOutput]geom.Point[int])}
}

func (l *fakeLayout) AddAuto(out NativeOutput) {
	var x int
	for _, o := range l.order {
		if o == out {
			continue
		}
		x = max(x, l.positions[o].X+o.EffectiveResolution().Width)
	}
	l.Add(out, geom.Pt(x, 0))
}

func (l *fakeLayout) Add(out NativeOutput, p geom.Point[int]) {
	if _, ok := l.positions[out]; !ok {
		l.order = append(l.order, out)
	}
	l.positions[out] = p
}

func (l *fakeLayout) Remove(out NativeOutput) {
	delete(l.positions, out)
	for i, o := range l.order {
		if o == out {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
}

func (l *fakeLayout) Position(out NativeOutput) (geom.Point[int], bool) {
	p, ok := l.positions[out]
	return p, ok
}

type fakeSeat struct {
	keyboardFocus SurfaceID
	pointerFocus  SurfaceID
	pointerPos    geom.Point[float64]

	keys      []uint32
	modifiers Modifiers
	buttons   []ButtonEvent
	axes      []AxisEvent
	motions   int
	frames    int
}

func (s *fakeSeat) KeyboardFocusedSurface() SurfaceID   { return s.keyboardFocus }
func (s *fakeSeat) KeyboardNotifyEnter(id SurfaceID)    { s.keyboardFocus = id }
func (s *fakeSeat) KeyboardClearFocus()                 { s.keyboardFocus = 0 }
func (s *fakeSeat) KeyboardNotifyModifiers(m Modifiers) { s.modifiers = m }
func (s *fakeSeat) PointerFocusedSurface() SurfaceID    { return s.pointerFocus }
func (s *fakeSeat) PointerNotifyAxis(ev AxisEvent)      { s.axes = append(s.axes, ev) }
func (s *fakeSeat) PointerNotifyFrame()                 { s.frames++ }

func (s *fakeSeat) KeyboardNotifyKey(t time.Time, code uint32, state KeyState) {
	s.keys = append(s.keys, code)
}

func (s *fakeSeat) PointerNotifyEnter(id SurfaceID, p geom.Point[float64]) {
	s.pointerFocus = id
	s.pointerPos = p
}

func (s *fakeSeat) PointerNotifyMotion(t time.Time, p geom.Point[float64]) {
	s.motions++
	s.pointerPos = p
}

func (s *fakeSeat) PointerNotifyButton(t time.Time, b Button, state ButtonState) {
	s.buttons = append(s.buttons, ButtonEvent{Time: t, Button: b, State: state})
}

func (s *fakeSeat) PointerClearFocus() {
	s.pointerFocus = 0
}

type fakeCursor struct {
	position geom.Point[float64]
	image    string
}

func (c *fakeCursor) Position() geom.Point[float64] { return c.position }
func (c *fakeCursor) Warp(p geom.Point[float64])    { c.position = p }
func (c *fakeCursor) SetImage(name string)          { c.image = name }

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

type fakeTimers struct {
	timers []*fakeTimer
}

func (t *fakeTimers) AfterFunc(d time.Duration, f func()) func() {
	timer := fakeTimer{d: d, f: f}
	t.timers = append(t.timers, &timer)
	return func() { timer.stopped = true }
}

// fire runs every timer that hasn't been stopped.
func (t *fakeTimers) fire() {
	timers := t.timers
	t.timers = nil
	for _, timer := range timers {
		if !timer.stopped {
			timer.f()
		}
	}
}

type fakeSession struct {
	vts []int
	err error
}

func (s *fakeSession) ChangeVT(vt int) error {
	s.vts = append(s.vts, vt)
	return s.err
}

type fakeKeyboard struct {
	name   string
	keymap KeyboardConfig
	rate   int
	delay  int
	err    error
}

func (k *fakeKeyboard) Name() string { return k.name }

func (k *fakeKeyboard) SetKeymap(cfg KeyboardConfig) error {
	k.keymap = cfg
	return k.err
}

func (k *fakeKeyboard) SetRepeatInfo(rate, delay int) {
	k.rate, k.delay = rate, delay
}

var errFakeStart = errors.New("no display")

type fakeBackend struct {
	seat    fakeSeat
	cursor  fakeCursor
	layout  *fakeLayout
	timers  fakeTimers
	session Session

	startErr  error
	bound     *Compositor
	ran       bool
	destroyed bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{layout: newFakeLayout()}
}

func (b *fakeBackend) Bind(c *Compositor)         { b.bound = c }
func (b *fakeBackend) Start() error               { return b.startErr }
func (b *fakeBackend) Run() error                 { b.ran = true; return nil }
func (b *fakeBackend) Destroy()                   { b.destroyed = true }
func (b *fakeBackend) Seat() Seat                 { return &b.seat }
func (b *fakeBackend) Cursor() NativeCursor       { return &b.cursor }
func (b *fakeBackend) OutputLayout() OutputLayout { return b.layout }
func (b *fakeBackend) Timers() Timers             { return &b.timers }
func (b *fakeBackend) Session() Session           { return b.session }

// recordingPolicy records the name of every callback it receives.
type recordingPolicy struct {
	NopPolicy

	calls          []string
	onReady        func(*Window)
	onDelete       func(*Window)
	onMove         func(MoveRequest)
	onResize       func(ResizeRequest)
	onOutputDelete func(*Output)
}

func (p *recordingPolicy) record(name string, v any) {
	p.calls = append(p.calls, fmt.Sprintf("%v %v", name, v))
}

func (p *recordingPolicy) HandleWindowReady(w *Window) {
	p.record("ready", w.Surface().ID())
	if p.onReady != nil {
		p.onReady(w)
	}
}

func (p *recordingPolicy) AdviseNewWindow(w *Window) {
	p.record("new", w.Surface().ID())
}

func (p *recordingPolicy) AdviseConfiguredWindow(w *Window) {
	p.record("configured", w.Surface().ID())
}

func (p *recordingPolicy) AdviseDeleteWindow(w *Window) {
	p.record("delete", w.Surface().ID())
	if p.onDelete != nil {
		p.onDelete(w)
	}
}

func (p *recordingPolicy) HandleRequestMove(req MoveRequest) {
	p.record("move", req.Window.Surface().ID())
	if p.onMove != nil {
		p.onMove(req)
	}
}

func (p *recordingPolicy) HandleRequestResize(req ResizeRequest) {
	p.record("resize", req.Window.Surface().ID())
	if p.onResize != nil {
		p.onResize(req)
	}
}

func (p *recordingPolicy) AdviseOutputCreate(out *Output) {
	p.record("output create", out.Name())
}

func (p *recordingPolicy) AdviseOutputUpdate(out *Output) {
	p.record("output update", out.Name())
}

func (p *recordingPolicy) AdviseOutputDelete(out *Output) {
	p.record("output delete", out.Name())
	if p.onOutputDelete != nil {
		p.onOutputDelete(out)
	}
}

type testCompositor struct {
	*Compositor
	backend *fakeBackend
	policy  *recordingPolicy
}

func newTestCompositor(cfg Config) testCompositor {
	backend := newFakeBackend()
	c, err := NewCompositor(backend, NewConfigManager(cfg))
	if err != nil {
		panic(err)
	}

	var policy recordingPolicy
	if err := c.SetPolicy(&policy); err != nil {
		panic(err)
	}
	return testCompositor{Compositor: c, backend: backend, policy: &policy}
}

// addOutput adds a fake output of the given size to the compositor.
func (tc testCompositor) addOutput(name string, size geom.Size) (*Output, *fakeOutput) {
	native := newFakeOutput(name, size)
	out, err := tc.OutputManager().HandleNewOutput(native)
	if err != nil {
		panic(err)
	}
	return out, native
}

// addToplevel creates and maps a toplevel of the given size in the
// normal layer.
func (tc testCompositor) addToplevel(size geom.Size) (*Window, *fakeXDG) {
	native := newFakeToplevel(size)
	w := tc.WindowManager().NewWindow(LayerNormal, NewXDGSurface(native))
	w.HandleMap()
	return w, native
}
