package wlral

import (
	"time"

	"deedles.dev/wlral/geom"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/icccm"
)

// The interfaces in this file describe the native display server
// objects that the compositor drives. An implementation backed by
// wlroots lives in internal/wlrbackend. Everything here is called
// from the event loop only.

// SurfaceID identifies a native wl_surface. The zero SurfaceID
// refers to no surface.
type SurfaceID uint64

// NativeSurface is the part of a client surface shared by every
// role.
type NativeSurface interface {
	ID() SurfaceID

	// Buffer returns the surface-local offset and the size of the
	// currently attached buffer.
	Buffer() geom.Rectangle

	SendEnter(NativeOutput)
	SendLeave(NativeOutput)
}

type XDGRole int

const (
	XDGRoleNone XDGRole = iota
	XDGRoleToplevel
	XDGRolePopup
)

// ToplevelState is the committed state of an XDG toplevel.
type ToplevelState struct {
	Activated  bool
	Maximized  bool
	Fullscreen bool
	Resizing   bool

	MinSize geom.Size
	MaxSize geom.Size
}

// XDGPopup describes the placement of an XDG popup.
type XDGPopup struct {
	Parent SurfaceID

	// Geometry is the popup's position relative to its parent's
	// window geometry.
	Geometry geom.Rectangle

	// ParentGeometry is the window geometry of the parent. It is only
	// meaningful if ParentIsXDG is true.
	ParentGeometry geom.Rectangle
	ParentIsXDG    bool
}

type XDGSurface interface {
	NativeSurface

	Role() XDGRole
	Geometry() geom.Rectangle
	Toplevel() ToplevelState
	Popup() XDGPopup
	Title() string
	AppID() string

	// The setters below apply to toplevels and return the serial of
	// the configure event that they schedule.
	SetSize(geom.Size) uint32
	SetActivated(bool) uint32
	SetMaximized(bool) uint32
	SetFullscreen(bool) uint32
	SetResizing(bool) uint32

	SendClose()
}

// ShellLayer is a layer-shell layer as requested by a client.
type ShellLayer int

const (
	ShellLayerBackground ShellLayer = iota
	ShellLayerBottom
	ShellLayerTop
	ShellLayerOverlay
)

// LayerSurfaceState is the committed state of a layer-shell surface.
type LayerSurfaceState struct {
	Layer               ShellLayer
	Anchor              geom.Edges
	DesiredSize         geom.Size
	ExclusiveZone       int
	KeyboardInteractive bool
}

type LayerSurface interface {
	NativeSurface

	Current() LayerSurfaceState
	Configure(geom.Size) uint32
	Close()
}

type XwaylandSurface interface {
	NativeSurface

	Window() xproto.Window
	Geometry() geom.Rectangle
	Configure(geom.Rectangle)

	// SizeHints returns the window's WM_NORMAL_HINTS, or nil if it
	// has none.
	SizeHints() *icccm.NormalHints

	Activate(bool)
	Maximized() bool
	SetMaximized(bool)
	Fullscreen() bool
	SetFullscreen(bool)
	Title() string
	Class() string
	Close()
}

type OutputTransform int

const (
	TransformNormal OutputTransform = iota
	Transform90
	Transform180
	Transform270
	TransformFlipped
	TransformFlipped90
	TransformFlipped180
	TransformFlipped270
)

// OutputMode is a resolution and refresh rate that an output supports.
type OutputMode struct {
	Size geom.Size

	// Refresh is in mHz.
	Refresh int
}

type NativeOutput interface {
	Name() string
	Description() string

	Enabled() bool
	Mode() (OutputMode, bool)
	Modes() []OutputMode
	PreferredMode() (OutputMode, bool)
	Scale() float32
	Transform() OutputTransform

	Enable(bool)
	SetMode(OutputMode)
	SetCustomMode(geom.Size, int)
	SetScale(float32)
	SetTransform(OutputTransform)

	// Test checks whether the pending state could be committed.
	Test() bool
	Commit() error
	Rollback()

	// EffectiveResolution returns the output's size in logical
	// coordinates after scale and transform are applied.
	EffectiveResolution() geom.Size

	CreateGlobal()
	Destroy()
}

// OutputLayout positions outputs in the shared logical coordinate
// space.
type OutputLayout interface {
	AddAuto(NativeOutput)
	Add(NativeOutput, geom.Point[int])
	Remove(NativeOutput)

	// Position returns the top-left corner of out in the layout.
	Position(out NativeOutput) (geom.Point[int], bool)
}

// Seat delivers input focus and events to clients.
type Seat interface {
	KeyboardFocusedSurface() SurfaceID
	KeyboardNotifyEnter(SurfaceID)
	KeyboardClearFocus()
	KeyboardNotifyKey(time.Time, uint32, KeyState)
	KeyboardNotifyModifiers(Modifiers)

	PointerFocusedSurface() SurfaceID
	PointerNotifyEnter(SurfaceID, geom.Point[float64])
	PointerNotifyMotion(time.Time, geom.Point[float64])
	PointerNotifyButton(time.Time, Button, ButtonState)
	PointerNotifyAxis(AxisEvent)
	PointerNotifyFrame()
	PointerClearFocus()
}

// NativeCursor is the on-screen pointer.
type NativeCursor interface {
	Position() geom.Point[float64]
	Warp(geom.Point[float64])
	SetImage(name string)
}

// NativeKeyboard is a keyboard input device.
type NativeKeyboard interface {
	Name() string
	SetKeymap(KeyboardConfig) error
	SetRepeatInfo(rate, delay int)
}

// Timers schedules callbacks on the event loop.
type Timers interface {
	// AfterFunc calls f after d has elapsed. Calling the returned
	// function before then cancels the call.
	AfterFunc(d time.Duration, f func()) (stop func())
}

// Session controls the login session the compositor runs in.
type Session interface {
	ChangeVT(vt int) error
}

// Backend is a native display server.
type Backend interface {
	// Bind connects the backend's native events to c. It is called
	// once from NewCompositor before Start.
	Bind(c *Compositor)

	Start() error
	Run() error
	Destroy()

	Seat() Seat
	Cursor() NativeCursor
	OutputLayout() OutputLayout
	Timers() Timers

	// Session returns the login session, or nil if the backend isn't
	// running on one, such as when it is nested in another
	// compositor.
	Session() Session
}
