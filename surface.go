package wlral

import (
	"fmt"

	"deedles.dev/wlral/geom"
	"github.com/BurntSushi/xgbutil/icccm"
)

// XwaylandConfigureSerial is the serial returned when configuring an
// Xwayland surface. X11 has no configure serials, so every commit of
// an Xwayland surface acknowledges it.
const XwaylandConfigureSerial uint32 = 1

type SurfaceKind int

const (
	SurfaceXDG SurfaceKind = iota
	SurfaceLayer
	SurfaceXwayland
)

func (k SurfaceKind) String() string {
	switch k {
	case SurfaceXDG:
		return "xdg"
	case SurfaceLayer:
		return "layer"
	case SurfaceXwayland:
		return "xwayland"
	default:
		return fmt.Sprintf("SurfaceKind(%d)", int(k))
	}
}

// Surface is a client surface of one of the supported shell kinds.
// It exposes a single set of capabilities over all of them.
type Surface struct {
	kind  SurfaceKind
	xdg   XDGSurface
	layer LayerSurface
	xw    XwaylandSurface

	// X11 has no notion of an activated window, so it is tracked
	// here.
	xwActivated bool
}

func NewXDGSurface(s XDGSurface) *Surface {
	return &Surface{kind: SurfaceXDG, xdg: s}
}

func NewLayerSurface(s LayerSurface) *Surface {
	return &Surface{kind: SurfaceLayer, layer: s}
}

func NewXwaylandSurface(s XwaylandSurface) *Surface {
	return &Surface{kind: SurfaceXwayland, xw: s}
}

func (s *Surface) Kind() SurfaceKind {
	return s.kind
}

func (s *Surface) native() NativeSurface {
	switch s.kind {
	case SurfaceXDG:
		return s.xdg
	case SurfaceLayer:
		return s.layer
	case SurfaceXwayland:
		return s.xw
	}
	panic("If you see this, there's a bug.")
}

// XDG returns the underlying XDG surface, if s is one.
func (s *Surface) XDG() (XDGSurface, bool) {
	return s.xdg, s.kind == SurfaceXDG
}

// Layer returns the underlying layer-shell surface, if s is one.
func (s *Surface) Layer() (LayerSurface, bool) {
	return s.layer, s.kind == SurfaceLayer
}

// Xwayland returns the underlying Xwayland surface, if s is one.
func (s *Surface) Xwayland() (XwaylandSurface, bool) {
	return s.xw, s.kind == SurfaceXwayland
}

func (s *Surface) ID() SurfaceID {
	return s.native().ID()
}

// ParentID returns the ID of the surface that s is attached to. Only
// XDG popups have parents.
func (s *Surface) ParentID() (SurfaceID, bool) {
	if s.kind != SurfaceXDG || s.xdg.Role() != XDGRolePopup {
		return 0, false
	}
	parent := s.xdg.Popup().Parent
	return parent, parent != 0
}

// Extents returns the surface's window geometry in surface-local
// coordinates.
func (s *Surface) Extents() geom.Rectangle {
	switch s.kind {
	case SurfaceXDG:
		return s.xdg.Geometry()
	case SurfaceLayer:
		return geom.Rectangle{Size: s.layer.Current().DesiredSize}
	case SurfaceXwayland:
		return s.xw.Geometry()
	}
	panic("If you see this, there's a bug.")
}

// BufferRect returns the rectangle covered by the surface's current
// buffer in surface-local coordinates.
func (s *Surface) BufferRect() geom.Rectangle {
	if s.kind == SurfaceXwayland {
		// The X server places the buffer at the window's X11 origin.
		return s.xw.Geometry()
	}
	return s.native().Buffer()
}

// BufferDisplacement is the offset from the buffer's origin to the
// window geometry. For clients that draw shadows or other
// decorations outside of their window geometry it is non-zero.
//
// Xwayland windows report their own X11 position as part of their
// extents. That position is not authoritative, so it is cancelled out
// here and replaced by the window's top-left corner.
func (s *Surface) BufferDisplacement() geom.Displacement[int] {
	switch s.kind {
	case SurfaceXDG, SurfaceLayer:
		return s.Extents().TopLeft.Diff(s.native().Buffer().TopLeft)
	case SurfaceXwayland:
		return s.xw.Geometry().TopLeft.AsDisplacement()
	}
	panic("If you see this, there's a bug.")
}

// ParentDisplacement is the offset of a popup from the origin of its
// parent's buffer.
func (s *Surface) ParentDisplacement() geom.Displacement[int] {
	if s.kind != SurfaceXDG || s.xdg.Role() != XDGRolePopup {
		return geom.Displacement[int]{}
	}

	popup := s.xdg.Popup()
	d := popup.Geometry.TopLeft.AsDisplacement()
	if popup.ParentIsXDG {
		d = d.Add(popup.ParentGeometry.TopLeft.AsDisplacement())
	}
	return d
}

// MoveTo tells the client where the surface is. Only X11 clients
// care.
func (s *Surface) MoveTo(p geom.Point[int]) {
	if s.kind != SurfaceXwayland {
		return
	}
	s.xw.Configure(geom.RectAt(p, s.xw.Geometry().Size))
}

// Resize asks the client to resize the surface and returns the serial
// of the resulting configure event. A serial of zero means that no
// configure was sent.
func (s *Surface) Resize(size geom.Size) uint32 {
	switch s.kind {
	case SurfaceXDG:
		if s.xdg.Role() != XDGRoleToplevel {
			return 0
		}
		return s.xdg.SetSize(size)
	case SurfaceLayer:
		return s.layer.Configure(size)
	case SurfaceXwayland:
		s.xw.Configure(geom.RectAt(s.xw.Geometry().TopLeft, size))
		return XwaylandConfigureSerial
	}
	panic("If you see this, there's a bug.")
}

// CanReceiveFocus reports whether the surface can hold keyboard
// focus. Layer-shell surfaces never can.
func (s *Surface) CanReceiveFocus() bool {
	switch s.kind {
	case SurfaceXDG:
		return s.xdg.Role() == XDGRoleToplevel
	case SurfaceLayer:
		return false
	case SurfaceXwayland:
		return true
	}
	panic("If you see this, there's a bug.")
}

func (s *Surface) isToplevel() bool {
	return s.kind == SurfaceXDG && s.xdg.Role() == XDGRoleToplevel
}

func (s *Surface) Activated() bool {
	switch s.kind {
	case SurfaceXDG:
		return s.isToplevel() && s.xdg.Toplevel().Activated
	case SurfaceXwayland:
		return s.xwActivated
	}
	return false
}

func (s *Surface) SetActivated(activated bool) {
	switch s.kind {
	case SurfaceXDG:
		if s.isToplevel() {
			s.xdg.SetActivated(activated)
		}
	case SurfaceXwayland:
		s.xw.Activate(activated)
		s.xwActivated = activated
	}
}

func (s *Surface) Maximized() bool {
	switch s.kind {
	case SurfaceXDG:
		return s.isToplevel() && s.xdg.Toplevel().Maximized
	case SurfaceXwayland:
		return s.xw.Maximized()
	}
	return false
}

func (s *Surface) SetMaximized(maximized bool) {
	switch s.kind {
	case SurfaceXDG:
		if s.isToplevel() {
			s.xdg.SetMaximized(maximized)
		}
	case SurfaceXwayland:
		s.xw.SetMaximized(maximized)
	}
}

func (s *Surface) Fullscreen() bool {
	switch s.kind {
	case SurfaceXDG:
		return s.isToplevel() && s.xdg.Toplevel().Fullscreen
	case SurfaceXwayland:
		return s.xw.Fullscreen()
	}
	return false
}

func (s *Surface) SetFullscreen(fullscreen bool) {
	switch s.kind {
	case SurfaceXDG:
		if s.isToplevel() {
			s.xdg.SetFullscreen(fullscreen)
		}
	case SurfaceXwayland:
		s.xw.SetFullscreen(fullscreen)
	}
}

// Resizing reports whether the client has been told that it is being
// interactively resized. X11 has no equivalent, so Xwayland surfaces
// are never resizing.
func (s *Surface) Resizing() bool {
	return s.isToplevel() && s.xdg.Toplevel().Resizing
}

func (s *Surface) SetResizing(resizing bool) {
	if s.isToplevel() {
		s.xdg.SetResizing(resizing)
	}
}

// Title returns the surface's title, or an empty string if it has
// none.
func (s *Surface) Title() string {
	switch s.kind {
	case SurfaceXDG:
		if s.isToplevel() {
			return s.xdg.Title()
		}
	case SurfaceXwayland:
		return s.xw.Title()
	}
	return ""
}

// AppID returns the surface's application ID. For X11 clients this is
// the WM_CLASS class.
func (s *Surface) AppID() string {
	switch s.kind {
	case SurfaceXDG:
		if s.isToplevel() {
			return s.xdg.AppID()
		}
	case SurfaceXwayland:
		return s.xw.Class()
	}
	return ""
}

// MinSize returns the smallest size that the client will accept. Zero
// means no limit.
func (s *Surface) MinSize() geom.Size {
	switch s.kind {
	case SurfaceXDG:
		if s.isToplevel() {
			return s.xdg.Toplevel().MinSize
		}
	case SurfaceXwayland:
		hints := s.xw.SizeHints()
		if hints != nil && hints.Flags&icccm.SizeHintPMinSize != 0 {
			return geom.Sz(int(hints.MinWidth), int(hints.MinHeight))
		}
	}
	return geom.Size{}
}

// MaxSize returns the largest size that the client will accept. Zero
// means no limit.
func (s *Surface) MaxSize() geom.Size {
	switch s.kind {
	case SurfaceXDG:
		if s.isToplevel() {
			return s.xdg.Toplevel().MaxSize
		}
	case SurfaceXwayland:
		hints := s.xw.SizeHints()
		if hints != nil && hints.Flags&icccm.SizeHintPMaxSize != 0 {
			return geom.Sz(int(hints.MaxWidth), int(hints.MaxHeight))
		}
	}
	return geom.Size{}
}

// AskClientToClose politely requests that the client close the
// surface. The client may ignore it.
func (s *Surface) AskClientToClose() {
	switch s.kind {
	case SurfaceXDG:
		if s.isToplevel() {
			s.xdg.SendClose()
		}
	case SurfaceLayer:
		s.layer.Close()
	case SurfaceXwayland:
		s.xw.Close()
	}
}

func (s *Surface) sendEnter(out *Output) {
	s.native().SendEnter(out.native)
}

func (s *Surface) sendLeave(out *Output) {
	s.native().SendLeave(out.native)
}

func (s *Surface) String() string {
	return fmt.Sprintf("%v:%d", s.kind, s.ID())
}
