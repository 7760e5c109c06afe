package wlrbackend

import (
	"deedles.dev/wlr"
	"deedles.dev/wlral"
	"deedles.dev/wlral/geom"
	"deedles.dev/wlral/internal/util"
)

// xdgSurface adapts a wlroots XDG surface to wlral.XDGSurface.
//
// The bindings don't return configure serials or report commits, so
// serials are minted by configures and a commit is noticed when the
// window geometry changes. Maximized, fullscreen and resizing are
// tracked here because the bindings can't read them back, and
// fullscreen is never sent to the client at all.
type xdgSurface struct {
	b  *Backend
	s  wlr.XDGSurface
	id wlral.SurfaceID
	w  *wlral.Window

	configures util.Configures
	parent     wlr.Surface

	maximized  bool
	fullscreen bool
	resizing   bool
}

func (s *xdgSurface) surface() wlr.Surface {
	return s.s.Surface()
}

func (s *xdgSurface) forEachSurface(cb func(wlr.Surface, int, int)) {
	s.s.ForEachSurface(cb)
}

func (s *xdgSurface) observe() {
	if !s.s.Surface().Mapped() {
		return
	}

	serial, committed := s.configures.Observe(s.Geometry())
	if committed {
		s.w.HandleCommit(serial)
	}
}

func (s *xdgSurface) ID() wlral.SurfaceID {
	return s.id
}

func (s *xdgSurface) Buffer() geom.Rectangle {
	current := s.s.Surface().Current()
	return geom.Rect(0, 0, current.Width(), current.Height())
}

func (s *xdgSurface) SendEnter(out wlral.NativeOutput) {
	if o, ok := out.(*output); ok {
		s.s.Surface().SendEnter(o.wout)
	}
}

func (s *xdgSurface) SendLeave(out wlral.NativeOutput) {
	if o, ok := out.(*output); ok {
		s.s.Surface().SendLeave(o.wout)
	}
}

func (s *xdgSurface) Role() wlral.XDGRole {
	switch s.s.Role() {
	case wlr.XDGSurfaceRoleToplevel:
		return wlral.XDGRoleToplevel
	case wlr.XDGSurfaceRolePopup:
		return wlral.XDGRolePopup
	default:
		return wlral.XDGRoleNone
	}
}

func (s *xdgSurface) Geometry() geom.Rectangle {
	return geom.FromImageRect(s.s.GetGeometry())
}

func (s *xdgSurface) Toplevel() wlral.ToplevelState {
	current := s.s.Toplevel().Current()
	return wlral.ToplevelState{
		Activated:  current.Activated(),
		Maximized:  s.maximized,
		Fullscreen: s.fullscreen,
		Resizing:   s.resizing,
		MinSize:    geom.Sz(int(current.MinWidth()), int(current.MinHeight())),
		MaxSize:    geom.Sz(int(current.MaxWidth()), int(current.MaxHeight())),
	}
}

// Popup reports the popup's geometry relative to its parent's
// surface origin. The positioner result isn't exposed, so the popup's
// own window geometry offset stands in for it.
func (s *xdgSurface) Popup() wlral.XDGPopup {
	p := wlral.XDGPopup{
		Parent:   s.b.idOf(s.parent),
		Geometry: s.Geometry(),
	}

	if parent, ok := s.b.surfaces[p.Parent].(*xdgSurface); ok {
		p.ParentGeometry = parent.Geometry()
		p.ParentIsXDG = true
	}
	return p
}

func (s *xdgSurface) Title() string {
	return s.s.Toplevel().Title()
}

// AppID always returns an empty string. The bindings don't expose the
// toplevel's app ID.
func (s *xdgSurface) AppID() string {
	return ""
}

func (s *xdgSurface) SetSize(size geom.Size) uint32 {
	s.s.Toplevel().SetSize(int32(size.Width), int32(size.Height))
	return s.configures.NextSize(size)
}

func (s *xdgSurface) SetActivated(activated bool) uint32 {
	s.s.Toplevel().SetActivated(activated)
	return s.configures.Next()
}

func (s *xdgSurface) SetMaximized(maximized bool) uint32 {
	s.maximized = maximized
	s.s.Toplevel().SetMaximized(maximized)
	return s.configures.Next()
}

func (s *xdgSurface) SetFullscreen(fullscreen bool) uint32 {
	s.fullscreen = fullscreen
	return s.configures.Next()
}

func (s *xdgSurface) SetResizing(resizing bool) uint32 {
	s.resizing = resizing
	s.s.Toplevel().SetResizing(resizing)
	return s.configures.Next()
}

func (s *xdgSurface) SendClose() {
	s.s.Toplevel().SendClose()
}

func (b *Backend) onNewXDGSurface(surface wlr.XDGSurface) {
	adapter := xdgSurface{b: b, s: surface}
	adapter.id = b.register(&adapter)
	b.attach(surface.Surface(), adapter.id)

	if surface.Role() == wlr.XDGSurfaceRolePopup {
		adapter.parent = surface.Popup().Parent()
	}

	w := b.c.WindowManager().NewWindow(wlral.LayerNormal, wlral.NewXDGSurface(&adapter))
	adapter.w = w

	surface.Surface().OnMap(func(wlr.Surface) {
		// Mapping is the client's first commit.
		serial, _ := adapter.configures.Observe(adapter.Geometry())
		if w.PendingUpdates() > 0 {
			w.HandleCommit(serial)
		}
		w.HandleMap()
	})
	surface.Surface().OnUnmap(func(wlr.Surface) { w.HandleUnmap() })
	surface.OnDestroy(func(wlr.XDGSurface) {
		w.HandleDestroy()
		b.forget(adapter.id)
	})

	if surface.Role() != wlr.XDGSurfaceRoleToplevel {
		return
	}

	toplevel := surface.Toplevel()
	toplevel.OnRequestMove(func(wlr.XDGToplevel, wlr.SeatClient, uint32) {
		w.HandleRequestMove()
	})
	toplevel.OnRequestResize(func(_ wlr.XDGToplevel, _ wlr.SeatClient, _ uint32, edges wlr.Edges) {
		w.HandleRequestResize(geom.Edges(edges))
	})

	// The requested state isn't exposed, so a request toggles.
	toplevel.OnRequestMaximize(func(wlr.XDGToplevel) {
		w.HandleRequestMaximize(!adapter.maximized)
	})
	toplevel.OnRequestMinimize(func(wlr.XDGToplevel) {
		w.HandleRequestMinimize()
	})
}
