package wlrbackend

import (
	"deedles.dev/wlr"
	"deedles.dev/wlral"
	"deedles.dev/wlral/geom"
	"deedles.dev/wlral/internal/util"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/charmbracelet/log"
	"golang.org/x/exp/slices"
)

const netWmStateFullscreen = "_NET_WM_STATE_FULLSCREEN"

// xwaylandSurface adapts a wlroots Xwayland surface to
// wlral.XwaylandSurface.
//
// The bindings expose neither the X window ID nor the map and
// associate events of the Xwayland surface. The wl_surface is picked
// up once it appears, which is when the window is created, and the X
// window is found on the X server by its title and size so that its
// properties can be read.
type xwaylandSurface struct {
	b  *Backend
	s  wlr.XwaylandSurface
	id wlral.SurfaceID
	w  *wlral.Window

	// attached is the wl_surface that s was last associated with.
	attached wlr.Surface
	win      xproto.Window

	configures util.Configures
	unmanaged  bool

	// pos is the last position sent to the X server.
	pos geom.Point[int]

	maximized  bool
	fullscreen bool
}

func (s *xwaylandSurface) surface() wlr.Surface {
	return s.s.Surface()
}

func (s *xwaylandSurface) forEachSurface(cb func(wlr.Surface, int, int)) {
	if surface := s.s.Surface(); surface.Valid() {
		surface.ForEachSurface(cb)
	}
}

func (s *xwaylandSurface) observe() {
	s.attach()
	if (s.w == nil) || !s.attached.Valid() || !s.attached.Mapped() {
		return
	}

	_, committed := s.configures.Observe(geom.RectAt(s.pos, s.Buffer().Size))
	if committed {
		s.w.HandleCommit(wlral.XwaylandConfigureSerial)
	}
}

// attach picks up the wl_surface of s once Xwayland has associated
// one with it. The window is created the first time that happens.
func (s *xwaylandSurface) attach() {
	surface := s.s.Surface()
	if !surface.Valid() || (surface == s.attached) {
		return
	}
	s.attached = surface
	s.b.attach(surface, s.id)

	if s.w == nil {
		s.resolve()
		layer := wlral.LayerNormal
		if s.unmanaged {
			layer = wlral.LayerTop
		}
		s.w = s.b.c.WindowManager().NewWindow(layer, wlral.NewXwaylandSurface(s))
	}

	surface.OnMap(func(wlr.Surface) { s.handleMap() })
	surface.OnUnmap(func(wlr.Surface) { s.w.HandleUnmap() })
	surface.OnDestroy(func(surface wlr.Surface) {
		s.b.detach(surface)
		if surface == s.attached {
			s.attached = wlr.Surface{}
		}
	})

	if surface.Mapped() {
		s.handleMap()
	}
}

func (s *xwaylandSurface) handleMap() {
	s.configures.Observe(geom.RectAt(s.pos, s.Buffer().Size))
	s.w.HandleMap()
	if s.unmanaged {
		s.w.MoveTo(s.pos)
	}
}

// resolve finds the X window behind s among the top-level windows
// that haven't been claimed by another surface yet.
func (s *xwaylandSurface) resolve() {
	xu := s.b.xconnect()
	if xu == nil {
		return
	}

	tree, err := xproto.QueryTree(xu.Conn(), xu.RootWin()).Reply()
	if err != nil {
		log.Error("query X window tree", "err", err)
		return
	}

	for _, win := range tree.Children {
		if _, ok := s.b.claimed[win]; ok {
			continue
		}

		g, err := xproto.GetGeometry(xu.Conn(), xproto.Drawable(win)).Reply()
		if err != nil {
			continue
		}
		if (int(g.Width) != s.s.Width()) || (int(g.Height) != s.s.Height()) {
			continue
		}
		if windowTitle(xu, win) != s.s.Title() {
			continue
		}

		attrs, err := xproto.GetWindowAttributes(xu.Conn(), win).Reply()
		if err != nil {
			continue
		}
		if attrs.MapState != xproto.MapStateViewable {
			continue
		}

		s.win = win
		s.b.claimed[win] = s.id
		s.unmanaged = attrs.OverrideRedirect
		s.pos = geom.Pt(int(g.X), int(g.Y))
		log.Debug("found X window", "surface", s.id, "window", win, "unmanaged", s.unmanaged)
		return
	}
	log.Debug("no X window for surface", "surface", s.id, "title", s.s.Title())
}

// windowTitle prefers _NET_WM_NAME, which is UTF-8, over WM_NAME.
func windowTitle(xu *xgbutil.XUtil, win xproto.Window) string {
	title, err := ewmh.WmNameGet(xu, win)
	if (err == nil) && (title != "") {
		return title
	}
	title, _ = icccm.WmNameGet(xu, win)
	return title
}

func (s *xwaylandSurface) ID() wlral.SurfaceID {
	return s.id
}

func (s *xwaylandSurface) Buffer() geom.Rectangle {
	surface := s.s.Surface()
	if !surface.Valid() {
		return geom.Rectangle{}
	}

	current := surface.Current()
	return geom.Rect(0, 0, current.Width(), current.Height())
}

func (s *xwaylandSurface) SendEnter(out wlral.NativeOutput) {
	o, ok := out.(*output)
	if surface := s.s.Surface(); ok && surface.Valid() {
		surface.SendEnter(o.wout)
	}
}

func (s *xwaylandSurface) SendLeave(out wlral.NativeOutput) {
	o, ok := out.(*output)
	if surface := s.s.Surface(); ok && surface.Valid() {
		surface.SendLeave(o.wout)
	}
}

// Window returns the X window behind s, or zero if it couldn't be
// found.
func (s *xwaylandSurface) Window() xproto.Window {
	return s.win
}

func (s *xwaylandSurface) Geometry() geom.Rectangle {
	return geom.RectAt(s.pos, geom.Sz(s.s.Width(), s.s.Height()))
}

func (s *xwaylandSurface) Configure(r geom.Rectangle) {
	s.pos = r.TopLeft
	s.configures.NextSize(r.Size)
	s.s.Configure(int16(r.Left()), int16(r.Top()), uint16(r.Width()), uint16(r.Height()))
}

func (s *xwaylandSurface) SizeHints() *icccm.NormalHints {
	if s.win == 0 {
		return nil
	}

	hints, err := icccm.WmNormalHintsGet(s.b.xconn, s.win)
	if err != nil {
		return nil
	}
	return hints
}

func (s *xwaylandSurface) Activate(activated bool) {
	s.s.Activate(activated)
}

func (s *xwaylandSurface) Maximized() bool {
	return s.maximized
}

func (s *xwaylandSurface) SetMaximized(maximized bool) {
	s.maximized = maximized
	s.s.SetMaximized(maximized)
}

func (s *xwaylandSurface) Fullscreen() bool {
	return s.fullscreen
}

// SetFullscreen updates _NET_WM_STATE directly. The bindings have no
// way to tell the wlroots window manager about it.
func (s *xwaylandSurface) SetFullscreen(fullscreen bool) {
	s.fullscreen = fullscreen
	if s.win == 0 {
		return
	}

	state, _ := ewmh.WmStateGet(s.b.xconn, s.win)
	state = slices.DeleteFunc(state, func(atom string) bool { return atom == netWmStateFullscreen })
	if fullscreen {
		state = append(state, netWmStateFullscreen)
	}
	if err := ewmh.WmStateSet(s.b.xconn, s.win, state); err != nil {
		log.Error("set X window state", "window", s.win, "err", err)
	}
}

func (s *xwaylandSurface) Title() string {
	if title := s.s.Title(); (title != "") || (s.win == 0) {
		return title
	}
	return windowTitle(s.b.xconn, s.win)
}

// Class returns the class half of WM_CLASS.
func (s *xwaylandSurface) Class() string {
	if s.win == 0 {
		return ""
	}

	class, err := icccm.WmClassGet(s.b.xconn, s.win)
	if err != nil {
		return ""
	}
	return class.Class
}

func (s *xwaylandSurface) Close() {
	s.s.Close()
}

func (b *Backend) onNewXwaylandSurface(surface wlr.XwaylandSurface) {
	adapter := xwaylandSurface{b: b, s: surface}
	adapter.id = b.register(&adapter)

	surface.OnDestroy(func(wlr.XwaylandSurface) {
		if adapter.w != nil {
			adapter.w.HandleDestroy()
		}
		b.forget(adapter.id)
	})

	// Until there's a window, or if the window places itself,
	// configure requests are granted as they are.
	surface.OnRequestConfigure(func(_ wlr.XwaylandSurface, x, y int16, width, height uint16) {
		adapter.attach()

		r := geom.Rect(int(x), int(y), int(width), int(height))
		switch {
		case adapter.w == nil:
			adapter.Configure(r)
		case adapter.unmanaged:
			adapter.Configure(r)
			adapter.w.MoveTo(r.TopLeft)
		default:
			adapter.w.Resize(r.Size)
		}
	})

	surface.OnRequestMove(func(wlr.XwaylandSurface) {
		if adapter.w != nil {
			adapter.w.HandleRequestMove()
		}
	})
	surface.OnRequestResize(func(_ wlr.XwaylandSurface, edges wlr.Edges) {
		if adapter.w != nil {
			adapter.w.HandleRequestResize(geom.Edges(edges))
		}
	})
	surface.OnRequestMaximize(func(wlr.XwaylandSurface) {
		if adapter.w != nil {
			adapter.w.HandleRequestMaximize(!adapter.maximized)
		}
	})
	surface.OnRequestMinimize(func(wlr.XwaylandSurface) {
		if adapter.w != nil {
			adapter.w.HandleRequestMinimize()
		}
	})
}
