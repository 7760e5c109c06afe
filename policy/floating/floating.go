// Package floating implements a traditional floating window
// management policy. New windows are centered on the output under the
// cursor and can be freely moved and resized by their clients.
package floating

import (
	"deedles.dev/wlral"
	"deedles.dev/wlral/geom"
	"deedles.dev/wlral/geom/layout"
	"github.com/charmbracelet/log"
)

// Policy is a floating window management policy. It is also an
// event filter that closes the focused window on Ctrl+Escape.
type Policy struct {
	wlral.NopPolicy
	wlral.NopEventFilter

	c *wlral.Compositor

	// restore holds the extents that maximized and fullscreen
	// windows return to.
	restore map[*wlral.Window]geom.Rectangle
}

func New(c *wlral.Compositor) *Policy {
	return &Policy{
		c:       c,
		restore: make(map[*wlral.Window]geom.Rectangle),
	}
}

// outputFor picks the output that w should be placed on. That is the
// output under the cursor if there is one, otherwise the first output
// that w is already on, otherwise the first output.
func (p *Policy) outputFor(w *wlral.Window) *wlral.Output {
	cursor := geom.PConv[int](p.c.CursorManager().Position())
	if out, ok := p.c.OutputManager().OutputAt(cursor); ok {
		return out
	}
	if outputs := w.Outputs(); len(outputs) != 0 {
		return outputs[0]
	}
	if outputs := p.c.OutputManager().Outputs(); len(outputs) != 0 {
		return outputs[0]
	}
	return nil
}

func (p *Policy) HandleWindowReady(w *wlral.Window) {
	if ls, ok := w.Surface().Layer(); ok {
		p.placeLayerSurface(w, ls.Current())
		return
	}
	if !w.CanReceiveFocus() {
		return
	}

	if out := p.outputFor(w); out != nil {
		w.MoveTo(layout.Center(out.Extents(), w.Extents().Size).TopLeft)
	}
	p.c.WindowManager().FocusWindow(w)
}

func (p *Policy) placeLayerSurface(w *wlral.Window, state wlral.LayerSurfaceState) {
	out := p.outputFor(w)
	if out == nil {
		return
	}

	r := layout.Align(out.Extents(), w.Extents(), state.Anchor)
	if r.Size != w.Extents().Size {
		w.SetExtents(r)
		return
	}
	w.MoveTo(r.TopLeft)
}

func (p *Policy) AdviseDeleteWindow(w *wlral.Window) {
	delete(p.restore, w)

	wm := p.c.WindowManager()
	if _, ok := wm.FocusedWindow(); ok {
		return
	}

	windows := wm.WindowsInLayer(wlral.LayerNormal)
	for i := len(windows) - 1; i >= 0; i-- {
		if windows[i].Mapped() && windows[i].CanReceiveFocus() {
			wm.FocusWindow(windows[i])
			return
		}
	}
}

// HandleRequestMove starts an interactive move. Moving a maximized or
// fullscreen window takes it out of that state, so it gets its saved
// size back and the saved extents are dropped.
func (p *Policy) HandleRequestMove(req wlral.MoveRequest) {
	w := req.Window
	if !p.c.Gestures().StartMove(req) {
		return
	}

	r, ok := p.restore[w]
	if !ok {
		return
	}
	delete(p.restore, w)
	w.Resize(r.Size)
}

func (p *Policy) HandleRequestResize(req wlral.ResizeRequest) {
	if req.Window.Maximized() || req.Window.Fullscreen() {
		log.Debug("ignoring resize of maximized window", "window", req.Window)
		return
	}
	p.c.Gestures().StartResize(req)
}

func (p *Policy) HandleRequestMaximize(req wlral.MaximizeRequest) {
	w := req.Window
	if req.Maximize == w.Maximized() {
		return
	}

	if !req.Maximize {
		w.SetMaximized(false)
		p.restoreExtents(w)
		return
	}

	out := p.outputFor(w)
	if out == nil {
		return
	}
	p.saveExtents(w)
	w.SetMaximized(true)
	if !w.Fullscreen() {
		w.SetExtents(out.Extents())
	}
}

func (p *Policy) HandleRequestFullscreen(req wlral.FullscreenRequest) {
	w := req.Window
	if req.Fullscreen == w.Fullscreen() {
		return
	}

	if !req.Fullscreen {
		w.SetFullscreen(false)
		p.restoreExtents(w)
		return
	}

	out := req.Output
	if out == nil {
		out = p.outputFor(w)
	}
	if out == nil {
		return
	}
	p.saveExtents(w)
	w.SetFullscreen(true)
	w.SetExtents(out.Extents())
}

// saveExtents records the extents that w will return to once it is
// neither maximized nor fullscreen.
func (p *Policy) saveExtents(w *wlral.Window) {
	if _, ok := p.restore[w]; ok {
		return
	}
	p.restore[w] = w.Extents()
}

func (p *Policy) restoreExtents(w *wlral.Window) {
	if w.Fullscreen() {
		return
	}
	if w.Maximized() {
		if out := p.outputFor(w); out != nil {
			w.SetExtents(out.Extents())
		}
		return
	}

	r, ok := p.restore[w]
	if !ok {
		return
	}
	delete(p.restore, w)
	w.SetExtents(r)
}

func (p *Policy) HandleRequestActivate(w *wlral.Window) {
	if !w.Mapped() {
		return
	}
	p.c.WindowManager().FocusWindow(w)
}

func (p *Policy) HandleRequestClose(w *wlral.Window) {
	w.AskClientToClose()
}

func (p *Policy) AdviseOutputUpdate(out *wlral.Output) {
	p.rehome()
}

func (p *Policy) AdviseOutputDelete(out *wlral.Output) {
	p.rehome()
}

// rehome centers every window that is no longer on any output on the
// first remaining one.
func (p *Policy) rehome() {
	outputs := p.c.OutputManager().Outputs()
	if len(outputs) == 0 {
		return
	}
	target := outputs[0].Extents()

	for _, w := range p.c.WindowManager().WindowsInLayer(wlral.LayerNormal) {
		if !w.Mapped() || !w.CanReceiveFocus() || (len(w.Outputs()) != 0) {
			continue
		}

		log.Debug("moving orphaned window", "window", w, "output", outputs[0])
		if _, ok := p.restore[w]; ok {
			w.SetExtents(target)
			continue
		}
		w.MoveTo(layout.Center(target, w.Extents().Size).TopLeft)
	}
}

func (p *Policy) HandleKeyboardEvent(ev wlral.KeyboardEvent) bool {
	if (ev.State != wlral.KeyPressed) || (ev.Modifiers&wlral.ModCtrl == 0) || (ev.Keysym() != wlral.KeyEscape) {
		return false
	}

	w, ok := p.c.WindowManager().FocusedWindow()
	if !ok {
		return false
	}
	w.AskClientToClose()
	return true
}
