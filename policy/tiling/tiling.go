// Package tiling implements a window management policy that arranges
// windows so that they fill their output without overlapping.
package tiling

import (
	"deedles.dev/wlral"
	"deedles.dev/wlral/geom"
	"deedles.dev/wlral/geom/layout"
	"github.com/charmbracelet/log"
	"golang.org/x/exp/slices"
)

// Layout splits an output's extents into n tiles.
type Layout func(r geom.Rectangle, n int) []geom.Rectangle

// Policy tiles focusable windows in the normal layer. Every window
// is assigned to an output when it is first mapped and stays there
// until that output is removed.
type Policy struct {
	wlral.NopPolicy

	c      *wlral.Compositor
	layout Layout

	windows []*wlral.Window
	assign  map[*wlral.Window]*wlral.Output
}

// New returns a tiling policy for c. If l is nil,
// layout.RightThenDown is used.
func New(c *wlral.Compositor, l Layout) *Policy {
	if l == nil {
		l = layout.RightThenDown
	}

	return &Policy{
		c:      c,
		layout: l,
		assign: make(map[*wlral.Window]*wlral.Output),
	}
}

func (p *Policy) tileable(w *wlral.Window) bool {
	return w.Mapped() && (w.Layer() == wlral.LayerNormal) && w.CanReceiveFocus()
}

func (p *Policy) targetOutput() *wlral.Output {
	cursor := geom.PConv[int](p.c.CursorManager().Position())
	if out, ok := p.c.OutputManager().OutputAt(cursor); ok {
		return out
	}
	if outputs := p.c.OutputManager().Outputs(); len(outputs) != 0 {
		return outputs[0]
	}
	return nil
}

func (p *Policy) HandleWindowReady(w *wlral.Window) {
	if !p.tileable(w) {
		return
	}

	if !slices.Contains(p.windows, w) {
		p.windows = append(p.windows, w)
	}
	if _, ok := p.assign[w]; !ok {
		p.assign[w] = p.targetOutput()
	}

	p.c.WindowManager().FocusWindow(w)
	p.Retile()
}

func (p *Policy) AdviseDeleteWindow(w *wlral.Window) {
	i := slices.Index(p.windows, w)
	if i < 0 {
		return
	}
	p.windows = slices.Delete(p.windows, i, i+1)
	delete(p.assign, w)

	wm := p.c.WindowManager()
	if _, ok := wm.FocusedWindow(); !ok && (len(p.windows) != 0) {
		wm.FocusWindow(p.windows[min(i, len(p.windows)-1)])
	}

	p.Retile()
}

func (p *Policy) HandleRequestMove(req wlral.MoveRequest) {
	log.Debug("ignoring move request of tiled window", "window", req.Window)
}

func (p *Policy) HandleRequestResize(req wlral.ResizeRequest) {
	log.Debug("ignoring resize request of tiled window", "window", req.Window)
}

func (p *Policy) HandleRequestFullscreen(req wlral.FullscreenRequest) {
	if req.Output != nil {
		p.assign[req.Window] = req.Output
	}
	req.Window.SetFullscreen(req.Fullscreen)
	p.Retile()
}

func (p *Policy) HandleRequestActivate(w *wlral.Window) {
	if w.Mapped() {
		p.c.WindowManager().FocusWindow(w)
	}
}

func (p *Policy) HandleRequestClose(w *wlral.Window) {
	w.AskClientToClose()
}

func (p *Policy) AdviseOutputCreate(out *wlral.Output) {
	for w, o := range p.assign {
		if o == nil {
			p.assign[w] = out
		}
	}
	p.Retile()
}

func (p *Policy) AdviseOutputUpdate(out *wlral.Output) {
	p.Retile()
}

func (p *Policy) AdviseOutputDelete(out *wlral.Output) {
	target := p.targetOutput()
	for w, o := range p.assign {
		if o == out {
			p.assign[w] = target
		}
	}
	p.Retile()
}

// Retile recalculates the extents of every tiled window. Fullscreen
// windows cover their whole output and are left out of the tiling.
func (p *Policy) Retile() {
	for _, out := range p.c.OutputManager().Outputs() {
		var tiled []*wlral.Window
		for _, w := range p.windows {
			if (p.assign[w] != out) || !p.tileable(w) {
				continue
			}
			if w.Fullscreen() {
				setExtents(w, out.Extents())
				continue
			}
			tiled = append(tiled, w)
		}

		for i, r := range p.layout(out.Extents(), len(tiled)) {
			setExtents(tiled[i], r)
		}
	}
}

func setExtents(w *wlral.Window, r geom.Rectangle) {
	if w.Extents() == r {
		return
	}
	w.SetExtents(r)
}
