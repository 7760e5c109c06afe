package wlral

import (
	"fmt"
	"iter"

	"deedles.dev/wlral/geom"
	"deedles.dev/xiter"
	"github.com/charmbracelet/log"
	"golang.org/x/exp/slices"
)

// Layer is a stacking layer. Windows in higher layers are always
// drawn above, and hit before, windows in lower layers.
type Layer int

const (
	LayerBackground Layer = iota
	LayerBottom
	LayerNormal
	LayerTop
	LayerOverlay

	layerCount
)

func (l Layer) String() string {
	switch l {
	case LayerBackground:
		return "background"
	case LayerBottom:
		return "bottom"
	case LayerNormal:
		return "normal"
	case LayerTop:
		return "top"
	case LayerOverlay:
		return "overlay"
	default:
		return fmt.Sprintf("Layer(%d)", int(l))
	}
}

// LayerForShell returns the layer that layer-shell surfaces asking
// for l are placed in.
func LayerForShell(l ShellLayer) Layer {
	switch l {
	case ShellLayerBackground:
		return LayerBackground
	case ShellLayerBottom:
		return LayerBottom
	case ShellLayerTop:
		return LayerTop
	case ShellLayerOverlay:
		return LayerOverlay
	default:
		return LayerNormal
	}
}

// WindowManager owns every window and their stacking order, and
// tracks keyboard focus.
type WindowManager struct {
	seat    Seat
	cursor  NativeCursor
	policy  *policyDispatcher
	outputs *OutputManager

	// Each layer is ordered from bottom to top.
	layers [layerCount][]*Window

	onNewWindow Event[*Window]
}

func newWindowManager(seat Seat, cursor NativeCursor, policy *policyDispatcher) *WindowManager {
	return &WindowManager{
		seat:   seat,
		cursor: cursor,
		policy: policy,
	}
}

// NewWindow starts managing surface as a window in layer. It must be
// called by the backend when a client creates a surface with a shell
// role.
func (wm *WindowManager) NewWindow(layer Layer, surface *Surface) *Window {
	if (layer < 0) || (layer >= layerCount) {
		panic(fmt.Errorf("invalid layer: %v", layer))
	}

	w := Window{
		manager: wm,
		layer:   layer,
		surface: surface,
		pending: make(map[uint32]geom.Point[int]),
	}

	if w.CanReceiveFocus() {
		wm.layers[layer] = slices.Insert(wm.layers[layer], 0, &w)
	} else {
		wm.layers[layer] = append(wm.layers[layer], &w)
	}
	log.Debug("new window", "window", &w, "layer", layer)

	wm.onNewWindow.Emit(&w)
	wm.policy.AdviseNewWindow(&w)
	return &w
}

// OnNewWindow returns an event that is emitted when a window is
// created.
func (wm *WindowManager) OnNewWindow() *Event[*Window] {
	return &wm.onNewWindow
}

// Windows yields every window from the bottom of the background layer
// to the top of the overlay layer.
func (wm *WindowManager) Windows() iter.Seq[*Window] {
	seqs := make([]iter.Seq[*Window], 0, layerCount)
	for _, layer := range wm.layers {
		seqs = append(seqs, xiter.Of(slices.Clone(layer)...))
	}
	return xiter.Concat(seqs...)
}

// WindowsInLayer returns the windows in layer from bottom to top.
func (wm *WindowManager) WindowsInLayer(layer Layer) []*Window {
	return slices.Clone(wm.layers[layer])
}

// WindowsToRender yields the mapped windows in the order in which
// they should be drawn.
func (wm *WindowManager) WindowsToRender() iter.Seq[*Window] {
	return func(yield func(*Window) bool) {
		for w := range wm.Windows() {
			if !w.Mapped() {
				continue
			}
			if !yield(w) {
				return
			}
		}
	}
}

// topDown yields every window from the top of the overlay layer to
// the bottom of the background layer.
func (wm *WindowManager) topDown() iter.Seq[*Window] {
	return func(yield func(*Window) bool) {
		for i := layerCount - 1; i >= 0; i-- {
			layer := slices.Clone(wm.layers[i])
			for j := len(layer) - 1; j >= 0; j-- {
				if !yield(layer[j]) {
					return
				}
			}
		}
	}
}

// WindowAt returns the topmost window whose geometry contains p.
func (wm *WindowManager) WindowAt(p geom.Point[int]) (*Window, bool) {
	for w := range wm.topDown() {
		if w.Extents().Contains(p) {
			return w, true
		}
	}
	return nil, false
}

// WindowBufferAt returns the topmost window whose buffer contains p.
func (wm *WindowManager) WindowBufferAt(p geom.Point[int]) (*Window, bool) {
	for w := range wm.topDown() {
		if w.BufferExtents().Contains(p) {
			return w, true
		}
	}
	return nil, false
}

// WindowForSurface returns the window managing the surface with the
// given ID.
func (wm *WindowManager) WindowForSurface(id SurfaceID) (*Window, bool) {
	if id == 0 {
		return nil, false
	}
	for w := range wm.Windows() {
		if w.surface.ID() == id {
			return w, true
		}
	}
	return nil, false
}

// FocusedWindow returns the window with keyboard focus.
func (wm *WindowManager) FocusedWindow() (*Window, bool) {
	return wm.WindowForSurface(wm.seat.KeyboardFocusedSurface())
}

// WindowHasFocus reports whether w has keyboard focus.
func (wm *WindowManager) WindowHasFocus(w *Window) bool {
	id := wm.seat.KeyboardFocusedSurface()
	return (id != 0) && (w.surface.ID() == id)
}

// FocusWindow gives w keyboard focus, activating it, deactivating the
// previously focused window, and raising w to the top of its layer.
// Windows that can't receive focus are ignored.
func (wm *WindowManager) FocusWindow(w *Window) {
	if !w.CanReceiveFocus() {
		log.Warn("window cannot receive focus", "window", w)
		return
	}
	if w.destroyed || wm.WindowHasFocus(w) {
		return
	}

	if prev, ok := wm.FocusedWindow(); ok {
		prev.SetActivated(false)
	}

	layer := wm.layers[w.layer]
	if i := slices.Index(layer, w); i >= 0 {
		layer = slices.Delete(layer, i, i+1)
		wm.layers[w.layer] = append(layer, w)
	}

	w.SetActivated(true)
	wm.seat.KeyboardNotifyEnter(w.surface.ID())
}

func (wm *WindowManager) clearFocus() {
	if prev, ok := wm.FocusedWindow(); ok {
		prev.SetActivated(false)
	}
	wm.seat.KeyboardClearFocus()
}

func (wm *WindowManager) destroyWindow(w *Window) {
	focused := wm.WindowHasFocus(w)

	layer := wm.layers[w.layer]
	if i := slices.Index(layer, w); i >= 0 {
		wm.layers[w.layer] = slices.Delete(layer, i, i+1)
	}
	w.destroyed = true
	w.mapped = false
	w.outputs = nil
	clear(w.pending)
	log.Debug("window destroyed", "window", w)

	if focused {
		wm.seat.KeyboardClearFocus()
	}

	w.onDestroy.Emit(w)
	wm.policy.AdviseDeleteWindow(w)
}

// windowList returns a snapshot of every window, bottom to top.
func (wm *WindowManager) windowList() []*Window {
	var windows []*Window
	for _, layer := range wm.layers {
		windows = append(windows, layer...)
	}
	return windows
}

func (wm *WindowManager) liveOutputs() []*Output {
	if wm.outputs == nil {
		return nil
	}
	return wm.outputs.outputs
}

func (wm *WindowManager) cursorPosition() geom.Point[float64] {
	if wm.cursor == nil {
		return geom.Point[float64]{}
	}
	return wm.cursor.Position()
}
