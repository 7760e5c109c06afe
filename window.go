package wlral

import (
	"fmt"
	"maps"

	"deedles.dev/wlral/geom"
	"github.com/charmbracelet/log"
	"golang.org/x/exp/slices"
)

// Window is a client surface placed in the layout.
//
// A window's position is authoritative on the compositor side but its
// size is chosen by the client. A size change requested by the
// compositor is only applied, along with any move that accompanies
// it, once the client commits a buffer acknowledging it.
type Window struct {
	manager *WindowManager
	layer   Layer
	surface *Surface

	mapped    bool
	destroyed bool
	topLeft   geom.Point[int]

	// pending maps configure serials to the position that the window
	// should move to when the client acknowledges them.
	pending map[uint32]geom.Point[int]

	outputs         []*Output
	minimizeTargets []geom.Rectangle

	onEnteredOutput Event[*Output]
	onLeftOutput    Event[*Output]
	onDestroy       Event[*Window]
}

func (w *Window) Layer() Layer {
	return w.layer
}

func (w *Window) Surface() *Surface {
	return w.surface
}

func (w *Window) Mapped() bool {
	return w.mapped
}

// Destroyed reports whether the window's surface has been destroyed.
// A destroyed window is no longer managed and all of its requests are
// ignored.
func (w *Window) Destroyed() bool {
	return w.destroyed
}

// parent returns the window of the surface that w's surface is
// attached to, if any.
func (w *Window) parent() *Window {
	id, ok := w.surface.ParentID()
	if !ok {
		return nil
	}
	parent, _ := w.manager.WindowForSurface(id)
	return parent
}

// positionDisplacement converts surface-local coordinates to layout
// coordinates.
func (w *Window) positionDisplacement() geom.Displacement[int] {
	d := w.topLeft.AsDisplacement()
	if parent := w.parent(); parent != nil {
		d = d.Add(parent.BufferExtents().TopLeft.AsDisplacement())
	}
	return d.Add(w.surface.ParentDisplacement()).Sub(w.surface.BufferDisplacement())
}

// Extents returns the window's geometry in layout coordinates.
func (w *Window) Extents() geom.Rectangle {
	return w.surface.Extents().Add(w.positionDisplacement())
}

// BufferExtents returns the area covered by the window's buffer in
// layout coordinates. It includes any client-side decorations, such
// as shadows, outside of the window's geometry.
func (w *Window) BufferExtents() geom.Rectangle {
	return w.surface.BufferRect().Add(w.positionDisplacement())
}

// MoveTo moves the window's top-left corner to p immediately.
func (w *Window) MoveTo(p geom.Point[int]) {
	w.topLeft = p
	w.surface.MoveTo(p)
	w.UpdateOutputs()
}

// Resize asks the client to resize the window. The window keeps its
// position.
func (w *Window) Resize(size geom.Size) {
	w.surface.Resize(size)
}

// SetExtents asks the client to take on the size of r and moves the
// window to r's position once it has done so.
func (w *Window) SetExtents(r geom.Rectangle) {
	serial := w.surface.Resize(r.Size)
	w.pending[serial] = r.TopLeft
}

// PendingUpdates returns the number of unacknowledged calls to
// SetExtents.
func (w *Window) PendingUpdates() int {
	return len(w.pending)
}

func (w *Window) CanReceiveFocus() bool {
	return w.surface.CanReceiveFocus()
}

func (w *Window) Activated() bool {
	return w.surface.Activated()
}

func (w *Window) SetActivated(activated bool) {
	w.surface.SetActivated(activated)
}

func (w *Window) Maximized() bool {
	return w.surface.Maximized()
}

func (w *Window) SetMaximized(maximized bool) {
	w.surface.SetMaximized(maximized)
}

func (w *Window) Fullscreen() bool {
	return w.surface.Fullscreen()
}

func (w *Window) SetFullscreen(fullscreen bool) {
	w.surface.SetFullscreen(fullscreen)
}

func (w *Window) Resizing() bool {
	return w.surface.Resizing()
}

func (w *Window) SetResizing(resizing bool) {
	w.surface.SetResizing(resizing)
}

func (w *Window) Title() string {
	return w.surface.Title()
}

func (w *Window) AppID() string {
	return w.surface.AppID()
}

func (w *Window) MinSize() geom.Size {
	return w.surface.MinSize()
}

func (w *Window) MaxSize() geom.Size {
	return w.surface.MaxSize()
}

func (w *Window) AskClientToClose() {
	w.surface.AskClientToClose()
}

// Outputs returns the outputs that the window overlaps.
func (w *Window) Outputs() []*Output {
	return slices.Clone(w.outputs)
}

// MinimizeTargets returns the areas, such as taskbar entries, that a
// minimize animation of the window should head toward.
func (w *Window) MinimizeTargets() []geom.Rectangle {
	return slices.Clone(w.minimizeTargets)
}

func (w *Window) SetMinimizeTargets(targets []geom.Rectangle) {
	w.minimizeTargets = slices.Clone(targets)
}

// OnEnteredOutput returns an event that is emitted when the window
// starts to overlap an output.
func (w *Window) OnEnteredOutput() *Event[*Output] {
	return &w.onEnteredOutput
}

// OnLeftOutput returns an event that is emitted when the window
// stops overlapping an output, including when the output is removed.
func (w *Window) OnLeftOutput() *Event[*Output] {
	return &w.onLeftOutput
}

func (w *Window) OnDestroy() *Event[*Window] {
	return &w.onDestroy
}

// UpdateOutputs recomputes the set of outputs that the window
// overlaps, emitting OnEnteredOutput and OnLeftOutput for every
// change.
func (w *Window) UpdateOutputs() {
	ext := w.Extents()

	var current, entered []*Output
	for _, out := range w.manager.liveOutputs() {
		if !out.Extents().Overlaps(ext) {
			continue
		}
		current = append(current, out)
		if !slices.Contains(w.outputs, out) {
			entered = append(entered, out)
		}
	}

	var left []*Output
	for _, out := range w.outputs {
		if !slices.Contains(current, out) {
			left = append(left, out)
		}
	}

	w.outputs = current
	for _, out := range left {
		if !out.destroyed {
			w.surface.sendLeave(out)
		}
		w.onLeftOutput.Emit(out)
	}
	for _, out := range entered {
		w.surface.sendEnter(out)
		w.onEnteredOutput.Emit(out)
	}
}

// HandleMap must be called by the backend when the window's surface
// is mapped.
func (w *Window) HandleMap() {
	if w.destroyed {
		return
	}

	w.mapped = true
	log.Debug("window mapped", "window", w, "layer", w.layer)
	w.UpdateOutputs()
	w.manager.policy.HandleWindowReady(w)
}

// HandleUnmap must be called by the backend when the window's surface
// is unmapped.
func (w *Window) HandleUnmap() {
	if w.destroyed {
		return
	}

	w.mapped = false
	if w.manager.WindowHasFocus(w) {
		w.manager.clearFocus()
	}
}

// HandleCommit must be called by the backend when the client commits
// the window's surface. serial is the last configure serial that the
// client has acknowledged.
func (w *Window) HandleCommit(serial uint32) {
	if w.destroyed {
		return
	}

	if p, ok := w.pending[serial]; ok {
		// Acknowledging a configure implicitly acknowledges every
		// earlier one.
		maps.DeleteFunc(w.pending, func(s uint32, _ geom.Point[int]) bool { return s <= serial })
		w.MoveTo(p)
	} else {
		w.UpdateOutputs()
	}

	if w.manager.WindowHasFocus(w) && !w.CanReceiveFocus() {
		w.manager.clearFocus()
	}

	w.manager.policy.AdviseConfiguredWindow(w)
}

// HandleDestroy must be called by the backend when the window's
// surface is destroyed.
func (w *Window) HandleDestroy() {
	if w.destroyed {
		return
	}

	w.manager.destroyWindow(w)
}

// HandleRequestMove must be called by the backend when the client
// asks to be moved interactively. The cursor's current position is
// used as the drag point.
func (w *Window) HandleRequestMove() {
	if w.destroyed {
		return
	}

	cursor := w.manager.cursorPosition()
	w.manager.policy.HandleRequestMove(MoveRequest{
		Window:    w,
		DragPoint: cursor.Sub(geom.PConv[float64](w.topLeft).AsDisplacement()),
	})
}

// HandleRequestResize must be called by the backend when the client
// asks to be resized interactively.
func (w *Window) HandleRequestResize(edges geom.Edges) {
	if w.destroyed {
		return
	}

	w.manager.policy.HandleRequestResize(ResizeRequest{
		Window:         w,
		CursorPosition: w.manager.cursorPosition(),
		Edges:          edges,
	})
}

func (w *Window) HandleRequestMaximize(maximize bool) {
	if w.destroyed {
		return
	}

	w.manager.policy.HandleRequestMaximize(MaximizeRequest{
		Window:   w,
		Maximize: maximize,
	})
}

// HandleRequestFullscreen must be called by the backend when the
// client asks to enter or leave fullscreen. out may be nil.
func (w *Window) HandleRequestFullscreen(fullscreen bool, out *Output) {
	if w.destroyed {
		return
	}

	w.manager.policy.HandleRequestFullscreen(FullscreenRequest{
		Window:     w,
		Fullscreen: fullscreen,
		Output:     out,
	})
}

func (w *Window) HandleRequestMinimize() {
	if w.destroyed {
		return
	}

	w.manager.policy.HandleRequestMinimize(w)
}

func (w *Window) HandleRequestActivate() {
	if w.destroyed {
		return
	}

	w.manager.policy.HandleRequestActivate(w)
}

func (w *Window) HandleRequestClose() {
	if w.destroyed {
		return
	}

	w.manager.policy.HandleRequestClose(w)
}

func (w *Window) String() string {
	if title := w.Title(); title != "" {
		return fmt.Sprintf("%v %q", w.surface, title)
	}
	return w.surface.String()
}
