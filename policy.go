package wlral

import (
	"errors"

	"deedles.dev/wlral/geom"
)

// ErrPolicyAlreadySet is returned when a second window management
// policy is installed.
var ErrPolicyAlreadySet = errors.New("window management policy already set")

// MoveRequest is a request from a client to start an interactive
// move.
type MoveRequest struct {
	Window *Window

	// DragPoint is where, relative to the window's top-left corner,
	// the cursor grabbed the window.
	DragPoint geom.Point[float64]
}

// ResizeRequest is a request from a client to start an interactive
// resize.
type ResizeRequest struct {
	Window *Window

	// CursorPosition is the cursor's position in the layout when the
	// request was made.
	CursorPosition geom.Point[float64]
	Edges          geom.Edges
}

type MaximizeRequest struct {
	Window   *Window
	Maximize bool
}

type FullscreenRequest struct {
	Window     *Window
	Fullscreen bool

	// Output is the output the client asked to be fullscreened on, or
	// nil if it didn't ask for one.
	Output *Output
}

// WindowManagementPolicy decides how windows are placed and how
// client requests are answered. Exactly one policy is installed on a
// compositor. Callbacks are made synchronously from the event loop.
type WindowManagementPolicy interface {
	// HandleWindowReady is called every time a window is mapped.
	HandleWindowReady(*Window)

	AdviseNewWindow(*Window)
	AdviseConfiguredWindow(*Window)
	AdviseDeleteWindow(*Window)

	HandleRequestMove(MoveRequest)
	HandleRequestResize(ResizeRequest)
	HandleRequestMaximize(MaximizeRequest)
	HandleRequestFullscreen(FullscreenRequest)
	HandleRequestMinimize(*Window)
	HandleRequestActivate(*Window)
	HandleRequestClose(*Window)

	AdviseOutputCreate(*Output)
	AdviseOutputUpdate(*Output)
	AdviseOutputDelete(*Output)
}

// NopPolicy implements every method of WindowManagementPolicy by
// doing nothing. Embed it to implement only some of them.
type NopPolicy struct{}

func (NopPolicy) HandleWindowReady(*Window)                 {}
func (NopPolicy) AdviseNewWindow(*Window)                   {}
func (NopPolicy) AdviseConfiguredWindow(*Window)            {}
func (NopPolicy) AdviseDeleteWindow(*Window)                {}
func (NopPolicy) HandleRequestMove(MoveRequest)             {}
func (NopPolicy) HandleRequestResize(ResizeRequest)         {}
func (NopPolicy) HandleRequestMaximize(MaximizeRequest)     {}
func (NopPolicy) HandleRequestFullscreen(FullscreenRequest) {}
func (NopPolicy) HandleRequestMinimize(*Window)             {}
func (NopPolicy) HandleRequestActivate(*Window)             {}
func (NopPolicy) HandleRequestClose(*Window)                {}
func (NopPolicy) AdviseOutputCreate(*Output)                {}
func (NopPolicy) AdviseOutputUpdate(*Output)                {}
func (NopPolicy) AdviseOutputDelete(*Output)                {}

// policyDispatcher forwards callbacks to the installed policy. Until
// one is installed, callbacks are dropped.
type policyDispatcher struct {
	policy WindowManagementPolicy
}

func (d *policyDispatcher) set(p WindowManagementPolicy) error {
	if d.policy != nil {
		return ErrPolicyAlreadySet
	}
	d.policy = p
	return nil
}

func (d *policyDispatcher) HandleWindowReady(w *Window) {
	if d.policy != nil {
		d.policy.HandleWindowReady(w)
	}
}

func (d *policyDispatcher) AdviseNewWindow(w *Window) {
	if d.policy != nil {
		d.policy.AdviseNewWindow(w)
	}
}

func (d *policyDispatcher) AdviseConfiguredWindow(w *Window) {
	if d.policy != nil {
		d.policy.AdviseConfiguredWindow(w)
	}
}

func (d *policyDispatcher) AdviseDeleteWindow(w *Window) {
	if d.policy != nil {
		d.policy.AdviseDeleteWindow(w)
	}
}

func (d *policyDispatcher) HandleRequestMove(req MoveRequest) {
	if d.policy != nil {
		d.policy.HandleRequestMove(req)
	}
}

func (d *policyDispatcher) HandleRequestResize(req ResizeRequest) {
	if d.policy != nil {
		d.policy.HandleRequestResize(req)
	}
}

func (d *policyDispatcher) HandleRequestMaximize(req MaximizeRequest) {
	if d.policy != nil {
		d.policy.HandleRequestMaximize(req)
	}
}

func (d *policyDispatcher) HandleRequestFullscreen(req FullscreenRequest) {
	if d.policy != nil {
		d.policy.HandleRequestFullscreen(req)
	}
}

func (d *policyDispatcher) HandleRequestMinimize(w *Window) {
	if d.policy != nil {
		d.policy.HandleRequestMinimize(w)
	}
}

func (d *policyDispatcher) HandleRequestActivate(w *Window) {
	if d.policy != nil {
		d.policy.HandleRequestActivate(w)
	}
}

func (d *policyDispatcher) HandleRequestClose(w *Window) {
	if d.policy != nil {
		d.policy.HandleRequestClose(w)
	}
}

func (d *policyDispatcher) AdviseOutputCreate(out *Output) {
	if d.policy != nil {
		d.policy.AdviseOutputCreate(out)
	}
}

func (d *policyDispatcher) AdviseOutputUpdate(out *Output) {
	if d.policy != nil {
		d.policy.AdviseOutputUpdate(out)
	}
}

func (d *policyDispatcher) AdviseOutputDelete(out *Output) {
	if d.policy != nil {
		d.policy.AdviseOutputDelete(out)
	}
}
