package wlral

import (
	"fmt"
	"testing"

	"deedles.dev/wlral/geom"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowExtentsIdentity(t *testing.T) {
	tc := newTestCompositor(DefaultConfig())
	w, _ := tc.addToplevel(geom.Sz(200, 150))

	for _, p := range []geom.Point[int]{geom.Pt(0, 0), geom.Pt(100, 50), geom.Pt(-30, 2000)} {
		w.MoveTo(p)
		assert.Equal(t, geom.RectAt(p, geom.Sz(200, 150)), w.Extents())
		assert.Equal(t, w.Extents(), w.BufferExtents())
	}
}

func TestWindowExtentsWithShadow(t *testing.T) {
	tc := newTestCompositor(DefaultConfig())

	native := newFakeToplevel(geom.Sz(200, 150))
	native.geometry = geom.Rect(10, 10, 200, 150)
	native.buffer = geom.Rect(0, 0, 220, 170)
	w := tc.WindowManager().NewWindow(LayerNormal, NewXDGSurface(native))
	w.MoveTo(geom.Pt(100, 100))

	assert.Equal(t, geom.Rect(100, 100, 200, 150), w.Extents())
	assert.Equal(t, geom.Rect(90, 90, 220, 170), w.BufferExtents())
}

func TestPopupExtents(t *testing.T) {
	tc := newTestCompositor(DefaultConfig())

	parentNative := newFakeToplevel(geom.Sz(200, 150))
	parentNative.geometry = geom.Rect(10, 10, 200, 150)
	parentNative.buffer = geom.Rect(0, 0, 220, 170)
	parent := tc.WindowManager().NewWindow(LayerNormal, NewXDGSurface(parentNative))
	parent.MoveTo(geom.Pt(100, 100))

	popupNative := newFakePopup(parentNative.ID(), geom.Sz(50, 50))
	popupNative.popup.Geometry = geom.Rect(5, 20, 50, 50)
	popupNative.popup.ParentGeometry = parentNative.geometry
	popupNative.popup.ParentIsXDG = true
	popup := tc.WindowManager().NewWindow(LayerNormal, NewXDGSurface(popupNative))

	assert.False(t, popup.CanReceiveFocus())
	assert.Equal(t, geom.Rect(105, 120, 50, 50), popup.Extents())

	parent.MoveTo(geom.Pt(0, 0))
	assert.Equal(t, geom.Rect(5, 20, 50, 50), popup.Extents())
}

func TestSetExtentsIsDeferred(t *testing.T) {
	tc := newTestCompositor(DefaultConfig())
	w, native := tc.addToplevel(geom.Sz(200, 150))
	w.MoveTo(geom.Pt(10, 10))

	w.SetExtents(geom.Rect(50, 60, 300, 200))
	assert.Equal(t, geom.Rect(10, 10, 200, 150), w.Extents(), "extents must not change before the client commits")
	assert.Equal(t, 1, w.PendingUpdates())

	w.HandleCommit(native.ackLatest())
	assert.Equal(t, geom.Rect(50, 60, 300, 200), w.Extents())
	assert.Equal(t, 0, w.PendingUpdates())
}

func TestCommitSupersedesEarlierConfigures(t *testing.T) {
	tc := newTestCompositor(DefaultConfig())
	w, native := tc.addToplevel(geom.Sz(200, 150))

	w.SetExtents(geom.Rect(10, 10, 300, 200))
	w.SetExtents(geom.Rect(20, 20, 400, 300))
	require.Equal(t, 2, w.PendingUpdates())

	w.HandleCommit(native.ackLatest())
	assert.Equal(t, geom.Rect(20, 20, 400, 300), w.Extents())
	assert.Equal(t, 0, w.PendingUpdates())
}

func TestCommitWithUnknownSerial(t *testing.T) {
	tc := newTestCompositor(DefaultConfig())
	w, _ := tc.addToplevel(geom.Sz(200, 150))
	w.MoveTo(geom.Pt(10, 10))
	w.SetExtents(geom.Rect(50, 60, 300, 200))

	w.HandleCommit(9999)
	assert.Equal(t, geom.Pt(10, 10), w.Extents().TopLeft)
	assert.Equal(t, 1, w.PendingUpdates())
	assert.Contains(t, tc.policy.calls, "configured "+idString(w))
}

func TestXwaylandWindow(t *testing.T) {
	tc := newTestCompositor(DefaultConfig())

	native := newFakeXwayland(geom.Rect(0, 0, 300, 200))
	native.hints = &icccm.NormalHints{
		Flags:     icccm.SizeHintPMinSize,
		MinWidth:  100,
		MinHeight: 50,
		MaxWidth:  1000,
		MaxHeight: 1000,
	}
	w := tc.WindowManager().NewWindow(LayerNormal, NewXwaylandSurface(native))
	require.True(t, w.CanReceiveFocus())

	w.MoveTo(geom.Pt(40, 30))
	assert.Equal(t, geom.Rect(40, 30, 300, 200), native.geometry)
	assert.Equal(t, geom.Rect(40, 30, 300, 200), w.Extents())
	assert.Equal(t, geom.Rect(40, 30, 300, 200), w.BufferExtents())

	assert.Equal(t, geom.Sz(100, 50), w.MinSize())
	assert.Equal(t, geom.Size{}, w.MaxSize(), "max size flag is not set")

	w.SetExtents(geom.Rect(0, 0, 400, 250))
	assert.Equal(t, 1, w.PendingUpdates())
	w.HandleCommit(XwaylandConfigureSerial)
	assert.Equal(t, geom.Rect(0, 0, 400, 250), w.Extents())

	w.SetActivated(true)
	assert.True(t, w.Activated())
	assert.True(t, native.activated)
}

func TestLayerSurfaceWindow(t *testing.T) {
	tc := newTestCompositor(DefaultConfig())

	native := newFakeLayer(ShellLayerTop, geom.Sz(1920, 30))
	w := tc.WindowManager().NewWindow(LayerForShell(native.state.Layer), NewLayerSurface(native))
	w.HandleMap()

	assert.Equal(t, LayerTop, w.Layer())
	assert.False(t, w.CanReceiveFocus())
	assert.Equal(t, geom.Rect(0, 0, 1920, 30), w.Extents())

	tc.WindowManager().FocusWindow(w)
	_, focused := tc.WindowManager().FocusedWindow()
	assert.False(t, focused)

	w.SetMaximized(true)
	assert.False(t, w.Maximized())

	w.Resize(geom.Sz(1920, 40))
	assert.Equal(t, geom.Sz(1920, 40), w.Extents().Size)
}

func TestOutputMembership(t *testing.T) {
	tc := newTestCompositor(DefaultConfig())
	left, leftNative := tc.addOutput("left", geom.Sz(1920, 1080))
	right, _ := tc.addOutput("right", geom.Sz(1920, 1080))
	w, native := tc.addToplevel(geom.Sz(200, 150))

	var entered, exited []*Output
	w.OnEnteredOutput().Subscribe(func(out *Output) { entered = append(entered, out) })
	w.OnLeftOutput().Subscribe(func(out *Output) { exited = append(exited, out) })

	w.MoveTo(geom.Pt(100, 100))
	assert.Equal(t, []*Output{left}, w.Outputs())

	w.MoveTo(geom.Pt(1900, 100))
	assert.Equal(t, []*Output{left, right}, w.Outputs())
	assert.Equal(t, []*Output{right}, entered)

	w.MoveTo(geom.Pt(1920, 100))
	assert.Equal(t, []*Output{right}, w.Outputs(), "touching an output's edge is not overlapping it")
	assert.Equal(t, []*Output{left}, exited)
	assert.Contains(t, native.entered, NativeOutput(leftNative))
	assert.Contains(t, native.left, NativeOutput(leftNative))
}

func TestOutputRemovalLeavesWindows(t *testing.T) {
	tc := newTestCompositor(DefaultConfig())
	out, native := tc.addOutput("DP-1", geom.Sz(1920, 1080))
	w, _ := tc.addToplevel(geom.Sz(200, 150))
	w.MoveTo(geom.Pt(0, 0))
	require.Equal(t, []*Output{out}, w.Outputs())

	var events []string
	w.OnLeftOutput().Subscribe(func(o *Output) {
		assert.Equal(t, out, o)
		events = append(events, "left")
	})
	var outputsSeen [][]*Output
	tc.policy.onOutputDelete = func(*Output) {
		outputsSeen = append(outputsSeen, w.Outputs())
	}

	tc.policy.calls = nil
	out.HandleDestroy()
	out.HandleDestroy()

	require.Len(t, outputsSeen, 1)
	assert.Empty(t, outputsSeen[0], "windows have left the output before the policy hears of it")
	assert.Equal(t, []string{"left"}, events)
	assert.Equal(t, []string{"output delete DP-1"}, tc.policy.calls)
	assert.Empty(t, w.Outputs())
	assert.Empty(t, tc.OutputManager().Outputs())
	_, ok := tc.backend.layout.Position(native)
	assert.False(t, ok)
}

func TestWindowDestroy(t *testing.T) {
	tc := newTestCompositor(DefaultConfig())
	w, _ := tc.addToplevel(geom.Sz(200, 150))
	tc.WindowManager().FocusWindow(w)

	tc.policy.onDelete = func(deleted *Window) {
		assert.NotContains(t, tc.WindowManager().WindowsInLayer(LayerNormal), deleted,
			"window must be removed from its layer before the policy is told")
	}
	var destroyed bool
	w.OnDestroy().Subscribe(func(*Window) { destroyed = true })

	w.HandleDestroy()
	assert.True(t, destroyed)
	assert.True(t, w.Destroyed())
	_, focused := tc.WindowManager().FocusedWindow()
	assert.False(t, focused)

	tc.policy.calls = nil
	w.HandleMap()
	w.HandleCommit(1)
	w.HandleRequestMove()
	w.HandleRequestResize(geom.EdgeBottom)
	w.HandleRequestMaximize(true)
	w.HandleDestroy()
	assert.Empty(t, tc.policy.calls, "requests from destroyed windows must be ignored")
}

func TestWindowRequests(t *testing.T) {
	tc := newTestCompositor(DefaultConfig())
	w, _ := tc.addToplevel(geom.Sz(200, 150))
	w.MoveTo(geom.Pt(100, 40))
	tc.backend.cursor.position = geom.Pt(110.0, 50.0)

	var move MoveRequest
	tc.policy.onMove = func(req MoveRequest) { move = req }
	w.HandleRequestMove()
	assert.Equal(t, w, move.Window)
	assert.Equal(t, geom.Pt(10.0, 10.0), move.DragPoint)

	var resize ResizeRequest
	tc.policy.onResize = func(req ResizeRequest) { resize = req }
	w.HandleRequestResize(geom.EdgeBottom | geom.EdgeRight)
	assert.Equal(t, geom.Pt(110.0, 50.0), resize.CursorPosition)
	assert.Equal(t, geom.EdgeBottom|geom.EdgeRight, resize.Edges)
}

func TestUnmapDropsFocus(t *testing.T) {
	tc := newTestCompositor(DefaultConfig())
	w, native := tc.addToplevel(geom.Sz(200, 150))
	tc.WindowManager().FocusWindow(w)
	require.True(t, native.state.Activated)

	w.HandleUnmap()
	assert.False(t, w.Mapped())
	assert.False(t, native.state.Activated)
	assert.False(t, tc.WindowManager().WindowHasFocus(w))
}

func idString(w *Window) string {
	return fmt.Sprint(w.Surface().ID())
}
