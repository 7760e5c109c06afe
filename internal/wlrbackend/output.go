package wlrbackend

import (
	"errors"
	"fmt"
	"image"
	"time"

	"deedles.dev/wlr"
	"deedles.dev/wlral"
	"deedles.dev/wlral/geom"
	xgeom "deedles.dev/ximage/geom"
	"github.com/charmbracelet/log"
)

var errCommit = errors.New("output commit failed")

type outputState struct {
	enabled   bool
	mode      wlral.OutputMode
	hasMode   bool
	scale     float32
	transform wlral.OutputTransform
}

// output adapts a wlroots output to wlral.NativeOutput. wlroots only
// exposes committed state, so pending state is tracked here to allow
// it to be rolled back.
type output struct {
	b    *Backend
	wout wlr.Output
	out  *wlral.Output

	current outputState
	pending outputState

	inLayout bool
}

func (o *output) Name() string {
	return o.wout.Name()
}

// Description returns the output's name. The bindings don't expose
// the make and model.
func (o *output) Description() string {
	return o.wout.Name()
}

func (o *output) Enabled() bool {
	return o.current.enabled
}

func (o *output) Mode() (wlral.OutputMode, bool) {
	return o.current.mode, o.current.hasMode
}

func convertMode(mode wlr.OutputMode) wlral.OutputMode {
	return wlral.OutputMode{
		Size:    geom.Sz(int(mode.Width()), int(mode.Height())),
		Refresh: int(mode.RefreshRate()),
	}
}

func (o *output) Modes() []wlral.OutputMode {
	var r []wlral.OutputMode
	for mode := range o.wout.Modes() {
		r = append(r, convertMode(mode))
	}
	return r
}

func (o *output) PreferredMode() (wlral.OutputMode, bool) {
	mode := o.wout.PreferredMode()
	if !mode.Valid() {
		return wlral.OutputMode{}, false
	}
	return convertMode(mode), true
}

func (o *output) Scale() float32 {
	return o.current.scale
}

func (o *output) Transform() wlral.OutputTransform {
	return o.current.transform
}

func (o *output) Enable(enable bool) {
	o.pending.enabled = enable
	o.wout.Enable(enable)
}

func (o *output) SetMode(mode wlral.OutputMode) {
	for m := range o.wout.Modes() {
		if convertMode(m) == mode {
			o.pending.mode = mode
			o.pending.hasMode = true
			o.wout.SetMode(m)
			return
		}
	}
	log.Warn("unknown mode", "output", o.Name(), "size", mode.Size, "refresh", mode.Refresh)
}

// SetCustomMode falls back to the listed mode of the given size whose
// refresh rate is closest. The bindings can't set arbitrary modes.
func (o *output) SetCustomMode(size geom.Size, refresh int) {
	var (
		best  wlr.OutputMode
		found bool
	)
	for m := range o.wout.Modes() {
		mode := convertMode(m)
		if mode.Size != size {
			continue
		}
		if !found || (refreshDistance(mode.Refresh, refresh) < refreshDistance(int(best.RefreshRate()), refresh)) {
			best, found = m, true
		}
	}
	if !found {
		log.Warn("no mode for custom mode", "output", o.Name(), "size", size, "refresh", refresh)
		return
	}

	o.pending.mode = convertMode(best)
	o.pending.hasMode = true
	o.wout.SetMode(best)
}

func refreshDistance(r1, r2 int) int {
	if r1 > r2 {
		return r1 - r2
	}
	return r2 - r1
}

func (o *output) SetScale(scale float32) {
	o.pending.scale = scale
	o.wout.SetScale(scale)
}

func (o *output) SetTransform(transform wlral.OutputTransform) {
	o.pending.transform = transform
	o.wout.SetTransform(wlr.OutputTransform(transform))
}

// Test always passes. A configuration that the hardware rejects is
// caught by Commit instead.
func (o *output) Test() bool {
	return true
}

// Commit applies the pending state and notifies the wrapping
// wlral.Output of every change.
func (o *output) Commit() error {
	o.wout.Commit()
	if err := o.verify(); err != nil {
		o.Rollback()
		return err
	}

	prev := o.current
	o.current = o.pending
	if o.out == nil {
		return nil
	}

	if prev.enabled != o.current.enabled {
		o.out.HandleEnable()
	}
	if (prev.mode != o.current.mode) || (prev.hasMode != o.current.hasMode) {
		o.out.HandleMode()
	}
	if prev.scale != o.current.scale {
		o.out.HandleScale()
	}
	if prev.transform != o.current.transform {
		o.out.HandleTransform()
	}
	return nil
}

// verify checks that the output took on the pending state. The
// bindings don't report whether a commit succeeded, so the committed
// state is read back instead.
func (o *output) verify() error {
	if !o.pending.enabled {
		return nil
	}

	if o.pending.hasMode {
		size := geom.Sz(o.wout.Width(), o.wout.Height())
		if size != o.pending.mode.Size {
			return fmt.Errorf("%w: %v has size %v, not %v", errCommit, o.Name(), size, o.pending.mode.Size)
		}
	}
	if o.wout.Scale() != o.pending.scale {
		return fmt.Errorf("%w: %v has scale %v, not %v", errCommit, o.Name(), o.wout.Scale(), o.pending.scale)
	}
	if wlral.OutputTransform(o.wout.Transform()) != o.pending.transform {
		return fmt.Errorf("%w: %v has transform %v, not %v", errCommit, o.Name(), o.wout.Transform(), o.pending.transform)
	}
	return nil
}

func (o *output) Rollback() {
	o.pending = o.current
	o.wout.Rollback()
}

func (o *output) EffectiveResolution() geom.Size {
	w, h := o.wout.EffectiveResolution()
	return geom.Sz(w, h)
}

func (o *output) CreateGlobal() {
	o.wout.CreateGlobal()
}

// Destroy disables the output. Outputs belong to the wlroots backend
// and the bindings can't destroy them.
func (o *output) Destroy() {
	delete(o.b.outputs, o.wout)
	o.wout.Enable(false)
	o.wout.Commit()
}

func (b *Backend) onNewOutput(wout wlr.Output) {
	wout.InitRender(b.allocator, b.renderer)

	o := output{
		b:       b,
		wout:    wout,
		current: outputState{scale: 1},
	}
	o.pending = o.current
	b.outputs[wout] = &o

	out, err := b.c.OutputManager().HandleNewOutput(&o)
	if err != nil {
		return
	}
	o.out = out

	wout.OnFrame(func(wlr.Output) { b.onFrame(&o) })
	wout.OnDestroy(func(wlr.Output) {
		delete(b.outputs, wout)
		out.HandleDestroy()
	})
}

// outputFor returns the wlral.Output for wout, if there is one.
func (b *Backend) outputFor(wout wlr.Output) (*wlral.Output, bool) {
	o, ok := b.outputs[wout]
	if !ok || (o.out == nil) {
		return nil, false
	}
	return o.out, true
}

func (b *Backend) onFrame(o *output) {
	defer b.timers.Run()

	for _, tree := range b.surfaces {
		tree.observe()
	}

	_, err := o.wout.AttachRender()
	if err != nil {
		log.Error("output attach render", "output", o.Name(), "err", err)
		return
	}
	defer o.wout.Commit()

	b.renderer.Begin(o.wout, o.wout.Width(), o.wout.Height())
	defer b.renderer.End()

	b.renderer.Clear(o.out.Background())
	for w := range b.c.WindowManager().WindowsToRender() {
		b.renderWindow(o, w)
	}
	o.wout.RenderSoftwareCursors(image.ZR)
}

func (b *Backend) renderWindow(o *output, w *wlral.Window) {
	ext := w.BufferExtents()
	if !ext.Overlaps(o.out.Extents()) {
		return
	}

	tree, ok := b.surfaces[w.Surface().ID()]
	if !ok {
		return
	}

	origin := ext.TopLeft.Sub(o.out.TopLeft().AsDisplacement())
	tree.forEachSurface(func(s wlr.Surface, x, y int) {
		b.renderSurface(o, s, origin.Add(geom.Disp(x, y)))
	})
}

func (b *Backend) renderSurface(o *output, s wlr.Surface, p geom.Point[int]) {
	texture := s.GetTexture()
	if !texture.Valid() {
		return
	}

	current := s.Current()
	box := surfaceBox(geom.Sz(current.Width(), current.Height()), p, float64(o.out.Scale()))

	tr := current.Transform().Invert()
	m := wlr.ProjectBoxMatrix(box.ImageRect(), tr, 0, o.wout.TransformMatrix())

	b.renderer.RenderTextureWithMatrix(texture, m, 1)
	s.SendFrameDone(time.Now())
}

// surfaceBox returns the box in output pixels covered by a surface of
// the given size at p in output-local logical coordinates. Both
// corners are scaled so that neighbouring surfaces still meet after
// rounding.
func surfaceBox(size geom.Size, p geom.Point[int], scale float64) xgeom.Rect[float64] {
	box := xgeom.RConv[float64](xgeom.Rt(0, 0, size.Width, size.Height).Add(xgeom.Pt(p.X, p.Y)))
	return xgeom.Rect[float64]{Min: box.Min.Mul(scale), Max: box.Max.Mul(scale)}
}

type outputLayout struct {
	b *Backend
}

func (l outputLayout) AddAuto(out wlral.NativeOutput) {
	if o, ok := out.(*output); ok {
		l.b.layout.AddAuto(o.wout)
		o.inLayout = true
	}
}

func (l outputLayout) Add(out wlral.NativeOutput, p geom.Point[int]) {
	if o, ok := out.(*output); ok {
		l.b.layout.Add(o.wout, p.X, p.Y)
		o.inLayout = true
	}
}

// Remove only forgets the output's position. The bindings can't take
// an output out of the wlroots layout, which happens by itself when
// the output is destroyed.
func (l outputLayout) Remove(out wlral.NativeOutput) {
	if o, ok := out.(*output); ok {
		o.inLayout = false
	}
}

func (l outputLayout) Position(out wlral.NativeOutput) (geom.Point[int], bool) {
	o, ok := out.(*output)
	if !ok || !o.inLayout {
		return geom.Point[int]{}, false
	}

	lo := l.b.layout.Get(o.wout)
	return geom.Pt(lo.X(), lo.Y()), true
}
