package wlral

import (
	"errors"
	"fmt"
	"image/color"
	"time"

	"deedles.dev/wlral/geom"
	"github.com/charmbracelet/log"
	"golang.org/x/exp/slices"
)

var (
	// ErrNoMode is returned when an output has no usable mode.
	ErrNoMode = errors.New("no usable output mode")
)

// Output is a display attached to the compositor.
type Output struct {
	native    NativeOutput
	manager   *OutputManager
	createdAt time.Time

	background color.Color
	destroyed  bool

	onDestroy Event[*Output]
}

// Native returns the backend's handle for the output.
func (out *Output) Native() NativeOutput {
	return out.native
}

func (out *Output) Name() string {
	return out.native.Name()
}

func (out *Output) Description() string {
	return out.native.Description()
}

func (out *Output) Enabled() bool {
	return out.native.Enabled()
}

func (out *Output) Scale() float32 {
	return out.native.Scale()
}

func (out *Output) Transform() OutputTransform {
	return out.native.Transform()
}

// CreatedAt returns the time at which the output was added.
func (out *Output) CreatedAt() time.Time {
	return out.createdAt
}

// Background returns the color that is shown where no window covers
// the output.
func (out *Output) Background() color.Color {
	return out.background
}

// TopLeft returns the output's position in the layout.
func (out *Output) TopLeft() geom.Point[int] {
	p, _ := out.manager.layout.Position(out.native)
	return p
}

// Size returns the output's size in logical coordinates.
func (out *Output) Size() geom.Size {
	return out.native.EffectiveResolution()
}

// Extents returns the area of the layout that the output shows.
func (out *Output) Extents() geom.Rectangle {
	return geom.RectAt(out.TopLeft(), out.Size())
}

// OnDestroy returns an event that is emitted when the output is
// removed.
func (out *Output) OnDestroy() *Event[*Output] {
	return &out.onDestroy
}

// UsePreferredMode switches the output to its preferred mode.
func (out *Output) UsePreferredMode() error {
	mode, ok := out.native.PreferredMode()
	if !ok {
		// Some backends, such as nested ones, have no modes at all.
		if len(out.native.Modes()) != 0 {
			return ErrNoMode
		}
		return nil
	}

	out.native.SetMode(mode)
	out.native.Enable(true)
	if err := out.native.Commit(); err != nil {
		return fmt.Errorf("commit mode %vx%v: %w", mode.Size.Width, mode.Size.Height, err)
	}
	return nil
}

// SetCustomMode sets an arbitrary resolution and refresh rate. Only
// some backends support it.
func (out *Output) SetCustomMode(size geom.Size, refresh int) error {
	out.native.SetCustomMode(size, refresh)
	if err := out.native.Commit(); err != nil {
		return fmt.Errorf("commit custom mode: %w", err)
	}
	return nil
}

// HandleEnable must be called by the backend when the output is
// enabled or disabled.
func (out *Output) HandleEnable() {
	out.manager.advise(out)
}

// HandleMode must be called by the backend when the output's mode
// changes.
func (out *Output) HandleMode() {
	out.manager.advise(out)
}

// HandleScale must be called by the backend when the output's scale
// changes.
func (out *Output) HandleScale() {
	out.manager.advise(out)
}

// HandleTransform must be called by the backend when the output's
// transform changes.
func (out *Output) HandleTransform() {
	out.manager.advise(out)
}

// HandleDestroy must be called by the backend when the output is
// going away.
func (out *Output) HandleDestroy() {
	out.manager.destroyOutput(out)
}

func (out *Output) String() string {
	return out.Name()
}

// OutputManager tracks the outputs attached to the compositor.
type OutputManager struct {
	layout  OutputLayout
	windows *WindowManager
	config  *ConfigManager
	policy  *policyDispatcher

	outputs []*Output

	onNewOutput    Event[*Output]
	onLayoutChange Event[struct{}]
	configListener Listener
}

func newOutputManager(layout OutputLayout, windows *WindowManager, config *ConfigManager, policy *policyDispatcher) *OutputManager {
	m := OutputManager{
		layout:  layout,
		windows: windows,
		config:  config,
		policy:  policy,
	}
	windows.outputs = &m
	m.configListener = config.OnConfigChanged().Subscribe(m.onConfigChanged)
	return &m
}

// Outputs returns the live outputs in the order in which they were
// added.
func (m *OutputManager) Outputs() []*Output {
	return slices.Clone(m.outputs)
}

// OnNewOutput returns an event that is emitted after an output has
// been configured and added.
func (m *OutputManager) OnNewOutput() *Event[*Output] {
	return &m.onNewOutput
}

// OnOutputLayoutChange returns an event that is emitted whenever the
// arrangement of outputs changes.
func (m *OutputManager) OnOutputLayoutChange() *Event[struct{}] {
	return &m.onLayoutChange
}

// OutputAt returns the output that contains p.
func (m *OutputManager) OutputAt(p geom.Point[int]) (*Output, bool) {
	for _, out := range m.outputs {
		if out.Extents().Contains(p) {
			return out, true
		}
	}
	return nil, false
}

// OutputFor returns the output wrapping native.
func (m *OutputManager) OutputFor(native NativeOutput) (*Output, bool) {
	i := slices.IndexFunc(m.outputs, func(out *Output) bool { return out.native == native })
	if i < 0 {
		return nil, false
	}
	return m.outputs[i], true
}

// HandleNewOutput must be called by the backend when a new output
// appears. If the output can not be given a mode it is destroyed and
// an error is returned.
func (m *OutputManager) HandleNewOutput(native NativeOutput) (*Output, error) {
	out := Output{
		native:    native,
		manager:   m,
		createdAt: time.Now(),
	}

	cfg := m.config.Config()
	out.background = cfg.Background.Color()

	oc := cfg.Output(native.Name())
	if err := m.setOutputMode(&out, oc); err != nil {
		log.Error("output mode", "output", native.Name(), "err", err)
		native.Destroy()
		return nil, err
	}
	m.layoutOutput(&out, oc)
	if oc != nil {
		m.configureOutput(&out, oc)
	}

	native.CreateGlobal()
	m.outputs = append(m.outputs, &out)
	log.Debug("new output", "output", native.Name(), "extents", out.Extents())

	m.onNewOutput.Emit(&out)
	m.policy.AdviseOutputCreate(&out)
	m.HandleLayoutChange()
	return &out, nil
}

func (m *OutputManager) setOutputMode(out *Output, config *OutputConfig) error {
	modes := out.native.Modes()
	if (config == nil) || config.Size.Empty() || (len(modes) == 0) {
		return out.UsePreferredMode()
	}

	for _, mode := range modes {
		if mode.Size == config.Size {
			out.native.SetMode(mode)
			out.native.Enable(true)
			if err := out.native.Commit(); err != nil {
				return fmt.Errorf("commit configured mode: %w", err)
			}
			return nil
		}
	}

	log.Warn("configured mode not available", "output", out.Name(), "size", config.Size)
	return out.UsePreferredMode()
}

func (m *OutputManager) layoutOutput(out *Output, config *OutputConfig) {
	if (config == nil) || (config.Position == nil) {
		m.layout.AddAuto(out.native)
		return
	}

	m.layout.Add(out.native, *config.Position)
}

func (m *OutputManager) configureOutput(out *Output, config *OutputConfig) {
	var changed bool
	if config.Scale != 0 {
		out.native.SetScale(config.Scale)
		changed = true
	}
	if config.Transform != TransformNormal {
		out.native.SetTransform(config.Transform)
		changed = true
	}
	if !changed {
		return
	}

	if err := out.native.Commit(); err != nil {
		log.Error("output config", "output", out.Name(), "err", err)
	}
}

// HandleLayoutChange must be called by the backend when the output
// layout changes. Every window's output membership is recomputed.
func (m *OutputManager) HandleLayoutChange() {
	for _, w := range m.windows.windowList() {
		w.UpdateOutputs()
	}
	m.onLayoutChange.Emit(struct{}{})
}

// advise reports a change to out. Changes to the mode, scale and
// transform alter out's extents, so window membership is recomputed
// first.
func (m *OutputManager) advise(out *Output) {
	if out.destroyed {
		return
	}
	m.HandleLayoutChange()
	m.policy.AdviseOutputUpdate(out)
}

func (m *OutputManager) destroyOutput(out *Output) {
	i := slices.Index(m.outputs, out)
	if i < 0 {
		return
	}
	m.outputs = slices.Delete(m.outputs, i, i+1)
	out.destroyed = true
	m.layout.Remove(out.native)
	log.Debug("output destroyed", "output", out.Name())

	for _, w := range m.windows.windowList() {
		w.UpdateOutputs()
	}
	out.onDestroy.Emit(out)
	m.policy.AdviseOutputDelete(out)
	m.onLayoutChange.Emit(struct{}{})
}

func (m *OutputManager) onConfigChanged(cfg Config) {
	bg := cfg.Background.Color()
	for _, out := range m.outputs {
		out.background = bg
	}
}
