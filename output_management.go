package wlral

import (
	"errors"
	"fmt"

	"deedles.dev/wlral/geom"
	"github.com/charmbracelet/log"
)

// ErrOutputTestPending is returned when an output configuration is
// tested while another test has not yet been confirmed or reverted.
var ErrOutputTestPending = errors.New("output configuration test already pending")

// OutputHeadConfig is the desired state of a single output.
type OutputHeadConfig struct {
	Output    *Output
	Enabled   bool
	Mode      *OutputMode
	Position  geom.Point[int]
	Scale     float32
	Transform OutputTransform
}

// OutputConfiguration is the desired state of a set of outputs.
// Outputs that aren't mentioned are left alone.
type OutputConfiguration []OutputHeadConfig

// OutputManagement applies output configurations requested by
// clients, such as display settings tools.
type OutputManagement struct {
	outputs *OutputManager
	timers  Timers
	config  *ConfigManager

	applying bool
	test     *outputTest

	onConfigurationChanged Event[OutputConfiguration]
	onTestReverted         Event[OutputConfiguration]
}

type outputTest struct {
	previous OutputConfiguration
	stop     func()
}

func newOutputManagement(outputs *OutputManager, timers Timers, config *ConfigManager) *OutputManagement {
	m := OutputManagement{
		outputs: outputs,
		timers:  timers,
		config:  config,
	}
	outputs.OnOutputLayoutChange().Subscribe(func(struct{}) {
		if m.applying {
			return
		}
		m.onConfigurationChanged.Emit(m.CurrentConfiguration())
	})
	return &m
}

// OnConfigurationChanged returns an event that is emitted whenever
// the current configuration changes.
func (m *OutputManagement) OnConfigurationChanged() *Event[OutputConfiguration] {
	return &m.onConfigurationChanged
}

// OnTestReverted returns an event that is emitted when a tested
// configuration times out and the previous one is restored.
func (m *OutputManagement) OnTestReverted() *Event[OutputConfiguration] {
	return &m.onTestReverted
}

// CurrentConfiguration returns the state of every output.
func (m *OutputManagement) CurrentConfiguration() OutputConfiguration {
	outputs := m.outputs.Outputs()
	cfg := make(OutputConfiguration, 0, len(outputs))
	for _, out := range outputs {
		head := OutputHeadConfig{
			Output:    out,
			Enabled:   out.Enabled(),
			Position:  out.TopLeft(),
			Scale:     out.Scale(),
			Transform: out.Transform(),
		}
		if mode, ok := out.native.Mode(); ok {
			head.Mode = &mode
		}
		cfg = append(cfg, head)
	}
	return cfg
}

// Apply applies cfg. If any output rejects its new state, every
// output that was already changed is restored and an error is
// returned.
func (m *OutputManagement) Apply(cfg OutputConfiguration) error {
	previous := m.CurrentConfiguration()
	if err := m.apply(cfg); err != nil {
		if rerr := m.apply(previous); rerr != nil {
			log.Error("restore output configuration", "err", rerr)
		}
		return err
	}

	m.onConfigurationChanged.Emit(m.CurrentConfiguration())
	return nil
}

func (m *OutputManagement) apply(cfg OutputConfiguration) error {
	m.applying = true
	defer func() { m.applying = false }()

	for _, head := range cfg {
		if head.Output.destroyed {
			continue
		}

		native := head.Output.native
		native.Enable(head.Enabled)
		if head.Enabled {
			if head.Mode != nil {
				native.SetMode(*head.Mode)
			}
			if head.Scale != 0 {
				native.SetScale(head.Scale)
			}
			native.SetTransform(head.Transform)
		}

		if !native.Test() {
			native.Rollback()
			return fmt.Errorf("output %v rejected configuration", head.Output.Name())
		}
		if err := native.Commit(); err != nil {
			return fmt.Errorf("commit output %v: %w", head.Output.Name(), err)
		}

		if head.Enabled {
			m.outputs.layout.Add(native, head.Position)
		} else {
			m.outputs.layout.Remove(native)
		}
	}

	m.outputs.HandleLayoutChange()
	return nil
}

// Test applies cfg temporarily. Unless ConfirmTest is called before
// the configured timeout elapses, the previous configuration is
// restored.
func (m *OutputManagement) Test(cfg OutputConfiguration) error {
	if m.test != nil {
		return ErrOutputTestPending
	}

	previous := m.CurrentConfiguration()
	if err := m.Apply(cfg); err != nil {
		return err
	}

	timeout := m.config.Config().OutputTestTimeout
	if timeout <= 0 {
		timeout = DefaultOutputTestTimeout
	}

	test := outputTest{previous: previous}
	test.stop = m.timers.AfterFunc(timeout, func() { m.revertTest(&test) })
	m.test = &test
	log.Debug("testing output configuration", "timeout", timeout)
	return nil
}

// TestPending reports whether a tested configuration is waiting to be
// confirmed.
func (m *OutputManagement) TestPending() bool {
	return m.test != nil
}

// ConfirmTest keeps the configuration applied by the pending test.
func (m *OutputManagement) ConfirmTest() {
	if m.test == nil {
		return
	}

	m.test.stop()
	m.test = nil
}

func (m *OutputManagement) revertTest(test *outputTest) {
	if m.test != test {
		return
	}
	m.test = nil

	log.Info("output configuration not confirmed, reverting")
	if err := m.Apply(test.previous); err != nil {
		log.Error("revert output configuration", "err", err)
		return
	}
	m.onTestReverted.Emit(test.previous)
}
