// Package wlral is the core of a Wayland compositor. It manages
// windows, outputs, and input on top of a native display server
// backend, and leaves every window management decision to a
// pluggable WindowManagementPolicy.
//
// All of the types in this package are driven from the backend's
// event loop and are not safe for concurrent use.
package wlral

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
)

// ErrBackendStart is returned when the backend can not be started.
var ErrBackendStart = errors.New("failed to start backend")

// Compositor ties the managers together on top of a backend.
type Compositor struct {
	backend Backend
	config  *ConfigManager
	policy  policyDispatcher

	filters          EventFilterManager
	windows          *WindowManager
	outputs          *OutputManager
	outputManagement *OutputManagement
	cursor           *CursorManager
	keyboards        *KeyboardManager
	gestures         *GestureFilter
}

// NewCompositor creates a compositor on backend and starts the
// backend. If config is nil, DefaultConfig is used.
func NewCompositor(backend Backend, config *ConfigManager) (*Compositor, error) {
	if config == nil {
		config = NewConfigManager(DefaultConfig())
	}

	c := Compositor{
		backend: backend,
		config:  config,
	}
	seat := backend.Seat()
	cursor := backend.Cursor()

	c.windows = newWindowManager(seat, cursor, &c.policy)
	c.outputs = newOutputManager(backend.OutputLayout(), c.windows, config, &c.policy)
	c.outputManagement = newOutputManagement(c.outputs, backend.Timers(), config)
	c.cursor = newCursorManager(cursor, seat, c.windows, &c.filters)
	c.keyboards = newKeyboardManager(seat, &c.filters, config)

	c.gestures = newGestureFilter(c.windows, cursor)
	c.filters.Add(c.gestures)
	if session := backend.Session(); session != nil {
		c.filters.Add(NewVTSwitchFilter(session))
	}

	backend.Bind(&c)
	if err := backend.Start(); err != nil {
		backend.Destroy()
		return nil, fmt.Errorf("%w: %w", ErrBackendStart, err)
	}
	log.Debug("backend started")

	return &c, nil
}

func (c *Compositor) Config() *ConfigManager {
	return c.config
}

func (c *Compositor) WindowManager() *WindowManager {
	return c.windows
}

func (c *Compositor) OutputManager() *OutputManager {
	return c.outputs
}

func (c *Compositor) OutputManagement() *OutputManagement {
	return c.outputManagement
}

func (c *Compositor) CursorManager() *CursorManager {
	return c.cursor
}

func (c *Compositor) KeyboardManager() *KeyboardManager {
	return c.keyboards
}

// Gestures returns the filter that implements interactive moves and
// resizes. Policies start gestures with it in response to client
// requests.
func (c *Compositor) Gestures() *GestureFilter {
	return c.gestures
}

// AddEventFilter adds f after the filters that are already installed.
func (c *Compositor) AddEventFilter(f EventFilter) Listener {
	return c.filters.Add(f)
}

// SetPolicy installs the window management policy. It may only be
// called once.
func (c *Compositor) SetPolicy(p WindowManagementPolicy) error {
	return c.policy.set(p)
}

// Run installs p as the window management policy and runs the
// backend's event loop until the display is terminated. If p also
// implements EventFilter, it is added as an event filter.
func (c *Compositor) Run(p WindowManagementPolicy) error {
	if err := c.SetPolicy(p); err != nil {
		return err
	}
	if f, ok := p.(EventFilter); ok {
		c.AddEventFilter(f)
	}

	defer c.backend.Destroy()
	return c.backend.Run()
}
