package wlral

import (
	"github.com/charmbracelet/log"
	"golang.org/x/exp/slices"
)

// KeyboardManager configures keyboards and routes key events through
// the event filters.
type KeyboardManager struct {
	seat    Seat
	filters *EventFilterManager
	config  *ConfigManager

	keyboards []NativeKeyboard
}

func newKeyboardManager(seat Seat, filters *EventFilterManager, config *ConfigManager) *KeyboardManager {
	m := KeyboardManager{
		seat:    seat,
		filters: filters,
		config:  config,
	}
	config.OnConfigChanged().Subscribe(func(cfg Config) {
		for _, kb := range m.keyboards {
			m.configure(kb, cfg.Keyboard)
		}
	})
	return &m
}

// HasKeyboard reports whether any keyboard is attached.
func (m *KeyboardManager) HasKeyboard() bool {
	return len(m.keyboards) != 0
}

func (m *KeyboardManager) Keyboards() []NativeKeyboard {
	return slices.Clone(m.keyboards)
}

// HandleNewKeyboard must be called by the backend when a keyboard is
// attached.
func (m *KeyboardManager) HandleNewKeyboard(kb NativeKeyboard) {
	m.configure(kb, m.config.Config().Keyboard)
	m.keyboards = append(m.keyboards, kb)
	log.Debug("new keyboard", "keyboard", kb.Name())
}

// HandleKeyboardDestroy must be called by the backend when a keyboard
// is detached.
func (m *KeyboardManager) HandleKeyboardDestroy(kb NativeKeyboard) {
	i := slices.Index(m.keyboards, kb)
	if i < 0 {
		return
	}
	m.keyboards = slices.Delete(m.keyboards, i, i+1)
}

func (m *KeyboardManager) configure(kb NativeKeyboard, cfg KeyboardConfig) {
	if err := kb.SetKeymap(cfg); err != nil {
		log.Error("set keymap", "keyboard", kb.Name(), "err", err)
	}
	kb.SetRepeatInfo(cfg.RepeatRate, cfg.RepeatDelay)
}

// HandleKey must be called by the backend when a key is pressed or
// released.
func (m *KeyboardManager) HandleKey(ev KeyboardEvent) {
	if m.filters.HandleKeyboardEvent(ev) {
		return
	}

	m.seat.KeyboardNotifyKey(ev.Time, ev.Keycode, ev.State)
}

// HandleModifiers must be called by the backend when the modifier
// state changes.
func (m *KeyboardManager) HandleModifiers(mods Modifiers) {
	m.seat.KeyboardNotifyModifiers(mods)
}
