package wlrbackend

import (
	"fmt"
	"time"

	"deedles.dev/wlr"
	"deedles.dev/wlr/xkb"
	"deedles.dev/wlral"
	"deedles.dev/wlral/geom"
	"github.com/charmbracelet/log"
)

type seat struct {
	b *Backend
}

func (s seat) KeyboardFocusedSurface() wlral.SurfaceID {
	return s.b.idOf(s.b.seat.KeyboardState().FocusedSurface())
}

func (s seat) KeyboardNotifyEnter(id wlral.SurfaceID) {
	surface, err := s.b.surfaceOf(id)
	if err != nil {
		log.Error("keyboard enter", "err", err)
		return
	}

	if !s.hasKeyboard() {
		s.b.seat.KeyboardNotifyEnter(surface, nil, wlr.KeyboardModifiers{})
		return
	}

	keyboard := s.b.seat.GetKeyboard()
	s.b.seat.KeyboardNotifyEnter(surface, keyboard.Keycodes(), keyboard.Modifiers())
}

// KeyboardClearFocus does nothing. The bindings can't clear keyboard
// focus, so the last focused client keeps it until another surface is
// entered or the surface goes away, at which point wlroots clears it
// itself.
func (s seat) KeyboardClearFocus() {
	log.Debug("keyboard focus not cleared", "surface", s.KeyboardFocusedSurface())
}

func (s seat) hasKeyboard() bool {
	return s.b.seat.Capabilities()&wlr.SeatCapabilityKeyboard != 0
}

func (s seat) KeyboardNotifyKey(t time.Time, code uint32, state wlral.KeyState) {
	s.b.seat.KeyboardNotifyKey(t, code, keyState(state))
}

// KeyboardNotifyModifiers sends the modifiers of the seat's current
// keyboard, which are always the ones that were just reported.
func (s seat) KeyboardNotifyModifiers(wlral.Modifiers) {
	if s.hasKeyboard() {
		s.b.seat.KeyboardNotifyModifiers(s.b.seat.GetKeyboard().Modifiers())
	}
}

func (s seat) PointerFocusedSurface() wlral.SurfaceID {
	return s.b.idOf(s.b.seat.PointerState().FocusedSurface())
}

func (s seat) PointerNotifyEnter(id wlral.SurfaceID, p geom.Point[float64]) {
	surface, err := s.b.surfaceOf(id)
	if err != nil {
		log.Error("pointer enter", "err", err)
		return
	}
	s.b.seat.PointerNotifyEnter(surface, p.X, p.Y)
}

func (s seat) PointerNotifyMotion(t time.Time, p geom.Point[float64]) {
	s.b.seat.PointerNotifyMotion(t, p.X, p.Y)
}

func (s seat) PointerNotifyButton(t time.Time, b wlral.Button, state wlral.ButtonState) {
	ws := wlr.ButtonReleased
	if state == wlral.ButtonPressed {
		ws = wlr.ButtonPressed
	}
	s.b.seat.PointerNotifyButton(t, wlr.CursorButton(b), ws)
}

func (s seat) PointerNotifyAxis(ev wlral.AxisEvent) {
	s.b.seat.PointerNotifyAxis(
		ev.Time,
		wlr.AxisOrientation(ev.Orientation),
		ev.Delta,
		ev.DeltaDiscrete,
		wlr.AxisSource(ev.Source),
	)
}

func (s seat) PointerNotifyFrame() {
	s.b.seat.PointerNotifyFrame()
}

func (s seat) PointerClearFocus() {
	s.b.seat.PointerNotifyClearFocus()
}

func keyState(state wlral.KeyState) wlr.KeyState {
	if state == wlral.KeyPressed {
		return wlr.KeyStatePressed
	}
	return wlr.KeyStateReleased
}

type cursor struct {
	b *Backend
}

func (c cursor) Position() geom.Point[float64] {
	return geom.Pt(c.b.cursor.X(), c.b.cursor.Y())
}

func (c cursor) Warp(p geom.Point[float64]) {
	c.b.cursor.Move(wlr.InputDevice{}, p.X-c.b.cursor.X(), p.Y-c.b.cursor.Y())
}

func (c cursor) SetImage(name string) {
	if name == "" {
		return
	}

	c.b.cursor.SetXCursor(c.b.cursorMgr, name)
}

func (b *Backend) onNewInput(dev wlr.InputDevice) {
	switch dev.Type() {
	case wlr.InputDeviceTypeKeyboard:
		b.addKeyboard(dev.Keyboard())
	case wlr.InputDeviceTypePointer:
		b.addPointer(dev.Pointer())
	}
}

func (b *Backend) addPointer(dev wlr.Pointer) {
	b.cursor.AttachInputDevice(dev.Base())
	b.seat.SetCapabilities(b.seat.Capabilities() | wlr.SeatCapabilityPointer)
	cursor{b}.SetImage(defaultCursor)

	// X clients get the default image for the root window. The
	// cursor manager returns no image for names missing from the
	// theme, so only the default is handed over.
	if b.xwayland.Valid() {
		b.xwayland.SetCursor(b.cursorMgr.GetXCursor(defaultCursor, 1).Image(0))
	}
}

const defaultCursor = "left_ptr"


// keyboard adapts a wlroots keyboard to wlral.NativeKeyboard.
type keyboard struct {
	dev  wlr.Keyboard
	name string
}

func (kb *keyboard) Name() string {
	return kb.name
}

func (kb *keyboard) SetKeymap(cfg wlral.KeyboardConfig) error {
	rules := xkb.RuleNames{
		Rules:   cfg.Rules,
		Model:   cfg.Model,
		Layout:  cfg.Layout,
		Variant: cfg.Variant,
		Options: cfg.Options,
	}

	ctx := xkb.NewContext(xkb.ContextNoFlags)
	defer ctx.Unref()

	keymap := xkb.NewKeymapFromNames(ctx, &rules, xkb.KeymapCompileNoFlags)
	defer keymap.Unref()

	kb.dev.SetKeymap(keymap)
	return nil
}

func (kb *keyboard) SetRepeatInfo(rate, delay int) {
	kb.dev.SetRepeatInfo(int32(rate), int32(delay))
}

func (b *Backend) addKeyboard(dev wlr.Keyboard) {
	b.keyboards++
	kb := keyboard{
		dev:  dev,
		name: fmt.Sprintf("keyboard%d", b.keyboards),
	}

	dev.OnModifiers(func(k wlr.Keyboard) {
		b.seat.SetKeyboard(k)
		b.c.KeyboardManager().HandleModifiers(wlral.Modifiers(k.GetModifiers()))
	})
	dev.OnKey(func(k wlr.Keyboard, t time.Time, code uint32, update bool, state wlr.KeyState) {
		b.seat.SetKeyboard(k)
		b.c.KeyboardManager().HandleKey(keyboardEvent(k, t, code, state))
	})
	dev.Base().OnDestroy(func(wlr.InputDevice) {
		b.c.KeyboardManager().HandleKeyboardDestroy(&kb)
	})

	b.c.KeyboardManager().HandleNewKeyboard(&kb)
	b.seat.SetKeyboard(dev)
	b.seat.SetCapabilities(b.seat.Capabilities() | wlr.SeatCapabilityKeyboard)
}

func keyboardEvent(k wlr.Keyboard, t time.Time, code uint32, state wlr.KeyState) wlral.KeyboardEvent {
	// libinput keycodes are offset by 8 from XKB keycodes.
	syms := k.XKBState().Syms(xkb.KeyCode(code + 8))
	keysyms := make([]wlral.Keysym, 0, len(syms))
	for _, sym := range syms {
		keysyms = append(keysyms, wlral.Keysym(sym))
	}

	ks := wlral.KeyReleased
	if state == wlr.KeyStatePressed {
		ks = wlral.KeyPressed
	}

	return wlral.KeyboardEvent{
		Time:      t,
		Keycode:   code,
		State:     ks,
		Keysyms:   keysyms,
		Modifiers: wlral.Modifiers(k.GetModifiers()),
	}
}

func (b *Backend) cursorPosition() geom.Point[float64] {
	return geom.Pt(b.cursor.X(), b.cursor.Y())
}

func (b *Backend) onCursorMotion(dev wlr.Pointer, t time.Time, dx, dy float64) {
	b.cursor.Move(dev.Base(), dx, dy)
	b.c.CursorManager().HandleMotion(wlral.MotionEvent{
		Time:     t,
		Position: b.cursorPosition(),
		Delta:    geom.Disp(dx, dy),
	})
}

func (b *Backend) onCursorMotionAbsolute(dev wlr.Pointer, t time.Time, x, y float64) {
	prev := b.cursorPosition()
	b.cursor.WarpAbsolute(dev.Base(), x, y)

	p := b.cursorPosition()
	b.c.CursorManager().HandleMotion(wlral.MotionEvent{
		Time:     t,
		Position: p,
		Delta:    p.Diff(prev),
	})
}

func (b *Backend) onCursorButton(dev wlr.Pointer, t time.Time, button wlr.CursorButton, state wlr.ButtonState) {
	bs := wlral.ButtonReleased
	if state == wlr.ButtonPressed {
		bs = wlral.ButtonPressed
	}

	b.c.CursorManager().HandleButton(wlral.ButtonEvent{
		Time:     t,
		Position: b.cursorPosition(),
		Button:   wlral.Button(button),
		State:    bs,
	})
}

func (b *Backend) onCursorAxis(dev wlr.Pointer, t time.Time, source wlr.AxisSource, orient wlr.AxisOrientation, delta float64, deltaDiscrete int32) {
	b.c.CursorManager().HandleAxis(wlral.AxisEvent{
		Time:          t,
		Position:      b.cursorPosition(),
		Source:        wlral.AxisSource(source),
		Orientation:   wlral.AxisOrientation(orient),
		Delta:         delta,
		DeltaDiscrete: deltaDiscrete,
	})
}

func (b *Backend) onCursorFrame() {
	b.c.CursorManager().HandleFrame()
}

func (b *Backend) onRequestSetCursor(client wlr.SeatClient, surface wlr.Surface, serial uint32, hotspotX, hotspotY int32) {
	if b.c.Gestures().Active() {
		return
	}

	if b.seat.PointerState().FocusedClient() == client {
		b.cursor.SetSurface(surface, hotspotX, hotspotY)
	}
}
