package wlral

import "github.com/charmbracelet/log"

// VTSwitchFilter switches virtual terminals when one of the
// XF86Switch_VT_* keys is pressed.
type VTSwitchFilter struct {
	NopEventFilter

	session Session
}

func NewVTSwitchFilter(session Session) *VTSwitchFilter {
	return &VTSwitchFilter{session: session}
}

func (f *VTSwitchFilter) HandleKeyboardEvent(ev KeyboardEvent) bool {
	if (f.session == nil) || (ev.State != KeyPressed) {
		return false
	}

	for _, sym := range ev.Keysyms {
		if (sym < KeySwitchVT1) || (sym > KeySwitchVT12) {
			continue
		}

		vt := int(sym-KeySwitchVT1) + 1
		if err := f.session.ChangeVT(vt); err != nil {
			log.Error("change VT", "vt", vt, "err", err)
		}
		return true
	}
	return false
}
