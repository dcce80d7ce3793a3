package view

import (
	"strings"
	"unicode"

	"github.com/gdamore/tcell/v2"
)

// KeyString names a key event the way keymaps spell it: modifiers in the
// order cmd, ctrl, alt, shift, then the key, e.g. "ctrl+shift+left". Plain
// runes are returned as typed, with ' ' spelled "space".
func KeyString(ev *tcell.EventKey) string {
	mods := ev.Modifiers()
	key := ev.Key()

	if key == tcell.KeyRune {
		r := ev.Rune()
		if mods&(tcell.ModMeta|tcell.ModCtrl|tcell.ModAlt) == 0 {
			if r == ' ' {
				return "space"
			}
			return string(r)
		}
		name := string(unicode.ToLower(r))
		if r == ' ' {
			name = "space"
		}
		return modPrefix(mods) + name
	}

	// Tab, Enter, Backspace and Esc share codes with ctrl+i, ctrl+m, ctrl+h
	// and ctrl+[, so they are named first.
	switch key {
	case tcell.KeyTab:
		return modPrefix(mods) + "tab"
	case tcell.KeyBacktab:
		return modPrefix(mods|tcell.ModShift) + "tab"
	case tcell.KeyEnter:
		return modPrefix(mods) + "enter"
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return modPrefix(mods&^tcell.ModCtrl) + "backspace"
	case tcell.KeyEscape:
		return modPrefix(mods) + "esc"
	case tcell.KeyCtrlSpace:
		return modPrefix(mods|tcell.ModCtrl) + "space"
	}
	if key >= tcell.KeyCtrlA && key <= tcell.KeyCtrlZ {
		return modPrefix(mods|tcell.ModCtrl) + string(rune('a'+int(key-tcell.KeyCtrlA)))
	}
	if name, ok := keyNames[key]; ok {
		return modPrefix(mods) + name
	}
	return ""
}

var keyNames = map[tcell.Key]string{
	tcell.KeyUp:     "up",
	tcell.KeyDown:   "down",
	tcell.KeyLeft:   "left",
	tcell.KeyRight:  "right",
	tcell.KeyPgUp:   "pgup",
	tcell.KeyPgDn:   "pgdn",
	tcell.KeyHome:   "home",
	tcell.KeyEnd:    "end",
	tcell.KeyInsert: "ins",
	tcell.KeyDelete: "del",
	tcell.KeyF1:     "f1",
	tcell.KeyF2:     "f2",
	tcell.KeyF3:     "f3",
	tcell.KeyF4:     "f4",
	tcell.KeyF5:     "f5",
	tcell.KeyF6:     "f6",
	tcell.KeyF7:     "f7",
	tcell.KeyF8:     "f8",
	tcell.KeyF9:     "f9",
	tcell.KeyF10:    "f10",
	tcell.KeyF11:    "f11",
	tcell.KeyF12:    "f12",
}

func modPrefix(m tcell.ModMask) string {
	var b strings.Builder
	if m&tcell.ModMeta != 0 {
		b.WriteString("cmd+")
	}
	if m&tcell.ModCtrl != 0 {
		b.WriteString("ctrl+")
	}
	if m&tcell.ModAlt != 0 {
		b.WriteString("alt+")
	}
	if m&tcell.ModShift != 0 {
		b.WriteString("shift+")
	}
	return b.String()
}

// typed returns the text a key event inserts, if any.
func typed(ev *tcell.EventKey) (string, bool) {
	if ev.Key() != tcell.KeyRune || ev.Modifiers()&(tcell.ModMeta|tcell.ModCtrl|tcell.ModAlt) != 0 {
		return "", false
	}
	return string(ev.Rune()), true
}
