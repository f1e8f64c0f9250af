package config

import (
	"fmt"
	"strings"
)

// Hotkey action kinds. Layout and snapshot actions name their target after
// a colon, as in "layout:macos".
const (
	ActionPick     = "pick"
	ActionNext     = "next"
	ActionPrevious = "previous"
	ActionUndo     = "undo"
	ActionLayout   = "layout"
	ActionSnapshot = "snapshot"
)

// HotkeyAction is a parsed hotkey binding target.
type HotkeyAction struct {
	Kind string
	Ref  string
}

func (a HotkeyAction) String() string {
	if a.Ref == "" {
		return a.Kind
	}
	return a.Kind + ":" + a.Ref
}

// DefaultHotkeys returns the bindings used when the config sets none.
func DefaultHotkeys() map[string]string {
	return map[string]string{
		"Mod4-Shift-p": ActionPick,
		"Mod4-Shift-n": ActionNext,
		"Mod4-Shift-b": ActionPrevious,
		"Mod4-Shift-z": ActionUndo,
	}
}

// ParseHotkeyAction parses pick, next, previous, undo, layout:<ref> or
// snapshot:<ref>.
func ParseHotkeyAction(s string) (HotkeyAction, error) {
	s = strings.TrimSpace(s)
	kind, ref, hasRef := strings.Cut(s, ":")
	kind = strings.ToLower(strings.TrimSpace(kind))
	ref = strings.TrimSpace(ref)

	switch kind {
	case ActionPick, ActionNext, ActionPrevious, ActionUndo:
		if hasRef {
			return HotkeyAction{}, fmt.Errorf("action %q takes no argument", kind)
		}
		return HotkeyAction{Kind: kind}, nil
	case ActionLayout, ActionSnapshot:
		if ref == "" {
			return HotkeyAction{}, fmt.Errorf("action %q needs a name, as in %s:<name>", kind, kind)
		}
		return HotkeyAction{Kind: kind, Ref: ref}, nil
	}
	return HotkeyAction{}, fmt.Errorf("unknown action %q (expected: pick, next, previous, undo, layout:<name>, snapshot:<name>)", s)
}
