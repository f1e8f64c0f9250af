package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseHotkeyAction(t *testing.T) {
	tests := []struct {
		in      string
		want    HotkeyAction
		wantErr bool
	}{
		{in: "pick", want: HotkeyAction{Kind: ActionPick}},
		{in: " Next ", want: HotkeyAction{Kind: ActionNext}},
		{in: "layout:macos", want: HotkeyAction{Kind: ActionLayout, Ref: "macos"}},
		{in: "snapshot: before party", want: HotkeyAction{Kind: ActionSnapshot, Ref: "before party"}},
		{in: "layout:", wantErr: true},
		{in: "undo:now", wantErr: true},
		{in: "tile", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHotkeyAction(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %+v", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestHotkeyAction_String(t *testing.T) {
	if got := (HotkeyAction{Kind: ActionLayout, Ref: "unity"}).String(); got != "layout:unity" {
		t.Fatalf("expected layout:unity, got %q", got)
	}
	if got := (HotkeyAction{Kind: ActionUndo}).String(); got != "undo" {
		t.Fatalf("expected undo, got %q", got)
	}
}

func TestLoadFromPath_HotkeysReplaceDefaults(t *testing.T) {
	dir := t.TempDir()
	include := filepath.Join(dir, "keys.yaml")
	writeConfig(t, include, "daemon:\n  hotkeys:\n    Mod4-m: layout:macos\n    Mod4-u: layout:unity\n")
	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path, strings.Join([]string{
		"include: keys.yaml",
		"daemon:",
		"  palette: rofi",
		"  hotkeys:",
		`    Mod4-u: ""`,
		"    Mod4-p: pick",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got := res.Config.Daemon
	if got.Palette != "rofi" {
		t.Fatalf("expected palette rofi, got %q", got.Palette)
	}
	if len(got.Hotkeys) != 2 || got.Hotkeys["Mod4-m"] != "layout:macos" || got.Hotkeys["Mod4-p"] != "pick" {
		t.Fatalf("unexpected hotkeys %v", got.Hotkeys)
	}
	if _, ok := got.Hotkeys["Mod4-Shift-p"]; ok {
		t.Fatalf("expected default bindings to be replaced, got %v", got.Hotkeys)
	}
}

func TestLoadFromPath_InvalidHotkeyAction(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("daemon:\n  hotkeys:\n    Mod4-t: tile\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := LoadFromPath(path)
	if err == nil || !strings.Contains(err.Error(), "daemon.hotkeys.Mod4-t") {
		t.Fatalf("expected hotkey validation error, got %v", err)
	}
}

func TestValidate_Palette(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Daemon.Palette = "zenity"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "daemon.palette") {
		t.Fatalf("expected palette error, got %v", err)
	}
}
