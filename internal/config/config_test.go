package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/shelltweak/internal/actionlog"
	"github.com/1broseidon/shelltweak/internal/placement"
)

func writeConfig(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestDefaultConfig_ValidAndHasBuiltinLayouts(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if _, ok := cfg.Layouts[DefaultBuiltinLayout]; !ok {
		t.Fatalf("expected builtin %q to exist in layouts", DefaultBuiltinLayout)
	}
	if cfg.Placement != placement.Default() {
		t.Fatalf("expected default placement, got %#v", cfg.Placement)
	}
}

func TestBuiltinLayouts_AllValid(t *testing.T) {
	for name, spec := range BuiltinLayouts() {
		if err := spec.Validate(); err != nil {
			t.Fatalf("builtin %q invalid: %v", name, err)
		}
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Store.Backend != StoreJSON {
		t.Fatalf("expected backend %q, got %q", StoreJSON, res.Config.Store.Backend)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected no loaded files, got %v", res.Files)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path, "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Placement != placement.Default() {
		t.Fatalf("expected default placement, got %#v", res.Config.Placement)
	}
	if len(res.Files) != 1 {
		t.Fatalf("expected 1 loaded file, got %v", res.Files)
	}
}

func TestLoadFromPath_PlacementPatchKeepsUnsetFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
placement:
  panel:
    position: left
  dock_item_count: 3
`
	writeConfig(t, path, strings.TrimSpace(data)+"\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got := res.Config.Placement
	if got.Panel.Position != placement.Left {
		t.Fatalf("expected panel left, got %q", got.Panel.Position)
	}
	if got.Panel.Size != placement.DefaultPanelSize || !got.Panel.Extend {
		t.Fatalf("expected untouched panel fields to keep defaults, got %#v", got.Panel)
	}
	if got.DockItemCount != 3 {
		t.Fatalf("expected dock_item_count 3, got %d", got.DockItemCount)
	}
	if got.Dock != placement.Default().Dock {
		t.Fatalf("expected default dock, got %#v", got.Dock)
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path, "unknown_key: true\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "unknown_key") && !strings.Contains(err.Error(), "field") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestLoadFromPath_InvalidValuesHaveSourceContext(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantPath string
		wantLine int
	}{
		{
			name:     "bad position",
			data:     "placement:\n  panel:\n    position: middle\n",
			wantPath: "placement",
			wantLine: 2,
		},
		{
			name:     "bad backend",
			data:     "store:\n  backend: postgres\n",
			wantPath: "store.backend",
			wantLine: 2,
		},
		{
			name:     "bad engine",
			data:     "log_level: info\nshell:\n  engine: gsettings\n",
			wantPath: "shell.engine",
			wantLine: 3,
		},
		{
			name:     "negative dock size",
			data:     "layouts:\n  mine:\n    dock:\n      size: -4\n",
			wantPath: "layouts.mine",
			wantLine: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			writeConfig(t, path, tt.data)

			_, err := LoadFromPath(path)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Path != tt.wantPath {
				t.Fatalf("expected path %q, got %q", tt.wantPath, verr.Path)
			}
			if verr.Source.Kind != SourceFile || verr.Source.Line != tt.wantLine {
				t.Fatalf("expected file source at line %d, got %#v", tt.wantLine, verr.Source)
			}
			if !strings.Contains(err.Error(), path+":") {
				t.Fatalf("expected error to include file:line:col prefix, got %v", err)
			}
		})
	}
}

func TestLoadFromPath_IncludeDirectoryOrderAndMainOverrides(t *testing.T) {
	dir := t.TempDir()

	// config.d loaded first, in sorted order.
	configD := filepath.Join(dir, "config.d")
	if err := os.MkdirAll(configD, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeConfig(t, filepath.Join(configD, "10-base.yaml"), "preview:\n  width: 50\n  height: 20\n")
	writeConfig(t, filepath.Join(configD, "20-override.yaml"), "preview:\n  width: 60\n")
	writeConfig(t, filepath.Join(configD, "notes.txt"), "not yaml: [\n")

	// Main file overrides includes.
	path := filepath.Join(dir, "config.yaml")
	main := strings.Join([]string{
		"include:",
		"  - config.d",
		"preview:",
		"  width: 70",
		"",
	}, "\n")
	writeConfig(t, path, main)

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Preview.Width != 70 {
		t.Fatalf("expected preview.width to be 70, got %d", res.Config.Preview.Width)
	}
	if res.Config.Preview.Height != 20 {
		t.Fatalf("expected preview.height from include to be 20, got %d", res.Config.Preview.Height)
	}
	if len(res.Files) != 3 {
		t.Fatalf("expected 3 loaded files, got %v", res.Files)
	}
	if filepath.Base(res.Files[0]) != "10-base.yaml" || filepath.Base(res.Files[2]) != "config.yaml" {
		t.Fatalf("unexpected load order: %v", res.Files)
	}
}

func TestLoadFromPath_IncludeMissingPathHasContext(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path, "include:\n  - missing.yaml\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "include") || !strings.Contains(err.Error(), "missing.yaml") {
		t.Fatalf("expected include error, got %v", err)
	}
	if !strings.Contains(err.Error(), path+":") {
		t.Fatalf("expected error to include file:line:col prefix, got %v", err)
	}
}

func TestLoadFromPath_IncludeCycleDetection(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")
	writeConfig(t, a, "include: b.yaml\n")
	writeConfig(t, b, "include: a.yaml\n")

	_, err := LoadFromPath(a)
	if err == nil {
		t.Fatalf("expected cycle error")
	}
	if !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestLoadFromPath_InheritsBuiltinAndExplainSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
layouts:
  dev:
    inherits: "builtin:unity"
    dock:
      size: 72
`
	writeConfig(t, path, strings.TrimSpace(data)+"\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	layout, ok := res.Config.Layouts["dev"]
	if !ok {
		t.Fatalf("expected dev layout")
	}
	if layout.Dock.Position != placement.Left || layout.Dock.Size != 72 {
		t.Fatalf("expected inherited left dock of size 72, got %#v", layout.Dock)
	}
	if res.LayoutBases["dev"] != "unity" {
		t.Fatalf("expected base unity, got %q", res.LayoutBases["dev"])
	}

	val, src, err := Explain(res, "layouts.dev.dock.position")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != "left" {
		t.Fatalf("expected explain value left, got %#v", val)
	}
	if src.Kind != SourceBuiltin || src.Name != "unity" {
		t.Fatalf("expected builtin source unity, got %#v", src)
	}

	val, src, err = Explain(res, "layouts.dev.dock.size")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != 72 {
		t.Fatalf("expected explain value 72, got %#v", val)
	}
	if src.Kind != SourceFile || src.Line != 5 {
		t.Fatalf("expected file source at line 5, got %#v", src)
	}
}

func TestLoadFromPath_InheritsRejectsNonBuiltin(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		want string
	}{
		{name: "missing prefix", ref: "unity", want: "builtin-only"},
		{name: "unknown builtin", ref: "builtin:nope", want: "unknown builtin layout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			writeConfig(t, path, "layouts:\n  dev:\n    inherits: \""+tt.ref+"\"\n")

			_, err := LoadFromPath(path)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in error, got %v", tt.want, err)
			}
			if !strings.Contains(err.Error(), "layouts.dev.inherits") {
				t.Fatalf("expected inherits path in error, got %v", err)
			}
		})
	}
}

func TestLoadFromPath_PlacementInheritsLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "placement:\n  inherits: builtin:macos\n  show_window: false\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := BuiltinLayouts()["macos"]
	want.ShowWindow = false
	if res.Config.Placement != want {
		t.Fatalf("expected %#v, got %#v", want, res.Config.Placement)
	}

	_, src, err := Explain(res, "placement.dock.size")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if src.Kind != SourceBuiltin || src.Name != "macos" {
		t.Fatalf("expected builtin source macos, got %#v", src)
	}
}

func TestExplain_DefaultsAndUnknownPaths(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	val, src, err := Explain(res, "store.max_system_snapshots")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != 10 {
		t.Fatalf("expected 10, got %#v", val)
	}
	if src.Kind != SourceDefault {
		t.Fatalf("expected default source, got %#v", src)
	}

	val, _, err = Explain(res, "store.dir")
	if err != nil {
		t.Fatalf("explain optional key: %v", err)
	}
	if val != "" {
		t.Fatalf("expected empty store.dir, got %#v", val)
	}

	for _, path := range []string{"", "nope", "store.nope", "log_level.deeper", "layouts.missing.dock"} {
		if _, _, err := Explain(res, path); err == nil {
			t.Fatalf("expected error for path %q", path)
		}
	}
}

func TestSaveTo_DropsBuiltinIdenticalLayouts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Layouts["mine"] = placement.Default().WithDockItemCount(2)
	custom := BuiltinLayouts()["unity"]
	custom.Panel.Size = 30
	cfg.Layouts["unity"] = custom

	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	layouts, _ := raw["layouts"].(map[string]any)
	if len(layouts) != 2 {
		t.Fatalf("expected only mine and unity to be saved, got %v", layouts)
	}
	if _, ok := layouts["classic"]; ok {
		t.Fatalf("expected builtin classic to be omitted")
	}

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if res.Config.Layouts["unity"].Panel.Size != 30 {
		t.Fatalf("expected saved unity override to round trip, got %#v", res.Config.Layouts["unity"])
	}
	if res.Config.Layouts["mine"].DockItemCount != 2 {
		t.Fatalf("expected saved layout mine, got %#v", res.Config.Layouts["mine"])
	}
	if _, ok := res.Config.Layouts["classic"]; !ok {
		t.Fatalf("expected builtin classic after reload")
	}
}

func TestDataDirAndActionLogConfig(t *testing.T) {
	dataHome := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataHome)

	cfg := DefaultConfig()
	dir, err := cfg.DataDir()
	if err != nil {
		t.Fatalf("data dir: %v", err)
	}
	if dir != filepath.Join(dataHome, "shelltweak") {
		t.Fatalf("expected XDG data dir, got %q", dir)
	}

	settings, err := cfg.SettingsFile()
	if err != nil {
		t.Fatalf("settings file: %v", err)
	}
	if settings != filepath.Join(dataHome, "shelltweak", "settings.yaml") {
		t.Fatalf("unexpected settings file %q", settings)
	}

	cfg.ActionLog.Level = "warn"
	cfg.ActionLog.MaxFiles = 0
	alc, err := cfg.GetActionLogConfig()
	if err != nil {
		t.Fatalf("action log config: %v", err)
	}
	if alc.Level != actionlog.LevelWarn {
		t.Fatalf("expected warn level, got %v", alc.Level)
	}
	if alc.MaxFiles != 3 {
		t.Fatalf("expected default max files 3, got %d", alc.MaxFiles)
	}
	if alc.FilePath != filepath.Join(dataHome, "shelltweak", "actions.log") {
		t.Fatalf("unexpected action log path %q", alc.FilePath)
	}

	cfg.Store.Dir = "/srv/shelltweak"
	if dir, _ := cfg.DataDir(); dir != "/srv/shelltweak" {
		t.Fatalf("expected explicit store dir, got %q", dir)
	}
}

func TestDefaultConfigPath_HonoursXDG(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)

	path, err := DefaultConfigPath()
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if path != filepath.Join(configHome, "shelltweak", "config.yaml") {
		t.Fatalf("unexpected config path %q", path)
	}
}
