package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/1broseidon/shelltweak/internal/placement"
	"github.com/1broseidon/shelltweak/internal/store"
)

// setupEnv isolates config and data directories and forces the file engine.
func setupEnv(t *testing.T) (configDir, dataDir string) {
	t.Helper()
	configHome := t.TempDir()
	dataHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	t.Setenv("XDG_DATA_HOME", dataHome)
	t.Setenv("DISPLAY", "")

	configDir = filepath.Join(configHome, "shelltweak")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	cfg := "shell:\n  engine: file\npreview:\n  detect_monitor: false\n"
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(cfg), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configDir, filepath.Join(dataHome, "shelltweak")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("shelltweak %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func TestConfigCommands(t *testing.T) {
	configDir, _ := setupEnv(t)

	if got := strings.TrimSpace(mustRun(t, "config", "path")); got != filepath.Join(configDir, "config.yaml") {
		t.Fatalf("expected config path in %s, got %q", configDir, got)
	}
	if out := mustRun(t, "config", "validate"); !strings.Contains(out, "config: ok") {
		t.Fatalf("expected ok, got %q", out)
	}

	out := mustRun(t, "config", "explain", "shell.engine")
	if !strings.Contains(out, "value:\nfile") || !strings.Contains(out, "config.yaml:2") {
		t.Fatalf("expected file engine sourced from config.yaml line 2, got:\n%s", out)
	}
	out = mustRun(t, "config", "explain", "placement.dock.position")
	if !strings.Contains(out, "source: default") {
		t.Fatalf("expected default source, got:\n%s", out)
	}

	out = mustRun(t, "config", "print", "--defaults")
	if !strings.Contains(out, "engine: auto") {
		t.Fatalf("expected defaults to use the auto engine, got:\n%s", out)
	}
}

func TestConfigValidateReportsErrors(t *testing.T) {
	configDir, _ := setupEnv(t)
	bad := "placement:\n  dock:\n    position: middle\n"
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(bad), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := run(t, "config", "validate"); err == nil {
		t.Fatalf("expected invalid position to fail validation")
	}
}

func TestResolveCommand(t *testing.T) {
	setupEnv(t)

	out := mustRun(t, "resolve", "unity")
	if !strings.Contains(out, "band panel edge=top") || !strings.Contains(out, "band dock edge=left") {
		t.Fatalf("expected unity bands in tree, got:\n%s", out)
	}

	out = mustRun(t, "resolve", "--panel-hidden", "--dock-hidden")
	if !strings.HasPrefix(out, "(empty)") {
		t.Fatalf("expected empty arrangement, got:\n%s", out)
	}

	out = mustRun(t, "resolve", "--json", "--screen-width", "1000", "--screen-height", "500")
	if !strings.Contains(out, `"container"`) || !strings.Contains(out, `"width": 1000`) {
		t.Fatalf("expected JSON placement in a 1000x500 container, got:\n%s", out)
	}

	if _, err := run(t, "resolve", "--dock", "middle"); err == nil {
		t.Fatalf("expected invalid --dock to fail")
	}
	if _, err := run(t, "resolve", "no-such-layout"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPreviewCommand(t *testing.T) {
	setupEnv(t)

	out := mustRun(t, "preview", "macos", "--width", "30", "--height", "10")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 11 {
		t.Fatalf("expected 10 canvas lines and a summary, got %d:\n%s", len(lines), out)
	}

	svgPath := filepath.Join(t.TempDir(), "layout.svg")
	mustRun(t, "preview", "--svg", svgPath)
	data, err := os.ReadFile(svgPath)
	if err != nil {
		t.Fatalf("read svg: %v", err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Fatalf("expected an svg document, got %q", string(data))
	}
}

func TestLayoutCommands(t *testing.T) {
	_, dataDir := setupEnv(t)

	if out := mustRun(t, "layout", "save", "work", "--from", "macos", "--dock", "right"); !strings.Contains(out, "saved layout work") {
		t.Fatalf("unexpected save output %q", out)
	}
	out := mustRun(t, "layout", "list")
	if !strings.Contains(out, "work") || !strings.Contains(out, "custom") || !strings.Contains(out, "classic") {
		t.Fatalf("expected builtins and the custom layout, got:\n%s", out)
	}
	if out := mustRun(t, "layout", "find", "wrk"); !strings.HasPrefix(out, "work") {
		t.Fatalf("expected fuzzy match for work, got:\n%s", out)
	}

	mustRun(t, "layout", "apply", "work")
	settings, err := os.ReadFile(filepath.Join(dataDir, "settings.yaml"))
	if err != nil {
		t.Fatalf("expected settings file after apply: %v", err)
	}
	if !strings.Contains(string(settings), "right") {
		t.Fatalf("expected dock right in settings, got:\n%s", settings)
	}

	if _, err := run(t, "layout", "delete", "classic"); !errors.Is(err, store.ErrBuiltin) {
		t.Fatalf("expected ErrBuiltin deleting a builtin, got %v", err)
	}
	mustRun(t, "layout", "delete", "work")
	if _, err := run(t, "layout", "apply", "work"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestSnapshotCommands(t *testing.T) {
	setupEnv(t)

	mustRun(t, "layout", "apply", "unity")
	if out := mustRun(t, "snapshot", "create", "baseline"); !strings.Contains(out, "created snapshot baseline") {
		t.Fatalf("unexpected create output %q", out)
	}
	out := mustRun(t, "snapshot", "list")
	if !strings.Contains(out, "baseline") || !strings.Contains(out, "user") {
		t.Fatalf("expected baseline user snapshot, got:\n%s", out)
	}

	exported := filepath.Join(t.TempDir(), "baseline.toml")
	mustRun(t, "snapshot", "export", "baseline", "-o", exported)
	data, err := os.ReadFile(exported)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(data), `name = "baseline"`) {
		t.Fatalf("expected TOML snapshot, got:\n%s", data)
	}

	mustRun(t, "layout", "apply", "taskbar")
	if out := mustRun(t, "snapshot", "restore", "baseline"); !strings.Contains(out, "restored snapshot baseline") {
		t.Fatalf("unexpected restore output %q", out)
	}

	mustRun(t, "snapshot", "delete", "baseline")
	if out := mustRun(t, "snapshot", "import", exported); !strings.Contains(out, "imported snapshot baseline") {
		t.Fatalf("unexpected import output %q", out)
	}
	if _, err := run(t, "snapshot", "restore", "nothing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPlacementFlags_OnlyChangedApply(t *testing.T) {
	cmd := &cobra.Command{Use: "x"}
	pf := addPlacementFlags(cmd)
	if err := cmd.Flags().Parse([]string{"--dock", "top", "--window=false"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	base := placement.Default()
	base.Panel.Size = 40
	got, err := pf.apply(base)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got.Dock.Position != placement.Top || got.ShowWindow {
		t.Fatalf("expected dock top without window, got %+v", got)
	}
	if got.Panel.Size != 40 {
		t.Fatalf("expected unset panel size to keep 40, got %d", got.Panel.Size)
	}
}

func TestTUIRequiresTerminal(t *testing.T) {
	setupEnv(t)
	if _, err := run(t, "tui"); err == nil || !strings.Contains(err.Error(), "interactive terminal") {
		t.Fatalf("expected terminal error, got %v", err)
	}
}

func TestPickCommand(t *testing.T) {
	setupEnv(t)
	bin := t.TempDir()
	script := "#!/bin/sh\nwhile read -r line; do :; done\necho unity\n"
	if err := os.WriteFile(filepath.Join(bin, "dmenu"), []byte(script), 0755); err != nil {
		t.Fatalf("write fake dmenu: %v", err)
	}
	t.Setenv("PATH", bin)

	out := mustRun(t, "pick", "--backend", "dmenu")
	if !strings.Contains(out, "applied layout unity via file") {
		t.Fatalf("unexpected pick output %q", out)
	}
	if _, err := run(t, "pick", "--backend", "zenity"); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestDaemonRequiresDisplay(t *testing.T) {
	setupEnv(t)
	if _, err := run(t, "daemon"); err == nil || !strings.Contains(err.Error(), "X display") {
		t.Fatalf("expected display error, got %v", err)
	}
}
