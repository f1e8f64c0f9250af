// Package palette shows layouts and snapshots in an external launcher menu
// (rofi, fuzzel, wofi or dmenu) so they can be picked from a hotkey.
package palette

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrCancelled is returned when the user closes the palette without selecting an item.
var ErrCancelled = errors.New("palette cancelled")

// Item is a single row in a palette menu.
type Item struct {
	Label    string
	Action   string
	Meta     string // hidden search keywords
	IsHeader bool   // non-selectable section header
	IsActive bool   // preselected and highlighted
}

// Backend shows a palette to the user and returns the selected item.
type Backend interface {
	Name() string
	Show(ctx context.Context, prompt string, items []Item) (Item, error)
}

// Backends lists the supported launchers in detection order.
var Backends = []string{"rofi", "fuzzel", "wofi", "dmenu"}

var lookPath = exec.LookPath

// New creates a backend by name. An empty name or "auto" picks the first
// launcher found in PATH.
func New(name string) (Backend, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "auto" {
		for _, candidate := range Backends {
			if _, err := lookPath(candidate); err == nil {
				return newLauncher(candidate), nil
			}
		}
		return nil, fmt.Errorf("no palette backend found in PATH (looked for: %s)", strings.Join(Backends, ", "))
	}
	for _, candidate := range Backends {
		if candidate != name {
			continue
		}
		if _, err := lookPath(name); err != nil {
			return nil, fmt.Errorf("palette backend %q not found in PATH", name)
		}
		return newLauncher(name), nil
	}
	return nil, fmt.Errorf("unknown palette backend: %q (expected: auto, %s)", name, strings.Join(Backends, ", "))
}

type runFunc func(ctx context.Context, command string, args []string, stdin string) (string, error)

func runCommand(ctx context.Context, command string, args []string, stdin string) (string, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Stdin = strings.NewReader(stdin)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return string(out), fmt.Errorf("%s: %w", msg, err)
		}
		return string(out), err
	}
	return string(out), nil
}

func isCancelExit(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	// Launchers use 1 for "no selection" and 130 for Ctrl+C.
	switch exitErr.ExitCode() {
	case 1, 130:
		return true
	default:
		return false
	}
}
