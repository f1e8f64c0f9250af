// Package runtimepath locates the per-user runtime directory and the session
// bus socket that dconf writes through.
package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
)

// Dir returns the per-user runtime directory. Priority:
// 1) XDG_RUNTIME_DIR (if set)
// 2) /run/user/<uid> (if present)
// It reports false when neither is available.
func Dir() (string, bool) {
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return runtimeDir, true
	}

	runUserDir := fmt.Sprintf("/run/user/%d", os.Getuid())
	if info, err := os.Stat(runUserDir); err == nil && info.IsDir() {
		return runUserDir, true
	}
	return "", false
}

// SessionBus returns the D-Bus session bus address. Priority:
// 1) DBUS_SESSION_BUS_ADDRESS (if set)
// 2) unix:path=<runtime dir>/bus (if the socket exists)
func SessionBus() (string, bool) {
	if addr := os.Getenv("DBUS_SESSION_BUS_ADDRESS"); addr != "" {
		return addr, true
	}
	dir, ok := Dir()
	if !ok {
		return "", false
	}
	socket := filepath.Join(dir, "bus")
	if info, err := os.Stat(socket); err != nil || info.IsDir() {
		return "", false
	}
	return "unix:path=" + socket, true
}
