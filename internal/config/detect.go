package config

import (
	"os/exec"

	"github.com/1broseidon/shelltweak/internal/runtimepath"
)

// DetectedEngine describes how the "auto" shell engine was resolved.
type DetectedEngine struct {
	Name string
	// Path is the dconf binary when Name is EngineDconf.
	Path string
	// Reason is a short human-readable note for diagnostics.
	Reason string
}

// DetectEngine resolves the configured shell engine. "auto" picks dconf when
// the binary is on PATH and a session bus is reachable, and the settings
// file otherwise.
func DetectEngine(cfg *Config) DetectedEngine {
	engine := EngineAuto
	if cfg != nil {
		engine = cfg.Shell.Engine
	}
	switch engine {
	case EngineFile:
		return DetectedEngine{Name: EngineFile, Reason: "configured"}
	case EngineDconf:
		path, _ := exec.LookPath("dconf")
		return DetectedEngine{Name: EngineDconf, Path: path, Reason: "configured"}
	}

	path, err := exec.LookPath("dconf")
	if err != nil {
		return DetectedEngine{Name: EngineFile, Reason: "dconf not found on PATH"}
	}
	if _, ok := runtimepath.SessionBus(); !ok {
		return DetectedEngine{Name: EngineFile, Path: path, Reason: "no session bus"}
	}
	return DetectedEngine{Name: EngineDconf, Path: path, Reason: "dconf found on PATH"}
}
