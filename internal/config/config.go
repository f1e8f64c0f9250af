package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/shelltweak/internal/actionlog"
	"github.com/1broseidon/shelltweak/internal/placement"
)

// Store backends.
const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
)

// Shell engines. EngineAuto picks dconf when it is available.
const (
	EngineAuto  = "auto"
	EngineFile  = "file"
	EngineDconf = "dconf"
)

// StoreConfig configures where layouts and snapshots are kept.
type StoreConfig struct {
	Backend string `yaml:"backend"`
	// Dir defaults to ~/.local/share/shelltweak when empty.
	Dir string `yaml:"dir,omitempty"`
	// AutoSnapshot takes a system snapshot before every apply or restore.
	AutoSnapshot       bool `yaml:"auto_snapshot"`
	MaxSystemSnapshots int  `yaml:"max_system_snapshots"`
}

// ShellConfig selects the settings engine.
type ShellConfig struct {
	Engine string `yaml:"engine"`
	// File is the settings file used by the file engine (default:
	// <store dir>/settings.yaml).
	File      string `yaml:"file,omitempty"`
	DconfPath string `yaml:"dconf_path"`
}

// PreviewConfig sizes the preview canvas.
type PreviewConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	// DetectMonitor uses the primary monitor's aspect ratio when an X
	// display is available.
	DetectMonitor bool `yaml:"detect_monitor"`
	ASCII         bool `yaml:"ascii"`
}

// ActionLogConfig configures the action log.
type ActionLogConfig struct {
	// Enabled turns action logging on/off
	Enabled bool `yaml:"enabled"`
	// Level controls verbosity: debug, info, warn, error
	Level string `yaml:"level,omitempty"`
	// File is the log file path (default: <store dir>/actions.log)
	File string `yaml:"file,omitempty"`
	// MaxSizeMB is the maximum log file size before rotation (default: 10)
	MaxSizeMB int `yaml:"max_size_mb,omitempty"`
	// MaxFiles is the number of rotated files to keep (default: 3)
	MaxFiles int `yaml:"max_files,omitempty"`
}

// DaemonConfig configures the hotkey daemon.
type DaemonConfig struct {
	// Palette is the launcher used by the pick action: auto, rofi, fuzzel,
	// wofi or dmenu.
	Palette string `yaml:"palette"`
	// Hotkeys maps key sequences such as "Mod4-Shift-p" to actions.
	Hotkeys map[string]string `yaml:"hotkeys"`
}

// Config holds the application configuration.
type Config struct {
	LogLevel string `yaml:"log_level"`
	// LogFile receives diagnostic output while the TUI owns the terminal.
	LogFile   string                          `yaml:"log_file,omitempty"`
	Placement placement.LayoutSpec            `yaml:"placement"`
	Layouts   map[string]placement.LayoutSpec `yaml:"layouts"`
	Store     StoreConfig                     `yaml:"store"`
	Shell     ShellConfig                     `yaml:"shell"`
	Preview   PreviewConfig                   `yaml:"preview"`
	ActionLog ActionLogConfig                 `yaml:"action_log"`
	Daemon    DaemonConfig                    `yaml:"daemon"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:  "info",
		Placement: placement.Default(),
		Layouts:   BuiltinLayouts(),
		Store: StoreConfig{
			Backend:            StoreJSON,
			AutoSnapshot:       true,
			MaxSystemSnapshots: 10,
		},
		Shell: ShellConfig{
			Engine:    EngineAuto,
			DconfPath: "/org/shelltweak/",
		},
		Preview: PreviewConfig{
			Width:         64,
			Height:        18,
			DetectMonitor: true,
		},
		ActionLog: ActionLogConfig{
			Enabled:   true,
			Level:     "info",
			MaxSizeMB: 10,
			MaxFiles:  3,
		},
		Daemon: DaemonConfig{
			Palette: "auto",
			Hotkeys: DefaultHotkeys(),
		},
	}
}

// DataDir returns the store directory, falling back to the XDG data home.
func (c *Config) DataDir() (string, error) {
	if c.Store.Dir != "" {
		return expandHome(c.Store.Dir)
	}
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "shelltweak"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "shelltweak"), nil
}

// SettingsFile returns the file used by the file engine.
func (c *Config) SettingsFile() (string, error) {
	if c.Shell.File != "" {
		return expandHome(c.Shell.File)
	}
	dir, err := c.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "settings.yaml"), nil
}

// GetActionLogConfig returns the action log configuration with defaults
// applied.
func (c *Config) GetActionLogConfig() (actionlog.Config, error) {
	cfg := actionlog.Config{
		Enabled:   c.ActionLog.Enabled,
		Level:     actionlog.ParseLogLevel(c.ActionLog.Level),
		FilePath:  c.ActionLog.File,
		MaxSizeMB: c.ActionLog.MaxSizeMB,
		MaxFiles:  c.ActionLog.MaxFiles,
	}
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxFiles <= 0 {
		cfg.MaxFiles = 3
	}
	if cfg.FilePath == "" {
		dir, err := c.DataDir()
		if err != nil {
			return cfg, err
		}
		cfg.FilePath = filepath.Join(dir, "actions.log")
	} else {
		path, err := expandHome(cfg.FilePath)
		if err != nil {
			return cfg, err
		}
		cfg.FilePath = path
	}
	return cfg, nil
}

// LayoutNames returns the configured layout names in sorted order.
func (c *Config) LayoutNames() []string {
	return sortedKeys(c.Layouts)
}

// GetLayout retrieves a layout preset by name.
func (c *Config) GetLayout(name string) (placement.LayoutSpec, error) {
	spec, ok := c.Layouts[name]
	if !ok {
		return placement.LayoutSpec{}, fmt.Errorf("layout %q not found", name)
	}
	return spec, nil
}

// Save writes the configuration to the standard location.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to path. Layout presets identical to the
// built-ins are left out.
//
// Note: this marshals the effective config and will not preserve comments or
// include/inherits structure from the original YAML.
func (c *Config) SaveTo(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Marshal returns the YAML that SaveTo would write.
func (c *Config) Marshal() ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	save := *c
	save.Layouts = layoutsForSave(c.Layouts)
	data, err := yaml.Marshal(&save)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

func layoutsForSave(layouts map[string]placement.LayoutSpec) map[string]placement.LayoutSpec {
	builtin := BuiltinLayouts()
	out := make(map[string]placement.LayoutSpec)
	for name, spec := range layouts {
		if base, ok := builtin[name]; ok && base == spec {
			continue
		}
		out[name] = spec
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}
	if err := c.Placement.Validate(); err != nil {
		return &ValidationError{Path: "placement", Err: err}
	}
	if len(c.Layouts) == 0 {
		return &ValidationError{Path: "layouts", Err: fmt.Errorf("layouts must not be empty")}
	}
	for _, name := range sortedKeys(c.Layouts) {
		if strings.TrimSpace(name) == "" {
			return &ValidationError{Path: "layouts", Err: fmt.Errorf("layouts contains an empty name")}
		}
		if err := c.Layouts[name].Validate(); err != nil {
			return &ValidationError{Path: "layouts." + name, Err: err}
		}
	}

	switch c.Store.Backend {
	case StoreJSON, StoreSQLite:
	default:
		return &ValidationError{Path: "store.backend", Err: fmt.Errorf("backend must be one of: json, sqlite")}
	}
	if c.Store.MaxSystemSnapshots < 0 {
		return &ValidationError{Path: "store.max_system_snapshots", Err: fmt.Errorf("max_system_snapshots must be >= 0")}
	}

	switch c.Shell.Engine {
	case EngineAuto, EngineFile, EngineDconf:
	default:
		return &ValidationError{Path: "shell.engine", Err: fmt.Errorf("engine must be one of: auto, file, dconf")}
	}
	if c.Shell.Engine != EngineFile && !strings.HasPrefix(c.Shell.DconfPath, "/") {
		return &ValidationError{Path: "shell.dconf_path", Err: fmt.Errorf("dconf_path must be an absolute dconf path, got %q", c.Shell.DconfPath)}
	}

	if c.Preview.Width < 0 || c.Preview.Height < 0 {
		return &ValidationError{Path: "preview", Err: fmt.Errorf("preview width and height must be >= 0")}
	}

	if c.ActionLog.MaxSizeMB < 0 {
		return &ValidationError{Path: "action_log.max_size_mb", Err: fmt.Errorf("max_size_mb must be >= 0")}
	}
	if c.ActionLog.MaxFiles < 0 {
		return &ValidationError{Path: "action_log.max_files", Err: fmt.Errorf("max_files must be >= 0")}
	}

	switch c.Daemon.Palette {
	case "auto", "rofi", "fuzzel", "wofi", "dmenu":
	default:
		return &ValidationError{Path: "daemon.palette", Err: fmt.Errorf("palette must be one of: auto, rofi, fuzzel, wofi, dmenu")}
	}
	for _, key := range sortedKeys(c.Daemon.Hotkeys) {
		if strings.TrimSpace(key) == "" {
			return &ValidationError{Path: "daemon.hotkeys", Err: fmt.Errorf("hotkeys contains an empty key sequence")}
		}
		if _, err := ParseHotkeyAction(c.Daemon.Hotkeys[key]); err != nil {
			return &ValidationError{Path: "daemon.hotkeys." + key, Err: err}
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}
