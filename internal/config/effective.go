package config

import (
	"fmt"
	"strings"

	"github.com/1broseidon/shelltweak/internal/placement"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// BuildEffectiveConfig applies raw over DefaultConfig. The second result maps
// every layout name to the built-in it was derived from.
func BuildEffectiveConfig(raw RawConfig) (*Config, map[string]string, error) {
	cfg := DefaultConfig()

	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}
	if raw.LogFile != nil {
		cfg.LogFile = *raw.LogFile
	}

	if raw.Store != nil {
		applyPtr(&cfg.Store.Backend, raw.Store.Backend)
		applyPtr(&cfg.Store.Dir, raw.Store.Dir)
		applyPtr(&cfg.Store.AutoSnapshot, raw.Store.AutoSnapshot)
		applyPtr(&cfg.Store.MaxSystemSnapshots, raw.Store.MaxSystemSnapshots)
	}
	if raw.Shell != nil {
		applyPtr(&cfg.Shell.Engine, raw.Shell.Engine)
		applyPtr(&cfg.Shell.File, raw.Shell.File)
		applyPtr(&cfg.Shell.DconfPath, raw.Shell.DconfPath)
	}
	if raw.Preview != nil {
		applyPtr(&cfg.Preview.Width, raw.Preview.Width)
		applyPtr(&cfg.Preview.Height, raw.Preview.Height)
		applyPtr(&cfg.Preview.DetectMonitor, raw.Preview.DetectMonitor)
		applyPtr(&cfg.Preview.ASCII, raw.Preview.ASCII)
	}
	if raw.ActionLog != nil {
		applyPtr(&cfg.ActionLog.Enabled, raw.ActionLog.Enabled)
		applyPtr(&cfg.ActionLog.Level, raw.ActionLog.Level)
		applyPtr(&cfg.ActionLog.File, raw.ActionLog.File)
		applyPtr(&cfg.ActionLog.MaxSizeMB, raw.ActionLog.MaxSizeMB)
		applyPtr(&cfg.ActionLog.MaxFiles, raw.ActionLog.MaxFiles)
	}
	if raw.Daemon != nil {
		applyPtr(&cfg.Daemon.Palette, raw.Daemon.Palette)
		// A hotkeys map replaces the default bindings; an empty action
		// unbinds a key.
		if raw.Daemon.Hotkeys != nil {
			cfg.Daemon.Hotkeys = make(map[string]string, len(raw.Daemon.Hotkeys))
			for key, action := range raw.Daemon.Hotkeys {
				if strings.TrimSpace(action) == "" {
					continue
				}
				cfg.Daemon.Hotkeys[key] = action
			}
		}
	}

	layoutBases, err := applyLayouts(cfg, raw)
	if err != nil {
		return nil, nil, err
	}

	if raw.Placement != nil {
		base := cfg.Placement
		if raw.Placement.Inherits != nil {
			name, spec, err := inheritedLayout("placement", *raw.Placement.Inherits, cfg.Layouts)
			if err != nil {
				return nil, nil, err
			}
			base = spec
			layoutBases[""] = name
		}
		cfg.Placement = mergeLayoutPatch(base, *raw.Placement)
		if err := cfg.Placement.Validate(); err != nil {
			return nil, nil, &ValidationError{Path: "placement", Err: err}
		}
	}

	return cfg, layoutBases, nil
}

func applyLayouts(cfg *Config, raw RawConfig) (map[string]string, error) {
	builtin := BuiltinLayouts()

	// Start with built-ins.
	cfg.Layouts = make(map[string]placement.LayoutSpec, len(builtin)+len(raw.Layouts))
	for name, spec := range builtin {
		cfg.Layouts[name] = spec
	}

	layoutBases := make(map[string]string)
	for name := range cfg.Layouts {
		layoutBases[name] = name
	}

	// Apply user layout patches.
	for _, name := range sortedKeys(raw.Layouts) {
		patch := raw.Layouts[name]
		baseName, baseSpec, err := selectLayoutBase(name, patch, builtin)
		if err != nil {
			return nil, err
		}

		merged := mergeLayoutPatch(baseSpec, patch)
		if err := merged.Validate(); err != nil {
			return nil, &ValidationError{Path: "layouts." + name, Err: err}
		}

		cfg.Layouts[name] = merged
		layoutBases[name] = baseName
	}

	return layoutBases, nil
}

func selectLayoutBase(name string, patch RawLayoutSpec, builtin map[string]placement.LayoutSpec) (string, placement.LayoutSpec, error) {
	if patch.Inherits != nil && strings.TrimSpace(*patch.Inherits) != "" {
		return inheritedLayout("layouts."+name, *patch.Inherits, builtin)
	}
	baseName := DefaultBuiltinLayout
	if _, ok := builtin[name]; ok {
		baseName = name
	}
	return baseName, builtin[baseName], nil
}

// inheritedLayout resolves an "inherits: builtin:<name>" reference.
func inheritedLayout(path, ref string, layouts map[string]placement.LayoutSpec) (string, placement.LayoutSpec, error) {
	const prefix = "builtin:"
	ref = strings.TrimSpace(ref)
	if !strings.HasPrefix(ref, prefix) {
		return "", placement.LayoutSpec{}, &ValidationError{
			Path: path + ".inherits",
			Err:  fmt.Errorf("inherits must be %q-prefixed (builtin-only), got %q", prefix, ref),
		}
	}
	name := strings.TrimSpace(strings.TrimPrefix(ref, prefix))
	spec, ok := BuiltinLayouts()[name]
	if !ok {
		return "", placement.LayoutSpec{}, &ValidationError{
			Path: path + ".inherits",
			Err:  fmt.Errorf("unknown builtin layout %q", name),
		}
	}
	if s, ok := layouts[name]; ok {
		spec = s
	}
	return name, spec, nil
}

func mergeLayoutPatch(base placement.LayoutSpec, patch RawLayoutSpec) placement.LayoutSpec {
	out := base
	out.Panel = mergeRegionPatch(out.Panel, patch.Panel)
	out.Dock = mergeRegionPatch(out.Dock, patch.Dock)
	applyPtr(&out.DockItemCount, patch.DockItemCount)
	applyPtr(&out.ShowWindow, patch.ShowWindow)
	return out
}

func mergeRegionPatch(base placement.RegionSpec, patch *RawRegion) placement.RegionSpec {
	if patch == nil {
		return base
	}
	out := base
	applyPtr(&out.Position, patch.Position)
	applyPtr(&out.Extend, patch.Extend)
	applyPtr(&out.Hidden, patch.Hidden)
	applyPtr(&out.Size, patch.Size)
	return out
}

func applyPtr[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
