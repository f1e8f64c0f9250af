package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/shelltweak/internal/placement"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawRegion struct {
	Position *placement.Position `yaml:"position"`
	Extend   *bool               `yaml:"extend"`
	Hidden   *bool               `yaml:"hidden"`
	Size     *int                `yaml:"size"`
}

type RawLayoutSpec struct {
	Inherits      *string    `yaml:"inherits"`
	Panel         *RawRegion `yaml:"panel"`
	Dock          *RawRegion `yaml:"dock"`
	DockItemCount *int       `yaml:"dock_item_count"`
	ShowWindow    *bool      `yaml:"show_window"`
}

type RawStoreConfig struct {
	Backend            *string `yaml:"backend"`
	Dir                *string `yaml:"dir"`
	AutoSnapshot       *bool   `yaml:"auto_snapshot"`
	MaxSystemSnapshots *int    `yaml:"max_system_snapshots"`
}

type RawShellConfig struct {
	Engine    *string `yaml:"engine"`
	File      *string `yaml:"file"`
	DconfPath *string `yaml:"dconf_path"`
}

type RawPreviewConfig struct {
	Width         *int  `yaml:"width"`
	Height        *int  `yaml:"height"`
	DetectMonitor *bool `yaml:"detect_monitor"`
	ASCII         *bool `yaml:"ascii"`
}

type RawActionLogConfig struct {
	Enabled   *bool   `yaml:"enabled"`
	Level     *string `yaml:"level"`
	File      *string `yaml:"file"`
	MaxSizeMB *int    `yaml:"max_size_mb"`
	MaxFiles  *int    `yaml:"max_files"`
}

type RawDaemonConfig struct {
	Palette *string           `yaml:"palette"`
	Hotkeys map[string]string `yaml:"hotkeys"`
}

type RawConfig struct {
	Include   IncludeList              `yaml:"include"`
	LogLevel  *string                  `yaml:"log_level"`
	LogFile   *string                  `yaml:"log_file"`
	Placement *RawLayoutSpec           `yaml:"placement"`
	Layouts   map[string]RawLayoutSpec `yaml:"layouts"`
	Store     *RawStoreConfig          `yaml:"store"`
	Shell     *RawShellConfig          `yaml:"shell"`
	Preview   *RawPreviewConfig        `yaml:"preview"`
	ActionLog *RawActionLogConfig      `yaml:"action_log"`
	Daemon    *RawDaemonConfig         `yaml:"daemon"`
}

// merge overlays the fields set in overlay onto c.
func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	if overlay.LogFile != nil {
		out.LogFile = overlay.LogFile
	}
	if overlay.Placement != nil {
		if out.Placement == nil {
			p := *overlay.Placement
			out.Placement = &p
		} else {
			merged := mergeRawLayoutSpec(*out.Placement, *overlay.Placement)
			out.Placement = &merged
		}
	}

	if overlay.Layouts != nil {
		layouts := make(map[string]RawLayoutSpec, len(out.Layouts)+len(overlay.Layouts))
		for name, spec := range out.Layouts {
			layouts[name] = spec
		}
		for name, spec := range overlay.Layouts {
			base, ok := layouts[name]
			if !ok {
				layouts[name] = spec
				continue
			}
			layouts[name] = mergeRawLayoutSpec(base, spec)
		}
		out.Layouts = layouts
	}

	if overlay.Store != nil {
		s := RawStoreConfig{}
		if out.Store != nil {
			s = *out.Store
		}
		mergePtr(&s.Backend, overlay.Store.Backend)
		mergePtr(&s.Dir, overlay.Store.Dir)
		mergePtr(&s.AutoSnapshot, overlay.Store.AutoSnapshot)
		mergePtr(&s.MaxSystemSnapshots, overlay.Store.MaxSystemSnapshots)
		out.Store = &s
	}

	if overlay.Shell != nil {
		s := RawShellConfig{}
		if out.Shell != nil {
			s = *out.Shell
		}
		mergePtr(&s.Engine, overlay.Shell.Engine)
		mergePtr(&s.File, overlay.Shell.File)
		mergePtr(&s.DconfPath, overlay.Shell.DconfPath)
		out.Shell = &s
	}

	if overlay.Preview != nil {
		p := RawPreviewConfig{}
		if out.Preview != nil {
			p = *out.Preview
		}
		mergePtr(&p.Width, overlay.Preview.Width)
		mergePtr(&p.Height, overlay.Preview.Height)
		mergePtr(&p.DetectMonitor, overlay.Preview.DetectMonitor)
		mergePtr(&p.ASCII, overlay.Preview.ASCII)
		out.Preview = &p
	}

	if overlay.ActionLog != nil {
		a := RawActionLogConfig{}
		if out.ActionLog != nil {
			a = *out.ActionLog
		}
		mergePtr(&a.Enabled, overlay.ActionLog.Enabled)
		mergePtr(&a.Level, overlay.ActionLog.Level)
		mergePtr(&a.File, overlay.ActionLog.File)
		mergePtr(&a.MaxSizeMB, overlay.ActionLog.MaxSizeMB)
		mergePtr(&a.MaxFiles, overlay.ActionLog.MaxFiles)
		out.ActionLog = &a
	}

	if overlay.Daemon != nil {
		d := RawDaemonConfig{}
		if out.Daemon != nil {
			d = *out.Daemon
		}
		mergePtr(&d.Palette, overlay.Daemon.Palette)
		if overlay.Daemon.Hotkeys != nil {
			hotkeys := make(map[string]string, len(d.Hotkeys)+len(overlay.Daemon.Hotkeys))
			for key, action := range d.Hotkeys {
				hotkeys[key] = action
			}
			for key, action := range overlay.Daemon.Hotkeys {
				hotkeys[key] = action
			}
			d.Hotkeys = hotkeys
		}
		out.Daemon = &d
	}

	return out
}

func mergeRawLayoutSpec(base, overlay RawLayoutSpec) RawLayoutSpec {
	out := base
	mergePtr(&out.Inherits, overlay.Inherits)
	out.Panel = mergeRawRegion(out.Panel, overlay.Panel)
	out.Dock = mergeRawRegion(out.Dock, overlay.Dock)
	mergePtr(&out.DockItemCount, overlay.DockItemCount)
	mergePtr(&out.ShowWindow, overlay.ShowWindow)
	return out
}

func mergeRawRegion(base, overlay *RawRegion) *RawRegion {
	if overlay == nil {
		return base
	}
	out := RawRegion{}
	if base != nil {
		out = *base
	}
	mergePtr(&out.Position, overlay.Position)
	mergePtr(&out.Extend, overlay.Extend)
	mergePtr(&out.Hidden, overlay.Hidden)
	mergePtr(&out.Size, overlay.Size)
	return &out
}

func mergePtr[T any](dst **T, src *T) {
	if src != nil {
		*dst = src
	}
}
