package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Paths follow the config file keys, for example:
//
//	log_level
//	placement.panel.position
//	placement.dock_item_count
//	layouts.<name>.dock.size
//	store.backend
//	shell.engine
//	preview.width
//	action_log.max_files
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	// Exact-path file source wins.
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}

	// Otherwise infer from category.
	if strings.HasPrefix(path, "layouts.") {
		name := layoutNameFromPath(path)
		base := ""
		if name != "" {
			base = res.LayoutBases[name]
		}
		return value, Source{Kind: SourceBuiltin, Name: base}, nil
	}
	if strings.HasPrefix(path, "placement") {
		if base, ok := res.LayoutBases[""]; ok {
			return value, Source{Kind: SourceBuiltin, Name: base}, nil
		}
	}

	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func layoutNameFromPath(path string) string {
	parts := strings.Split(path, ".")
	if len(parts) < 2 {
		return ""
	}
	if parts[0] != "layouts" {
		return ""
	}
	return parts[1]
}

// lookupValue walks the YAML form of cfg so every key the file accepts can
// be explained without a per-field switch.
func lookupValue(cfg *Config, path string) (any, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	var cur any = tree
	parts := strings.Split(path, ".")
	for i, part := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		next, ok := m[part]
		if !ok {
			if i == 1 && parts[0] == "layouts" {
				return nil, fmt.Errorf("unknown layout %q", part)
			}
			if zero, known := knownOptionalKeys[path]; known && i == len(parts)-1 {
				return zero, nil
			}
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		cur = next
	}
	return cur, nil
}

// Keys tagged omitempty vanish from the marshalled tree when unset.
var knownOptionalKeys = map[string]any{
	"log_file":               "",
	"store.dir":              "",
	"shell.file":             "",
	"action_log.level":       "",
	"action_log.file":        "",
	"action_log.max_size_mb": 0,
	"action_log.max_files":   0,
}
