// Package shell reads and writes the live shell settings that layouts and
// snapshots capture. The settings are an opaque key/value Schema; only the
// placement keys are interpreted here.
package shell

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/1broseidon/shelltweak/internal/placement"
)

// ErrIncompatible is returned when a schema produced by one engine is
// applied through another.
var ErrIncompatible = errors.New("schema belongs to a different shell")

// Schema is a captured set of shell settings. Keys are slash separated
// paths such as "panel/position".
type Schema struct {
	Shell   string            `json:"shell" yaml:"shell" toml:"shell"`
	Entries map[string]string `json:"entries" yaml:"entries" toml:"entries"`
}

// Clone returns a deep copy.
func (s Schema) Clone() Schema {
	out := Schema{Shell: s.Shell, Entries: make(map[string]string, len(s.Entries))}
	maps.Copy(out.Entries, s.Entries)
	return out
}

// Keys returns the entry keys in sorted order.
func (s Schema) Keys() []string {
	return slices.Sorted(maps.Keys(s.Entries))
}

// Engine generates schemas from, and applies them to, a running shell.
type Engine interface {
	Name() string
	Generate(ctx context.Context) (Schema, error)
	Apply(ctx context.Context, s Schema) error
}

func checkShell(e Engine, s Schema) error {
	if s.Shell != "" && s.Shell != e.Name() {
		return fmt.Errorf("%w: %q cannot be applied by %q", ErrIncompatible, s.Shell, e.Name())
	}
	return nil
}

// Placement keys.
const (
	KeyPanelPosition = "panel/position"
	KeyPanelExtend   = "panel/extend"
	KeyPanelHidden   = "panel/hidden"
	KeyPanelSize     = "panel/size"
	KeyDockPosition  = "dock/position"
	KeyDockExtend    = "dock/extend"
	KeyDockHidden    = "dock/hidden"
	KeyDockSize      = "dock/size"
	KeyDockItems     = "dock/item-count"
	KeyShowWindow    = "window/show"
)

// WithPlacement returns a copy of s with the placement keys set from spec.
func WithPlacement(s Schema, spec placement.LayoutSpec) Schema {
	spec = spec.Normalize()
	out := s.Clone()
	setRegion(out.Entries, "panel", spec.Panel)
	setRegion(out.Entries, "dock", spec.Dock)
	out.Entries[KeyDockItems] = strconv.Itoa(spec.DockItemCount)
	out.Entries[KeyShowWindow] = strconv.FormatBool(spec.ShowWindow)
	return out
}

func setRegion(entries map[string]string, prefix string, r placement.RegionSpec) {
	entries[prefix+"/position"] = string(r.Position)
	entries[prefix+"/extend"] = strconv.FormatBool(r.Extend)
	entries[prefix+"/hidden"] = strconv.FormatBool(r.Hidden)
	entries[prefix+"/size"] = strconv.Itoa(r.Size)
}

// PlacementOf reads the placement keys back out of s. Missing or malformed
// keys keep their value from fallback.
func PlacementOf(s Schema, fallback placement.LayoutSpec) placement.LayoutSpec {
	spec := fallback
	spec.Panel = regionOf(s.Entries, "panel", spec.Panel)
	spec.Dock = regionOf(s.Entries, "dock", spec.Dock)
	if n, err := strconv.Atoi(s.Entries[KeyDockItems]); err == nil {
		spec.DockItemCount = n
	}
	if b, err := strconv.ParseBool(s.Entries[KeyShowWindow]); err == nil {
		spec.ShowWindow = b
	}
	return spec.Normalize()
}

func regionOf(entries map[string]string, prefix string, r placement.RegionSpec) placement.RegionSpec {
	if p, err := placement.ParsePosition(entries[prefix+"/position"]); err == nil {
		r.Position = p
	}
	if b, err := strconv.ParseBool(entries[prefix+"/extend"]); err == nil {
		r.Extend = b
	}
	if b, err := strconv.ParseBool(entries[prefix+"/hidden"]); err == nil {
		r.Hidden = b
	}
	if n, err := strconv.Atoi(entries[prefix+"/size"]); err == nil {
		r.Size = n
	}
	return r
}
