package shell

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileEngine keeps shell settings in a flat YAML file. It stands in for a
// live settings store on systems without dconf.
type FileEngine struct {
	Path string
}

func NewFileEngine(path string) *FileEngine {
	return &FileEngine{Path: path}
}

func (e *FileEngine) Name() string { return "file" }

// Generate reads every key from the settings file. A missing file yields an
// empty schema.
func (e *FileEngine) Generate(ctx context.Context) (Schema, error) {
	if err := ctx.Err(); err != nil {
		return Schema{}, err
	}
	s := Schema{Shell: e.Name(), Entries: map[string]string{}}
	data, err := os.ReadFile(e.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return Schema{}, fmt.Errorf("failed to read settings %s: %w", e.Path, err)
	}
	if err := yaml.Unmarshal(data, &s.Entries); err != nil {
		return Schema{}, fmt.Errorf("failed to parse settings %s: %w", e.Path, err)
	}
	if s.Entries == nil {
		s.Entries = map[string]string{}
	}
	return s, nil
}

// Apply replaces the settings file with the schema's entries. The write goes
// through a temporary file so a failure leaves the old settings intact.
func (e *FileEngine) Apply(ctx context.Context, s Schema) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkShell(e, s); err != nil {
		return err
	}
	entries := s.Entries
	if entries == nil {
		entries = map[string]string{}
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	dir := filepath.Dir(e.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".settings-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), e.Path); err != nil {
		return fmt.Errorf("failed to replace settings %s: %w", e.Path, err)
	}
	return nil
}
