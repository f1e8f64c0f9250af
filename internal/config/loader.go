package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// SourceKind says where an effective value came from.
type SourceKind string

const (
	SourceDefault SourceKind = "default"
	SourceBuiltin SourceKind = "builtin"
	SourceFile    SourceKind = "file"
)

// Source locates the writer of a config value. Name is set for builtin and
// default sources; File, Line and Column for file sources.
type Source struct {
	Kind   SourceKind
	Name   string
	File   string
	Line   int
	Column int
}

func (s Source) String() string {
	switch s.Kind {
	case SourceFile:
		return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
	case SourceBuiltin:
		return "builtin:" + s.Name
	}
	return string(s.Kind)
}

// LoadResult is a loaded config plus what is needed to explain it.
type LoadResult struct {
	Config *Config
	Path   string
	// Sources maps dotted key paths to the file position that last set them.
	Sources map[string]Source
	// LayoutBases maps layout names to the built-in they inherit from.
	LayoutBases map[string]string
	// Files lists every file read, includes before their includer.
	Files []string
}

// DefaultConfigPath returns ~/.config/shelltweak/config.yaml, honouring
// XDG_CONFIG_HOME.
func DefaultConfigPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "shelltweak", "config.yaml"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "shelltweak", "config.yaml"), nil
}

// Load reads the configuration from the standard location.
func Load() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	res, err := LoadFromPath(path)
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// LoadFromPath loads the config at path and everything it includes. A
// missing file yields the defaults.
func LoadFromPath(path string) (*LoadResult, error) {
	l := &fileLoader{
		sources: map[string]Source{},
		visited: map[string]bool{},
	}
	if _, err := os.Stat(path); err == nil {
		if err := l.load(path); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	cfg, bases, err := BuildEffectiveConfig(l.raw)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		return nil, attachSourceContext(err, l.sources)
	}
	return &LoadResult{
		Config:      cfg,
		Path:        path,
		Sources:     l.sources,
		LayoutBases: bases,
		Files:       l.files,
	}, nil
}

// fileLoader folds a config file and its includes into one RawConfig.
// Includes are merged before the file that names them, so the includer
// wins.
type fileLoader struct {
	raw     RawConfig
	sources map[string]Source
	files   []string
	visited map[string]bool
	chain   []string
}

func (l *fileLoader) load(path string) error {
	canon, err := canonicalPath(path)
	if err != nil {
		return err
	}
	if slices.Contains(l.chain, canon) {
		return fmt.Errorf("include cycle: %s -> %s", strings.Join(l.chain, " -> "), canon)
	}
	if l.visited[canon] {
		return nil
	}
	l.visited[canon] = true

	raw, root, err := parseFile(canon)
	if err != nil {
		return err
	}
	positions := map[string]Source{}
	recordPositions(root, canon, "", positions)

	l.chain = append(l.chain, canon)
	for _, inc := range raw.Include {
		targets, err := includeTargets(canon, inc)
		if err != nil {
			return fmt.Errorf("%s: include %q: %w", positions["include"], inc, err)
		}
		for _, target := range targets {
			if err := l.load(target); err != nil {
				return err
			}
		}
	}
	l.chain = l.chain[:len(l.chain)-1]

	l.raw = l.raw.merge(raw)
	for key, src := range positions {
		l.sources[key] = src
	}
	l.files = append(l.files, canon)
	return nil
}

// parseFile strictly decodes a config file and also returns its top-level
// node for position lookups. An empty file decodes to a zero RawConfig.
func parseFile(path string) (RawConfig, *yaml.Node, error) {
	var raw RawConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return raw, nil, fmt.Errorf("%s: failed to read: %w", path, err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return raw, nil, fmt.Errorf("%s: failed to parse yaml: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return raw, nil, fmt.Errorf("%s: %w", path, err)
	}
	root := &doc
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		root = doc.Content[0]
	}
	return raw, root, nil
}

// recordPositions stores the position of every mapping value under its
// dotted key path. Sequences are recorded as a whole.
func recordPositions(node *yaml.Node, file, prefix string, out map[string]Source) {
	if node == nil || node.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i].Value, node.Content[i+1]
		if prefix != "" {
			key = prefix + "." + key
		}
		out[key] = Source{Kind: SourceFile, File: file, Line: val.Line, Column: val.Column}
		recordPositions(val, file, key, out)
	}
}

// includeTargets resolves an include entry relative to the file naming it.
// A directory expands to its .yaml and .yml files in name order.
func includeTargets(from, include string) ([]string, error) {
	if include == "" {
		return nil, errors.New("path is empty")
	}
	target, err := expandHome(include)
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(from), target)
	}

	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{target}, nil
	}
	entries, err := os.ReadDir(target)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
			if !e.IsDir() {
				files = append(files, filepath.Join(target, e.Name()))
			}
		}
	}
	return files, nil
}

// canonicalPath returns path made absolute with symlinks resolved where
// possible.
func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real, nil
	}
	return abs, nil
}

// attachSourceContext points a validation error at the file position that
// set the offending value. Paths are tried from most to least specific.
func attachSourceContext(err error, sources map[string]Source) error {
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path == "" {
		return err
	}
	for path := verr.Path; ; {
		if src, ok := sources[path]; ok {
			verr.Source = src
			break
		}
		i := strings.LastIndex(path, ".")
		if i < 0 {
			break
		}
		path = path[:i]
	}
	return verr
}
