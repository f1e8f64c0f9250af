package shell

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"
)

// Runner executes a command, feeding it stdin, and returns its stdout.
type Runner func(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error)

// ExecRunner runs commands with os/exec.
func ExecRunner(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// DconfEngine reads and writes a dconf subtree with `dconf dump` and
// `dconf load`.
type DconfEngine struct {
	// Path is the dconf directory, e.g. "/org/shelltweak/".
	Path string
	Run  Runner
}

func NewDconfEngine(path string) *DconfEngine {
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return &DconfEngine{Path: path, Run: ExecRunner}
}

func (e *DconfEngine) Name() string { return "dconf" }

func (e *DconfEngine) Generate(ctx context.Context) (Schema, error) {
	out, err := e.Run(ctx, nil, "dconf", "dump", e.Path)
	if err != nil {
		return Schema{}, fmt.Errorf("dconf dump %s: %w", e.Path, err)
	}
	entries, err := ParseKeyfile(out)
	if err != nil {
		return Schema{}, fmt.Errorf("dconf dump %s: %w", e.Path, err)
	}
	return Schema{Shell: e.Name(), Entries: entries}, nil
}

// Apply loads the schema into the subtree. Keys the schema does not name
// are left alone.
func (e *DconfEngine) Apply(ctx context.Context, s Schema) error {
	if err := checkShell(e, s); err != nil {
		return err
	}
	data := RenderKeyfile(s.Entries)
	if _, err := e.Run(ctx, data, "dconf", "load", e.Path); err != nil {
		return fmt.Errorf("dconf load %s: %w", e.Path, err)
	}
	return nil
}

// ParseKeyfile converts dconf dump output into schema entries. Section
// "[a/b]" with key "k" becomes "a/b/k"; keys in "[/]" keep their bare name.
// Quoted strings are unquoted, other values are kept verbatim.
func ParseKeyfile(data []byte) (map[string]string, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment: true,
		KeyValueDelimiters:  "=",
	}, data)
	if err != nil {
		return nil, fmt.Errorf("parse keyfile: %w", err)
	}
	entries := map[string]string{}
	for _, sec := range f.Sections() {
		name := strings.Trim(sec.Name(), "/")
		if sec.Name() == ini.DefaultSection {
			name = ""
		}
		for _, key := range sec.Keys() {
			path := key.Name()
			if name != "" {
				path = name + "/" + path
			}
			entries[path] = key.Value()
		}
	}
	return entries, nil
}

// RenderKeyfile is the inverse of ParseKeyfile. Booleans and numbers are
// written bare, everything else as a quoted GVariant string.
func RenderKeyfile(entries map[string]string) []byte {
	sections := map[string][]string{}
	for path := range entries {
		sec := "/"
		if i := strings.LastIndex(path, "/"); i >= 0 {
			sec = path[:i]
		}
		sections[sec] = append(sections[sec], path)
	}
	names := make([]string, 0, len(sections))
	for name := range sections {
		names = append(names, name)
	}
	sort.Strings(names)

	var b bytes.Buffer
	for i, name := range names {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%s]\n", name)
		paths := sections[name]
		sort.Strings(paths)
		for _, path := range paths {
			key := path[strings.LastIndex(path, "/")+1:]
			fmt.Fprintf(&b, "%s=%s\n", key, gvariant(entries[path]))
		}
	}
	return b.Bytes()
}

func gvariant(v string) string {
	if v == "true" || v == "false" {
		return v
	}
	if _, err := strconv.ParseInt(v, 10, 64); err == nil {
		return v
	}
	if _, err := strconv.ParseFloat(v, 64); err == nil {
		return v
	}
	if strings.HasPrefix(v, "[") || strings.HasPrefix(v, "(") || strings.HasPrefix(v, "@") {
		return v
	}
	return "'" + strings.ReplaceAll(strings.ReplaceAll(v, `\`, `\\`), "'", `\'`) + "'"
}
