package tui

import (
	"maps"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/shelltweak/internal/config"
)

type diffKind int

const (
	diffContext diffKind = iota
	diffRemoved
	diffAdded
	diffHunk
)

type diffLine struct {
	kind diffKind
	text string
}

const (
	// hunkContext is the number of unchanged lines kept around each change.
	hunkContext = 2
	// maxDiffCells bounds the LCS table; larger inputs fall back to a
	// remove-all/add-all script for the changed middle.
	maxDiffCells = 500_000
)

// computeDiffLines diffs the YAML that saving each config would write and
// groups the result into hunks headed by their top-level section. It
// returns nil when nothing would change on disk.
func computeDiffLines(original, current *config.Config) []diffLine {
	if original == nil || current == nil {
		return nil
	}
	before := savedLines(original)
	after := savedLines(current)
	return groupHunks(lcsDiff(before, after), hunkContext)
}

// savedLines renders cfg the way SaveTo would. An invalid config is still
// diffed so unsaved edits show up before validation rejects them.
func savedLines(cfg *config.Config) []string {
	data, err := cfg.Marshal()
	if err != nil {
		data, err = yaml.Marshal(cfg)
		if err != nil {
			return nil
		}
	}
	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// lcsDiff returns the full edit script turning a into b.
func lcsDiff(a, b []string) []diffLine {
	prefix := 0
	for prefix < len(a) && prefix < len(b) && a[prefix] == b[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < len(a)-prefix && suffix < len(b)-prefix &&
		a[len(a)-1-suffix] == b[len(b)-1-suffix] {
		suffix++
	}

	out := make([]diffLine, 0, len(a)+len(b))
	for _, s := range a[:prefix] {
		out = append(out, diffLine{diffContext, s})
	}
	out = append(out, middleScript(a[prefix:len(a)-suffix], b[prefix:len(b)-suffix])...)
	for _, s := range a[len(a)-suffix:] {
		out = append(out, diffLine{diffContext, s})
	}
	return out
}

// middleScript diffs the region between the common prefix and suffix.
func middleScript(a, b []string) []diffLine {
	var out []diffLine
	if len(a)*len(b) > maxDiffCells {
		for _, s := range a {
			out = append(out, diffLine{diffRemoved, s})
		}
		for _, s := range b {
			out = append(out, diffLine{diffAdded, s})
		}
		return out
	}

	// tail[i][j] is the LCS length of a[i:] and b[j:].
	tail := make([][]int, len(a)+1)
	for i := range tail {
		tail[i] = make([]int, len(b)+1)
	}
	for i := len(a) - 1; i >= 0; i-- {
		for j := len(b) - 1; j >= 0; j-- {
			if a[i] == b[j] {
				tail[i][j] = tail[i+1][j+1] + 1
			} else {
				tail[i][j] = max(tail[i+1][j], tail[i][j+1])
			}
		}
	}

	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case i < len(a) && j < len(b) && a[i] == b[j]:
			out = append(out, diffLine{diffContext, a[i]})
			i++
			j++
		case j < len(b) && (i == len(a) || tail[i][j+1] > tail[i+1][j]):
			out = append(out, diffLine{diffAdded, b[j]})
			j++
		default:
			out = append(out, diffLine{diffRemoved, a[i]})
			i++
		}
	}
	return out
}

// groupHunks keeps only changed lines plus radius lines of context around
// them, and starts every hunk with a header naming the section of its first
// change.
func groupHunks(script []diffLine, radius int) []diffLine {
	sections := make([]string, len(script))
	keep := make([]bool, len(script))
	current := ""
	changed := false
	for i, l := range script {
		if l.kind != diffRemoved {
			if name, ok := sectionOf(l.text); ok {
				current = name
			}
		}
		sections[i] = current
		if l.kind == diffContext {
			continue
		}
		changed = true
		for k := max(0, i-radius); k <= min(len(script)-1, i+radius); k++ {
			keep[k] = true
		}
	}
	if !changed {
		return nil
	}

	var out []diffLine
	for i := 0; i < len(script); {
		if !keep[i] {
			i++
			continue
		}
		j := i
		first := -1
		for j < len(script) && keep[j] {
			if first < 0 && script[j].kind != diffContext {
				first = j
			}
			j++
		}
		out = append(out, diffLine{diffHunk, hunkTitle(sections[first])})
		out = append(out, script[i:j]...)
		i = j
	}
	return out
}

// sectionOf reports whether line opens a top-level mapping key.
func sectionOf(line string) (string, bool) {
	if line == "" || line[0] == ' ' || line[0] == '-' || line[0] == '#' {
		return "", false
	}
	key, _, ok := strings.Cut(line, ":")
	return key, ok
}

func hunkTitle(section string) string {
	if section == "" {
		return "@@"
	}
	return "@@ " + section
}

// diffStats counts added and removed lines.
func diffStats(lines []diffLine) (added, removed int) {
	for _, l := range lines {
		switch l.kind {
		case diffAdded:
			added++
		case diffRemoved:
			removed++
		}
	}
	return added, removed
}

// cloneConfig returns a copy of cfg that shares no maps with it.
func cloneConfig(cfg *config.Config) *config.Config {
	if cfg == nil {
		return nil
	}
	out := *cfg
	out.Layouts = maps.Clone(cfg.Layouts)
	out.Daemon.Hotkeys = maps.Clone(cfg.Daemon.Hotkeys)
	return &out
}
