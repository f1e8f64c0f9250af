package palette

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"
)

// launcher drives a dmenu-compatible program over stdin/stdout.
type launcher struct {
	command string
	// index backends print the selected row number instead of its text.
	index bool
	// markup backends render pango markup in rows.
	markup bool
	// props backends accept rofi's \0key\x1fvalue row properties.
	props bool
	args  func(prompt string, selected int) []string
	run   runFunc
}

func newLauncher(name string) *launcher {
	l := &launcher{command: name, run: runCommand}
	switch name {
	case "rofi":
		l.index, l.markup, l.props = true, true, true
		l.args = func(prompt string, selected int) []string {
			args := []string{"-dmenu", "-i", "-format", "i", "-no-custom", "-matching", "fuzzy", "-markup-rows"}
			if prompt != "" {
				args = append(args, "-p", prompt)
			}
			if selected >= 0 {
				row := strconv.Itoa(selected)
				args = append(args, "-a", row, "-selected-row", row)
			}
			return args
		}
	case "fuzzel":
		l.index = true
		l.args = func(prompt string, _ int) []string {
			args := []string{"--dmenu", "--index"}
			if prompt != "" {
				args = append(args, "--prompt", prompt+"> ")
			}
			return args
		}
	case "wofi":
		l.markup = true
		l.args = func(prompt string, _ int) []string {
			args := []string{"--dmenu", "--allow-markup"}
			if prompt != "" {
				args = append(args, "--prompt", prompt)
			}
			return args
		}
	default:
		l.args = func(prompt string, _ int) []string {
			args := []string{"-i"}
			if prompt != "" {
				args = append(args, "-p", prompt)
			}
			return args
		}
	}
	return l
}

func (l *launcher) Name() string { return l.command }

func (l *launcher) Show(ctx context.Context, prompt string, items []Item) (Item, error) {
	if len(items) == 0 {
		return Item{}, fmt.Errorf("palette: no items to show")
	}

	input, labels, selected := l.format(items)
	out, err := l.run(ctx, l.command, l.args(prompt, selected), input)
	selection := strings.TrimSpace(out)
	if err != nil {
		if selection == "" && isCancelExit(err) {
			return Item{}, ErrCancelled
		}
		return Item{}, fmt.Errorf("%s failed: %w", l.command, err)
	}
	if selection == "" {
		return Item{}, ErrCancelled
	}
	return l.parse(selection, items, labels)
}

// format renders the menu input. It returns the label written for each row
// and the row to preselect, or -1.
func (l *launcher) format(items []Item) (string, []string, int) {
	lines := make([]string, len(items))
	labels := make([]string, len(items))
	seen := make(map[string]int)
	selected := -1

	for i, item := range items {
		label := sanitizeLabel(item.Label)
		// Text backends select by label, so duplicates need telling apart.
		if !l.index && !item.IsHeader && label != "" {
			base := label
			if n := seen[base]; n > 0 {
				label = fmt.Sprintf("%s (%d)", base, n+1)
			}
			seen[base]++
		}
		labels[i] = label
		if selected < 0 && item.IsActive && !item.IsHeader {
			selected = i
		}
		lines[i] = l.formatRow(item, label)
	}
	return strings.Join(lines, "\n"), labels, selected
}

func (l *launcher) formatRow(item Item, label string) string {
	display := label
	if l.markup {
		display = html.EscapeString(label)
		if item.IsHeader {
			display = "<b>" + display + "</b>"
		}
	}
	if !l.props {
		return display
	}

	// A single NUL starts the properties; pairs are separated by \x1f.
	var attrs []string
	if item.IsHeader {
		attrs = append(attrs, "nonselectable", "true")
	}
	if item.Meta != "" {
		attrs = append(attrs, "meta", sanitizeField(item.Meta))
	}
	if len(attrs) == 0 {
		return display
	}
	return display + "\x00" + strings.Join(attrs, "\x1f")
}

func (l *launcher) parse(selection string, items []Item, labels []string) (Item, error) {
	if l.index {
		if idx, err := strconv.Atoi(selection); err == nil {
			if idx < 0 || idx >= len(items) {
				return Item{}, fmt.Errorf("palette: index %d out of range", idx)
			}
			return items[idx], nil
		}
	}
	for i, label := range labels {
		if label == selection {
			return items[i], nil
		}
	}
	return Item{}, fmt.Errorf("palette: unknown selection %q", selection)
}

func sanitizeLabel(label string) string {
	label = strings.ReplaceAll(label, "\r", " ")
	label = strings.ReplaceAll(label, "\n", " ")
	return strings.TrimSpace(label)
}

func sanitizeField(value string) string {
	value = strings.ReplaceAll(value, "\x00", " ")
	value = strings.ReplaceAll(value, "\x1f", " ")
	return sanitizeLabel(value)
}
