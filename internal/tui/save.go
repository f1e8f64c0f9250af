package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/shelltweak/internal/config"
)

type savePhase int

const (
	saveHidden savePhase = iota
	savePreview
	saveResult
)

var errNoChanges = errors.New("no changes to save")

var (
	addedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	removedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	hunkStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true)
	contextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	overlayBox   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)
)

// SaveOverlay previews the YAML diff of unsaved config edits and writes the
// file once confirmed.
type SaveOverlay struct {
	phase   savePhase
	lines   []diffLine
	added   int
	removed int
	offset  int
	page    int
	err     error
	savedTo string
}

// Active reports whether the overlay is visible.
func (s SaveOverlay) Active() bool {
	return s.phase != saveHidden
}

// diffPage is the number of diff rows that fit in an area of the given
// height, after the border, padding, title, stats and footer rows.
func diffPage(height int) int {
	return max(height-11, 3)
}

// SetHeight sizes scrolling to the content area the overlay is drawn in.
func (s *SaveOverlay) SetHeight(height int) {
	s.page = diffPage(height)
	s.scroll(0)
}

// Show opens the overlay for the edits between original and current. An
// invalid or unchanged config goes straight to the result view.
func (s *SaveOverlay) Show(original, current *config.Config) {
	*s = SaveOverlay{phase: saveResult, page: s.page}
	if err := current.Validate(); err != nil {
		s.err = fmt.Errorf("config is invalid: %w", err)
		return
	}
	s.lines = computeDiffLines(original, current)
	if len(s.lines) == 0 {
		s.err = errNoChanges
		return
	}
	s.added, s.removed = diffStats(s.lines)
	s.phase = savePreview
}

// SaveSucceeded reports whether the last confirmation wrote the file.
func (s SaveOverlay) SaveSucceeded() bool {
	return s.phase == saveResult && s.err == nil && s.savedTo != ""
}

// Update handles a key while the overlay is active. cfg is written to path
// on confirmation.
func (s SaveOverlay) Update(msg tea.Msg, cfg *config.Config, path string) SaveOverlay {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return s
	}
	if s.phase == saveResult {
		s.phase = saveHidden
		return s
	}

	page := max(s.page, 1)
	switch km.String() {
	case "esc", "n":
		s.phase = saveHidden
	case "enter", "y":
		if err := cfg.SaveTo(path); err != nil {
			s.err = err
		} else {
			s.savedTo = path
		}
		s.phase = saveResult
	case "up", "k":
		s.scroll(-1)
	case "down", "j":
		s.scroll(1)
	case "pgup", "b":
		s.scroll(-page)
	case "pgdown", "f", " ":
		s.scroll(page)
	case "home", "g":
		s.offset = 0
	case "end", "G":
		s.offset = len(s.lines)
		s.scroll(0)
	}
	return s
}

func (s *SaveOverlay) scroll(delta int) {
	s.offset = clampOffset(s.offset+delta, len(s.lines), s.page)
}

// clampOffset keeps a scroll offset inside [0, total-visible].
func clampOffset(offset, total, visible int) int {
	if visible <= 0 {
		visible = 1
	}
	return max(0, min(offset, total-visible))
}

// View renders the overlay centred in a width x height area.
func (s SaveOverlay) View(width, height int) string {
	var body string
	switch s.phase {
	case savePreview:
		body = s.renderDiff(min(max(width-8, 30), 84), height)
	case saveResult:
		body = s.renderResult(min(max(width-8, 30), 60))
	default:
		return ""
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, body)
}

func (s SaveOverlay) renderDiff(boxW, areaH int) string {
	page := diffPage(areaH)
	off := clampOffset(s.offset, len(s.lines), page)
	end := min(off+page, len(s.lines))
	textW := max(boxW-8, 10)

	rows := make([]string, 0, end-off)
	for _, l := range s.lines[off:end] {
		rows = append(rows, renderDiffLine(l, textW))
	}

	stats := addedStyle.Render(fmt.Sprintf("+%d", s.added)) + " " +
		removedStyle.Render(fmt.Sprintf("-%d", s.removed))
	if len(s.lines) > page {
		stats += dimStyle.Render(fmt.Sprintf("  lines %d-%d of %d", off+1, end, len(s.lines)))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Save config"),
		stats,
		"",
		strings.Join(rows, "\n"),
		"",
		dimStyle.Render("y/enter: write  esc/n: cancel  j/k pgup/pgdn: scroll"),
	)
	return overlayBox.Width(boxW).Render(content)
}

func renderDiffLine(l diffLine, width int) string {
	switch l.kind {
	case diffHunk:
		return hunkStyle.Render(truncate(l.text, width))
	case diffAdded:
		return addedStyle.Render("+ " + truncate(l.text, width-2))
	case diffRemoved:
		return removedStyle.Render("- " + truncate(l.text, width-2))
	}
	return contextStyle.Render("  " + truncate(l.text, width-2))
}

func (s SaveOverlay) renderResult(boxW int) string {
	var msg string
	switch {
	case errors.Is(s.err, errNoChanges):
		msg = dimStyle.Render("Nothing to save since the last write.")
	case s.err != nil:
		msg = errStyle.Bold(true).Render("Save failed: " + s.err.Error())
	default:
		msg = okStyle.Bold(true).Render("Config written") + "\n" + dimStyle.Render(s.savedTo)
	}
	return overlayBox.Width(boxW).Render(msg + "\n\n" + dimStyle.Render("press any key"))
}
