package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/shelltweak/internal/placement"
	"github.com/1broseidon/shelltweak/internal/shell"
	"github.com/1broseidon/shelltweak/internal/store"
)

type snapshotItem struct {
	snap store.Snapshot
}

func (i snapshotItem) Title() string {
	marker := "  "
	if i.snap.Kind == store.KindSystem {
		marker = "⚙ "
	}
	return marker + i.snap.Name
}

func (i snapshotItem) Description() string {
	return i.snap.Created.Local().Format("2006-01-02 15:04:05")
}

func (i snapshotItem) FilterValue() string { return i.snap.Name }

// SnapshotsTab lists snapshots newest first and restores them.
type SnapshotsTab struct {
	env  *env
	list list.Model

	naming   bool
	nameForm *huh.Form
	fName    string

	// confirmDelete holds the snapshot awaiting a second 'x'.
	confirmDelete *store.Snapshot

	statusText string
	statusErr  bool

	width  int
	height int
	ready  bool
}

// NewSnapshotsTab creates a new SnapshotsTab sub-model.
func NewSnapshotsTab(e *env) SnapshotsTab {
	delegate := list.NewDefaultDelegate()
	delegate.SetSpacing(0)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Snapshots"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()

	return SnapshotsTab{env: e, list: l}
}

// Capturing reports whether a form or the filter owns the keyboard.
func (st SnapshotsTab) Capturing() bool {
	return st.naming || st.list.FilterState() == list.Filtering
}

// Update implements tea.Model.
func (st SnapshotsTab) Update(msg tea.Msg) (SnapshotsTab, tea.Cmd) {
	if st.naming {
		return st.updateNaming(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		st.width = msg.Width
		st.height = msg.Height
		listHeight := max(st.height-2, 1)
		st.list.SetSize(st.sidebarWidth(), listHeight)
		st.ready = true
		return st, nil

	case snapshotsLoadedMsg:
		if msg.err != nil {
			st.statusText = fmt.Sprintf("error: %v", msg.err)
			st.statusErr = true
			return st, clearStatusAfter()
		}
		items := make([]list.Item, 0, len(msg.snapshots))
		for _, s := range msg.snapshots {
			items = append(items, snapshotItem{snap: s})
		}
		st.list.SetItems(items)
		return st, nil

	case statusMsg:
		st.statusText = msg.text
		st.statusErr = msg.err
		return st, clearStatusAfter()

	case clearStatusMsg:
		st.statusText = ""
		st.confirmDelete = nil
		return st, nil

	case tea.KeyMsg:
		if st.list.FilterState() == list.Filtering {
			break
		}
		key := msg.String()
		if key != "x" {
			st.confirmDelete = nil
		}
		switch key {
		case "c":
			st.startNaming()
			return st, st.nameForm.Init()
		case "enter", "r":
			if s, ok := st.selected(); ok {
				st.statusText = "restoring " + s.Name + "..."
				st.statusErr = false
				return st, restoreSnapshotCmd(st.env.ctx, st.env.bridge, s)
			}
			return st, nil
		case "x", "delete":
			s, ok := st.selected()
			if !ok {
				return st, nil
			}
			if st.confirmDelete != nil && st.confirmDelete.ID == s.ID {
				st.confirmDelete = nil
				return st, deleteSnapshotCmd(st.env.ctx, st.env.bridge, s)
			}
			st.confirmDelete = &s
			st.statusText = "press x again to delete " + s.Name
			st.statusErr = true
			return st, clearStatusAfter()
		case "l":
			if s, ok := st.selected(); ok {
				spec := shell.PlacementOf(s.Schema, placement.Default())
				return st, func() tea.Msg {
					return editPlacementMsg{spec: spec}
				}
			}
			return st, nil
		}
	}

	var cmd tea.Cmd
	st.list, cmd = st.list.Update(msg)
	return st, cmd
}

func (st SnapshotsTab) updateNaming(msg tea.Msg) (SnapshotsTab, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "esc" {
		st.naming = false
		st.nameForm = nil
		return st, nil
	}
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		st.width = ws.Width
		st.height = ws.Height
	}

	form, cmd := st.nameForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		st.nameForm = f
	}
	if st.nameForm.State == huh.StateCompleted {
		st.naming = false
		st.nameForm = nil
		return st, createSnapshotCmd(st.env.ctx, st.env.bridge, strings.TrimSpace(st.fName))
	}
	return st, cmd
}

func (st *SnapshotsTab) startNaming() {
	st.fName = "snapshot " + time.Now().Format("2006-01-02 15:04")
	st.nameForm = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("name").
				Title("Snapshot Name").
				Description("Captures the current shell settings").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}).
				Value(&st.fName),
		),
	).WithShowHelp(true).WithShowErrors(true)
	st.naming = true
}

func (st SnapshotsTab) sidebarWidth() int {
	sw := st.width * 40 / 100
	if sw < 24 {
		sw = 24
	}
	if sw > 44 {
		sw = 44
	}
	return sw
}

func (st SnapshotsTab) selected() (store.Snapshot, bool) {
	item, ok := st.list.SelectedItem().(snapshotItem)
	if !ok {
		return store.Snapshot{}, false
	}
	return item.snap, true
}

// View implements tea.Model.
func (st SnapshotsTab) View() string {
	if st.naming && st.nameForm != nil {
		header := headerStyle.Render("New Snapshot") + dimStyle.Render("  (esc to cancel)")
		return lipgloss.NewStyle().
			Width(st.width).
			Height(st.height).
			Padding(1, 2).
			Render(header + "\n\n" + st.nameForm.View())
	}
	if !st.ready || st.width == 0 || st.height == 0 {
		return ""
	}

	hints := "c: create  enter/r: restore  l: edit  x: delete"
	status := renderStatusLine(st.statusText, st.statusErr, hints, st.width)

	if len(st.list.Items()) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			centered("No snapshots yet. Press c to take one.", st.width, st.height-1), status)
	}

	sidebarWidth := st.sidebarWidth()
	sidebar := lipgloss.NewStyle().
		Width(sidebarWidth).
		Height(st.height - 2).
		Render(st.list.View())
	sep := lipgloss.NewStyle().
		Foreground(lipgloss.Color("238")).
		Render(strings.Repeat("│\n", max(st.height-2, 1)))

	detailWidth := max(st.width-sidebarWidth-3, 10)
	columns := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " "+sep, st.renderDetail(detailWidth))
	return lipgloss.JoinVertical(lipgloss.Left, columns, status)
}

func (st SnapshotsTab) renderDetail(width int) string {
	s, ok := st.selected()
	if !ok {
		return ""
	}
	spec := shell.PlacementOf(s.Schema, placement.Default())

	title := titleStyle.Render(" " + s.Name)
	meta := dimStyle.Render(fmt.Sprintf(" %s · %s · %d settings · shell %s",
		s.Kind, s.Created.Local().Format("2006-01-02 15:04:05"),
		len(s.Schema.Entries), displayOrDefault(s.Schema.Shell, "any")))

	previewHeight := max(st.height-6, 5)
	lines := st.env.prev.render(spec, width-2, previewHeight)
	return lipgloss.JoinVertical(lipgloss.Left, title, meta, "", strings.Join(lines, "\n"))
}

func displayOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
