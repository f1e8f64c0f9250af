package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/shelltweak/internal/store"
	"github.com/1broseidon/shelltweak/internal/tiling"
)

const (
	galleryMinItem = 26
	gallerySpacing = 2
)

// layoutItem implements list.Item for the layout picker sidebar.
type layoutItem struct {
	layout   store.Layout
	isActive bool
}

func (i layoutItem) Title() string {
	prefix := "  "
	if i.isActive {
		prefix = "* "
	}
	suffix := ""
	if !i.layout.Custom {
		suffix = " (builtin)"
	}
	return prefix + i.layout.Name + suffix
}

func (i layoutItem) Description() string { return "" }
func (i layoutItem) FilterValue() string { return i.layout.Name }

// LayoutsTab browses built-in and saved layouts.
type LayoutsTab struct {
	env  *env
	list list.Model

	layouts []store.Layout
	applied string
	gallery bool

	statusText string
	statusErr  bool

	width  int
	height int
	ready  bool
}

// NewLayoutsTab creates a new LayoutsTab sub-model.
func NewLayoutsTab(e *env) LayoutsTab {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Layouts"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()

	return LayoutsTab{env: e, list: l}
}

// Capturing reports whether the filter input owns the keyboard.
func (lt LayoutsTab) Capturing() bool {
	return lt.list.FilterState() == list.Filtering
}

func (lt *LayoutsTab) rebuildItems() {
	items := make([]list.Item, 0, len(lt.layouts))
	for _, l := range lt.layouts {
		items = append(items, layoutItem{layout: l, isActive: l.Name == lt.applied})
	}
	lt.list.SetItems(items)
}

// Update implements tea.Model.
func (lt LayoutsTab) Update(msg tea.Msg) (LayoutsTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		lt.width = msg.Width
		lt.height = msg.Height
		lt.updateListSize()
		lt.ready = true
		return lt, nil

	case layoutsLoadedMsg:
		if msg.err != nil {
			lt.statusText = fmt.Sprintf("error: %v", msg.err)
			lt.statusErr = true
			return lt, clearStatusAfter()
		}
		lt.layouts = msg.layouts
		lt.rebuildItems()
		return lt, nil

	case statusMsg:
		lt.statusText = msg.text
		lt.statusErr = msg.err
		return lt, clearStatusAfter()

	case clearStatusMsg:
		lt.statusText = ""
		return lt, nil

	case tea.KeyMsg:
		if lt.Capturing() {
			break
		}
		switch msg.String() {
		case "enter", "a":
			if l, ok := lt.selected(); ok {
				lt.statusText = "applying " + l.Name + "..."
				lt.statusErr = false
				return lt, applyLayoutCmd(lt.env.ctx, lt.env.bridge, l.ID)
			}
			return lt, nil
		case "x", "delete":
			l, ok := lt.selected()
			if !ok {
				return lt, nil
			}
			if !l.Custom {
				lt.statusText = "built-in layouts cannot be deleted"
				lt.statusErr = true
				return lt, clearStatusAfter()
			}
			return lt, deleteLayoutCmd(lt.env.ctx, lt.env.bridge, l)
		case "l":
			if l, ok := lt.selected(); ok {
				return lt, func() tea.Msg {
					return editPlacementMsg{name: l.Name, spec: l.Preview}
				}
			}
			return lt, nil
		case "g":
			lt.gallery = !lt.gallery
			return lt, nil
		}
	}

	var cmd tea.Cmd
	lt.list, cmd = lt.list.Update(msg)
	return lt, cmd
}

// SetApplied marks the layout applied last.
func (lt *LayoutsTab) SetApplied(name string) {
	lt.applied = name
	lt.rebuildItems()
}

func (lt *LayoutsTab) updateListSize() {
	listHeight := lt.height - 2
	if listHeight < 1 {
		listHeight = 1
	}
	lt.list.SetSize(lt.sidebarWidth(), listHeight)
}

func (lt LayoutsTab) sidebarWidth() int {
	// Sidebar takes ~35% of width, min 20, max 40
	sw := lt.width * 35 / 100
	if sw < 20 {
		sw = 20
	}
	if sw > 40 {
		sw = 40
	}
	return sw
}

func (lt LayoutsTab) selected() (store.Layout, bool) {
	item, ok := lt.list.SelectedItem().(layoutItem)
	if !ok {
		return store.Layout{}, false
	}
	return item.layout, true
}

// View implements tea.Model.
func (lt LayoutsTab) View() string {
	if !lt.ready || lt.width == 0 || lt.height == 0 {
		return ""
	}

	hints := "enter/a: apply  l: edit  x: delete  /: filter  g: gallery"
	status := renderStatusLine(lt.statusText, lt.statusErr, hints, lt.width)

	if lt.gallery {
		return lipgloss.JoinVertical(lipgloss.Left, lt.renderGallery(lt.width, lt.height-1), status)
	}

	sidebarWidth := lt.sidebarWidth()
	previewWidth := lt.width - sidebarWidth - 3 // 3 for separator + padding
	if previewWidth < 10 {
		previewWidth = 10
	}

	sidebar := lipgloss.NewStyle().
		Width(sidebarWidth).
		Height(lt.height - 2).
		Render(lt.list.View())

	sep := lipgloss.NewStyle().
		Foreground(lipgloss.Color("238")).
		Render(strings.Repeat("│\n", max(lt.height-2, 1)))

	columns := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " "+sep, lt.renderPreview(previewWidth))
	return lipgloss.JoinVertical(lipgloss.Left, columns, status)
}

func (lt LayoutsTab) renderPreview(previewWidth int) string {
	l, ok := lt.selected()
	if !ok {
		return ""
	}

	kind := "built-in"
	if l.Custom {
		kind = fmt.Sprintf("custom, %d settings", len(l.Schema.Entries))
	}
	title := titleStyle.Render(fmt.Sprintf(" %s  [%s]", l.Name, kind))
	summary := lipgloss.NewStyle().
		Foreground(lipgloss.Color("250")).
		Render(" " + truncate(lt.env.prev.summary(l.Preview), previewWidth-1))

	previewHeight := lt.height - 6 // title + summary + status + padding
	if previewHeight < 5 {
		previewHeight = 5
	}
	lines := lt.env.prev.render(l.Preview, previewWidth-2, previewHeight)

	return lipgloss.JoinVertical(lipgloss.Left, title, summary, "", strings.Join(lines, "\n"))
}

// renderGallery tiles a thumbnail of every listed layout across the width.
func (lt LayoutsTab) renderGallery(width, height int) string {
	items := lt.list.VisibleItems()
	if len(items) == 0 {
		return centered("No layouts", width, height)
	}

	cols, itemW := tiling.GridColumns(width, galleryMinItem, gallerySpacing)
	_, thumbH := fitCanvas(lt.env.prev.screen, itemW, height)
	if thumbH > 8 {
		thumbH = 8
	}
	cellH := thumbH + 1 // caption
	rowsFit := max(height/cellH, 1)

	// Scroll so the selected row stays visible.
	selRow := lt.list.Index() / cols
	firstRow := 0
	if selRow >= rowsFit {
		firstRow = selRow - rowsFit + 1
	}

	selectedStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	captionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	gap := strings.Repeat(" ", gallerySpacing)

	var rows []string
	for r := firstRow; r < firstRow+rowsFit; r++ {
		var cells []string
		for c := 0; c < cols; c++ {
			i := r*cols + c
			if i >= len(items) {
				break
			}
			item, _ := items[i].(layoutItem)
			caption := captionStyle
			if i == lt.list.Index() {
				caption = selectedStyle
			}
			thumb := strings.Join(lt.env.prev.render(item.layout.Preview, itemW, thumbH), "\n")
			cell := lipgloss.NewStyle().Width(itemW).Render(
				caption.Render(truncate(item.layout.Name, itemW)) + "\n" + thumb)
			if c > 0 {
				cells = append(cells, gap)
			}
			cells = append(cells, cell)
		}
		if len(cells) == 0 {
			break
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.NewStyle().Height(height).Render(strings.Join(rows, "\n"))
}
