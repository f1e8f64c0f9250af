package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Tab identifies a TUI tab.
type Tab int

const (
	TabPlacement Tab = iota
	TabLayouts
	TabSnapshots
	tabCount // sentinel for iteration
)

var tabNames = [tabCount]string{"Placement", "Layouts", "Snapshots"}

func (t Tab) String() string {
	if t < 0 || t >= tabCount {
		return "?"
	}
	return tabNames[t]
}

var (
	tabStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(lipgloss.Color("250")).
			Background(lipgloss.Color("236"))
	activeTabStyle = tabStyle.
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62"))
	barBackground = lipgloss.Color("235")

	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
)

// renderTabBar draws one numbered label per tab, separated by a one-cell
// gap, with a blank line below.
func renderTabBar(active Tab, width int) string {
	gap := lipgloss.NewStyle().Background(barBackground).Render(" ")
	cells := make([]string, 0, 2*int(tabCount))
	for t := range tabCount {
		style := tabStyle
		if t == active {
			style = activeTabStyle
		}
		if t > 0 {
			cells = append(cells, gap)
		}
		cells = append(cells, style.Render(fmt.Sprintf("%d:%s", t+1, t)))
	}
	return lipgloss.NewStyle().Width(width).MarginBottom(1).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
}

// renderStatusBar shows the active engine, the last applied layout and
// whether the config has unsaved edits.
func renderStatusBar(engine, applied string, dirty bool, width int) string {
	dot := okStyle.Render("●")
	parts := []string{dot + " engine:" + engine}
	if applied != "" {
		parts = append(parts, "applied:"+applied)
	}
	if dirty {
		parts = append(parts, warnStyle.Render("unsaved changes"))
	}

	style := lipgloss.NewStyle().
		Width(width).
		Background(barBackground).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1)
	return style.Render(strings.Join(parts, "  "))
}

func renderHelpBar(width int) string {
	help := fmt.Sprintf("tab/shift-tab: switch tabs  1-%d: jump to tab  ctrl-s: save config  q/ctrl-c: quit", tabCount)
	return dimStyle.Width(width).Padding(0, 1).Render(help)
}

// renderStatusLine renders a tab's bottom line: status text on the left,
// key hints on the right.
func renderStatusLine(status string, isErr bool, hints string, width int) string {
	left := ""
	if status != "" {
		if isErr {
			left = errStyle.Render(status)
		} else {
			left = okStyle.Render(status)
		}
	}
	right := dimStyle.Render(hints)

	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		Render(left + strings.Repeat(" ", gap) + right)
}

// centered renders msg in the middle of a width x height area.
func centered(msg string, width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Foreground(lipgloss.Color("241")).
		Align(lipgloss.Center, lipgloss.Center).
		Render(msg)
}
