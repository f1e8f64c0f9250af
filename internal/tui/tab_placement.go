package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/shelltweak/internal/config"
	"github.com/1broseidon/shelltweak/internal/placement"
)

const sizeStep = 4

// PlacementTab edits the configured placement with a live preview.
type PlacementTab struct {
	env *env
	cfg *config.Config

	// loadedFrom names the layout last loaded into the editor.
	loadedFrom string

	width  int
	height int

	// Edit mode
	editing bool
	form    *huh.Form

	// Form-bound values (strings for huh, converted on submit)
	fPanelPos    string
	fPanelExtend bool
	fPanelHidden bool
	fPanelSize   string
	fDockPos     string
	fDockExtend  bool
	fDockHidden  bool
	fDockSize    string
	fDockItems   string
	fShowWindow  bool

	// Save-as-layout prompt
	naming   bool
	nameForm *huh.Form
	fName    string

	statusText string
	statusErr  bool
}

// NewPlacementTab creates a PlacementTab editing cfg.Placement.
func NewPlacementTab(e *env, cfg *config.Config) PlacementTab {
	return PlacementTab{env: e, cfg: cfg}
}

// SetConfig updates the config reference.
func (t *PlacementTab) SetConfig(cfg *config.Config) {
	t.cfg = cfg
}

// Capturing reports whether a form owns the keyboard.
func (t PlacementTab) Capturing() bool {
	return t.editing || t.naming
}

func (t PlacementTab) spec() placement.LayoutSpec {
	if t.cfg == nil {
		return placement.Default()
	}
	return t.cfg.Placement
}

func (t *PlacementTab) setSpec(spec placement.LayoutSpec) {
	if t.cfg == nil {
		return
	}
	t.cfg.Placement = spec.Normalize()
}

// Update implements tea.Model.
func (t PlacementTab) Update(msg tea.Msg) (PlacementTab, tea.Cmd) {
	switch {
	case t.editing:
		return t.updateEditing(msg)
	case t.naming:
		return t.updateNaming(msg)
	}
	return t.updateDisplay(msg)
}

func (t PlacementTab) updateDisplay(msg tea.Msg) (PlacementTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		t.width = msg.Width
		t.height = msg.Height
		return t, nil

	case editPlacementMsg:
		t.setSpec(msg.spec)
		t.loadedFrom = msg.name
		return t, nil

	case statusMsg:
		t.statusText = msg.text
		t.statusErr = msg.err
		return t, clearStatusAfter()

	case clearStatusMsg:
		t.statusText = ""
		return t, nil

	case tea.KeyMsg:
		if t.cfg == nil {
			return t, nil
		}
		spec := t.spec()
		switch msg.String() {
		case "e":
			t.startEditing()
			return t, t.form.Init()
		case "s":
			t.startNaming()
			return t, t.nameForm.Init()
		case "p":
			spec.Panel.Position = cyclePosition(spec.Panel.Position, 1)
		case "P":
			spec.Panel.Position = cyclePosition(spec.Panel.Position, -1)
		case "d":
			spec.Dock.Position = cyclePosition(spec.Dock.Position, 1)
		case "D":
			spec.Dock.Position = cyclePosition(spec.Dock.Position, -1)
		case "x":
			spec.Panel.Extend = !spec.Panel.Extend
		case "X":
			spec.Dock.Extend = !spec.Dock.Extend
		case "h":
			spec.Panel.Hidden = !spec.Panel.Hidden
		case "H":
			spec.Dock.Hidden = !spec.Dock.Hidden
		case "]":
			spec.Panel.Size += sizeStep
		case "[":
			spec.Panel.Size -= sizeStep
		case "}":
			spec.Dock.Size += sizeStep
		case "{":
			spec.Dock.Size -= sizeStep
		case "+", "=":
			spec.DockItemCount++
		case "-":
			spec.DockItemCount--
		case "w":
			spec.ShowWindow = !spec.ShowWindow
		case "v":
			spec = spec.Flip(true)
		case "m":
			spec = spec.Flip(false)
		case "r":
			spec = placement.Default()
		default:
			return t, nil
		}
		t.setSpec(spec)
		t.loadedFrom = ""
	}
	return t, nil
}

func (t PlacementTab) updateEditing(msg tea.Msg) (PlacementTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "esc" {
			t.editing = false
			t.form = nil
			return t, nil
		}
	case tea.WindowSizeMsg:
		t.width = msg.Width
		t.height = msg.Height
	}

	form, cmd := t.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		t.form = f
	}

	if t.form.State == huh.StateCompleted {
		t.applyForm()
		t.editing = false
		t.form = nil
		return t, nil
	}
	return t, cmd
}

func (t PlacementTab) updateNaming(msg tea.Msg) (PlacementTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "esc" {
			t.naming = false
			t.nameForm = nil
			return t, nil
		}
	case tea.WindowSizeMsg:
		t.width = msg.Width
		t.height = msg.Height
	}

	form, cmd := t.nameForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		t.nameForm = f
	}

	if t.nameForm.State == huh.StateCompleted {
		t.naming = false
		t.nameForm = nil
		name := strings.TrimSpace(t.fName)
		return t, saveLayoutCmd(t.env.ctx, t.env.bridge, name, t.spec())
	}
	return t, cmd
}

func (t *PlacementTab) startEditing() {
	spec := t.spec()
	t.fPanelPos = string(spec.Panel.Position)
	t.fPanelExtend = spec.Panel.Extend
	t.fPanelHidden = spec.Panel.Hidden
	t.fPanelSize = strconv.Itoa(spec.Panel.Size)
	t.fDockPos = string(spec.Dock.Position)
	t.fDockExtend = spec.Dock.Extend
	t.fDockHidden = spec.Dock.Hidden
	t.fDockSize = strconv.Itoa(spec.Dock.Size)
	t.fDockItems = strconv.Itoa(spec.DockItemCount)
	t.fShowWindow = spec.ShowWindow

	posOpts := make([]huh.Option[string], 0, len(placement.Positions))
	for _, p := range placement.Positions {
		posOpts = append(posOpts, huh.NewOption(p.String(), p.String()))
	}

	w := t.width - 4
	if w < 40 {
		w = 40
	}

	t.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("panel_position").
				Title("Panel Position").
				Description("Screen edge the panel is anchored to").
				Options(posOpts...).
				Value(&t.fPanelPos),
			huh.NewConfirm().
				Key("panel_extend").
				Title("Extend Panel").
				Description("Stretch along the whole edge").
				Value(&t.fPanelExtend),
			huh.NewConfirm().
				Key("panel_hidden").
				Title("Hide Panel").
				Value(&t.fPanelHidden),
			huh.NewInput().
				Key("panel_size").
				Title("Panel Size").
				Description("Thickness in pixels").
				Validate(validSize).
				Value(&t.fPanelSize),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("dock_position").
				Title("Dock Position").
				Options(posOpts...).
				Value(&t.fDockPos),
			huh.NewConfirm().
				Key("dock_extend").
				Title("Extend Dock").
				Value(&t.fDockExtend),
			huh.NewConfirm().
				Key("dock_hidden").
				Title("Hide Dock").
				Value(&t.fDockHidden),
			huh.NewInput().
				Key("dock_size").
				Title("Dock Size").
				Description("Thickness in pixels").
				Validate(validSize).
				Value(&t.fDockSize),
			huh.NewInput().
				Key("dock_items").
				Title("Dock Items").
				Validate(validSize).
				Value(&t.fDockItems),
			huh.NewConfirm().
				Key("show_window").
				Title("Show Window").
				Description("Draw a sample window in the content area").
				Value(&t.fShowWindow),
		),
	).WithWidth(w).WithShowHelp(true).WithShowErrors(true)

	t.editing = true
}

func (t *PlacementTab) startNaming() {
	t.fName = t.loadedFrom
	t.nameForm = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("name").
				Title("Save Layout As").
				Description("Stored with the current shell settings").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}).
				Value(&t.fName),
		),
	).WithShowHelp(true).WithShowErrors(true)
	t.naming = true
}

func (t *PlacementTab) applyForm() {
	spec := t.spec()
	if p, err := placement.ParsePosition(t.fPanelPos); err == nil {
		spec.Panel.Position = p
	}
	spec.Panel.Extend = t.fPanelExtend
	spec.Panel.Hidden = t.fPanelHidden
	if v, err := strconv.Atoi(t.fPanelSize); err == nil && v >= 0 {
		spec.Panel.Size = v
	}
	if p, err := placement.ParsePosition(t.fDockPos); err == nil {
		spec.Dock.Position = p
	}
	spec.Dock.Extend = t.fDockExtend
	spec.Dock.Hidden = t.fDockHidden
	if v, err := strconv.Atoi(t.fDockSize); err == nil && v >= 0 {
		spec.Dock.Size = v
	}
	if v, err := strconv.Atoi(t.fDockItems); err == nil && v >= 0 {
		spec.DockItemCount = v
	}
	spec.ShowWindow = t.fShowWindow
	t.setSpec(spec)
	t.loadedFrom = ""
}

func validSize(s string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("must be a whole number")
	}
	if v < 0 {
		return fmt.Errorf("must be >= 0")
	}
	return nil
}

// cyclePosition steps through placement.Positions.
func cyclePosition(p placement.Position, delta int) placement.Position {
	n := len(placement.Positions)
	for i, candidate := range placement.Positions {
		if candidate == p {
			return placement.Positions[((i+delta)%n+n)%n]
		}
	}
	return placement.Positions[0]
}

// View implements tea.Model.
func (t PlacementTab) View() string {
	switch {
	case t.editing && t.form != nil:
		return t.viewForm("Editing Placement", t.form)
	case t.naming && t.nameForm != nil:
		return t.viewForm("Save Layout", t.nameForm)
	}
	return t.viewDisplay()
}

func (t PlacementTab) viewDisplay() string {
	if t.cfg == nil {
		return centered("No config loaded", t.width, t.height)
	}
	spec := t.spec()

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("250")).
		Width(12).
		Align(lipgloss.Right).
		PaddingRight(2)
	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Bold(true)
	row := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value)
	}

	source := "config"
	if t.loadedFrom != "" {
		source = t.loadedFrom
	}
	window := "shown"
	if !spec.ShowWindow {
		window = "hidden"
	}
	lines := []string{
		"",
		row("Source", source),
		"",
		row("Panel", describeRegion(spec.Panel)),
		row("Dock", describeRegion(spec.Dock)),
		row("Dock Items", strconv.Itoa(spec.DockItemCount)),
		row("Window", window),
		"",
		dimStyle.Render("  p/P d/D  move panel/dock"),
		dimStyle.Render("  x/X      toggle extend"),
		dimStyle.Render("  h/H      toggle hidden"),
		dimStyle.Render("  [ ] { }  panel/dock size"),
		dimStyle.Render("  + -      dock items"),
		dimStyle.Render("  v m      flip vertical/horizontal"),
		dimStyle.Render("  w r      window, reset"),
	}
	fields := lipgloss.NewStyle().Width(36).Render(strings.Join(lines, "\n"))

	previewW := t.width - 36 - 2
	previewH := t.height - 3
	var right string
	if previewW >= 10 && previewH >= 3 {
		canvas := t.env.prev.render(spec, previewW, previewH-1)
		summary := dimStyle.Render(truncate(t.env.prev.summary(spec), previewW))
		right = lipgloss.JoinVertical(lipgloss.Left, "", strings.Join(canvas, "\n"), summary)
	}

	body := lipgloss.NewStyle().
		Height(t.height - 1).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, fields, "  ", right))
	status := renderStatusLine(t.statusText, t.statusErr, "e: edit  s: save as layout", t.width)
	return lipgloss.JoinVertical(lipgloss.Left, body, status)
}

func (t PlacementTab) viewForm(title string, form *huh.Form) string {
	header := headerStyle.Render(title) + dimStyle.Render("  (esc to cancel)")
	style := lipgloss.NewStyle().
		Width(t.width).
		Height(t.height).
		Padding(1, 2)
	return style.Render(header + "\n\n" + form.View())
}

func describeRegion(r placement.RegionSpec) string {
	parts := []string{r.Position.String()}
	if r.Extend {
		parts = append(parts, "extend")
	}
	if r.Hidden {
		parts = append(parts, "hidden")
	}
	parts = append(parts, strconv.Itoa(r.Size))
	return strings.Join(parts, " · ")
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}
