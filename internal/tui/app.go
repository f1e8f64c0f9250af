// Package tui is the interactive placement editor.
package tui

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/1broseidon/shelltweak/internal/assets"
	"github.com/1broseidon/shelltweak/internal/config"
	"github.com/1broseidon/shelltweak/internal/store"
	"github.com/1broseidon/shelltweak/internal/tiling"
)

// Options configures Run.
type Options struct {
	// ConfigPath is where ctrl+s writes and what is watched for edits.
	ConfigPath string
	Result     *config.LoadResult
	Bridge     *store.Bridge
	Registry   *assets.Registry
	Memo       *tiling.Memo
	// Screen sets the preview proportions.
	Screen tiling.Rect
	Logger *log.Logger
	// Color renders previews with lipgloss colours.
	Color bool
	// Watch reloads the config when the file changes.
	Watch bool
}

// env is shared by the tabs.
type env struct {
	ctx    context.Context
	bridge *store.Bridge
	prev   previewer
	logger *log.Logger
}

// model is the root bubbletea model for the TUI.
type model struct {
	env        *env
	configPath string
	result     *config.LoadResult
	reloads    <-chan configReloadedMsg

	// Tab navigation
	activeTab Tab

	// Sub-models
	placementTab PlacementTab
	layoutsTab   LayoutsTab
	snapshotsTab SnapshotsTab

	// Save overlay
	originalConfig *config.Config
	saveOverlay    SaveOverlay

	applied string
	engine  string

	// Terminal dimensions
	width  int
	height int
}

// Run starts the TUI and blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	if opts.Bridge == nil || opts.Result == nil {
		return fmt.Errorf("tui: bridge and config are required")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var reloads chan configReloadedMsg
	if opts.Watch && opts.ConfigPath != "" {
		reloads = make(chan configReloadedMsg, 1)
		go func() {
			err := config.Watch(ctx, opts.ConfigPath, opts.Logger, func(res *config.LoadResult, err error) {
				select {
				case reloads <- configReloadedMsg{res: res, err: err}:
				case <-ctx.Done():
				}
			})
			if err != nil && opts.Logger != nil {
				opts.Logger.Warn("config watch stopped", "err", err)
			}
		}()
	}

	m := newModel(ctx, opts, reloads)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func newModel(ctx context.Context, opts Options, reloads <-chan configReloadedMsg) model {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	reg := opts.Registry
	if reg == nil {
		reg = assets.NewRegistry(false)
	}
	memo := opts.Memo
	if memo == nil {
		memo = tiling.NewMemo(0)
	}
	screen := opts.Screen
	if screen.Empty() {
		screen = tiling.Rect{Width: 1920, Height: 1080}
	}

	e := &env{
		ctx:    ctx,
		bridge: opts.Bridge,
		prev:   previewer{reg: reg, memo: memo, screen: screen, color: opts.Color},
		logger: logger,
	}

	m := model{
		env:        e,
		configPath: opts.ConfigPath,
		result:     opts.Result,
		reloads:    reloads,
		activeTab:  TabPlacement,
		engine:     opts.Bridge.Engine().Name(),
	}
	// Snapshot original config for diff preview on save
	m.originalConfig = cloneConfig(m.result.Config)

	m.placementTab = NewPlacementTab(e, m.result.Config)
	m.layoutsTab = NewLayoutsTab(e)
	m.snapshotsTab = NewSnapshotsTab(e)
	return m
}

func (m model) config() *config.Config {
	if m.result == nil {
		return nil
	}
	return m.result.Config
}

func (m model) dirty() bool {
	return len(computeDiffLines(m.originalConfig, m.config())) > 0
}

func (m model) refresh() tea.Cmd {
	return tea.Batch(
		loadLayoutsCmd(m.env.ctx, m.env.bridge),
		loadSnapshotsCmd(m.env.ctx, m.env.bridge),
	)
}

// capturing reports whether the active tab owns the keyboard.
func (m model) capturing() bool {
	switch m.activeTab {
	case TabPlacement:
		return m.placementTab.Capturing()
	case TabLayouts:
		return m.layoutsTab.Capturing()
	case TabSnapshots:
		return m.snapshotsTab.Capturing()
	}
	return false
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.refresh()}
	if m.reloads != nil {
		cmds = append(cmds, waitForConfig(m.reloads))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Save overlay captures all input when active
	if m.saveOverlay.Active() {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			prevPhase := m.saveOverlay.phase
			m.saveOverlay = m.saveOverlay.Update(msg, m.config(), m.configPath)
			// After successful save, update the original snapshot
			if prevPhase == savePreview && m.saveOverlay.SaveSucceeded() {
				m.originalConfig = cloneConfig(m.config())
			}
			return m, nil
		case tea.WindowSizeMsg:
			m.width = msg.Width
			m.height = msg.Height
			m.saveOverlay.SetHeight(m.contentHeight())
			return m, nil
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Forward to sub-models with content dimensions
		subMsg := tea.WindowSizeMsg{Width: m.width, Height: m.contentHeight()}
		m.placementTab, _ = m.placementTab.Update(subMsg)
		m.layoutsTab, _ = m.layoutsTab.Update(subMsg)
		m.snapshotsTab, _ = m.snapshotsTab.Update(subMsg)
		return m, nil

	case layoutsLoadedMsg:
		var cmd tea.Cmd
		m.layoutsTab, cmd = m.layoutsTab.Update(msg)
		return m, cmd

	case snapshotsLoadedMsg:
		var cmd tea.Cmd
		m.snapshotsTab, cmd = m.snapshotsTab.Update(msg)
		return m, cmd

	case actionDoneMsg:
		status := statusMsg{text: msg.text}
		if msg.err != nil {
			m.env.logger.Error("action failed", "err", msg.err)
			status = statusMsg{text: "error: " + msg.err.Error(), err: true}
		}
		if msg.applied != "" {
			m.applied = msg.applied
			m.layoutsTab.SetApplied(msg.applied)
		}
		return m, tea.Batch(m.refresh(), statusCmd(status))

	case editPlacementMsg:
		m.placementTab, _ = m.placementTab.Update(msg)
		m.activeTab = TabPlacement
		return m, nil

	case configReloadedMsg:
		return m.handleReload(msg)

	case clearStatusMsg:
		m.placementTab, _ = m.placementTab.Update(msg)
		m.layoutsTab, _ = m.layoutsTab.Update(msg)
		m.snapshotsTab, _ = m.snapshotsTab.Update(msg)
		return m, nil
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		if km.String() == "ctrl+c" {
			return m, tea.Quit
		}
		// ctrl+s triggers save overlay from any context (including form editing)
		if km.String() == "ctrl+s" {
			if cfg := m.config(); cfg != nil {
				m.saveOverlay.Show(m.originalConfig, cfg)
				m.saveOverlay.SetHeight(m.contentHeight())
			}
			return m, nil
		}
		if !m.capturing() {
			switch km.String() {
			case "q":
				return m, tea.Quit
			case "tab":
				m.activeTab = (m.activeTab + 1) % tabCount
				return m, nil
			case "shift+tab":
				m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
				return m, nil
			case "1":
				m.activeTab = TabPlacement
				return m, nil
			case "2":
				m.activeTab = TabLayouts
				return m, nil
			case "3":
				m.activeTab = TabSnapshots
				return m, nil
			}
		}
	}

	// Delegate to active tab's sub-model
	return m.updateActive(msg)
}

func (m model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.activeTab {
	case TabPlacement:
		m.placementTab, cmd = m.placementTab.Update(msg)
	case TabLayouts:
		m.layoutsTab, cmd = m.layoutsTab.Update(msg)
	case TabSnapshots:
		m.snapshotsTab, cmd = m.snapshotsTab.Update(msg)
	}
	return m, cmd
}

// statusCmd delivers status to whichever tab is showing when it arrives.
func statusCmd(status statusMsg) tea.Cmd {
	return func() tea.Msg { return status }
}

func (m model) handleReload(msg configReloadedMsg) (tea.Model, tea.Cmd) {
	next := waitForConfig(m.reloads)
	if msg.err != nil {
		return m, tea.Batch(next, statusCmd(statusMsg{text: "config reload failed: " + msg.err.Error(), err: true}))
	}
	if m.dirty() {
		return m, tea.Batch(next, statusCmd(statusMsg{text: "config changed on disk; unsaved edits kept", err: true}))
	}
	m.result = msg.res
	m.originalConfig = cloneConfig(msg.res.Config)
	m.placementTab.SetConfig(msg.res.Config)
	m.env.logger.Info("config reloaded", "path", m.configPath)
	return m, tea.Batch(next, statusCmd(statusMsg{text: "config reloaded"}))
}

// contentHeight returns the height available for tab content.
func (m model) contentHeight() int {
	// status bar (1) + tab bar (2 with margin) + help bar (1)
	h := m.height - 4
	if h < 1 {
		h = 1
	}
	return h
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.engine, m.applied, m.dirty(), m.width)
	tabBar := renderTabBar(m.activeTab, m.width)
	helpBar := renderHelpBar(m.width)

	usedHeight := lipgloss.Height(statusBar) + lipgloss.Height(tabBar) + lipgloss.Height(helpBar)
	contentHeight := m.height - usedHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	var content string
	if m.saveOverlay.Active() {
		content = m.saveOverlay.View(m.width, contentHeight)
	} else {
		switch m.activeTab {
		case TabPlacement:
			content = m.placementTab.View()
		case TabLayouts:
			content = m.layoutsTab.View()
		case TabSnapshots:
			content = m.snapshotsTab.View()
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		tabBar,
		content,
		helpBar,
	)
}
