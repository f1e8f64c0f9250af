package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/1broseidon/shelltweak/internal/config"
	"github.com/1broseidon/shelltweak/internal/placement"
	"github.com/1broseidon/shelltweak/internal/store"
)

const statusTimeout = 3 * time.Second

// statusMsg reports the outcome of an action in the active tab.
type statusMsg struct {
	text string
	err  bool
}

// clearStatusMsg clears the status message after a delay.
type clearStatusMsg struct{}

type layoutsLoadedMsg struct {
	layouts []store.Layout
	err     error
}

type snapshotsLoadedMsg struct {
	snapshots []store.Snapshot
	err       error
}

// actionDoneMsg is sent when a bridge mutation finishes. The app refreshes
// both lists afterwards since applying a layout may add a system snapshot.
type actionDoneMsg struct {
	text    string
	err     error
	applied string
}

// editPlacementMsg loads a placement into the editor tab.
type editPlacementMsg struct {
	name string
	spec placement.LayoutSpec
}

type configReloadedMsg struct {
	res *config.LoadResult
	err error
}

func clearStatusAfter() tea.Cmd {
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

func loadLayoutsCmd(ctx context.Context, b *store.Bridge) tea.Cmd {
	return func() tea.Msg {
		layouts, err := b.Layouts(ctx)
		return layoutsLoadedMsg{layouts: layouts, err: err}
	}
}

func loadSnapshotsCmd(ctx context.Context, b *store.Bridge) tea.Cmd {
	return func() tea.Msg {
		snaps, err := b.Snapshots(ctx)
		return snapshotsLoadedMsg{snapshots: snaps, err: err}
	}
}

func applyLayoutCmd(ctx context.Context, b *store.Bridge, id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		l, err := b.ApplyLayout(ctx, id)
		if err != nil {
			return actionDoneMsg{err: fmt.Errorf("apply: %w", err)}
		}
		return actionDoneMsg{text: "applied: " + l.Name, applied: l.Name}
	}
}

func saveLayoutCmd(ctx context.Context, b *store.Bridge, name string, spec placement.LayoutSpec) tea.Cmd {
	return func() tea.Msg {
		l, err := b.SaveLayout(ctx, name, spec)
		if err != nil {
			return actionDoneMsg{err: fmt.Errorf("save layout: %w", err)}
		}
		return actionDoneMsg{text: "saved layout: " + l.Name}
	}
}

func deleteLayoutCmd(ctx context.Context, b *store.Bridge, l store.Layout) tea.Cmd {
	return func() tea.Msg {
		if err := b.DeleteLayout(ctx, l.ID); err != nil {
			return actionDoneMsg{err: fmt.Errorf("delete %s: %w", l.Name, err)}
		}
		return actionDoneMsg{text: "deleted layout: " + l.Name}
	}
}

func createSnapshotCmd(ctx context.Context, b *store.Bridge, name string) tea.Cmd {
	return func() tea.Msg {
		s, err := b.CreateSnapshot(ctx, name, store.KindUser)
		if err != nil {
			return actionDoneMsg{err: fmt.Errorf("snapshot: %w", err)}
		}
		return actionDoneMsg{text: "snapshot taken: " + s.Name}
	}
}

func restoreSnapshotCmd(ctx context.Context, b *store.Bridge, s store.Snapshot) tea.Cmd {
	return func() tea.Msg {
		if _, err := b.RestoreSnapshot(ctx, s.ID); err != nil {
			return actionDoneMsg{err: fmt.Errorf("restore %s: %w", s.Name, err)}
		}
		return actionDoneMsg{text: "restored: " + s.Name}
	}
}

func deleteSnapshotCmd(ctx context.Context, b *store.Bridge, s store.Snapshot) tea.Cmd {
	return func() tea.Msg {
		if err := b.DeleteSnapshot(ctx, s.ID); err != nil {
			return actionDoneMsg{err: fmt.Errorf("delete %s: %w", s.Name, err)}
		}
		return actionDoneMsg{text: "deleted snapshot: " + s.Name}
	}
}

// waitForConfig blocks until the watcher delivers the next reload.
func waitForConfig(ch <-chan configReloadedMsg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}
