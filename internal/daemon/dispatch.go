// Package daemon runs hotkey actions against the layout store.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/1broseidon/shelltweak/internal/config"
	"github.com/1broseidon/shelltweak/internal/palette"
	"github.com/1broseidon/shelltweak/internal/placement"
	"github.com/1broseidon/shelltweak/internal/shell"
	"github.com/1broseidon/shelltweak/internal/store"
)

// Dispatcher turns hotkey actions into bridge calls. Actions run one at a
// time on Run's goroutine so the X event loop never blocks on a launcher.
type Dispatcher struct {
	bridge  *store.Bridge
	palette palette.Backend
	logger  *log.Logger
	queue   chan config.HotkeyAction

	mu sync.Mutex
	// applied is the layout this dispatcher applied last, or uuid.Nil after
	// a snapshot restore.
	applied uuid.UUID
}

// NewDispatcher creates a Dispatcher. backend may be nil, in which case the
// pick action fails.
func NewDispatcher(bridge *store.Bridge, backend palette.Backend, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Dispatcher{
		bridge:  bridge,
		palette: backend,
		logger:  logger,
		queue:   make(chan config.HotkeyAction, 1),
	}
}

// Trigger queues action for Run. A press that arrives while another action
// is still pending is dropped.
func (d *Dispatcher) Trigger(action config.HotkeyAction) {
	select {
	case d.queue <- action:
	default:
		d.logger.Debug("hotkey dropped, busy", "action", action)
	}
}

// Run executes queued actions until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case action := <-d.queue:
			if err := d.Do(ctx, action); err != nil {
				d.logger.Error("hotkey action failed", "action", action, "err", err)
			}
		}
	}
}

// Do runs action and waits for it to finish.
func (d *Dispatcher) Do(ctx context.Context, action config.HotkeyAction) error {
	d.logger.Debug("running hotkey action", "action", action)
	switch action.Kind {
	case config.ActionPick:
		return d.pick(ctx)
	case config.ActionNext:
		return d.cycle(ctx, 1)
	case config.ActionPrevious:
		return d.cycle(ctx, -1)
	case config.ActionUndo:
		return d.undo(ctx)
	case config.ActionLayout:
		l, err := d.bridge.Layout(ctx, action.Ref)
		if err != nil {
			return err
		}
		return d.applyLayout(ctx, l.ID)
	case config.ActionSnapshot:
		s, err := d.bridge.Snapshot(ctx, action.Ref)
		if err != nil {
			return err
		}
		return d.restore(ctx, s.ID)
	}
	return fmt.Errorf("unknown action %q", action)
}

func (d *Dispatcher) applyLayout(ctx context.Context, id uuid.UUID) error {
	if _, err := d.bridge.ApplyLayout(ctx, id); err != nil {
		return err
	}
	d.mu.Lock()
	d.applied = id
	d.mu.Unlock()
	return nil
}

func (d *Dispatcher) restore(ctx context.Context, id uuid.UUID) error {
	if _, err := d.bridge.RestoreSnapshot(ctx, id); err != nil {
		return err
	}
	d.mu.Lock()
	d.applied = uuid.Nil
	d.mu.Unlock()
	return nil
}

func (d *Dispatcher) lastApplied() uuid.UUID {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.applied
}

// current reads the placement the shell is using now.
func (d *Dispatcher) current(ctx context.Context) placement.LayoutSpec {
	fallback := placement.Default()
	schema, err := d.bridge.Engine().Generate(ctx)
	if err != nil {
		d.logger.Warn("failed to read current settings", "err", err)
		return fallback
	}
	return shell.PlacementOf(schema, fallback)
}

func (d *Dispatcher) pick(ctx context.Context) error {
	if d.palette == nil {
		return errors.New("no palette backend available")
	}
	layouts, err := d.bridge.Layouts(ctx)
	if err != nil {
		return err
	}
	snaps, err := d.bridge.Snapshots(ctx)
	if err != nil {
		return err
	}
	choice, err := palette.Pick(ctx, d.palette, "shelltweak", palette.Items(layouts, snaps, d.current(ctx)))
	if errors.Is(err, palette.ErrCancelled) {
		return nil
	}
	if err != nil {
		return err
	}
	if choice.Kind == palette.ChoiceSnapshot {
		return d.restore(ctx, choice.ID)
	}
	return d.applyLayout(ctx, choice.ID)
}

// cycle applies the layout step places after the one in use, wrapping at
// either end. Layouts sharing a placement are told apart by the one applied
// last. When no layout matches, next starts at the first layout and
// previous at the last.
func (d *Dispatcher) cycle(ctx context.Context, step int) error {
	layouts, err := d.bridge.Layouts(ctx)
	if err != nil {
		return err
	}
	if len(layouts) == 0 {
		return errors.New("no layouts to cycle through")
	}

	current := d.current(ctx)
	last := d.lastApplied()
	idx := -1
	for i, l := range layouts {
		if l.Preview.Normalize() != current {
			continue
		}
		if l.ID == last {
			idx = i
			break
		}
		if idx < 0 {
			idx = i
		}
	}

	n := len(layouts)
	var next int
	switch {
	case idx >= 0:
		next = ((idx+step)%n + n) % n
	case step > 0:
		next = 0
	default:
		next = n - 1
	}
	return d.applyLayout(ctx, layouts[next].ID)
}

// undo restores the newest system snapshot. Restoring takes a new system
// snapshot first, so a second undo returns to where the first one started.
func (d *Dispatcher) undo(ctx context.Context) error {
	snaps, err := d.bridge.Snapshots(ctx)
	if err != nil {
		return err
	}
	for _, s := range snaps {
		if s.Kind == store.KindSystem {
			return d.restore(ctx, s.ID)
		}
	}
	return fmt.Errorf("no system snapshot to restore: %w", store.ErrNotFound)
}
