package palette

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/1broseidon/shelltweak/internal/placement"
	"github.com/1broseidon/shelltweak/internal/store"
)

const (
	actionLayout   = "layout:"
	actionSnapshot = "snapshot:"
)

// ChoiceKind tells a picked layout apart from a picked snapshot.
type ChoiceKind string

const (
	ChoiceLayout   ChoiceKind = "layout"
	ChoiceSnapshot ChoiceKind = "snapshot"
)

// Choice is the record the user picked.
type Choice struct {
	Kind ChoiceKind
	ID   uuid.UUID
}

// Items lists layouts then snapshots under section headers. Layouts whose
// placement equals current are marked active. Snapshots keep their order.
func Items(layouts []store.Layout, snapshots []store.Snapshot, current placement.LayoutSpec) []Item {
	items := make([]Item, 0, len(layouts)+len(snapshots)+2)
	if len(layouts) > 0 {
		items = append(items, Item{Label: "Layouts", IsHeader: true})
	}
	for _, l := range layouts {
		kind := "builtin"
		if l.Custom {
			kind = "custom"
		}
		items = append(items, Item{
			Label:    l.Name,
			Action:   actionLayout + l.ID.String(),
			Meta:     kind + " " + l.Preview.Panel.Position.String() + " " + l.Preview.Dock.Position.String(),
			IsActive: l.Preview.Normalize() == current,
		})
	}

	if len(snapshots) > 0 {
		items = append(items, Item{Label: "Snapshots", IsHeader: true})
	}
	for _, s := range snapshots {
		items = append(items, Item{
			Label:  fmt.Sprintf("%s (%s, %s)", s.Name, s.Kind, s.Created.Local().Format(time.DateTime)),
			Action: actionSnapshot + s.ID.String(),
			Meta:   string(s.Kind),
		})
	}
	return items
}

// Pick shows items until a selectable row is chosen. Some launchers cannot
// make headers unselectable; picking one shows the menu again.
func Pick(ctx context.Context, b Backend, prompt string, items []Item) (Choice, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Choice{}, err
		}
		item, err := b.Show(ctx, prompt, items)
		if err != nil {
			return Choice{}, err
		}
		if item.IsHeader {
			continue
		}
		return parseAction(item.Action)
	}
}

func parseAction(action string) (Choice, error) {
	var kind ChoiceKind
	var raw string
	switch {
	case strings.HasPrefix(action, actionLayout):
		kind, raw = ChoiceLayout, strings.TrimPrefix(action, actionLayout)
	case strings.HasPrefix(action, actionSnapshot):
		kind, raw = ChoiceSnapshot, strings.TrimPrefix(action, actionSnapshot)
	default:
		return Choice{}, errors.New("palette: selection has no action")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return Choice{}, fmt.Errorf("palette: invalid id in %q: %w", action, err)
	}
	return Choice{Kind: kind, ID: id}, nil
}
