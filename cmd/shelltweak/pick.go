package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/1broseidon/shelltweak/internal/palette"
	"github.com/1broseidon/shelltweak/internal/placement"
	"github.com/1broseidon/shelltweak/internal/shell"
)

func newPickCmd(opts *rootOptions) *cobra.Command {
	var backend string
	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Pick a layout or snapshot from a launcher menu and apply it",
		Long: `Pick lists layouts and snapshots in rofi, fuzzel, wofi or dmenu.
Choosing a layout applies it; choosing a snapshot restores it. Bind it to a
hotkey in your window manager.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := palette.New(backend)
			if err != nil {
				return err
			}
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := commandContext(cmd)

			layouts, err := a.bridge.Layouts(ctx)
			if err != nil {
				return err
			}
			snaps, err := a.bridge.Snapshots(ctx)
			if err != nil {
				return err
			}
			current := placement.Default()
			if schema, err := a.bridge.Engine().Generate(ctx); err == nil {
				current = shell.PlacementOf(schema, current)
			} else {
				a.logger.Warn("failed to read current settings", "err", err)
			}

			choice, err := palette.Pick(ctx, b, "shelltweak", palette.Items(layouts, snaps, current))
			if errors.Is(err, palette.ErrCancelled) {
				return nil
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch choice.Kind {
			case palette.ChoiceSnapshot:
				s, err := a.bridge.RestoreSnapshot(ctx, choice.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "restored snapshot %s via %s\n", s.Name, a.bridge.Engine().Name())
			default:
				l, err := a.bridge.ApplyLayout(ctx, choice.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "applied layout %s via %s\n", l.Name, a.bridge.Engine().Name())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&backend, "backend", "auto", "launcher to use: auto, rofi, fuzzel, wofi or dmenu")
	return cmd
}
