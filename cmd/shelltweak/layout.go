package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/1broseidon/shelltweak/internal/preview"
	"github.com/1broseidon/shelltweak/internal/store"
	"github.com/1broseidon/shelltweak/internal/tiling"
)

func newLayoutCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "List, save, apply and delete layouts",
	}
	cmd.AddCommand(
		newLayoutListCmd(opts),
		newLayoutFindCmd(opts),
		newLayoutSaveCmd(opts),
		newLayoutApplyCmd(opts),
		newLayoutDeleteCmd(opts),
	)
	return cmd
}

func newLayoutListCmd(opts *rootOptions) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List built-in and saved layouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()
			layouts, err := a.bridge.Layouts(commandContext(cmd))
			if err != nil {
				return err
			}
			return printLayouts(cmd.OutOrStdout(), layouts, jsonOut)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output full layout details as JSON")
	return cmd
}

func newLayoutFindCmd(opts *rootOptions) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "find <query>",
		Short: "Fuzzy-search layouts by name, best match first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()
			layouts, err := a.bridge.FindLayouts(commandContext(cmd), args[0])
			if err != nil {
				return err
			}
			if len(layouts) == 0 && !jsonOut {
				return fmt.Errorf("no layouts match %q", args[0])
			}
			return printLayouts(cmd.OutOrStdout(), layouts, jsonOut)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output full layout details as JSON")
	return cmd
}

func printLayouts(w io.Writer, layouts []store.Layout, jsonOut bool) error {
	if jsonOut {
		if layouts == nil {
			layouts = []store.Layout{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(layouts)
	}
	for _, l := range layouts {
		kind := "builtin"
		if l.Custom {
			kind = "custom"
		}
		summary := preview.Summary(tiling.Place(tiling.ResolveSpec(l.Preview), fallbackScreen))
		fmt.Fprintf(w, "%-16s %-8s %s  %s\n", l.Name, kind, l.ID, summary)
	}
	return nil
}

func newLayoutSaveCmd(opts *rootOptions) *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Save the current shell settings with a placement as a custom layout",
		Long: `Capture the current shell settings and store them, with a placement, as a
new custom layout. The placement starts from --from (a layout name or id) or
the configured placement; placement flags adjust individual fields.`,
		Args: cobra.ExactArgs(1),
	}
	pf := addPlacementFlags(cmd)
	cmd.Flags().StringVar(&from, "from", "", "layout to start from (default: configured placement)")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, opts)
		if err != nil {
			return err
		}
		defer a.Close()
		ctx := commandContext(cmd)

		base := a.cfg.Placement
		if from != "" {
			l, err := a.bridge.Layout(ctx, from)
			if err != nil {
				return err
			}
			base = l.Preview
		}
		spec, err := pf.apply(base)
		if err != nil {
			return err
		}
		l, err := a.bridge.SaveLayout(ctx, args[0], spec)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved layout %s (%s)\n", l.Name, l.ID)
		return nil
	}
	return cmd
}

func newLayoutApplyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "apply <layout>",
		Short: "Apply a layout to the shell by name or id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := commandContext(cmd)
			l, err := a.bridge.Layout(ctx, args[0])
			if err != nil {
				return err
			}
			if _, err := a.bridge.ApplyLayout(ctx, l.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied layout %s via %s\n", l.Name, a.bridge.Engine().Name())
			return nil
		},
	}
}

func newLayoutDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <layout>",
		Short: "Delete a custom layout by name or id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := commandContext(cmd)
			l, err := a.bridge.Layout(ctx, args[0])
			if err != nil {
				return err
			}
			if err := a.bridge.DeleteLayout(ctx, l.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted layout %s\n", l.Name)
			return nil
		},
	}
}
