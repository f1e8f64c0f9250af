package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/1broseidon/shelltweak/internal/store"
)

func newSnapshotCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "snapshot",
		Aliases: []string{"snap"},
		Short:   "Take, restore and move shell settings snapshots",
	}
	cmd.AddCommand(
		newSnapshotListCmd(opts),
		newSnapshotCreateCmd(opts),
		newSnapshotRestoreCmd(opts),
		newSnapshotDeleteCmd(opts),
		newSnapshotExportCmd(opts),
		newSnapshotImportCmd(opts),
	)
	return cmd
}

func newSnapshotListCmd(opts *rootOptions) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()
			snaps, err := a.bridge.Snapshots(commandContext(cmd))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if jsonOut {
				if snaps == nil {
					snaps = []store.Snapshot{}
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(snaps)
			}
			for _, s := range snaps {
				fmt.Fprintf(out, "%-24s %-6s %s  %s  %d settings\n",
					s.Name, s.Kind, s.Created.Local().Format(time.DateTime), s.ID, len(s.Schema.Entries))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output snapshots as JSON")
	return cmd
}

func newSnapshotCreateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Capture the current shell settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()
			s, err := a.bridge.CreateSnapshot(commandContext(cmd), args[0], store.KindUser)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created snapshot %s (%s, %d settings)\n", s.Name, s.ID, len(s.Schema.Entries))
			return nil
		},
	}
}

func newSnapshotRestoreCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <snapshot>",
		Short: "Write a snapshot's settings back to the shell",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := commandContext(cmd)
			s, err := a.bridge.Snapshot(ctx, args[0])
			if err != nil {
				return err
			}
			if _, err := a.bridge.RestoreSnapshot(ctx, s.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "restored snapshot %s\n", s.Name)
			return nil
		},
	}
}

func newSnapshotDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <snapshot>",
		Short: "Delete a snapshot by name or id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := commandContext(cmd)
			s, err := a.bridge.Snapshot(ctx, args[0])
			if err != nil {
				return err
			}
			if err := a.bridge.DeleteSnapshot(ctx, s.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted snapshot %s\n", s.Name)
			return nil
		},
	}
}

func newSnapshotExportCmd(opts *rootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export <snapshot>",
		Short: "Write a snapshot as TOML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := commandContext(cmd)
			s, err := a.bridge.Snapshot(ctx, args[0])
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				return a.bridge.ExportSnapshot(ctx, s.ID, cmd.OutOrStdout())
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			if err := a.bridge.ExportSnapshot(ctx, s.ID, f); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (default: stdout)")
	return cmd
}

func newSnapshotImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Store a TOML snapshot as a new user snapshot (- reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", args[0], err)
				}
				defer f.Close()
				r = f
			}
			s, err := a.bridge.ImportSnapshot(commandContext(cmd), r)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported snapshot %s (%s)\n", s.Name, s.ID)
			return nil
		},
	}
}
