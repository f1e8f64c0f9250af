package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/1broseidon/shelltweak/internal/config"
	"github.com/1broseidon/shelltweak/internal/daemon"
	"github.com/1broseidon/shelltweak/internal/hotkeys"
	"github.com/1broseidon/shelltweak/internal/palette"
	"github.com/1broseidon/shelltweak/internal/x11"
)

func newDaemonCmd(opts *rootOptions) *cobra.Command {
	var display string
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Grab global hotkeys that pick, cycle and undo layouts",
		Long: `Daemon binds the key sequences in the config's daemon.hotkeys section
on the X root window and runs their actions until interrupted:

  pick             choose a layout or snapshot in a launcher menu
  next, previous   cycle through layouts in name order
  undo             restore the newest automatic snapshot
  layout:<name>    apply a layout
  snapshot:<name>  restore a snapshot`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := commandContext(cmd)

			if display == "" {
				display = os.Getenv("DISPLAY")
			}
			if display == "" {
				return fmt.Errorf("daemon needs an X display; set DISPLAY or pass --display")
			}
			conn, err := x11.NewConnectionDisplay(display)
			if err != nil {
				return fmt.Errorf("failed to connect to X display %s: %w", display, err)
			}

			backend, err := palette.New(a.cfg.Daemon.Palette)
			if err != nil {
				a.logger.Warn("pick disabled", "err", err)
			}
			dispatcher := daemon.NewDispatcher(a.bridge, backend, a.logger.WithPrefix("daemon"))
			handler := hotkeys.NewHandler(conn)

			keys := make([]string, 0, len(a.cfg.Daemon.Hotkeys))
			for key := range a.cfg.Daemon.Hotkeys {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			bound := 0
			for _, key := range keys {
				action, err := config.ParseHotkeyAction(a.cfg.Daemon.Hotkeys[key])
				if err != nil {
					return err
				}
				if err := handler.Register(key, func() { dispatcher.Trigger(action) }); err != nil {
					a.logger.Warn("failed to bind hotkey", "key", key, "err", err)
					continue
				}
				a.logger.Info("bound hotkey", "key", key, "action", action)
				bound++
			}
			if bound == 0 {
				conn.Close()
				return fmt.Errorf("no hotkeys could be bound")
			}

			go dispatcher.Run(ctx)
			handler.Run(ctx)
			a.logger.Info("daemon stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&display, "display", "", "X display to grab keys on (default $DISPLAY)")
	return cmd
}
