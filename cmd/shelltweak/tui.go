package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/1broseidon/shelltweak/internal/assets"
	"github.com/1broseidon/shelltweak/internal/tiling"
	"github.com/1broseidon/shelltweak/internal/tui"
)

func newTUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive placement editor",
		Long: `Open the interactive editor.

Tabs:
  1 Placement  edit the configured placement with a live preview
  2 Layouts    browse, apply and delete layouts
  3 Snapshots  take, restore and delete settings snapshots

Keybindings:
  tab/shift+tab  Switch tabs
  ctrl+s         Review and save config changes
  q, ctrl+c      Quit

The config file is watched and reloaded while there are no unsaved edits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, opts)
		},
	}
}

func runTUI(cmd *cobra.Command, opts *rootOptions) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("the editor needs an interactive terminal; see 'shelltweak --help' for other commands")
	}

	path, err := opts.path()
	if err != nil {
		return err
	}
	res, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	cfg := res.Config

	// The terminal belongs to the TUI from here on.
	level := loggerFrom(cmd).GetLevel()
	logger, closer, err := fileLogger(cfg.LogFile, level)
	if err != nil {
		return err
	}
	defer closer.Close()

	a, err := openAppWith(res, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	screen := screenRect(cfg, logger)
	logger.Info("starting editor", "config", path, "engine", a.bridge.Engine().Name(), "screen", fmt.Sprintf("%dx%d", screen.Width, screen.Height))

	return tui.Run(commandContext(cmd), tui.Options{
		ConfigPath: path,
		Result:     res,
		Bridge:     a.bridge,
		Registry:   assets.NewRegistry(cfg.Preview.ASCII),
		Memo:       tiling.NewMemo(tiling.DefaultMemoSize),
		Screen:     screen,
		Logger:     logger,
		Color:      !cfg.Preview.ASCII,
		Watch:      true,
	})
}
