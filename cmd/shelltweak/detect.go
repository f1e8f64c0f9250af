package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/shelltweak/internal/config"
	"github.com/1broseidon/shelltweak/internal/x11"
)

func newDetectCmd(opts *rootOptions) *cobra.Command {
	var (
		display  string
		saveName string
	)
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Report the shell engine, monitors and the placement of running panels",
		Long: `Report which shell engine would be used and, when an X display is
reachable, the primary monitor and the struts reserved by running panels and
docks. The placement inferred from those struts is printed as YAML that can be
pasted under "placement:" in the config, or saved as a layout with --save.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			logger := loggerFrom(cmd)

			detected := config.DetectEngine(res.Config)
			fmt.Fprintf(out, "engine: %s (%s)\n", detected.Name, detected.Reason)
			if detected.Path != "" {
				fmt.Fprintf(out, "dconf:  %s\n", detected.Path)
			}

			if display == "" {
				display = os.Getenv("DISPLAY")
			}
			if display == "" {
				fmt.Fprintln(out, "display: none")
				return nil
			}
			conn, err := x11.NewConnectionDisplay(display)
			if err != nil {
				return fmt.Errorf("failed to connect to display %s: %w", display, err)
			}
			defer conn.Close()

			monitors, err := conn.GetMonitors()
			if err != nil {
				logger.Debug("randr unavailable", "err", err)
			}
			for _, m := range monitors {
				mark := ""
				if m.Primary {
					mark = " (primary)"
				}
				fmt.Fprintf(out, "monitor: %s %dx%d+%d+%d%s\n", m.Name, m.Width, m.Height, m.X, m.Y, mark)
			}

			primary, err := conn.PrimaryMonitor()
			if err != nil {
				return err
			}
			struts, err := conn.DockStruts(primary)
			if err != nil {
				return err
			}
			for _, s := range struts {
				fmt.Fprintf(out, "strut: %-6s %4dpx %s\n", s.Edge, s.Thickness(), s.Name)
			}

			spec, ok := x11.InferPlacement(primary, struts)
			if !ok {
				fmt.Fprintln(out, "placement: no panels or docks found")
				return nil
			}
			data, err := yaml.Marshal(map[string]any{"placement": spec})
			if err != nil {
				return fmt.Errorf("failed to encode placement: %w", err)
			}
			fmt.Fprint(out, string(data))

			if saveName == "" {
				return nil
			}
			a, err := openAppWith(res, logger)
			if err != nil {
				return err
			}
			defer a.Close()
			l, err := a.bridge.SaveLayout(commandContext(cmd), saveName, spec)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "saved layout %s (%s)\n", l.Name, l.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&display, "display", "", "X display to query (default: $DISPLAY)")
	cmd.Flags().StringVar(&saveName, "save", "", "save the inferred placement as a layout with this name")
	return cmd
}
