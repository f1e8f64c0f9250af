package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/1broseidon/shelltweak/internal/assets"
	"github.com/1broseidon/shelltweak/internal/config"
	"github.com/1broseidon/shelltweak/internal/placement"
	"github.com/1broseidon/shelltweak/internal/preview"
	"github.com/1broseidon/shelltweak/internal/tiling"
	"github.com/1broseidon/shelltweak/internal/x11"
)

// fallbackScreen is used when no monitor can be read.
var fallbackScreen = tiling.Rect{Width: 1920, Height: 1080}

// screenRect returns the container previews are placed in: the primary
// monitor when detect_monitor is on and an X display is reachable.
func screenRect(cfg *config.Config, logger *log.Logger) tiling.Rect {
	if !cfg.Preview.DetectMonitor || os.Getenv("DISPLAY") == "" {
		return fallbackScreen
	}
	conn, err := x11.NewConnection()
	if err != nil {
		logger.Debug("monitor detection unavailable", "err", err)
		return fallbackScreen
	}
	defer conn.Close()
	m, err := conn.PrimaryMonitor()
	if err != nil || m.Width <= 0 || m.Height <= 0 {
		logger.Debug("monitor detection failed", "err", err)
		return fallbackScreen
	}
	logger.Debug("using primary monitor", "name", m.Name, "width", m.Width, "height", m.Height)
	return tiling.Rect{Width: m.Width, Height: m.Height}
}

// baseSpec resolves a layout reference for the offline commands. Config
// presets are checked first so no store is opened for them.
func baseSpec(cmd *cobra.Command, res *config.LoadResult, ref string) (placement.LayoutSpec, error) {
	if ref == "" {
		return res.Config.Placement, nil
	}
	if spec, ok := res.Config.Layouts[ref]; ok {
		return spec, nil
	}
	a, err := openAppWith(res, loggerFrom(cmd))
	if err != nil {
		return placement.LayoutSpec{}, err
	}
	defer a.Close()
	l, err := a.bridge.Layout(commandContext(cmd), ref)
	if err != nil {
		return placement.LayoutSpec{}, err
	}
	return l.Preview, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func newResolveCmd(opts *rootOptions) *cobra.Command {
	var (
		jsonOut bool
		width   int
		height  int
	)
	cmd := &cobra.Command{
		Use:   "resolve [layout]",
		Short: "Print the arrangement a placement resolves to",
		Long: `Resolve a panel and dock placement into its arrangement tree.

Starts from the named layout, or the configured placement when none is
given. Placement flags adjust individual fields.`,
		Args: cobra.MaximumNArgs(1),
	}
	pf := addPlacementFlags(cmd)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the placed geometry as JSON")
	cmd.Flags().IntVar(&width, "screen-width", 0, "screen width in pixels (default: detected or 1920)")
	cmd.Flags().IntVar(&height, "screen-height", 0, "screen height in pixels (default: detected or 1080)")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		res, err := loadConfig(cmd, opts)
		if err != nil {
			return err
		}
		base, err := baseSpec(cmd, res, firstArg(args))
		if err != nil {
			return err
		}
		spec, err := pf.apply(base)
		if err != nil {
			return err
		}

		screen := screenRect(res.Config, loggerFrom(cmd))
		if width > 0 && height > 0 {
			screen = tiling.Rect{Width: width, Height: height}
		}
		arr := tiling.ResolveSpec(spec)
		placed := tiling.Place(arr, screen)

		out := cmd.OutOrStdout()
		if jsonOut {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Arrangement tiling.Arrangement `json:"arrangement"`
				Placement   tiling.Placement   `json:"placement"`
			}{arr, placed})
		}
		fmt.Fprint(out, arr.String())
		fmt.Fprintf(out, "\n%s\n", preview.Summary(placed))
		return nil
	}
	return cmd
}

func newPreviewCmd(opts *rootOptions) *cobra.Command {
	var (
		svgPath string
		width   int
		height  int
		ascii   bool
	)
	cmd := &cobra.Command{
		Use:   "preview [layout]",
		Short: "Draw a placement as text or SVG",
		Args:  cobra.MaximumNArgs(1),
	}
	pf := addPlacementFlags(cmd)
	cmd.Flags().StringVar(&svgPath, "svg", "", "write an SVG preview to FILE (- for stdout)")
	cmd.Flags().IntVar(&width, "width", 0, "preview width in characters (default: preview.width)")
	cmd.Flags().IntVar(&height, "height", 0, "preview height in characters (default: preview.height)")
	cmd.Flags().BoolVar(&ascii, "ascii", false, "use plain ASCII glyphs without colour")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		res, err := loadConfig(cmd, opts)
		if err != nil {
			return err
		}
		cfg := res.Config
		base, err := baseSpec(cmd, res, firstArg(args))
		if err != nil {
			return err
		}
		spec, err := pf.apply(base)
		if err != nil {
			return err
		}

		asciiOnly := ascii || cfg.Preview.ASCII
		reg := assets.NewRegistry(asciiOnly)
		placed := tiling.Place(tiling.ResolveSpec(spec), screenRect(cfg, loggerFrom(cmd)))
		out := cmd.OutOrStdout()

		if svgPath != "" {
			return writeSVG(out, svgPath, reg, placed, spec.ShowWindow)
		}

		if width <= 0 {
			width = cfg.Preview.Width
		}
		if height <= 0 {
			height = cfg.Preview.Height
		}
		var lines []string
		if !asciiOnly && isTerminal(out) {
			lines = preview.Styled(reg, placed, width, height, spec.ShowWindow)
		} else {
			lines = preview.ASCII(reg, placed, width, height, spec.ShowWindow)
		}
		fmt.Fprintln(out, strings.Join(lines, "\n"))
		fmt.Fprintln(out, preview.Summary(placed))
		return nil
	}
	return cmd
}

func writeSVG(stdout io.Writer, path string, reg *assets.Registry, placed tiling.Placement, showWindow bool) error {
	if path == "-" {
		return preview.SVG(stdout, reg, placed, showWindow)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := preview.SVG(f, reg, placed, showWindow); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
