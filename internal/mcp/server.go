// Package mcp exposes layout resolution and the layout/snapshot store over
// the Model Context Protocol.
package mcp

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/shelltweak/internal/assets"
	"github.com/1broseidon/shelltweak/internal/config"
	"github.com/1broseidon/shelltweak/internal/store"
	"github.com/1broseidon/shelltweak/internal/tiling"
)

const (
	ServerName    = "shelltweak"
	ServerVersion = "0.1.0"
)

// Options configures NewServer.
type Options struct {
	Logger *log.Logger
	// Screen is the container previews are placed in.
	Screen tiling.Rect
	Memo   *tiling.Memo
}

// Server is the MCP server for shelltweak.
type Server struct {
	mcpServer *mcpsdk.Server
	config    *config.Config
	bridge    *store.Bridge
	logger    *log.Logger
	memo      *tiling.Memo
	registry  *assets.Registry
	screen    tiling.Rect
}

// NewServer creates a server backed by bridge. Previews use cfg.Preview.
func NewServer(cfg *config.Config, bridge *store.Bridge, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	memo := opts.Memo
	if memo == nil {
		memo = tiling.NewMemo(tiling.DefaultMemoSize)
	}
	screen := opts.Screen
	if screen.Empty() {
		screen = tiling.Rect{Width: 1920, Height: 1080}
	}

	s := &Server{
		config:   cfg,
		bridge:   bridge,
		logger:   logger.WithPrefix("mcp"),
		memo:     memo,
		registry: assets.NewRegistry(true),
		screen:   screen,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("serving on stdio", "engine", s.bridge.Engine().Name())
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Connect serves a single session over t. It is used by tests and by
// callers embedding the server behind their own transport.
func (s *Server) Connect(ctx context.Context, t mcpsdk.Transport) (*mcpsdk.ServerSession, error) {
	return s.mcpServer.Connect(ctx, t, nil)
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "resolve_layout",
		Description: "Resolve a panel and dock placement into its arrangement tree and a text preview. Starts from a named layout or the configured placement; overrides adjust individual fields. Nothing is applied to the shell.",
	}, s.handleResolveLayout)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_layouts",
		Description: "List built-in and saved layouts. An optional query fuzzy-filters by name, best match first.",
	}, s.handleListLayouts)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "apply_layout",
		Description: "Apply a layout to the shell by name or id. A system snapshot is taken first when auto snapshots are enabled.",
	}, s.handleApplyLayout)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "save_layout",
		Description: "Save the current shell settings with a placement as a new custom layout. Built-in names cannot be reused.",
	}, s.handleSaveLayout)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_snapshots",
		Description: "List shell settings snapshots, newest first.",
	}, s.handleListSnapshots)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "create_snapshot",
		Description: "Capture the current shell settings as a named user snapshot.",
	}, s.handleCreateSnapshot)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "restore_snapshot",
		Description: "Restore shell settings from a snapshot by name or id.",
	}, s.handleRestoreSnapshot)
}
