package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/kbsearch-mcp/internal/engine"
	"github.com/dshills/kbsearch-mcp/internal/semantic"
	"github.com/dshills/kbsearch-mcp/internal/store"
)

const (
	// ServerName is the MCP server name
	ServerName = "kbsearch-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
	// DefaultDBPath is the default location for the database
	DefaultDBPath = "~/.kbsearch"
	// DefaultQueryCacheTTL bounds how long cached search results stay valid
	DefaultQueryCacheTTL = 5 * time.Minute
)

// Config carries the server's startup settings
type Config struct {
	// DBPath is the directory holding the SQLite database. Empty or the
	// default marker expands to ~/.kbsearch.
	DBPath string

	// BridgeEndpoint is the AI semantic bridge URL. Empty disables the
	// bridge; searches with use_ai then run local-only.
	BridgeEndpoint string

	// BridgeAPIKey is sent as a bearer token when set
	BridgeAPIKey string

	// Logger receives structured diagnostics. Nil discards them.
	Logger *slog.Logger
}

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp    *server.MCPServer
	store  store.Store
	engine *engine.Engine
	logger *slog.Logger
}

// NewServer creates a new MCP server instance
func NewServer(cfg Config) (*Server, error) {
	dbPath := cfg.DBPath
	if dbPath == "" || dbPath == DefaultDBPath {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".kbsearch")
	}

	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dbFile := filepath.Join(dbPath, "kbsearch.db")
	st, err := store.NewSQLiteStore(dbFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	engOpts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithQueryCache(engine.DefaultCacheSize, DefaultQueryCacheTTL),
	}
	if cfg.BridgeEndpoint != "" {
		bridge, err := semantic.NewHTTPBridge(cfg.BridgeEndpoint, cfg.BridgeAPIKey, semantic.DefaultTimeout)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize semantic bridge: %w", err)
		}
		engOpts = append(engOpts, engine.WithBridge(bridge))
	}
	eng := engine.New(engOpts...)

	// Warm the index so the first search doesn't pay the build cost
	entries, err := st.ListEntries(context.Background())
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}
	eng.BuildIndex(entries)

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:    mcpServer,
		store:  st,
		engine: eng,
		logger: logger,
	}
	s.registerTools()

	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.store.Close() }()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(addEntryTool(), s.handleAddEntry)
	s.mcp.AddTool(searchTool(), s.handleSearch)
	s.mcp.AddTool(recordUsageTool(), s.handleRecordUsage)
	s.mcp.AddTool(statusTool(), s.handleStatus)
}
