package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dshills/kbsearch-mcp/internal/mcp"
	"github.com/dshills/kbsearch-mcp/internal/store"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("KBSearch MCP Server\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", store.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", store.DriverName)
		os.Exit(0)
	}

	// Log to stderr; stdout is reserved for MCP protocol
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevelFromEnv(),
	}))
	logger.Info("kbsearch MCP server starting",
		"version", version,
		"build_mode", store.BuildMode,
		"driver", store.DriverName,
	)

	cfg := mcp.Config{
		DBPath:         os.Getenv("KBSEARCH_DB_PATH"),
		BridgeEndpoint: os.Getenv("KBSEARCH_BRIDGE_URL"),
		BridgeAPIKey:   os.Getenv("KBSEARCH_BRIDGE_API_KEY"),
		Logger:         logger,
	}

	server, err := mcp.NewServer(cfg)
	if err != nil {
		logger.Error("failed to create MCP server", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		logger.Info("MCP server ready, listening on stdio")
		errChan <- server.Serve(ctx)
	}()

	select {
	case sig := <-sigChan:
		logger.Info("shutting down", "signal", sig.String())
		cancel()
	case err := <-errChan:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}

// logLevelFromEnv maps KBSEARCH_LOG_LEVEL to an slog level, defaulting to info
func logLevelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("KBSEARCH_LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
