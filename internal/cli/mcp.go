package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/ragchat"
	"github.com/aretw0/ragchat/internal/config"
	"github.com/aretw0/ragchat/internal/logging"
	mcpadapter "github.com/aretw0/ragchat/pkg/adapters/mcp"
)

// MCP transports.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// RunMCP exposes the client as an MCP server over transport.
// Logs always go to Stderr so they cannot corrupt JSON-RPC on Stdout.
func RunMCP(ctx context.Context, cfg config.Config, transport, addr string) error {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := logging.New(level)

	stack, err := NewStack(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stack.Close()

	srv := mcpadapter.NewServer(stack.Client, stack.Client.Documents(), ragchat.Version,
		mcpadapter.WithLogger(logger))

	switch transport {
	case TransportStdio:
		logger.Info("Starting ragchat MCP Server (Stdio)...", "backend", cfg.BaseURL)
		return srv.ServeStdio()
	case TransportSSE:
		logger.Info("Starting ragchat MCP Server (SSE)", "address", addr, "backend", cfg.BaseURL)
		if err := srv.ServeSSE(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		logger.Info("MCP Server stopped gracefully")
		return nil
	default:
		return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
	}
}
