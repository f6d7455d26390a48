// go_transcript — YouTube transcript MCP server.
//
// Exposes five MCP tools: transcript_fetch, transcript_export,
// transcript_analyze, transcript_summary, transcript_at.
// Runs as HTTP MCP server or stdio transport.
package main

import (
	"log/slog"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/resolvers"
	"github.com/anatolykoptev/go_transcript/internal/session"
	"github.com/anatolykoptev/go_transcript/internal/transcriptserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8893")
)

func main() {
	engine.Init(engine.LoadConfig())

	slog.Info("starting go_transcript",
		slog.String("port", mcpPort),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_transcript",
		Version: version,
	}, nil)

	chain := resolvers.NewChain()
	mgr := session.NewManager(session.DefaultLoader(chain))
	defer mgr.Close()

	transcriptserver.RegisterTools(server, mgr)
	slog.Info("tools registered",
		slog.Int("count", len(transcriptserver.Tools)),
		slog.Any("resolvers", chain.Resolvers()),
	)

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_transcript",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 120 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}
