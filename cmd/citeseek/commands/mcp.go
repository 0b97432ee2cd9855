// ABOUTME: MCP command starts the Model Context Protocol server
// ABOUTME: Enables LLM agents to ingest and query documents via stdio
package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/citeseek/citeseek/internal/mcp"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start citeseek as an MCP (Model Context Protocol) server,
exposing document ingestion and cited question answering to LLM
agents over stdio.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically launched by the agent host)
  citeseek mcp

  # Configure in the host's MCP config:
  # {
  #   "mcpServers": {
  #     "citeseek": {
  #       "command": "citeseek",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, true)
	if err != nil {
		return err
	}

	server := mcpserver.NewMCPServer(
		"citeseek",
		versionInfo.Version,
	)
	mcp.RegisterTools(server, a.ingestor, a.pipeline, a.registry)

	logrus.WithField("version", versionInfo.Version).Info("starting MCP server on stdio")

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		logrus.Info("shutdown signal received")
		return nil
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("MCP server: %w", err)
		}
	}
	return nil
}
