package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	skbmcp "github.com/valter-silva-au/skill-brain/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the skb MCP (Model Context Protocol) server.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the skb MCP server on stdio",
	Long: `Start the skb MCP server on stdio transport.

The server exposes skill-brain introspection as MCP tools that AI coding
assistants can call: get_session_state, list_sessions, preview_matches.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if StateMgr == nil || Activator == nil {
			return fmt.Errorf("services not initialized")
		}

		srv := skbmcp.NewServer(StateMgr, Activator, appVersion)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}

		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
