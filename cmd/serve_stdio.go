package cmd

import (
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"
)

// runStdioServer serves MCP over stdin/stdout until the client disconnects
// or the process receives SIGINT/SIGTERM.
func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	// Nothing may be written to stdout besides protocol messages.
	if err := mcpserver.ServeStdio(mcpSrv); err != nil {
		return fmt.Errorf("stdio server stopped with error: %w", err)
	}
	return nil
}
