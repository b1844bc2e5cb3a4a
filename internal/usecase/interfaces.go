package usecase

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	mcpGoServer "github.com/mark3labs/mcp-go/server"
)

// Standard errors returned by use cases.
var (
	ErrToolNotFound = errors.New("tool not found")
)

// --- Upstream request builders ---

// PopuliAPI issues authenticated calls to the Populi API and returns the raw
// JSON body. Paths are relative to the versioned API root and may carry a
// query string.
type PopuliAPI interface {
	Get(ctx context.Context, path string) (json.RawMessage, error)
	Post(ctx context.Context, path string, body any) (json.RawMessage, error)
}

// ClassroomAPI issues authenticated GET calls to the GitHub Classroom API.
type ClassroomAPI interface {
	Get(ctx context.Context, path string) (json.RawMessage, error)
}

// --- MCP Server Abstraction ---

// MCPServerAdapter is the part of the MCP server the registry needs.
// This avoids direct dependency on a specific server implementation in the use case.
type MCPServerAdapter interface {
	AddTool(tool mcp.Tool, handlerFunc mcpGoServer.ToolHandlerFunc)
}
