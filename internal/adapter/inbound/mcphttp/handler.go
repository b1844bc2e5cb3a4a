package mcphttp

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ToolLister is the part of the tool registry the admin surface reads.
type ToolLister interface {
	Tools() []mcp.Tool
}

// Handlers struct holds dependencies for the HTTP handlers.
type Handlers struct {
	tools   ToolLister
	enabled map[string]bool
	logger  *slog.Logger
}

// NewHandlers creates a new Handlers struct. registered names the tools
// actually exposed to the MCP host; the rest are reported as disabled.
func NewHandlers(tools ToolLister, registered []string, logger *slog.Logger) *Handlers {
	enabled := make(map[string]bool, len(registered))
	for _, name := range registered {
		enabled[name] = true
	}
	return &Handlers{
		tools:   tools,
		enabled: enabled,
		logger:  logger.With("component", "mcphttp_handler"),
	}
}

// RegisterAdminRoutes sets up the HTTP routes for admin endpoints.
func (h *Handlers) RegisterAdminRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /admin/tools", h.handleListTools)
}

func (h *Handlers) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// ToolInfo is one entry of the GET /admin/tools response.
type ToolInfo struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Enabled     bool                `json:"enabled"`
	InputSchema mcp.ToolInputSchema `json:"inputSchema"`
}

// handleListTools implements GET /admin/tools
func (h *Handlers) handleListTools(w http.ResponseWriter, _ *http.Request) {
	tools := h.tools.Tools()
	infos := make([]ToolInfo, 0, len(tools))
	for _, tool := range tools {
		infos = append(infos, ToolInfo{
			Name:        tool.Name,
			Description: tool.Description,
			Enabled:     h.enabled[tool.Name],
			InputSchema: tool.InputSchema,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(infos); err != nil {
		h.logger.Error("Failed to encode tool list", slog.Any("error", err))
	}
}
