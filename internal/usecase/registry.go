package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	mcpGoServer "github.com/mark3labs/mcp-go/server"
	"github.com/xeipuuv/gojsonschema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/i2y/populi-mcp/internal/domain"
	"github.com/i2y/populi-mcp/internal/metrics"
)

// Handler runs one operation on schema-checked arguments and returns its text payload.
type Handler func(ctx context.Context, args map[string]any) (string, error)

// ToolDefinition binds a tool's advertised schema to its handler.
type ToolDefinition struct {
	Tool    mcp.Tool
	Service string
	Handler Handler

	schema *gojsonschema.Schema
}

// Registry is the static table of operations exposed to the MCP host.
// Every call is validated against the tool's input schema before the handler
// runs, so invalid input never reaches the network.
type Registry struct {
	definitions []*ToolDefinition
	byName      map[string]*ToolDefinition
	logger      *slog.Logger
	tracer      trace.Tracer
}

// NewRegistry builds the registry over the operation handlers.
func NewRegistry(populi *PopuliTools, roster *ExportRosterUseCase, classroom *ClassroomTools, logger *slog.Logger) (*Registry, error) {
	r := &Registry{
		byName: make(map[string]*ToolDefinition),
		logger: logger.With("component", "tool_registry"),
		tracer: otel.Tracer("github.com/i2y/populi-mcp/internal/usecase"),
	}
	for _, def := range toolTable(populi, roster, classroom) {
		if err := r.add(def); err != nil {
			return nil, err
		}
	}
	r.logger.Debug("Tool registry built", slog.Int("tool_count", len(r.definitions)))
	return r, nil
}

func (r *Registry) add(def *ToolDefinition) error {
	name := def.Tool.Name
	if _, dup := r.byName[name]; dup {
		return fmt.Errorf("duplicate tool name %q", name)
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(def.Tool.InputSchema))
	if err != nil {
		return fmt.Errorf("invalid input schema for tool %s: %w", name, err)
	}
	def.schema = schema
	r.definitions = append(r.definitions, def)
	r.byName[name] = def
	return nil
}

// Tools returns the advertised tool definitions in registration order.
func (r *Registry) Tools() []mcp.Tool {
	tools := make([]mcp.Tool, 0, len(r.definitions))
	for _, def := range r.definitions {
		tools = append(tools, def.Tool)
	}
	return tools
}

// Register adds every tool not named in disabled to the MCP server and
// returns the names registered.
func (r *Registry) Register(srv MCPServerAdapter, disabled []string) []string {
	skip := make(map[string]struct{}, len(disabled))
	for _, name := range disabled {
		skip[name] = struct{}{}
	}

	registered := make([]string, 0, len(r.definitions))
	for _, def := range r.definitions {
		name := def.Tool.Name
		if _, ok := skip[name]; ok {
			r.logger.Info("Tool disabled by configuration", slog.String("tool", name))
			continue
		}
		srv.AddTool(def.Tool, r.toolHandler(name))
		registered = append(registered, name)
	}
	r.logger.Info("Registered tools with MCP server", slog.Int("tool_count", len(registered)))
	return registered
}

// toolHandler adapts Call to the mcp-go handler signature. Failures are
// reported to the host as error results carrying the error text.
func (r *Registry) toolHandler(name string) mcpGoServer.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := r.Call(ctx, name, req.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(text), nil
	}
}

// Call validates args and runs the named operation.
func (r *Registry) Call(ctx context.Context, name string, args map[string]any) (string, error) {
	def, ok := r.byName[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}

	invocationID := uuid.NewString()
	log := r.logger.With(slog.String("tool", name), slog.String("invocation_id", invocationID))
	ctx, span := r.tracer.Start(ctx, "tool "+name)
	defer span.End()
	span.SetAttributes(
		attribute.String("mcp.tool.name", name),
		attribute.String("mcp.invocation_id", invocationID),
	)

	log.Info("Executing tool invocation")
	start := time.Now()
	text, err := r.invoke(ctx, def, args)
	elapsed := time.Since(start)

	metrics.ToolDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	outcome := classifyOutcome(err)
	metrics.ToolInvocations.WithLabelValues(name, outcome).Inc()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		log.Warn("Tool invocation failed", slog.String("outcome", outcome), slog.Duration("duration", elapsed), slog.Any("error", err))
		return "", err
	}
	log.Info("Tool invocation successful", slog.Duration("duration", elapsed), slog.Int("bytes", len(text)))
	return text, nil
}

func (r *Registry) invoke(ctx context.Context, def *ToolDefinition, args map[string]any) (string, error) {
	if args == nil {
		args = map[string]any{}
	}
	result, err := def.schema.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return "", &domain.ValidationError{Tool: def.Tool.Name, Problems: []string{err.Error()}}
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return "", &domain.ValidationError{Tool: def.Tool.Name, Problems: problems}
	}
	return def.Handler(ctx, args)
}

func classifyOutcome(err error) string {
	var (
		vErr   *domain.ValidationError
		cfgErr *domain.ConfigurationError
		apiErr *domain.APIError
	)
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.As(err, &vErr):
		return metrics.OutcomeValidationError
	case errors.As(err, &cfgErr):
		return metrics.OutcomeConfigError
	case errors.As(err, &apiErr):
		return metrics.OutcomeAPIError
	default:
		return metrics.OutcomeError
	}
}

// bind decodes schema-checked arguments into the operation's typed input.
// Inputs with a Normalize method get defaults applied and enumerations checked.
func bind[T any](tool string, fn func(context.Context, T) (string, error)) Handler {
	return func(ctx context.Context, args map[string]any) (string, error) {
		var in T
		encoded, err := json.Marshal(args)
		if err != nil {
			return "", &domain.ValidationError{Tool: tool, Problems: []string{err.Error()}}
		}
		if err := json.Unmarshal(encoded, &in); err != nil {
			return "", &domain.ValidationError{Tool: tool, Problems: []string{err.Error()}}
		}
		if n, ok := any(&in).(interface{ Normalize() error }); ok {
			if err := n.Normalize(); err != nil {
				var vErr *domain.ValidationError
				if errors.As(err, &vErr) {
					vErr.Tool = tool
				}
				return "", err
			}
		}
		return fn(ctx, in)
	}
}
