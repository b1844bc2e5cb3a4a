package httpinvoker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/i2y/populi-mcp/internal/domain"
	"github.com/i2y/populi-mcp/internal/metrics"
)

// Request describes one upstream call. Header must already contain the
// service's authentication and any caller overrides.
type Request struct {
	Service string
	Method  string
	URL     string
	// Body is marshalled as JSON when non-nil.
	Body   any
	Header http.Header
}

// Invoker executes JSON requests against an upstream using standard net/http.
// Every call is exactly one round trip: no retries and no timeout beyond the
// client's own.
type Invoker struct {
	client *http.Client
	logger *slog.Logger
	tracer trace.Tracer
}

// New creates a new HTTP Invoker.
func New(client *http.Client, logger *slog.Logger) *Invoker {
	if client == nil {
		client = http.DefaultClient
	}
	return &Invoker{
		client: client,
		logger: logger.With("component", "http_invoker"),
		tracer: otel.Tracer("github.com/i2y/populi-mcp/internal/adapter/outbound/httpinvoker"),
	}
}

// Invoke sends the request and returns the raw JSON body of a 2xx response.
// A non-2xx response becomes a *domain.APIError carrying status and body text.
func (i *Invoker) Invoke(ctx context.Context, r Request) (json.RawMessage, error) {
	log := i.logger.With(
		slog.String("service", r.Service),
		slog.String("method", r.Method),
		slog.String("url", r.URL),
	)

	ctx, span := i.tracer.Start(ctx, r.Service+" "+r.Method, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", r.Method),
		attribute.String("url.full", r.URL),
		attribute.String("upstream.service", r.Service),
	)

	// --- 1. Encode body --- //
	var requestBody io.Reader
	if r.Body != nil {
		jsonData, err := json.Marshal(r.Body)
		if err != nil {
			log.Error("Failed to marshal request body", slog.Any("error", err))
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		requestBody = bytes.NewReader(jsonData)
		log.Debug("Prepared request body", slog.Int("size", len(jsonData)))
	}

	// --- 2. Create HTTP request --- //
	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, requestBody)
	if err != nil {
		log.Error("Failed to create HTTP request", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, values := range r.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	// --- 3. Execute request --- //
	log.Debug("Executing HTTP request")
	resp, err := i.client.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(r.Service, r.Method, "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		log.Error("HTTP request failed", slog.Any("error", err))
		return nil, fmt.Errorf("%s request failed: %w", r.Service, err)
	}
	defer resp.Body.Close()

	metrics.UpstreamRequests.WithLabelValues(r.Service, r.Method, strconv.Itoa(resp.StatusCode)).Inc()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	log = log.With(slog.Int("status_code", resp.StatusCode))
	log.Debug("Received HTTP response")

	// --- 4. Process response --- //
	respBodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		log.Error("Failed to read response body", slog.Any("error", err))
		return nil, fmt.Errorf("failed to read %s response body: %w", r.Service, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &domain.APIError{Service: r.Service, StatusCode: resp.StatusCode, Body: string(respBodyBytes)}
		span.SetStatus(codes.Error, apiErr.Error())
		log.Warn("Received non-success status code", slog.String("response_body", apiErr.Body))
		return nil, apiErr
	}

	if len(bytes.TrimSpace(respBodyBytes)) == 0 {
		log.Debug("Empty response body")
		return json.RawMessage("null"), nil
	}
	if !json.Valid(respBodyBytes) {
		span.SetStatus(codes.Error, "invalid JSON")
		log.Warn("Response body is not valid JSON")
		return nil, fmt.Errorf("%s API returned a non-JSON response (status %d)", r.Service, resp.StatusCode)
	}
	return json.RawMessage(respBodyBytes), nil
}
