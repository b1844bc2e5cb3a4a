// Package populi is the request builder for the Populi API v2.
package populi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/i2y/populi-mcp/internal/adapter/outbound/httpinvoker"
	"github.com/i2y/populi-mcp/internal/domain"
)

// APIPrefix is the version segment every Populi path lives under.
const APIPrefix = "/api2"

// CredentialSource yields Populi credentials or a *domain.ConfigurationError.
type CredentialSource interface {
	Populi() (domain.PopuliCredentials, error)
}

// Client builds authenticated Populi requests.
type Client struct {
	invoker *httpinvoker.Invoker
	creds   CredentialSource
	logger  *slog.Logger
}

// New creates a Populi client.
func New(invoker *httpinvoker.Invoker, creds CredentialSource, logger *slog.Logger) *Client {
	return &Client{
		invoker: invoker,
		creds:   creds,
		logger:  logger.With("component", "populi_client"),
	}
}

// Get issues a plain retrieval. path may carry a query string.
func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodGet, path, nil, nil)
}

// Post issues a body-carrying call, used where optional fields cannot be
// expressed on a GET.
func (c *Client) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPost, path, body, nil)
}

// Do sends one request. Credentials are checked before anything else, so a
// missing key never reaches the network. header entries override the defaults.
func (c *Client) Do(ctx context.Context, method, path string, body any, header http.Header) (json.RawMessage, error) {
	creds, err := c.creds.Populi()
	if err != nil {
		return nil, err
	}

	h := http.Header{}
	h.Set("Authorization", "Bearer "+creds.APIKey)
	h.Set("Content-Type", "application/json")
	for key, values := range header {
		h[http.CanonicalHeaderKey(key)] = values
	}

	url := creds.BaseURL + APIPrefix + normalizePath(path)
	c.logger.Debug("Calling Populi", slog.String("method", method), slog.String("path", path))
	return c.invoker.Invoke(ctx, httpinvoker.Request{
		Service: domain.ServicePopuli,
		Method:  method,
		URL:     url,
		Body:    body,
		Header:  h,
	})
}

func normalizePath(path string) string {
	if strings.HasPrefix(path, "/") {
		return path
	}
	return "/" + path
}
