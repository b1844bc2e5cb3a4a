// Package github is the request builder for the GitHub Classroom REST API.
package github

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/i2y/populi-mcp/internal/adapter/outbound/httpinvoker"
	"github.com/i2y/populi-mcp/internal/domain"
)

// APIVersion is sent as X-GitHub-Api-Version on every request.
const APIVersion = "2022-11-28"

// CredentialSource yields GitHub credentials or a *domain.ConfigurationError.
type CredentialSource interface {
	Classroom() (domain.ClassroomCredentials, error)
}

// ClassroomClient builds authenticated GitHub Classroom requests.
type ClassroomClient struct {
	invoker *httpinvoker.Invoker
	creds   CredentialSource
	logger  *slog.Logger
}

// NewClassroomClient creates a GitHub Classroom client.
func NewClassroomClient(invoker *httpinvoker.Invoker, creds CredentialSource, logger *slog.Logger) *ClassroomClient {
	return &ClassroomClient{
		invoker: invoker,
		creds:   creds,
		logger:  logger.With("component", "classroom_client"),
	}
}

// Get retrieves path, which is either relative to the API root or an
// absolute URL such as a pagination link.
func (c *ClassroomClient) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

// Do sends one request. header entries override the defaults.
func (c *ClassroomClient) Do(ctx context.Context, method, path string, header http.Header) (json.RawMessage, error) {
	creds, err := c.creds.Classroom()
	if err != nil {
		return nil, err
	}

	h := http.Header{}
	h.Set("Authorization", "Bearer "+creds.Token)
	h.Set("Accept", "application/vnd.github+json")
	h.Set("X-GitHub-Api-Version", APIVersion)
	for key, values := range header {
		h[http.CanonicalHeaderKey(key)] = values
	}

	c.logger.Debug("Calling GitHub Classroom", slog.String("method", method), slog.String("path", path))
	return c.invoker.Invoke(ctx, httpinvoker.Request{
		Service: domain.ServiceClassroom,
		Method:  method,
		URL:     resolveURL(creds.APIURL, path),
		Header:  h,
	})
}

// IsAbsoluteURL reports whether path already names a full URL.
func IsAbsoluteURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

func resolveURL(apiURL, path string) string {
	if IsAbsoluteURL(path) {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return apiURL + path
}
