package populi_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i2y/populi-mcp/internal/adapter/outbound/credentials"
	"github.com/i2y/populi-mcp/internal/adapter/outbound/httpinvoker"
	"github.com/i2y/populi-mcp/internal/adapter/outbound/populi"
	"github.com/i2y/populi-mcp/internal/domain"
)

func newClient(t *testing.T, settings credentials.Settings, handler http.HandlerFunc) (*populi.Client, *int32) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	if settings.PopuliBaseURL == "use-server" {
		settings.PopuliBaseURL = server.URL + "/"
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	inv := httpinvoker.New(server.Client(), logger)
	return populi.New(inv, credentials.New(settings, logger), logger), &calls
}

func TestClient_Get(t *testing.T) {
	client, calls := newClient(t, credentials.Settings{PopuliBaseURL: "use-server", PopuliAPIKey: "sk_test"},
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/api2/academicterms", r.URL.Path)
			assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			w.Write([]byte(`{"data":[]}`))
		})

	// Path without a leading separator is normalized.
	raw, err := client.Get(context.Background(), "academicterms")
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[]}`, string(raw))
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestClient_Post(t *testing.T) {
	client, _ := newClient(t, credentials.Settings{PopuliBaseURL: "use-server", PopuliAPIKey: "sk_test"},
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api2/courseofferings/9", r.URL.Path)
			body, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"expand":["subterms"]}`, string(body))
			w.Write([]byte(`{"id":9}`))
		})

	_, err := client.Post(context.Background(), "/courseofferings/9", map[string]any{"expand": []string{"subterms"}})
	require.NoError(t, err)
}

func TestClient_HeaderOverride(t *testing.T) {
	client, _ := newClient(t, credentials.Settings{PopuliBaseURL: "use-server", PopuliAPIKey: "sk_test"},
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "text/plain", r.Header.Get("Content-Type"))
			assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
			w.Write([]byte(`{}`))
		})

	_, err := client.Do(context.Background(), http.MethodGet, "/people", nil, http.Header{"content-type": {"text/plain"}})
	require.NoError(t, err)
}

func TestClient_MissingCredentialsSkipsNetwork(t *testing.T) {
	client, calls := newClient(t, credentials.Settings{PopuliBaseURL: "use-server"},
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		})

	_, err := client.Get(context.Background(), "/people")
	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestClient_APIError(t *testing.T) {
	client, _ := newClient(t, credentials.Settings{PopuliBaseURL: "use-server", PopuliAPIKey: "sk_test"},
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("Not Found"))
		})

	_, err := client.Get(context.Background(), "/people/1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "Not Found")
}
