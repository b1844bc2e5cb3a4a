package httpinvoker_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i2y/populi-mcp/internal/adapter/outbound/httpinvoker"
	"github.com/i2y/populi-mcp/internal/domain"
)

func newTestInvoker(t *testing.T, handler http.Handler) (*httpinvoker.Invoker, *httptest.Server) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	invoker := httpinvoker.New(server.Client(), logger)
	return invoker, server
}

type ErrorCheckFunc func(t *testing.T, err error)

func TestInvoker_Invoke(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name           string
		mockHandler    func(t *testing.T) http.HandlerFunc
		inRequest      httpinvoker.Request
		wantResult     string
		wantErr        bool
		expectErrCheck ErrorCheckFunc
	}{
		{
			name: "Success - POST with JSON body",
			mockHandler: func(t *testing.T) http.HandlerFunc {
				return func(w http.ResponseWriter, r *http.Request) {
					assert.Equal(t, http.MethodPost, r.Method)
					assert.Equal(t, "/api2/people/7", r.URL.Path)
					assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
					bodyBytes, _ := io.ReadAll(r.Body)
					assert.JSONEq(t, `{"expand":["addresses"]}`, string(bodyBytes))
					w.Header().Set("Content-Type", "application/json")
					w.Write([]byte(`{"id":7}`))
				}
			},
			inRequest: httpinvoker.Request{
				Service: domain.ServicePopuli,
				Method:  http.MethodPost,
				URL:     "/api2/people/7",
				Body:    map[string]any{"expand": []string{"addresses"}},
				Header:  http.Header{"Authorization": {"Bearer k"}},
			},
			wantResult: `{"id":7}`,
		},
		{
			name: "Success - GET without body",
			mockHandler: func(t *testing.T) http.HandlerFunc {
				return func(w http.ResponseWriter, r *http.Request) {
					assert.Equal(t, http.MethodGet, r.Method)
					assert.Equal(t, int64(0), r.ContentLength)
					w.Write([]byte(`[1, 2]`))
				}
			},
			inRequest:  httpinvoker.Request{Service: domain.ServiceClassroom, Method: http.MethodGet, URL: "/classrooms"},
			wantResult: `[1, 2]`,
		},
		{
			name: "Success - empty body decodes to null",
			mockHandler: func(t *testing.T) http.HandlerFunc {
				return func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusNoContent)
				}
			},
			inRequest:  httpinvoker.Request{Service: domain.ServicePopuli, Method: http.MethodGet, URL: "/empty"},
			wantResult: `null`,
		},
		{
			name: "Failure - HTTP 404 with body",
			mockHandler: func(t *testing.T) http.HandlerFunc {
				return func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusNotFound)
					w.Write([]byte("Not Found"))
				}
			},
			inRequest: httpinvoker.Request{Service: domain.ServicePopuli, Method: http.MethodGet, URL: "/missing"},
			wantErr:   true,
			expectErrCheck: func(t *testing.T, err error) {
				var apiErr *domain.APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
				assert.Equal(t, "Populi API 404: Not Found", err.Error())
			},
		},
		{
			name: "Failure - HTTP 503 with empty body uses reason phrase",
			mockHandler: func(t *testing.T) http.HandlerFunc {
				return func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusServiceUnavailable)
				}
			},
			inRequest: httpinvoker.Request{Service: domain.ServiceClassroom, Method: http.MethodGet, URL: "/down"},
			wantErr:   true,
			expectErrCheck: func(t *testing.T, err error) {
				assert.EqualError(t, err, "GitHub API 503: Service Unavailable")
			},
		},
		{
			name: "Failure - non-JSON success body",
			mockHandler: func(t *testing.T) http.HandlerFunc {
				return func(w http.ResponseWriter, r *http.Request) {
					w.Write([]byte("this is not json"))
				}
			},
			inRequest: httpinvoker.Request{Service: domain.ServicePopuli, Method: http.MethodGet, URL: "/text"},
			wantErr:   true,
			expectErrCheck: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "non-JSON")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invoker, server := newTestInvoker(t, tt.mockHandler(t))
			tt.inRequest.URL = server.URL + tt.inRequest.URL

			actualResult, err := invoker.Invoke(ctx, tt.inRequest)

			if tt.wantErr {
				require.Error(t, err)
				if tt.expectErrCheck != nil {
					tt.expectErrCheck(t, err)
				}
				assert.Nil(t, actualResult)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, json.RawMessage(tt.wantResult), actualResult)
		})
	}
}
