package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseContentURL(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		expected    ContentRef
		expectError bool
	}{
		{
			name:     "simple github URL",
			url:      "github://owner/repo/path/to/file.yaml",
			expected: ContentRef{Owner: "owner", Repo: "repo", Path: "path/to/file.yaml"},
		},
		{
			name:     "github URL with ref",
			url:      "github://owner/repo/path/to/file.yaml@v1.0",
			expected: ContentRef{Owner: "owner", Repo: "repo", Path: "path/to/file.yaml", Ref: "v1.0"},
		},
		{
			name:     "github URL with branch ref",
			url:      "github://campus/classroom-config/populi-mcp.yaml@main",
			expected: ContentRef{Owner: "campus", Repo: "classroom-config", Path: "populi-mcp.yaml", Ref: "main"},
		},
		{
			name:        "invalid URL - not github",
			url:         "https://github.com/owner/repo/file.yaml",
			expectError: true,
		},
		{
			name:        "invalid URL - missing path",
			url:         "github://owner/repo",
			expectError: true,
		},
		{
			name:        "invalid URL - missing repo",
			url:         "github://owner",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := ParseContentURL(tt.url)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, ref)
		})
	}
}

func TestIsContentURL(t *testing.T) {
	tests := []struct {
		url      string
		expected bool
	}{
		{"github://owner/repo/file.yaml", true},
		{"github://owner/repo/file.yaml@v1.0", true},
		{"https://github.com/owner/repo/file.yaml", false},
		{"configs/populi-mcp.yaml", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsContentURL(tt.url))
		})
	}
}

func TestClassroomClient_FetchContent(t *testing.T) {
	payload := "server:\n  name: campus-mcp\n"
	encoded := base64.StdEncoding.EncodeToString([]byte(payload))
	// Wrapped the way the contents API returns it.
	wrapped := encoded[:8] + "\n" + encoded[8:]

	tests := []struct {
		name    string
		body    string
		want    string
		wantErr string
	}{
		{
			name: "Base64 file",
			body: fmt.Sprintf(`{"type":"file","encoding":"base64","content":%q}`, wrapped),
			want: payload,
		},
		{
			name:    "Directory listing",
			body:    `[{"type":"file","name":"a.yaml"}]`,
			wantErr: "unexpected contents response",
		},
		{
			name:    "Submodule",
			body:    `{"type":"submodule"}`,
			wantErr: "not a file",
		},
		{
			name:    "Unsupported encoding",
			body:    `{"type":"file","encoding":"none","content":""}`,
			wantErr: "unsupported content encoding",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, "ghp_test", func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/repos/campus/config/contents/dir/populi%20mcp.yaml", r.URL.EscapedPath())
				assert.Equal(t, "main", r.URL.Query().Get("ref"))
				w.Write([]byte(tt.body))
			})

			content, err := client.FetchContent(context.Background(), ContentRef{Owner: "campus", Repo: "config", Path: "dir/populi mcp.yaml", Ref: "main"})
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(content))
		})
	}
}
