package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

const contentURLScheme = "github://"

// ContentRef addresses one file in a repository.
// Format: github://owner/repo/path/to/file[@ref]
type ContentRef struct {
	Owner string
	Repo  string
	Path  string
	Ref   string
}

// IsContentURL checks if a location is a github:// file reference.
func IsContentURL(location string) bool {
	return strings.HasPrefix(location, contentURLScheme)
}

// ParseContentURL parses a github:// URL into its components.
func ParseContentURL(location string) (ContentRef, error) {
	if !IsContentURL(location) {
		return ContentRef{}, fmt.Errorf("invalid GitHub URL format: %s", location)
	}
	rest := strings.TrimPrefix(location, contentURLScheme)

	var ref string
	if i := strings.LastIndex(rest, "@"); i >= 0 {
		rest, ref = rest[:i], rest[i+1:]
	}

	parts := strings.SplitN(rest, "/", 3)
	if len(parts) < 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return ContentRef{}, fmt.Errorf("invalid GitHub URL format: expected github://owner/repo/path/to/file")
	}
	return ContentRef{Owner: parts[0], Repo: parts[1], Path: parts[2], Ref: ref}, nil
}

// apiPath is the contents endpoint for the reference.
func (r ContentRef) apiPath() string {
	segments := strings.Split(r.Path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	path := fmt.Sprintf("/repos/%s/%s/contents/%s", url.PathEscape(r.Owner), url.PathEscape(r.Repo), strings.Join(segments, "/"))
	if r.Ref != "" {
		path += "?ref=" + url.QueryEscape(r.Ref)
	}
	return path
}

// FetchContent retrieves a file through the repository contents API using the
// same token as the Classroom calls.
func (c *ClassroomClient) FetchContent(ctx context.Context, ref ContentRef) ([]byte, error) {
	raw, err := c.Get(ctx, ref.apiPath())
	if err != nil {
		return nil, err
	}

	var file struct {
		Type     string `json:"type"`
		Encoding string `json:"encoding"`
		Content  string `json:"content"`
	}
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("unexpected contents response for %s: %w", ref.Path, err)
	}
	if file.Type != "" && file.Type != "file" {
		return nil, fmt.Errorf("%s is a %s, not a file", ref.Path, file.Type)
	}
	if file.Encoding != "base64" {
		return nil, fmt.Errorf("unsupported content encoding %q for %s", file.Encoding, ref.Path)
	}

	// GitHub wraps the encoded content at 60 columns.
	content, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(file.Content, "\n", ""))
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 content: %w", err)
	}
	c.logger.Debug("Fetched repository file", slog.String("repo", ref.Owner+"/"+ref.Repo), slog.String("path", ref.Path), slog.Int("bytes", len(content)))
	return content, nil
}
