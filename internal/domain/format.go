package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// PrettyJSON re-indents an upstream JSON value with two spaces, preserving
// number literals and key order exactly as received. An empty value renders as null.
func PrettyJSON(raw json.RawMessage) (string, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "null", nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return "", fmt.Errorf("failed to format response: %w", err)
	}
	return buf.String(), nil
}
