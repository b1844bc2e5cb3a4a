package domain

import (
	"encoding/json"
	"fmt"
	"net/url"
)

// FilterLogicAll matches records satisfying every field constraint of a group.
const FilterLogicAll = "ALL"

// FilterField is one field constraint inside a filter group.
// Positive is 1 for inclusion; Populi encodes the flag numerically.
type FilterField struct {
	Name     string `json:"name"`
	Value    any    `json:"value"`
	Positive int    `json:"positive"`
}

// FilterExpression is a single Populi filter group. It serializes as
// {"0":{"logic":"ALL","fields":[...]}}, the shape the API expects under "filter".
type FilterExpression struct {
	Logic  string
	Fields []FilterField
}

type filterGroup struct {
	Logic  string        `json:"logic"`
	Fields []FilterField `json:"fields"`
}

// MarshalJSON wraps the group under the "0" key.
func (f FilterExpression) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]filterGroup{
		"0": {Logic: f.Logic, Fields: f.Fields},
	})
}

// UnmarshalJSON reads the first ("0") group back.
func (f *FilterExpression) UnmarshalJSON(data []byte) error {
	var groups map[string]filterGroup
	if err := json.Unmarshal(data, &groups); err != nil {
		return err
	}
	g, ok := groups["0"]
	if !ok {
		return fmt.Errorf("filter expression: missing group \"0\"")
	}
	f.Logic = g.Logic
	f.Fields = g.Fields
	return nil
}

// CourseFilter scopes a listing to one course offering.
func CourseFilter(courseOfferingID int64) FilterExpression {
	return FilterExpression{
		Logic: FilterLogicAll,
		Fields: []FilterField{
			{Name: "course", Value: courseOfferingID, Positive: 1},
		},
	}
}

// Parameters collects optional request arguments. Unset values are never added,
// so an empty Parameters means "let the upstream default apply".
type Parameters map[string]any

// SetInt stores v under key when v is non-nil.
func (p Parameters) SetInt(key string, v *int64) {
	if v != nil {
		p[key] = *v
	}
}

// SetString stores v under key when v is non-nil and non-empty.
func (p Parameters) SetString(key string, v *string) {
	if v != nil && *v != "" {
		p[key] = *v
	}
}

// SetStrings stores v under key when it has at least one element.
func (p Parameters) SetStrings(key string, v []string) {
	if len(v) > 0 {
		p[key] = v
	}
}

// QueryString serializes p as a single JSON object URL-encoded into the
// "parameters" query argument, including the leading "?". It returns "" when p
// is empty; "parameters={}" is never produced.
func (p Parameters) QueryString() (string, error) {
	if len(p) == 0 {
		return "", nil
	}
	encoded, err := json.Marshal(map[string]any(p))
	if err != nil {
		return "", fmt.Errorf("failed to encode parameters: %w", err)
	}
	q := url.Values{}
	q.Set("parameters", string(encoded))
	return "?" + q.Encode(), nil
}
