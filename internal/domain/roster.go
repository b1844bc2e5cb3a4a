package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// IdentifierPolicy selects which enrollment field becomes the roster identifier.
type IdentifierPolicy string

const (
	IdentifierVisibleStudentID IdentifierPolicy = "visible_student_id"
	IdentifierPersonID         IdentifierPolicy = "person_id"
	IdentifierDisplayName      IdentifierPolicy = "display_name"
)

// IdentifierPolicies lists the accepted policies, default first.
func IdentifierPolicies() []string {
	return []string{string(IdentifierVisibleStudentID), string(IdentifierPersonID), string(IdentifierDisplayName)}
}

func (p IdentifierPolicy) Valid() bool {
	switch p {
	case IdentifierVisibleStudentID, IdentifierPersonID, IdentifierDisplayName:
		return true
	}
	return false
}

// RosterFormat is the rendering of an exported roster.
type RosterFormat string

const (
	FormatCSV  RosterFormat = "csv"
	FormatJSON RosterFormat = "json"
)

// RosterFormats lists the accepted formats, default first.
func RosterFormats() []string {
	return []string{string(FormatCSV), string(FormatJSON)}
}

func (f RosterFormat) Valid() bool {
	return f == FormatCSV || f == FormatJSON
}

// EnrollmentRecord is the narrow projection of a Populi enrollment the roster
// export reads. Everything else in the upstream payload is ignored.
type EnrollmentRecord struct {
	ID               int64
	DisplayName      string
	FirstName        string
	LastName         string
	VisibleStudentID *string
}

// UnmarshalJSON extracts the projected fields, failing with the field name when
// a present value has an unexpected JSON type. Absent or null optional fields
// are left empty.
func (r *EnrollmentRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID          json.RawMessage `json:"id"`
		DisplayName json.RawMessage `json:"display_name"`
		FirstName   json.RawMessage `json:"first_name"`
		LastName    json.RawMessage `json:"last_name"`
		ReportData  json.RawMessage `json:"report_data"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	id, err := requiredInt("id", raw.ID)
	if err != nil {
		return err
	}
	displayName, err := optionalString("display_name", raw.DisplayName)
	if err != nil {
		return err
	}
	firstName, err := optionalString("first_name", raw.FirstName)
	if err != nil {
		return err
	}
	lastName, err := optionalString("last_name", raw.LastName)
	if err != nil {
		return err
	}

	var visibleID *string
	if !isNull(raw.ReportData) {
		if kind := jsonKind(raw.ReportData); kind != "object" {
			return fmt.Errorf("report_data: expected object, got %s", kind)
		}
		var rd struct {
			VisibleStudentID json.RawMessage `json:"visible_student_id"`
		}
		if err := json.Unmarshal(raw.ReportData, &rd); err != nil {
			return fmt.Errorf("report_data: %w", err)
		}
		visibleID, err = optionalIdentifier("report_data.visible_student_id", rd.VisibleStudentID)
		if err != nil {
			return err
		}
	}

	*r = EnrollmentRecord{
		ID:               id,
		DisplayName:      deref(displayName),
		FirstName:        deref(firstName),
		LastName:         deref(lastName),
		VisibleStudentID: visibleID,
	}
	return nil
}

// PersonID is the record identifier rendered as text.
func (r EnrollmentRecord) PersonID() string {
	return strconv.FormatInt(r.ID, 10)
}

// Name is the display name, or "first last" trimmed when the display name is empty.
func (r EnrollmentRecord) Name() string {
	if r.DisplayName != "" {
		return r.DisplayName
	}
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// DecodeEnrollments reads the "data" array of an enrollment listing.
// A missing or null array is an empty roster.
func DecodeEnrollments(body json.RawMessage) ([]EnrollmentRecord, error) {
	if isNull(body) {
		return []EnrollmentRecord{}, nil
	}
	if kind := jsonKind(body); kind != "object" {
		return nil, fmt.Errorf("enrollment listing: expected object, got %s", kind)
	}
	var page struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("enrollment listing: %w", err)
	}
	records := make([]EnrollmentRecord, 0, len(page.Data))
	for i, item := range page.Data {
		var rec EnrollmentRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			return nil, fmt.Errorf("enrollment record %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// RosterRow is one line of the exported join table.
type RosterRow struct {
	Identifier       string  `json:"identifier"`
	DisplayName      string  `json:"display_name"`
	PersonID         int64   `json:"person_id"`
	VisibleStudentID *string `json:"visible_student_id,omitempty"`
}

// BuildRosterRows projects each record into a row. The identifier and
// display name columns fall back to the record id and are never empty.
func BuildRosterRows(records []EnrollmentRecord, policy IdentifierPolicy) []RosterRow {
	rows := make([]RosterRow, 0, len(records))
	for _, rec := range records {
		var identifier string
		switch policy {
		case IdentifierPersonID:
			identifier = rec.PersonID()
		case IdentifierDisplayName:
			identifier = rec.Name()
		default:
			// An absent or empty visible id falls back to the record id.
			identifier = deref(rec.VisibleStudentID)
		}
		rows = append(rows, RosterRow{
			Identifier:       orDefault(identifier, rec.PersonID()),
			DisplayName:      orDefault(rec.Name(), rec.PersonID()),
			PersonID:         rec.ID,
			VisibleStudentID: rec.VisibleStudentID,
		})
	}
	return rows
}

// RosterCSVHeader is the first line of the CSV rendering.
const RosterCSVHeader = "identifier,display_name,person_id,visible_student_id"

// rosterCSVFooter trails the CSV data. The lines start with '#' and are
// operator instructions, not data rows; readers should treat '#' as a comment.
const rosterCSVFooter = "\n\n# Copy the identifier column for GitHub Classroom roster import.\n" +
	"# Or import this CSV and map 'identifier' to your chosen Classroom identifier type."

// RenderRosterCSV renders rows with every field double-quoted.
func RenderRosterCSV(rows []RosterRow) string {
	var b strings.Builder
	b.WriteString(RosterCSVHeader)
	for _, r := range rows {
		b.WriteByte('\n')
		b.WriteString(quoteCSV(r.Identifier))
		b.WriteByte(',')
		b.WriteString(quoteCSV(r.DisplayName))
		b.WriteByte(',')
		b.WriteString(quoteCSV(strconv.FormatInt(r.PersonID, 10)))
		b.WriteByte(',')
		b.WriteString(quoteCSV(deref(r.VisibleStudentID)))
	}
	b.WriteString(rosterCSVFooter)
	return b.String()
}

// RenderRosterJSON renders rows as a pretty-printed JSON array ("[]" when empty).
func RenderRosterJSON(rows []RosterRow) (string, error) {
	if rows == nil {
		rows = []RosterRow{}
	}
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return "", fmt.Errorf("failed to encode roster: %w", err)
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}

// RenderRoster dispatches on format.
func RenderRoster(rows []RosterRow, format RosterFormat) (string, error) {
	switch format {
	case FormatJSON:
		return RenderRosterJSON(rows)
	case FormatCSV, "":
		return RenderRosterCSV(rows), nil
	default:
		return "", &ValidationError{Problems: []string{fmt.Sprintf("format: unsupported %q", format)}}
	}
}

func quoteCSV(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func requiredInt(field string, raw json.RawMessage) (int64, error) {
	if isNull(raw) {
		return 0, fmt.Errorf("%s: missing", field)
	}
	if kind := jsonKind(raw); kind != "number" {
		return 0, fmt.Errorf("%s: expected number, got %s", field, kind)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	v, err := n.Int64()
	if err != nil {
		return 0, fmt.Errorf("%s: expected integer, got %s", field, n)
	}
	return v, nil
}

func optionalString(field string, raw json.RawMessage) (*string, error) {
	if isNull(raw) {
		return nil, nil
	}
	if kind := jsonKind(raw); kind != "string" {
		return nil, fmt.Errorf("%s: expected string, got %s", field, kind)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return &s, nil
}

// optionalIdentifier accepts a string or a number. Numbers are rendered in
// their shortest decimal form, so 12345 becomes "12345".
func optionalIdentifier(field string, raw json.RawMessage) (*string, error) {
	if jsonKind(raw) != "number" {
		return optionalString(field, raw)
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	s := strconv.FormatFloat(n, 'f', -1, 64)
	return &s, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func jsonKind(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "nothing"
	}
	switch c := trimmed[0]; {
	case c == '{':
		return "object"
	case c == '[':
		return "array"
	case c == '"':
		return "string"
	case c == 't' || c == 'f':
		return "boolean"
	case c == 'n':
		return "null"
	default:
		return "number"
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
