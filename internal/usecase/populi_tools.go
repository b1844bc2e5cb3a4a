package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/i2y/populi-mcp/internal/domain"
)

// PopuliTools implements the read operations backed by the Populi API.
type PopuliTools struct {
	api    PopuliAPI
	logger *slog.Logger
}

// NewPopuliTools creates the Populi operation handlers.
func NewPopuliTools(api PopuliAPI, logger *slog.Logger) *PopuliTools {
	return &PopuliTools{
		api:    api,
		logger: logger.With("usecase", "PopuliTools"),
	}
}

// ListAcademicTerms lists terms; page and limit are sent only when given.
func (t *PopuliTools) ListAcademicTerms(ctx context.Context, in domain.ListAcademicTermsInput) (string, error) {
	params := domain.Parameters{}
	params.SetInt("page", in.Page)
	params.SetInt("limit", in.Limit)
	return t.list(ctx, "/academicterms", params)
}

// GetPerson retrieves one person; a non-empty expand list switches to POST.
func (t *PopuliTools) GetPerson(ctx context.Context, in domain.GetPersonInput) (string, error) {
	body := domain.Parameters{}
	body.SetStrings("expand", in.Expand)
	return t.retrieve(ctx, fmt.Sprintf("/people/%d", in.PersonID), body)
}

// ListPeople searches people. query, page and limit travel in a POST body.
func (t *PopuliTools) ListPeople(ctx context.Context, in domain.ListPeopleInput) (string, error) {
	body := domain.Parameters{}
	body.SetString("query", in.Query)
	body.SetInt("page", in.Page)
	body.SetInt("limit", in.Limit)
	return t.retrieve(ctx, "/people", body)
}

// GetCourseOffering retrieves one course offering; a non-empty expand list switches to POST.
func (t *PopuliTools) GetCourseOffering(ctx context.Context, in domain.GetCourseOfferingInput) (string, error) {
	body := domain.Parameters{}
	body.SetStrings("expand", in.Expand)
	return t.retrieve(ctx, fmt.Sprintf("/courseofferings/%d", in.CourseOfferingID), body)
}

// ListCourseOfferings lists the offerings of one academic term.
func (t *PopuliTools) ListCourseOfferings(ctx context.Context, in domain.ListCourseOfferingsInput) (string, error) {
	params := domain.Parameters{}
	params.SetInt("page", in.Page)
	params.SetInt("limit", in.Limit)
	return t.list(ctx, fmt.Sprintf("/academicterms/%d/courseofferings", in.AcademicTermID), params)
}

// ListEnrollments lists the roster of one course offering within a term.
func (t *PopuliTools) ListEnrollments(ctx context.Context, in domain.ListEnrollmentsInput) (string, error) {
	path, err := EnrollmentsPath(in.AcademicTermID, in.CourseOfferingID, in.Page)
	if err != nil {
		return "", err
	}
	return t.get(ctx, path)
}

// EnrollmentsPath builds the enrollment listing path for a term, always
// filtered to a single course offering.
func EnrollmentsPath(academicTermID, courseOfferingID int64, page *int64) (string, error) {
	params := domain.Parameters{"filter": domain.CourseFilter(courseOfferingID)}
	params.SetInt("page", page)
	qs, err := params.QueryString()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("/academicterms/%d/enrollments%s", academicTermID, qs), nil
}

func (t *PopuliTools) list(ctx context.Context, path string, params domain.Parameters) (string, error) {
	qs, err := params.QueryString()
	if err != nil {
		return "", err
	}
	return t.get(ctx, path+qs)
}

func (t *PopuliTools) get(ctx context.Context, path string) (string, error) {
	raw, err := t.api.Get(ctx, path)
	if err != nil {
		return "", err
	}
	return domain.PrettyJSON(raw)
}

// retrieve sends body with POST when it has fields, otherwise issues a plain GET.
func (t *PopuliTools) retrieve(ctx context.Context, path string, body domain.Parameters) (string, error) {
	var (
		raw json.RawMessage
		err error
	)
	if len(body) > 0 {
		t.logger.Debug("Using body-carrying call", slog.String("path", path), slog.Int("fields", len(body)))
		raw, err = t.api.Post(ctx, path, body)
	} else {
		raw, err = t.api.Get(ctx, path)
	}
	if err != nil {
		return "", err
	}
	return domain.PrettyJSON(raw)
}
