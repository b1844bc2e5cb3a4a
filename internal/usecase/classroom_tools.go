package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/i2y/populi-mcp/internal/domain"
)

// ClassroomTools implements the read pass-throughs backed by GitHub Classroom.
type ClassroomTools struct {
	api    ClassroomAPI
	logger *slog.Logger
}

// NewClassroomTools creates the GitHub Classroom operation handlers.
func NewClassroomTools(api ClassroomAPI, logger *slog.Logger) *ClassroomTools {
	return &ClassroomTools{
		api:    api,
		logger: logger.With("usecase", "ClassroomTools"),
	}
}

func (t *ClassroomTools) ListClassrooms(ctx context.Context, _ domain.ListClassroomsInput) (string, error) {
	return t.get(ctx, "/classrooms")
}

func (t *ClassroomTools) ListAssignments(ctx context.Context, in domain.ListAssignmentsInput) (string, error) {
	path := fmt.Sprintf("/classrooms/%d/assignments", in.ClassroomID)
	if in.Page != nil {
		path += fmt.Sprintf("?page=%d", *in.Page)
	}
	return t.get(ctx, path)
}

func (t *ClassroomTools) GetAssignment(ctx context.Context, in domain.AssignmentInput) (string, error) {
	return t.get(ctx, fmt.Sprintf("/assignments/%d", in.AssignmentID))
}

func (t *ClassroomTools) ListAcceptedAssignments(ctx context.Context, in domain.AssignmentInput) (string, error) {
	return t.get(ctx, fmt.Sprintf("/assignments/%d/accepted_assignments", in.AssignmentID))
}

func (t *ClassroomTools) GetAssignmentGrades(ctx context.Context, in domain.AssignmentInput) (string, error) {
	return t.get(ctx, fmt.Sprintf("/assignments/%d/grades", in.AssignmentID))
}

func (t *ClassroomTools) get(ctx context.Context, path string) (string, error) {
	raw, err := t.api.Get(ctx, path)
	if err != nil {
		return "", err
	}
	return domain.PrettyJSON(raw)
}
