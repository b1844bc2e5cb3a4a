package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/i2y/populi-mcp/internal/domain"
)

// ExportRosterUseCase turns a Populi course roster into a join table for
// GitHub Classroom roster import.
type ExportRosterUseCase struct {
	api    PopuliAPI
	logger *slog.Logger
}

// NewExportRosterUseCase creates a new ExportRosterUseCase.
func NewExportRosterUseCase(api PopuliAPI, logger *slog.Logger) *ExportRosterUseCase {
	return &ExportRosterUseCase{
		api:    api,
		logger: logger.With("usecase", "ExportRoster"),
	}
}

// Execute fetches the enrollments of one course offering and renders them as
// CSV or JSON. An empty roster is a valid result.
func (uc *ExportRosterUseCase) Execute(ctx context.Context, in domain.ExportRosterInput) (string, error) {
	if err := in.Normalize(); err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) && vErr.Tool == "" {
			vErr.Tool = ToolExportRoster
		}
		return "", err
	}
	log := uc.logger.With(
		slog.Int64("academic_term_id", in.AcademicTermID),
		slog.Int64("course_offering_id", in.CourseOfferingID),
		slog.String("identifier", string(in.Identifier)),
		slog.String("format", string(in.Format)),
	)

	path, err := EnrollmentsPath(in.AcademicTermID, in.CourseOfferingID, nil)
	if err != nil {
		return "", err
	}
	raw, err := uc.api.Get(ctx, path)
	if err != nil {
		return "", err
	}

	records, err := domain.DecodeEnrollments(raw)
	if err != nil {
		log.Error("Unexpected enrollment payload", slog.Any("error", err))
		return "", fmt.Errorf("failed to read enrollments: %w", err)
	}
	rows := domain.BuildRosterRows(records, in.Identifier)
	log.Info("Roster exported", slog.Int("rows", len(rows)))
	return domain.RenderRoster(rows, in.Format)
}
