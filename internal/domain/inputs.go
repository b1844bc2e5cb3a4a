package domain

import "fmt"

// Tool inputs. Each struct mirrors the input schema advertised for its tool;
// pointer fields are optional and stay nil when the caller omits them.

type ListAcademicTermsInput struct {
	Page  *int64 `json:"page,omitempty"`
	Limit *int64 `json:"limit,omitempty"`
}

type GetPersonInput struct {
	PersonID int64    `json:"person_id"`
	Expand   []string `json:"expand,omitempty"`
}

type ListPeopleInput struct {
	Query *string `json:"query,omitempty"`
	Page  *int64  `json:"page,omitempty"`
	Limit *int64  `json:"limit,omitempty"`
}

type GetCourseOfferingInput struct {
	CourseOfferingID int64    `json:"course_offering_id"`
	Expand           []string `json:"expand,omitempty"`
}

type ListCourseOfferingsInput struct {
	AcademicTermID int64  `json:"academic_term_id"`
	Page           *int64 `json:"page,omitempty"`
	Limit          *int64 `json:"limit,omitempty"`
}

type ListEnrollmentsInput struct {
	AcademicTermID   int64  `json:"academic_term_id"`
	CourseOfferingID int64  `json:"course_offering_id"`
	Page             *int64 `json:"page,omitempty"`
}

// ExportRosterInput selects the roster to export and how to render it.
// Identifier and Format take their defaults in Normalize.
type ExportRosterInput struct {
	AcademicTermID   int64            `json:"academic_term_id"`
	CourseOfferingID int64            `json:"course_offering_id"`
	Identifier       IdentifierPolicy `json:"identifier,omitempty"`
	Format           RosterFormat     `json:"format,omitempty"`
}

// Normalize applies defaults and rejects values outside the enumerated choices.
func (in *ExportRosterInput) Normalize() error {
	if in.Identifier == "" {
		in.Identifier = IdentifierVisibleStudentID
	}
	if in.Format == "" {
		in.Format = FormatCSV
	}
	var problems []string
	if !in.Identifier.Valid() {
		problems = append(problems, fmt.Sprintf("identifier: must be one of %v, got %q", IdentifierPolicies(), in.Identifier))
	}
	if !in.Format.Valid() {
		problems = append(problems, fmt.Sprintf("format: must be one of %v, got %q", RosterFormats(), in.Format))
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

type ListClassroomsInput struct{}

type ListAssignmentsInput struct {
	ClassroomID int64  `json:"classroom_id"`
	Page        *int64 `json:"page,omitempty"`
}

// AssignmentInput addresses a single GitHub Classroom assignment.
type AssignmentInput struct {
	AssignmentID int64 `json:"assignment_id"`
}
