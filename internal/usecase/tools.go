package usecase

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/i2y/populi-mcp/internal/domain"
)

// Tool names exposed to the MCP host.
const (
	ToolListAcademicTerms       = "populi_list_academic_terms"
	ToolGetPerson               = "populi_get_person"
	ToolListPeople              = "populi_list_people"
	ToolGetCourseOffering       = "populi_get_course_offering"
	ToolListCourseOfferings     = "populi_list_course_offerings"
	ToolListEnrollments         = "populi_list_enrollments"
	ToolExportRoster            = "populi_export_roster_for_classroom"
	ToolListClassrooms          = "github_classroom_list_classrooms"
	ToolListAssignments         = "github_classroom_list_assignments"
	ToolGetAssignment           = "github_classroom_get_assignment"
	ToolListAcceptedAssignments = "github_classroom_list_accepted_assignments"
	ToolGetAssignmentGrades     = "github_classroom_get_assignment_grades"
)

var stringItems = mcp.Items(map[string]any{"type": "string"})

func toolTable(populi *PopuliTools, roster *ExportRosterUseCase, classroom *ClassroomTools) []*ToolDefinition {
	return []*ToolDefinition{
		{
			Service: domain.ServicePopuli,
			Tool: mcp.NewTool(ToolListAcademicTerms,
				mcp.WithDescription("List academic terms (needed for course offerings and enrollments)."),
				mcp.WithNumber("page", mcp.Description("Page number (1-based)")),
				mcp.WithNumber("limit", mcp.Description("Max results per page")),
			),
			Handler: bind(ToolListAcademicTerms, populi.ListAcademicTerms),
		},
		{
			Service: domain.ServicePopuli,
			Tool: mcp.NewTool(ToolGetPerson,
				mcp.WithDescription("Get a person by ID from Populi."),
				mcp.WithNumber("person_id", mcp.Required(), mcp.Description("Populi person ID")),
				mcp.WithArray("expand", stringItems, mcp.Description("Optional expand fields (e.g. addresses, phone_numbers, tags)")),
			),
			Handler: bind(ToolGetPerson, populi.GetPerson),
		},
		{
			Service: domain.ServicePopuli,
			Tool: mcp.NewTool(ToolListPeople,
				mcp.WithDescription("List people in Populi with optional search. Supports paging."),
				mcp.WithString("query", mcp.Description("Search query (name, email, etc.)")),
				mcp.WithNumber("page", mcp.Description("Page number (1-based)")),
				mcp.WithNumber("limit", mcp.Description("Max results per page (default 200)")),
			),
			Handler: bind(ToolListPeople, populi.ListPeople),
		},
		{
			Service: domain.ServicePopuli,
			Tool: mcp.NewTool(ToolGetCourseOffering,
				mcp.WithDescription("Get a course offering by ID."),
				mcp.WithNumber("course_offering_id", mcp.Required(), mcp.Description("Populi course offering ID")),
				mcp.WithArray("expand", stringItems, mcp.Description("Optional expand fields (e.g. catalog_courses, subterms)")),
			),
			Handler: bind(ToolGetCourseOffering, populi.GetCourseOffering),
		},
		{
			Service: domain.ServicePopuli,
			Tool: mcp.NewTool(ToolListCourseOfferings,
				mcp.WithDescription("List course offerings of an academic term."),
				mcp.WithNumber("academic_term_id", mcp.Required(), mcp.Description("Academic term ID")),
				mcp.WithNumber("page", mcp.Description("Page number (1-based)")),
				mcp.WithNumber("limit", mcp.Description("Max results per page (default 200)")),
			),
			Handler: bind(ToolListCourseOfferings, populi.ListCourseOfferings),
		},
		{
			Service: domain.ServicePopuli,
			Tool: mcp.NewTool(ToolListEnrollments,
				mcp.WithDescription("List enrollments for a course offering (roster)."),
				mcp.WithNumber("academic_term_id", mcp.Required(), mcp.Description("Academic term ID (enrollments are scoped by term)")),
				mcp.WithNumber("course_offering_id", mcp.Required(), mcp.Description("Course offering ID to filter the roster by")),
				mcp.WithNumber("page", mcp.Description("Page number (1-based)")),
			),
			Handler: bind(ToolListEnrollments, populi.ListEnrollments),
		},
		{
			Service: domain.ServicePopuli,
			Tool: mcp.NewTool(ToolExportRoster,
				mcp.WithDescription("Export a Populi course roster as CSV or JSON for GitHub Classroom roster import."),
				mcp.WithNumber("academic_term_id", mcp.Required(), mcp.Description("Academic term ID")),
				mcp.WithNumber("course_offering_id", mcp.Required(), mcp.Description("Course offering ID")),
				mcp.WithString("identifier",
					mcp.Enum(domain.IdentifierPolicies()...),
					mcp.DefaultString(string(domain.IdentifierVisibleStudentID)),
					mcp.Description("Which Populi field to use as roster identifier (must match Classroom roster)"),
				),
				mcp.WithString("format",
					mcp.Enum(domain.RosterFormats()...),
					mcp.DefaultString(string(domain.FormatCSV)),
					mcp.Description("Output format"),
				),
			),
			Handler: bind(ToolExportRoster, roster.Execute),
		},
		{
			Service: domain.ServiceClassroom,
			Tool: mcp.NewTool(ToolListClassrooms,
				mcp.WithDescription("List GitHub Classroom classrooms the token can administer."),
			),
			Handler: bind(ToolListClassrooms, classroom.ListClassrooms),
		},
		{
			Service: domain.ServiceClassroom,
			Tool: mcp.NewTool(ToolListAssignments,
				mcp.WithDescription("List assignments of a GitHub Classroom classroom."),
				mcp.WithNumber("classroom_id", mcp.Required(), mcp.Description("GitHub Classroom ID")),
				mcp.WithNumber("page", mcp.Description("Page number")),
			),
			Handler: bind(ToolListAssignments, classroom.ListAssignments),
		},
		{
			Service: domain.ServiceClassroom,
			Tool: mcp.NewTool(ToolGetAssignment,
				mcp.WithDescription("Get a GitHub Classroom assignment by ID."),
				mcp.WithNumber("assignment_id", mcp.Required(), mcp.Description("GitHub Classroom assignment ID")),
			),
			Handler: bind(ToolGetAssignment, classroom.GetAssignment),
		},
		{
			Service: domain.ServiceClassroom,
			Tool: mcp.NewTool(ToolListAcceptedAssignments,
				mcp.WithDescription("List accepted assignments (student repositories) of a GitHub Classroom assignment."),
				mcp.WithNumber("assignment_id", mcp.Required(), mcp.Description("GitHub Classroom assignment ID")),
			),
			Handler: bind(ToolListAcceptedAssignments, classroom.ListAcceptedAssignments),
		},
		{
			Service: domain.ServiceClassroom,
			Tool: mcp.NewTool(ToolGetAssignmentGrades,
				mcp.WithDescription("Get grades of a GitHub Classroom assignment."),
				mcp.WithNumber("assignment_id", mcp.Required(), mcp.Description("GitHub Classroom assignment ID")),
			),
			Handler: bind(ToolGetAssignmentGrades, classroom.GetAssignmentGrades),
		},
	}
}
