package usecase_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/i2y/populi-mcp/internal/domain"
	"github.com/i2y/populi-mcp/internal/usecase"
)

// MockClassroomAPI is a mock implementation of the ClassroomAPI interface.
type MockClassroomAPI struct {
	mock.Mock
}

func (m *MockClassroomAPI) Get(ctx context.Context, path string) (json.RawMessage, error) {
	args := m.Called(ctx, path)
	result := args.Get(0)
	if result == nil {
		return nil, args.Error(1)
	}
	return result.(json.RawMessage), args.Error(1)
}

func TestClassroomTools_Paths(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		call     func(*usecase.ClassroomTools) (string, error)
		wantPath string
	}{
		{
			name:     "List classrooms",
			call:     func(c *usecase.ClassroomTools) (string, error) { return c.ListClassrooms(ctx, domain.ListClassroomsInput{}) },
			wantPath: "/classrooms",
		},
		{
			name: "List assignments without page",
			call: func(c *usecase.ClassroomTools) (string, error) {
				return c.ListAssignments(ctx, domain.ListAssignmentsInput{ClassroomID: 3})
			},
			wantPath: "/classrooms/3/assignments",
		},
		{
			name: "List assignments with page",
			call: func(c *usecase.ClassroomTools) (string, error) {
				return c.ListAssignments(ctx, domain.ListAssignmentsInput{ClassroomID: 3, Page: ptr(int64(2))})
			},
			wantPath: "/classrooms/3/assignments?page=2",
		},
		{
			name:     "Get assignment",
			call:     func(c *usecase.ClassroomTools) (string, error) { return c.GetAssignment(ctx, domain.AssignmentInput{AssignmentID: 8}) },
			wantPath: "/assignments/8",
		},
		{
			name: "Accepted assignments",
			call: func(c *usecase.ClassroomTools) (string, error) {
				return c.ListAcceptedAssignments(ctx, domain.AssignmentInput{AssignmentID: 8})
			},
			wantPath: "/assignments/8/accepted_assignments",
		},
		{
			name: "Assignment grades",
			call: func(c *usecase.ClassroomTools) (string, error) {
				return c.GetAssignmentGrades(ctx, domain.AssignmentInput{AssignmentID: 8})
			},
			wantPath: "/assignments/8/grades",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(MockClassroomAPI)
			api.On("Get", mock.Anything, tt.wantPath).Return(json.RawMessage(`[{"id":1}]`), nil).Once()

			out, err := tt.call(usecase.NewClassroomTools(api, testLogger()))
			require.NoError(t, err)
			assert.Equal(t, "[\n  {\n    \"id\": 1\n  }\n]", out)
			api.AssertExpectations(t)
		})
	}
}

func TestClassroomTools_ErrorPropagates(t *testing.T) {
	api := new(MockClassroomAPI)
	api.On("Get", mock.Anything, "/classrooms").Return(nil, domain.MissingClassroomToken()).Once()

	_, err := usecase.NewClassroomTools(api, testLogger()).ListClassrooms(context.Background(), domain.ListClassroomsInput{})
	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "GITHUB_TOKEN")
}
