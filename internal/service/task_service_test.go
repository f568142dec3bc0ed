package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/robostack/teamhub/internal/auth"
	"github.com/robostack/teamhub/internal/model"
	"github.com/robostack/teamhub/internal/repository"
)

func TestTaskService_CreateTask(t *testing.T) {
	identity := auth.Identity{UserID: "u1", TeamID: "team1", Role: model.RoleStudent}

	mockTasks := new(MockTaskRepository)
	mockTasks.On("Create", mock.Anything, mock.MatchedBy(func(task *repository.Task) bool {
		return task.TeamID == "team1" &&
			task.CreatedBy == "u1" &&
			task.Status == model.TaskStatusTodo &&
			task.Priority == model.TaskPriorityMedium
	})).Return(nil)

	service := NewTaskService().
		WithTaskRepo(mockTasks)

	got, err := service.CreateTask(context.Background(), identity, &model.Task{Title: "Wire the arm"})

	assert.Nil(t, err)
	assert.Equal(t, model.TaskStatusTodo, got.Status)
	assert.Equal(t, model.TaskPriorityMedium, got.Priority)
	mockTasks.AssertExpectations(t)
}

func TestTaskService_ListTasksPassesFilter(t *testing.T) {
	identity := auth.Identity{UserID: "u1", TeamID: "team1", Role: model.RoleStudent}
	status := model.TaskStatusInProgress

	mockTasks := new(MockTaskRepository)
	mockTasks.On("ListByTeam", mock.Anything, "team1", repository.TaskFilter{
		Status:     &status,
		AssignedTo: ptr("u1"),
	}).Return([]*repository.Task{
		{ID: "t1", TeamID: "team1", Title: "Wire the arm", Status: status, AssignedTo: ptr("u1")},
	}, nil)

	service := NewTaskService().
		WithTaskRepo(mockTasks)

	got, err := service.ListTasks(context.Background(), identity, TaskListQuery{
		Status:     &status,
		AssignedTo: ptr("u1"),
	})

	assert.Nil(t, err)
	assert.Len(t, got, 1)
	mockTasks.AssertExpectations(t)
}

func TestTaskService_UpdateTask(t *testing.T) {
	identity := auth.Identity{UserID: "u1", TeamID: "team1", Role: model.RoleStudent}
	done := model.TaskStatusDone

	tests := []struct {
		name          string
		taskID        string
		input         UpdateTaskInput
		setupMocks    func(*MockTaskRepository)
		expectedError bool
		errorCode     ErrorCode
	}{
		{
			name:   "success: status change",
			taskID: "t1",
			input:  UpdateTaskInput{Status: &done},
			setupMocks: func(tr *MockTaskRepository) {
				tr.On("Get", mock.Anything, "t1").Return(&repository.Task{
					ID: "t1", TeamID: "team1", Status: model.TaskStatusReview,
				}, nil)
				tr.On("Patch", mock.Anything, mock.Anything).Return(&repository.Task{
					ID: "t1", TeamID: "team1", Status: done,
				}, nil)
			},
			expectedError: false,
		},
		{
			name:   "success: empty patch is a no-op",
			taskID: "t1",
			input:  UpdateTaskInput{},
			setupMocks: func(tr *MockTaskRepository) {
				tr.On("Get", mock.Anything, "t1").Return(&repository.Task{
					ID: "t1", TeamID: "team1", Status: model.TaskStatusReview,
				}, nil)
			},
			expectedError: false,
		},
		{
			name:   "failure: task on another team",
			taskID: "t2",
			input:  UpdateTaskInput{Status: &done},
			setupMocks: func(tr *MockTaskRepository) {
				tr.On("Get", mock.Anything, "t2").Return(&repository.Task{
					ID: "t2", TeamID: "team2",
				}, nil)
			},
			expectedError: true,
			errorCode:     ErrorCodeNotFound,
		},
		{
			name:   "failure: not found",
			taskID: "missing",
			input:  UpdateTaskInput{Status: &done},
			setupMocks: func(tr *MockTaskRepository) {
				tr.On("Get", mock.Anything, "missing").Return(nil, repository.ErrNotFound)
			},
			expectedError: true,
			errorCode:     ErrorCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockTasks := new(MockTaskRepository)
			tt.setupMocks(mockTasks)

			service := NewTaskService().
				WithTaskRepo(mockTasks)

			got, err := service.UpdateTask(context.Background(), identity, tt.taskID, tt.input)

			if tt.expectedError {
				assert.NotNil(t, err)
				assert.Equal(t, tt.errorCode, err.Code)
			} else {
				assert.Nil(t, err)
				assert.NotNil(t, got)
			}
			mockTasks.AssertExpectations(t)
		})
	}
}
