package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/robostack/teamhub/internal/auth"
	"github.com/robostack/teamhub/internal/model"
	"github.com/robostack/teamhub/internal/repository"
	"github.com/robostack/teamhub/pkg/logger"
)

type TaskService struct {
	tasks repository.TaskRepository
}

func NewTaskService() *TaskService {
	return &TaskService{}
}

func (s *TaskService) CreateTask(ctx context.Context, id auth.Identity, in *model.Task) (*model.Task, *Error) {
	l := logger.FromContext(ctx)

	if !id.OnTeam() {
		return nil, NewError(ErrorCodeNotOnTeam, "join a team to create tasks")
	}

	if in.Status == "" {
		in.Status = model.TaskStatusTodo
	}
	if in.Priority == "" {
		in.Priority = model.TaskPriorityMedium
	}

	task := &repository.Task{
		ID:             uuid.NewString(),
		TeamID:         id.TeamID,
		Title:          in.Title,
		Description:    in.Description,
		Status:         in.Status,
		Priority:       in.Priority,
		DueDate:        in.DueDate,
		AssignedTo:     in.AssignedTo,
		CreatedBy:      id.UserID,
		Tags:           in.Tags,
		EstimatedHours: in.EstimatedHours,
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewError(ErrorCodeNotFound, "assignee not found")
		}
		l.Error("failed to create task", zap.String("title", in.Title), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to create task")
	}

	return toModelTask(task), nil
}

type TaskListQuery struct {
	Status     *model.TaskStatus
	AssignedTo *string
}

func (s *TaskService) ListTasks(ctx context.Context, id auth.Identity, q TaskListQuery) ([]*model.Task, *Error) {
	if !id.OnTeam() {
		return nil, NewError(ErrorCodeNotOnTeam, "user does not belong to a team")
	}

	repoTasks, err := s.tasks.ListByTeam(ctx, id.TeamID, repository.TaskFilter{
		Status:     q.Status,
		AssignedTo: q.AssignedTo,
	})
	if err != nil {
		return nil, NewError(ErrorCodeUnspecified, "failed to list tasks")
	}

	tasks := make([]*model.Task, 0, len(repoTasks))
	for _, t := range repoTasks {
		tasks = append(tasks, toModelTask(t))
	}
	return tasks, nil
}

type UpdateTaskInput struct {
	Status      *model.TaskStatus
	AssignedTo  *string
	ActualHours *float64
}

// UpdateTask applies a partial update; only set fields change.
func (s *TaskService) UpdateTask(ctx context.Context, id auth.Identity, taskID string, in UpdateTaskInput) (*model.Task, *Error) {
	task, err := s.tasks.Get(ctx, taskID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(ErrorCodeNotFound, "task not found")
	}
	if err != nil {
		return nil, NewError(ErrorCodeUnspecified, "failed to load task")
	}
	if task.TeamID != id.TeamID {
		return nil, NewError(ErrorCodeNotFound, "task not found")
	}

	if in.Status == nil && in.AssignedTo == nil && in.ActualHours == nil {
		return toModelTask(task), nil
	}

	updated, err := s.tasks.Patch(ctx, &repository.TaskPatch{
		ID:          taskID,
		Status:      in.Status,
		AssignedTo:  in.AssignedTo,
		ActualHours: in.ActualHours,
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(ErrorCodeNotFound, "task not found")
	}
	if err != nil {
		return nil, NewError(ErrorCodeUnspecified, "failed to update task")
	}

	return toModelTask(updated), nil
}

func (s *TaskService) WithTaskRepo(r repository.TaskRepository) *TaskService {
	s.tasks = r
	return s
}

func toModelTask(t *repository.Task) *model.Task {
	return &model.Task{
		ID:             t.ID,
		TeamID:         t.TeamID,
		Title:          t.Title,
		Description:    t.Description,
		Status:         t.Status,
		Priority:       t.Priority,
		DueDate:        t.DueDate,
		AssignedTo:     t.AssignedTo,
		CreatedBy:      t.CreatedBy,
		Tags:           t.Tags,
		EstimatedHours: t.EstimatedHours,
		ActualHours:    t.ActualHours,
	}
}
