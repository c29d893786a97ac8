package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"flowspace/internal/cache"
	"flowspace/internal/errors"
	"flowspace/internal/metrics"
	"flowspace/internal/model"
	"flowspace/internal/repository"
)

// CreateTaskInput holds the fields accepted when creating a task.
type CreateTaskInput struct {
	Title       string
	Description *string
	Priority    model.TaskPriority
	Status      model.TaskStatus
	DueDate     *time.Time
	AssigneeID  *uuid.UUID
}

// UpdateTaskInput is a partial update. DueDate and AssigneeID may be cleared with an explicit null.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Priority    *model.TaskPriority
	Status      *model.TaskStatus
	DueDate     Nullable[time.Time]
	AssigneeID  Nullable[uuid.UUID]
	Order       *float64
}

// TaskColumns holds a board's tasks bucketed by status.
type TaskColumns struct {
	Todo  []model.Task `json:"TODO"`
	Doing []model.Task `json:"DOING"`
	Done  []model.Task `json:"DONE"`
}

// TaskBoard is the list view of a project's tasks.
type TaskBoard struct {
	Tasks   []model.Task `json:"tasks"`
	Grouped TaskColumns  `json:"grouped"`
}

// column returns the bucket for status, or nil for an unknown status.
func (c *TaskColumns) column(status model.TaskStatus) *[]model.Task {
	switch status {
	case model.TaskStatusTodo:
		return &c.Todo
	case model.TaskStatusDoing:
		return &c.Doing
	case model.TaskStatusDone:
		return &c.Done
	}
	return nil
}

// TaskService handles Kanban task operations. Every operation requires READ on the task's project.
type TaskService interface {
	List(ctx context.Context, userID, projectID uuid.UUID) (*TaskBoard, error)
	Get(ctx context.Context, userID, taskID uuid.UUID) (*model.Task, error)
	Create(ctx context.Context, userID, projectID uuid.UUID, in CreateTaskInput) (*model.Task, error)
	Update(ctx context.Context, userID, taskID uuid.UUID, in UpdateTaskInput) (*model.Task, error)
	UpdateStatus(ctx context.Context, userID, taskID uuid.UUID, status model.TaskStatus, order *float64) (*model.Task, error)
	Delete(ctx context.Context, userID, taskID uuid.UUID) error
}

type taskService struct {
	store   repository.Store
	cache   *cache.Client
	metrics metrics.Recorder
}

// NewTaskService creates a new task service.
func NewTaskService(store repository.Store, cache *cache.Client, recorder metrics.Recorder) TaskService {
	return &taskService{
		store:   store,
		cache:   cache,
		metrics: recorder,
	}
}

// List returns the project's tasks flat and grouped by column.
func (s *taskService) List(ctx context.Context, userID, projectID uuid.UUID) (*TaskBoard, error) {
	if _, _, err := authorizeProject(ctx, s.store, userID, projectID); err != nil {
		return nil, err
	}

	tasks, err := s.store.Tasks().ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	board := &TaskBoard{
		Tasks: tasks,
		Grouped: TaskColumns{
			Todo:  []model.Task{},
			Doing: []model.Task{},
			Done:  []model.Task{},
		},
	}
	// Rows arrive in board order, so appending keeps each column sorted.
	for _, t := range tasks {
		if col := board.Grouped.column(t.Status); col != nil {
			*col = append(*col, t)
		}
	}
	if board.Tasks == nil {
		board.Tasks = []model.Task{}
	}
	return board, nil
}

// Get returns a task the caller can read.
func (s *taskService) Get(ctx context.Context, userID, taskID uuid.UUID) (*model.Task, error) {
	task, err := s.authorizeTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Create appends a task to the end of its column.
func (s *taskService) Create(ctx context.Context, userID, projectID uuid.UUID, in CreateTaskInput) (*model.Task, error) {
	project, _, err := authorizeProject(ctx, s.store, userID, projectID)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, errors.Validation("task title is required")
	}
	status := in.Status
	if status == "" {
		status = model.TaskStatusTodo
	}
	if !status.Valid() {
		return nil, errors.Validation("status must be one of TODO, DOING, DONE")
	}
	priority := in.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !priority.Valid() {
		return nil, errors.Validation("priority must be one of LOW, MEDIUM, HIGH")
	}

	task := &model.Task{
		Title:       title,
		Description: trimmedPtr(in.Description),
		Status:      status,
		Priority:    priority,
		DueDate:     in.DueDate,
		ProjectID:   projectID,
		CreatorID:   userID,
	}

	err = s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if in.AssigneeID != nil {
			if err := checkAssignee(ctx, tx, project, *in.AssigneeID); err != nil {
				return err
			}
			task.AssigneeID = in.AssigneeID
		}

		last, ok, err := tx.Tasks().MaxOrder(ctx, projectID, status)
		if err != nil {
			return fmt.Errorf("compute task order: %w", err)
		}
		if ok {
			task.Order = last + 1
		}

		if err := tx.Tasks().Create(ctx, task); err != nil {
			return fmt.Errorf("create task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordCreated("task")
	invalidateDashboard(ctx, s.cache, project.OwnerID)

	return s.reload(ctx, task.ID)
}

// Update applies a partial update to a task.
func (s *taskService) Update(ctx context.Context, userID, taskID uuid.UUID, in UpdateTaskInput) (*model.Task, error) {
	task, err := s.authorizeTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	project := task.Project
	from := task.Status

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, errors.Validation("task title cannot be empty")
		}
		task.Title = title
	}
	if in.Description != nil {
		task.Description = trimmedPtr(in.Description)
	}
	if in.Priority != nil {
		if !in.Priority.Valid() {
			return nil, errors.Validation("priority must be one of LOW, MEDIUM, HIGH")
		}
		task.Priority = *in.Priority
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, errors.Validation("status must be one of TODO, DOING, DONE")
		}
		task.Status = *in.Status
	}
	if in.DueDate.Set {
		task.DueDate = in.DueDate.Value
	}
	if in.AssigneeID.Set {
		if in.AssigneeID.Value != nil {
			if err := checkAssignee(ctx, s.store, project, *in.AssigneeID.Value); err != nil {
				return nil, err
			}
		}
		task.AssigneeID = in.AssigneeID.Value
	}
	if in.Order != nil {
		task.Order = *in.Order
	}

	if err := s.store.Tasks().Update(ctx, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	if from != task.Status {
		s.metrics.RecordTaskMoved(string(from), string(task.Status))
		invalidateDashboard(ctx, s.cache, project.OwnerID)
	}
	return s.reload(ctx, task.ID)
}

// UpdateStatus moves a card. Concurrent moves are not reconciled: the last write wins.
func (s *taskService) UpdateStatus(ctx context.Context, userID, taskID uuid.UUID, status model.TaskStatus, order *float64) (*model.Task, error) {
	if !status.Valid() {
		return nil, errors.Validation("status must be one of TODO, DOING, DONE")
	}

	task, err := s.authorizeTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if err := s.store.Tasks().UpdateStatus(ctx, taskID, status, order); err != nil {
		return nil, fmt.Errorf("update task status: %w", err)
	}

	s.metrics.RecordTaskMoved(string(task.Status), string(status))
	invalidateDashboard(ctx, s.cache, task.Project.OwnerID)

	return s.reload(ctx, taskID)
}

// Delete removes a task. Deleting an already deleted task yields ErrTaskNotFound.
func (s *taskService) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	task, err := s.authorizeTask(ctx, userID, taskID)
	if err != nil {
		return err
	}

	if err := s.store.Tasks().Delete(ctx, taskID); err != nil {
		if isNotFound(err) {
			return errors.ErrTaskNotFound
		}
		return fmt.Errorf("delete task: %w", err)
	}

	invalidateDashboard(ctx, s.cache, task.Project.OwnerID)
	return nil
}

// authorizeTask loads a task and checks READ on its project. Both a missing
// task and a project the caller cannot see yield ErrTaskNotFound.
func (s *taskService) authorizeTask(ctx context.Context, userID, taskID uuid.UUID) (*model.Task, error) {
	task, err := s.store.Tasks().FindByID(ctx, taskID)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}

	project, _, err := authorizeProject(ctx, s.store, userID, task.ProjectID)
	if err != nil {
		if err == errors.ErrProjectNotFound {
			return nil, errors.ErrTaskNotFound
		}
		return nil, err
	}
	task.Project = project
	return task, nil
}

func (s *taskService) reload(ctx context.Context, taskID uuid.UUID) (*model.Task, error) {
	task, err := s.store.Tasks().FindByID(ctx, taskID)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.ErrTaskNotFound
		}
		return nil, fmt.Errorf("reload task: %w", err)
	}
	return task, nil
}

// checkAssignee ensures the assignee can see the project.
func checkAssignee(ctx context.Context, store repository.Store, project *model.Project, assigneeID uuid.UUID) error {
	if project.OwnerID == assigneeID {
		return nil
	}
	if _, err := store.Members().Find(ctx, project.ID, assigneeID); err != nil {
		if isNotFound(err) {
			return errors.Validation("assignee must be a member of the project")
		}
		return fmt.Errorf("find assignee membership: %w", err)
	}
	return nil
}
