package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"flowspace/internal/model"
	"flowspace/internal/service"
)

// TaskHandler handles task and board endpoints.
type TaskHandler struct {
	taskService service.TaskService
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// CreateTaskRequest represents a task creation request.
type CreateTaskRequest struct {
	Title       string             `json:"title" validate:"required,max=255"`
	Description *string            `json:"description"`
	Priority    model.TaskPriority `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	Status      model.TaskStatus   `json:"status" validate:"omitempty,oneof=TODO DOING DONE"`
	DueDate     *string            `json:"dueDate"`
	AssigneeID  *uuid.UUID         `json:"assigneeId"`
}

// UpdateTaskRequest represents a partial task update. dueDate and assigneeId
// accept an explicit null to clear the field.
type UpdateTaskRequest struct {
	Title       *string                     `json:"title" validate:"omitempty,max=255"`
	Description *string                     `json:"description"`
	Priority    *model.TaskPriority         `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	Status      *model.TaskStatus           `json:"status" validate:"omitempty,oneof=TODO DOING DONE"`
	DueDate     service.Nullable[string]    `json:"dueDate" swaggertype:"string"`
	AssigneeID  service.Nullable[uuid.UUID] `json:"assigneeId" swaggertype:"string"`
	Order       *float64                    `json:"order"`
}

// UpdateTaskStatusRequest moves a card to a column and position.
type UpdateTaskStatusRequest struct {
	Status model.TaskStatus `json:"status" validate:"required,oneof=TODO DOING DONE"`
	Order  *float64         `json:"order"`
}

// dueDateLayouts are accepted for dueDate, most specific first.
var dueDateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04", "2006-01-02"}

func parseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, badRequest("dueDate must be an ISO-8601 date")
}

// ListTasks godoc
// @Summary List a project's tasks grouped by status
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param projectId path string true "Project ID"
// @Success 200 {object} Response{data=service.TaskBoard}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tasks/projects/{projectId}/tasks [get]
func (h *TaskHandler) ListTasks(c echo.Context) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}
	projectID, err := pathID(c, "projectId")
	if err != nil {
		return err
	}

	board, err := h.taskService.List(c.Request().Context(), id.UserID, projectID)
	if err != nil {
		return fail(err)
	}
	return respond(c, http.StatusOK, "", board)
}

// CreateTask godoc
// @Summary Create a task at the bottom of its column
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param projectId path string true "Project ID"
// @Param request body CreateTaskRequest true "Task data"
// @Success 201 {object} Response{data=model.Task}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tasks/projects/{projectId}/tasks [post]
func (h *TaskHandler) CreateTask(c echo.Context) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}
	projectID, err := pathID(c, "projectId")
	if err != nil {
		return err
	}

	var req CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(err.Error())
	}

	in := service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		AssigneeID:  req.AssigneeID,
	}
	if req.DueDate != nil {
		if in.DueDate, err = parseDueDate(*req.DueDate); err != nil {
			return err
		}
	}

	task, err := h.taskService.Create(c.Request().Context(), id.UserID, projectID, in)
	if err != nil {
		return fail(err)
	}
	return respond(c, http.StatusCreated, "task created", task)
}

// GetTask godoc
// @Summary Get a task
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Success 200 {object} Response{data=model.Task}
// @Failure 404 {object} errors.ErrorResponse
// @Router /tasks/{id} [get]
func (h *TaskHandler) GetTask(c echo.Context) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}
	taskID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	task, err := h.taskService.Get(c.Request().Context(), id.UserID, taskID)
	if err != nil {
		return fail(err)
	}
	return respond(c, http.StatusOK, "", task)
}

// UpdateTask godoc
// @Summary Update a task
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Param request body UpdateTaskRequest true "Fields to change"
// @Success 200 {object} Response{data=model.Task}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tasks/{id} [put]
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}
	taskID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(err.Error())
	}

	in := service.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		AssigneeID:  req.AssigneeID,
		Order:       req.Order,
	}
	if req.DueDate.Set {
		in.DueDate = service.Null[time.Time]()
		if req.DueDate.Value != nil {
			due, err := parseDueDate(*req.DueDate.Value)
			if err != nil {
				return err
			}
			in.DueDate.Value = due
		}
	}

	task, err := h.taskService.Update(c.Request().Context(), id.UserID, taskID, in)
	if err != nil {
		return fail(err)
	}
	return respond(c, http.StatusOK, "task updated", task)
}

// UpdateTaskStatus godoc
// @Summary Move a task to a column
// @Description Sets status and, when given, the order within the column.
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Param request body UpdateTaskStatusRequest true "Target column and order"
// @Success 200 {object} Response{data=model.Task}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tasks/{id}/status [patch]
func (h *TaskHandler) UpdateTaskStatus(c echo.Context) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}
	taskID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req UpdateTaskStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(err.Error())
	}

	task, err := h.taskService.UpdateStatus(c.Request().Context(), id.UserID, taskID, req.Status, req.Order)
	if err != nil {
		return fail(err)
	}
	return respond(c, http.StatusOK, "task moved", task)
}

// DeleteTask godoc
// @Summary Delete a task
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Success 200 {object} Response
// @Failure 404 {object} errors.ErrorResponse
// @Router /tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}
	taskID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.taskService.Delete(c.Request().Context(), id.UserID, taskID); err != nil {
		return fail(err)
	}
	return respond(c, http.StatusOK, "task deleted", nil)
}
