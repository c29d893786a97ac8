package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"flowspace/internal/model"
)

// TaskRepository defines task persistence operations.
type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	Update(ctx context.Context, task *model.Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.Task, error)
	MaxOrder(ctx context.Context, projectID uuid.UUID, status model.TaskStatus) (float64, bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.TaskStatus, order *float64) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByProject(ctx context.Context, projectID uuid.UUID) error
	CountByStatusForOwner(ctx context.Context, ownerID uuid.UUID) (map[model.TaskStatus]int64, error)
}

// boardOrder sorts tasks by column, then position, newest first on ties.
const boardOrder = "CASE status WHEN 'TODO' THEN 0 WHEN 'DOING' THEN 1 WHEN 'DONE' THEN 2 ELSE 3 END ASC, sort_order ASC, created_at DESC"

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new task repository.
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

// Create creates a new task.
func (r *taskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error
}

// Update saves every column of an existing task.
func (r *taskRepository) Update(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(task).Error
}

// FindByID finds a task by ID with project, assignee and creator loaded.
func (r *taskRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).
		Preload("Project").Preload("Assignee").Preload("Creator").
		Where("id = ?", id).
		First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// ListByProject lists a project's tasks in board order.
func (r *taskRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Preload("Assignee").Preload("Creator").
		Where("project_id = ?", projectID).
		Order(boardOrder).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// MaxOrder returns the highest order in a column. The bool is false when the column is empty.
// On MySQL the read locks the column's rows, so of two concurrent creates the second
// waits for the first to commit and reads its order.
func (r *taskRepository) MaxOrder(ctx context.Context, projectID uuid.UUID, status model.TaskStatus) (float64, bool, error) {
	var last sql.NullFloat64
	err := r.maxOrderQuery(ctx, projectID, status).Row().Scan(&last)
	if err != nil {
		return 0, false, err
	}
	return last.Float64, last.Valid, nil
}

func (r *taskRepository) maxOrderQuery(ctx context.Context, projectID uuid.UUID, status model.TaskStatus) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Task{}).
		Select("MAX(sort_order)").
		Where("project_id = ? AND status = ?", projectID, status)
	// SQLite serializes writers and has no row locks.
	if r.db.Dialector.Name() == "mysql" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

// UpdateStatus moves a task to a column and, when order is set, to a position.
func (r *taskRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.TaskStatus, order *float64) error {
	updates := map[string]interface{}{"status": status}
	if order != nil {
		updates["sort_order"] = *order
	}
	return r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", id).Updates(updates).Error
}

// Delete removes a task.
func (r *taskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Task{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteByProject removes every task of a project.
func (r *taskRepository) DeleteByProject(ctx context.Context, projectID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&model.Task{}).Error
}

// CountByStatusForOwner counts tasks per column across projects owned by ownerID.
func (r *taskRepository) CountByStatusForOwner(ctx context.Context, ownerID uuid.UUID) (map[model.TaskStatus]int64, error) {
	var rows []struct {
		Status model.TaskStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Select("tasks.status AS status, COUNT(*) AS count").
		Joins("JOIN projects ON projects.id = tasks.project_id").
		Where("projects.owner_id = ?", ownerID).
		Group("tasks.status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[model.TaskStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
