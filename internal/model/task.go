package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskStatus is the Kanban column a task sits in.
type TaskStatus string

const (
	TaskStatusTodo  TaskStatus = "TODO"
	TaskStatusDoing TaskStatus = "DOING"
	TaskStatusDone  TaskStatus = "DONE"
)

// TaskStatuses lists the columns in board order.
var TaskStatuses = []TaskStatus{TaskStatusTodo, TaskStatusDoing, TaskStatusDone}

// Valid reports whether s is a known column.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusDoing, TaskStatusDone:
		return true
	}
	return false
}

// TaskPriority ranks a task.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
)

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is a Kanban card. Order sorts cards inside their status column.
type Task struct {
	ID          uuid.UUID    `json:"id" gorm:"type:char(36);primaryKey"`
	Title       string       `json:"title" gorm:"size:255;not null"`
	Description *string      `json:"description" gorm:"type:text"`
	Status      TaskStatus   `json:"status" gorm:"size:16;not null;default:'TODO';index:idx_task_project_status"`
	Priority    TaskPriority `json:"priority" gorm:"size:16;not null;default:'MEDIUM'"`
	DueDate     *time.Time   `json:"dueDate"`
	Order       float64      `json:"order" gorm:"column:sort_order;not null;default:0"`
	ProjectID   uuid.UUID    `json:"projectId" gorm:"type:char(36);not null;index:idx_task_project_status"`
	AssigneeID  *uuid.UUID   `json:"assigneeId" gorm:"type:char(36);index"`
	CreatorID   uuid.UUID    `json:"creatorId" gorm:"type:char(36);not null"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`

	// Relations
	Project  *Project `json:"project,omitempty" gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Assignee *User    `json:"assignee,omitempty" gorm:"foreignKey:AssigneeID;constraint:OnDelete:SET NULL"`
	Creator  *User    `json:"creator,omitempty" gorm:"foreignKey:CreatorID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate sets UUID and enum defaults before creating the record.
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Status == "" {
		t.Status = TaskStatusTodo
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	return nil
}
