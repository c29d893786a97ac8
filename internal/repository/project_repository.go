package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"flowspace/internal/model"
)

// ProjectRepository defines project persistence operations.
type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	Update(ctx context.Context, project *model.Project) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Project, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Project, error)
	AccessibleIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	CountOwned(ctx context.Context, ownerID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

const projectCountColumns = "projects.*, " +
	"(SELECT COUNT(*) FROM tasks WHERE tasks.project_id = projects.id) AS task_count, " +
	"(SELECT COUNT(*) FROM members WHERE members.project_id = projects.id) AS member_count"

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new project repository.
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

// Create creates a new project.
func (r *projectRepository) Create(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(project).Error
}

// Update updates an existing project.
func (r *projectRepository) Update(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(project).Error
}

// FindByID finds a project by ID with its owner loaded.
func (r *projectRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	if err := r.db.WithContext(ctx).Preload("Owner").Where("id = ?", id).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// ListForUser lists projects the user owns or is a member of, newest first,
// with task and member counts.
func (r *projectRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Project, error) {
	var projects []model.Project
	err := r.db.WithContext(ctx).Model(&model.Project{}).
		Select(projectCountColumns).
		Where("projects.owner_id = ? OR projects.id IN (?)", userID, r.memberProjectIDs(userID)).
		Preload("Owner").
		Order("projects.created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// AccessibleIDs returns the ids of projects the user owns or is a member of.
func (r *projectRepository) AccessibleIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.Project{}).
		Where("owner_id = ? OR id IN (?)", userID, r.memberProjectIDs(userID)).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// CountOwned counts projects owned by the user.
func (r *projectRepository) CountOwned(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Project{}).Where("owner_id = ?", ownerID).Count(&count).Error
	return count, err
}

// Delete removes the project row. Dependent rows must be removed first in the same transaction.
func (r *projectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Project{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *projectRepository) memberProjectIDs(userID uuid.UUID) *gorm.DB {
	return r.db.Model(&model.Member{}).Select("project_id").Where("user_id = ?", userID)
}
