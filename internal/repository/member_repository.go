package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"flowspace/internal/model"
)

// MemberRepository defines membership persistence operations.
type MemberRepository interface {
	Create(ctx context.Context, member *model.Member) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Member, error)
	Find(ctx context.Context, projectID, userID uuid.UUID) (*model.Member, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.Member, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Member, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role model.MemberRole) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByProject(ctx context.Context, projectID uuid.UUID) error
}

type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new member repository.
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

// Create creates a new membership.
func (r *memberRepository) Create(ctx context.Context, member *model.Member) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(member).Error
}

// FindByID finds a membership by ID with its user loaded.
func (r *memberRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Member, error) {
	var member model.Member
	if err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// Find returns the membership of userID in projectID.
func (r *memberRepository) Find(ctx context.Context, projectID, userID uuid.UUID) (*model.Member, error) {
	var member model.Member
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// ListByProject lists the project's members, oldest first.
func (r *memberRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.Member, error) {
	var members []model.Member
	err := r.db.WithContext(ctx).Preload("User").
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// ListByUser lists the user's memberships with project and owner loaded, newest first.
func (r *memberRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Member, error) {
	var members []model.Member
	err := r.db.WithContext(ctx).Preload("Project.Owner").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// UpdateRole changes a membership role.
func (r *memberRepository) UpdateRole(ctx context.Context, id uuid.UUID, role model.MemberRole) error {
	return r.db.WithContext(ctx).Model(&model.Member{}).
		Where("id = ?", id).
		Update("role", role).Error
}

// Delete removes a membership.
func (r *memberRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Member{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteByProject removes every membership of a project.
func (r *memberRepository) DeleteByProject(ctx context.Context, projectID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&model.Member{}).Error
}
