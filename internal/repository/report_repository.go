package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"flowspace/internal/model"
)

// ReportRepository defines report persistence operations.
type ReportRepository interface {
	Create(ctx context.Context, report *model.Report) error
	Update(ctx context.Context, report *model.Report) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Report, error)
	List(ctx context.Context, filter ReportFilter) ([]model.Report, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByProject(ctx context.Context, projectID uuid.UUID) error
}

// ReportFilter restricts List. ProjectIDs is mandatory; an empty slice yields no rows.
type ReportFilter struct {
	ProjectIDs []uuid.UUID
	Type       model.ReportType
	Status     model.ReportStatus
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository.
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

// Create creates a new report.
func (r *reportRepository) Create(ctx context.Context, report *model.Report) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(report).Error
}

// Update saves every column of an existing report.
func (r *reportRepository) Update(ctx context.Context, report *model.Report) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(report).Error
}

// FindByID finds a report by ID with project and author loaded.
func (r *reportRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	var report model.Report
	err := r.db.WithContext(ctx).
		Preload("Project").Preload("Author").
		Where("id = ?", id).
		First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// List lists reports matching the filter, newest first.
func (r *reportRepository) List(ctx context.Context, filter ReportFilter) ([]model.Report, error) {
	if len(filter.ProjectIDs) == 0 {
		return []model.Report{}, nil
	}

	q := r.db.WithContext(ctx).
		Preload("Project").Preload("Author").
		Where("project_id IN ?", filter.ProjectIDs)
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var reports []model.Report
	if err := q.Order("created_at DESC").Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

// Delete removes a report.
func (r *reportRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Report{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteByProject removes every report of a project.
func (r *reportRepository) DeleteByProject(ctx context.Context, projectID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&model.Report{}).Error
}
