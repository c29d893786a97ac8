package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"flowspace/internal/errors"
	"flowspace/internal/metrics"
	"flowspace/internal/model"
	"flowspace/internal/repository"
)

// CreateReportInput holds the fields accepted when creating a report.
type CreateReportInput struct {
	Title     string
	Content   string
	Type      model.ReportType
	Status    model.ReportStatus
	ProjectID uuid.UUID
	Tags      []string
}

// UpdateReportInput is a partial update; nil fields are left unchanged.
type UpdateReportInput struct {
	Title   *string
	Content *string
	Type    *model.ReportType
	Status  *model.ReportStatus
	Tags    *[]string
}

// ReportListFilter narrows List. Zero values match everything the caller can read.
type ReportListFilter struct {
	ProjectID *uuid.UUID
	Type      model.ReportType
	Status    model.ReportStatus
}

// ReportService handles report operations. Reports follow the access rules of their project.
type ReportService interface {
	List(ctx context.Context, userID uuid.UUID, filter ReportListFilter) ([]model.Report, error)
	Get(ctx context.Context, userID, reportID uuid.UUID) (*model.Report, error)
	Create(ctx context.Context, userID uuid.UUID, in CreateReportInput) (*model.Report, error)
	Update(ctx context.Context, userID, reportID uuid.UUID, in UpdateReportInput) (*model.Report, error)
	Delete(ctx context.Context, userID, reportID uuid.UUID) error
}

type reportService struct {
	store   repository.Store
	metrics metrics.Recorder
}

// NewReportService creates a new report service.
func NewReportService(store repository.Store, recorder metrics.Recorder) ReportService {
	return &reportService{store: store, metrics: recorder}
}

// List lists reports in projects the caller can read.
func (s *reportService) List(ctx context.Context, userID uuid.UUID, filter ReportListFilter) ([]model.Report, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, errors.Validation("unknown report type")
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, errors.Validation("unknown report status")
	}

	var projectIDs []uuid.UUID
	if filter.ProjectID != nil {
		if _, _, err := authorizeProject(ctx, s.store, userID, *filter.ProjectID); err != nil {
			return nil, err
		}
		projectIDs = []uuid.UUID{*filter.ProjectID}
	} else {
		ids, err := s.store.Projects().AccessibleIDs(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("list accessible projects: %w", err)
		}
		projectIDs = ids
	}

	reports, err := s.store.Reports().List(ctx, repository.ReportFilter{
		ProjectIDs: projectIDs,
		Type:       filter.Type,
		Status:     filter.Status,
	})
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

// Get returns a report the caller can read.
func (s *reportService) Get(ctx context.Context, userID, reportID uuid.UUID) (*model.Report, error) {
	return s.authorizeReport(ctx, userID, reportID)
}

// Create stores a report in a project the caller can read.
func (s *reportService) Create(ctx context.Context, userID uuid.UUID, in CreateReportInput) (*model.Report, error) {
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	if title == "" || content == "" || in.ProjectID == uuid.Nil {
		return nil, errors.Validation("title, content and projectId are required")
	}
	if in.Type != "" && !in.Type.Valid() {
		return nil, errors.Validation("type must be one of note, report, comment, review")
	}
	if in.Status != "" && !in.Status.Valid() {
		return nil, errors.Validation("status must be one of draft, published, archived")
	}

	if _, _, err := authorizeProject(ctx, s.store, userID, in.ProjectID); err != nil {
		return nil, err
	}

	report := &model.Report{
		Title:     title,
		Content:   content,
		Type:      in.Type,
		Status:    in.Status,
		ProjectID: in.ProjectID,
		AuthorID:  userID,
		Tags:      cleanTags(in.Tags),
	}
	if err := s.store.Reports().Create(ctx, report); err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}

	s.metrics.RecordCreated("report")
	return s.store.Reports().FindByID(ctx, report.ID)
}

// Update applies a partial update to a report.
func (s *reportService) Update(ctx context.Context, userID, reportID uuid.UUID, in UpdateReportInput) (*model.Report, error) {
	report, err := s.authorizeReport(ctx, userID, reportID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, errors.Validation("title cannot be empty")
		}
		report.Title = title
	}
	if in.Content != nil {
		content := strings.TrimSpace(*in.Content)
		if content == "" {
			return nil, errors.Validation("content cannot be empty")
		}
		report.Content = content
	}
	if in.Type != nil {
		if !in.Type.Valid() {
			return nil, errors.Validation("type must be one of note, report, comment, review")
		}
		report.Type = *in.Type
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, errors.Validation("status must be one of draft, published, archived")
		}
		report.Status = *in.Status
	}
	if in.Tags != nil {
		report.Tags = cleanTags(*in.Tags)
	}

	if err := s.store.Reports().Update(ctx, report); err != nil {
		return nil, fmt.Errorf("update report: %w", err)
	}
	return report, nil
}

// Delete removes a report.
func (s *reportService) Delete(ctx context.Context, userID, reportID uuid.UUID) error {
	if _, err := s.authorizeReport(ctx, userID, reportID); err != nil {
		return err
	}
	if err := s.store.Reports().Delete(ctx, reportID); err != nil {
		if isNotFound(err) {
			return errors.ErrReportNotFound
		}
		return fmt.Errorf("delete report: %w", err)
	}
	return nil
}

func (s *reportService) authorizeReport(ctx context.Context, userID, reportID uuid.UUID) (*model.Report, error) {
	report, err := s.store.Reports().FindByID(ctx, reportID)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.ErrReportNotFound
		}
		return nil, fmt.Errorf("find report: %w", err)
	}
	if _, _, err := authorizeProject(ctx, s.store, userID, report.ProjectID); err != nil {
		if err == errors.ErrProjectNotFound {
			return nil, errors.ErrReportNotFound
		}
		return nil, err
	}
	return report, nil
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
