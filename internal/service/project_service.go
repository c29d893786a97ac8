package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"flowspace/internal/cache"
	"flowspace/internal/errors"
	"flowspace/internal/metrics"
	"flowspace/internal/model"
	"flowspace/internal/repository"
)

// CreateProjectInput holds the fields accepted when creating a project.
type CreateProjectInput struct {
	Name        string
	Description *string
	Color       *string
}

// UpdateProjectInput is a partial update; nil fields are left unchanged.
type UpdateProjectInput struct {
	Name        *string
	Description *string
	Color       *string
}

// ProjectService handles project operations.
type ProjectService interface {
	Create(ctx context.Context, ownerID uuid.UUID, in CreateProjectInput) (*model.Project, error)
	List(ctx context.Context, userID uuid.UUID) ([]model.Project, error)
	Get(ctx context.Context, userID, projectID uuid.UUID) (*model.Project, error)
	Update(ctx context.Context, userID, projectID uuid.UUID, in UpdateProjectInput) (*model.Project, error)
	Delete(ctx context.Context, userID, projectID uuid.UUID) error
}

type projectService struct {
	store   repository.Store
	cache   *cache.Client
	metrics metrics.Recorder
}

// NewProjectService creates a new project service.
func NewProjectService(store repository.Store, cache *cache.Client, recorder metrics.Recorder) ProjectService {
	return &projectService{
		store:   store,
		cache:   cache,
		metrics: recorder,
	}
}

// Create stores a project together with the owner's OWNER membership.
func (s *projectService) Create(ctx context.Context, ownerID uuid.UUID, in CreateProjectInput) (*model.Project, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, errors.Validation("project name is required")
	}

	project := &model.Project{
		Name:        name,
		Description: trimmedPtr(in.Description),
		Color:       model.DefaultProjectColor,
		OwnerID:     ownerID,
	}
	if in.Color != nil && strings.TrimSpace(*in.Color) != "" {
		color := strings.TrimSpace(*in.Color)
		if !isHexColor(color) {
			return nil, errors.Validation("color must be a hex color such as #3b82f6")
		}
		project.Color = color
	}

	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if err := tx.Projects().Create(ctx, project); err != nil {
			return fmt.Errorf("create project: %w", err)
		}
		owner := &model.Member{
			UserID:    ownerID,
			ProjectID: project.ID,
			Role:      model.RoleOwner,
		}
		if err := tx.Members().Create(ctx, owner); err != nil {
			return fmt.Errorf("create owner membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordCreated("project")
	invalidateDashboard(ctx, s.cache, ownerID)

	return s.Get(ctx, ownerID, project.ID)
}

// List lists the projects the user owns or belongs to.
func (s *projectService) List(ctx context.Context, userID uuid.UUID) ([]model.Project, error) {
	projects, err := s.store.Projects().ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// Get returns a project with its members and tasks in board order.
func (s *projectService) Get(ctx context.Context, userID, projectID uuid.UUID) (*model.Project, error) {
	project, _, err := authorizeProject(ctx, s.store, userID, projectID)
	if err != nil {
		return nil, err
	}

	tasks, err := s.store.Tasks().ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	members, err := s.store.Members().ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	taskCount, memberCount := int64(len(tasks)), int64(len(members))
	project.Tasks = tasks
	project.Members = members
	project.TaskCount = &taskCount
	project.MemberCount = &memberCount
	return project, nil
}

// Update changes name, description or color. Only the owner may update.
func (s *projectService) Update(ctx context.Context, userID, projectID uuid.UUID, in UpdateProjectInput) (*model.Project, error) {
	project, err := requireWrite(ctx, s.store, userID, projectID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, errors.Validation("project name cannot be empty")
		}
		project.Name = name
	}
	if in.Description != nil {
		project.Description = trimmedPtr(in.Description)
	}
	if in.Color != nil {
		color := strings.TrimSpace(*in.Color)
		if !isHexColor(color) {
			return nil, errors.Validation("color must be a hex color such as #3b82f6")
		}
		project.Color = color
	}

	if err := s.store.Projects().Update(ctx, project); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return project, nil
}

// Delete removes the project with its reports, tasks and memberships in one transaction.
func (s *projectService) Delete(ctx context.Context, userID, projectID uuid.UUID) error {
	project, err := requireWrite(ctx, s.store, userID, projectID)
	if err != nil {
		return err
	}

	err = s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if err := tx.Reports().DeleteByProject(ctx, projectID); err != nil {
			return fmt.Errorf("delete reports: %w", err)
		}
		if err := tx.Tasks().DeleteByProject(ctx, projectID); err != nil {
			return fmt.Errorf("delete tasks: %w", err)
		}
		if err := tx.Members().DeleteByProject(ctx, projectID); err != nil {
			return fmt.Errorf("delete members: %w", err)
		}
		if err := tx.Projects().Delete(ctx, projectID); err != nil {
			if isNotFound(err) {
				return errors.ErrProjectNotFound
			}
			return fmt.Errorf("delete project: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	invalidateDashboard(ctx, s.cache, project.OwnerID)
	return nil
}
