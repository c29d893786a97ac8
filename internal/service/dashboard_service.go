package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"flowspace/internal/cache"
	"flowspace/internal/model"
	"flowspace/internal/repository"
)

const dashboardCacheTTL = 30 * time.Second

// DashboardStats summarizes the projects a user owns.
type DashboardStats struct {
	TotalProjects  int64                      `json:"totalProjects"`
	ActiveTasks    int64                      `json:"activeTasks"`
	CompletedTasks int64                      `json:"completedTasks"`
	TotalTasks     int64                      `json:"totalTasks"`
	ByStatus       map[model.TaskStatus]int64 `json:"byStatus"`
}

// DashboardService computes dashboard statistics.
type DashboardService interface {
	Stats(ctx context.Context, userID uuid.UUID) (*DashboardStats, error)
}

type dashboardService struct {
	store repository.Store
	cache *cache.Client
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(store repository.Store, cache *cache.Client) DashboardService {
	return &dashboardService{store: store, cache: cache}
}

// Stats counts owned projects and their tasks by column.
func (s *dashboardService) Stats(ctx context.Context, userID uuid.UUID) (*DashboardStats, error) {
	var cached DashboardStats
	if s.cache.GetJSON(ctx, dashboardCacheKey(userID), &cached) {
		return &cached, nil
	}

	total, err := s.store.Projects().CountOwned(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count projects: %w", err)
	}
	byStatus, err := s.store.Tasks().CountByStatusForOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}

	stats := &DashboardStats{
		TotalProjects: total,
		ByStatus:      make(map[model.TaskStatus]int64, len(model.TaskStatuses)),
	}
	for _, status := range model.TaskStatuses {
		n := byStatus[status]
		stats.ByStatus[status] = n
		stats.TotalTasks += n
		if status == model.TaskStatusDone {
			stats.CompletedTasks += n
		} else {
			stats.ActiveTasks += n
		}
	}

	s.cache.SetJSON(ctx, dashboardCacheKey(userID), stats, dashboardCacheTTL)
	return stats, nil
}

func dashboardCacheKey(userID uuid.UUID) string {
	return fmt.Sprintf("dashboard:stats:%s", userID.String())
}

// invalidateDashboard drops the cached stats of a project owner after a write.
func invalidateDashboard(ctx context.Context, c *cache.Client, ownerID uuid.UUID) {
	_ = c.Delete(ctx, dashboardCacheKey(ownerID))
}
