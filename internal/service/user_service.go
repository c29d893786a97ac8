package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"flowspace/internal/cache"
	"flowspace/internal/errors"
	"flowspace/internal/model"
	"flowspace/internal/repository"
)

const (
	profileCacheTTL  = 5 * time.Minute
	searchResultsCap = 10
)

// UpdateProfileInput is a partial profile update; nil fields are left unchanged
// and blank strings clear the field.
type UpdateProfileInput struct {
	Name     *string
	Avatar   *string
	Position *string
	Bio      *string
}

// UserService handles profile and user lookup operations.
type UserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*model.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, in UpdateProfileInput) (*model.User, error)
	Search(ctx context.Context, userID uuid.UUID, email, name string) ([]model.User, error)
}

type userService struct {
	repo  repository.UserRepository
	cache *cache.Client
}

// NewUserService creates a new user service.
func NewUserService(repo repository.UserRepository, cache *cache.Client) UserService {
	return &userService{
		repo:  repo,
		cache: cache,
	}
}

func (s *userService) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("user:profile:%s", id.String())
}

// GetProfile retrieves a user by ID with caching.
func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	var cached model.User
	if s.cache.GetJSON(ctx, s.cacheKey(userID), &cached) {
		return &cached, nil
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	s.cache.SetJSON(ctx, s.cacheKey(userID), user, profileCacheTTL)
	return user, nil
}

// UpdateProfile changes name, avatar, position or bio.
func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, in UpdateProfileInput) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if in.Name != nil {
		user.Name = trimmedPtr(in.Name)
	}
	if in.Avatar != nil {
		user.Avatar = trimmedPtr(in.Avatar)
	}
	if in.Position != nil {
		user.Position = trimmedPtr(in.Position)
	}
	if in.Bio != nil {
		user.Bio = trimmedPtr(in.Bio)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	_ = s.cache.Delete(ctx, s.cacheKey(userID))
	return user, nil
}

// Search finds up to ten other users whose email or name contains the query.
func (s *userService) Search(ctx context.Context, userID uuid.UUID, email, name string) ([]model.User, error) {
	email, name = strings.TrimSpace(email), strings.TrimSpace(name)
	if email == "" && name == "" {
		return nil, errors.Validation("provide email or name to search")
	}

	users, err := s.repo.Search(ctx, repository.UserSearch{
		Email:     email,
		Name:      name,
		ExcludeID: userID,
		Limit:     searchResultsCap,
	})
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return users, nil
}
