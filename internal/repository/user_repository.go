package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"flowspace/internal/model"
)

// UserRepository defines user persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Search(ctx context.Context, filter UserSearch) ([]model.User, error)
}

// UserSearch filters users by case-insensitive substring on email or name.
type UserSearch struct {
	Email     string
	Name      string
	ExcludeID uuid.UUID
	Limit     int
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user.
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// Update updates an existing user.
func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(user).Error
}

// FindByID finds a user by ID.
func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email, ignoring case.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("LOWER(email) = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Search lists users matching either filter, excluding ExcludeID.
func (r *userRepository) Search(ctx context.Context, filter UserSearch) ([]model.User, error) {
	q := r.db.WithContext(ctx).Model(&model.User{})
	if filter.ExcludeID != uuid.Nil {
		q = q.Where("id <> ?", filter.ExcludeID)
	}

	match := r.db.Where("1 = 0")
	if filter.Email != "" {
		match = match.Or("LOWER(email) LIKE ? ESCAPE '!'", containsPattern(filter.Email))
	}
	if filter.Name != "" {
		match = match.Or("LOWER(name) LIKE ? ESCAPE '!'", containsPattern(filter.Name))
	}
	q = q.Where(match)

	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var users []model.User
	if err := q.Order("email ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// likeEscaper escapes LIKE metacharacters with '!', which reads the same in MySQL and SQLite literals.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// containsPattern builds a lower-cased LIKE pattern matching s literally as a substring.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
