package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories that share one database handle.
type Store interface {
	Users() UserRepository
	Projects() ProjectRepository
	Members() MemberRepository
	Tasks() TaskRepository
	Reports() ReportRepository
	// WithTransaction executes fn within a database transaction. Every repository
	// obtained from the Store passed to fn participates in that transaction.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

type store struct {
	db       *gorm.DB
	users    UserRepository
	projects ProjectRepository
	members  MemberRepository
	tasks    TaskRepository
	reports  ReportRepository
}

// NewStore creates a store bound to db.
func NewStore(db *gorm.DB) Store {
	return &store{
		db:       db,
		users:    NewUserRepository(db),
		projects: NewProjectRepository(db),
		members:  NewMemberRepository(db),
		tasks:    NewTaskRepository(db),
		reports:  NewReportRepository(db),
	}
}

func (s *store) Users() UserRepository       { return s.users }
func (s *store) Projects() ProjectRepository { return s.projects }
func (s *store) Members() MemberRepository   { return s.members }
func (s *store) Tasks() TaskRepository       { return s.tasks }
func (s *store) Reports() ReportRepository   { return s.reports }

// WithTransaction executes a function within a database transaction.
func (s *store) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewStore(tx))
	})
}
