package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"flowspace/internal/metrics"
	"flowspace/internal/model"
	"flowspace/internal/repository"
	"flowspace/internal/testutil"
)

type fixture struct {
	db        *gorm.DB
	store     repository.Store
	projects  ProjectService
	tasks     TaskService
	members   MemberService
	reports   ReportService
	users     UserService
	dashboard DashboardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gormDB := testutil.NewDB(t)
	store := repository.NewStore(gormDB)
	rec := metrics.Nop{}
	return &fixture{
		db:        gormDB,
		store:     store,
		projects:  NewProjectService(store, nil, rec),
		tasks:     NewTaskService(store, nil, rec),
		members:   NewMemberService(store, rec),
		reports:   NewReportService(store, rec),
		users:     NewUserService(store.Users(), nil),
		dashboard: NewDashboardService(store, nil),
	}
}

func (f *fixture) user(t *testing.T, email string) *model.User {
	t.Helper()
	name := email
	u := &model.User{Email: email, PasswordHash: "x", Name: &name}
	require.NoError(t, f.store.Users().Create(context.Background(), u))
	return u
}

func (f *fixture) project(t *testing.T, owner *model.User, name string) *model.Project {
	t.Helper()
	p, err := f.projects.Create(context.Background(), owner.ID, CreateProjectInput{Name: name})
	require.NoError(t, err)
	return p
}

func (f *fixture) addMember(t *testing.T, owner *model.User, project *model.Project, user *model.User) *model.Member {
	t.Helper()
	m, err := f.members.Add(context.Background(), owner.ID, project.ID, AddMemberInput{UserID: &user.ID})
	require.NoError(t, err)
	return m
}

func ptr[T any](v T) *T {
	return &v
}

var errInjected = errors.New("injected failure")

// failWrites makes every create or delete statement against table fail until the test ends.
func (f *fixture) failWrites(t *testing.T, op, table string) {
	t.Helper()
	name := "test:fail_" + op + "_" + table
	fail := func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			_ = tx.AddError(errInjected)
		}
	}

	switch op {
	case "create":
		require.NoError(t, f.db.Callback().Create().Before("gorm:create").Register(name, fail))
		t.Cleanup(func() { _ = f.db.Callback().Create().Remove(name) })
	case "delete":
		require.NoError(t, f.db.Callback().Delete().Before("gorm:delete").Register(name, fail))
		t.Cleanup(func() { _ = f.db.Callback().Delete().Remove(name) })
	default:
		t.Fatalf("unsupported op %q", op)
	}
}
