package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "flowspace/internal/errors"
	"flowspace/internal/model"
)

func TestUserService_Search(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@x.com")
	f.user(t, "alex@y.com")
	f.user(t, "bob@x.com")

	users, err := f.users.Search(ctx, alice.ID, "AL", "")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alex@y.com", users[0].Email)

	users, err = f.users.Search(ctx, alice.ID, "", "bob")
	require.NoError(t, err)
	require.Len(t, users, 1)

	users, err = f.users.Search(ctx, alice.ID, "@x.com", "alex")
	require.NoError(t, err)
	assert.Len(t, users, 2)

	_, err = f.users.Search(ctx, alice.ID, " ", "")
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestUserService_SearchMatchesWildcardsLiterally(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@x.com")
	f.user(t, "bob@y.org")
	f.user(t, "carol@z.net")
	f.user(t, "dev_ops!@team.com")
	f.user(t, "devXops@team.com")

	tests := []struct {
		name     string
		email    string
		userName string
		expected []string
	}{
		{name: "percent", email: "%", expected: nil},
		{name: "underscore", email: "_", expected: []string{"dev_ops!@team.com"}},
		{name: "underscore in name", userName: "_", expected: []string{"dev_ops!@team.com"}},
		{name: "literal underscore", email: "dev_ops", expected: []string{"dev_ops!@team.com"}},
		{name: "escape character", email: "ops!", expected: []string{"dev_ops!@team.com"}},
		{name: "percent in middle", email: "dev%ops", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, err := f.users.Search(ctx, alice.ID, tt.email, tt.userName)
			require.NoError(t, err)

			var emails []string
			for _, u := range users {
				emails = append(emails, u.Email)
			}
			assert.Equal(t, tt.expected, emails)
		})
	}
}

func TestUserService_SearchCapsResults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	caller := f.user(t, "caller@x.com")
	for i := 0; i < 12; i++ {
		f.user(t, uuid.NewString()+"@team.com")
	}

	users, err := f.users.Search(ctx, caller.ID, "@team.com", "")
	require.NoError(t, err)
	assert.Len(t, users, 10)
}

func TestUserService_Profile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@x.com")

	updated, err := f.users.UpdateProfile(ctx, alice.ID, UpdateProfileInput{
		Name:     ptr("Alice"),
		Position: ptr("Engineer"),
		Bio:      ptr(""),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice", *updated.Name)
	assert.Equal(t, "Engineer", *updated.Position)
	assert.Nil(t, updated.Bio)

	profile, err := f.users.GetProfile(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", *profile.Name)

	_, err = f.users.GetProfile(ctx, uuid.New())
	assert.Equal(t, apperrors.ErrUserNotFound, err)
}

func TestDashboardService_Stats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@x.com")
	bob := f.user(t, "bob@x.com")
	launch := f.project(t, alice, "Launch")
	f.project(t, alice, "Empty")
	bobs := f.project(t, bob, "Bob's")

	for _, status := range []model.TaskStatus{model.TaskStatusTodo, model.TaskStatusTodo, model.TaskStatusDoing, model.TaskStatusDone} {
		_, err := f.tasks.Create(ctx, alice.ID, launch.ID, CreateTaskInput{Title: "t", Status: status})
		require.NoError(t, err)
	}
	_, err := f.tasks.Create(ctx, bob.ID, bobs.ID, CreateTaskInput{Title: "not counted"})
	require.NoError(t, err)

	stats, err := f.dashboard.Stats(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalProjects)
	assert.Equal(t, int64(3), stats.ActiveTasks)
	assert.Equal(t, int64(1), stats.CompletedTasks)
	assert.Equal(t, int64(4), stats.TotalTasks)
	assert.Equal(t, int64(2), stats.ByStatus[model.TaskStatusTodo])
	assert.Equal(t, int64(1), stats.ByStatus[model.TaskStatusDoing])
	assert.Equal(t, int64(1), stats.ByStatus[model.TaskStatusDone])
}
