package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"flowspace/internal/model"
	"flowspace/internal/testutil"
)

func maxOrderSQL(db *gorm.DB) string {
	return db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var last []float64
		repo := &taskRepository{db: tx}
		return repo.maxOrderQuery(context.Background(), uuid.Nil, model.TaskStatusTodo).Find(&last)
	})
}

func TestTaskRepository_MaxOrderLocksOnMySQL(t *testing.T) {
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "user:password@tcp(127.0.0.1:1)/flowspace?parseTime=True",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)

	assert.Contains(t, maxOrderSQL(db), "FOR UPDATE")
}

func TestTaskRepository_MaxOrder(t *testing.T) {
	db := testutil.NewDB(t)
	store := NewStore(db)
	ctx := context.Background()

	owner := &model.User{Email: "alice@x.com", PasswordHash: "x"}
	require.NoError(t, store.Users().Create(ctx, owner))
	project := &model.Project{Name: "Launch", OwnerID: owner.ID}
	require.NoError(t, store.Projects().Create(ctx, project))

	assert.NotContains(t, maxOrderSQL(db), "FOR UPDATE")

	_, ok, err := store.Tasks().MaxOrder(ctx, project.ID, model.TaskStatusTodo)
	require.NoError(t, err)
	assert.False(t, ok)

	for _, order := range []float64{0, 3.5, 1} {
		task := &model.Task{Title: "t", ProjectID: project.ID, CreatorID: owner.ID, Order: order}
		require.NoError(t, store.Tasks().Create(ctx, task))
	}

	last, ok, err := store.Tasks().MaxOrder(ctx, project.ID, model.TaskStatusTodo)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3.5, last)

	_, ok, err = store.Tasks().MaxOrder(ctx, project.ID, model.TaskStatusDone)
	require.NoError(t, err)
	assert.False(t, ok)
}
