package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowspace/internal/config"
	"flowspace/internal/model"
)

func TestOpen_SQLiteMigrate(t *testing.T) {
	cfg := &config.Config{
		DBDriver:   "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "nested", "flowspace.db"),
	}

	gormDB, err := Open(cfg)
	require.NoError(t, err)
	require.NoError(t, Migrate(gormDB, false))

	for _, m := range []interface{}{&model.User{}, &model.Project{}, &model.Member{}, &model.Task{}, &model.Report{}} {
		assert.True(t, gormDB.Migrator().HasTable(m))
	}
	assert.True(t, gormDB.Migrator().HasColumn(&model.Task{}, "sort_order"))

	// Reset drops and recreates.
	require.NoError(t, gormDB.Create(&model.User{Email: "a@x.com", PasswordHash: "x"}).Error)
	require.NoError(t, Migrate(gormDB, true))
	var count int64
	require.NoError(t, gormDB.Model(&model.User{}).Count(&count).Error)
	assert.Zero(t, count)
}
