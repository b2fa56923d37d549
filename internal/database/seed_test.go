package database

import (
	"testing"

	"github.com/kinderhub/backend/internal/config"
	"github.com/kinderhub/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func openMemory(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Connect(&config.Config{
		App:      config.AppConfig{Env: "production"},
		Database: config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"},
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, Migrate(db))
	return db
}

func TestSeedAdmin(t *testing.T) {
	db := openMemory(t)

	created, err := SeedAdmin(db, "Head Teacher", " Admin@Kinder.test ", "long-enough")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = SeedAdmin(db, "Head Teacher", "admin@kinder.test", "long-enough")
	require.NoError(t, err)
	assert.False(t, created)

	var admin domain.UserAccount
	require.NoError(t, db.Where("email = ?", "admin@kinder.test").First(&admin).Error)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("long-enough")))

	_, err = SeedAdmin(db, "X", "x@kinder.test", "short")
	assert.Error(t, err)
}

func TestSeedSampleTruncateAndDrop(t *testing.T) {
	db := openMemory(t)
	_, err := SeedAdmin(db, "Head Teacher", "admin@kinder.test", "long-enough")
	require.NoError(t, err)

	require.NoError(t, SeedSample(db))
	assert.Error(t, SeedSample(db))

	var classes []domain.Class
	require.NoError(t, db.Find(&classes).Error)
	require.Len(t, classes, 2)
	assert.NotNil(t, classes[0].AssignedTeacherID)

	require.NoError(t, Truncate(db))
	var count int64
	db.Model(&domain.Semester{}).Count(&count)
	assert.Zero(t, count)
	db.Model(&domain.UserAccount{}).Count(&count)
	assert.Equal(t, int64(1), count)

	require.NoError(t, DropAll(db))
	for _, m := range domain.AllModels() {
		assert.False(t, db.Migrator().HasTable(m))
	}
}
