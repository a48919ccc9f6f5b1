package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&User{}))
	return db
}

func TestService_Create(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db, nil)

	t.Run("creates user", func(t *testing.T) {
		u := &User{Email: "a@b.com", PasswordHash: "hash", DisplayName: "Alice"}
		require.NoError(t, service.Create(u))
		assert.NotZero(t, u.ID)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		err := service.Create(&User{Email: "a@b.com", PasswordHash: "hash"})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestService_Get(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db, nil)

	u := &User{Email: "a@b.com", PasswordHash: "hash", DisplayName: "Alice"}
	require.NoError(t, service.Create(u))

	t.Run("by id", func(t *testing.T) {
		found, err := service.GetByID(u.ID)
		require.NoError(t, err)
		assert.Equal(t, "a@b.com", found.Email)
	})

	t.Run("by email", func(t *testing.T) {
		found, err := service.GetByEmail("a@b.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, found.ID)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := service.GetByID(9999)
		assert.ErrorIs(t, err, ErrUserNotFound)

		_, err = service.GetByEmail("nobody@b.com")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestService_UpdateProfile(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db, nil)

	u := &User{Email: "a@b.com", PasswordHash: "hash", DisplayName: "Alice"}
	require.NoError(t, service.Create(u))

	t.Run("updates provided fields only", func(t *testing.T) {
		name := "Alice B"
		updated, err := service.UpdateProfile(u.ID, ProfileUpdate{DisplayName: &name})
		require.NoError(t, err)
		assert.Equal(t, "Alice B", updated.DisplayName)

		stored, err := service.GetByID(u.ID)
		require.NoError(t, err)
		assert.Equal(t, "Alice B", stored.DisplayName)
		assert.Empty(t, stored.AvatarURL)
	})

	t.Run("empty update is a no-op", func(t *testing.T) {
		_, err := service.UpdateProfile(u.ID, ProfileUpdate{})
		assert.NoError(t, err)
	})

	t.Run("missing user", func(t *testing.T) {
		name := "X"
		_, err := service.UpdateProfile(9999, ProfileUpdate{DisplayName: &name})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}
