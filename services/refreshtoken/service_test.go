package refreshtoken

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SandipanKhanra/letschat/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type mockIssuer struct {
	generateTokenFunc func(userID uint) (string, error)
}

func (m *mockIssuer) GenerateToken(userID uint) (string, error) {
	if m.generateTokenFunc != nil {
		return m.generateTokenFunc(userID)
	}
	return "mock-access-token", nil
}

func getTestConfig() *config.Config {
	return &config.Config{
		RefreshToken: config.RefreshTokenConfig{
			TokenLength: 32,
			Expiry:      24 * time.Hour,
		},
	}
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&RefreshToken{}))

	// The in-memory database is per-connection; pin the pool to one
	// connection so concurrent subtests share state.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	return db
}

func TestService_Generate(t *testing.T) {
	cfg := getTestConfig()
	db := setupTestDB(t)
	service := NewService(db, cfg, nil)

	t.Run("stores only the hash", func(t *testing.T) {
		userID := uint(123)
		sessionInfo := TokenSessionInfo{
			IPAddress: "192.168.1.1",
			UserAgent: "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0",
		}

		tokenData, err := service.Generate(userID, sessionInfo)

		require.NoError(t, err)
		assert.NotEmpty(t, tokenData.Token)
		assert.NotEqual(t, tokenData.Token, tokenData.Hash)
		assert.True(t, tokenData.ExpiresAt.After(time.Now()))

		var stored RefreshToken
		require.NoError(t, db.Where("id = ?", tokenData.TokenID).First(&stored).Error)
		assert.Equal(t, userID, stored.UserID)
		assert.Equal(t, tokenData.Hash, stored.TokenHash)
		assert.False(t, stored.Used)
		assert.Equal(t, "192.168.1.1", stored.IPAddress)
		assert.Contains(t, stored.DeviceInfo, "Firefox")
	})

	t.Run("distinct secrets per call", func(t *testing.T) {
		first, err := service.Generate(1, TokenSessionInfo{})
		require.NoError(t, err)
		second, err := service.Generate(1, TokenSessionInfo{})
		require.NoError(t, err)

		assert.NotEqual(t, first.Token, second.Token)
		assert.NotEqual(t, first.Hash, second.Hash)
	})
}

func TestService_FindByHash(t *testing.T) {
	cfg := getTestConfig()
	db := setupTestDB(t)
	service := NewService(db, cfg, nil)

	t.Run("round trip", func(t *testing.T) {
		tokenData, err := service.Generate(42, TokenSessionInfo{})
		require.NoError(t, err)

		record, err := service.FindByHash(service.hashToken(tokenData.Token))
		require.NoError(t, err)
		assert.Equal(t, tokenData.TokenID, record.ID)
		assert.Equal(t, uint(42), record.UserID)
	})

	t.Run("unknown hash", func(t *testing.T) {
		_, err := service.FindByHash(service.hashToken("never-issued"))
		assert.ErrorIs(t, err, ErrRefreshTokenNotFound)
	})
}

func TestRefreshToken_State(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name   string
		record RefreshToken
		want   State
	}{
		{"live record", RefreshToken{Used: false, ExpiresAt: now.Add(time.Hour)}, StateIssued},
		{"consumed record", RefreshToken{Used: true, ExpiresAt: now.Add(time.Hour)}, StateRotated},
		{"expired record", RefreshToken{Used: false, ExpiresAt: now.Add(-time.Hour)}, StateExpired},
		{"consumed wins over expired", RefreshToken{Used: true, ExpiresAt: now.Add(-time.Hour)}, StateRotated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.record.State())
		})
	}
}

func TestService_Rotate(t *testing.T) {
	cfg := getTestConfig()

	t.Run("valid rotation consumes old and appends child", func(t *testing.T) {
		db := setupTestDB(t)
		service := NewService(db, cfg, nil)

		tokenData, err := service.Generate(7, TokenSessionInfo{})
		require.NoError(t, err)

		result, err := service.Rotate(tokenData.Token, &mockIssuer{}, TokenSessionInfo{})
		require.NoError(t, err)
		assert.Equal(t, uint(7), result.UserID)
		assert.Equal(t, "mock-access-token", result.AccessToken)
		assert.NotEqual(t, tokenData.Token, result.RefreshToken)
		assert.Equal(t, tokenData.TokenID, result.OldTokenID)
		assert.NotEqual(t, tokenData.TokenID, result.RefreshTokenID)

		var old RefreshToken
		require.NoError(t, db.Where("id = ?", tokenData.TokenID).First(&old).Error)
		assert.True(t, old.Used)
		assert.Equal(t, StateRotated, old.State())

		var child RefreshToken
		require.NoError(t, db.Where("id = ?", result.RefreshTokenID).First(&child).Error)
		assert.False(t, child.Used)
		assert.Equal(t, uint(7), child.UserID)
	})

	t.Run("unknown secret leaves state untouched", func(t *testing.T) {
		db := setupTestDB(t)
		service := NewService(db, cfg, nil)

		tokenData, err := service.Generate(7, TokenSessionInfo{})
		require.NoError(t, err)

		_, err = service.Rotate("never-issued", &mockIssuer{}, TokenSessionInfo{})
		assert.ErrorIs(t, err, ErrRefreshTokenNotFound)

		var stored RefreshToken
		require.NoError(t, db.Where("id = ?", tokenData.TokenID).First(&stored).Error)
		assert.False(t, stored.Used)
	})

	t.Run("expired record is rejected and removed", func(t *testing.T) {
		db := setupTestDB(t)
		service := NewService(db, cfg, nil)

		tokenData, err := service.Generate(7, TokenSessionInfo{})
		require.NoError(t, err)
		require.NoError(t, db.Model(&RefreshToken{}).
			Where("id = ?", tokenData.TokenID).
			Update("expires_at", time.Now().Add(-time.Minute)).Error)

		_, err = service.Rotate(tokenData.Token, &mockIssuer{}, TokenSessionInfo{})
		assert.ErrorIs(t, err, ErrRefreshTokenExpired)

		var count int64
		db.Model(&RefreshToken{}).Where("id = ?", tokenData.TokenID).Count(&count)
		assert.Zero(t, count)
	})

	t.Run("reuse revokes every session for the user", func(t *testing.T) {
		db := setupTestDB(t)
		service := NewService(db, cfg, nil)

		original, err := service.Generate(7, TokenSessionInfo{})
		require.NoError(t, err)

		otherDevice, err := service.Generate(7, TokenSessionInfo{})
		require.NoError(t, err)

		strangerToken, err := service.Generate(8, TokenSessionInfo{})
		require.NoError(t, err)

		result, err := service.Rotate(original.Token, &mockIssuer{}, TokenSessionInfo{})
		require.NoError(t, err)

		// Replaying the consumed secret is the theft signal.
		_, err = service.Rotate(original.Token, &mockIssuer{}, TokenSessionInfo{})
		assert.ErrorIs(t, err, ErrReuseDetected)

		var count int64
		db.Model(&RefreshToken{}).Where("user_id = ?", 7).Count(&count)
		assert.Zero(t, count)

		// The rotated successor died with the rest of the lineage.
		_, err = service.Rotate(result.RefreshToken, &mockIssuer{}, TokenSessionInfo{})
		assert.ErrorIs(t, err, ErrRefreshTokenNotFound)

		// The other device's session is gone too.
		_, err = service.Rotate(otherDevice.Token, &mockIssuer{}, TokenSessionInfo{})
		assert.ErrorIs(t, err, ErrRefreshTokenNotFound)

		// Unrelated users are untouched.
		_, err = service.Rotate(strangerToken.Token, &mockIssuer{}, TokenSessionInfo{})
		assert.NoError(t, err)
	})

	t.Run("access token failure leaves record unconsumed", func(t *testing.T) {
		db := setupTestDB(t)
		service := NewService(db, cfg, nil)

		tokenData, err := service.Generate(7, TokenSessionInfo{})
		require.NoError(t, err)

		issuer := &mockIssuer{generateTokenFunc: func(uint) (string, error) {
			return "", assert.AnError
		}}

		_, err = service.Rotate(tokenData.Token, issuer, TokenSessionInfo{})
		require.Error(t, err)

		var stored RefreshToken
		require.NoError(t, db.Where("id = ?", tokenData.TokenID).First(&stored).Error)
		assert.False(t, stored.Used)
	})
}

func TestService_Rotate_Concurrent(t *testing.T) {
	cfg := getTestConfig()
	db := setupTestDB(t)
	service := NewService(db, cfg, nil)

	tokenData, err := service.Generate(7, TokenSessionInfo{})
	require.NoError(t, err)

	const attempts = 8

	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = service.Rotate(tokenData.Token, &mockIssuer{}, TokenSessionInfo{})
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.True(t,
			errors.Is(err, ErrReuseDetected) || errors.Is(err, ErrRefreshTokenNotFound),
			"unexpected rotation error: %v", err)
	}

	assert.Equal(t, 1, successes, "exactly one concurrent rotation must win")

	// A losing racer triggered the theft response, so the whole lineage
	// is gone.
	var count int64
	db.Model(&RefreshToken{}).Where("user_id = ?", 7).Count(&count)
	assert.Zero(t, count)
}

func TestService_MarkUsedIsMonotonic(t *testing.T) {
	cfg := getTestConfig()
	db := setupTestDB(t)
	service := NewService(db, cfg, nil)

	tokenData, err := service.Generate(7, TokenSessionInfo{})
	require.NoError(t, err)

	res := db.Model(&RefreshToken{}).
		Where("id = ? AND used = ?", tokenData.TokenID, false).
		Update("used", true)
	require.NoError(t, res.Error)
	assert.Equal(t, int64(1), res.RowsAffected)

	// The conditional update cannot fire twice for the same record.
	res = db.Model(&RefreshToken{}).
		Where("id = ? AND used = ?", tokenData.TokenID, false).
		Update("used", true)
	require.NoError(t, res.Error)
	assert.Zero(t, res.RowsAffected)
}

func TestService_Revoke(t *testing.T) {
	cfg := getTestConfig()
	db := setupTestDB(t)
	service := NewService(db, cfg, nil)

	t.Run("removes the presented record only", func(t *testing.T) {
		first, err := service.Generate(7, TokenSessionInfo{})
		require.NoError(t, err)
		second, err := service.Generate(7, TokenSessionInfo{})
		require.NoError(t, err)

		require.NoError(t, service.Revoke(first.Token))

		_, err = service.FindByHash(first.Hash)
		assert.ErrorIs(t, err, ErrRefreshTokenNotFound)
		_, err = service.FindByHash(second.Hash)
		assert.NoError(t, err)
	})

	t.Run("unknown secret is a no-op", func(t *testing.T) {
		assert.NoError(t, service.Revoke("never-issued"))
	})
}

func TestService_RevokeAll(t *testing.T) {
	cfg := getTestConfig()
	db := setupTestDB(t)
	service := NewService(db, cfg, nil)

	for i := 0; i < 3; i++ {
		_, err := service.Generate(7, TokenSessionInfo{})
		require.NoError(t, err)
	}
	stranger, err := service.Generate(8, TokenSessionInfo{})
	require.NoError(t, err)

	require.NoError(t, service.RevokeAll(7))

	var count int64
	db.Model(&RefreshToken{}).Where("user_id = ?", 7).Count(&count)
	assert.Zero(t, count)

	_, err = service.FindByHash(stranger.Hash)
	assert.NoError(t, err)
}

func TestService_PruneExpired(t *testing.T) {
	cfg := getTestConfig()
	db := setupTestDB(t)
	service := NewService(db, cfg, nil)

	live, err := service.Generate(7, TokenSessionInfo{})
	require.NoError(t, err)

	stale, err := service.Generate(7, TokenSessionInfo{})
	require.NoError(t, err)
	require.NoError(t, db.Model(&RefreshToken{}).
		Where("id = ?", stale.TokenID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	require.NoError(t, service.PruneExpired(7))

	_, err = service.FindByHash(stale.Hash)
	assert.ErrorIs(t, err, ErrRefreshTokenNotFound)
	_, err = service.FindByHash(live.Hash)
	assert.NoError(t, err)
}

func TestService_ListActive(t *testing.T) {
	cfg := getTestConfig()
	db := setupTestDB(t)
	service := NewService(db, cfg, nil)

	live, err := service.Generate(7, TokenSessionInfo{IPAddress: "10.0.0.1"})
	require.NoError(t, err)

	consumed, err := service.Generate(7, TokenSessionInfo{})
	require.NoError(t, err)
	require.NoError(t, db.Model(&RefreshToken{}).
		Where("id = ?", consumed.TokenID).
		Update("used", true).Error)

	records, err := service.ListActive(7)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, live.TokenID, records[0].ID)
	assert.Equal(t, "10.0.0.1", records[0].IPAddress)
}
