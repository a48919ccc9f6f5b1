package testutils

import (
	"time"

	"github.com/SandipanKhanra/letschat/config"
	"golang.org/x/crypto/bcrypt"
)

func GetTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name: "letschat test",
			URL:  "http://localhost:8080",
		},
		JWT: config.JWTConfig{
			SecretKey:    "test-secret-key-32-chars-long!!",
			Issuer:       "letschat-test",
			AccessExpiry: 15 * time.Minute,
		},
		RefreshToken: config.RefreshTokenConfig{
			TokenLength:  32,
			Expiry:       24 * time.Hour,
			CookieSecure: false,
		},
		Auth: config.AuthConfig{
			MinLength:     8,
			RequireUpper:  true,
			RequireLower:  true,
			RequireNumber: true,
			BcryptCost:    bcrypt.MinCost,
		},
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			DSN:    ":memory:",
		},
		RateLimit: config.RateLimitConfig{
			Enabled:     false,
			SignupRate:  5,
			LoginRate:   10,
			RefreshRate: 30,
			Period:      time.Minute,
			Store:       "memory",
		},
	}
}
