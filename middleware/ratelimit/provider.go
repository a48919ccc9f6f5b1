package ratelimit

import (
	"github.com/SandipanKhanra/letschat/config"
	"go.uber.org/fx"
)

func NewStore(rateLimitConfig *config.RateLimitConfig) Store {
	var store Store
	switch rateLimitConfig.Store {
	case "memory":
		fallthrough
	default:
		store = NewMemoryStore()
	}

	return store
}

func ProvideStore(cfg *config.Config) Store {
	return NewStore(&cfg.RateLimit)
}

var Options = fx.Options(
	fx.Provide(ProvideStore),
)
