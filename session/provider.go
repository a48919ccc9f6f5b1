package session

import (
	"github.com/SandipanKhanra/letschat/config"
	"go.uber.org/fx"
)

func ProvideTransport(cfg *config.Config) *Transport {
	return NewTransport(cfg)
}

var Options = fx.Options(
	fx.Provide(ProvideTransport),
)
