package jwt

import (
	"github.com/SandipanKhanra/letschat/config"
	"github.com/SandipanKhanra/letschat/services/logging"
	"go.uber.org/fx"
)

func NewJWTService(cfg *config.Config, logger *logging.Service) (*Service, error) {
	return NewService(cfg, logger)
}

var Options = fx.Options(
	fx.Provide(NewJWTService),
)
