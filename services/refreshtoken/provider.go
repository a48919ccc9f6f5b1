package refreshtoken

import (
	"github.com/SandipanKhanra/letschat/config"
	"github.com/SandipanKhanra/letschat/services/logging"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideRefreshTokenService(db *gorm.DB, config *config.Config, logger *logging.Service) *Service {
	return NewService(db, config, logger)
}

var Options = fx.Options(
	fx.Provide(ProvideRefreshTokenService),
)
