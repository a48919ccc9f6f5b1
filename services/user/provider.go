package user

import (
	"github.com/SandipanKhanra/letschat/services/logging"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideUserService(db *gorm.DB, logger *logging.Service) *Service {
	return NewService(db, logger)
}

var Options = fx.Options(
	fx.Provide(ProvideUserService),
)
