package database

import (
	"github.com/SandipanKhanra/letschat/config"
	"github.com/SandipanKhanra/letschat/services/logging"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Options(
	fx.Provide(ProvideDatabaseFx),
)

func ProvideDatabaseFx(cfg *config.Config, modelsOpt *ModelsOption, logger *logging.Service) (*gorm.DB, error) {
	return ProvideDatabase(*cfg, modelsOpt, logger)
}
