package database

import (
	"fmt"

	"github.com/SandipanKhanra/letschat/config"
	"github.com/SandipanKhanra/letschat/services/logging"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type ModelsOption struct {
	models []any
}

func WithModels(models ...any) *ModelsOption {
	return &ModelsOption{models: models}
}

// ProvideDatabase opens the configured store and, when enabled, migrates
// the registered models. The DSN never reaches the logs.
func ProvideDatabase(cfg config.Config, modelsOpt *ModelsOption, logger *logging.Service) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Database.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.Database.DSN)
	case "postgres", "postgresql":
		dialector = postgres.Open(cfg.Database.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.Database.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s (supported: sqlite, postgres, mysql)", cfg.Database.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		logger.Error("database connection failed",
			zap.Error(err),
			zap.String("driver", cfg.Database.Driver))
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Info("database connected",
		zap.String("driver", cfg.Database.Driver))

	if cfg.Database.AutoMigrate && modelsOpt != nil && len(modelsOpt.models) > 0 {
		if err := db.AutoMigrate(modelsOpt.models...); err != nil {
			logger.Error("auto-migration failed", zap.Error(err))
			return nil, fmt.Errorf("failed to auto-migrate models: %w", err)
		}
		logger.Info("database migrated",
			zap.Int("models", len(modelsOpt.models)))
	}

	return db, nil
}
