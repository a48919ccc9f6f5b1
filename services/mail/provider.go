package mail

import (
	"github.com/SandipanKhanra/letschat/config"
	"github.com/SandipanKhanra/letschat/services/auth"
	"github.com/SandipanKhanra/letschat/services/logging"
	"go.uber.org/fx"
)

func ProvideMailService(cfg *config.Config, logger *logging.Service) (auth.MailService, error) {
	if !cfg.Mail.Enabled {
		return nil, nil
	}
	return NewService(&cfg.Mail, &cfg.App, logger)
}

var Options = fx.Options(
	fx.Provide(ProvideMailService),
)
