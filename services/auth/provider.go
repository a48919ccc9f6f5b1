package auth

import (
	"github.com/SandipanKhanra/letschat/config"
	"github.com/SandipanKhanra/letschat/services/logging"
	"github.com/SandipanKhanra/letschat/services/user"
	"go.uber.org/fx"
)

func ProvideAuthService(cfg *config.Config, users *user.Service, logger *logging.Service) *Service {
	return NewService(cfg, users, logger)
}

type OptionalMailService struct {
	fx.In
	MailService MailService `optional:"true"`
}

func WireMailService(authSvc *Service, optMailSvc OptionalMailService) {
	if authSvc != nil && optMailSvc.MailService != nil {
		authSvc.SetMailService(optMailSvc.MailService)
	}
}

var Options = fx.Options(
	fx.Provide(ProvideAuthService),
	fx.Invoke(WireMailService),
)
