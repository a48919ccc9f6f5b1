package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/SandipanKhanra/letschat/services/logging"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func NewProvider() fx.Option {
	return fx.Options(
		fx.Provide(New),
		fx.Invoke(RegisterRoutes),
		fx.Invoke(func(lc fx.Lifecycle, srv *Server, logger *logging.Service) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					go func() {
						if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
							logger.Fatal("server failed", zap.Error(err))
						}
					}()
					return nil
				},
				OnStop: func(ctx context.Context) error {
					return srv.Shutdown(ctx)
				},
			})
		}),
	)
}
