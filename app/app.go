package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SandipanKhanra/letschat/config"
	"github.com/SandipanKhanra/letschat/database"
	"github.com/SandipanKhanra/letschat/handlers"
	"github.com/SandipanKhanra/letschat/middleware/ratelimit"
	"github.com/SandipanKhanra/letschat/server"
	"github.com/SandipanKhanra/letschat/services/auth"
	"github.com/SandipanKhanra/letschat/services/jwt"
	"github.com/SandipanKhanra/letschat/services/logging"
	"github.com/SandipanKhanra/letschat/services/mail"
	"github.com/SandipanKhanra/letschat/services/refreshtoken"
	"github.com/SandipanKhanra/letschat/services/user"
	"github.com/SandipanKhanra/letschat/session"
	"go.uber.org/fx"
)

type App struct {
	fx     *fx.App
	logger *logging.Service
}

// New assembles the full service graph. A nil cfg loads configuration from
// the environment.
func New(cfg *config.Config) *App {
	app := &App{}

	app.fx = fx.New(
		config.NewProvider(cfg),
		fx.Provide(func() *database.ModelsOption {
			return database.WithModels(
				&user.User{},
				&refreshtoken.RefreshToken{},
			)
		}),
		logging.Module,
		database.Module,
		user.Options,
		jwt.Options,
		refreshtoken.Options,
		auth.Options,
		mail.Options,
		session.Options,
		ratelimit.Options,
		handlers.Options,
		server.NewProvider(),
		fx.Populate(&app.logger),
		fx.NopLogger,
	)

	return app
}

func (a *App) Start() error {
	return a.fx.Start(context.Background())
}

func (a *App) Run() {
	if err := a.Start(); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	if a.logger != nil {
		a.logger.Info("Received shutdown signal, stopping gracefully...")
	} else {
		log.Printf("Received signal %v, shutting down gracefully...", sig)
	}

	a.Stop()
}

func (a *App) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.fx.Stop(ctx); err != nil {
		if a.logger != nil {
			a.logger.Error("Failed to stop application gracefully")
		} else {
			log.Printf("Failed to stop application gracefully: %v", err)
		}
	}

	if a.logger != nil {
		_ = a.logger.Sync()
	}
}
