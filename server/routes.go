package server

import (
	"net/http"

	"github.com/SandipanKhanra/letschat/config"
	"github.com/SandipanKhanra/letschat/handlers"
	jwtmw "github.com/SandipanKhanra/letschat/middleware/jwt"
	"github.com/SandipanKhanra/letschat/middleware/ratelimit"
	"github.com/SandipanKhanra/letschat/services/jwt"
	"github.com/SandipanKhanra/letschat/services/logging"
	"github.com/SandipanKhanra/letschat/session"
	"github.com/labstack/echo/v4"
)

func RegisterRoutes(
	srv *Server,
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	jwtService *jwt.Service,
	transport *session.Transport,
	limitStore ratelimit.Store,
	logger *logging.Service,
) {
	e := srv.Echo()

	e.Use(logging.RequestLogger(logger))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api/auth")

	signup := api.Group("")
	login := api.Group("")
	refresh := api.Group("")
	if cfg.RateLimit.Enabled {
		signup.Use(ratelimit.Middleware(&ratelimit.Config{
			Store:     limitStore,
			Rate:      cfg.RateLimit.SignupRate,
			Period:    cfg.RateLimit.Period,
			KeyPrefix: "signup",
		}))
		login.Use(ratelimit.Middleware(&ratelimit.Config{
			Store:     limitStore,
			Rate:      cfg.RateLimit.LoginRate,
			Period:    cfg.RateLimit.Period,
			KeyPrefix: "login",
		}))
		refresh.Use(ratelimit.Middleware(&ratelimit.Config{
			Store:     limitStore,
			Rate:      cfg.RateLimit.RefreshRate,
			Period:    cfg.RateLimit.Period,
			KeyPrefix: "refresh",
		}))
	}

	signup.POST("/signup", authHandler.Signup)
	login.POST("/login", authHandler.Login)
	refresh.POST("/refresh", authHandler.Refresh)
	api.POST("/logout", authHandler.Logout)

	protected := api.Group("", jwtmw.RequireJWT(jwtService, transport))
	protected.GET("/check", func(c echo.Context) error {
		return authHandler.Check(c, jwtmw.GetUserID(c))
	})
	protected.PUT("/update-profile", func(c echo.Context) error {
		return authHandler.UpdateProfile(c, jwtmw.GetUserID(c))
	})
	protected.GET("/sessions", func(c echo.Context) error {
		return authHandler.Sessions(c, jwtmw.GetUserID(c))
	})
	protected.POST("/logout-all", func(c echo.Context) error {
		return authHandler.LogoutAll(c, jwtmw.GetUserID(c))
	})
}
