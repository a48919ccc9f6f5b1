package handlers

import (
	"errors"
	"net/http"

	"github.com/SandipanKhanra/letschat/services/auth"
	"github.com/SandipanKhanra/letschat/services/jwt"
	"github.com/SandipanKhanra/letschat/services/logging"
	"github.com/SandipanKhanra/letschat/services/refreshtoken"
	"github.com/SandipanKhanra/letschat/services/user"
	"github.com/SandipanKhanra/letschat/session"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService  *auth.Service
	userService  *user.Service
	jwtService   *jwt.Service
	tokenService *refreshtoken.Service
	transport    *session.Transport
	logger       *logging.Service
}

func NewAuthHandler(
	authService *auth.Service,
	userService *user.Service,
	jwtService *jwt.Service,
	tokenService *refreshtoken.Service,
	transport *session.Transport,
	logger *logging.Service,
) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		userService:  userService,
		jwtService:   jwtService,
		tokenService: tokenService,
		transport:    transport,
		logger:       logger,
	}
}

type signupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return errorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", "Email and password are required")
	}

	account, err := h.authService.Register(req.Email, req.Password, req.DisplayName)
	if err != nil {
		var policyErr *auth.PolicyError
		switch {
		case errors.Is(err, user.ErrEmailTaken):
			return errorResponse(c, http.StatusConflict, "USER_EXISTS", "User with this email already exists")
		case errors.As(err, &policyErr):
			return errorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", policyErr.Error())
		case errors.Is(err, auth.ErrPasswordHashingFailed):
			return errorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process password")
		default:
			h.logger.Error("signup failed", zap.Error(err))
			return errorResponse(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Please retry")
		}
	}

	if err := h.issueTokenPair(c, account.ID); err != nil {
		return errorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to issue tokens")
	}

	return c.JSON(http.StatusCreated, map[string]any{"user": account})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
	}

	account, err := h.authService.VerifyCredentials(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return errorResponse(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
		}
		return errorResponse(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Please retry")
	}

	// Bounded cleanup instead of a background sweep.
	if err := h.tokenService.PruneExpired(account.ID); err != nil {
		h.logger.Warn("failed to prune expired refresh tokens on login", zap.Error(err))
	}

	if err := h.issueTokenPair(c, account.ID); err != nil {
		return errorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to issue tokens")
	}

	return c.JSON(http.StatusOK, map[string]any{"user": account})
}

// Refresh consumes the refresh cookie and rotates it. Not-found and expired
// secrets collapse into one unauthorized shape so the endpoint cannot be
// used to probe which secrets ever existed; reuse detection is the one
// classification surfaced, because the client must force a full re-login.
func (h *AuthHandler) Refresh(c echo.Context) error {
	secret := h.transport.ReadRefreshCookie(c)
	if secret == "" {
		h.transport.ClearAuthCookies(c)
		return errorResponse(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid refresh token")
	}

	sessionInfo := refreshtoken.TokenSessionInfo{
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}

	result, err := h.tokenService.Rotate(secret, h.jwtService, sessionInfo)
	if err != nil {
		switch {
		case errors.Is(err, refreshtoken.ErrReuseDetected):
			h.transport.ClearAuthCookies(c)
			return errorResponse(c, http.StatusUnauthorized, "TOKEN_REUSE_DETECTED", "Token reuse detected - all sessions revoked")
		case errors.Is(err, refreshtoken.ErrRefreshTokenNotFound),
			errors.Is(err, refreshtoken.ErrRefreshTokenExpired):
			h.transport.ClearAuthCookies(c)
			return errorResponse(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid refresh token")
		default:
			// Transient store failure: the presented secret may still be
			// live, so the client keeps its cookies and retries.
			h.logger.Error("refresh rotation failed", zap.Error(err))
			return errorResponse(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Please retry")
		}
	}

	h.transport.SetAuthCookies(c, result.AccessToken, result.RefreshToken)

	return c.JSON(http.StatusOK, map[string]any{
		"expires_at": result.ExpiresAt,
	})
}

// Logout revokes the presented refresh record only. Idempotent: an absent
// or unknown cookie still yields 200 with both cookies cleared.
func (h *AuthHandler) Logout(c echo.Context) error {
	secret := h.transport.ReadRefreshCookie(c)
	if secret != "" {
		if err := h.tokenService.Revoke(secret); err != nil {
			h.logger.Warn("failed to revoke refresh token on logout", zap.Error(err))
		}
	}

	h.transport.ClearAuthCookies(c)

	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

func (h *AuthHandler) LogoutAll(c echo.Context, userID uint) error {
	if err := h.tokenService.RevokeAll(userID); err != nil {
		return errorResponse(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Please retry")
	}

	h.transport.ClearAuthCookies(c)

	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

func (h *AuthHandler) issueTokenPair(c echo.Context, userID uint) error {
	accessToken, err := h.jwtService.GenerateToken(userID)
	if err != nil {
		h.logger.Error("failed to generate access token", zap.Error(err))
		return err
	}

	sessionInfo := refreshtoken.TokenSessionInfo{
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}

	tokenData, err := h.tokenService.Generate(userID, sessionInfo)
	if err != nil {
		h.logger.Error("failed to generate refresh token", zap.Error(err))
		return err
	}

	h.transport.SetAuthCookies(c, accessToken, tokenData.Token)

	return nil
}
