package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/SandipanKhanra/letschat/services/user"
	"github.com/labstack/echo/v4"
)

// Check is the identity probe: it answers purely from the validated access
// token plus a user lookup, no refresh-token state is touched.
func (h *AuthHandler) Check(c echo.Context, userID uint) error {
	account, err := h.userService.GetByID(userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return errorResponse(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid access token")
		}
		return errorResponse(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Please retry")
	}

	return c.JSON(http.StatusOK, map[string]any{"user": account})
}

func (h *AuthHandler) UpdateProfile(c echo.Context, userID uint) error {
	var update user.ProfileUpdate
	if err := c.Bind(&update); err != nil {
		return errorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
	}

	account, err := h.userService.UpdateProfile(userID, update)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return errorResponse(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid access token")
		}
		return errorResponse(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Please retry")
	}

	return c.JSON(http.StatusOK, map[string]any{"user": account})
}

type sessionInfo struct {
	ID         uint      `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	IPAddress  string    `json:"ip_address"`
	DeviceInfo string    `json:"device_info"`
}

// Sessions lists the caller's live refresh records for auditing which
// devices currently hold a session.
func (h *AuthHandler) Sessions(c echo.Context, userID uint) error {
	records, err := h.tokenService.ListActive(userID)
	if err != nil {
		return errorResponse(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Please retry")
	}

	sessions := make([]sessionInfo, 0, len(records))
	for _, record := range records {
		sessions = append(sessions, sessionInfo{
			ID:         record.ID,
			CreatedAt:  record.CreatedAt,
			ExpiresAt:  record.ExpiresAt,
			IPAddress:  record.IPAddress,
			DeviceInfo: record.DeviceInfo,
		})
	}

	return c.JSON(http.StatusOK, map[string]any{"sessions": sessions})
}
