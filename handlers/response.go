package handlers

import (
	"github.com/labstack/echo/v4"
)

type apiError struct {
	Code    string `json:"error_code"`
	Message string `json:"error_message"`
}

func errorResponse(c echo.Context, status int, code, message string) error {
	return c.JSON(status, apiError{
		Code:    code,
		Message: message,
	})
}
