// Package session maps the token pair to and from the HTTP boundary. The
// access token and the refresh secret travel as two independent cookies
// with their own lifetimes and scopes; neither is readable by page scripts
// and neither is sent on cross-site navigations.
package session

import (
	"net/http"

	"github.com/SandipanKhanra/letschat/config"
	"github.com/labstack/echo/v4"
)

const (
	AccessCookieName  = "letschat_access"
	RefreshCookieName = "letschat_refresh"

	// RefreshCookiePath confines the refresh secret to the routes that
	// actually consume it.
	RefreshCookiePath = "/api/auth"
)

type Transport struct {
	config *config.Config
}

func NewTransport(cfg *config.Config) *Transport {
	return &Transport{config: cfg}
}

func (t *Transport) SetAuthCookies(c echo.Context, accessToken, refreshToken string) {
	c.SetCookie(&http.Cookie{
		Name:     AccessCookieName,
		Value:    accessToken,
		Path:     "/",
		MaxAge:   int(t.config.JWT.AccessExpiry.Seconds()),
		HttpOnly: true,
		Secure:   t.config.RefreshToken.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})

	c.SetCookie(&http.Cookie{
		Name:     RefreshCookieName,
		Value:    refreshToken,
		Path:     RefreshCookiePath,
		MaxAge:   int(t.config.RefreshToken.Expiry.Seconds()),
		HttpOnly: true,
		Secure:   t.config.RefreshToken.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearAuthCookies removes both carriers unconditionally, even when the
// presented refresh secret was already invalid.
func (t *Transport) ClearAuthCookies(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     AccessCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   t.config.RefreshToken.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})

	c.SetCookie(&http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     RefreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   t.config.RefreshToken.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (t *Transport) ReadRefreshCookie(c echo.Context) string {
	cookie, err := c.Cookie(RefreshCookieName)
	if err != nil || cookie == nil {
		return ""
	}
	return cookie.Value
}

func (t *Transport) ReadAccessCookie(c echo.Context) string {
	cookie, err := c.Cookie(AccessCookieName)
	if err != nil || cookie == nil {
		return ""
	}
	return cookie.Value
}
