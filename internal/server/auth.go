package server

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const bearerPrefix = "Bearer "

// RequireBearer rejects requests whose Authorization header does not carry
// exactly "Bearer <secret>". An empty secret rejects every request.
func RequireBearer(secret string) echo.MiddlewareFunc {
	if secret == "" {
		slog.Warn("server: cron secret not set, trigger will deny all requests")
	}
	want := []byte(bearerPrefix + secret)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			got := c.Request().Header.Get(echo.HeaderAuthorization)
			if secret == "" || !strings.HasPrefix(got, bearerPrefix) ||
				subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				slog.Warn("server: unauthorized trigger",
					"path", c.Request().URL.Path,
					"remote_addr", c.RealIP())
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			}
			return next(c)
		}
	}
}
