package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/Xcraft-Inc/wimlib-imagex/internal/logging"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func TokenMiddleware(accessToken string, logger *logging.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sourceIP := c.RealIP()

			if accessToken == "" {
				logger.Warn("authentication failed - token not configured",
					zap.String("source_ip", sourceIP))
				return c.JSON(http.StatusInternalServerError, map[string]string{
					"error": "Access token not configured",
				})
			}

			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				logger.Warn("authentication failed - bearer token required",
					zap.String("source_ip", sourceIP))
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "Bearer token required",
				})
			}

			token := strings.TrimPrefix(header, "Bearer ")
			if subtle.ConstantTimeCompare([]byte(token), []byte(accessToken)) != 1 {
				logger.Warn("authentication failed - invalid token",
					zap.String("source_ip", sourceIP),
					zap.String("token_hash", HashToken(token)))
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "Invalid token",
				})
			}

			return next(c)
		}
	}
}

// HashToken returns a short hash suitable for correlating log lines without
// exposing the token itself.
func HashToken(token string) string {
	if token == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])[:16]
}
