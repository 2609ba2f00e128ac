package websocket

import (
	"crypto/subtle"
	"strings"

	"github.com/Xcraft-Inc/wimlib-imagex/internal/common"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	hub         *Hub
	accessToken string
}

func NewHandler(hub *Hub, accessToken string) *Handler {
	return &Handler{
		hub:         hub,
		accessToken: accessToken,
	}
}

func (h *Handler) HandleAgentWebSocket(c echo.Context) error {
	authHeader := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return common.SendUnauthorized(c, "Bearer token required")
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")
	if h.accessToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(h.accessToken)) != 1 {
		return common.SendUnauthorized(c, "Invalid token")
	}

	return h.hub.ServeWebSocket(c)
}
