package health

import (
	"net/http"

	"github.com/Xcraft-Inc/wimlib-imagex/internal/wimlib"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	adapter *wimlib.Adapter
}

func NewHandler(adapter *wimlib.Adapter) *Handler {
	return &Handler{adapter: adapter}
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "healthy",
		"binary": h.adapter.Binary(),
	})
}
