package websocket

import (
	"github.com/Xcraft-Inc/wimlib-imagex/config"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(NewHub),
	fx.Provide(NewHandlerFromConfig),
)

func NewHandlerFromConfig(hub *Hub, cfg *config.Config) *Handler {
	return NewHandler(hub, cfg.AccessToken)
}
