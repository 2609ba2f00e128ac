package operations

import (
	"github.com/Xcraft-Inc/wimlib-imagex/config"
	"github.com/Xcraft-Inc/wimlib-imagex/internal/logging"
	"github.com/Xcraft-Inc/wimlib-imagex/internal/websocket"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(NewServiceFromConfig),
	fx.Provide(NewHandler),
)

func NewServiceFromConfig(cfg *config.Config, logger *logging.Logger, hub *websocket.Hub) *Service {
	return NewService(cfg.ImageLocation, cfg.WimBinary, logger, hub)
}
