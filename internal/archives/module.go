package archives

import (
	"context"

	"github.com/Xcraft-Inc/wimlib-imagex/config"
	"github.com/Xcraft-Inc/wimlib-imagex/internal/logging"
	"github.com/Xcraft-Inc/wimlib-imagex/internal/websocket"
	"github.com/Xcraft-Inc/wimlib-imagex/internal/wimlib"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(NewIndexFromConfig),
	fx.Provide(NewServiceFromConfig),
	fx.Provide(NewHandler),
	fx.Invoke(RegisterIndexLifecycle),
)

func NewIndexFromConfig(cfg *config.Config, hub *websocket.Hub, logger *logging.Logger) *Index {
	return NewIndex(cfg.ImageLocation, hub, logger)
}

func NewServiceFromConfig(cfg *config.Config, adapter *wimlib.Adapter, index *Index, logger *logging.Logger) *Service {
	return NewService(cfg.ImageLocation, adapter, index, logger)
}

func RegisterIndexLifecycle(lc fx.Lifecycle, index *Index) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return index.Start()
		},
		OnStop: func(ctx context.Context) error {
			index.Stop()
			return nil
		},
	})
}
