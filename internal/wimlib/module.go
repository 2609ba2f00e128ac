package wimlib

import (
	"github.com/Xcraft-Inc/wimlib-imagex/config"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg *config.Config) *Adapter {
	return New(cfg.WimBinary)
}
