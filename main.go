package main

import (
	"context"

	"github.com/Xcraft-Inc/wimlib-imagex/config"
	"github.com/Xcraft-Inc/wimlib-imagex/internal/archives"
	"github.com/Xcraft-Inc/wimlib-imagex/internal/auth"
	"github.com/Xcraft-Inc/wimlib-imagex/internal/health"
	"github.com/Xcraft-Inc/wimlib-imagex/internal/logging"
	"github.com/Xcraft-Inc/wimlib-imagex/internal/operations"
	"github.com/Xcraft-Inc/wimlib-imagex/internal/websocket"
	"github.com/Xcraft-Inc/wimlib-imagex/internal/wimlib"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		config.Module,
		logging.Module,
		wimlib.Module,
		websocket.Module,
		archives.Module,
		operations.Module,
		health.Module,
		fx.Provide(NewEcho),
		fx.Invoke(RegisterRoutes),
		fx.Invoke(StartServer),
		fx.Invoke(StartWebSocketHub),
	).Run()
}

func NewEcho() *echo.Echo {
	e := echo.New()
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	return e
}

func RegisterRoutes(
	e *echo.Echo,
	cfg *config.Config,
	logger *logging.Logger,
	healthHandler *health.Handler,
	archivesHandler *archives.Handler,
	operationsHandler *operations.Handler,
	wsHandler *websocket.Handler,
) {
	api := e.Group("/api")
	api.Use(auth.TokenMiddleware(cfg.AccessToken, logger))

	api.GET("/health", healthHandler.Health)

	api.GET("/archives", archivesHandler.ListArchives)
	api.GET("/archives/:name/info", archivesHandler.GetArchiveInfo)
	api.GET("/archives/:name/dir", archivesHandler.GetArchiveDir)
	api.GET("/archives/:name/extract", archivesHandler.ExtractArchiveFile)
	api.GET("/archives/:name/download", archivesHandler.DownloadArchive)
	api.POST("/archives/:name/verify", archivesHandler.VerifyArchive)
	api.POST("/archives/:name/update", archivesHandler.UpdateArchive)
	api.POST("/archives/:name/rename", archivesHandler.RenameArchive)
	api.DELETE("/archives/:name", archivesHandler.DeleteArchive)

	api.POST("/archives/:name/operations", operationsHandler.StartOperation)
	api.GET("/operations/:operationId/stream", operationsHandler.StreamOperation)
	api.GET("/operations/:operationId/status", operationsHandler.GetOperationStatus)

	e.GET("/ws/agent/status", wsHandler.HandleAgentWebSocket)
}

func StartWebSocketHub(lc fx.Lifecycle, hub *websocket.Hub) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go hub.Run()
			return nil
		},
	})
}

func StartServer(lc fx.Lifecycle, e *echo.Echo, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := e.Start(":" + cfg.Port); err != nil {
					e.Logger.Fatal("Server failed to start:", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return e.Shutdown(ctx)
		},
	})
}
