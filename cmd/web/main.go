package main

import (
	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/EsnatJahan/E-Commerce/internal/config"
	"github.com/EsnatJahan/E-Commerce/internal/server"
	"github.com/EsnatJahan/E-Commerce/pkg/log"
)

func main() {
	log.InitLogger()

	cfg, err := config.Load("./config")
	if err != nil {
		zap.L().Fatal("load config failed", zap.Error(err))
	}

	app := iris.New()
	server.RegisterRoutes(app, cfg)

	addr := cfg.Server.Addr()
	zap.L().Info("web server listening", zap.String("addr", addr))
	if err := app.Run(
		iris.Addr(addr),
		iris.WithOptimizations,
		iris.WithoutServerError(iris.ErrServerClosed),
	); err != nil {
		zap.L().Fatal("app run failed", zap.Error(err))
	}
}
