// Package main — веб-админка сайта. Отдельный процесс, с ботом не связан.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/moderator-bot/internal/config"
	"serotonyl.ru/moderator-bot/internal/webadmin"
)

func main() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetOutput(os.Stdout)

	cfg, err := config.LoadWebAdmin()
	if err != nil {
		log.WithError(err).Fatal("Не удалось загрузить конфигурацию")
	}
	if level, err := log.ParseLevel(cfg.AppLogLevel); err == nil {
		log.SetLevel(level)
	}
	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := webadmin.NewServer(cfg).Run(ctx); err != nil {
		log.WithError(err).Fatal("Веб-админка остановилась с ошибкой")
	}
	log.Info("Веб-админка остановлена")
}
