package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/costatartessos/hotel-assistant/cmd/mainconfig"
	"github.com/costatartessos/hotel-assistant/internal/api/router"
	"github.com/costatartessos/hotel-assistant/internal/app/bootstrap"
	"github.com/costatartessos/hotel-assistant/internal/channels/telegram"
	appconfig "github.com/costatartessos/hotel-assistant/internal/config"
	"github.com/costatartessos/hotel-assistant/internal/observability/metrics"
	"github.com/costatartessos/hotel-assistant/pkg/logging"
)

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting hotel-assistant server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	awsCfg, err := mainconfig.LoadAWSConfig(context.Background(), cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	stack := bootstrap.New(cfg, awsCfg, metrics.NewChatMetrics(prometheus.DefaultRegisterer), logger)

	var telegramHandler *telegram.WebhookHandler
	if cfg.TelegramToken != "" {
		telegramHandler, err = stack.Telegram()
		if err != nil {
			logger.Error("failed to initialize telegram bot", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Warn("no telegram token configured; telegram webhook disabled")
	}

	r := router.New(&router.Config{
		Logger:         logger,
		WhatsApp:       stack.WhatsApp(),
		Telegram:       telegramHandler,
		Spa:            stack.SpaHTTP(),
		MetricsHandler: promhttp.Handler(),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
