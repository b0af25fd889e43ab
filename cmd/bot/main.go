package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/dmitrv/soulmate-bot/internal/config"
	"github.com/dmitrv/soulmate-bot/internal/infrastructure/container"
	"github.com/dmitrv/soulmate-bot/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewZapLogger(cfg.Server.Env)

	// Initialize dependency injection container
	app, err := container.NewContainer(cfg, log)
	if err != nil {
		log.Fatal("failed to initialize application", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Error("error closing application", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Idle-session janitor
	go app.Janitor.Run(ctx)

	// Admin HTTP server
	go func() {
		if err := app.Server.Start(); err != nil {
			log.Error("admin server error", err)
			quit <- syscall.SIGTERM
		}
	}()

	// Telegram long-polling loop
	go func() {
		if err := app.Bot.Run(ctx); err != nil {
			log.Error("bot error", err)
			quit <- syscall.SIGTERM
		}
	}()

	log.Info("bot started", zap.String("env", cfg.Server.Env))

	// Wait for interrupt signal
	<-quit
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.Server.Shutdown(shutdownCtx); err != nil {
		log.Error("admin server shutdown error", err)
	}

	log.Info("bot exited properly")
}
