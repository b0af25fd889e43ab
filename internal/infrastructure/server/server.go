package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dmitrv/soulmate-bot/internal/config"
	"github.com/dmitrv/soulmate-bot/pkg/logger"
)

// Server is the admin HTTP server (health, stats, janitor trigger). The bot
// itself talks to Telegram over long polling; nothing user-facing lives here.
type Server struct {
	httpServer *http.Server
	config     *config.ServerConfig
	log        logger.Logger
}

func NewServer(cfg *config.ServerConfig, router *gin.Engine, log logger.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:           fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:        router,
			ReadTimeout:    cfg.ReadTimeout,
			WriteTimeout:   cfg.WriteTimeout,
			MaxHeaderBytes: 1 << 20, // 1 MB
		},
		config: cfg,
		log:    log,
	}
}

func (s *Server) Start() error {
	s.log.Info("admin server listening", zap.String("addr", s.httpServer.Addr))

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start admin server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("admin server shutdown failed: %w", err)
	}
	s.log.Info("admin server stopped")
	return nil
}
