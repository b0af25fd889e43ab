package http

import (
	"github.com/gin-gonic/gin"

	"github.com/dmitrv/soulmate-bot/internal/delivery/http/handler"
	"github.com/dmitrv/soulmate-bot/internal/delivery/http/middleware"
	"github.com/dmitrv/soulmate-bot/pkg/logger"
)

type Router struct {
	adminHandler *handler.AdminHandler
	adminToken   string
	log          logger.Logger
}

func NewRouter(adminHandler *handler.AdminHandler, adminToken string, log logger.Logger) *Router {
	return &Router{
		adminHandler: adminHandler,
		adminToken:   adminToken,
		log:          log,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog(r.log))

	// Health check (supports both GET and HEAD)
	healthHandler := func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.RequireToken(r.adminToken))
	{
		v1.GET("/stats", r.adminHandler.Stats)
		v1.POST("/janitor/sweep", r.adminHandler.SweepSessions)
	}

	return router
}
