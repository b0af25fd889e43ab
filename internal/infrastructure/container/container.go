package container

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dmitrv/soulmate-bot/internal/config"
	httpdelivery "github.com/dmitrv/soulmate-bot/internal/delivery/http"
	"github.com/dmitrv/soulmate-bot/internal/delivery/http/handler"
	"github.com/dmitrv/soulmate-bot/internal/delivery/telegram"
	"github.com/dmitrv/soulmate-bot/internal/domain"
	"github.com/dmitrv/soulmate-bot/internal/infrastructure/database"
	"github.com/dmitrv/soulmate-bot/internal/infrastructure/gemini"
	"github.com/dmitrv/soulmate-bot/internal/infrastructure/janitor"
	"github.com/dmitrv/soulmate-bot/internal/infrastructure/server"
	"github.com/dmitrv/soulmate-bot/internal/repository/postgres"
	redisrepo "github.com/dmitrv/soulmate-bot/internal/repository/redis"
	"github.com/dmitrv/soulmate-bot/internal/usecase/browse"
	"github.com/dmitrv/soulmate-bot/internal/usecase/onboarding"
	"github.com/dmitrv/soulmate-bot/pkg/logger"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// Container holds all application dependencies
type Container struct {
	Config  *config.Config
	DB      *sqlx.DB
	Redis   *redis.Client
	Server  *server.Server
	Bot     *telegram.Bot
	Janitor *janitor.Janitor
	Gemini  *gemini.Client

	log logger.Logger
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config, log logger.Logger) (*Container, error) {
	// Initialize database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := database.InitSchema(context.Background(), db); err != nil {
		return nil, err
	}

	// Initialize Redis
	redisClient, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	// Initialize Telegram API
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telegram api: %w", err)
	}

	// Icebreakers are optional; without an API key matches just go out
	// without an opener.
	var geminiClient *gemini.Client
	if cfg.Gemini.APIKey != "" {
		geminiClient, err = gemini.NewClient(cfg.Gemini.APIKey)
		if err != nil {
			log.Warn("failed to initialize gemini client, icebreakers disabled")
			geminiClient = nil
		}
	}

	// Initialize repositories
	profileRepo := postgres.NewProfileRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)
	decisionRepo := postgres.NewDecisionRepository(db)
	browseStateRepo := redisrepo.NewBrowseStateRepository(redisClient)

	// Initialize use cases
	onboardingUseCase := onboarding.NewUseCase(sessionRepo, profileRepo, log)

	filter := domain.CandidateFilter{
		SameCity:     cfg.Bot.FilterSameCity,
		SameLooking:  cfg.Bot.FilterSameLooking,
		AgeBandYears: cfg.Bot.FilterAgeBand,
	}
	notifier := telegram.NewNotifier(api)

	var icebreaker browse.IcebreakerSuggester
	if geminiClient != nil {
		icebreaker = geminiClient
	}
	browseUseCase := browse.NewUseCase(
		profileRepo,
		decisionRepo,
		browseStateRepo,
		notifier,
		icebreaker,
		filter,
		cfg.Bot.CandidateTTL,
		log,
	)

	// Initialize delivery
	bot := telegram.NewBot(api, onboardingUseCase, browseUseCase, cfg.Telegram.PollTimeout, log)

	sessionJanitor := janitor.New(sessionRepo, cfg.Bot.SessionTTL, cfg.Bot.JanitorInterval, log)

	adminHandler := handler.NewAdminHandler(profileRepo, decisionRepo, sessionJanitor)
	router := httpdelivery.NewRouter(adminHandler, cfg.Server.AdminToken, log)
	srv := server.NewServer(&cfg.Server, router.Setup(), log)

	return &Container{
		Config:  cfg,
		DB:      db,
		Redis:   redisClient,
		Server:  srv,
		Bot:     bot,
		Janitor: sessionJanitor,
		Gemini:  geminiClient,
		log:     log,
	}, nil
}

// Close closes all connections
func (c *Container) Close() error {
	if c.Gemini != nil {
		c.Gemini.Close()
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.log.Warn("error closing redis")
		}
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}

	return nil
}
