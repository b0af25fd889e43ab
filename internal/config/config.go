package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Telegram TelegramConfig
	Bot      BotConfig
	Gemini   GeminiConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// AdminToken guards the stats and janitor endpoints.
	AdminToken string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type TelegramConfig struct {
	Token string
	// PollTimeout is the long-polling timeout in seconds.
	PollTimeout int
}

type BotConfig struct {
	// SessionTTL expires abandoned onboarding sessions.
	SessionTTL time.Duration
	// JanitorInterval is how often idle sessions are swept.
	JanitorInterval time.Duration
	// CandidateTTL bounds how long a shown candidate card stays actionable.
	CandidateTTL time.Duration
	// Candidate selection narrowing; all off by default.
	FilterSameCity    bool
	FilterSameLooking bool
	FilterAgeBand     int
}

type GeminiConfig struct {
	// APIKey is optional; empty disables icebreaker generation.
	APIKey string
}

type LoggingConfig struct {
	Level string
}

// Load loads configuration from environment variables or .env file
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	// Try to read from .env file, but don't fail if it doesn't exist
	_ = viper.ReadInConfig()

	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("REDIS_PORT", 6379)
	viper.SetDefault("TG_POLL_TIMEOUT", 60)
	viper.SetDefault("SESSION_TTL_MIN", 60)
	viper.SetDefault("JANITOR_INTERVAL_MIN", 10)
	viper.SetDefault("CANDIDATE_TTL_MIN", 30)

	config := &Config{
		Server: ServerConfig{
			Host:         viper.GetString("SERVER_HOST"),
			Port:         viper.GetInt("SERVER_PORT"),
			Env:          viper.GetString("ENV"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			AdminToken:   viper.GetString("ADMIN_TOKEN"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetInt("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Telegram: TelegramConfig{
			Token:       viper.GetString("BOT_TOKEN"),
			PollTimeout: viper.GetInt("TG_POLL_TIMEOUT"),
		},
		Bot: BotConfig{
			SessionTTL:        time.Duration(viper.GetInt("SESSION_TTL_MIN")) * time.Minute,
			JanitorInterval:   time.Duration(viper.GetInt("JANITOR_INTERVAL_MIN")) * time.Minute,
			CandidateTTL:      time.Duration(viper.GetInt("CANDIDATE_TTL_MIN")) * time.Minute,
			FilterSameCity:    viper.GetBool("FILTER_SAME_CITY"),
			FilterSameLooking: viper.GetBool("FILTER_SAME_LOOKING"),
			FilterAgeBand:     viper.GetInt("FILTER_AGE_BAND"),
		},
		Gemini: GeminiConfig{
			APIKey: viper.GetString("GEMINI_API_KEY"),
		},
		Logging: LoggingConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
	}

	// Validate critical configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates critical configuration values
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("telegram bot token is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Bot.SessionTTL <= 0 {
		return fmt.Errorf("session TTL must be positive")
	}
	if c.Bot.JanitorInterval <= 0 {
		return fmt.Errorf("janitor interval must be positive")
	}
	if c.Bot.FilterAgeBand < 0 {
		return fmt.Errorf("age band must not be negative")
	}
	return nil
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// GetAddr returns Redis address
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
