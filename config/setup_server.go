package config

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"odyssey/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

const (
	SessionBackendPostgres = "postgres"
	SessionBackendRedis    = "redis"
	SessionBackendMongo    = "mongo"

	PurgeAtLayout = "15:04:05"
)

type AppConfig struct {
	Env            string          `yaml:"env" env:"ENV"`
	ServerAddr     string          `yaml:"serverAddr" env:"SERVER_ADDR"`
	DatabaseConfig DatabaseConfig  `yaml:"databaseConfig"`
	RedisConfig    RedisConfig     `yaml:"redisConfig"`
	MongoConfig    MongoConfig     `yaml:"mongoConfig"`
	JWT            JWTConfig       `yaml:"jwt"`
	Session        SessionConfig   `yaml:"session"`
	Places         PlacesConfig    `yaml:"places"`
	Scheduler      SchedulerConfig `yaml:"scheduler"`
}

// LoadConfig : reads the yaml file (when path is set), overlays environment variables,
// fills defaults and validates the result. An empty path means env-only configuration.
func LoadConfig(path string) (*AppConfig, error) {
	var cfg AppConfig

	if path != "" {
		file, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}

		if err := yaml.Unmarshal(file, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %q: %w", path, err)
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("overlay env: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.Env == "" {
		c.Env = "local"
	}
	if c.ServerAddr == "" {
		c.ServerAddr = ":5000"
	}
	if c.JWT.AccessTokenTTL == 0 {
		c.JWT.AccessTokenTTL = 24 * time.Hour
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "odyssey"
	}
	if c.Session.Backend == "" {
		c.Session.Backend = SessionBackendPostgres
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "access_token"
	}
	if c.Session.RefreshMaxAge == 0 {
		c.Session.RefreshMaxAge = 24 * time.Hour
	}
	if c.Session.LoginPath == "" {
		c.Session.LoginPath = "/login"
	}
	if c.Session.DashboardPath == "" {
		c.Session.DashboardPath = "/dashboard"
	}
	if c.Places.BaseURL == "" {
		c.Places.BaseURL = "https://maps.googleapis.com/maps/api/place/nearbysearch/json"
	}
	if c.Places.RequestTimeout == 0 {
		c.Places.RequestTimeout = 10 * time.Second
	}
	if c.Scheduler.PurgeAt == "" {
		c.Scheduler.PurgeAt = "06:00:00"
	}
	if c.Scheduler.PurgeTimeout == 0 {
		c.Scheduler.PurgeTimeout = time.Minute
	}
}

// Validate : rejects configurations the service cannot start with
func (c *AppConfig) Validate() error {
	if c.JWT.SecretKey == "" {
		return fmt.Errorf("jwt.secret_key is required")
	}
	if c.JWT.AccessTokenTTL < 0 {
		return fmt.Errorf("jwt.access_token_ttl must be positive")
	}
	if c.DatabaseConfig.DSN == "" {
		return fmt.Errorf("databaseConfig.dsn is required")
	}

	switch c.Session.Backend {
	case SessionBackendPostgres:
	case SessionBackendRedis:
		if c.RedisConfig.Addr == "" {
			return fmt.Errorf("redisConfig.addr is required for the redis session backend")
		}
	case SessionBackendMongo:
		if c.MongoConfig.URI == "" {
			return fmt.Errorf("mongoConfig.uri is required for the mongo session backend")
		}
	default:
		return fmt.Errorf("session.backend %q is not supported", c.Session.Backend)
	}

	if c.Session.RefreshMaxAge < 0 {
		return fmt.Errorf("session.refresh_max_age must be positive")
	}
	if c.Places.MaxPageChain < 0 || c.Places.MaxPageChain > model.MaxPageChain {
		return fmt.Errorf("places.max_page_chain must be within [0, %d], got %d", model.MaxPageChain, c.Places.MaxPageChain)
	}
	if c.Places.PageTokenDelay < 0 {
		return fmt.Errorf("places.page_token_delay must not be negative")
	}
	if _, err := time.Parse(PurgeAtLayout, c.Scheduler.PurgeAt); err != nil {
		return fmt.Errorf("scheduler.purge_at must look like 06:00:00: %w", err)
	}

	return nil
}

// PurgeClock : hour, minute and second of the daily refresh-record sweep
func (c *AppConfig) PurgeClock() (hour, minute, second int) {
	t, err := time.Parse(PurgeAtLayout, c.Scheduler.PurgeAt)
	if err != nil {
		return 6, 0, 0
	}
	return t.Hour(), t.Minute(), t.Second()
}

func SetupServer(serverAddress string) (*http.Server, *chi.Mux) {
	router := chi.NewRouter()
	server := &http.Server{
		Addr:              serverAddress,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return server, router
}

func SetupDatabase(dsn string) (*Database, error) {
	return NewDatabaseConnection("postgres", dsn)
}

func SetupRedis(cfg *RedisConfig) (*RedisClient, error) {
	return NewRedisClient(cfg)
}
