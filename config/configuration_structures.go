package config

import "time"

type DatabaseConfig struct {
	DSN string `yaml:"dsn" env:"DATABASE_URL"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}

type MongoConfig struct {
	URI string `yaml:"uri" env:"MONGO_URI"`
}

type JWTConfig struct {
	SecretKey      string        `yaml:"secret_key" env:"ACCESS_SECRET"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" env:"ACCESS_TOKEN_TTL"`
	Issuer         string        `yaml:"issuer"`
}

// SessionConfig : refresh registry backend and the access-token cookie
type SessionConfig struct {
	Backend       string        `yaml:"backend" env:"SESSION_BACKEND"`
	CookieName    string        `yaml:"cookie_name" env:"ACCESS_NAME"`
	CookieSecure  bool          `yaml:"cookie_secure" env:"COOKIE_SECURE"`
	RefreshMaxAge time.Duration `yaml:"refresh_max_age" env:"REFRESH_MAX_AGE"`
	LoginPath     string        `yaml:"login_path"`
	DashboardPath string        `yaml:"dashboard_path"`
}

type PlacesConfig struct {
	BaseURL        string        `yaml:"base_url" env:"GOOGLE_PLACES_URL"`
	APIKey         string        `yaml:"api_key" env:"GOOGLE_APIKEY"`
	MaxPageChain   int           `yaml:"max_page_chain" env:"GOOGLE_MAX_PAGE_CHAIN"`
	PageTokenDelay time.Duration `yaml:"page_token_delay" env:"GOOGLE_PAGE_TOKEN_DELAY"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"GOOGLE_REQUEST_TIMEOUT"`
}

type SchedulerConfig struct {
	PurgeAt      string        `yaml:"purge_at" env:"PURGE_AT"`
	PurgeTimeout time.Duration `yaml:"purge_timeout" env:"PURGE_TIMEOUT"`
}
