package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "CARTS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	EnvAppEnv    = "CARTS_APP_ENV"
	EnvPort      = "CARTS_APP_PORT"
	EnvLogLevel  = "CARTS_LOG_LEVEL"
	EnvDBDSN     = "CARTS_DB_DSN"
	EnvDBDriver  = "CARTS_DB_DRIVER"
	EnvRedisURL  = "CARTS_REDIS_URL"
	EnvCartTTL   = "CARTS_REDIS_CART_TTL"
	EnvJWTSecret = "CARTS_JWT_SECRET"
	EnvJWTIssuer = "CARTS_JWT_ISSUER"
)

type Config struct {
	App     AppConfig
	DB      DBConfig
	Redis   RedisConfig
	JWT     JWTConfig
	Metrics MetricsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CARTS_APP_ENV" required:"true"`
	Port         string `envconfig:"CARTS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"CARTS_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"CARTS_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"CARTS_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"CARTS_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev) || strings.EqualFold(a.Env, "development")
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type DBConfig struct {
	DSN         string `envconfig:"CARTS_DB_DSN" required:"true"`
	Driver      string `envconfig:"CARTS_DB_DRIVER" default:"postgres"`
	AutoMigrate bool   `envconfig:"CARTS_DB_AUTO_MIGRATE" default:"false"`

	MaxOpenConns    int           `envconfig:"CARTS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CARTS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CARTS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CARTS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is SQLite.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DriverSQLite)
}

func (db DBConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(db.Driver)) {
	case DriverPostgres, DriverSQLite:
		return nil
	default:
		return fmt.Errorf("%s must be %q or %q, got %q", EnvDBDriver, DriverPostgres, DriverSQLite, db.Driver)
	}
}

// RedisConfig is optional; an empty URL and address disables the cart cache.
type RedisConfig struct {
	URL          string        `envconfig:"CARTS_REDIS_URL"`
	Address      string        `envconfig:"CARTS_REDIS_ADDR"`
	Password     string        `envconfig:"CARTS_REDIS_PASSWORD"`
	DB           int           `envconfig:"CARTS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CARTS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CARTS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CARTS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CARTS_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"CARTS_REDIS_WRITE_TIMEOUT" default:"3s"`
	CartTTL      time.Duration `envconfig:"CARTS_REDIS_CART_TTL" default:"5m"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"CARTS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CARTS_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"CARTS_JWT_EXPIRATION_MINUTES" default:"60"`
}

type MetricsConfig struct {
	Enabled bool   `envconfig:"CARTS_METRICS_ENABLED" default:"true"`
	Path    string `envconfig:"CARTS_METRICS_PATH" default:"/metrics"`
}
