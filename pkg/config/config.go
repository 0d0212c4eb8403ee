package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable the app reads.
	EnvPrefix = "FLEETYARD"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Config aggregates every tunable the fleet backend reads from the environment.
type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FLEETYARD_APP_ENV" required:"true"`
	Port         string `envconfig:"FLEETYARD_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"FLEETYARD_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FLEETYARD_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"FLEETYARD_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"FLEETYARD_DB_DSN"`

	Host     string `envconfig:"FLEETYARD_DB_HOST"`
	Port     int    `envconfig:"FLEETYARD_DB_PORT" default:"5432"`
	User     string `envconfig:"FLEETYARD_DB_USER"`
	Password string `envconfig:"FLEETYARD_DB_PASSWORD"`
	Name     string `envconfig:"FLEETYARD_DB_NAME"`
	SSLMode  string `envconfig:"FLEETYARD_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FLEETYARD_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FLEETYARD_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FLEETYARD_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FLEETYARD_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("either FLEETYARD_DB_DSN or host/user/name settings are required")
	}
	d.DSN = fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"FLEETYARD_REDIS_URL"`
	Address      string        `envconfig:"FLEETYARD_REDIS_ADDR"`
	Password     string        `envconfig:"FLEETYARD_REDIS_PASSWORD"`
	DB           int           `envconfig:"FLEETYARD_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FLEETYARD_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FLEETYARD_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FLEETYARD_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FLEETYARD_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FLEETYARD_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"FLEETYARD_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"FLEETYARD_JWT_ISSUER" default:"fleetyard"`
	ExpirationMinutes int    `envconfig:"FLEETYARD_JWT_EXPIRATION_MINUTES" default:"60"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"FLEETYARD_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"FLEETYARD_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"FLEETYARD_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"FLEETYARD_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"FLEETYARD_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"FLEETYARD_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginUsernameLimit int           `envconfig:"FLEETYARD_AUTH_RATE_LIMIT_LOGIN_USERNAME_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"FLEETYARD_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"FLEETYARD_AUTO_MIGRATE" default:"false"`
	Seed        bool `envconfig:"FLEETYARD_SEED" default:"false"`
}
