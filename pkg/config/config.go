package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Chain        ChainConfig
	FeatureFlags FeatureFlagsConfig
}

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
	Env          string `envconfig:"ORGANICTRACE_APP_ENV" required:"true"`
	Port         string `envconfig:"ORGANICTRACE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"ORGANICTRACE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ORGANICTRACE_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"ORGANICTRACE_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"ORGANICTRACE_DB_DSN"`

	Host     string `envconfig:"ORGANICTRACE_DB_HOST"`
	Port     int    `envconfig:"ORGANICTRACE_DB_PORT" default:"5432"`
	User     string `envconfig:"ORGANICTRACE_DB_USER"`
	Password string `envconfig:"ORGANICTRACE_DB_PASSWORD"`
	Name     string `envconfig:"ORGANICTRACE_DB_NAME"`
	SSLMode  string `envconfig:"ORGANICTRACE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ORGANICTRACE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ORGANICTRACE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ORGANICTRACE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ORGANICTRACE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("either ORGANICTRACE_DB_DSN or host/user/name settings are required")
	}
	d.DSN = fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"ORGANICTRACE_REDIS_URL"`
	Address      string        `envconfig:"ORGANICTRACE_REDIS_ADDR"`
	Password     string        `envconfig:"ORGANICTRACE_REDIS_PASSWORD"`
	DB           int           `envconfig:"ORGANICTRACE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ORGANICTRACE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ORGANICTRACE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ORGANICTRACE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ORGANICTRACE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ORGANICTRACE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// ChainConfig points at the JSON-RPC node and the two deployed contracts.
type ChainConfig struct {
	RPCURL          string        `envconfig:"ORGANICTRACE_CHAIN_RPC_URL" required:"true"`
	RegistryAddress string        `envconfig:"ORGANICTRACE_CHAIN_REGISTRY_ADDRESS" required:"true"`
	TrackerAddress  string        `envconfig:"ORGANICTRACE_CHAIN_TRACKER_ADDRESS" required:"true"`
	CallTimeout     time.Duration `envconfig:"ORGANICTRACE_CHAIN_CALL_TIMEOUT" default:"15s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ORGANICTRACE_AUTO_MIGRATE" default:"false"`
}
