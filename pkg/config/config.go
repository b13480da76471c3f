package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "dropcart"

	AppEnvDev  = "dev"
	AppEnvProd = "production"

	EnvAppEnv    = "DROPCART_APP_ENV"
	EnvPort      = "DROPCART_APP_PORT"
	EnvDBDSN     = "DROPCART_DB_DSN"
	EnvDBHost    = "DROPCART_DB_HOST"
	EnvDBUser    = "DROPCART_DB_USER"
	EnvDBName    = "DROPCART_DB_NAME"
	EnvRedisURL  = "DROPCART_REDIS_URL"
	EnvJWTSecret = "DROPCART_JWT_SECRET"
	EnvJWTIssuer = "DROPCART_JWT_ISSUER"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Supplier     SupplierConfig
	Worker       WorkerConfig
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
	Env          string `envconfig:"DROPCART_APP_ENV" required:"true"`
	Port         string `envconfig:"DROPCART_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DROPCART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DROPCART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"DROPCART_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"DROPCART_DB_DSN"`
	Driver string `envconfig:"DROPCART_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"DROPCART_DB_HOST"`
	LegacyPort     int    `envconfig:"DROPCART_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"DROPCART_DB_USER"`
	LegacyPassword string `envconfig:"DROPCART_DB_PASSWORD"`
	LegacyName     string `envconfig:"DROPCART_DB_NAME"`
	LegacySSLMode  string `envconfig:"DROPCART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DROPCART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DROPCART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DROPCART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DROPCART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DROPCART_REDIS_URL" required:"true"`
	Address      string        `envconfig:"DROPCART_REDIS_ADDR"`
	Password     string        `envconfig:"DROPCART_REDIS_PASSWORD"`
	DB           int           `envconfig:"DROPCART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DROPCART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DROPCART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DROPCART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DROPCART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DROPCART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"DROPCART_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"DROPCART_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"DROPCART_JWT_EXPIRATION_MINUTES" default:"60"`
}

// SupplierConfig bounds outbound supplier API calls.
type SupplierConfig struct {
	RequestTimeout time.Duration `envconfig:"DROPCART_SUPPLIER_REQUEST_TIMEOUT" default:"30s"`
	FetchPageSize  int           `envconfig:"DROPCART_SUPPLIER_FETCH_PAGE_SIZE" default:"50"`
}

// WorkerConfig drives the tracking sweep worker.
type WorkerConfig struct {
	SweepInterval time.Duration `envconfig:"DROPCART_WORKER_SWEEP_INTERVAL" default:"15m"`
	SweepBatch    int           `envconfig:"DROPCART_WORKER_SWEEP_BATCH" default:"200"`
	MetricsPort   string        `envconfig:"DROPCART_WORKER_METRICS_PORT" default:"9091"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"DROPCART_FEATURE_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
