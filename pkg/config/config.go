package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "clickbrilhe"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "CLICKBRILHE_DB_DSN"
	EnvDBHost = "CLICKBRILHE_DB_HOST"
	EnvDBUser = "CLICKBRILHE_DB_USER"
	EnvDBName = "CLICKBRILHE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Backend      BackendConfig
	ViaCEP       ViaCEPConfig
	Receita      ReceitaConfig
	Pagarme      PagarmeConfig
	Freight      FreightConfig
	Checkout     CheckoutConfig
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
	Env          string   `envconfig:"CLICKBRILHE_APP_ENV" required:"true"`
	Port         string   `envconfig:"CLICKBRILHE_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"CLICKBRILHE_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"CLICKBRILHE_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"CLICKBRILHE_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"CLICKBRILHE_DB_DSN"`

	LegacyHost     string `envconfig:"CLICKBRILHE_DB_HOST"`
	LegacyPort     int    `envconfig:"CLICKBRILHE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CLICKBRILHE_DB_USER"`
	LegacyPassword string `envconfig:"CLICKBRILHE_DB_PASSWORD"`
	LegacyName     string `envconfig:"CLICKBRILHE_DB_NAME"`
	LegacySSLMode  string `envconfig:"CLICKBRILHE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CLICKBRILHE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CLICKBRILHE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CLICKBRILHE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CLICKBRILHE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CLICKBRILHE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CLICKBRILHE_REDIS_ADDR"`
	Password     string        `envconfig:"CLICKBRILHE_REDIS_PASSWORD"`
	DB           int           `envconfig:"CLICKBRILHE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CLICKBRILHE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CLICKBRILHE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CLICKBRILHE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CLICKBRILHE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CLICKBRILHE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// BackendConfig points at the store backend that owns products, users,
// orders and transactional email.
type BackendConfig struct {
	BaseURL string        `envconfig:"CLICKBRILHE_BACKEND_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"CLICKBRILHE_BACKEND_TIMEOUT" default:"10s"`
}

type ViaCEPConfig struct {
	BaseURL string        `envconfig:"CLICKBRILHE_VIACEP_BASE_URL" default:"https://viacep.com.br"`
	Timeout time.Duration `envconfig:"CLICKBRILHE_VIACEP_TIMEOUT" default:"10s"`
}

// ReceitaConfig configures the identity-status lookup. An empty base URL
// switches the service to the deterministic stub resolver.
type ReceitaConfig struct {
	BaseURL string        `envconfig:"CLICKBRILHE_RECEITA_BASE_URL"`
	Timeout time.Duration `envconfig:"CLICKBRILHE_RECEITA_TIMEOUT" default:"10s"`
}

type PagarmeConfig struct {
	BaseURL string        `envconfig:"CLICKBRILHE_PAGARME_BASE_URL" default:"https://api.pagar.me/core/v5"`
	Timeout time.Duration `envconfig:"CLICKBRILHE_PAGARME_TIMEOUT" default:"15s"`
}

type FreightConfig struct {
	UnitWeightGrams int `envconfig:"CLICKBRILHE_FREIGHT_UNIT_WEIGHT_GRAMS" default:"500"`
}

// CheckoutConfig bounds the lifetime of abandoned checkout sessions.
type CheckoutConfig struct {
	SessionTTL time.Duration `envconfig:"CLICKBRILHE_CHECKOUT_SESSION_TTL" default:"30m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CLICKBRILHE_AUTO_MIGRATE" default:"false"`
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
