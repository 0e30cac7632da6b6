package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	Store        StoreConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	GenAI        GenAIConfig
	GoogleMaps   GoogleMapsConfig
	RateLimit    RateLimitConfig
	Maintenance  MaintenanceConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Store.validate(); err != nil {
		return nil, err
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = StoreDriverSQLite
	}
	if cfg.Store.NeedsDB() {
		if cfg.Store.Driver == StoreDriverSQLite {
			cfg.DB.Driver = StoreDriverSQLite
		}
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	if cfg.Store.Driver == StoreDriverRedis && strings.TrimSpace(cfg.Redis.URL) == "" && strings.TrimSpace(cfg.Redis.Address) == "" {
		return nil, fmt.Errorf("%s is required when %s=%s", EnvRedisURL, EnvStoreDriver, StoreDriverRedis)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BARRIBOX_APP_ENV" required:"true"`
	Port         string `envconfig:"BARRIBOX_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BARRIBOX_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"BARRIBOX_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"BARRIBOX_LOG_WARN_STACK" default:"false"`
	// CORSOrigins are allowed in addition to the local dev servers.
	CORSOrigins []string `envconfig:"BARRIBOX_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"BARRIBOX_SERVICE_KIND" default:"api"`
}

// StoreConfig selects the key-value backend that holds users, orders,
// sessions and tickets.
type StoreConfig struct {
	Driver    string `envconfig:"BARRIBOX_STORE_DRIVER" default:"redis"`
	KeyPrefix string `envconfig:"BARRIBOX_STORE_KEY_PREFIX" default:"barribox_v6"`
	SeedDemo  bool   `envconfig:"BARRIBOX_STORE_SEED_DEMO" default:"true"`
}

// NeedsDB reports whether the store driver is backed by gorm.
func (s StoreConfig) NeedsDB() bool {
	switch s.normalizedDriver() {
	case StoreDriverPostgres, StoreDriverSQLite:
		return true
	}
	return false
}

func (s StoreConfig) normalizedDriver() string {
	return strings.ToLower(strings.TrimSpace(s.Driver))
}

func (s *StoreConfig) validate() error {
	s.Driver = s.normalizedDriver()
	switch s.Driver {
	case StoreDriverRedis, StoreDriverPostgres, StoreDriverSQLite, StoreDriverMemory:
	default:
		return fmt.Errorf("%s must be one of redis, postgres, sqlite, memory (got %q)", EnvStoreDriver, s.Driver)
	}
	if strings.TrimSpace(s.KeyPrefix) == "" {
		return fmt.Errorf("%s cannot be empty", EnvStoreKeyPrefix)
	}
	return nil
}

type DBConfig struct {
	DSN    string `envconfig:"BARRIBOX_DB_DSN"`
	Driver string `envconfig:"BARRIBOX_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BARRIBOX_DB_HOST"`
	LegacyPort     int    `envconfig:"BARRIBOX_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BARRIBOX_DB_USER"`
	LegacyPassword string `envconfig:"BARRIBOX_DB_PASSWORD"`
	LegacyName     string `envconfig:"BARRIBOX_DB_NAME"`
	LegacySSLMode  string `envconfig:"BARRIBOX_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BARRIBOX_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"BARRIBOX_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"BARRIBOX_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BARRIBOX_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BARRIBOX_REDIS_URL"`
	Address      string        `envconfig:"BARRIBOX_REDIS_ADDR"`
	Password     string        `envconfig:"BARRIBOX_REDIS_PASSWORD"`
	DB           int           `envconfig:"BARRIBOX_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BARRIBOX_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BARRIBOX_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BARRIBOX_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BARRIBOX_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BARRIBOX_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any redis endpoint is configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"BARRIBOX_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"BARRIBOX_JWT_ISSUER" default:"barribox"`
	ExpirationMinutes int    `envconfig:"BARRIBOX_JWT_EXPIRATION_MINUTES" default:"1440"`
}

// SessionTTL mirrors the access token lifetime so a session key never
// outlives its token.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type GenAIConfig struct {
	APIKey  string        `envconfig:"BARRIBOX_GENAI_API_KEY"`
	Model   string        `envconfig:"BARRIBOX_GENAI_MODEL" default:"gemini-3-flash-preview"`
	Timeout time.Duration `envconfig:"BARRIBOX_GENAI_TIMEOUT" default:"20s"`
}

// Enabled reports whether the assistant can reach the generation API.
func (g GenAIConfig) Enabled() bool {
	return strings.TrimSpace(g.APIKey) != ""
}

type GoogleMapsConfig struct {
	APIKey string `envconfig:"BARRIBOX_GOOGLE_MAPS_API_KEY"`
}

type RateLimitConfig struct {
	AssistantWindow time.Duration `envconfig:"BARRIBOX_RATE_LIMIT_ASSISTANT_WINDOW" default:"1m"`
	AssistantLimit  int           `envconfig:"BARRIBOX_RATE_LIMIT_ASSISTANT_LIMIT" default:"20"`
	SessionWindow   time.Duration `envconfig:"BARRIBOX_RATE_LIMIT_SESSION_WINDOW" default:"5m"`
	SessionIPLimit  int           `envconfig:"BARRIBOX_RATE_LIMIT_SESSION_IP_LIMIT" default:"30"`
}

// MaintenanceConfig drives the in-process job scheduler.
type MaintenanceConfig struct {
	Enabled  bool          `envconfig:"BARRIBOX_MAINTENANCE_ENABLED" default:"true"`
	Interval time.Duration `envconfig:"BARRIBOX_MAINTENANCE_INTERVAL" default:"15m"`
	LockKey  string        `envconfig:"BARRIBOX_MAINTENANCE_LOCK_KEY" default:"bbx:cron:lock"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"BARRIBOX_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"BARRIBOX_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if strings.EqualFold(db.Driver, StoreDriverSQLite) {
		db.DSN = "file:barribox.db?cache=shared"
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
