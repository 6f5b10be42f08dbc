package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Monitor       MonitorConfig
	Webhook       WebhookConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"PHANTOM_APP_ENV" required:"true"`
	Port         string `envconfig:"PHANTOM_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PHANTOM_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PHANTOM_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PHANTOM_DB_DSN"`
	Driver string `envconfig:"PHANTOM_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PHANTOM_DB_HOST"`
	LegacyPort     int    `envconfig:"PHANTOM_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PHANTOM_DB_USER"`
	LegacyPassword string `envconfig:"PHANTOM_DB_PASSWORD"`
	LegacyName     string `envconfig:"PHANTOM_DB_NAME"`
	LegacySSLMode  string `envconfig:"PHANTOM_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PHANTOM_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PHANTOM_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PHANTOM_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PHANTOM_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PHANTOM_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PHANTOM_REDIS_ADDR"`
	Password     string        `envconfig:"PHANTOM_REDIS_PASSWORD"`
	DB           int           `envconfig:"PHANTOM_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PHANTOM_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PHANTOM_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PHANTOM_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PHANTOM_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PHANTOM_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"PHANTOM_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PHANTOM_JWT_ISSUER" default:"phantom"`
	ExpirationMinutes int    `envconfig:"PHANTOM_JWT_EXPIRATION_MINUTES" default:"720"`
}

// Expiration returns the access token lifetime configured in minutes.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"PHANTOM_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"PHANTOM_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"PHANTOM_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"PHANTOM_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"PHANTOM_ARGON_KEY_LEN" default:"32"`

	OperatorUsername string `envconfig:"PHANTOM_OPERATOR_USERNAME" default:"operator"`
	OperatorHash     string `envconfig:"PHANTOM_OPERATOR_PASSWORD_HASH"`
}

type AuthRateLimitConfig struct {
	LoginWindow    time.Duration `envconfig:"PHANTOM_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginUserLimit int           `envconfig:"PHANTOM_AUTH_RATE_LIMIT_LOGIN_USER_LIMIT" default:"5"`
	LoginIPLimit   int           `envconfig:"PHANTOM_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type MonitorConfig struct {
	PollInterval    time.Duration `envconfig:"PHANTOM_MONITOR_POLL_INTERVAL" default:"3s"`
	PageLimit       int           `envconfig:"PHANTOM_MONITOR_PAGE_LIMIT" default:"250"`
	MaxPages        int           `envconfig:"PHANTOM_MONITOR_MAX_PAGES" default:"10"`
	RequestTimeout  time.Duration `envconfig:"PHANTOM_MONITOR_REQUEST_TIMEOUT" default:"15s"`
	EventBufferSize int           `envconfig:"PHANTOM_MONITOR_EVENT_BUFFER" default:"1000"`
	SeenProductTTL  time.Duration `envconfig:"PHANTOM_MONITOR_SEEN_PRODUCT_TTL" default:"168h"`
}

type WebhookConfig struct {
	DiscordURL     string        `envconfig:"PHANTOM_DISCORD_WEBHOOK_URL"`
	RequestTimeout time.Duration `envconfig:"PHANTOM_WEBHOOK_REQUEST_TIMEOUT" default:"10s"`
	MaxRetries     int           `envconfig:"PHANTOM_WEBHOOK_MAX_RETRIES" default:"3"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"PHANTOM_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"PHANTOM_AUTO_MIGRATE" default:"false"`
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
