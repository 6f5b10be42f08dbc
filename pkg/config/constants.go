package config

// EnvPrefix is the envconfig prefix for every variable the service reads.
const EnvPrefix = "PHANTOM"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv    = "PHANTOM_APP_ENV"
	EnvPort      = "PHANTOM_APP_PORT"
	EnvDBDSN     = "PHANTOM_DB_DSN"
	EnvDBHost    = "PHANTOM_DB_HOST"
	EnvDBUser    = "PHANTOM_DB_USER"
	EnvDBName    = "PHANTOM_DB_NAME"
	EnvRedisURL  = "PHANTOM_REDIS_URL"
	EnvJWTSecret = "PHANTOM_JWT_SECRET"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
