package config

const (
	EnvPrefix = "BARRIBOX"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv       = "BARRIBOX_APP_ENV"
	EnvPort         = "BARRIBOX_APP_PORT"
	EnvLogLevel     = "BARRIBOX_LOG_LEVEL"
	EnvLogFormat    = "BARRIBOX_LOG_FORMAT"
	EnvLogWarnStack = "BARRIBOX_LOG_WARN_STACK"

	EnvStoreDriver    = "BARRIBOX_STORE_DRIVER"
	EnvStoreKeyPrefix = "BARRIBOX_STORE_KEY_PREFIX"
	EnvStoreSeedDemo  = "BARRIBOX_STORE_SEED_DEMO"

	EnvDBDSN      = "BARRIBOX_DB_DSN"
	EnvDBDriver   = "BARRIBOX_DB_DRIVER"
	EnvDBHost     = "BARRIBOX_DB_HOST"
	EnvDBPort     = "BARRIBOX_DB_PORT"
	EnvDBUser     = "BARRIBOX_DB_USER"
	EnvDBPassword = "BARRIBOX_DB_PASSWORD"
	EnvDBName     = "BARRIBOX_DB_NAME"
	EnvDBSSLMode  = "BARRIBOX_DB_SSLMODE"

	EnvRedisURL = "BARRIBOX_REDIS_URL"

	EnvJWTSecret  = "BARRIBOX_JWT_SECRET"
	EnvJWTIssuer  = "BARRIBOX_JWT_ISSUER"
	EnvJWTExpMins = "BARRIBOX_JWT_EXPIRATION_MINUTES"

	EnvGenAIAPIKey  = "BARRIBOX_GENAI_API_KEY"
	EnvGenAIModel   = "BARRIBOX_GENAI_MODEL"
	EnvGenAITimeout = "BARRIBOX_GENAI_TIMEOUT"

	EnvGoogleMapsAPIKey = "BARRIBOX_GOOGLE_MAPS_API_KEY"

	EnvUseSQLite   = "BARRIBOX_USE_SQLITE"
	EnvAutoMigrate = "BARRIBOX_AUTO_MIGRATE"
)

const (
	StoreDriverRedis    = "redis"
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
	StoreDriverMemory   = "memory"
)

var legacyDBEnvVars = []string{
	EnvDBHost,
	EnvDBUser,
	EnvDBName,
}
