package config

// EnvPrefix namespaces all OfferHive environment variables.
const EnvPrefix = "OFFERHIVE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv     = "OFFERHIVE_APP_ENV"
	EnvPort       = "OFFERHIVE_APP_PORT"
	EnvDBDSN      = "OFFERHIVE_DB_DSN"
	EnvDBHost     = "OFFERHIVE_DB_HOST"
	EnvDBUser     = "OFFERHIVE_DB_USER"
	EnvDBName     = "OFFERHIVE_DB_NAME"
	EnvRedisURL   = "OFFERHIVE_REDIS_URL"
	EnvJWTSecret  = "OFFERHIVE_JWT_SECRET"
	EnvJWTIssuer  = "OFFERHIVE_JWT_ISSUER"
	EnvJWTExpMins = "OFFERHIVE_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
