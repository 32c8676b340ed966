package config

// EnvPrefix is empty because every field names its variable explicitly.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv   = "ORDENA_APP_ENV"
	EnvPort     = "ORDENA_APP_PORT"
	EnvDBDSN    = "ORDENA_DB_DSN"
	EnvDBHost   = "ORDENA_DB_HOST"
	EnvDBUser   = "ORDENA_DB_USER"
	EnvDBName   = "ORDENA_DB_NAME"
	EnvRedisURL = "ORDENA_REDIS_URL"

	EnvGCPProjectID  = "ORDENA_GCP_PROJECT_ID"
	EnvDocumentsSub  = "ORDENA_PUBSUB_DOCUMENT_EVENTS_SUBSCRIPTION"
	EnvSendgridKey   = "ORDENA_SENDGRID_API_KEY"
	EnvTimezone      = "ORDENA_TIMEZONE"
	EnvFallbackPhone = "ORDENA_DISPATCH_FALLBACK_PHONES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
