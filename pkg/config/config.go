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
	DB           DBConfig
	Redis        RedisConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Sendgrid     SendgridConfig
	Dispatch     DispatchConfig
	Schedule     ScheduleConfig
	Eventing     EventingConfig
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
	Env          string `envconfig:"ORDENA_APP_ENV" required:"true"`
	Port         string `envconfig:"ORDENA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ORDENA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ORDENA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"ORDENA_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"ORDENA_DB_DSN"`
	Driver string `envconfig:"ORDENA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ORDENA_DB_HOST"`
	LegacyPort     int    `envconfig:"ORDENA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ORDENA_DB_USER"`
	LegacyPassword string `envconfig:"ORDENA_DB_PASSWORD"`
	LegacyName     string `envconfig:"ORDENA_DB_NAME"`
	LegacySSLMode  string `envconfig:"ORDENA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ORDENA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ORDENA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ORDENA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ORDENA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ORDENA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ORDENA_REDIS_ADDR"`
	Password     string        `envconfig:"ORDENA_REDIS_PASSWORD"`
	DB           int           `envconfig:"ORDENA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ORDENA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ORDENA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ORDENA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ORDENA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ORDENA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"ORDENA_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"ORDENA_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"ORDENA_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DocumentEventsTopic        string `envconfig:"ORDENA_PUBSUB_DOCUMENT_EVENTS_TOPIC" default:"ordena-document-events"`
	DocumentEventsSubscription string `envconfig:"ORDENA_PUBSUB_DOCUMENT_EVENTS_SUBSCRIPTION" required:"true"`
}

type SendgridConfig struct {
	APIKey      string `envconfig:"ORDENA_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"ORDENA_SENDGRID_FROM_EMAIL" default:"pedidos@ordena.delivery"`
}

// DispatchConfig carries the courier assignment and action-link business rules.
type DispatchConfig struct {
	// Phone numbers of the standing fallback couriers, checked in order when no
	// coverage zone resolves an assignee.
	FallbackCourierPhones []string      `envconfig:"ORDENA_DISPATCH_FALLBACK_PHONES" default:"+584142345678,+584129876543"`
	DashboardURL          string        `envconfig:"ORDENA_DISPATCH_DASHBOARD_URL" default:"https://app.ordena.delivery/delivery-action"`
	ActionTokenSecret     string        `envconfig:"ORDENA_DISPATCH_ACTION_TOKEN_SECRET"`
	ActionTokenTTL        time.Duration `envconfig:"ORDENA_DISPATCH_ACTION_TOKEN_TTL" default:"72h"`
}

// ScheduleConfig drives the periodic jobs and the platform operating timezone.
type ScheduleConfig struct {
	ReminderInterval time.Duration `envconfig:"ORDENA_SCHEDULE_REMINDER_INTERVAL" default:"5m"`
	ReminderLead     time.Duration `envconfig:"ORDENA_SCHEDULE_REMINDER_LEAD" default:"30m"`
	DigestAt         string        `envconfig:"ORDENA_SCHEDULE_DIGEST_AT" default:"07:00"`
	Timezone         string        `envconfig:"ORDENA_TIMEZONE" default:"America/Caracas"`
}

// Location resolves the platform operating timezone. The platform runs on a
// single fixed-offset zone; the host machine's local timezone is never used.
func (s ScheduleConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}

type EventingConfig struct {
	IdempotencyTTL time.Duration `envconfig:"ORDENA_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ORDENA_AUTO_MIGRATE" default:"false"`
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
