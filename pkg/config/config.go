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
	FeatureFlags FeatureFlagsConfig
	Stripe       StripeConfig
	Mailer       MailerConfig
	GCP          GCPConfig
	GCS          GCSConfig
	Orders       OrdersConfig
	Cron         CronConfig
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
	Env          string `envconfig:"GIGLANE_APP_ENV" required:"true"`
	Port         string `envconfig:"GIGLANE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GIGLANE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GIGLANE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"GIGLANE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"GIGLANE_DB_DSN"`
	Driver string `envconfig:"GIGLANE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GIGLANE_DB_HOST"`
	LegacyPort     int    `envconfig:"GIGLANE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GIGLANE_DB_USER"`
	LegacyPassword string `envconfig:"GIGLANE_DB_PASSWORD"`
	LegacyName     string `envconfig:"GIGLANE_DB_NAME"`
	LegacySSLMode  string `envconfig:"GIGLANE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GIGLANE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GIGLANE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GIGLANE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GIGLANE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GIGLANE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"GIGLANE_REDIS_ADDR"`
	Password     string        `envconfig:"GIGLANE_REDIS_PASSWORD"`
	DB           int           `envconfig:"GIGLANE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GIGLANE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GIGLANE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GIGLANE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GIGLANE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GIGLANE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"GIGLANE_AUTO_MIGRATE" default:"false"`
}

type StripeConfig struct {
	APIKey string `envconfig:"GIGLANE_STRIPE_API_KEY"`
	Env    string `envconfig:"GIGLANE_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type MailerConfig struct {
	APIKey  string `envconfig:"GIGLANE_MAILER_API_KEY"`
	From    string `envconfig:"GIGLANE_MAILER_FROM"`
	SendURL string `envconfig:"GIGLANE_MAILER_SEND_URL" default:"https://api.useplunk.com/v1/send"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"GIGLANE_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"GIGLANE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"GIGLANE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName string `envconfig:"GIGLANE_GCS_BUCKET_NAME"`
}

type OrdersConfig struct {
	AutoCompleteAfter      time.Duration `envconfig:"GIGLANE_ORDERS_AUTO_COMPLETE_AFTER" default:"72h"`
	CustomPackageRevisions int           `envconfig:"GIGLANE_ORDERS_CUSTOM_PACKAGE_REVISIONS" default:"5"`
	ReferralReward         string        `envconfig:"GIGLANE_ORDERS_REFERRAL_REWARD" default:"1"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"GIGLANE_CRON_INTERVAL" default:"5m"`
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
