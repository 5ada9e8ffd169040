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
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	FeatureFlags FeatureFlagsConfig
	Square       SquareConfig
	Gateway      GatewayConfig
	Webhook      WebhookConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
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
	Env          string `envconfig:"OFFERHIVE_APP_ENV" required:"true"`
	Port         string `envconfig:"OFFERHIVE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"OFFERHIVE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"OFFERHIVE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"OFFERHIVE_DB_DSN"`
	Driver string `envconfig:"OFFERHIVE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"OFFERHIVE_DB_HOST"`
	LegacyPort     int    `envconfig:"OFFERHIVE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"OFFERHIVE_DB_USER"`
	LegacyPassword string `envconfig:"OFFERHIVE_DB_PASSWORD"`
	LegacyName     string `envconfig:"OFFERHIVE_DB_NAME"`
	LegacySSLMode  string `envconfig:"OFFERHIVE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"OFFERHIVE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"OFFERHIVE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"OFFERHIVE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"OFFERHIVE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"OFFERHIVE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"OFFERHIVE_REDIS_ADDR"`
	Password     string        `envconfig:"OFFERHIVE_REDIS_PASSWORD"`
	DB           int           `envconfig:"OFFERHIVE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"OFFERHIVE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"OFFERHIVE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"OFFERHIVE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"OFFERHIVE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"OFFERHIVE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"OFFERHIVE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"OFFERHIVE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"OFFERHIVE_JWT_EXPIRATION_MINUTES" required:"true"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"OFFERHIVE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"OFFERHIVE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"OFFERHIVE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"OFFERHIVE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"OFFERHIVE_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"OFFERHIVE_AUTO_MIGRATE" default:"false"`
}

type SquareConfig struct {
	AccessToken   string `envconfig:"OFFERHIVE_SQUARE_ACCESS_TOKEN"`
	Environment   string `envconfig:"OFFERHIVE_SQUARE_ENV" default:"sandbox"`
	WebhookSecret string `envconfig:"OFFERHIVE_SQUARE_WEBHOOK_SECRET"`
	LocationID    string `envconfig:"OFFERHIVE_SQUARE_LOCATION_ID"`
}

// Env returns the normalized Square environment (sandbox/production).
func (s SquareConfig) Env() string {
	env := strings.TrimSpace(strings.ToLower(s.Environment))
	if env == "" {
		return "sandbox"
	}
	return env
}

type GatewayConfig struct {
	CallTimeout time.Duration `envconfig:"OFFERHIVE_GATEWAY_CALL_TIMEOUT" default:"10s"`
}

type WebhookConfig struct {
	IdempotencyTTL time.Duration `envconfig:"OFFERHIVE_WEBHOOK_IDEMPOTENCY_TTL" default:"168h"`
}

type RateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"OFFERHIVE_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"OFFERHIVE_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"OFFERHIVE_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"OFFERHIVE_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"OFFERHIVE_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"OFFERHIVE_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
	SubmitWindow       time.Duration `envconfig:"OFFERHIVE_RATE_LIMIT_SUBMIT_WINDOW" default:"1m"`
	SubmitIPLimit      int           `envconfig:"OFFERHIVE_RATE_LIMIT_SUBMIT_IP_LIMIT" default:"30"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"OFFERHIVE_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
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
