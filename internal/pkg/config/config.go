package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, credentials)
// - default: Values common across all environments (timezone, timeout, etc.)
// -----------------------------------------------------------------------------

type Config struct {
	Server    ServerConfig
	DB        DBConfig
	CORS      CORSConfig
	Log       LogConfig
	JWT       JWTConfig
	PayPal    PayPalConfig
	Booking   BookingConfig
	Redis     RedisConfig
	AMQP      AMQPConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"UTC"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"20"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization,Idempotency-Key"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length,Location,X-Request-ID"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"UTC"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"0"`
}

type JWTConfig struct {
	Secret   string        `envconfig:"JWT_SECRET" required:"true"`
	Duration time.Duration `envconfig:"JWT_DURATION" default:"24h"`
}

// Gateway selects the payment gateway implementation: "paypal" or "fake".
type PayPalConfig struct {
	Gateway      string        `envconfig:"PAYMENT_GATEWAY" default:"paypal"`
	BaseURL      string        `envconfig:"PAYPAL_BASE_URL" default:"https://api-m.sandbox.paypal.com"`
	ClientID     string        `envconfig:"PAYPAL_CLIENT_ID"`
	ClientSecret string        `envconfig:"PAYPAL_CLIENT_SECRET"`
	ReturnURL    string        `envconfig:"PAYPAL_RETURN_URL" default:"http://localhost:3000/payments/return"`
	CancelURL    string        `envconfig:"PAYPAL_CANCEL_URL" default:"http://localhost:3000/payments/cancel"`
	Currency     string        `envconfig:"PAYPAL_CURRENCY" default:"USD"`
	Timeout      time.Duration `envconfig:"PAYPAL_TIMEOUT" default:"10s"`
}

type BookingConfig struct {
	PaymentPendingTTL time.Duration `envconfig:"PAYMENT_PENDING_TTL" default:"30m"`
	CaptureLockTTL    time.Duration `envconfig:"CAPTURE_LOCK_TTL" default:"30s"`
	IdempotencyTTL    time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`

	// IdempotencyLeaseTTL bounds how long an unfinished request holds its key.
	IdempotencyLeaseTTL time.Duration `envconfig:"IDEMPOTENCY_LEASE_TTL" default:"2m"`
}

// Addr left empty selects the in-process locker.
type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// URL left empty makes the outbox relay log events instead of publishing them.
type AMQPConfig struct {
	URL          string        `envconfig:"AMQP_URL"`
	Exchange     string        `envconfig:"AMQP_EXCHANGE" default:"booking.events"`
	PollInterval time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"2s"`
	BatchSize    int           `envconfig:"OUTBOX_BATCH_SIZE" default:"50"`
	MaxAttempts  int           `envconfig:"OUTBOX_MAX_ATTEMPTS" default:"5"`
}

type RateLimitConfig struct {
	RPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"5"`
	Burst int     `envconfig:"RATE_LIMIT_BURST" default:"10"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks cross-field rules envconfig tags cannot express.
func (c Config) Validate() error {
	var problems []error

	switch c.PayPal.Gateway {
	case "fake":
	case "paypal":
		if c.PayPal.ClientID == "" || c.PayPal.ClientSecret == "" {
			problems = append(problems, errors.New("PAYPAL_CLIENT_ID and PAYPAL_CLIENT_SECRET are required for the paypal gateway"))
		}
	default:
		problems = append(problems, fmt.Errorf("PAYMENT_GATEWAY must be paypal or fake, got %q", c.PayPal.Gateway))
	}
	if len(c.PayPal.Currency) != 3 {
		problems = append(problems, fmt.Errorf("PAYPAL_CURRENCY must be an ISO 4217 code, got %q", c.PayPal.Currency))
	}
	if len(c.JWT.Secret) < 8 {
		problems = append(problems, errors.New("JWT_SECRET must be at least 8 characters"))
	}
	if c.Booking.PaymentPendingTTL <= 0 || c.Booking.CaptureLockTTL <= 0 || c.Booking.IdempotencyTTL <= 0 || c.Booking.IdempotencyLeaseTTL <= 0 {
		problems = append(problems, errors.New("booking TTLs must be positive"))
	}
	if c.Booking.IdempotencyLeaseTTL > c.Booking.IdempotencyTTL {
		problems = append(problems, errors.New("IDEMPOTENCY_LEASE_TTL must not exceed IDEMPOTENCY_TTL"))
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		problems = append(problems, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"))
	}
	if c.AMQP.BatchSize <= 0 || c.AMQP.MaxAttempts <= 0 {
		problems = append(problems, errors.New("OUTBOX_BATCH_SIZE and OUTBOX_MAX_ATTEMPTS must be positive"))
	}

	return errors.Join(problems...)
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "UTC",
			MaxConns: 10,
		},
		Log: LogConfig{
			Level:      "error", // Error level only for tests
			TimeZone:   "UTC",
			TimeFormat: "2006-01-02 15:04:05.000",
		},
		JWT: JWTConfig{
			Secret:   "test-secret",
			Duration: time.Hour,
		},
		PayPal: PayPalConfig{
			Gateway:  "fake",
			Currency: "USD",
			Timeout:  time.Second,
		},
		Booking: BookingConfig{
			PaymentPendingTTL:   30 * time.Minute,
			CaptureLockTTL:      30 * time.Second,
			IdempotencyTTL:      24 * time.Hour,
			IdempotencyLeaseTTL: 2 * time.Minute,
		},
		AMQP: AMQPConfig{
			Exchange:     "booking.events",
			PollInterval: time.Hour,
			BatchSize:    50,
			MaxAttempts:  5,
		},
		RateLimit: RateLimitConfig{
			RPS:   1000,
			Burst: 1000,
		},
	}
}
