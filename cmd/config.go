package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"time"

	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/services"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config is read from the environment, after an optional .env file.
// Leaving DB_HOST empty keeps state in memory; leaving RABBITMQ_URL or
// JWT_SECRET empty turns the feed fan-out or API authentication off.
type Config struct {
	HTTPPort string `env:"HTTP_PORT" envDefault:"8082"`
	AppEnv   string `env:"APP_ENV" envDefault:"prod"`
	LogLevel string `env:"LOG_LEVEL"`

	AgentID         kernel.UUID     `env:"AGENT_ID,required"`
	OfferWindow     time.Duration   `env:"OFFER_WINDOW" envDefault:"30s"`
	RefreshSchedule string          `env:"REFRESH_SCHEDULE" envDefault:"@every 30s"`
	TimeZone        string          `env:"TIME_ZONE" envDefault:"UTC"`
	CommissionRate  decimal.Decimal `env:"COMMISSION_RATE" envDefault:"0.10"`
	BaseFee         int64           `env:"BASE_FEE" envDefault:"2000"`
	FeedCapacity    int             `env:"FEED_CAPACITY" envDefault:"200"`

	OrderServiceURL     string        `env:"ORDER_SERVICE_URL,required"`
	OrderServiceTimeout time.Duration `env:"ORDER_SERVICE_TIMEOUT" envDefault:"5s"`
	// LocalOTP generates delivery codes in-process instead of asking the order service.
	LocalOTP bool `env:"LOCAL_OTP" envDefault:"false"`

	DBHost     string `env:"DB_HOST"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME"`
	DBSslMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	RabbitMQURL          string `env:"RABBITMQ_URL"`
	NotificationExchange string `env:"NOTIFICATION_EXCHANGE" envDefault:"notifications_fanout"`

	JWTSecret string `env:"JWT_SECRET"`
}

// LoadConfig loads the given .env files, if present, then parses the environment.
// Variables already set in the environment win over the files.
func LoadConfig(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.ParseWithFuncs(&cfg, map[reflect.Type]env.ParserFunc{
		reflect.TypeOf(kernel.UUID{}): func(v string) (any, error) {
			return kernel.UUIDFromString(v)
		},
		reflect.TypeOf(decimal.Decimal{}): func(v string) (any, error) {
			return decimal.NewFromString(v)
		},
	}); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if _, err := cfg.Location(); err != nil {
		return Config{}, fmt.Errorf("time zone: %w", err)
	}
	if _, err := services.NewCommissionCalculator(cfg.CommissionRate, kernel.Money(cfg.BaseFee)); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Location is the zone in which earnings days, weeks and months start.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.TimeZone)
}

// UsesDatabase reports whether a Postgres instance is configured.
func (c Config) UsesDatabase() bool {
	return c.DBHost != ""
}

func (c Config) Postgres() postgres.Config {
	return postgres.Config{
		Host:     c.DBHost,
		Port:     c.DBPort,
		User:     c.DBUser,
		Password: c.DBPassword,
		Name:     c.DBName,
		SSLMode:  c.DBSslMode,
	}
}
