package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Server      ServerConfig      `env:",prefix=SERVER_"`
	Postgres    PostgresConfig    `env:",prefix=POSTGRES_"`
	Redis       RedisConfig       `env:",prefix=REDIS_"`
	JWT         JWTConfig         `env:",prefix=JWT_"`
	WordPress   WordPressConfig   `env:",prefix=WP_"`
	WooCommerce WooCommerceConfig `env:",prefix=WC_"`
	Cache       CacheConfig       `env:",prefix=CACHE_"`
	Security    SecurityConfig    `env:",prefix="`
	CORS        CORSConfig        `env:",prefix=CORS_"`
	Env         string            `env:"ENV,default=development"`
}

type ServerConfig struct {
	Port         string   `env:"PORT,default=3001"`
	Host         string   `env:"HOST,default=0.0.0.0"`
	ReadTimeout  Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout Duration `env:"WRITE_TIMEOUT,default=15s"`
}

type PostgresConfig struct {
	Host           string `env:"HOST,default=localhost"`
	Port           string `env:"PORT,default=5432"`
	User           string `env:"USER,default=mobile_bff"`
	Password       string `env:"PASSWORD,default=mobile_bff_password"`
	DBName         string `env:"DB,default=mobile_bff_db"`
	SSLMode        string `env:"SSLMODE,default=disable"`
	MigrationsPath string `env:"MIGRATIONS_PATH,default="`
}

type RedisConfig struct {
	// Enabled gates the external cache tier and the login rate limiter.
	// With it off the service runs on the in-process cache tier alone.
	Enabled  bool   `env:"ENABLED,default=false"`
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=6379"`
	Password string `env:"PASSWORD,default="`
	DB       int    `env:"DB,default=0"`
}

type JWTConfig struct {
	Secret             string   `env:"SECRET,required"`
	AccessTokenExpiry  Duration `env:"ACCESS_TOKEN_EXPIRY,default=15m"`
	RefreshTokenExpiry Duration `env:"REFRESH_TOKEN_EXPIRY,default=30d"`
}

type WordPressConfig struct {
	BaseURL string   `env:"BASE_URL,required"`
	Timeout Duration `env:"TIMEOUT,default=10s"`
}

type WooCommerceConfig struct {
	BaseURL        string   `env:"BASE_URL,required"`
	ConsumerKey    string   `env:"CONSUMER_KEY,required"`
	ConsumerSecret string   `env:"CONSUMER_SECRET,required"`
	Timeout        Duration `env:"TIMEOUT,default=10s"`
}

type CacheConfig struct {
	OrdersTTL        Duration `env:"ORDERS_TTL,default=2m"`
	OrderDetailTTL   Duration `env:"ORDER_DETAIL_TTL,default=5m"`
	SubscriptionsTTL Duration `env:"SUBSCRIPTIONS_TTL,default=5m"`
	PlanTTL          Duration `env:"PLAN_TTL,default=5m"`
	TreatmentsTTL    Duration `env:"TREATMENTS_TTL,default=10m"`
	AddressesTTL     Duration `env:"ADDRESSES_TTL,default=5m"`
	SweepInterval    Duration `env:"SWEEP_INTERVAL,default=5m"`
}

type SecurityConfig struct {
	BCryptCost        int      `env:"BCRYPT_COST,default=10"`
	RateLimitRequests int      `env:"RATE_LIMIT_REQUESTS,default=10"`
	RateLimitWindow   Duration `env:"RATE_LIMIT_WINDOW,default=1m"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS,default=*"`
	AllowedMethods []string `env:"ALLOWED_METHODS,default=GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowedHeaders []string `env:"ALLOWED_HEADERS,default=Content-Type,Authorization"`
}

// DSN returns PostgreSQL connection string
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

// Address returns Redis connection address
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var config Config

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if len(config.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}

	// bcrypt below cost 10 defeats the point of hashing refresh tokens
	if config.Security.BCryptCost < 10 {
		return nil, fmt.Errorf("BCRYPT_COST must be at least 10")
	}

	return &config, nil
}
