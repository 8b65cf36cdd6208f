package config

import (
	"fmt"
	"time"

	"github.com/Fomkes/uae-water-delivery1-sub001/internal/core"
	pkgredis "github.com/Fomkes/uae-water-delivery1-sub001/pkg/redis"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

// AppConfig holds every tunable of the storefront, read from the environment
// (optionally seeded from a .env file).
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"development"`
	Port        string `envconfig:"PORT" default:"8080"`

	// Storage selects where the cart and admin records are mirrored.
	Storage string `envconfig:"STORAGE_BACKEND" default:"redis"`
	Redis   pkgredis.Config

	Catalog  CatalogConfig
	Admin    AdminConfig
	Cart     CartConfig
	RabbitMQ RabbitMQConfig
}

type CatalogConfig struct {
	Driver string `envconfig:"CATALOG_DRIVER" default:"sqlite3"`
	DSN    string `envconfig:"CATALOG_DSN" default:"file:storefront.db?cache=shared"`
	Seed   bool   `envconfig:"CATALOG_SEED" default:"true"`
}

const (
	AuthStatic   = "static"
	AuthDatabase = "database"
)

type AdminConfig struct {
	// Auth selects the credential check: one configured pair ("static") or
	// the admin_users table of the catalog database ("database"), bootstrapped
	// with the configured pair.
	Auth     string `envconfig:"ADMIN_AUTH" default:"static"`
	Username string `envconfig:"ADMIN_USERNAME" default:"admin"`
	// Password is hashed at startup. PasswordHash wins when both are set.
	Password     string        `envconfig:"ADMIN_PASSWORD" default:"admin123"`
	PasswordHash string        `envconfig:"ADMIN_PASSWORD_HASH"`
	Email        string        `envconfig:"ADMIN_EMAIL" default:"admin@example.com"`
	SessionTTL   time.Duration `envconfig:"ADMIN_SESSION_TTL" default:"12h"`
}

type CartConfig struct {
	TTL           time.Duration `envconfig:"CART_TTL" default:"168h"`
	IdleEviction  time.Duration `envconfig:"CART_IDLE_EVICTION" default:"30m"`
	SweepInterval time.Duration `envconfig:"CART_SWEEP_INTERVAL" default:"5m"`
}

type RabbitMQConfig struct {
	URL      string `envconfig:"RABBITMQ_URL"`
	Queue    string `envconfig:"RABBITMQ_QUEUE" default:"water_orders"`
	PoolSize int    `envconfig:"RABBITMQ_POOL_SIZE" default:"4"`
}

// Load reads envFile when it exists and then processes the environment.
func Load(envFile string) (AppConfig, error) {
	var cfg AppConfig
	if envFile != "" {
		// a missing .env is normal outside local development
		_ = godotenv.Load(envFile)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("process environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c AppConfig) Env() core.Environment {
	return core.ParseEnvironment(c.Environment)
}

func (c AppConfig) Validate() error {
	switch c.Storage {
	case StorageRedis, StorageMemory:
	default:
		return fmt.Errorf("STORAGE_BACKEND must be %q or %q, got %q", StorageRedis, StorageMemory, c.Storage)
	}
	switch c.Catalog.Driver {
	case "postgres", "sqlite3", "mysql":
	default:
		return fmt.Errorf("CATALOG_DRIVER %q is not supported", c.Catalog.Driver)
	}
	switch c.Admin.Auth {
	case AuthStatic:
	case AuthDatabase:
		if c.Admin.Password == "" {
			return fmt.Errorf("ADMIN_PASSWORD is required to bootstrap database admins")
		}
	default:
		return fmt.Errorf("ADMIN_AUTH must be %q or %q, got %q", AuthStatic, AuthDatabase, c.Admin.Auth)
	}
	if c.Admin.Username == "" {
		return fmt.Errorf("ADMIN_USERNAME must not be empty")
	}
	if c.Admin.Password == "" && c.Admin.PasswordHash == "" {
		return fmt.Errorf("one of ADMIN_PASSWORD or ADMIN_PASSWORD_HASH is required")
	}
	return nil
}
