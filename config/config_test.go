package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Fomkes/uae-water-delivery1-sub001/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, core.Development, cfg.Env())
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorageRedis, cfg.Storage)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, "sqlite3", cfg.Catalog.Driver)
	assert.True(t, cfg.Catalog.Seed)
	assert.Equal(t, AuthStatic, cfg.Admin.Auth)
	assert.Equal(t, "admin", cfg.Admin.Username)
	assert.Equal(t, "admin123", cfg.Admin.Password)
	assert.Equal(t, 12*time.Hour, cfg.Admin.SessionTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Cart.TTL)
	assert.Equal(t, 30*time.Minute, cfg.Cart.IdleEviction)
	assert.Equal(t, "water_orders", cfg.RabbitMQ.Queue)
	assert.Empty(t, cfg.RabbitMQ.URL)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("REDIS_URL", "redis://cache:6379/2")
	t.Setenv("CATALOG_DRIVER", "postgres")
	t.Setenv("ADMIN_AUTH", "database")
	t.Setenv("CART_TTL", "48h")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Env().IsProduction())
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, "redis://cache:6379/2", cfg.Redis.URL)
	assert.Equal(t, "postgres", cfg.Catalog.Driver)
	assert.Equal(t, AuthDatabase, cfg.Admin.Auth)
	assert.Equal(t, 48*time.Hour, cfg.Cart.TTL)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=9090\nRABBITMQ_QUEUE=orders_test\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("PORT")
		os.Unsetenv("RABBITMQ_QUEUE")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "orders_test", cfg.RabbitMQ.Queue)
}

func TestLoadMissingDotEnvIsFine(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}

func TestValidate(t *testing.T) {
	valid, err := Load("")
	require.NoError(t, err)

	cases := map[string]func(c *AppConfig){
		"storage":         func(c *AppConfig) { c.Storage = "disk" },
		"driver":          func(c *AppConfig) { c.Catalog.Driver = "oracle" },
		"auth mode":       func(c *AppConfig) { c.Admin.Auth = "ldap" },
		"username":        func(c *AppConfig) { c.Admin.Username = "" },
		"no password":     func(c *AppConfig) { c.Admin.Password = "" },
		"database no pwd": func(c *AppConfig) { c.Admin.Auth = AuthDatabase; c.Admin.Password = ""; c.Admin.PasswordHash = "$2a$10$x" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := valid
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}

	hashOnly := valid
	hashOnly.Admin.Password = ""
	hashOnly.Admin.PasswordHash = "$2a$10$x"
	assert.NoError(t, hashOnly.Validate())
}
