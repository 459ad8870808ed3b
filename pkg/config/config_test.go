package config_test

import (
	"testing"
	"time"

	"github.com/jhoicas/printshop-api/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("TAX_RATE", "0.0825")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("S3_USE_PATH_STYLE", "true")
	t.Setenv("CATALOG_CACHE_TTL", "90s")
	t.Setenv("STORE", "Memory")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.App.Env)
	assert.Equal(t, 6543, cfg.DB.Port)
	assert.Equal(t, "0.0825", cfg.Pricing.TaxRate.String())
	assert.Equal(t, 2.5, cfg.HTTP.RateLimitRPS)
	assert.True(t, cfg.Storage.UsePathStyle)
	assert.Equal(t, 90*time.Second, cfg.Cache.CatalogTTL)
	assert.Equal(t, "memory", cfg.App.Store)
}

func TestLoad_BadTaxRate(t *testing.T) {
	t.Setenv("TAX_RATE", "ten percent")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss", DBName: "printshop", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss@db:5432/printshop?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}

func TestPricingConfig_EstimateValidity(t *testing.T) {
	assert.Equal(t, 72*time.Hour, config.PricingConfig{EstimateValidityDays: 3}.EstimateValidity())
}
