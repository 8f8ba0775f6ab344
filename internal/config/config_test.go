package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8085, cfg.Server.Port)
	assert.Equal(t, 300*time.Millisecond, cfg.Search.Debounce())
	assert.Equal(t, 2, cfg.Search.MinQueryLength)
	assert.Equal(t, 3, cfg.Search.MaxCategories)
	assert.Equal(t, 8, cfg.Search.MaxProducts)
	assert.Equal(t, 5, cfg.Search.RecentSearchLimit)
	assert.Equal(t, "0.18", cfg.Cart.TaxRate)
	assert.Equal(t, 999, cfg.Cart.MaxLineQuantity)
	assert.Equal(t, "", cfg.Database.Host)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yaml := []byte("server:\n  port: 9000\ncart:\n  delivery_fee: 50\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))
	t.Setenv("CART_DELIVERY_FEE", "75")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, int64(75), cfg.Cart.DeliveryFee)
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr())
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Catalog:   CatalogConfig{DefaultLimit: 20, MaxLimit: 100},
			Cart:      CartConfig{MaxLineQuantity: 999},
			RateLimit: RateLimitConfig{RequestsPerSecond: 1, Burst: 1},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "zero default limit", mutate: func(c *Config) { c.Catalog.DefaultLimit = 0 }, wantErr: true},
		{name: "max below default", mutate: func(c *Config) { c.Catalog.MaxLimit = 10 }, wantErr: true},
		{name: "negative fee", mutate: func(c *Config) { c.Cart.DeliveryFee = -1 }, wantErr: true},
		{name: "zero line quantity", mutate: func(c *Config) { c.Cart.MaxLineQuantity = 0 }, wantErr: true},
		{name: "no rate", mutate: func(c *Config) { c.RateLimit.Burst = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
