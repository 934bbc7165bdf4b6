package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadEnv_Defaults(t *testing.T) {
	cfg := LoadEnv()

	assert.Equal(t, ":8086", cfg.Server.GRPCPort)
	assert.Equal(t, "http://localhost:3000", cfg.Server.BaseURL)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 300, cfg.JSONLD.CacheTTL)
	assert.Equal(t, "string", cfg.JSONLD.MoneyFormat)
	assert.Equal(t, "USD", cfg.JSONLD.DefaultCurrency)
}

func TestLoadEnv_Overrides(t *testing.T) {
	t.Setenv("STOREFRONT_BASE_URL", "https://shop.example.com/")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("JSONLD_CACHE_TTL", "0")
	t.Setenv("JSONLD_INDENT", "true")
	t.Setenv("POSTGRES_MAX_OPEN_CONNS", "not-a-number")

	cfg := LoadEnv()

	assert.Equal(t, "https://shop.example.com", cfg.Server.BaseURL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 0, cfg.JSONLD.CacheTTL)
	assert.True(t, cfg.JSONLD.Indent)
	assert.Equal(t, 10, cfg.Postgres.MaxOpenConns)
}
