package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_Load_Defaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, ":8081", cfg.HTTPAddr)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, int32(8), cfg.PGMaxConns)
	assert.Equal(t, 5*time.Minute, cfg.CatalogTTL)
	assert.Equal(t, "cache-sync", cfg.WorkerGroup)
	assert.Equal(t, 4, cfg.WorkerConcurrency)
}

func Test_Load_Overrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092 ,")
	t.Setenv("CATALOG_CACHE_TTL", "30s")
	t.Setenv("PG_MAX_CONNS", "16")
	t.Setenv("WORKER_CONCURRENCY", "12")

	cfg := Load()
	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 30*time.Second, cfg.CatalogTTL)
	assert.Equal(t, int32(16), cfg.PGMaxConns)
	assert.Equal(t, 12, cfg.WorkerConcurrency)
}

func Test_Load_BadValuesFallBack(t *testing.T) {
	t.Setenv("CATALOG_CACHE_TTL", "soon")
	t.Setenv("PG_MAX_CONNS", "many")
	t.Setenv("WORKER_CONCURRENCY", "lots")

	cfg := Load()
	assert.Equal(t, 5*time.Minute, cfg.CatalogTTL)
	assert.Equal(t, int32(8), cfg.PGMaxConns)
	assert.Equal(t, 4, cfg.WorkerConcurrency)
}
