package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Evacuacion-api/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.StoreMemory, cfg.Ledger.StoreBackend)
	assert.Equal(t, config.LockLocal, cfg.Ledger.LockBackend)
	assert.Equal(t, 5*time.Second, cfg.Ledger.LockTimeout)
	assert.Equal(t, 0.50, cfg.Risk.WeightOccupancy)
	assert.Equal(t, 0.40, cfg.Risk.WeightPredicted)
	assert.Equal(t, 0.10, cfg.Risk.WeightVulnerability)
	assert.Equal(t, 60, cfg.Risk.DefaultWindow)
	assert.Equal(t, 60, cfg.Risk.DefaultHorizon)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("STORE_BACKEND", "Postgres")
	t.Setenv("LOCK_BACKEND", "redis")
	t.Setenv("LEDGER_LOCK_TIMEOUT", "750")
	t.Setenv("REDIS_LOCK_TTL", "10s")
	t.Setenv("RISK_W_OCC", "0.6")
	t.Setenv("RISK_DEFAULT_WINDOW", "30")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.StorePostgres, cfg.Ledger.StoreBackend)
	assert.Equal(t, config.LockRedis, cfg.Ledger.LockBackend)
	assert.Equal(t, 750*time.Millisecond, cfg.Ledger.LockTimeout)
	assert.Equal(t, 10*time.Second, cfg.Redis.LockTTL)
	assert.Equal(t, 0.6, cfg.Risk.WeightOccupancy)
	assert.Equal(t, 30, cfg.Risk.DefaultWindow)
}

func TestLoad_InvalidBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "sqlite")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_DSNEscapesPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:w/rd", DBName: "evac", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aw%2Frd@db:5432/evac?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
