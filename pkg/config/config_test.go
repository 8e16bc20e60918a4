package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Setenv("APP_STORAGE", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, cfg.App.Storage)
	assert.Equal(t, "PKR", cfg.Ledger.Currency)
	assert.Equal(t, 3, cfg.Ledger.MaxRetries)
	assert.Equal(t, 50*time.Millisecond, cfg.Ledger.RetryInterval())
	assert.Equal(t, int32(10), cfg.DB.MaxConns)
	assert.True(t, cfg.DB.MigrateOnStart)
}

func TestLoad_EnvSobrescribe(t *testing.T) {
	t.Setenv("APP_STORAGE", "Postgres")
	t.Setenv("LEDGER_CURRENCY", "USD")
	t.Setenv("LEDGER_MAX_RETRIES", "5")
	t.Setenv("DB_FORCE_IPV4", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoragePostgres, cfg.App.Storage)
	assert.Equal(t, "USD", cfg.Ledger.Currency)
	assert.Equal(t, 5, cfg.Ledger.MaxRetries)
	assert.True(t, cfg.DB.ForceIPv4)
}

func TestLoad_StorageInvalido(t *testing.T) {
	t.Setenv("APP_STORAGE", "mongo")

	_, err := Load()
	assert.Error(t, err)
}

func TestDSN_EscapaPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "molino", Password: "p@ss/word", DBName: "molino", SSLMode: "disable"}
	assert.Equal(t, "postgres://molino:p%40ss%2Fword@db:5432/molino?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}

func TestLoad_ReintentosNegativos(t *testing.T) {
	t.Setenv("APP_STORAGE", "memory")
	t.Setenv("LEDGER_MAX_RETRIES", "-1")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("LEDGER_MAX_RETRIES", "0")
	cfg, err := Load()
	require.NoError(t, err, "cero desactiva los reintentos")
	assert.Equal(t, 0, cfg.Ledger.MaxRetries)
}
