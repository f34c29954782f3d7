package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/config"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDefaults(t *testing.T) {
	cfg, err := config.FromEnv(envOf(map[string]string{"SESSION_SECRET": "s3cret"}))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, config.StoreSQLite, cfg.Store.Driver)
	assert.Equal(t, "file:recruito.db", cfg.Store.DSN)
	assert.Equal(t, 10*time.Second, cfg.DependencyTimeout)
	assert.Equal(t, "@every 5m", cfg.ReminderSchedule)
	assert.Equal(t, "recruito:notifications", cfg.Redis.Stream)
	assert.Equal(t, "gemini", cfg.AI.Provider)
}

func TestMissingValuesReportedTogether(t *testing.T) {
	_, err := config.FromEnv(envOf(map[string]string{
		"STORE_DRIVER":       "neo4j",
		"NEO4J_URI":          "neo4j://localhost:7687",
		"DEPENDENCY_TIMEOUT": "soon",
	}))
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "SESSION_SECRET")
	assert.Contains(t, msg, "NEO4J_USERNAME")
	assert.Contains(t, msg, "NEO4J_PASSWORD")
	assert.NotContains(t, msg, "NEO4J_URI,")
	assert.Contains(t, msg, "DEPENDENCY_TIMEOUT")
}

func TestUnknownDriver(t *testing.T) {
	_, err := config.FromEnv(envOf(map[string]string{"SESSION_SECRET": "x", "STORE_DRIVER": "mongo"}))
	assert.ErrorContains(t, err, `unknown driver "mongo"`)
}
