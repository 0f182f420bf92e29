package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, "WO", cfg.WorkOrders.CodePrefix)
	assert.False(t, cfg.WorkOrders.EnforceWorkflowStatus)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, time.Minute, cfg.Redis.PricingTTL)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_NAME", "repairs")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("JAEGER_ENDPOINT", "http://jaeger:14268/api/traces")
	t.Setenv("WORKORDERS_ENFORCE_WORKFLOW_STATUS", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, "repairs", cfg.DB.Name)
	assert.Equal(t, "9000", cfg.HTTP.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "http://jaeger:14268/api/traces", cfg.Tracing.JaegerEndpoint)
	assert.True(t, cfg.WorkOrders.EnforceWorkflowStatus)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "repair.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
environment: production
workorders:
  code_prefix: RP
redis:
  pricing_ttl: 30s
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, "RP", cfg.WorkOrders.CodePrefix)
	assert.Equal(t, 30*time.Second, cfg.Redis.PricingTTL)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
