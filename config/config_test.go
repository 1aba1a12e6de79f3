package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
journal_path: /var/lib/trading/journal.jsonl
guard:
  rate_limit_per_sec: 10
  burst_capacity: 50
observer:
  gap_degraded_threshold: 5
reconciliation:
  interval_seconds: 60
  tolerance: "0.0001"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, StoreBackendMemory, cfg.StoreBackend)
	assert.EqualValues(t, 500_000, cfg.Observer.DriftHaltThresholdUs)
	assert.EqualValues(t, 2_000_000, cfg.Guard.HeartbeatToleranceUs)
}

func TestLoadAppliesReconciliationAndGapDefaults(t *testing.T) {
	path := writeConfig(t, `
journal_path: /var/lib/trading/journal.jsonl
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Reconciliation.IntervalSeconds)
	assert.Equal(t, "0", cfg.Reconciliation.Tolerance)
	assert.EqualValues(t, 1, cfg.Observer.GapDegradedThreshold)
	assert.Equal(t, 10.0, cfg.Guard.RateLimitPerSec)
	assert.Equal(t, 50.0, cfg.Guard.BurstCapacity)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, `
journal_path: /var/lib/trading/journal.jsonl
not_a_real_field: true
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRequiresJournalPath(t *testing.T) {
	path := writeConfig(t, `
store_backend: memory
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRequiresRedisAddrWhenRedisBackend(t *testing.T) {
	path := writeConfig(t, `
journal_path: /var/lib/trading/journal.jsonl
store_backend: redis
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRequiresEtcdEndpointsWhenEtcdBackend(t *testing.T) {
	path := writeConfig(t, `
journal_path: /var/lib/trading/journal.jsonl
store_backend: etcd
`)
	_, err := Load(path)
	require.Error(t, err)
}
