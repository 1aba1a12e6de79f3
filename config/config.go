// Package config loads the YAML-backed runtime configuration of the
// control-plane daemon (observer and gatekeeper): store backend
// selection, rate limits, and drift/heartbeat thresholds. The simulator
// CLI takes its settings from flags and does not read this file.
package config

import (
	"bytes"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// StoreBackend selects which store.Store implementation a process wires
// up at startup.
type StoreBackend string

const (
	StoreBackendMemory StoreBackend = "memory"
	StoreBackendRedis  StoreBackend = "redis"
	StoreBackendEtcd   StoreBackend = "etcd"
)

// RedisConfig configures store.RedisStore.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db"`
}

// EtcdConfig configures store.EtcdStore / gatekeeper.EtcdRegistry.
type EtcdConfig struct {
	Endpoints []string `yaml:"endpoints"`
}

// GuardConfig configures gatekeeper.ExecutionGuard's pre-flight checks.
type GuardConfig struct {
	RateLimitPerSec      float64 `yaml:"rate_limit_per_sec"`
	BurstCapacity        float64 `yaml:"burst_capacity"`
	HeartbeatToleranceUs int64   `yaml:"heartbeat_tolerance_us"`
}

// ObserverConfig configures observer.Pipeline's drift/gap thresholds.
type ObserverConfig struct {
	DriftHaltThresholdUs int64 `yaml:"drift_halt_threshold_us"`
	GapDegradedThreshold int64 `yaml:"gap_degraded_threshold"`
}

// ReconciliationConfig configures gatekeeper.ReconciliationEngine.
type ReconciliationConfig struct {
	IntervalSeconds int    `yaml:"interval_seconds"`
	Tolerance       string `yaml:"tolerance"`
}

// Config is the top-level process configuration, grounded on the
// strict-decode/validate shape of the nysm test harness's Scenario
// loader: unknown fields are rejected so a typo in an ops-owned YAML
// file fails loudly at startup instead of silently defaulting.
type Config struct {
	JournalPath     string               `yaml:"journal_path"`
	StoreBackend    StoreBackend         `yaml:"store_backend"`
	Redis           RedisConfig          `yaml:"redis,omitempty"`
	Etcd            EtcdConfig           `yaml:"etcd,omitempty"`
	Guard           GuardConfig          `yaml:"guard"`
	Observer        ObserverConfig       `yaml:"observer"`
	Reconciliation  ReconciliationConfig `yaml:"reconciliation"`
}

// Load reads and strictly decodes the YAML file at path, then validates
// it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "config: failed to read file")
	}

	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "config: failed to parse YAML")
	}

	if err := cfg.validate(); err != nil {
		return nil, errors.Wrap(err, "config: invalid configuration")
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JournalPath == "" {
		return errors.New("journal_path is required")
	}
	switch c.StoreBackend {
	case StoreBackendMemory, StoreBackendRedis, StoreBackendEtcd:
	case "":
		c.StoreBackend = StoreBackendMemory
	default:
		return errors.Errorf("unknown store_backend %q", c.StoreBackend)
	}
	if c.StoreBackend == StoreBackendRedis && c.Redis.Addr == "" {
		return errors.New("redis.addr is required when store_backend is redis")
	}
	if c.StoreBackend == StoreBackendEtcd && len(c.Etcd.Endpoints) == 0 {
		return errors.New("etcd.endpoints is required when store_backend is etcd")
	}
	if c.Guard.RateLimitPerSec < 0 {
		return errors.New("guard.rate_limit_per_sec must be >= 0")
	}
	if c.Guard.RateLimitPerSec == 0 {
		c.Guard.RateLimitPerSec = 10.0
	}
	if c.Guard.BurstCapacity <= 0 {
		c.Guard.BurstCapacity = 50.0
	}
	if c.Observer.DriftHaltThresholdUs <= 0 {
		c.Observer.DriftHaltThresholdUs = 500_000
	}
	if c.Observer.GapDegradedThreshold <= 0 {
		c.Observer.GapDegradedThreshold = 1
	}
	if c.Guard.HeartbeatToleranceUs <= 0 {
		c.Guard.HeartbeatToleranceUs = 2_000_000
	}
	if c.Reconciliation.IntervalSeconds <= 0 {
		c.Reconciliation.IntervalSeconds = 30
	}
	if c.Reconciliation.Tolerance == "" {
		c.Reconciliation.Tolerance = "0"
	}
	return nil
}
