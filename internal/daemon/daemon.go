// Package daemon wires a loaded config.Config into a running Observer
// pipeline and Gatekeeper, the long-running process spec.md §4.2/§4.4
// implies but never names a concrete entry point for. It is the only
// place in the module that chooses a store.Store backend, builds the
// Guard's rate limiter from config, and starts the reconciliation
// scheduler.
package daemon

import (
	"context"
	"time"

	"github.com/go-redis/redis/v9"
	log "github.com/sirupsen/logrus"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/Shiva-129/OmniTrade-system/config"
	"github.com/Shiva-129/OmniTrade-system/decimal"
	"github.com/Shiva-129/OmniTrade-system/gatekeeper"
	"github.com/Shiva-129/OmniTrade-system/journal"
	"github.com/Shiva-129/OmniTrade-system/observer"
	"github.com/Shiva-129/OmniTrade-system/reconciler"
	"github.com/Shiva-129/OmniTrade-system/store"
)

// Daemon is the wired-up, runnable process: an Observer pipeline, a
// Gatekeeper, and a reconciliation scheduler sharing one state store.
type Daemon struct {
	Store      store.Store
	Gatekeeper *gatekeeper.Gatekeeper
	Pipeline   *observer.Pipeline
	Scheduler  *reconciler.Scheduler

	etcdClient *clientv3.Client
}

// New builds a Daemon from cfg: selects the store backend, wires the
// Guard's rate limiter and heartbeat tolerance, constructs the Observer
// pipeline over the given ingestors (a deployment passes its own
// exchange connectors here), and builds a reconciliation scheduler on
// cfg.Reconciliation.IntervalSeconds. Nothing runs until Run is called.
func New(cfg *config.Config, ingestors []observer.Ingestor, snapshot reconciler.SnapshotSource) (*Daemon, error) {
	st, etcdClient, err := buildStore(cfg)
	if err != nil {
		return nil, err
	}

	registry, err := buildRegistry(cfg, etcdClient)
	if err != nil {
		return nil, err
	}

	gk := gatekeeper.NewGatekeeperWithGuardLimits(
		st, registry,
		cfg.Guard.RateLimitPerSec, cfg.Guard.BurstCapacity, cfg.Guard.HeartbeatToleranceUs,
	)

	w, err := journal.NewWriter(cfg.JournalPath)
	if err != nil {
		return nil, err
	}

	pipeline := observer.NewPipeline(ingestors, w, st, 256,
		observer.WithDriftHaltThresholdUs(cfg.Observer.DriftHaltThresholdUs),
		observer.WithGapDegradedThreshold(cfg.Observer.GapDegradedThreshold),
	)

	tolerance, err := decimal.Parse(cfg.Reconciliation.Tolerance)
	if err != nil {
		return nil, err
	}
	sched := reconciler.NewScheduler(
		gk.Reconciliation, snapshot, tolerance,
		time.Duration(cfg.Reconciliation.IntervalSeconds)*time.Second,
	)

	return &Daemon{
		Store:      st,
		Gatekeeper: gk,
		Pipeline:   pipeline,
		Scheduler:  sched,
		etcdClient: etcdClient,
	}, nil
}

// Run starts the Observer pipeline and reconciliation scheduler
// concurrently and blocks until ctx is canceled or either fails.
func (d *Daemon) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	errCh := make(chan error, 2)

	go func() { errCh <- d.Pipeline.Run(ctx) }()
	go func() { errCh <- d.Scheduler.Run(ctx) }()

	var firstErr error
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
			cancel()
		}
	}
	if d.etcdClient != nil {
		if err := d.etcdClient.Close(); err != nil {
			log.WithError(err).Warn("etcd client close failed")
		}
	}
	return firstErr
}

func buildStore(cfg *config.Config) (store.Store, *clientv3.Client, error) {
	switch cfg.StoreBackend {
	case config.StoreBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return store.NewRedisStore(client), nil, nil
	case config.StoreBackendEtcd:
		client, err := clientv3.New(clientv3.Config{Endpoints: cfg.Etcd.Endpoints})
		if err != nil {
			return nil, nil, err
		}
		return store.NewEtcdStore(client), client, nil
	default:
		return store.NewMemoryStore(), nil, nil
	}
}

// buildRegistry selects the persistent EtcdRegistry exactly when the
// store backend is Etcd, reusing the client the store backend opened
// rather than dialing a second connection; every other backend gets a
// MemoryRegistry. There is no separate setting for the registry.
func buildRegistry(cfg *config.Config, etcdClient *clientv3.Client) (gatekeeper.Registry, error) {
	if cfg.StoreBackend != config.StoreBackendEtcd {
		return gatekeeper.NewMemoryRegistry(), nil
	}
	return gatekeeper.NewEtcdRegistry(etcdClient), nil
}
