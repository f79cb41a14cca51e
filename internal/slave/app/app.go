// Package app wires one slave process's components together: the bucket
// store and its HTTP server, the executor, the worker, and the gRPC
// surface on both sides of the master<->slave RPC. It is factored out of
// cmd/slave/main.go so cmd/bypass can embed a slave in the master's own
// process without duplicating the wiring.
package app

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/kbecker/mrs/internal/bucket"
	"github.com/kbecker/mrs/internal/shared/config"
	"github.com/kbecker/mrs/internal/shared/logging"
	"github.com/kbecker/mrs/internal/shared/netutil"
	grpcapi "github.com/kbecker/mrs/internal/slave/api/grpc"
	"github.com/kbecker/mrs/internal/slave/service"
	"github.com/kbecker/mrs/pkg/mrs"
)

// Run registers with the master, serves this slave's SlaveService and
// bucket store, and blocks until ctx is cancelled. jobID namespaces the
// slave's scratch directory the same way the master namespaces its own
// (internal/bucket.NewStore).
func Run(ctx context.Context, jobID string, cfg config.SlaveConfig, registry *mrs.Registry, logger logging.Logger) error {
	store, err := bucket.NewStore(cfg.Server.ScratchDir, jobID)
	if err != nil {
		return fmt.Errorf("slave: open bucket store: %w", err)
	}

	bucketServer := bucket.NewServer(cfg.Server.BucketAddr, store, logger)
	bucketBaseURL, err := netutil.AdvertiseURL(cfg.Server.BucketAddr, cfg.Server.AdvertiseHost)
	if err != nil {
		return fmt.Errorf("slave: compute bucket advertise URL: %w", err)
	}

	fetch := bucket.NewClient(&http.Client{Timeout: cfg.Bucket.FetchTimeout})
	executor := service.NewExecutor(registry, store, fetch, bucketBaseURL, logger)

	masterClient, err := grpcapi.NewMasterClient(cfg.Master.Addr)
	if err != nil {
		return fmt.Errorf("slave: connect to master: %w", err)
	}
	defer masterClient.Close()

	grpcAddr, err := netutil.AdvertiseAddr(cfg.Server.GRPCAddr, cfg.Server.AdvertiseHost)
	if err != nil {
		return fmt.Errorf("slave: compute gRPC advertise address: %w", err)
	}

	capacity := cfg.Server.Capacity
	if capacity <= 0 {
		capacity = runtime.NumCPU()
	}

	var slaveID string
	var heartbeatSeconds int
	for attempt := 0; ; attempt++ {
		slaveID, heartbeatSeconds, err = masterClient.Register(grpcAddr, capacity)
		if err == nil {
			break
		}
		if attempt >= 9 {
			return fmt.Errorf("slave: register with master: %w", err)
		}
		logger.Warn("registration with master failed, retrying", "error", err, "attempt", attempt)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 500 * time.Millisecond):
		}
	}
	heartbeatInterval := cfg.Master.HeartbeatInterval
	if heartbeatSeconds > 0 {
		heartbeatInterval = time.Duration(heartbeatSeconds) * time.Second
	}

	worker := service.NewWorker(slaveID, masterClient, executor, store, logger)
	grpcServer := grpcapi.NewServer(cfg.Server, worker, logger)

	go func() {
		logger.Info("starting slave bucket server", "addr", cfg.Server.BucketAddr)
		if err := bucketServer.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("slave bucket server error", "error", err)
		}
	}()
	go func() {
		logger.Info("starting slave gRPC server", "addr", cfg.Server.GRPCAddr)
		if err := grpcServer.Start(); err != nil {
			logger.Error("slave gRPC server error", "error", err)
		}
	}()
	go worker.RunHeartbeatLoop(ctx, heartbeatInterval)

	logger.Info("slave registered", "slave_id", slaveID, "endpoint", grpcAddr, "capacity", capacity)

	<-ctx.Done()

	logger.Info("shutting down slave", "slave_id", slaveID)
	grpcServer.Stop()
	_ = bucketServer.Stop()
	return nil
}
