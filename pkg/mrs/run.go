package mrs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbecker/mrs/internal/bucket"
	grpcapi "github.com/kbecker/mrs/internal/master/api/grpc"
	restapi "github.com/kbecker/mrs/internal/master/api/rest"
	mastercore "github.com/kbecker/mrs/internal/master/core"
	masterservice "github.com/kbecker/mrs/internal/master/service"
	masterstorage "github.com/kbecker/mrs/internal/master/storage"
	"github.com/kbecker/mrs/internal/shared/config"
	"github.com/kbecker/mrs/internal/shared/logging"
	"github.com/kbecker/mrs/internal/shared/netutil"
)

// UserProgram is the interface a job's entrypoint implements (spec.md
// §4.6): Run receives the job handle bound to the live scheduler and
// drives it to completion by submitting datasets and waiting on them.
type UserProgram interface {
	Run(job *Job) error
}

// RunConfig bundles everything pkg/mrs.Run needs beyond the program
// itself and the registry of named functions it resolves assignments
// against: the master's parsed configuration, a job id for scratch-path
// namespacing, and the logger every ambient component shares.
type RunConfig struct {
	JobID    string
	Master   config.MasterConfig
	Registry *Registry
	Logger   logging.Logger
}

// Run loads the user program's registry on the master, starts the
// scheduler and its gRPC/REST/bucket service layer, invokes
// program.Run(job), and shuts everything down cleanly on return or on an
// uncaught panic (spec.md §4.6). A SIGINT/SIGTERM is logged, and shutdown
// still waits for program.Run to return. It returns the
// process exit code spec.md §6 defines: 0 on success, 1 on a user-program
// error (including a recovered panic), 2 on a scheduler-detected fatal
// failure (task retries exhausted or the master aborted the job).
func Run(program UserProgram, cfg RunConfig) int {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewSlogLogger(logging.ParseLevel(cfg.Master.Logging.Level))
	}

	store, err := bucket.NewStore(cfg.Master.Bucket.ScratchDir, cfg.JobID)
	if err != nil {
		logger.Error("failed to open master bucket store", "error", err)
		return 1
	}

	bucketServer := bucket.NewServer(cfg.Master.Bucket.Addr, store, logger)
	bucketBaseURL, err := netutil.AdvertiseURL(cfg.Master.Bucket.Addr, cfg.Master.Bucket.AdvertiseHost)
	if err != nil {
		logger.Error("failed to compute bucket advertise URL", "error", err)
		return 1
	}

	datasets := masterstorage.NewInMemoryDatasetStore()
	tasks := masterstorage.NewInMemoryTaskStore()
	slaves := masterstorage.NewInMemorySlaveStore()

	graph := mastercore.NewGraph(datasets)
	slaveClients := grpcapi.NewClientPool(tasks)
	localWriter := masterservice.NewLocalWriter(store, cfg.Registry, bucketBaseURL)

	schedCfg := mastercore.Config{
		MaxAttempts:       cfg.Master.Scheduler.MaxAttempts,
		HeartbeatInterval: cfg.Master.Scheduler.HeartbeatInterval,
		MissedBeatsLimit:  cfg.Master.Scheduler.MissedBeatsLimit,
	}
	scheduler := mastercore.NewScheduler(graph, tasks, slaves, slaveClients, localWriter, logger, schedCfg)

	grpcServer := grpcapi.NewServer(cfg.Master.GRPC, scheduler, logger)
	restServer := restapi.NewServer(cfg.Master.REST, scheduler, logger)
	health := masterservice.NewHealthChecker(cfg.Master.Scheduler.HealthCheckEvery, scheduler, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go scheduler.Run(ctx)
	go health.Start(ctx)

	go func() {
		logger.Info("starting master bucket server", "addr", cfg.Master.Bucket.Addr)
		if err := bucketServer.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("master bucket server error", "error", err)
		}
	}()
	go func() {
		logger.Info("starting master gRPC server", "addr", cfg.Master.GRPC.Addr)
		if err := grpcServer.Start(); err != nil {
			logger.Error("master gRPC server error", "error", err)
		}
	}()
	go func() {
		logger.Info("starting master REST server", "addr", cfg.Master.REST.Addr)
		if err := restServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("master REST server error", "error", err)
		}
	}()

	fetch := bucket.NewClient(&http.Client{Timeout: 30 * time.Second})
	job := newJob(scheduler, fetch)

	exitCode := runProgram(program, job, logger)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = restServer.Shutdown(shutdownCtx)
	grpcServer.Stop()
	_ = bucketServer.Stop()
	slaveClients.Close()
	scheduler.Stop()

	return exitCode
}

// runProgram runs program.Run in its own goroutine, recovering a panic into
// the same exit-code path spec.md §6 gives a user-program error, and
// listens for SIGINT/SIGTERM (teacher's signal.Notify pattern from
// cmd/coordinator/main.go). A signal is only logged: runProgram keeps
// waiting for program.Run to return, and a Wait call blocked inside the
// program is not interrupted.
func runProgram(program UserProgram, job *Job, logger logging.Logger) int {
	done := make(chan int, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("user program panicked", "panic", fmt.Sprintf("%v", r))
				done <- 1
			}
		}()
		if err := program.Run(job); err != nil {
			var abort *mastercore.JobAbort
			if isJobAbort(err, &abort) {
				logger.Error("job aborted", "reason", abort.Reason)
				done <- 2
				return
			}
			logger.Error("user program returned an error", "error", err)
			done <- 1
			return
		}
		done <- 0
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case code := <-done:
		return code
	case <-quit:
		logger.Info("received shutdown signal, waiting for user program to return")
		return <-done
	}
}

func isJobAbort(err error, target **mastercore.JobAbort) bool {
	return errors.As(err, target)
}
