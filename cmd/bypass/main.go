// Command bypass runs a master and a single slave in one process, for
// running a job on one machine without standing up separate master/slave
// binaries (spec.md §6 CLI surface, "--mrs implementation bypass"). It is
// out of scope for the spec's distributed design and is kept thin: it
// reuses cmd/master's and cmd/slave's own wiring (pkg/mrs.Run,
// internal/slave/app.Run) unchanged, just inside one process.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/kbecker/mrs/internal/shared/config"
	"github.com/kbecker/mrs/internal/shared/logging"
	"github.com/kbecker/mrs/internal/slave/app"
	"github.com/kbecker/mrs/pkg/mrs"

	_ "github.com/kbecker/mrs/examples/grep"
	_ "github.com/kbecker/mrs/examples/wordcount"
)

func main() {
	os.Exit(run())
}

func run() int {
	masterConfigPath := flag.String("master-config", "", "path to master config file")
	slaveConfigPath := flag.String("slave-config", "", "path to slave config file")
	jobName := flag.String("job", "", "registered program to run (e.g. wordcount, grep)")
	input := flag.String("input", "", "input file pattern or URL, comma-separated")
	output := flag.String("output", "", "output directory (scratch space if empty)")
	splits := flag.Int("splits", 4, "number of reduce splits")
	flag.Parse()

	masterCfg, err := config.LoadMaster(*masterConfigPath)
	if err != nil {
		os.Stderr.WriteString("failed to load master config: " + err.Error() + "\n")
		return 1
	}
	slaveCfg, err := config.LoadSlave(*slaveConfigPath)
	if err != nil {
		os.Stderr.WriteString("failed to load slave config: " + err.Error() + "\n")
		return 1
	}
	slaveCfg.Master.Addr = masterCfg.GRPC.Addr

	logger := logging.NewSlogLogger(logging.ParseLevel(masterCfg.Logging.Level))

	if *jobName == "" || *input == "" {
		logger.Error("both -job and -input are required in bypass mode")
		return 1
	}

	jobID := uuid.New().String()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		logger.Info("received shutdown signal")
		cancel()
	}()

	go func() {
		// The master's gRPC listener needs a moment to come up before the
		// embedded slave's first Register call; app.Run retries on its own,
		// but starting after a short delay avoids a guaranteed first failure.
		time.Sleep(200 * time.Millisecond)
		if err := app.Run(ctx, jobID, *slaveCfg, mrs.Registered(), logger); err != nil && ctx.Err() == nil {
			logger.Error("embedded slave exited with error", "error", err)
		}
	}()

	program := mrs.MapReduceProgram{
		Name:   *jobName,
		Inputs: strings.Split(*input, ","),
		OutDir: *output,
		Splits: *splits,
	}

	code := mrs.Run(program, mrs.RunConfig{
		JobID:    jobID,
		Master:   *masterCfg,
		Registry: mrs.Registered(),
		Logger:   logger,
	})
	cancel()
	return code
}
