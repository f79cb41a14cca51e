package main

import (
	"flag"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/kbecker/mrs/internal/shared/config"
	"github.com/kbecker/mrs/internal/shared/logging"
	"github.com/kbecker/mrs/pkg/mrs"

	_ "github.com/kbecker/mrs/examples/grep"
	_ "github.com/kbecker/mrs/examples/wordcount"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to config file")
	jobName := flag.String("job", "", "registered program to run (e.g. wordcount, grep)")
	input := flag.String("input", "", "input file pattern or URL, repeatable via a comma-separated list")
	output := flag.String("output", "", "output directory (scratch space if empty)")
	splits := flag.Int("splits", 4, "number of reduce splits")
	flag.Parse()

	cfg, err := config.LoadMaster(*configPath)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return 1
	}

	logger := logging.NewSlogLogger(logging.ParseLevel(cfg.Logging.Level))

	if *jobName == "" {
		logger.Error("no job specified", "available", mrs.Registered().Names())
		return 1
	}
	if _, err := mrs.Registered().Program(*jobName); err != nil {
		logger.Error("unknown job", "job", *jobName, "available", mrs.Registered().Names())
		return 1
	}
	if *input == "" {
		logger.Error("no input specified")
		return 1
	}

	program := mrs.MapReduceProgram{
		Name:   *jobName,
		Inputs: strings.Split(*input, ","),
		OutDir: *output,
		Splits: *splits,
	}

	return mrs.Run(program, mrs.RunConfig{
		JobID:    uuid.New().String(),
		Master:   *cfg,
		Registry: mrs.Registered(),
		Logger:   logger,
	})
}
