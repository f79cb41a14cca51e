package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// MasterConfig contains all configuration for the master process.
type MasterConfig struct {
	REST      RESTConfig      `mapstructure:"rest"`
	GRPC      GRPCConfig      `mapstructure:"grpc"`
	Bucket    MasterBucketConfig `mapstructure:"bucket"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// MasterBucketConfig configures the bucket.Server the master runs to serve
// source-from-local-iterator buckets it partitions and writes itself
// (spec.md §4.1 "source-from-local-iterator data is partitioned on the
// master").
type MasterBucketConfig struct {
	Addr          string `mapstructure:"addr"`
	AdvertiseHost string `mapstructure:"advertise_host"`
	ScratchDir    string `mapstructure:"scratch_dir"`
}

// RESTConfig contains the master's read-only status API server configuration.
type RESTConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// GRPCConfig contains the master's gRPC server configuration.
type GRPCConfig struct {
	Addr             string        `mapstructure:"addr"`
	EnableReflection bool          `mapstructure:"enable_reflection"`
	KeepaliveMinTime time.Duration `mapstructure:"keepalive_min_time"`
}

// SchedulerConfig bounds scheduling behavior (spec.md §7 retry bound, §4.5
// heartbeat cadence).
type SchedulerConfig struct {
	MaxAttempts       int           `mapstructure:"max_attempts"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	MissedBeatsLimit  int           `mapstructure:"missed_beats_limit"`
	HealthCheckEvery  time.Duration `mapstructure:"health_check_every"`
}

// LoadMaster loads the master configuration from the given path.
// If configPath is empty, it looks for master.yaml in the config/ directory.
// Environment variables with MRS_MASTER_ prefix override config file values.
func LoadMaster(configPath string) (*MasterConfig, error) {
	v := viper.New()

	v.SetDefault("rest.addr", ":8080")
	v.SetDefault("rest.read_timeout", 15*time.Second)
	v.SetDefault("rest.write_timeout", 15*time.Second)
	v.SetDefault("rest.idle_timeout", 60*time.Second)
	v.SetDefault("grpc.addr", ":9090")
	v.SetDefault("grpc.enable_reflection", true)
	v.SetDefault("grpc.keepalive_min_time", 30*time.Second)
	v.SetDefault("bucket.addr", ":8081")
	v.SetDefault("bucket.advertise_host", "localhost")
	v.SetDefault("bucket.scratch_dir", "")
	v.SetDefault("scheduler.max_attempts", 3)
	v.SetDefault("scheduler.heartbeat_interval", 5*time.Second)
	v.SetDefault("scheduler.missed_beats_limit", 3)
	v.SetDefault("scheduler.health_check_every", 2*time.Second)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("master")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("MRS_MASTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg MasterConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}
