package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// SlaveConfig contains all configuration for a slave process.
type SlaveConfig struct {
	Server  SlaveServerConfig `mapstructure:"server"`
	Master  MasterConnConfig  `mapstructure:"master"`
	Bucket  BucketConfig      `mapstructure:"bucket"`
	Logging LoggingConfig     `mapstructure:"logging"`
}

// SlaveServerConfig contains the slave's own gRPC (SlaveService) and bucket
// HTTP server configuration.
type SlaveServerConfig struct {
	GRPCAddr      string `mapstructure:"grpc_addr"`
	BucketAddr    string `mapstructure:"bucket_addr"`
	AdvertiseHost string `mapstructure:"advertise_host"`
	Capacity      int    `mapstructure:"capacity"` // <= 0 probes runtime.NumCPU()
	ScratchDir    string `mapstructure:"scratch_dir"`
}

// MasterConnConfig contains the slave's connection settings to the master.
type MasterConnConfig struct {
	Addr              string        `mapstructure:"addr"`
	KeepaliveTime     time.Duration `mapstructure:"keepalive_time"`
	KeepaliveTimeout  time.Duration `mapstructure:"keepalive_timeout"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
}

// BucketConfig bounds the slave's bucket store (spec.md §4.4).
type BucketConfig struct {
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
}

// LoadSlave loads the slave configuration from the given path.
// If configPath is empty, it looks for slave.yaml in the config/ directory.
// Environment variables with MRS_SLAVE_ prefix override config file values.
func LoadSlave(configPath string) (*SlaveConfig, error) {
	v := viper.New()

	v.SetDefault("server.grpc_addr", ":50051")
	v.SetDefault("server.bucket_addr", ":50052")
	v.SetDefault("server.advertise_host", "localhost")
	v.SetDefault("server.capacity", 0) // 0 means "probe runtime.NumCPU() at registration"
	v.SetDefault("server.scratch_dir", "")
	v.SetDefault("master.addr", "localhost:9090")
	v.SetDefault("master.keepalive_time", 30*time.Second)
	v.SetDefault("master.keepalive_timeout", 5*time.Second)
	v.SetDefault("master.heartbeat_interval", 5*time.Second)
	v.SetDefault("bucket.fetch_timeout", 30*time.Second)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("slave")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("MRS_SLAVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg SlaveConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}
