package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig       `yaml:"server"`
	Storage   StorageConfig      `yaml:"storage"`
	Topics    TopicsConfig       `yaml:"topics"`
	Limits    LimitsConfig       `yaml:"limits"`
	Scheduler SchedulerConfig    `yaml:"scheduler"`
	Retention RetentionConfig    `yaml:"retention"`
	Groups    GroupsConfig       `yaml:"groups"`
	Metrics   MetricsConfig      `yaml:"metrics"`
	Admin     AdminConfig        `yaml:"admin"`
	Logging   LoggingConfig      `yaml:"logging"`
}

type ServerConfig struct {
	Hostname  string `yaml:"hostname"` // advertised in Metadata responses
	KafkaAddr string `yaml:"kafka_addr"`
	HTTPAddr  string `yaml:"http_addr"`
	Threads   int    `yaml:"threads"` // worker-pool size bounding concurrent request handling
}

type StorageConfig struct {
	Backend    string        `yaml:"backend"` // "badger" or "sqlite"
	DataDir    string        `yaml:"data_dir"`
	SyncWrites bool          `yaml:"sync_writes"`
	GCInterval time.Duration `yaml:"gc_interval"`
}

// TopicsConfig declares topics up front (as an alternative to relying on
// auto-create) and controls auto-create behavior for names not listed.
type TopicsConfig struct {
	AutoCreate bool              `yaml:"auto_create"`
	Declared   []DeclaredTopic   `yaml:"declared"`
}

type DeclaredTopic struct {
	Name        string `yaml:"name"`
	Compacted   bool   `yaml:"compacted"`
	RetentionMs int64  `yaml:"retention_ms"` // 0 = use Retention.MaxAge
}

type LimitsConfig struct {
	MaxConnections int `yaml:"max_connections"`
	MaxMessageSize int `yaml:"max_message_size"`
	MaxFetchBytes  int `yaml:"max_fetch_bytes"`
	MaxTopics      int `yaml:"max_topics"`
}

type SchedulerConfig struct {
	TickInterval time.Duration `yaml:"tick_interval"`
}

type RetentionConfig struct {
	Enabled       bool          `yaml:"enabled"`
	MaxAge        time.Duration `yaml:"max_age"`
	CheckInterval time.Duration `yaml:"check_interval"`
}

type GroupsConfig struct {
	SessionTimeout    time.Duration `yaml:"session_timeout"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
}

// MetricsConfig controls the Prometheus exposition endpoint, served
// alongside the admin HTTP surface.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// AdminConfig controls the read-only HTTP introspection surface (topic
// listing, consumer group listing). /health is served whether or not it
// is enabled.
type AdminConfig struct {
	Enabled bool `yaml:"enabled"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "console"
}

// Default returns a Config with sensible defaults
func Default() *Config {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = "localhost"
	}

	return &Config{
		Server: ServerConfig{
			Hostname:  hostname,
			KafkaAddr: ":9092",
			HTTPAddr:  ":8080",
			Threads:   100,
		},
		Storage: StorageConfig{
			Backend:    "sqlite", // default to sqlite
			DataDir:    "./data",
			SyncWrites: false,
			GCInterval: 5 * time.Minute,
		},
		Topics: TopicsConfig{
			AutoCreate: true,
		},
		Limits: LimitsConfig{
			MaxConnections: 100,
			MaxMessageSize: 1 << 20,  // 1MB
			MaxFetchBytes:  10 << 20, // 10MB
			MaxTopics:      100,
		},
		Scheduler: SchedulerConfig{
			TickInterval: 100 * time.Millisecond,
		},
		Retention: RetentionConfig{
			Enabled:       true,
			MaxAge:        24 * time.Hour,
			CheckInterval: 1 * time.Minute,
		},
		Groups: GroupsConfig{
			SessionTimeout:    30 * time.Second,
			HeartbeatInterval: 3 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Admin: AdminConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads config from file, environment, with defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	cfg.loadFromEnv()

	return cfg, nil
}

func (c *Config) loadFromEnv() {
	if v := os.Getenv("UNCLEK_KAFKA_ADDR"); v != "" {
		c.Server.KafkaAddr = v
	}
	if v := os.Getenv("UNCLEK_HTTP_ADDR"); v != "" {
		c.Server.HTTPAddr = v
	}
	if v := os.Getenv("UNCLEK_HOSTNAME"); v != "" {
		c.Server.Hostname = v
	}
	if v := os.Getenv("UNCLEK_DATA_DIR"); v != "" {
		c.Storage.DataDir = v
	}
	if v := os.Getenv("UNCLEK_STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("UNCLEK_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}
