package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/unclek/unclek/internal/config"
	"github.com/unclek/unclek/internal/engine"
	"github.com/unclek/unclek/internal/logging"
	"github.com/unclek/unclek/internal/metrics"
	"github.com/unclek/unclek/internal/server"
	"github.com/unclek/unclek/internal/store"
)

// acquireDataLock acquires an exclusive lock on the data directory.
// Returns the lock file handle (must be kept open) or error if already locked.
func acquireDataLock(dataDir string) (*os.File, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	lockPath := filepath.Join(dataDir, ".lock")
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		return nil, fmt.Errorf("another unclek instance is using data directory %s", dataDir)
	}

	return f, nil
}

var (
	version = "0.1.0"
	commit  = "none"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		runServe(os.Args[2:])
	case "version":
		fmt.Printf("unclek %s (%s)\n", version, commit)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`unclek - Kafka-wire-compatible single-node message broker

Usage:
  unclek <command> [options]

Commands:
  serve     Start the broker
  version   Print version information
  help      Print this help message

Run 'unclek serve --help' for serve options.`)
}

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)

	configFile := fs.String("config", "", "Path to config file (YAML)")
	kafkaAddr := fs.String("kafka-addr", "", "Kafka protocol listen address")
	httpAddr := fs.String("http-addr", "", "Admin HTTP listen address")
	dataDir := fs.String("data-dir", "", "Data directory for storage")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	backend := fs.String("storage", "", "Storage backend: sqlite or badger")

	fs.Parse(args)

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if *kafkaAddr != "" {
		cfg.Server.KafkaAddr = *kafkaAddr
	}
	if *httpAddr != "" {
		cfg.Server.HTTPAddr = *httpAddr
	}
	if *dataDir != "" {
		cfg.Storage.DataDir = *dataDir
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *backend != "" {
		cfg.Storage.Backend = *backend
	}

	log, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	lockFile, err := acquireDataLock(cfg.Storage.DataDir)
	if err != nil {
		log.Fatal("failed to acquire data lock", zap.Error(err))
	}
	defer lockFile.Close()

	var topicStore store.TopicStoreInterface
	var groupStore store.GroupStoreInterface
	var closer func() error

	switch cfg.Storage.Backend {
	case "sqlite":
		log.Info("using sqlite storage backend", zap.String("data_dir", cfg.Storage.DataDir))
		sqliteDB, err := store.OpenSQLite(cfg.Storage.DataDir)
		if err != nil {
			log.Fatal("failed to open sqlite store", zap.Error(err))
		}
		closer = sqliteDB.Close
		topicStore = store.NewSQLiteTopicStore(sqliteDB)
		groupStore = store.NewSQLiteGroupStore(sqliteDB)

	case "badger":
		log.Info("using badger storage backend", zap.String("data_dir", cfg.Storage.DataDir))
		db, err := store.Open(cfg.Storage.DataDir, cfg.Storage.SyncWrites)
		if err != nil {
			log.Fatal("failed to open badger store", zap.Error(err))
		}
		db.StartGC(cfg.Storage.GCInterval)
		closer = db.Close
		topicStore = store.NewTopicStore(db)
		groupStore = store.NewGroupStore(db)

	default:
		log.Fatal("unknown storage backend", zap.String("backend", cfg.Storage.Backend))
	}
	defer closer()

	m := metrics.New()
	eng := engine.New(cfg, log, m, topicStore, groupStore)

	for _, t := range cfg.Topics.Declared {
		if err := eng.EnsureTopic(t.Name, t.Compacted, t.RetentionMs); err != nil {
			log.Warn("failed to declare topic", zap.String("topic", t.Name), zap.Error(err))
		}
	}

	eng.Start()
	defer eng.Stop()

	kafkaSrv := server.NewKafkaServer(cfg, eng, log, m)
	adminSrv := server.NewAdminServer(cfg, eng, m, log)

	go func() {
		log.Info("kafka server listening", zap.String("addr", cfg.Server.KafkaAddr))
		if err := kafkaSrv.ListenAndServe(); err != nil {
			log.Error("kafka server stopped", zap.Error(err))
		}
	}()

	go func() {
		log.Info("admin http server listening", zap.String("addr", cfg.Server.HTTPAddr))
		if err := adminSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("admin http server stopped", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")
	kafkaSrv.Close()
	adminSrv.Close()
}
