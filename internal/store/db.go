package store

import (
	"os"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// DB wraps BadgerDB
type DB struct {
	db     *badger.DB
	stopGC chan struct{}
	gcDone chan struct{}
}

// Open opens or creates a BadgerDB at the given path. syncWrites trades
// throughput for durability: with it off, Badger acks a write once it's
// in the value log's OS page cache rather than once fsync'd.
func Open(dataDir string, syncWrites bool) (*DB, error) {
	// Ensure data directory exists
	dbPath := filepath.Join(dataDir, "badger")
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Disable badger's default logger
	opts.SyncWrites = syncWrites

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &DB{db: db}, nil
}

// Close closes the database, stopping any running GC loop first.
func (d *DB) Close() error {
	d.StopGC()
	return d.db.Close()
}

// Badger returns the underlying BadgerDB instance
func (d *DB) Badger() *badger.DB {
	return d.db
}

// RunGC runs one pass of value-log garbage collection. badger.ErrNoRewrite
// means there was nothing worth reclaiming — not a failure.
func (d *DB) RunGC() error {
	err := d.db.RunValueLogGC(0.5)
	if err == badger.ErrNoRewrite {
		return nil
	}
	return err
}

// StartGC runs RunGC on a ticker until StopGC is called or Close runs.
// A non-positive interval disables the loop entirely.
func (d *DB) StartGC(interval time.Duration) {
	if interval <= 0 || d.stopGC != nil {
		return
	}
	d.stopGC = make(chan struct{})
	d.gcDone = make(chan struct{})

	go func() {
		defer close(d.gcDone)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				d.RunGC()
			case <-d.stopGC:
				return
			}
		}
	}()
}

// StopGC halts a running StartGC loop. Safe to call even if no loop was
// ever started.
func (d *DB) StopGC() {
	if d.stopGC == nil {
		return
	}
	close(d.stopGC)
	<-d.gcDone
	d.stopGC = nil
	d.gcDone = nil
}
