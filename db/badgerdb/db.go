// Package badgerdb persists simulator state across process runs with a
// badger backed store.
package badgerdb

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v2"
	"github.com/dgraph-io/badger/v2/options"

	simdb "github.com/nearsim/go-contract-sim/db"
	"github.com/nearsim/go-contract-sim/log"
)

const (
	badgerDbDiscardRatio   = 0.5 // run gc when 50% of samples can be collected
	badgerDbGcInterval     = 10 * time.Minute
	badgerValueLogFileSize = 1<<26 - 1
)

var logger *badgerLogger

// NewDB creates a new database or loads an existing one in the directory.
func NewDB(dir string) (*DB, error) {
	logger = &badgerLogger{Logger: log.NewLogger("db")}
	return newBadgerDB(dir)
}

func newBadgerDB(dir string) (*DB, error) {
	opts := badger.DefaultOptions(dir)
	opts.ValueLogLoadingMode = options.FileIO
	opts.TableLoadingMode = options.FileIO
	// store values smaller than 1k in the lsm tree itself
	opts.ValueThreshold = 1024
	opts.ValueLogFileSize = badgerValueLogFileSize
	opts.Logger = logger

	badgerDb, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	database := &DB{
		db:         badgerDb,
		ctx:        ctx,
		cancelFunc: cancelFunc,
		name:       dir,
	}

	go database.runBadgerGC()

	return database, nil
}

// Enforce database and transaction implement the interfaces
var _ simdb.DB = (*DB)(nil)

type DB struct {
	db         *badger.DB
	ctx        context.Context
	cancelFunc context.CancelFunc
	name       string
}

func (db *DB) runBadgerGC() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	lastGcT := time.Now()
	for {
		select {
		case <-ticker.C:
			if time.Since(lastGcT) < badgerDbGcInterval {
				continue
			}
			err := db.db.RunValueLogGC(badgerDbDiscardRatio)
			if err != nil && err != badger.ErrNoRewrite {
				logger.Error().Str("name", db.name).Err(err).Msg("Fail to GC at badger")
			}
			lastGcT = time.Now()
		case <-db.ctx.Done():
			return
		}
	}
}

func (db *DB) Type() string {
	return "badgerdb"
}

func (db *DB) Set(namespace []byte, key []byte, value []byte) error {
	key = simdb.PrependNamespace(namespace, key)
	key = simdb.ConvNilToBytes(key)
	value = simdb.ConvNilToBytes(value)

	return db.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

func (db *DB) Delete(namespace []byte, key []byte) error {
	key = simdb.PrependNamespace(namespace, key)
	key = simdb.ConvNilToBytes(key)

	return db.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

func (db *DB) Get(namespace []byte, key []byte) ([]byte, bool, error) {
	key = simdb.PrependNamespace(namespace, key)
	key = simdb.ConvNilToBytes(key)

	var val []byte
	err := db.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}

	return val, true, nil
}

func (db *DB) Exist(namespace []byte, key []byte) (bool, error) {
	key = simdb.PrependNamespace(namespace, key)
	key = simdb.ConvNilToBytes(key)

	err := db.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func (db *DB) Close() error {
	db.cancelFunc() // stop the gc goroutine
	return db.db.Close()
}

func (db *DB) NewTx() simdb.Transaction {
	return &Transaction{
		db:      db,
		tx:      db.db.NewTransaction(true),
		createT: time.Now(),
	}
}

// badgerLogger adapts the project logger to badger's Logger interface.
type badgerLogger struct {
	*log.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.Error().Msgf(format, args...)
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.Warn().Msgf(format, args...)
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.Info().Msgf(format, args...)
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.Debug().Msgf(format, args...)
}
