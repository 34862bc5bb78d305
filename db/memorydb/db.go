// Package memorydb is the map-backed store used by tests and ephemeral
// simulator runs.
package memorydb

import (
	"container/list"
	"sync"

	simdb "github.com/nearsim/go-contract-sim/db"
)

// Enforce database and transaction implement the interfaces
var _ simdb.DB = (*DB)(nil)

type DB struct {
	lock sync.Mutex
	db   map[string][]byte
}

func NewDB() *DB {
	return &DB{
		db: make(map[string][]byte),
	}
}

func (db *DB) Type() string {
	return "memorydb"
}

func (db *DB) Set(namespace []byte, key []byte, value []byte) error {
	db.lock.Lock()
	defer db.lock.Unlock()

	key = simdb.PrependNamespace(namespace, key)
	key = simdb.ConvNilToBytes(key)
	value = simdb.ConvNilToBytes(value)

	db.db[string(key)] = value
	return nil
}

func (db *DB) Delete(namespace []byte, key []byte) error {
	db.lock.Lock()
	defer db.lock.Unlock()

	key = simdb.PrependNamespace(namespace, key)
	key = simdb.ConvNilToBytes(key)

	delete(db.db, string(key))
	return nil
}

func (db *DB) Get(namespace []byte, key []byte) ([]byte, bool, error) {
	db.lock.Lock()
	defer db.lock.Unlock()

	key = simdb.PrependNamespace(namespace, key)
	key = simdb.ConvNilToBytes(key)

	value, exists := db.db[string(key)]
	return value, exists, nil
}

func (db *DB) Exist(namespace []byte, key []byte) (bool, error) {
	db.lock.Lock()
	defer db.lock.Unlock()

	key = simdb.PrependNamespace(namespace, key)
	key = simdb.ConvNilToBytes(key)

	_, ok := db.db[string(key)]
	return ok, nil
}

func (db *DB) Close() error {
	return nil
}

func (db *DB) NewTx() simdb.Transaction {
	return &Transaction{
		db:     db,
		opList: list.New(),
	}
}
