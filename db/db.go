// Package db defines the namespaced key-value storage used to persist
// simulator accounts, with in-memory and badger backed implementations.
package db

// DB is the general interface to the underlying key-value store.
type DB interface {
	Type() string
	Set(namespace []byte, key []byte, value []byte) error
	Delete(namespace []byte, key []byte) error
	Get(namespace []byte, key []byte) ([]byte, bool, error)
	Exist(namespace []byte, key []byte) (bool, error)
	Iterator(start []byte, end []byte) Iterator
	NewTx() Transaction
	Close() error
}

// Transaction batches multiple writes into one atomic commit.
type Transaction interface {
	Set(namespace []byte, key []byte, value []byte) error
	Delete(namespace []byte, key []byte) error
	Commit() error
	Discard()
}

// Iterator navigates a key range in ascending order, or descending when
// start sorts after end.
type Iterator interface {
	Next() error
	Valid() bool
	Key() ([]byte, error)
	Value() ([]byte, error)
}
