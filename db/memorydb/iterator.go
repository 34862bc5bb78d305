package memorydb

import (
	"bytes"
	"errors"
	"sort"

	simdb "github.com/nearsim/go-contract-sim/db"
)

type Iterator struct {
	start   []byte
	end     []byte
	reverse bool
	keys    []string
	cursor  int
	db      *DB
}

func isKeyInRange(key []byte, start []byte, end []byte, reverse bool) bool {
	if reverse {
		if start != nil && bytes.Compare(start, key) < 0 {
			return false
		}
		if end != nil && bytes.Compare(key, end) <= 0 {
			return false
		}
		return true
	}

	if start != nil && bytes.Compare(key, start) < 0 {
		return false
	}
	if end != nil && bytes.Compare(end, key) <= 0 {
		return false
	}
	return true
}

func (db *DB) Iterator(start []byte, end []byte) simdb.Iterator {
	db.lock.Lock()
	defer db.lock.Unlock()

	// if end sorts before start, iterate in reverse order
	reverse := bytes.Compare(start, end) == 1

	var keys []string
	for key := range db.db {
		if isKeyInRange([]byte(key), start, end, reverse) {
			keys = append(keys, key)
		}
	}
	if reverse {
		sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	} else {
		sort.Strings(keys)
	}

	return &Iterator{
		start:   start,
		end:     end,
		reverse: reverse,
		keys:    keys,
		cursor:  0,
		db:      db,
	}
}

func (iter *Iterator) Next() error {
	if !iter.Valid() {
		return errors.New("Invalid iterator")
	}
	iter.cursor++
	return nil
}

func (iter *Iterator) Valid() bool {
	return iter.cursor < len(iter.keys)
}

func (iter *Iterator) Key() ([]byte, error) {
	if !iter.Valid() {
		return nil, errors.New("Invalid iterator")
	}
	return []byte(iter.keys[iter.cursor]), nil
}

func (iter *Iterator) Value() ([]byte, error) {
	if !iter.Valid() {
		return nil, errors.New("Invalid iterator")
	}
	key, err := iter.Key()
	if err != nil {
		return nil, err
	}
	value, exists, err := iterGet(iter.db, key)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.New("key removed during iteration")
	}
	return value, nil
}

func iterGet(db *DB, key []byte) ([]byte, bool, error) {
	db.lock.Lock()
	defer db.lock.Unlock()

	value, exists := db.db[string(key)]
	return value, exists, nil
}
