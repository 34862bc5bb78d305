package badgerdb

import (
	"time"

	"github.com/dgraph-io/badger/v2"

	simdb "github.com/nearsim/go-contract-sim/db"
	"github.com/nearsim/go-contract-sim/log"
)

type Transaction struct {
	db        *DB
	tx        *badger.Txn
	createT   time.Time
	setCount  uint
	delCount  uint
	keySize   uint64
	valueSize uint64
}

func (transaction *Transaction) Set(namespace []byte, key []byte, value []byte) error {
	key = simdb.PrependNamespace(namespace, key)
	key = simdb.ConvNilToBytes(key)
	value = simdb.ConvNilToBytes(value)

	err := transaction.tx.Set(key, value)
	if err != nil {
		return err
	}

	transaction.setCount++
	transaction.keySize += uint64(len(key))
	transaction.valueSize += uint64(len(value))
	return nil
}

func (transaction *Transaction) Delete(namespace []byte, key []byte) error {
	key = simdb.PrependNamespace(namespace, key)
	key = simdb.ConvNilToBytes(key)

	err := transaction.tx.Delete(key)
	if err != nil {
		return err
	}

	transaction.delCount++
	return nil
}

func (transaction *Transaction) Commit() error {
	writeStartT := time.Now()
	err := transaction.tx.Commit()
	writeEndT := time.Now()

	if writeEndT.Sub(writeStartT) > time.Millisecond*100 {
		// warn when a commit takes too long (100ms)
		logger.Warn().Str("name", transaction.db.name).Str("caller", log.SkipCaller(2)).
			Dur("prepareTime", writeStartT.Sub(transaction.createT)).
			Dur("takenTime", writeEndT.Sub(writeStartT)).
			Uint("delCount", transaction.delCount).Uint("setCount", transaction.setCount).
			Uint64("setKeySize", transaction.keySize).Uint64("setValueSize", transaction.valueSize).
			Msg("commit takes long time")
	}

	return err
}

func (transaction *Transaction) Discard() {
	transaction.tx.Discard()
}
