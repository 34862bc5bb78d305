// Package ledger owns the account entities of a simulated run.
package ledger

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/nearsim/go-contract-sim/db"
	"github.com/nearsim/go-contract-sim/log"
	"github.com/nearsim/go-contract-sim/types"
)

// AccountLedger is pure state storage: accounts are created lazily on
// first reference and mutated only through Commit. Records are written
// through to the backing store so a directory backed store survives
// process runs.
type AccountLedger struct {
	db             db.DB
	accounts       map[string]*types.Account
	defaultBalance *types.BigInt
	logger         *log.Logger
}

// NewAccountLedger loads any persisted accounts from database. A nil
// defaultBalance falls back to the runner's default.
func NewAccountLedger(database db.DB, defaultBalance *types.BigInt) (*AccountLedger, error) {
	if defaultBalance == nil {
		defaultBalance = types.DefaultBalance
	}
	ledger := &AccountLedger{
		db:             database,
		accounts:       make(map[string]*types.Account),
		defaultBalance: defaultBalance,
		logger:         log.NewLogger("ledger"),
	}
	if err := ledger.loadAll(); err != nil {
		return nil, err
	}
	return ledger, nil
}

func (l *AccountLedger) loadAll() error {
	start := db.PrependNamespace(db.NamespaceAccounts, db.EmptyKey)
	end := db.NamespaceEnd(db.NamespaceAccounts)
	for iter := l.db.Iterator(start, end); iter.Valid(); iter.Next() {
		value, err := iter.Value()
		if err != nil {
			return fmt.Errorf("load accounts: %w", err)
		}
		account, err := types.DeserializeAccount(value)
		if err != nil {
			return fmt.Errorf("load accounts: %w", err)
		}
		l.accounts[account.ID] = account
	}
	l.logger.Debug().Int("count", len(l.accounts)).Msg("Loaded persisted accounts")
	return nil
}

// Get returns the account for id without creating it.
func (l *AccountLedger) Get(id string) (*types.Account, bool) {
	account, exists := l.accounts[id]
	return account, exists
}

// GetOrCreate returns the account for id, creating it with the default
// balance on first reference. Idempotent.
func (l *AccountLedger) GetOrCreate(id string) (*types.Account, error) {
	if account, exists := l.accounts[id]; exists {
		return account, nil
	}
	account := types.NewAccount(id, "").SetBalance(l.defaultBalance.Copy())
	if err := l.Register(account); err != nil {
		return nil, err
	}
	return account, nil
}

// Register inserts or overwrites an account record and persists it.
func (l *AccountLedger) Register(account *types.Account) error {
	if err := l.persist(account); err != nil {
		return err
	}
	l.accounts[account.ID] = account
	return nil
}

// Commit overwrites the account's balance and state. Called only after a
// non-error step execution targeting that account.
func (l *AccountLedger) Commit(id string, balance *types.BigInt, state json.RawMessage) error {
	account, exists := l.accounts[id]
	if !exists {
		return fmt.Errorf("commit to unknown account %s", id)
	}
	if balance != nil {
		account.Balance = balance.Copy()
	}
	if state != nil {
		account.State = state
	}
	return l.persist(account)
}

func (l *AccountLedger) persist(account *types.Account) error {
	data, err := account.Serialize()
	if err != nil {
		return err
	}
	tx := l.db.NewTx()
	if err := tx.Set(db.NamespaceAccounts, []byte(account.ID), data); err != nil {
		tx.Discard()
		return fmt.Errorf("persist account %s: %w", account.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("persist account %s: %w", account.ID, err)
	}
	return nil
}

// Accounts returns every known account ordered by id.
func (l *AccountLedger) Accounts() []*types.Account {
	accounts := make([]*types.Account, 0, len(l.accounts))
	for _, account := range l.accounts {
		accounts = append(accounts, account)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].ID < accounts[j].ID
	})
	return accounts
}
