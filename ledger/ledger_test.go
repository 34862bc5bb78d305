package ledger

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nearsim/go-contract-sim/db/memorydb"
	"github.com/nearsim/go-contract-sim/types"
)

func TestGetOrCreateIsIdempotent(t *testing.T) {
	accountLedger, err := NewAccountLedger(memorydb.NewDB(), nil)
	require.NoError(t, err)

	first, err := accountLedger.GetOrCreate("alice")
	require.NoError(t, err)
	second, err := accountLedger.GetOrCreate("alice")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, types.DefaultBalance.String(), first.Balance.String())
	assert.Equal(t, "", first.WasmFile)
}

func TestCustomDefaultBalance(t *testing.T) {
	accountLedger, err := NewAccountLedger(memorydb.NewDB(), types.NewBigInt(42))
	require.NoError(t, err)

	account, err := accountLedger.GetOrCreate("alice")
	require.NoError(t, err)
	assert.Equal(t, "42", account.Balance.String())
}

func TestCommitOverwritesBalanceAndState(t *testing.T) {
	accountLedger, err := NewAccountLedger(memorydb.NewDB(), nil)
	require.NoError(t, err)

	_, err = accountLedger.GetOrCreate("alice")
	require.NoError(t, err)

	require.NoError(t, accountLedger.Commit("alice", types.NewBigInt(99), json.RawMessage(`{"x":"1"}`)))

	account, exists := accountLedger.Get("alice")
	require.True(t, exists)
	assert.Equal(t, "99", account.Balance.String())
	assert.JSONEq(t, `{"x":"1"}`, string(account.State))
}

func TestCommitToUnknownAccountFails(t *testing.T) {
	accountLedger, err := NewAccountLedger(memorydb.NewDB(), nil)
	require.NoError(t, err)

	assert.Error(t, accountLedger.Commit("ghost", types.NewBigInt(1), nil))
}

func TestAccountsPersistAcrossLedgers(t *testing.T) {
	database := memorydb.NewDB()

	first, err := NewAccountLedger(database, nil)
	require.NoError(t, err)
	require.NoError(t, first.Register(types.NewAccount("alice", "alice.wasm")))
	require.NoError(t, first.Commit("alice", types.NewBigInt(5), json.RawMessage(`{"n":"1"}`)))
	_, err = first.GetOrCreate("bob")
	require.NoError(t, err)

	// a fresh ledger over the same store sees the committed records
	second, err := NewAccountLedger(database, nil)
	require.NoError(t, err)

	alice, exists := second.Get("alice")
	require.True(t, exists)
	assert.Equal(t, "5", alice.Balance.String())
	assert.Equal(t, "alice.wasm", alice.WasmFile)
	assert.JSONEq(t, `{"n":"1"}`, string(alice.State))

	ids := []string{}
	for _, account := range second.Accounts() {
		ids = append(ids, account.ID)
	}
	assert.Equal(t, []string{"alice", "bob"}, ids)
}
