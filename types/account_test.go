package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccountDefaults(t *testing.T) {
	account := NewAccount("alice", "alice.wasm")
	assert.Equal(t, "alice", account.ID)
	assert.Equal(t, DefaultBalance.String(), account.Balance.String())
	assert.Equal(t, "0", account.LockedBalance.String())
	assert.JSONEq(t, `{}`, string(account.State))
	assert.Equal(t, "alice.wasm", account.WasmFile)
	assert.NotEmpty(t, account.SignerPublicKey)
}

func TestDefaultPublicKeyIsStable(t *testing.T) {
	assert.Equal(t, DefaultPublicKey("alice"), DefaultPublicKey("alice"))
	assert.NotEqual(t, DefaultPublicKey("alice"), DefaultPublicKey("bob"))
	// ids longer than 32 bytes truncate instead of failing
	long := "a-very-long-account-id-that-exceeds-thirty-two-characters"
	assert.NotEmpty(t, DefaultPublicKey(long))
}

func TestAccountSerializeRoundTrip(t *testing.T) {
	account := NewAccount("alice", "alice.wasm").
		SetState(json.RawMessage(`{"k":"v"}`)).
		SetBalance(NewBigInt(123)).
		SetLockedBalance(NewBigInt(7))

	data, err := account.Serialize()
	require.NoError(t, err)

	decoded, err := DeserializeAccount(data)
	require.NoError(t, err)
	assert.Equal(t, "alice", decoded.ID)
	assert.Equal(t, "123", decoded.Balance.String())
	assert.Equal(t, "7", decoded.LockedBalance.String())
	assert.JSONEq(t, `{"k":"v"}`, string(decoded.State))
	assert.Equal(t, "alice.wasm", decoded.WasmFile)
}

func TestBigIntDecodeForms(t *testing.T) {
	var fromString BigInt
	require.NoError(t, json.Unmarshal([]byte(`"340282366920938463463374607431768211455"`), &fromString))
	assert.Equal(t, "340282366920938463463374607431768211455", fromString.String())

	var fromNumber BigInt
	require.NoError(t, json.Unmarshal([]byte(`1000000000000000000000000000000000000`), &fromNumber))
	assert.Equal(t, DefaultBalance.String(), fromNumber.String())

	var bad BigInt
	assert.Error(t, json.Unmarshal([]byte(`"12x"`), &bad))
}
