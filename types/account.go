package types

import (
	"encoding/json"
	"fmt"

	"github.com/mr-tron/base58"
)

// DefaultBalance is the balance given to lazily created accounts, matching
// the standalone runner's default context.
var DefaultBalance, _ = ParseBigInt("1000000000000000000000000000000000000")

// Account is the ledger entity for one account id. State is the opaque
// contract state blob exchanged with the runner.
type Account struct {
	ID              string          `json:"id"`
	Balance         *BigInt         `json:"balance"`
	LockedBalance   *BigInt         `json:"locked_balance"`
	State           json.RawMessage `json:"state"`
	SignerPublicKey string          `json:"signer_public_key"`
	WasmFile        string          `json:"wasm_file,omitempty"`
}

func NewAccount(id string, wasmFile string) *Account {
	return &Account{
		ID:              id,
		Balance:         DefaultBalance.Copy(),
		LockedBalance:   NewBigInt(0),
		State:           json.RawMessage("{}"),
		SignerPublicKey: DefaultPublicKey(id),
		WasmFile:        wasmFile,
	}
}

// DefaultPublicKey derives a stable placeholder signer key from the account
// id: the id truncated/left-padded with spaces to 32 bytes, base58 encoded.
func DefaultPublicKey(id string) string {
	raw := []byte(id)
	if len(raw) > 32 {
		raw = raw[:32]
	}
	padded := make([]byte, 32)
	for i := range padded {
		padded[i] = ' '
	}
	copy(padded[32-len(raw):], raw)
	return base58.Encode(padded)
}

func (a *Account) SetState(state json.RawMessage) *Account {
	a.State = state
	return a
}

func (a *Account) SetBalance(balance *BigInt) *Account {
	a.Balance = balance
	return a
}

func (a *Account) SetLockedBalance(lockedBalance *BigInt) *Account {
	a.LockedBalance = lockedBalance
	return a
}

func (a *Account) SetSignerPublicKey(pk string) *Account {
	a.SignerPublicKey = pk
	return a
}

func (a *Account) SetWasmFile(wasmFile string) *Account {
	a.WasmFile = wasmFile
	return a
}

func (a *Account) Serialize() ([]byte, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("serialize account %s: %w", a.ID, err)
	}
	return data, nil
}

func DeserializeAccount(data []byte) (*Account, error) {
	var account Account
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, fmt.Errorf("deserialize account: %w", err)
	}
	if account.Balance == nil {
		account.Balance = NewBigInt(0)
	}
	if account.LockedBalance == nil {
		account.LockedBalance = NewBigInt(0)
	}
	if len(account.State) == 0 {
		account.State = json.RawMessage("{}")
	}
	return &account, nil
}
