package types

import (
	"encoding/base64"
	"encoding/json"
)

// Fixed context values for a simulated run. The scheduler does not advance
// blocks, so every step sees the same block and epoch.
const (
	DefaultBlockIndex     uint64 = 1
	DefaultBlockTimestamp uint64 = 1585778575325000000
	DefaultEpochHeight    uint64 = 1
	DefaultStorageUsage   uint64 = 100
	DefaultRandomSeed            = "KuTCtARNzxZQ3YvXDeLjx83FDqxv2SdQTSbiq876zR7"
)

// Context is the per-step execution context handed to the runner. Field
// names and formats are fixed by the runner contract: balances travel as
// decimal strings, the input payload as base64.
type Context struct {
	CurrentAccountID     string      `json:"current_account_id"`
	SignerAccountID      string      `json:"signer_account_id"`
	SignerAccountPK      string      `json:"signer_account_pk"`
	PredecessorAccountID string      `json:"predecessor_account_id"`
	Input                string      `json:"input"`
	BlockIndex           uint64      `json:"block_index"`
	BlockTimestamp       uint64      `json:"block_timestamp"`
	EpochHeight          uint64      `json:"epoch_height"`
	AccountBalance       *BigInt     `json:"account_balance"`
	AccountLockedBalance *BigInt     `json:"account_locked_balance"`
	StorageUsage         uint64      `json:"storage_usage"`
	AttachedDeposit      json.Number `json:"attached_deposit"`
	PrepaidGas           uint64      `json:"prepaid_gas"`
	RandomSeed           string      `json:"random_seed"`
	IsView               bool        `json:"is_view"`
	OutputDataReceivers  []string    `json:"output_data_receivers"`
}

// ContextParams are the inputs to NewContext.
type ContextParams struct {
	Account             *Account
	SignerID            string
	SignerPK            string
	PredecessorID       string
	Input               []byte
	AttachedDeposit     *BigInt
	PrepaidGas          uint64
	OutputDataReceivers []string
	IsView              bool
}

// NewContext assembles the execution context from the target account's
// current ledger snapshot plus call parameters. Pure value assembly, no
// side effects.
func NewContext(params ContextParams) *Context {
	deposit := params.AttachedDeposit
	if deposit == nil {
		deposit = NewBigInt(0)
	}
	receivers := params.OutputDataReceivers
	if receivers == nil {
		receivers = []string{}
	}
	return &Context{
		CurrentAccountID:     params.Account.ID,
		SignerAccountID:      params.SignerID,
		SignerAccountPK:      params.SignerPK,
		PredecessorAccountID: params.PredecessorID,
		Input:                base64.StdEncoding.EncodeToString(params.Input),
		BlockIndex:           DefaultBlockIndex,
		BlockTimestamp:       DefaultBlockTimestamp,
		EpochHeight:          DefaultEpochHeight,
		AccountBalance:       params.Account.Balance.Copy(),
		AccountLockedBalance: params.Account.LockedBalance.Copy(),
		StorageUsage:         DefaultStorageUsage,
		AttachedDeposit:      json.Number(deposit.String()),
		PrepaidGas:           params.PrepaidGas,
		RandomSeed:           DefaultRandomSeed,
		IsView:               params.IsView,
		OutputDataReceivers:  receivers,
	}
}
