package types

import (
	"encoding/json"
	"errors"
	"fmt"
)

// PendingReceipt is one queued unit of work: a deferred function call
// against a single target account.
type PendingReceipt struct {
	Index           uint64   `json:"index"`
	AccountID       string   `json:"account_id"`
	MethodName      string   `json:"method_name"`
	Input           []byte   `json:"input"`
	SignerID        string   `json:"signer_account_id"`
	PredecessorID   string   `json:"predecessor_account_id"`
	InputData       []uint64 `json:"input_data"`
	PrepaidGas      uint64   `json:"prepaid_gas"`
	AttachedDeposit *BigInt  `json:"attached_deposit"`
}

// Receipt is a child receipt descriptor as emitted by the runner.
// ReceiptIndices are local 0-based indices into the same step's spawned
// list, naming the siblings whose output this receipt requires as input.
type Receipt struct {
	ReceiverID     string   `json:"receiver_id"`
	ReceiptIndices []uint64 `json:"receipt_indices"`
	Actions        []Action `json:"actions"`
}

type Action struct {
	FunctionCall *FunctionCallAction `json:"FunctionCall,omitempty"`
}

type FunctionCallAction struct {
	MethodName string    `json:"method_name"`
	Args       CallInput `json:"args"`
	Gas        uint64    `json:"gas"`
	Deposit    *BigInt   `json:"deposit"`
}

var errBadReceiptShape = errors.New("receipt must carry exactly one FunctionCall action")

// FunctionCall returns the receipt's single function-call action. The
// simulated protocol only understands single function-call receipts; any
// other shape is rejected.
func (r *Receipt) FunctionCall() (*FunctionCallAction, error) {
	if len(r.Actions) != 1 {
		return nil, fmt.Errorf("%w: got %d actions", errBadReceiptShape, len(r.Actions))
	}
	fca := r.Actions[0].FunctionCall
	if fca == nil {
		return nil, errBadReceiptShape
	}
	return fca, nil
}

// CallInput is a method argument payload. The runner emits args as a JSON
// string; callers of the simulator may also supply raw JSON objects or
// byte arrays, which are coerced the same way on decode.
type CallInput []byte

func (in CallInput) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(in))
}

func (in *CallInput) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*in = nil
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*in = []byte(s)
	case '[':
		var nums []int
		if err := json.Unmarshal(data, &nums); err == nil {
			raw := make([]byte, len(nums))
			for i, n := range nums {
				if n < 0 || n > 255 {
					// not a byte list; keep the raw JSON
					*in = append([]byte(nil), data...)
					return nil
				}
				raw[i] = byte(n)
			}
			*in = raw
			return nil
		}
		*in = append([]byte(nil), data...)
	default:
		*in = append([]byte(nil), data...)
	}
	return nil
}
