package runtime

import (
	"encoding/json"
	"fmt"

	"github.com/nearsim/go-contract-sim/types"
)

// Account is a runtime-bound handle for issuing calls signed by one
// account.
type Account struct {
	runtime *Runtime
	ID      string
}

// CallInput coerces the common input shapes into request bytes: raw
// bytes and strings pass through, anything else is JSON encoded.
func CallInput(input interface{}) ([]byte, error) {
	switch v := input.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	case json.RawMessage:
		return v, nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode call input: %w", err)
		}
		return data, nil
	}
}

// Call runs a full scheduled invocation of a method on this account,
// signed by this account.
func (a *Account) Call(methodName string, input interface{}, prepaidGas uint64) (*types.RunResult, error) {
	return a.CallOther(a.ID, methodName, input, prepaidGas)
}

// CallOther runs a full scheduled invocation of a method on another
// account, signed by this account.
func (a *Account) CallOther(accountID string, methodName string, input interface{}, prepaidGas uint64) (*types.RunResult, error) {
	inputBytes, err := CallInput(input)
	if err != nil {
		return nil, err
	}
	return a.runtime.Call(accountID, methodName, inputBytes, a.ID, prepaidGas)
}

// CallStep runs a single step of a method on this account without
// scheduling any spawned receipts.
func (a *Account) CallStep(methodName string, input interface{}, prepaidGas uint64) (*types.StepResult, error) {
	return a.CallStepOther(a.ID, methodName, input, prepaidGas)
}

// CallStepOther runs a single step of a method on another account.
func (a *Account) CallStepOther(accountID string, methodName string, input interface{}, prepaidGas uint64) (*types.StepResult, error) {
	inputBytes, err := CallInput(input)
	if err != nil {
		return nil, err
	}
	return a.runtime.CallStep(StepParams{
		AccountID:  accountID,
		MethodName: methodName,
		Input:      inputBytes,
		SignerID:   a.ID,
		PrepaidGas: prepaidGas,
	})
}

// View runs a read-only method on this account.
func (a *Account) View(methodName string, input interface{}) (*types.ViewResult, error) {
	inputBytes, err := CallInput(input)
	if err != nil {
		return nil, err
	}
	return a.runtime.View(a.ID, methodName, inputBytes)
}
