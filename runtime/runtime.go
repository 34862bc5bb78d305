// Package runtime drives simulated contract execution: single steps
// against the external interpreter and full scheduled runs of the receipt
// cascade a top-level call triggers.
package runtime

import (
	"errors"
	"fmt"

	"github.com/nearsim/go-contract-sim/ledger"
	"github.com/nearsim/go-contract-sim/log"
	"github.com/nearsim/go-contract-sim/types"
	"github.com/nearsim/go-contract-sim/vm"
)

// DefaultPrepaidGas matches the runner's default per-call gas budget.
const DefaultPrepaidGas uint64 = 1e15

var (
	// ErrNoCode: the call target has no contract code deployed. Fatal,
	// like any other condition that prevents invoking the interpreter.
	ErrNoCode = errors.New("account has no contract code")
	// ErrUnsupportedReceipt: a step spawned a receipt the simulator
	// cannot model (not exactly one function-call action). Fatal.
	ErrUnsupportedReceipt = errors.New("unsupported receipt shape")
)

// Runtime owns the account ledger and the runner boundary.
type Runtime struct {
	ledger *ledger.AccountLedger
	runner vm.Runner
	logger *log.Logger
}

func New(accountLedger *ledger.AccountLedger, runner vm.Runner) *Runtime {
	return &Runtime{
		ledger: accountLedger,
		runner: runner,
		logger: log.NewLogger("runtime"),
	}
}

// Ledger exposes the underlying account ledger.
func (r *Runtime) Ledger() *ledger.AccountLedger {
	return r.ledger
}

// NewAccount registers an account with deployed contract code and returns
// a handle bound to this runtime.
func (r *Runtime) NewAccount(id string, wasmFile string) (*Account, error) {
	if err := r.ledger.Register(types.NewAccount(id, wasmFile)); err != nil {
		return nil, err
	}
	return &Account{runtime: r, ID: id}, nil
}

// Account returns a handle for an already known account id.
func (r *Runtime) Account(id string) (*Account, bool) {
	if _, exists := r.ledger.Get(id); !exists {
		return nil, false
	}
	return &Account{runtime: r, ID: id}, true
}

// StepParams are the inputs for executing exactly one call step.
type StepParams struct {
	AccountID           string
	MethodName          string
	Input               []byte
	SignerID            string
	PredecessorID       string
	InputData           []types.PromiseResult
	OutputDataReceivers []string
	PrepaidGas          uint64
	AttachedDeposit     *types.BigInt
	IsView              bool
}

// CallStep runs one step through the interpreter and, for non-view steps
// without an in-protocol error, commits the resulting balance and state
// back to the ledger. A returned error is an infrastructure failure and
// aborts the surrounding run.
func (r *Runtime) CallStep(params StepParams) (*types.StepResult, error) {
	if params.SignerID == "" {
		params.SignerID = params.AccountID
	}
	if params.PredecessorID == "" {
		params.PredecessorID = params.SignerID
	}
	if params.PrepaidGas == 0 {
		params.PrepaidGas = DefaultPrepaidGas
	}

	signer, err := r.ledger.GetOrCreate(params.SignerID)
	if err != nil {
		return nil, err
	}
	if _, err := r.ledger.GetOrCreate(params.PredecessorID); err != nil {
		return nil, err
	}
	target, err := r.ledger.GetOrCreate(params.AccountID)
	if err != nil {
		return nil, err
	}
	if target.WasmFile == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoCode, target.ID)
	}

	context := types.NewContext(types.ContextParams{
		Account:             target,
		SignerID:            signer.ID,
		SignerPK:            signer.SignerPublicKey,
		PredecessorID:       params.PredecessorID,
		Input:               params.Input,
		AttachedDeposit:     params.AttachedDeposit,
		PrepaidGas:          params.PrepaidGas,
		OutputDataReceivers: params.OutputDataReceivers,
		IsView:              params.IsView,
	})

	result, err := r.runner.Run(vm.RunParams{
		Context:        context,
		WasmFile:       target.WasmFile,
		MethodName:     params.MethodName,
		State:          target.State,
		PromiseResults: params.InputData,
	})
	if err != nil {
		r.logger.Error().Err(err).Str("account", params.AccountID).Str("method", params.MethodName).Msg("Step execution failed")
		return nil, err
	}

	// view calls never commit
	if !params.IsView && !result.HasError() {
		var balance *types.BigInt
		if result.Outcome != nil {
			balance = result.Outcome.Balance
		}
		if err := r.ledger.Commit(target.ID, balance, result.State); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// View executes a single read-only step. Ledger mutations are never
// committed.
func (r *Runtime) View(accountID string, methodName string, input []byte) (*types.ViewResult, error) {
	result, err := r.CallStep(StepParams{
		AccountID:  accountID,
		MethodName: methodName,
		Input:      input,
		IsView:     true,
	})
	if err != nil {
		return nil, err
	}
	return &types.ViewResult{
		ReturnData: result.ReturnValue(),
		Err:        result.Err,
		Result:     result,
	}, nil
}
