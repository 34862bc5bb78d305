package runtime

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nearsim/go-contract-sim/types"
	"github.com/nearsim/go-contract-sim/vm"
)

func TestCallStepCommitsBalanceAndState(t *testing.T) {
	rt, fake := setupRuntime(t, "alice")
	fake.handle("alice", "bump", func(params vm.RunParams) (*types.StepResult, error) {
		return &types.StepResult{
			Outcome: &types.Outcome{
				Balance:    types.NewBigInt(777),
				ReturnData: types.ValueReturn("ok"),
			},
			State: json.RawMessage(`{"counter":"1"}`),
		}, nil
	})

	_, err := rt.CallStep(StepParams{AccountID: "alice", MethodName: "bump"})
	require.NoError(t, err)

	account, exists := rt.Ledger().Get("alice")
	require.True(t, exists)
	assert.Equal(t, "777", account.Balance.String())
	assert.JSONEq(t, `{"counter":"1"}`, string(account.State))
}

func TestErroredStepDoesNotCommit(t *testing.T) {
	rt, fake := setupRuntime(t, "alice")
	fake.handle("alice", "boom", func(params vm.RunParams) (*types.StepResult, error) {
		return errorResult("trapped")
	})

	result, err := rt.CallStep(StepParams{AccountID: "alice", MethodName: "boom"})
	require.NoError(t, err)
	assert.True(t, result.HasError())

	account, _ := rt.Ledger().Get("alice")
	assert.Equal(t, types.DefaultBalance.String(), account.Balance.String())
	assert.JSONEq(t, `{}`, string(account.State))
}

func TestViewNeverCommits(t *testing.T) {
	rt, fake := setupRuntime(t, "alice")
	fake.handle("alice", "peek", func(params vm.RunParams) (*types.StepResult, error) {
		assert.True(t, params.Context.IsView)
		return &types.StepResult{
			Outcome: &types.Outcome{
				Balance:    types.NewBigInt(1),
				ReturnData: types.ValueReturn("seen"),
			},
			State: json.RawMessage(`{"mutated":"yes"}`),
		}, nil
	})

	result, err := rt.View("alice", "peek", nil)
	require.NoError(t, err)
	require.NotNil(t, result.ReturnData)
	assert.Equal(t, "seen", *result.ReturnData)

	account, _ := rt.Ledger().Get("alice")
	assert.Equal(t, types.DefaultBalance.String(), account.Balance.String())
	assert.JSONEq(t, `{}`, string(account.State))
}

func TestCallStepDefaultsSignerAndPredecessor(t *testing.T) {
	rt, fake := setupRuntime(t, "alice")
	var seen *types.Context
	fake.handle("alice", "who", func(params vm.RunParams) (*types.StepResult, error) {
		seen = params.Context
		return valueResult("")
	})

	_, err := rt.CallStep(StepParams{AccountID: "alice", MethodName: "who"})
	require.NoError(t, err)
	require.NotNil(t, seen)
	assert.Equal(t, "alice", seen.SignerAccountID)
	assert.Equal(t, "alice", seen.PredecessorAccountID)
	assert.Equal(t, types.DefaultPublicKey("alice"), seen.SignerAccountPK)
	assert.Equal(t, DefaultPrepaidGas, seen.PrepaidGas)
}

func TestCallTargetWithoutCodeIsFatal(t *testing.T) {
	rt, _ := setupRuntime(t)

	_, err := rt.CallStep(StepParams{AccountID: "ghost", MethodName: "anything"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoCode))

	_, err = rt.Call("ghost", "anything", nil, "", 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoCode))
}

func TestAccountHandleCallsThroughRuntime(t *testing.T) {
	rt, fake := setupRuntime(t, "contract")
	var seen *types.Context
	fake.handle("contract", "hello", func(params vm.RunParams) (*types.StepResult, error) {
		seen = params.Context
		return valueResult("hi")
	})

	caller, err := rt.NewAccount("caller", "caller.wasm")
	require.NoError(t, err)

	result, err := caller.CallOther("contract", "hello", map[string]string{"name": "bob"}, 0)
	require.NoError(t, err)
	require.NotNil(t, result.ReturnData)
	assert.Equal(t, "hi", *result.ReturnData)

	require.NotNil(t, seen)
	assert.Equal(t, "caller", seen.SignerAccountID)
}

func TestCallInputCoercion(t *testing.T) {
	raw, err := CallInput([]byte("bytes"))
	require.NoError(t, err)
	assert.Equal(t, []byte("bytes"), raw)

	str, err := CallInput("text")
	require.NoError(t, err)
	assert.Equal(t, []byte("text"), str)

	obj, err := CallInput(map[string]int{"x": 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":1}`, string(obj))

	none, err := CallInput(nil)
	require.NoError(t, err)
	assert.Nil(t, none)
}
