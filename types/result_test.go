package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReturnDataDecode(t *testing.T) {
	var value ReturnData
	require.NoError(t, json.Unmarshal([]byte(`{"Value":"hello"}`), &value))
	require.NotNil(t, value.Value)
	assert.Equal(t, "hello", *value.Value)
	assert.False(t, value.IsReceiptIndex())

	var index ReturnData
	require.NoError(t, json.Unmarshal([]byte(`{"ReceiptIndex":2}`), &index))
	require.True(t, index.IsReceiptIndex())
	assert.Equal(t, uint64(2), *index.ReceiptIndex)
	assert.Equal(t, "", index.ValueOrEmpty())

	var none ReturnData
	require.NoError(t, json.Unmarshal([]byte(`"None"`), &none))
	assert.Nil(t, none.Value)
	assert.Nil(t, none.ReceiptIndex)
	assert.Equal(t, "", none.ValueOrEmpty())

	var bad ReturnData
	assert.Error(t, json.Unmarshal([]byte(`"Something"`), &bad))
}

func TestReturnDataEncode(t *testing.T) {
	data, err := json.Marshal(ValueReturn("x"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"Value":"x"}`, string(data))

	data, err = json.Marshal(ReceiptIndexReturn(1))
	require.NoError(t, err)
	assert.JSONEq(t, `{"ReceiptIndex":1}`, string(data))

	data, err = json.Marshal(NoneReturn())
	require.NoError(t, err)
	assert.Equal(t, `"None"`, string(data))
}

func TestPromiseResultRoundTrip(t *testing.T) {
	data, err := json.Marshal(SuccessfulResult("[1,2]"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"Successful":"[1,2]"}`, string(data))

	data, err = json.Marshal(FailedResult())
	require.NoError(t, err)
	assert.JSONEq(t, `{"Failed":null}`, string(data))

	var failed PromiseResult
	require.NoError(t, json.Unmarshal([]byte(`{"Failed":null}`), &failed))
	assert.True(t, failed.Failed)

	var successful PromiseResult
	require.NoError(t, json.Unmarshal([]byte(`{"Successful":""}`), &successful))
	assert.False(t, successful.Failed)
	assert.Equal(t, "", successful.Value)
}

func TestStepResultErrField(t *testing.T) {
	var withErr StepResult
	require.NoError(t, json.Unmarshal([]byte(`{"err":{"FunctionCallError":"boom"},"outcome":null}`), &withErr))
	assert.True(t, withErr.HasError())
	assert.Contains(t, withErr.ErrString(), "boom")

	var nullErr StepResult
	require.NoError(t, json.Unmarshal([]byte(`{"err":null,"outcome":{"balance":"10","logs":[],"return_data":"None"}}`), &nullErr))
	assert.False(t, nullErr.HasError())
	assert.Equal(t, "", nullErr.ErrString())
	assert.Equal(t, "10", nullErr.Outcome.Balance.String())
}

func TestStepResultRunnerResponse(t *testing.T) {
	// a realistic runner response with a spawned dependency pair
	payload := []byte(`{
		"err": null,
		"outcome": {
			"balance": "999999999999999999999",
			"logs": ["sorting"],
			"return_data": {"ReceiptIndex": 1}
		},
		"receipts": [
			{
				"receiver_id": "sorter",
				"receipt_indices": [],
				"actions": [{"FunctionCall": {"method_name": "merge_sort", "args": "{\"arr\":[1]}", "gas": 1000, "deposit": 0}}]
			},
			{
				"receiver_id": "sorter",
				"receipt_indices": [0],
				"actions": [{"FunctionCall": {"method_name": "merge", "args": "{}", "gas": 1000, "deposit": "0"}}]
			}
		],
		"state": {"k": "v"}
	}`)

	var result StepResult
	require.NoError(t, json.Unmarshal(payload, &result))
	assert.False(t, result.HasError())
	require.True(t, result.Outcome.ReturnData.IsReceiptIndex())
	assert.Equal(t, uint64(1), *result.Outcome.ReturnData.ReceiptIndex)
	require.Len(t, result.Receipts, 2)

	first, err := result.Receipts[0].FunctionCall()
	require.NoError(t, err)
	assert.Equal(t, "merge_sort", first.MethodName)
	assert.Equal(t, `{"arr":[1]}`, string(first.Args))
	assert.Equal(t, uint64(1000), first.Gas)
	assert.Equal(t, "0", first.Deposit.String())

	second, err := result.Receipts[1].FunctionCall()
	require.NoError(t, err)
	assert.Equal(t, "0", second.Deposit.String())
	assert.Equal(t, []uint64{0}, result.Receipts[1].ReceiptIndices)
}

func TestReceiptShapeValidation(t *testing.T) {
	var noActions Receipt
	require.NoError(t, json.Unmarshal([]byte(`{"receiver_id":"a","receipt_indices":[],"actions":[]}`), &noActions))
	_, err := noActions.FunctionCall()
	assert.Error(t, err)

	var wrongKind Receipt
	require.NoError(t, json.Unmarshal([]byte(`{"receiver_id":"a","receipt_indices":[],"actions":[{"Transfer":{"deposit":"1"}}]}`), &wrongKind))
	_, err = wrongKind.FunctionCall()
	assert.Error(t, err)
}
