package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ReturnData is a step's return descriptor: a concrete value, no value, or
// a deferred return pointing at one of the step's own spawned receipts by
// local index. On the wire it is the tagged union {"Value": s} |
// {"ReceiptIndex": n} | "None".
type ReturnData struct {
	Value        *string
	ReceiptIndex *uint64
}

func ValueReturn(s string) ReturnData {
	return ReturnData{Value: &s}
}

func ReceiptIndexReturn(i uint64) ReturnData {
	return ReturnData{ReceiptIndex: &i}
}

func NoneReturn() ReturnData {
	return ReturnData{}
}

// IsReceiptIndex reports whether this is a deferred return.
func (rd ReturnData) IsReceiptIndex() bool {
	return rd.ReceiptIndex != nil
}

// ValueOrEmpty flattens a concrete or empty return to its value bytes,
// with "" for the empty case.
func (rd ReturnData) ValueOrEmpty() string {
	if rd.Value != nil {
		return *rd.Value
	}
	return ""
}

func (rd ReturnData) MarshalJSON() ([]byte, error) {
	switch {
	case rd.Value != nil:
		return json.Marshal(map[string]string{"Value": *rd.Value})
	case rd.ReceiptIndex != nil:
		return json.Marshal(map[string]uint64{"ReceiptIndex": *rd.ReceiptIndex})
	default:
		return json.Marshal("None")
	}
}

func (rd *ReturnData) UnmarshalJSON(data []byte) error {
	*rd = ReturnData{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s != "None" {
			return fmt.Errorf("unknown return_data tag %q", s)
		}
		return nil
	}
	var tagged struct {
		Value        *string `json:"Value"`
		ReceiptIndex *uint64 `json:"ReceiptIndex"`
	}
	if err := json.Unmarshal(data, &tagged); err != nil {
		return err
	}
	rd.Value = tagged.Value
	rd.ReceiptIndex = tagged.ReceiptIndex
	return nil
}

// PromiseResult is a resolved input surfaced to the runner: the producing
// receipt either succeeded with a value or failed. On the wire:
// {"Successful": s} | {"Failed": null}.
type PromiseResult struct {
	Value  string
	Failed bool
}

func SuccessfulResult(value string) PromiseResult {
	return PromiseResult{Value: value}
}

func FailedResult() PromiseResult {
	return PromiseResult{Failed: true}
}

func (pr PromiseResult) MarshalJSON() ([]byte, error) {
	if pr.Failed {
		return []byte(`{"Failed":null}`), nil
	}
	return json.Marshal(map[string]string{"Successful": pr.Value})
}

func (pr *PromiseResult) UnmarshalJSON(data []byte) error {
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return err
	}
	if _, failed := tagged["Failed"]; failed {
		*pr = FailedResult()
		return nil
	}
	raw, ok := tagged["Successful"]
	if !ok {
		return fmt.Errorf("unknown promise result %s", data)
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return err
	}
	*pr = SuccessfulResult(value)
	return nil
}

// Outcome is the runner-reported execution outcome of one step.
type Outcome struct {
	Balance    *BigInt    `json:"balance"`
	Logs       []string   `json:"logs"`
	ReturnData ReturnData `json:"return_data"`
}

// StepResult is the full decoded runner response for one step. Err is the
// in-protocol error descriptor (kept raw for the caller), not an
// infrastructure failure. State is present only when no error occurred.
type StepResult struct {
	Err      json.RawMessage `json:"err"`
	Outcome  *Outcome        `json:"outcome"`
	Receipts []*Receipt      `json:"receipts"`
	State    json.RawMessage `json:"state"`
}

// HasError reports whether the step carried an in-protocol error.
func (r *StepResult) HasError() bool {
	return len(r.Err) > 0 && string(r.Err) != "null"
}

// ErrString renders the in-protocol error for messages and matching.
func (r *StepResult) ErrString() string {
	if !r.HasError() {
		return ""
	}
	return string(r.Err)
}

// ReturnValue flattens the outcome's return descriptor: nil when there is
// no outcome, otherwise the concrete value with "" for the empty and
// deferred cases.
func (r *StepResult) ReturnValue() *string {
	if r.Outcome == nil {
		return nil
	}
	if r.Outcome.ReturnData.Value != nil {
		return r.Outcome.ReturnData.Value
	}
	empty := ""
	return &empty
}

// RunResult is the aggregate result of a full scheduled run: the top-level
// return value and error, the final step result it came from, and the full
// index-keyed trace.
type RunResult struct {
	ReturnData *string                    `json:"return_data"`
	Err        json.RawMessage            `json:"err"`
	Result     *StepResult                `json:"result"`
	Calls      map[uint64]*PendingReceipt `json:"calls"`
	Results    map[uint64]*StepResult     `json:"results"`
}

// ViewResult is the result of a read-only single step.
type ViewResult struct {
	ReturnData *string         `json:"return_data"`
	Err        json.RawMessage `json:"err"`
	Result     *StepResult     `json:"result"`
}
