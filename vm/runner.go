// Package vm is the boundary to the external contract interpreter. The
// interpreter is an opaque standalone binary invoked once per step; its
// failure modes are infrastructure failures, distinct from in-protocol
// errors reported inside a well-formed response.
package vm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"

	"github.com/nearsim/go-contract-sim/log"
	"github.com/nearsim/go-contract-sim/types"
)

// DefaultBinary is the runner looked up on PATH when none is configured.
const DefaultBinary = "near-vm-runner-standalone"

var (
	// ErrRunnerFailure: the runner could not be invoked or exited
	// abnormally. Fatal for the whole run.
	ErrRunnerFailure = errors.New("vm runner failure")
	// ErrMalformedResponse: the runner exited cleanly but its output is
	// not a well-formed step result. Also fatal.
	ErrMalformedResponse = errors.New("malformed vm runner response")
)

// RunParams is one step's worth of input for the runner.
type RunParams struct {
	Context        *types.Context
	WasmFile       string
	MethodName     string
	State          json.RawMessage
	PromiseResults []types.PromiseResult
}

// Runner executes exactly one call step. Implementations must be
// synchronous; the scheduler never issues two invocations concurrently.
type Runner interface {
	Run(params RunParams) (*types.StepResult, error)
}

// StandaloneRunner shells out to the runner binary for every step.
type StandaloneRunner struct {
	binary string
	logger *log.Logger
}

func NewStandaloneRunner(binary string) *StandaloneRunner {
	if binary == "" {
		binary = DefaultBinary
	}
	return &StandaloneRunner{
		binary: binary,
		logger: log.NewLogger("vm"),
	}
}

func (r *StandaloneRunner) Run(params RunParams) (*types.StepResult, error) {
	args, err := buildArgs(params)
	if err != nil {
		return nil, err
	}

	if r.logger.IsDebugEnabled() {
		r.logger.Debug().Str("binary", r.binary).Strs("args", args).Msg("Invoke runner")
	}

	cmd := exec.Command(r.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v (stderr: %s)",
			ErrRunnerFailure, r.binary, params.MethodName, err, stderr.String())
	}

	return DecodeStepResult(stdout.Bytes())
}

func buildArgs(params RunParams) ([]string, error) {
	contextJSON, err := json.Marshal(params.Context)
	if err != nil {
		return nil, fmt.Errorf("encode context: %w", err)
	}

	state := params.State
	if len(state) == 0 {
		state = json.RawMessage("{}")
	}

	args := []string{
		"--context=" + string(contextJSON),
		"--wasm-file=" + params.WasmFile,
		"--method-name=" + params.MethodName,
		"--state=" + string(state),
	}
	// one entry per resolved input, in declared order
	for _, promiseResult := range params.PromiseResults {
		resultJSON, err := json.Marshal(promiseResult)
		if err != nil {
			return nil, fmt.Errorf("encode promise result: %w", err)
		}
		args = append(args, "--promise-results="+string(resultJSON))
	}
	return args, nil
}

// DecodeStepResult parses the runner's stdout into a StepResult.
func DecodeStepResult(data []byte) (*types.StepResult, error) {
	var result types.StepResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if result.Outcome == nil && !result.HasError() {
		return nil, fmt.Errorf("%w: response carries neither outcome nor err", ErrMalformedResponse)
	}
	return &result, nil
}
