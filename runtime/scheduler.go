package runtime

import (
	"container/list"
	"fmt"

	"github.com/nearsim/go-contract-sim/log"
	"github.com/nearsim/go-contract-sim/types"
)

// dataBinding is one waiter registration: the consumer account expecting a
// producer's result under dataID.
type dataBinding struct {
	accountID string
	dataID    uint64
}

// scheduler holds the owned state of one run: the FIFO work queue, the
// resolved data slots, the waiter bindings per producer index, the global
// receipt/data-id counters and the accumulated trace.
type scheduler struct {
	runtime  *Runtime
	signerID string

	queue      *list.List // of *types.PendingReceipt
	inputData  map[uint64]types.PromiseResult
	outputData map[uint64][]dataBinding

	numReceipts uint64 // receipt indices reserved so far
	numData     uint64
	returnIndex uint64

	calls   map[uint64]*types.PendingReceipt
	results map[uint64]*types.StepResult

	logger *log.Logger
}

// Call executes a top-level contract invocation and the full cascade of
// receipts it spawns, as if a single authority drove the whole call graph
// to completion. The returned RunResult carries the final value and error
// plus the full index-keyed trace. A non-nil error is an infrastructure
// failure; in-protocol contract errors surface inside the RunResult.
func (r *Runtime) Call(accountID string, methodName string, input []byte, signerID string, prepaidGas uint64) (*types.RunResult, error) {
	if signerID == "" {
		signerID = accountID
	}
	if prepaidGas == 0 {
		prepaidGas = DefaultPrepaidGas
	}

	s := &scheduler{
		runtime:     r,
		signerID:    signerID,
		queue:       list.New(),
		inputData:   make(map[uint64]types.PromiseResult),
		outputData:  make(map[uint64][]dataBinding),
		numReceipts: 1,
		calls:       make(map[uint64]*types.PendingReceipt),
		results:     make(map[uint64]*types.StepResult),
		logger:      log.NewLogger("scheduler"),
	}
	s.queue.PushBack(&types.PendingReceipt{
		Index:           0,
		AccountID:       accountID,
		MethodName:      methodName,
		Input:           input,
		SignerID:        signerID,
		PredecessorID:   signerID,
		PrepaidGas:      prepaidGas,
		AttachedDeposit: types.NewBigInt(0),
	})

	return s.run()
}

func (s *scheduler) run() (*types.RunResult, error) {
	for s.queue.Len() > 0 {
		front := s.queue.Front()
		s.queue.Remove(front)
		receipt := front.Value.(*types.PendingReceipt)

		resolved, ready := s.resolveInputs(receipt)
		if !ready {
			// not all producers have completed yet; every dependency is
			// guaranteed to resolve, so requeue and move on
			s.queue.PushBack(receipt)
			continue
		}

		if err := s.step(receipt, resolved); err != nil {
			return nil, err
		}

		if s.logger.IsDebugEnabled() {
			s.logger.Debug().Int("queued", s.queue.Len()).
				Str("queue", s.dumpQueue()).
				Msg("Scheduler advanced")
		}
	}

	final, exists := s.results[s.returnIndex]
	if !exists {
		return nil, fmt.Errorf("scheduler finished without a result at return index %d", s.returnIndex)
	}
	return &types.RunResult{
		ReturnData: final.ReturnValue(),
		Err:        final.Err,
		Result:     final,
		Calls:      s.calls,
		Results:    s.results,
	}, nil
}

// resolveInputs collects the resolved values for the receipt's declared
// inputs, in declared order. Not ready if any slot is still unresolved.
func (s *scheduler) resolveInputs(receipt *types.PendingReceipt) ([]types.PromiseResult, bool) {
	resolved := make([]types.PromiseResult, 0, len(receipt.InputData))
	for _, dataID := range receipt.InputData {
		slot, exists := s.inputData[dataID]
		if !exists {
			return nil, false
		}
		resolved = append(resolved, slot)
	}
	return resolved, true
}

// step executes one ready receipt and applies its outcome: fulfills or
// forwards the waiters bound to its index, enqueues spawned children and
// advances the global counters.
func (s *scheduler) step(receipt *types.PendingReceipt, resolved []types.PromiseResult) error {
	index := receipt.Index
	waiters := s.outputData[index]

	receivers := make([]string, 0, len(waiters))
	for _, waiter := range waiters {
		receivers = append(receivers, waiter.accountID)
	}

	s.calls[index] = receipt
	result, err := s.runtime.CallStep(StepParams{
		AccountID:           receipt.AccountID,
		MethodName:          receipt.MethodName,
		Input:               receipt.Input,
		SignerID:            receipt.SignerID,
		PredecessorID:       receipt.PredecessorID,
		InputData:           resolved,
		OutputDataReceivers: receivers,
		PrepaidGas:          receipt.PrepaidGas,
		AttachedDeposit:     receipt.AttachedDeposit,
	})
	if err != nil {
		return err
	}
	s.results[index] = result

	if result.Outcome == nil {
		return nil
	}
	for _, line := range result.Outcome.Logs {
		s.logger.Info().Str("account", receipt.AccountID).Msg(line)
	}

	if result.HasError() {
		// the producer failed; every consumer sees a Failed promise
		for _, waiter := range waiters {
			s.inputData[waiter.dataID] = types.FailedResult()
		}
		delete(s.outputData, index)
		return nil
	}

	returnData := result.Outcome.ReturnData
	if returnData.IsReceiptIndex() {
		// deferred return: the true result comes from a receipt this step
		// is about to spawn. Splice every waiter forward to its global
		// index, and chase the top-level return if it pointed here.
		adjusted := *returnData.ReceiptIndex + s.numReceipts
		s.outputData[adjusted] = append(s.outputData[adjusted], waiters...)
		delete(s.outputData, index)
		if s.returnIndex == index {
			s.returnIndex = adjusted
		}
	} else {
		resultData := types.SuccessfulResult(returnData.ValueOrEmpty())
		for _, waiter := range waiters {
			s.inputData[waiter.dataID] = resultData
		}
		delete(s.outputData, index)
	}

	if err := s.spawn(receipt, result.Receipts); err != nil {
		return err
	}
	s.numReceipts += uint64(len(result.Receipts))
	return nil
}

// spawn enqueues the step's child receipts. Local indices (both the
// child's own position and its declared sibling dependencies) translate
// to global indices by offsetting with the receipt count reserved so far.
func (s *scheduler) spawn(parent *types.PendingReceipt, receipts []*types.Receipt) error {
	for i, child := range receipts {
		functionCall, err := child.FunctionCall()
		if err != nil {
			return fmt.Errorf("%w: receipt %d spawned by %s.%s: %v",
				ErrUnsupportedReceipt, i, parent.AccountID, parent.MethodName, err)
		}

		inputData := make([]uint64, 0, len(child.ReceiptIndices))
		for _, sibling := range child.ReceiptIndices {
			dataID := s.numData
			s.numData++
			inputData = append(inputData, dataID)
			producer := sibling + s.numReceipts
			s.outputData[producer] = append(s.outputData[producer], dataBinding{
				accountID: child.ReceiverID,
				dataID:    dataID,
			})
		}

		deposit := functionCall.Deposit
		if deposit == nil {
			deposit = types.NewBigInt(0)
		}
		s.queue.PushBack(&types.PendingReceipt{
			Index:           uint64(i) + s.numReceipts,
			AccountID:       child.ReceiverID,
			MethodName:      functionCall.MethodName,
			Input:           []byte(functionCall.Args),
			SignerID:        s.signerID,
			PredecessorID:   parent.AccountID,
			InputData:       inputData,
			PrepaidGas:      functionCall.Gas,
			AttachedDeposit: deposit,
		})
	}
	return nil
}

func (s *scheduler) dumpQueue() string {
	ids := make([]uint64, 0, s.queue.Len())
	for e := s.queue.Front(); e != nil; e = e.Next() {
		ids = append(ids, e.Value.(*types.PendingReceipt).Index)
	}
	return fmt.Sprintf("%v", ids)
}
