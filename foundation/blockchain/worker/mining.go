package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ardanlabs/cerocoin/foundation/blockchain/database"
	"github.com/ardanlabs/cerocoin/foundation/blockchain/signature"
	"github.com/ardanlabs/cerocoin/foundation/blockchain/state"
)

// miningOperations mines coins one after the other until shutdown.
func (w *Worker) miningOperations() {
	w.evHandler("worker: miningOperations: G started")
	defer w.evHandler("worker: miningOperations: G completed")

	for !w.isShutdown() {
		if err := w.runMiningOperation(); err != nil {
			w.state.Fatal(err)
			return
		}
	}

	w.evHandler("worker: miningOperations: received shut signal")

	if wait := w.pendingCancel(); wait != nil {
		w.evHandler("worker: miningOperations: pending cancel: waiting")
		<-wait
	}
}

// runMiningOperation searches for a single coin. Only errors the node can't
// continue from are returned.
func (w *Worker) runMiningOperation() error {
	w.evHandler("worker: runMiningOperation: MINING: started")
	defer w.evHandler("worker: runMiningOperation: MINING: completed")

	// A cancel signaled between two searches still holds this G until it
	// is told it can start over.
	select {
	case pending := <-w.cancelMining:
		w.evHandler("worker: runMiningOperation: MINING: pending cancel: waiting")
		<-pending
	default:
	}

	// If mining is signalled to be cancelled by the ProcessProposedBlock
	// function, this G can't start over until it is told it can.
	var wait chan struct{}
	defer func() {
		if wait != nil {
			w.evHandler("worker: runMiningOperation: MINING: termination signal: waiting")
			<-wait
			w.evHandler("worker: runMiningOperation: MINING: termination signal: received")
		}
	}()

	// Create a context so mining can be cancelled.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Can't return from this function until these G's are complete.
	var wg sync.WaitGroup
	wg.Add(2)

	// This G exists to cancel the mining operation.
	go func() {
		defer func() {
			cancel()
			wg.Done()
		}()

		select {
		case wait = <-w.cancelMining:
			w.evHandler("worker: runMiningOperation: MINING: CANCEL: requested")
		case <-w.shut:
			w.evHandler("worker: runMiningOperation: MINING: CANCEL: shutdown")
			wait = w.pendingCancel()
		case <-ctx.Done():
			wait = w.pendingCancel()
		}
	}()

	// This G is performing the mining.
	var fatal error
	go func() {
		defer func() {
			cancel()
			wg.Done()
		}()

		t := time.Now()
		coin, err := w.state.MineCoin(ctx)
		duration := time.Since(t)

		w.evHandler("worker: runMiningOperation: MINING: mining duration[%v]", duration)

		if err != nil {
			switch {
			case errors.Is(err, database.ErrMaxIterations), errors.Is(err, signature.ErrSignatureInconsistent):
				fatal = err
			case errors.Is(err, state.ErrStaleGenesis):
				w.evHandler("worker: runMiningOperation: MINING: coin discarded: %s", err)
			case ctx.Err() != nil:
				w.evHandler("worker: runMiningOperation: MINING: CANCEL: complete")
			default:
				w.evHandler("worker: runMiningOperation: MINING: ERROR: %s", err)
			}
			return
		}

		// WOW, we mined a coin. Let the selling operation know.
		w.evHandler("worker: runMiningOperation: MINING: coin[%s]", coin.ID)
		w.SignalSellCoin()
	}()

	// Wait for both G's to terminate.
	wg.Wait()

	return fatal
}

// pendingCancel returns the wait channel of a cancel that was signaled but
// not yet received, so it is honored even when the search ended another way.
func (w *Worker) pendingCancel() chan struct{} {
	select {
	case wait := <-w.cancelMining:
		return wait
	default:
		return nil
	}
}
