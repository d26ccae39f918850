// Package worker implements mining, coin selling and block assembly for
// the node.
package worker

import (
	"sync"
	"time"

	"github.com/ardanlabs/cerocoin/foundation/blockchain/state"
)

// defaultTxCooldown is the rest period between two sales when none
// is configured.
const defaultTxCooldown = 5 * time.Second

// =============================================================================

// Worker manages the mining, selling and block assembly workflows for
// the node.
type Worker struct {
	state         *state.State
	wg            sync.WaitGroup
	shut          chan struct{}
	txCooldown    time.Duration
	cancelMining  chan chan struct{}
	sellCoin      chan bool
	assembleBlock chan bool
	evHandler     state.EventHandler
}

// Run creates a worker, registers the worker with the state package, and
// starts up all the background processes.
func Run(st *state.State, txCooldown time.Duration, evHandler state.EventHandler) *Worker {
	if evHandler == nil {
		evHandler = func(v string, args ...any) {}
	}

	if txCooldown <= 0 {
		txCooldown = defaultTxCooldown
	}

	w := Worker{
		state:         st,
		shut:          make(chan struct{}),
		txCooldown:    txCooldown,
		cancelMining:  make(chan chan struct{}, 1),
		sellCoin:      make(chan bool, 1),
		assembleBlock: make(chan bool, 1),
		evHandler:     evHandler,
	}

	// Load the set of operations we need to run.
	operations := []func(){
		w.miningOperations,
		w.sellOperations,
		w.blockOperations,
	}

	// Set waitgroup to match the number of G's we need for the set
	// of operations we have.
	g := len(operations)
	w.wg.Add(g)

	// Register this worker with the state package. Peers may already be
	// delivering blocks, so the state guards the registration.
	st.SetWorker(&w)

	// We don't want to return until we know all the G's are up and running.
	hasStarted := make(chan bool)

	// Start all the operational G's.
	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	// Wait for the G's to report they are running.
	for range g {
		<-hasStarted
	}

	// Pending transactions may have been restored or added before the
	// worker existed.
	w.SignalAssembleBlock()

	return &w
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutines performing work.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.evHandler("worker: shutdown: terminate goroutines")
	close(w.shut)
	w.wg.Wait()
}

// SignalCancelMining signals the G executing the runMiningOperation function
// to stop immediately. That G will not start a new search until the returned
// function is called.
func (w *Worker) SignalCancelMining() (done func()) {
	wait := make(chan struct{})

	select {
	case w.cancelMining <- wait:
	default:
	}
	w.evHandler("worker: SignalCancelMining: MINING: CANCEL: signaled")

	return func() { close(wait) }
}

// SignalSellCoin signals the selling operation there may be a coin to sell.
// If there is already a signal pending in the channel, just return.
func (w *Worker) SignalSellCoin() {
	select {
	case w.sellCoin <- true:
	default:
	}
	w.evHandler("worker: SignalSellCoin: sell signaled")
}

// SignalAssembleBlock signals the block operation there may be enough
// pending transactions for a block.
func (w *Worker) SignalAssembleBlock() {
	select {
	case w.assembleBlock <- true:
	default:
	}
	w.evHandler("worker: SignalAssembleBlock: assemble signaled")
}

// =============================================================================

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
