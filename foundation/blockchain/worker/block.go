package worker

import (
	"errors"

	"github.com/ardanlabs/cerocoin/foundation/blockchain/signature"
	"github.com/ardanlabs/cerocoin/foundation/blockchain/state"
)

// blockOperations packs pending transactions into blocks.
func (w *Worker) blockOperations() {
	w.evHandler("worker: blockOperations: G started")
	defer w.evHandler("worker: blockOperations: G completed")

	for {
		select {
		case <-w.assembleBlock:
			if !w.isShutdown() {
				if err := w.runBlockOperation(); err != nil {
					w.state.Fatal(err)
					return
				}
			}
		case <-w.shut:
			w.evHandler("worker: blockOperations: received shut signal")
			return
		}
	}
}

// runBlockOperation assembles a block when there are enough pending
// transactions and sends it to every peer.
func (w *Worker) runBlockOperation() error {
	w.evHandler("worker: runBlockOperation: started")
	defer w.evHandler("worker: runBlockOperation: completed")

	block, err := w.state.AssembleBlock()
	if err != nil {
		switch {
		case errors.Is(err, signature.ErrSignatureInconsistent):
			return err
		case errors.Is(err, state.ErrNotEnoughTransactions):
			w.evHandler("worker: runBlockOperation: waiting: pending[%d]", w.state.QueryPendingLength())
		default:
			w.evHandler("worker: runBlockOperation: ERROR: %s", err)
		}
		return nil
	}

	w.state.NetSendBlockToPeers(block)

	return nil
}
