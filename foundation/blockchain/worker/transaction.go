package worker

import (
	"errors"
	"time"

	"github.com/ardanlabs/cerocoin/foundation/blockchain/signature"
	"github.com/ardanlabs/cerocoin/foundation/blockchain/state"
)

// sellOperations sells owned coins to random peers. It wakes up on a new
// coin or every cooldown period and rests for the cooldown after every
// attempt.
func (w *Worker) sellOperations() {
	w.evHandler("worker: sellOperations: G started")
	defer w.evHandler("worker: sellOperations: G completed")

	ticker := time.NewTicker(w.txCooldown)
	defer ticker.Stop()

	for {
		select {
		case <-w.sellCoin:
		case <-ticker.C:
		case <-w.shut:
			w.evHandler("worker: sellOperations: received shut signal")
			return
		}

		if w.isShutdown() {
			continue
		}

		if err := w.runSellOperation(); err != nil {
			w.state.Fatal(err)
			return
		}

		select {
		case <-time.After(w.txCooldown):
		case <-w.shut:
		}
	}
}

// runSellOperation sells a single coin. Only errors the node can't continue
// from are returned.
func (w *Worker) runSellOperation() error {
	w.evHandler("worker: runSellOperation: started")
	defer w.evHandler("worker: runSellOperation: completed")

	// After selling, check if another sale should be signaled.
	defer func() {
		if n := w.state.QueryOwnedCoinsLength(); n > 0 {
			w.evHandler("worker: runSellOperation: signal new sale: coins[%d]", n)
			w.SignalSellCoin()
		}
	}()

	tx, err := w.state.SellCoin()
	if err != nil {
		switch {
		case errors.Is(err, signature.ErrSignatureInconsistent):
			return err
		case errors.Is(err, state.ErrNoCoins), errors.Is(err, state.ErrNoPeers):
			w.evHandler("worker: runSellOperation: nothing to do: %s", err)
		default:
			w.evHandler("worker: runSellOperation: WARNING: %s", err)
		}
		return nil
	}

	w.evHandler("worker: runSellOperation: tx[%s]: coin[%s]", tx.ID, tx.Coin.ID)

	return nil
}
