package state

import (
	"errors"
	"fmt"
	"time"

	"github.com/ardanlabs/cerocoin/foundation/blockchain/database"
)

// Set of errors returned when a coin can't be sold yet.
var (
	ErrNoCoins = errors.New("no owned coins")
	ErrNoPeers = errors.New("no peer connections")
)

// =============================================================================

// SellCoin pops an owned coin, asks a random peer for the key to make it
// out to, signs the transaction, adds it to the pending transactions and
// sends it to the same peer. If the exchange fails before the transaction
// exists, the coin goes back to the owned coins.
func (s *State) SellCoin() (database.Transaction, error) {
	conn, ok := s.peers.Random()
	if !ok {
		return database.Transaction{}, ErrNoPeers
	}

	coin, ok := s.PopOwnedCoin()
	if !ok {
		return database.Transaction{}, ErrNoCoins
	}

	s.evHandler("state: SellCoin: started: coin[%s]: peer[%s]", coin.ID, conn.Peer())
	defer s.evHandler("state: SellCoin: completed: coin[%s]", coin.ID)

	buyerKey, err := s.NetRequestBuyerKey(conn)
	if err != nil {
		s.ReturnOwnedCoin(coin)
		return database.Transaction{}, err
	}

	tx, err := database.NewTransaction(coin, s.pubKey, buyerKey, database.Timestamp(time.Now()))
	if err != nil {
		s.ReturnOwnedCoin(coin)
		return database.Transaction{}, err
	}

	if tx, err = tx.Sign(s.keys); err != nil {
		return database.Transaction{}, err
	}

	s.AddPendingTransaction(tx)

	if err := s.NetSendTransaction(conn, tx); err != nil {
		return tx, err
	}

	return tx, nil
}

// AddPendingTransaction adds a transaction signed by this node to the set
// waiting to be packed into a block.
func (s *State) AddPendingTransaction(tx database.Transaction) {
	s.mu.Lock()
	s.pending = append(s.pending, tx)
	n := len(s.pending)
	s.mu.Unlock()

	s.evHandler("state: AddPendingTransaction: tx[%s]: pending[%d]", tx.ID, n)

	if w := s.registeredWorker(); w != nil {
		w.SignalAssembleBlock()
	}
}

// ProcessTransaction takes a transaction literal received from a peer,
// validates its shape and records it. A transaction already recorded is
// ignored.
func (s *State) ProcessTransaction(literal string) error {
	tx, err := database.ParseTransaction(literal)
	if err != nil {
		return fmt.Errorf("transaction: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.receivedIDs[tx.ID]; exists {
		s.evHandler("state: ProcessTransaction: tx[%s]: already received", tx.ID)
		return nil
	}

	s.receivedIDs[tx.ID] = struct{}{}
	s.received = append(s.received, tx)

	s.evHandler("state: ProcessTransaction: tx[%s]: coin[%s]: seller[%s]: received[%d]", tx.ID, tx.Coin.ID, tx.SellerID, len(s.received))

	return nil
}
