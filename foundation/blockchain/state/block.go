package state

import (
	"errors"
	"fmt"
	"time"

	"github.com/ardanlabs/cerocoin/foundation/blockchain/database"
)

// ErrNotEnoughTransactions is returned when a block is requested to be
// assembled and there are not enough pending transactions.
var ErrNotEnoughTransactions = errors.New("not enough pending transactions")

// =============================================================================

// AssembleBlock packs every pending transaction into a signed block once
// there are enough of them, adopts it as the current block and archives it.
// Sending the block to the peers is left to the caller.
func (s *State) AssembleBlock() (database.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) < s.transPerBlock {
		return database.Block{}, ErrNotEnoughTransactions
	}

	trans := s.pending

	block, err := database.NewBlock(database.BlockArgs{
		CreatorID:   s.id,
		Difficulty:  s.blockDifficulty(trans),
		PrevBlock:   s.currentBlock,
		ChainLength: s.chainLength,
		Trans:       trans,
		TimeStamp:   database.Timestamp(time.Now()),
	})
	if err != nil {
		return database.Block{}, err
	}

	if block, err = block.Sign(s.keys); err != nil {
		return database.Block{}, err
	}

	s.pending = nil
	s.blocksProduced++
	s.adoptBlock(block)
	s.archiveBlock(block)

	s.evHandler("state: AssembleBlock: block[%s]: trans[%d]: length[%d]: difficulty[%d]", block.ID, len(trans), block.BlockchainLength, block.PowDifficulty)

	return block, nil
}

// blockDifficulty returns the difficulty recorded in a new block. The first
// block this node produces carries the node difficulty. After that the value
// is taken from the current block once per packed transaction. Callers must
// hold the lock.
func (s *State) blockDifficulty(trans []database.Transaction) int {
	if s.blocksProduced == 0 || s.currentBlock == nil {
		return s.difficulty
	}

	var difficulty int
	for range trans {
		difficulty = max(difficulty, s.currentBlock.PowDifficulty)
	}

	return difficulty
}

// ProcessProposedBlock takes a block literal received from a peer, validates
// its shape and applies the consensus rule. A node without a block adopts
// it. Otherwise the block replaces the current one only when it carries a
// longer chain at an equal or harder difficulty, in which case the running
// mining search is cancelled and restarted on the new block.
func (s *State) ProcessProposedBlock(literal string) error {
	block, err := database.ParseBlock(literal)
	if err != nil {
		return fmt.Errorf("block: %w", err)
	}

	s.evHandler("state: ProcessProposedBlock: started: block[%s]: creator[%.8s]: length[%d]: difficulty[%d]", block.ID, block.CreatorID, block.BlockchainLength, block.PowDifficulty)

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.currentBlock == nil:
		s.evHandler("state: ProcessProposedBlock: no current block: adopting block[%s]", block.ID)

		s.adoptBlock(block)
		s.archiveBlock(block)

	case block.BlockchainLength > s.chainLength && block.PowDifficulty <= s.difficulty:
		s.evHandler("state: ProcessProposedBlock: length[%d] > [%d]: difficulty[%d] <= [%d]: switching to block[%s]", block.BlockchainLength, s.chainLength, block.PowDifficulty, s.difficulty, block.ID)

		// If the mining operation is running it needs to stop. The G running
		// it will not start a new search until done is called, which happens
		// after the new block has been adopted.
		if w := s.registeredWorker(); w != nil {
			done := w.SignalCancelMining()
			defer func() {
				s.evHandler("state: ProcessProposedBlock: signal mining operation to restart")
				done()
			}()
		}

		s.epoch++
		s.adoptBlock(block)
		s.archiveBlock(block)

	default:
		s.evHandler("state: ProcessProposedBlock: block[%s] rejected: length[%d] difficulty[%d] against length[%d] difficulty[%d]", block.ID, block.BlockchainLength, block.PowDifficulty, s.chainLength, s.difficulty)
	}

	return nil
}
