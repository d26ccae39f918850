package state

import (
	"github.com/ardanlabs/cerocoin/foundation/blockchain/database"
	"github.com/ardanlabs/cerocoin/foundation/blockchain/peer"
)

// Status represents a snapshot of the node state.
type Status struct {
	ID               string
	PublicKey        string
	Difficulty       int
	BlockchainLength int
	CurrentBlock     string // Digest of the current block, empty if none.
	OwnedCoins       int
	PendingTrans     int
	ReceivedTrans    int
	ArchivedBlocks   uint64
	Peers            []peer.Peer
}

// PublicKey returns the canonical public key string of the node.
func (s *State) PublicKey() string {
	return s.pubKey
}

// ID returns the node identity.
func (s *State) ID() string {
	return s.id
}

// QueryStatus returns a snapshot of the node state.
func (s *State) QueryStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var digest string
	if s.currentBlock != nil {
		digest = s.currentBlock.Digest()
	}

	return Status{
		ID:               s.id,
		PublicKey:        s.pubKey,
		Difficulty:       s.difficulty,
		BlockchainLength: s.chainLength,
		CurrentBlock:     digest,
		OwnedCoins:       len(s.ownedCoins),
		PendingTrans:     len(s.pending),
		ReceivedTrans:    len(s.received),
		ArchivedBlocks:   s.archived,
		Peers:            s.peers.Peers(),
	}
}

// QueryChain returns the length and difficulty the consensus rule
// compares against.
func (s *State) QueryChain() (length int, difficulty int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.chainLength, s.difficulty
}

// QueryCurrentBlock returns the current block if one exists.
func (s *State) QueryCurrentBlock() (database.Block, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.currentBlock == nil {
		return database.Block{}, false
	}

	return *s.currentBlock, true
}

// QueryOwnedCoins returns a copy of the coins the node owns.
func (s *State) QueryOwnedCoins() []database.Coin {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]database.Coin(nil), s.ownedCoins...)
}

// QueryOwnedCoinsLength returns the number of coins the node owns.
func (s *State) QueryOwnedCoinsLength() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.ownedCoins)
}

// QueryPendingTransactions returns a copy of the transactions waiting to be
// packed into a block.
func (s *State) QueryPendingTransactions() []database.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]database.Transaction(nil), s.pending...)
}

// QueryPendingLength returns the number of transactions waiting to be packed.
func (s *State) QueryPendingLength() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.pending)
}

// QueryReceivedTransactions returns a copy of the transactions received
// from peers.
func (s *State) QueryReceivedTransactions() []database.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]database.Transaction(nil), s.received...)
}

// QueryArchivedBlocks reads every block from the archive.
func (s *State) QueryArchivedBlocks() ([]database.Block, error) {
	if s.storage == nil {
		return nil, nil
	}

	var out []database.Block

	iter := s.storage.ForEach()
	for blockData, err := iter.Next(); !iter.Done(); blockData, err = iter.Next() {
		if err != nil {
			return nil, err
		}

		block, err := database.ToBlock(blockData)
		if err != nil {
			return nil, err
		}
		out = append(out, block)
	}

	return out, nil
}

// QueryArchivedBlock reads the block stored under the archive number, which
// starts at 1. database.ErrNotFound is returned when there is no such block.
func (s *State) QueryArchivedBlock(num uint64) (database.Block, error) {
	if s.storage == nil {
		return database.Block{}, database.ErrNotFound
	}

	blockData, err := s.storage.GetBlock(num)
	if err != nil {
		return database.Block{}, err
	}

	return database.ToBlock(blockData)
}

// RetrievePeers returns the peers the node holds a connection to.
func (s *State) RetrievePeers() []peer.Peer {
	return s.peers.Peers()
}
