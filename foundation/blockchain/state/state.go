// Package state is the core API for the node and implements all the
// business rules and processing.
package state

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/cerocoin/foundation/blockchain/database"
	"github.com/ardanlabs/cerocoin/foundation/blockchain/peer"
	"github.com/ardanlabs/cerocoin/foundation/blockchain/signature"
)

// EventHandler defines a function that is called when events
// occur in the processing of coins, transactions and blocks.
type EventHandler func(v string, args ...any)

// FatalHandler defines a function that is called when the node hits a
// condition it can't continue from.
type FatalHandler func(err error)

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining, selling coins and assembling blocks.
type Worker interface {
	Shutdown()
	SignalCancelMining() (done func())
	SignalSellCoin()
	SignalAssembleBlock()
}

// =============================================================================

// Config represents the configuration required to start the node.
type Config struct {
	Keys          *signature.KeyMaterial
	Difficulty    int
	TransPerBlock int
	MaxIterations uint64
	Storage       database.Storage
	Peers         *peer.PeerSet
	EvHandler     EventHandler
	FatalHandler  FatalHandler
}

// State manages the node state. Every field below mu is guarded by it.
type State struct {
	keys          *signature.KeyMaterial
	pubKey        string
	id            string
	transPerBlock int
	maxIterations uint64
	evHandler     EventHandler
	fatalHandler  FatalHandler
	storage       database.Storage
	peers         *peer.PeerSet

	mu             sync.RWMutex
	currentBlock   *database.Block
	difficulty     int
	chainLength    int
	epoch          uint64
	blocksProduced int
	archived       uint64
	ownedCoins     []database.Coin
	pending        []database.Transaction
	received       []database.Transaction
	receivedIDs    map[string]struct{}

	workerMu sync.RWMutex
	worker   Worker
}

// New constructs the node state and restores the last archived block.
func New(cfg Config) (*State, error) {
	if cfg.Keys == nil {
		return nil, errors.New("key material is required")
	}

	if cfg.TransPerBlock < 1 {
		return nil, fmt.Errorf("transactions per block must be positive, got %d", cfg.TransPerBlock)
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	peers := cfg.Peers
	if peers == nil {
		peers = peer.NewPeerSet()
	}

	state := State{
		keys:          cfg.Keys,
		pubKey:        cfg.Keys.PublicKey().String(),
		id:            cfg.Keys.ID(),
		transPerBlock: cfg.TransPerBlock,
		maxIterations: cfg.MaxIterations,
		evHandler:     ev,
		fatalHandler:  cfg.FatalHandler,
		storage:       cfg.Storage,
		peers:         peers,
		difficulty:    cfg.Difficulty,
		receivedIDs:   make(map[string]struct{}),
	}

	if err := state.restoreArchive(); err != nil {
		return nil, fmt.Errorf("restore archive: %w", err)
	}

	// The Worker is not set here. The call to worker.Run will register itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop all mining and peer writing activity.
	if w := s.registeredWorker(); w != nil {
		w.Shutdown()
	}

	s.peers.Close()

	if s.storage != nil {
		return s.storage.Close()
	}

	return nil
}

// SetWorker registers the worker that runs the background operations. It
// may be called while peers are already delivering blocks.
func (s *State) SetWorker(w Worker) {
	s.workerMu.Lock()
	defer s.workerMu.Unlock()

	s.worker = w
}

// registeredWorker returns the worker, nil until one has registered. It uses
// its own lock so it can be called while mu is held.
func (s *State) registeredWorker() Worker {
	s.workerMu.RLock()
	defer s.workerMu.RUnlock()

	return s.worker
}

// Fatal reports a condition the node can't continue from.
func (s *State) Fatal(err error) {
	s.evHandler("state: FATAL: %s", err)

	if s.fatalHandler != nil {
		s.fatalHandler(err)
	}
}

// =============================================================================

// restoreArchive walks the archive and makes the last block the current one.
func (s *State) restoreArchive() error {
	if s.storage == nil {
		return nil
	}

	var last *database.Block

	iter := s.storage.ForEach()
	for blockData, err := iter.Next(); !iter.Done(); blockData, err = iter.Next() {
		if err != nil {
			return err
		}

		block, err := database.ToBlock(blockData)
		if err != nil {
			return fmt.Errorf("block %d: %w", blockData.Number, err)
		}

		if block.CreatorID == s.id {
			s.blocksProduced++
		}

		s.archived = blockData.Number
		last = &block
	}

	if last != nil {
		s.evHandler("state: restoreArchive: blocks[%d]: length[%d]: difficulty[%d]", s.archived, last.BlockchainLength, last.PowDifficulty)
		s.adoptBlock(*last)
	}

	return nil
}

// adoptBlock makes the block the current one. The length and difficulty
// of the node follow the block. Callers must hold the lock.
func (s *State) adoptBlock(block database.Block) {
	s.currentBlock = &block
	s.chainLength = block.BlockchainLength
	s.difficulty = block.PowDifficulty
}

// archiveBlock writes the block to the archive. Callers must hold the lock.
func (s *State) archiveBlock(block database.Block) {
	if s.storage == nil {
		return
	}

	if err := s.storage.Write(database.NewBlockData(s.archived+1, block)); err != nil {
		s.evHandler("state: archiveBlock: WARNING: block[%s]: %s", block.ID, err)
		return
	}

	s.archived++
}
