package state

import (
	"context"
	"errors"
	"time"

	"github.com/ardanlabs/cerocoin/foundation/blockchain/database"
)

// ErrStaleGenesis is returned when a coin was mined on the genesis of a
// block that has since been replaced by the consensus rule.
var ErrStaleGenesis = errors.New("coin mined on a replaced block")

// =============================================================================

// MineCoin searches for a coin on the genesis derived from the current block
// and adds it to the owned coins. The search stops when the context is
// cancelled.
func (s *State) MineCoin(ctx context.Context) (database.Coin, error) {
	s.mu.RLock()
	epoch := s.epoch
	difficulty := s.difficulty
	var genesis string
	if s.currentBlock != nil {
		genesis = s.currentBlock.Digest()
	}
	s.mu.RUnlock()

	if genesis == "" {
		var err error
		if genesis, err = database.RandomString(database.NonceLength); err != nil {
			return database.Coin{}, err
		}
	}

	s.evHandler("state: MineCoin: MINING: perform POW: difficulty[%d]: epoch[%d]", difficulty, epoch)

	result, err := database.POW(ctx, database.POWArgs{
		Genesis:       genesis,
		Difficulty:    difficulty,
		MaxIterations: s.maxIterations,
		EvHandler:     s.evHandler,
	})
	if err != nil {
		return database.Coin{}, err
	}

	coin, err := database.NewCoin(s.pubKey, genesis, difficulty, result, database.Timestamp(time.Now()))
	if err != nil {
		return database.Coin{}, err
	}

	if coin, err = coin.Sign(s.keys); err != nil {
		return database.Coin{}, err
	}

	// Just check one more time we were not cancelled.
	if ctx.Err() != nil {
		return database.Coin{}, ctx.Err()
	}

	if err := s.addOwnedCoin(coin, epoch); err != nil {
		return database.Coin{}, err
	}

	s.evHandler("state: MineCoin: MINING: coin[%s]: hash[%s]: attempts[%d]", coin.ID, coin.HashVal, result.Attempts)

	return coin, nil
}

// addOwnedCoin publishes the coin unless the block its genesis came from has
// been replaced since the search started.
func (s *State) addOwnedCoin(coin database.Coin, epoch uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch {
		return ErrStaleGenesis
	}

	s.ownedCoins = append(s.ownedCoins, coin)
	return nil
}

// PopOwnedCoin removes and returns the most recently mined coin.
func (s *State) PopOwnedCoin() (database.Coin, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.ownedCoins)
	if n == 0 {
		return database.Coin{}, false
	}

	coin := s.ownedCoins[n-1]
	s.ownedCoins = s.ownedCoins[:n-1]

	return coin, true
}

// ReturnOwnedCoin puts back a coin that could not be sold.
func (s *State) ReturnOwnedCoin(coin database.Coin) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ownedCoins = append(s.ownedCoins, coin)
}
