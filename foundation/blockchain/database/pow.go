package database

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ardanlabs/cerocoin/foundation/blockchain/signature"
)

// ErrMaxIterations is returned when the search exceeds the configured bound.
// The bound only exists for test and debug harnesses.
var ErrMaxIterations = errors.New("proof of work exceeded max iterations")

// NonceLength is the number of characters in a genesis string or nonce.
const NonceLength = 512

// =============================================================================

// POWArgs represents the set of arguments required to run a coin search.
type POWArgs struct {
	Genesis       string
	Difficulty    int
	MaxIterations uint64                    // 0 means no bound.
	Nonce         func() (string, error)    // Defaults to RandomString(NonceLength).
	Hash          func(value string) string // Defaults to signature.Hash.
	EvHandler     func(v string, args ...any)
}

// POWResult represents the solution of a search.
type POWResult struct {
	Nonce    string
	HashVal  string
	Attempts uint64
}

// POW draws nonces until SHA256(genesis||nonce) is at or below 2^difficulty
// or the context is cancelled. The context is checked on every iteration.
func POW(ctx context.Context, args POWArgs) (POWResult, error) {
	ev := args.EvHandler
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	nonceFn := args.Nonce
	if nonceFn == nil {
		nonceFn = func() (string, error) {
			return RandomString(NonceLength)
		}
	}

	hashFn := args.Hash
	if hashFn == nil {
		hashFn = signature.Hash
	}

	threshold := Threshold(args.Difficulty)

	ev("database: POW: MINING: started: difficulty[%d]", args.Difficulty)
	defer ev("database: POW: MINING: completed")

	var attempts uint64
	for {
		if ctx.Err() != nil {
			ev("database: POW: MINING: CANCELLED: attempts[%d]", attempts)
			return POWResult{}, ctx.Err()
		}

		if args.MaxIterations > 0 && attempts >= args.MaxIterations {
			return POWResult{}, fmt.Errorf("attempts[%d]: %w", attempts, ErrMaxIterations)
		}

		attempts++
		if attempts%1_000_000 == 0 {
			ev("database: POW: MINING: attempts[%d]", attempts)
		}

		nonce, err := nonceFn()
		if err != nil {
			return POWResult{}, err
		}

		hash := hashFn(args.Genesis + nonce)
		if !hashBelow(hash, threshold) {
			continue
		}

		ev("database: POW: MINING: SOLVED: hash[%s]: attempts[%d]", hash, attempts)

		return POWResult{Nonce: nonce, HashVal: hash, Attempts: attempts}, nil
	}
}

// IsHashSolved reports whether the hex hash is at or below 2^difficulty.
func IsHashSolved(difficulty int, hash string) bool {
	return hashBelow(hash, Threshold(difficulty))
}

// Threshold returns 2^difficulty, the largest acceptable hash value.
func Threshold(difficulty int) *big.Int {
	if difficulty < 0 {
		return new(big.Int)
	}
	return new(big.Int).Lsh(big.NewInt(1), uint(difficulty))
}

func hashBelow(hash string, threshold *big.Int) bool {
	h, ok := new(big.Int).SetString(hash, 16)
	if !ok {
		return false
	}
	return h.Cmp(threshold) <= 0
}
