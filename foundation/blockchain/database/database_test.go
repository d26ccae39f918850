package database_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ardanlabs/cerocoin/foundation/blockchain/database"
	"github.com/ardanlabs/cerocoin/foundation/blockchain/signature"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	lowHash  = "00000000000000000000000000000000000000000000000000000000000000ff"
	highHash = "ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"
)

// =============================================================================

func Test_POWNonceSelection(t *testing.T) {
	t.Log("Given the need to select the first nonce solving the puzzle.")
	{
		nonces := []string{"0", "1", "2"}
		var next int
		nonceFn := func() (string, error) {
			n := nonces[next]
			next++
			return n, nil
		}

		// Only abc1 lands at or below 2^8.
		hashFn := func(value string) string {
			if value == "abc1" {
				return lowHash
			}
			return highHash
		}

		res, err := database.POW(context.Background(), database.POWArgs{
			Genesis:    "abc",
			Difficulty: 8,
			Nonce:      nonceFn,
			Hash:       hashFn,
		})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to solve the puzzle: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to solve the puzzle.", success)

		if res.Nonce != "1" || res.Attempts != 2 {
			t.Logf("\t%s\tgot: nonce[%s] attempts[%d]", failed, res.Nonce, res.Attempts)
			t.Logf("\t%s\texp: nonce[1] attempts[2]", failed)
			t.Fatalf("\t%s\tShould select nonce 1 and stop.", failed)
		}
		t.Logf("\t%s\tShould select nonce 1 and stop.", success)
	}
}

func Test_HashThreshold(t *testing.T) {
	type table struct {
		name       string
		difficulty int
		hash       string
		solved     bool
	}

	tt := []table{
		{name: "zero", difficulty: 8, hash: strings.Repeat("0", 64), solved: true},
		{name: "equal", difficulty: 8, hash: strings.Repeat("0", 61) + "100", solved: true},
		{name: "above", difficulty: 8, hash: strings.Repeat("0", 61) + "101", solved: false},
		{name: "max", difficulty: 256, hash: highHash, solved: true},
		{name: "hard", difficulty: 255, hash: highHash, solved: false},
		{name: "nothex", difficulty: 256, hash: "zz", solved: false},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			got := database.IsHashSolved(tst.difficulty, tst.hash)
			if got != tst.solved {
				t.Logf("Test %s:\tgot: %v", tst.name, got)
				t.Logf("Test %s:\texp: %v", tst.name, tst.solved)
				t.Fatalf("Test %s:\tShould compare the hash against 2^difficulty.", tst.name)
			}
		}

		t.Run(tst.name, f)
	}
}

func Test_POWRandom(t *testing.T) {
	const genesis = "genesis"

	// One hash in sixteen is at or below 2^252.
	res, err := database.POW(context.Background(), database.POWArgs{
		Genesis:       genesis,
		Difficulty:    252,
		MaxIterations: 10_000,
	})
	if err != nil {
		t.Fatalf("Should be able to solve the puzzle: %s", err)
	}

	if len(res.Nonce) != database.NonceLength {
		t.Fatalf("Should draw nonces of %d characters, got %d.", database.NonceLength, len(res.Nonce))
	}

	if res.HashVal != signature.Hash(genesis+res.Nonce) {
		t.Fatalf("Should get back SHA256(genesis||nonce).")
	}

	if !database.IsHashSolved(252, res.HashVal) {
		t.Fatalf("Should get back a hash below the threshold.")
	}
}

func Test_POWStops(t *testing.T) {
	hashFn := func(value string) string { return highHash }

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := database.POW(ctx, database.POWArgs{Genesis: "abc", Difficulty: 8, Hash: hashFn})
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Logf("got: %v", err)
			t.Fatalf("Should stop the search once the context is done.")
		}
	})

	t.Run("maxiterations", func(t *testing.T) {
		var calls int
		nonceFn := func() (string, error) {
			calls++
			return "n", nil
		}

		_, err := database.POW(context.Background(), database.POWArgs{Genesis: "abc", Difficulty: 8, MaxIterations: 5, Nonce: nonceFn, Hash: hashFn})
		if !errors.Is(err, database.ErrMaxIterations) {
			t.Logf("got: %v", err)
			t.Fatalf("Should fail once the bound is exceeded.")
		}

		if calls != 5 {
			t.Fatalf("Should try exactly 5 nonces, got %d.", calls)
		}
	})
}
