package database

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ardanlabs/cerocoin/foundation/blockchain/signature"
)

// Coin represents the reward for solving a proof of work puzzle.
type Coin struct {
	ID             string // Random 32 bit value in hex.
	MinerID        string // Hash of the miner's public key string.
	MinerPubKey    string // Canonical public key string of the miner.
	GenesisString  string // Seed material the nonce was hashed with.
	Nonce          string // Value identified to solve the puzzle.
	PowDifficulty  int    // Exponent of the hash upper bound.
	TimeStamp      string // Unix seconds when the coin was minted.
	HashVal        string // SHA256(genesis||nonce).
	MinerSignature string
}

// NewCoin constructs an unsigned coin for the solved puzzle.
func NewCoin(minerPubKey string, genesis string, difficulty int, result POWResult, timestamp string) (Coin, error) {
	id, err := RandomID()
	if err != nil {
		return Coin{}, err
	}

	coin := Coin{
		ID:            id,
		MinerID:       signature.Hash(minerPubKey),
		MinerPubKey:   minerPubKey,
		GenesisString: genesis,
		Nonce:         result.Nonce,
		PowDifficulty: difficulty,
		TimeStamp:     timestamp,
		HashVal:       result.HashVal,
	}

	return coin, nil
}

// Sign uses the key material of the miner to sign the coin.
func (c Coin) Sign(km *signature.KeyMaterial) (Coin, error) {
	sig, err := km.Sign(c.SigningString())
	if err != nil {
		return Coin{}, err
	}

	c.MinerSignature = sig
	return c, nil
}

// VerifySignature checks the miner signature against the miner's key.
func (c Coin) VerifySignature() bool {
	return signature.Verify(c.SigningString(), c.MinerSignature, c.MinerPubKey)
}

// SigningString returns every field of the coin except the signature.
func (c Coin) SigningString() string {
	return strings.Join(c.fields(), " ")
}

// String returns the wire literal for the coin.
func (c Coin) String() string {
	var b strings.Builder
	b.WriteString(CoinBegin)
	for _, f := range c.fields() {
		b.WriteString(" ")
		b.WriteString(f)
	}
	b.WriteString(" MINER_SIGNATURE=")
	b.WriteString(c.MinerSignature)
	b.WriteString(" ")
	b.WriteString(CoinEnd)
	return b.String()
}

func (c Coin) fields() []string {
	return []string{
		"COIN_ID=" + c.ID,
		"COIN_MINER=" + c.MinerID,
		"MINER_PUB_KEY=" + c.MinerPubKey,
		"GENESIS_STRING=" + c.GenesisString,
		"NONCE=" + c.Nonce,
		"POW_DIFFICULTY=" + strconv.Itoa(c.PowDifficulty),
		"TIMESTAMP=" + c.TimeStamp,
		"HASHVAL=" + c.HashVal,
	}
}

// =============================================================================

// ParseCoin converts a coin literal back into a Coin.
func ParseCoin(literal string) (Coin, error) {
	tokens := strings.Fields(literal)
	if err := wrapped(tokens, CoinBegin, CoinEnd); err != nil {
		return Coin{}, err
	}

	return coinFromTokens(tokens)
}

func coinFromTokens(tokens []string) (Coin, error) {
	fs, err := parseFields(tokens)
	if err != nil {
		return Coin{}, fmt.Errorf("coin: %w", err)
	}

	vals, err := fs.strs("COIN_ID", "COIN_MINER", "MINER_PUB_KEY", "GENESIS_STRING", "NONCE", "TIMESTAMP", "HASHVAL", "MINER_SIGNATURE")
	if err != nil {
		return Coin{}, fmt.Errorf("coin: %w", err)
	}

	difficulty, err := fs.integer("POW_DIFFICULTY")
	if err != nil {
		return Coin{}, fmt.Errorf("coin: %w", err)
	}

	coin := Coin{
		ID:             vals[0],
		MinerID:        vals[1],
		MinerPubKey:    vals[2],
		GenesisString:  vals[3],
		Nonce:          vals[4],
		PowDifficulty:  difficulty,
		TimeStamp:      vals[5],
		HashVal:        vals[6],
		MinerSignature: vals[7],
	}

	return coin, nil
}
