// Package database holds the artifacts that move between nodes (coins,
// transactions and blocks), their canonical wire form, the proof of work
// search and the archive of accepted blocks.
package database

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrMalformed is returned when a literal received from a peer fails
// structural validation.
var ErrMalformed = errors.New("malformed literal")

// ErrNotFound is returned by a Storage when the requested block is not
// archived.
var ErrNotFound = errors.New("block does not exist")

// =============================================================================

// Storage interface represents the behavior required to be implemented by any
// package providing support for archiving accepted blocks.
type Storage interface {
	Write(blockData BlockData) error
	GetBlock(num uint64) (BlockData, error)
	ForEach() Iterator
	Close() error
	Reset() error
}

// Iterator interface represents the behavior required to be implemented by any
// package providing support to iterate over the archived blocks.
type Iterator interface {
	Next() (BlockData, error)
	Done() bool
}

// BlockData represents what is written to the archive for an accepted block.
type BlockData struct {
	Number  uint64 `json:"number"`
	Digest  string `json:"digest"`
	Literal string `json:"block"`
}

// NewBlockData constructs the value to archive.
func NewBlockData(number uint64, block Block) BlockData {
	return BlockData{
		Number:  number,
		Digest:  block.Digest(),
		Literal: block.String(),
	}
}

// ToBlock converts archived data back into a Block.
func ToBlock(blockData BlockData) (Block, error) {
	return ParseBlock(blockData.Literal)
}

// =============================================================================

// RandomID returns a random 32 bit value as 8 hex characters.
func RandomID() (string, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}

	return fmt.Sprintf("%08x", binary.BigEndian.Uint32(b[:])), nil
}

// RandomString returns n random hex characters.
func RandomString(n int) (string, error) {
	b := make([]byte, (n+1)/2)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b)[:n], nil
}

// Timestamp returns the time as unix seconds with microsecond precision.
func Timestamp(t time.Time) string {
	return strconv.FormatFloat(float64(t.UnixMicro())/1e6, 'f', 6, 64)
}
