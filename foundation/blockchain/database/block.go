package database

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ardanlabs/cerocoin/foundation/blockchain/signature"
)

// Block represents a group of transactions batched together by a node.
type Block struct {
	ID               string
	CreatorID        string
	Transactions     []Transaction
	PowDifficulty    int
	PrevBlockHash    string
	BlockchainLength int
	TimeStamp        string
	CreatorSig       string
}

// BlockArgs represents the set of arguments required to assemble a block.
type BlockArgs struct {
	CreatorID   string
	Difficulty  int
	PrevBlock   *Block // nil when no block has been seen yet.
	ChainLength int
	Trans       []Transaction
	TimeStamp   string
}

// NewBlock constructs an unsigned block on top of the previous block.
func NewBlock(args BlockArgs) (Block, error) {
	id, err := RandomID()
	if err != nil {
		return Block{}, err
	}

	// The first block of the network has no predecessor to hash.
	var prevBlockHash string
	switch args.PrevBlock {
	case nil:
		prevBlockHash, err = RandomString(64)
		if err != nil {
			return Block{}, err
		}
	default:
		prevBlockHash = args.PrevBlock.Digest()
	}

	trans := make([]Transaction, len(args.Trans))
	copy(trans, args.Trans)

	block := Block{
		ID:               id,
		CreatorID:        args.CreatorID,
		Transactions:     trans,
		PowDifficulty:    args.Difficulty,
		PrevBlockHash:    prevBlockHash,
		BlockchainLength: args.ChainLength + len(trans),
		TimeStamp:        args.TimeStamp,
	}

	return block, nil
}

// Sign uses the key material of the creator to sign the block.
func (b Block) Sign(km *signature.KeyMaterial) (Block, error) {
	sig, err := km.Sign(b.SigningString())
	if err != nil {
		return Block{}, err
	}

	b.CreatorSig = sig
	return b, nil
}

// VerifySignature checks the creator signature. The block only carries the
// creator id, so the caller provides the creator's public key.
func (b Block) VerifySignature(creatorPubKey string) bool {
	return signature.Verify(b.SigningString(), b.CreatorSig, creatorPubKey)
}

// Digest returns SHA256(transactions||prev_block_hash||timestamp). It becomes
// the PREV_BLOCK_HASH of the next block and the genesis string for mining.
func (b Block) Digest() string {
	return signature.Hash(b.TransactionsField() + b.PrevBlockHash + b.TimeStamp)
}

// TransactionsField returns the bracketed list of transaction literals with
// their internal spaces replaced by ':'.
func (b Block) TransactionsField() string {
	lits := make([]string, len(b.Transactions))
	for i, tx := range b.Transactions {
		lits[i] = strings.ReplaceAll(tx.String(), " ", ":")
	}
	return "[" + strings.Join(lits, ",") + "]"
}

// SigningString returns every field of the block except the signature.
func (b Block) SigningString() string {
	return strings.Join(b.fields(), " ")
}

// String returns the wire literal for the block.
func (b Block) String() string {
	return BlockBegin + " " + b.SigningString() + " BLOCK_CREATOR_SIGNATURE=" + b.CreatorSig + " " + BlockEnd
}

func (b Block) fields() []string {
	return []string{
		"BLOCK_ID=" + b.ID,
		"BLOCK_CREATOR=" + b.CreatorID,
		"TRANSACTIONS=" + b.TransactionsField(),
		"POW_DIFFICULTY=" + strconv.Itoa(b.PowDifficulty),
		"PREV_BLOCK_HASH=" + b.PrevBlockHash,
		"BLOCKCHAIN_LENGTH=" + strconv.Itoa(b.BlockchainLength),
		"TIMESTAMP=" + b.TimeStamp,
	}
}

// =============================================================================

// ParseBlock converts a block literal back into a Block.
func ParseBlock(literal string) (Block, error) {
	if err := ValidateShape(literal); err != nil {
		return Block{}, err
	}

	tokens := strings.Fields(literal)
	if err := wrapped(tokens, BlockBegin, BlockEnd); err != nil {
		return Block{}, err
	}

	fs, err := parseFields(tokens)
	if err != nil {
		return Block{}, fmt.Errorf("block: %w", err)
	}

	vals, err := fs.strs("BLOCK_ID", "BLOCK_CREATOR", "TRANSACTIONS", "PREV_BLOCK_HASH", "TIMESTAMP", "BLOCK_CREATOR_SIGNATURE")
	if err != nil {
		return Block{}, fmt.Errorf("block: %w", err)
	}

	difficulty, err := fs.integer("POW_DIFFICULTY")
	if err != nil {
		return Block{}, fmt.Errorf("block: %w", err)
	}

	length, err := fs.integer("BLOCKCHAIN_LENGTH")
	if err != nil {
		return Block{}, fmt.Errorf("block: %w", err)
	}

	trans, err := parseTransactionsField(vals[2])
	if err != nil {
		return Block{}, fmt.Errorf("block: %w", err)
	}

	block := Block{
		ID:               vals[0],
		CreatorID:        vals[1],
		Transactions:     trans,
		PowDifficulty:    difficulty,
		PrevBlockHash:    vals[3],
		BlockchainLength: length,
		TimeStamp:        vals[4],
		CreatorSig:       vals[5],
	}

	return block, nil
}

// parseTransactionsField splits the bracketed list back into transactions.
// Public key strings carry commas, so literals are split on their end
// delimiter rather than on the list separator.
func parseTransactionsField(field string) ([]Transaction, error) {
	if !strings.HasPrefix(field, "[") || !strings.HasSuffix(field, "]") {
		return nil, fmt.Errorf("transactions not bracketed: %w", ErrMalformed)
	}

	inner := field[1 : len(field)-1]
	if inner == "" {
		return nil, nil
	}

	var trans []Transaction
	for _, piece := range strings.SplitAfter(inner, TxEnd) {
		piece = strings.TrimPrefix(piece, ",")
		if piece == "" {
			continue
		}

		tx, err := ParseTransaction(strings.ReplaceAll(piece, ":", " "))
		if err != nil {
			return nil, err
		}
		trans = append(trans, tx)
	}

	return trans, nil
}
