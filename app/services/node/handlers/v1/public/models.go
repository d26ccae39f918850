package public

import (
	"math/big"

	"github.com/ardanlabs/cerocoin/foundation/blockchain/database"
	"github.com/ardanlabs/cerocoin/foundation/blockchain/signature"
	"github.com/ardanlabs/cerocoin/foundation/blockchain/state"
	"github.com/ardanlabs/cerocoin/foundation/validate"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

type pubKey struct {
	ID       string `json:"id"`
	Modulus  string `json:"modulus"`
	Exponent string `json:"exponent"`
}

type status struct {
	Name             string   `json:"name"`
	Key              pubKey   `json:"key"`
	Difficulty       int      `json:"difficulty"`
	BlockchainLength int      `json:"blockchain_length"`
	CurrentBlock     string   `json:"current_block,omitempty"`
	OwnedCoins       int      `json:"owned_coins"`
	PendingTrans     int      `json:"pending_transactions"`
	ReceivedTrans    int      `json:"received_transactions"`
	ArchivedBlocks   uint64   `json:"archived_blocks"`
	Peers            []string `json:"peers"`
}

type coin struct {
	ID            string `json:"id"`
	MinerID       string `json:"miner_id"`
	PowDifficulty int    `json:"pow_difficulty"`
	TimeStamp     string `json:"timestamp"`
	HashVal       string `json:"hashval"`
	Signature     string `json:"signature"`
}

type tx struct {
	ID        string `json:"id"`
	Coin      coin   `json:"coin"`
	SellerID  string `json:"seller_id"`
	BuyerID   string `json:"buyer_id"`
	TimeStamp string `json:"timestamp"`
	Signature string `json:"signature"`
}

type block struct {
	ID               string `json:"id"`
	CreatorID        string `json:"creator_id"`
	Digest           string `json:"digest"`
	PowDifficulty    int    `json:"pow_difficulty"`
	PrevBlockHash    string `json:"prev_block_hash"`
	BlockchainLength int    `json:"blockchain_length"`
	TimeStamp        string `json:"timestamp"`
	Trans            []tx   `json:"transactions"`
	Signature        string `json:"signature"`
}

// verifyRequest is the payload checked by the verify endpoint.
type verifyRequest struct {
	Message   string `json:"message" validate:"required"`
	Signature string `json:"signature" validate:"required,hexadecimal"`
	PubKey    string `json:"pub_key" validate:"required"`
}

// Validate checks the request has what is needed to verify.
func (vr verifyRequest) Validate() error {
	return validate.Check(vr)
}

// connectRequest is the payload of the peer connect endpoint.
type connectRequest struct {
	Host string `json:"host" validate:"required,hostname_port"`
}

// Validate checks the host is dialable.
func (cr connectRequest) Validate() error {
	return validate.Check(cr)
}

// =============================================================================

// toHex renders a hex value without prefix in the 0x notation. Values that
// are not hex are returned untouched.
func toHex(s string) string {
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return s
	}
	return hexutil.EncodeBig(v)
}

func toPubKey(s string) pubKey {
	pk, err := signature.ParsePublicKey(s)
	if err != nil {
		return pubKey{ID: signature.Hash(s)}
	}

	return pubKey{
		ID:       pk.ID(),
		Modulus:  hexutil.EncodeBig(pk.N),
		Exponent: hexutil.EncodeBig(pk.E),
	}
}

func toStatus(st state.Status) status {
	peers := make([]string, len(st.Peers))
	for i, p := range st.Peers {
		peers[i] = p.String()
	}

	var current string
	if st.CurrentBlock != "" {
		current = toHex(st.CurrentBlock)
	}

	return status{
		Key:              toPubKey(st.PublicKey),
		Difficulty:       st.Difficulty,
		BlockchainLength: st.BlockchainLength,
		CurrentBlock:     current,
		OwnedCoins:       st.OwnedCoins,
		PendingTrans:     st.PendingTrans,
		ReceivedTrans:    st.ReceivedTrans,
		ArchivedBlocks:   st.ArchivedBlocks,
		Peers:            peers,
	}
}

func toCoin(c database.Coin) coin {
	return coin{
		ID:            c.ID,
		MinerID:       c.MinerID,
		PowDifficulty: c.PowDifficulty,
		TimeStamp:     c.TimeStamp,
		HashVal:       toHex(c.HashVal),
		Signature:     toHex(c.MinerSignature),
	}
}

func toCoins(coins []database.Coin) []coin {
	out := make([]coin, len(coins))
	for i, c := range coins {
		out[i] = toCoin(c)
	}
	return out
}

func toTx(t database.Transaction) tx {
	return tx{
		ID:        t.ID,
		Coin:      toCoin(t.Coin),
		SellerID:  t.SellerID,
		BuyerID:   signature.Hash(t.BuyerPubKey),
		TimeStamp: t.TimeStamp,
		Signature: toHex(t.SellerSig),
	}
}

func toTxs(trans []database.Transaction) []tx {
	out := make([]tx, len(trans))
	for i, t := range trans {
		out[i] = toTx(t)
	}
	return out
}

func toBlock(b database.Block) block {
	return block{
		ID:               b.ID,
		CreatorID:        b.CreatorID,
		Digest:           toHex(b.Digest()),
		PowDifficulty:    b.PowDifficulty,
		PrevBlockHash:    toHex(b.PrevBlockHash),
		BlockchainLength: b.BlockchainLength,
		TimeStamp:        b.TimeStamp,
		Trans:            toTxs(b.Transactions),
		Signature:        toHex(b.CreatorSig),
	}
}
