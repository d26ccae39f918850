package database

import (
	"fmt"
	"strings"

	"github.com/ardanlabs/cerocoin/foundation/blockchain/signature"
)

// Transaction represents the transfer of a coin from a seller to a buyer.
type Transaction struct {
	ID           string
	Coin         Coin
	SellerID     string
	SellerPubKey string
	BuyerPubKey  string
	TimeStamp    string
	SellerSig    string
}

// NewTransaction constructs an unsigned transaction handing the coin
// to the owner of the buyer key.
func NewTransaction(coin Coin, sellerPubKey string, buyerPubKey string, timestamp string) (Transaction, error) {
	id, err := RandomID()
	if err != nil {
		return Transaction{}, err
	}

	tx := Transaction{
		ID:           id,
		Coin:         coin,
		SellerID:     signature.Hash(sellerPubKey),
		SellerPubKey: sellerPubKey,
		BuyerPubKey:  buyerPubKey,
		TimeStamp:    timestamp,
	}

	return tx, nil
}

// Sign uses the key material of the seller to sign the transaction.
func (tx Transaction) Sign(km *signature.KeyMaterial) (Transaction, error) {
	sig, err := km.Sign(tx.SigningString())
	if err != nil {
		return Transaction{}, err
	}

	tx.SellerSig = sig
	return tx, nil
}

// VerifySignature checks the seller signature against the seller's key.
func (tx Transaction) VerifySignature() bool {
	return signature.Verify(tx.SigningString(), tx.SellerSig, tx.SellerPubKey)
}

// SigningString returns every field of the transaction except the signature.
func (tx Transaction) SigningString() string {
	return strings.Join(tx.fields(), " ")
}

// String returns the wire literal for the transaction.
func (tx Transaction) String() string {
	return TxBegin + " " + tx.SigningString() + " SELLER_TRANX_SIGNATURE=" + tx.SellerSig + " " + TxEnd
}

func (tx Transaction) fields() []string {
	return []string{
		"TRANSACTION_ID=" + tx.ID,
		tx.Coin.String(),
		"SELLER=" + tx.SellerID,
		"SELLER_PUB_KEY=" + tx.SellerPubKey,
		"BUYER_PUB_KEY=" + tx.BuyerPubKey,
		"TIMESTAMP=" + tx.TimeStamp,
	}
}

// =============================================================================

// ParseTransaction converts a transaction literal back into a Transaction.
func ParseTransaction(literal string) (Transaction, error) {
	if err := ValidateShape(literal); err != nil {
		return Transaction{}, err
	}

	tokens := strings.Fields(literal)
	if err := wrapped(tokens, TxBegin, TxEnd); err != nil {
		return Transaction{}, err
	}

	coinTokens, txTokens, err := segment(tokens, CoinBegin, CoinEnd)
	if err != nil {
		return Transaction{}, err
	}

	coin, err := coinFromTokens(coinTokens)
	if err != nil {
		return Transaction{}, err
	}

	fs, err := parseFields(txTokens)
	if err != nil {
		return Transaction{}, fmt.Errorf("transaction: %w", err)
	}

	vals, err := fs.strs("TRANSACTION_ID", "SELLER", "SELLER_PUB_KEY", "BUYER_PUB_KEY", "TIMESTAMP", "SELLER_TRANX_SIGNATURE")
	if err != nil {
		return Transaction{}, fmt.Errorf("transaction: %w", err)
	}

	tx := Transaction{
		ID:           vals[0],
		Coin:         coin,
		SellerID:     vals[1],
		SellerPubKey: vals[2],
		BuyerPubKey:  vals[3],
		TimeStamp:    vals[4],
		SellerSig:    vals[5],
	}

	return tx, nil
}
