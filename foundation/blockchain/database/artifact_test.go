package database_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ardanlabs/cerocoin/foundation/blockchain/database"
	"github.com/ardanlabs/cerocoin/foundation/blockchain/signature"
)

func newKeys(t *testing.T) *signature.KeyMaterial {
	t.Helper()

	km, err := signature.GenerateKeys(512)
	if err != nil {
		t.Fatalf("Should be able to generate key material: %s", err)
	}

	return km
}

func newCoin(t *testing.T, km *signature.KeyMaterial) database.Coin {
	t.Helper()

	res := database.POWResult{Nonce: "6e6f6e6365", HashVal: lowHash}
	coin, err := database.NewCoin(km.PublicKey().String(), "67656e65736973", 251, res, database.Timestamp(time.Now()))
	if err != nil {
		t.Fatalf("Should be able to construct a coin: %s", err)
	}

	coin, err = coin.Sign(km)
	if err != nil {
		t.Fatalf("Should be able to sign a coin: %s", err)
	}

	return coin
}

func newTx(t *testing.T, seller *signature.KeyMaterial, buyer *signature.KeyMaterial) database.Transaction {
	t.Helper()

	tx, err := database.NewTransaction(newCoin(t, seller), seller.PublicKey().String(), buyer.PublicKey().String(), database.Timestamp(time.Now()))
	if err != nil {
		t.Fatalf("Should be able to construct a transaction: %s", err)
	}

	tx, err = tx.Sign(seller)
	if err != nil {
		t.Fatalf("Should be able to sign a transaction: %s", err)
	}

	return tx
}

// =============================================================================

func Test_CoinLiteral(t *testing.T) {
	km := newKeys(t)
	coin := newCoin(t, km)

	lit := coin.String()
	if !strings.HasPrefix(lit, "CEROCOIN_BEGIN COIN_ID=") || !strings.HasSuffix(lit, " CEROCOIN_END") {
		t.Logf("got: %.64s", lit)
		t.Fatalf("Should get back a delimited coin literal.")
	}

	if len(coin.ID) != 8 {
		t.Fatalf("Should get a 32 bit hex coin id, got %q.", coin.ID)
	}

	if coin.MinerID != km.ID() {
		t.Fatalf("Should identify the miner by the hash of its public key.")
	}

	parsed, err := database.ParseCoin(lit)
	if err != nil {
		t.Fatalf("Should be able to parse the coin literal: %s", err)
	}

	if parsed.String() != lit {
		t.Fatalf("Should get back the same literal after a parse.")
	}

	if !parsed.VerifySignature() {
		t.Fatalf("Should be able to verify the miner signature.")
	}
}

func Test_TransactionLiteral(t *testing.T) {
	seller := newKeys(t)
	buyer := newKeys(t)
	tx := newTx(t, seller, buyer)

	lit := tx.String()
	if !strings.HasPrefix(lit, database.TxBegin+" TRANSACTION_ID=") || !strings.HasSuffix(lit, " "+database.TxEnd) {
		t.Logf("got: %.64s", lit)
		t.Fatalf("Should get back a delimited transaction literal.")
	}

	parsed, err := database.ParseTransaction(lit)
	if err != nil {
		t.Fatalf("Should be able to parse the transaction literal: %s", err)
	}

	if parsed.String() != lit {
		t.Fatalf("Should get back the same literal after a parse.")
	}

	if !parsed.VerifySignature() {
		t.Fatalf("Should be able to verify the seller signature.")
	}

	if parsed.BuyerPubKey != buyer.PublicKey().String() {
		t.Fatalf("Should carry the buyer public key.")
	}
}

func Test_TamperedTransaction(t *testing.T) {
	tx := newTx(t, newKeys(t), newKeys(t))

	t.Log("Given a transaction whose coin was altered after signing.")
	{
		tampered, err := database.ParseTransaction(tx.String())
		if err != nil {
			t.Fatalf("\t%s\tShould be able to parse the transaction: %v", failed, err)
		}

		tampered.Coin.Nonce = "74616d7065726564"

		if tampered.VerifySignature() {
			t.Fatalf("\t%s\tShould fail to verify the seller signature.", failed)
		}
		t.Logf("\t%s\tShould fail to verify the seller signature.", success)

		if !tx.VerifySignature() {
			t.Fatalf("\t%s\tShould still verify the original transaction.", failed)
		}
		t.Logf("\t%s\tShould still verify the original transaction.", success)
	}
}

func Test_BlockLiteral(t *testing.T) {
	creator := newKeys(t)
	buyer := newKeys(t)
	trans := []database.Transaction{newTx(t, creator, buyer), newTx(t, creator, buyer)}

	first, err := database.NewBlock(database.BlockArgs{
		CreatorID:   creator.ID(),
		Difficulty:  251,
		ChainLength: 0,
		Trans:       trans,
		TimeStamp:   database.Timestamp(time.Now()),
	})
	if err != nil {
		t.Fatalf("Should be able to construct the first block: %s", err)
	}

	if len(first.PrevBlockHash) != 64 {
		t.Fatalf("Should get a random 256 bit previous hash for the first block.")
	}

	if first.BlockchainLength != 2 {
		t.Fatalf("Should count the packed transactions, got %d.", first.BlockchainLength)
	}

	first, err = first.Sign(creator)
	if err != nil {
		t.Fatalf("Should be able to sign the block: %s", err)
	}

	second, err := database.NewBlock(database.BlockArgs{
		CreatorID:   creator.ID(),
		Difficulty:  251,
		PrevBlock:   &first,
		ChainLength: first.BlockchainLength,
		Trans:       trans[:1],
		TimeStamp:   database.Timestamp(time.Now()),
	})
	if err != nil {
		t.Fatalf("Should be able to construct the second block: %s", err)
	}

	if second.PrevBlockHash != signature.Hash(first.TransactionsField()+first.PrevBlockHash+first.TimeStamp) {
		t.Fatalf("Should chain to the digest of the previous block.")
	}

	if second.BlockchainLength != 3 {
		t.Fatalf("Should add to the previous length, got %d.", second.BlockchainLength)
	}

	lit := first.String()
	if strings.Count(lit, " ") != 9 {
		t.Logf("got: %d", strings.Count(lit, " "))
		t.Fatalf("Should keep the transactions inside a single token.")
	}

	parsed, err := database.ParseBlock(lit)
	if err != nil {
		t.Fatalf("Should be able to parse the block literal: %s", err)
	}

	if len(parsed.Transactions) != 2 || parsed.String() != lit {
		t.Fatalf("Should get back the same block after a parse.")
	}

	if !parsed.VerifySignature(creator.PublicKey().String()) {
		t.Fatalf("Should be able to verify the creator signature.")
	}

	for _, tx := range parsed.Transactions {
		if !tx.VerifySignature() {
			t.Fatalf("Should be able to verify the packed transactions.")
		}
	}
}

func Test_ValidateShape(t *testing.T) {
	type table struct {
		name    string
		literal string
		valid   bool
	}

	tt := []table{
		{name: "pairs", literal: "CEROCOIN_BLOCK_BEGIN A=1 B=2 CEROCOIN_BLOCK_END", valid: true},
		{name: "empty", literal: "   ", valid: false},
		{name: "text", literal: "Hello there", valid: false},
		{name: "nokey", literal: "A=1 =2", valid: false},
		{name: "unknown", literal: "CEROCOIN_SOMETHING A=1", valid: false},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			err := database.ValidateShape(tst.literal)
			if (err == nil) != tst.valid {
				t.Logf("Test %s:\tgot: %v", tst.name, err)
				t.Fatalf("Test %s:\tShould validate the shape of the literal.", tst.name)
			}

			if err != nil && !errors.Is(err, database.ErrMalformed) {
				t.Fatalf("Test %s:\tShould get back ErrMalformed.", tst.name)
			}
		}

		t.Run(tst.name, f)
	}
}

func Test_ParseBlockMalformed(t *testing.T) {
	tt := []string{
		"CEROCOIN_BLOCK_BEGIN BLOCK_ID=1 CEROCOIN_BLOCK_END",
		"CEROCOIN_BLOCK_BEGIN BLOCK_ID=1 BLOCK_CREATOR=a TRANSACTIONS=[] POW_DIFFICULTY=x PREV_BLOCK_HASH=a BLOCKCHAIN_LENGTH=1 TIMESTAMP=1 BLOCK_CREATOR_SIGNATURE=a CEROCOIN_BLOCK_END",
		"BLOCK_ID=1 BLOCK_CREATOR=a TRANSACTIONS=[] POW_DIFFICULTY=1 PREV_BLOCK_HASH=a BLOCKCHAIN_LENGTH=1 TIMESTAMP=1 BLOCK_CREATOR_SIGNATURE=a",
		"CEROCOIN_BLOCK_BEGIN BLOCK_ID=1 BLOCK_CREATOR=a TRANSACTIONS=[junk] POW_DIFFICULTY=1 PREV_BLOCK_HASH=a BLOCKCHAIN_LENGTH=1 TIMESTAMP=1 BLOCK_CREATOR_SIGNATURE=a CEROCOIN_BLOCK_END",
	}

	for i, lit := range tt {
		if _, err := database.ParseBlock(lit); !errors.Is(err, database.ErrMalformed) {
			t.Logf("got: %v", err)
			t.Fatalf("Test %d:\tShould reject the malformed block.", i)
		}
	}

	empty := "CEROCOIN_BLOCK_BEGIN BLOCK_ID=1 BLOCK_CREATOR=a TRANSACTIONS=[] POW_DIFFICULTY=1 PREV_BLOCK_HASH=a BLOCKCHAIN_LENGTH=1 TIMESTAMP=1 BLOCK_CREATOR_SIGNATURE=a CEROCOIN_BLOCK_END"
	if _, err := database.ParseBlock(empty); err != nil {
		t.Fatalf("Should accept a block with no transactions: %s", err)
	}
}
