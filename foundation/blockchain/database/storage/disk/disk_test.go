package disk_test

import (
	"errors"
	"testing"

	"github.com/ardanlabs/cerocoin/foundation/blockchain/database"
	"github.com/ardanlabs/cerocoin/foundation/blockchain/database/storage/disk"
)

func Test_ReadWrite(t *testing.T) {
	strg, err := disk.New(t.TempDir())
	if err != nil {
		t.Fatalf("Should be able to construct the storage: %s", err)
	}
	defer strg.Close()

	for i := uint64(1); i <= 3; i++ {
		if err := strg.Write(database.BlockData{Number: i, Literal: "block"}); err != nil {
			t.Fatalf("Should be able to write block %d: %s", i, err)
		}
	}

	bd, err := strg.GetBlock(2)
	if err != nil || bd.Number != 2 {
		t.Fatalf("Should be able to read block 2: %v", err)
	}

	var count int
	iter := strg.ForEach()
	for blockData, err := iter.Next(); !iter.Done(); blockData, err = iter.Next() {
		if err != nil {
			t.Fatalf("Should be able to iterate: %s", err)
		}
		count++
		if blockData.Number != uint64(count) {
			t.Fatalf("Should iterate in order, got %d exp %d.", blockData.Number, count)
		}
	}

	if count != 3 {
		t.Fatalf("Should iterate over 3 blocks, got %d.", count)
	}

	strg.Reset()
	if _, err := strg.GetBlock(1); !errors.Is(err, database.ErrNotFound) {
		t.Fatalf("Should have no blocks after a reset: %v", err)
	}
}
