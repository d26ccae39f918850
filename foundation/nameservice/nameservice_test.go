package nameservice_test

import (
	"path/filepath"
	"testing"

	"github.com/ardanlabs/cerocoin/foundation/blockchain/signature"
	"github.com/ardanlabs/cerocoin/foundation/nameservice"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_NameService(t *testing.T) {
	t.Log("Given the need to name nodes by their key files.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen a folder holds two key files.", testID)
		{
			dir := t.TempDir()

			ids := make(map[string]string)
			for _, name := range []string{"alice", "bob"} {
				keys, err := signature.GenerateKeys(512)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to generate keys: %v", failed, testID, err)
				}
				if err := keys.SaveKeys(filepath.Join(dir, name+".json")); err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to save keys: %v", failed, testID, err)
				}
				ids[keys.ID()] = name
			}

			ns, err := nameservice.New(dir)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct the name service: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to construct the name service.", success, testID)

			for id, exp := range ids {
				if got := ns.Lookup(id); got != exp {
					t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, got)
					t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, exp)
					t.Fatalf("\t%s\tTest %d:\tShould find the name for each node.", failed, testID)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould find the name for each node.", success, testID)

			if got := ns.Lookup("unknown"); got != "unknown" {
				t.Fatalf("\t%s\tTest %d:\tShould return the id for an unknown node.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould return the id for an unknown node.", success, testID)

			if len(ns.Copy()) != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould copy both names.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould copy both names.", success, testID)
		}

		testID = 1
		t.Logf("\tTest %d:\tWhen the folder does not exist.", testID)
		{
			ns, err := nameservice.New(filepath.Join(t.TempDir(), "missing"))
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould tolerate a missing folder: %v", failed, testID, err)
			}
			if len(ns.Copy()) != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould have no names.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould tolerate a missing folder.", success, testID)
		}
	}
}
