package events_test

import (
	"testing"

	"github.com/ardanlabs/cerocoin/foundation/events"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Events(t *testing.T) {
	t.Log("Given the need to fan events out to listeners.")
	{
		evts := events.New()

		t.Logf("\tTest 0:\tWhen two listeners are registered.")
		{
			a := evts.Acquire("a")
			b := evts.Acquire("b")

			if evts.Acquire("a") != a {
				t.Fatalf("\t%s\tTest 0:\tShould return the same channel for the same id.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould return the same channel for the same id.", success)

			evts.Send("coin mined")

			for _, ch := range []<-chan string{a, b} {
				if got := <-ch; got != "coin mined" {
					t.Logf("\t%s\tTest 0:\tgot: %s", failed, got)
					t.Logf("\t%s\tTest 0:\texp: %s", failed, "coin mined")
					t.Fatalf("\t%s\tTest 0:\tShould deliver the event to every listener.", failed)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould deliver the event to every listener.", success)
		}

		t.Logf("\tTest 1:\tWhen a listener stops receiving.")
		{
			for range 1000 {
				evts.Send("flood")
			}
			t.Logf("\t%s\tTest 1:\tShould not block the sender.", success)

			if err := evts.Release("a"); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to release a listener: %v", failed, err)
			}
			if err := evts.Release("a"); err == nil {
				t.Fatalf("\t%s\tTest 1:\tShould not release a listener twice.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould release a listener once.", success)

			evts.Shutdown()
			if evts.Len() != 0 {
				t.Fatalf("\t%s\tTest 1:\tShould release every listener on shutdown.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould release every listener on shutdown.", success)
		}
	}
}
