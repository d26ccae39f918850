package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/ardanlabs/cerocoin/app/services/viewer/handlers"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Index(t *testing.T) {
	t.Log("Given the need to serve the viewer page.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen requesting the index for two nodes.", testID)
		{
			mux, err := handlers.UIMux(handlers.UIConfig{
				Build:    "test",
				Shutdown: make(chan os.Signal, 1),
				Log:      zap.NewNop().Sugar(),
				Nodes:    []string{"localhost:8080", "localhost:8180"},
			})
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct the mux: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to construct the mux.", success, testID)

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, r)

			if w.Code != http.StatusOK {
				t.Logf("\t%s\tTest %d:\tgot: %d", failed, testID, w.Code)
				t.Logf("\t%s\tTest %d:\texp: %d", failed, testID, http.StatusOK)
				t.Fatalf("\t%s\tTest %d:\tShould receive a 200.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould receive a 200.", success, testID)

			body := w.Body.String()
			for _, node := range []string{"localhost:8080", "localhost:8180"} {
				if !strings.Contains(body, node) {
					t.Fatalf("\t%s\tTest %d:\tShould list node %s.", failed, testID, node)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould list every node.", success, testID)
		}
	}
}
