package validate_test

import (
	"testing"

	"github.com/ardanlabs/cerocoin/foundation/validate"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type peerRequest struct {
	Host string `json:"host" validate:"required,hostname_port"`
}

func Test_Check(t *testing.T) {
	t.Log("Given the need to validate request models.")
	{
		t.Logf("\tTest 0:\tWhen handling a valid model.")
		{
			if err := validate.Check(peerRequest{Host: "127.0.0.1:6404"}); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould accept the model: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould accept the model.", success)
		}

		t.Logf("\tTest 1:\tWhen handling an invalid model.")
		{
			err := validate.Check(peerRequest{})
			if !validate.IsFieldErrors(err) {
				t.Fatalf("\t%s\tTest 1:\tShould reject the model with field errors: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould reject the model with field errors.", success)

			if _, exists := validate.GetFieldErrors(err).Fields()["host"]; !exists {
				t.Fatalf("\t%s\tTest 1:\tShould name the json field.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould name the json field.", success)
		}
	}
}
