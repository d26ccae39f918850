package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ardanlabs/cerocoin/foundation/blockchain/signature"
	"github.com/spf13/cobra"
)

var pubKeyFlag string

var verifyCmd = &cobra.Command{
	Use:   "verify <signature> <message>",
	Short: "Verify a signature against a message",
	Args:  cobra.MinimumNArgs(2),
	RunE:  verifyRun,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().StringVar(&pubKeyFlag, "pubkey", "", "Canonical public key, defaults to the key file.")
}

func verifyRun(cmd *cobra.Command, args []string) error {
	pubKey := pubKeyFlag
	if pubKey == "" {
		keys, err := loadKeys()
		if err != nil {
			return fmt.Errorf("loading keys: %w", err)
		}
		pubKey = keys.PublicKey().String()
	}

	if !signature.Verify(strings.Join(args[1:], " "), args[0], pubKey) {
		return errors.New("signature is not valid")
	}

	fmt.Fprintln(cmd.OutOrStdout(), "signature is valid")
	return nil
}
