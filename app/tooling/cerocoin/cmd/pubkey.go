package cmd

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
)

var pubkeyCmd = &cobra.Command{
	Use:   "pubkey",
	Short: "Print the public key and id for the key file",
	RunE:  pubkeyRun,
}

func init() {
	rootCmd.AddCommand(pubkeyCmd)
}

func pubkeyRun(cmd *cobra.Command, args []string) error {
	keys, err := loadKeys()
	if err != nil {
		return fmt.Errorf("loading keys: %w", err)
	}

	pk := keys.PublicKey()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "id:        %s\n", pk.ID())
	fmt.Fprintf(out, "modulus:   %s\n", hexutil.EncodeBig(pk.N))
	fmt.Fprintf(out, "exponent:  %s\n", hexutil.EncodeBig(pk.E))
	fmt.Fprintf(out, "canonical: %s\n", pk.String())
	return nil
}
