package cmd

import (
	"fmt"
	"strings"

	"github.com/ardanlabs/cerocoin/foundation/blockchain/signature"
	"github.com/spf13/cobra"
)

var hashCmd = &cobra.Command{
	Use:   "hash <message>",
	Short: "Print the SHA-256 hex digest of a message",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), signature.Hash(strings.Join(args, " ")))
	},
}

func init() {
	rootCmd.AddCommand(hashCmd)
}
