package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var signCmd = &cobra.Command{
	Use:   "sign <message>",
	Short: "Sign a message with the node key",
	Args:  cobra.MinimumNArgs(1),
	RunE:  signRun,
}

func init() {
	rootCmd.AddCommand(signCmd)
}

func signRun(cmd *cobra.Command, args []string) error {
	keys, err := loadKeys()
	if err != nil {
		return fmt.Errorf("loading keys: %w", err)
	}

	sig, err := keys.Sign(strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("signing: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), sig)
	return nil
}
