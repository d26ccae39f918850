package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ardanlabs/cerocoin/foundation/blockchain/signature"
	"github.com/spf13/cobra"
)

var (
	bits  int
	force bool
)

var genkeyCmd = &cobra.Command{
	Use:   "genkey",
	Short: "Generate new key material for a node",
	RunE:  genkeyRun,
}

func init() {
	rootCmd.AddCommand(genkeyCmd)
	genkeyCmd.Flags().IntVarP(&bits, "bits", "b", 1024, "Size of the modulus in bits.")
	genkeyCmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing key file.")
}

func genkeyRun(cmd *cobra.Command, args []string) error {
	path := getKeyFilePath()

	if !force {
		_, err := os.Stat(path)
		if err == nil {
			return fmt.Errorf("key file %s exists, use --force to replace it", path)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	keys, err := signature.GenerateKeys(bits)
	if err != nil {
		return fmt.Errorf("generating keys: %w", err)
	}

	if err := keys.SaveKeys(path); err != nil {
		return fmt.Errorf("saving keys: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "key file: %s\nnode id:  %s\n", path, keys.ID())
	return nil
}
