// Package cmd contains the cerocoin admin commands.
package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ardanlabs/cerocoin/foundation/blockchain/signature"
	"github.com/spf13/cobra"
)

var (
	keyName string
	keyPath string
)

const (
	keyExtension = ".json"
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&keyName, "key", "k", "node.json", "Name of the key file.")
	rootCmd.PersistentFlags().StringVarP(&keyPath, "key-path", "p", "zblock/keys/", "Path to the directory with key files.")
}

var rootCmd = &cobra.Command{
	Use:   "cerocoin",
	Short: "Key and signature tooling for CeroCoin nodes",
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func getKeyFilePath() string {
	name := keyName
	if !strings.HasSuffix(name, keyExtension) {
		name += keyExtension
	}

	return filepath.Join(keyPath, name)
}

func loadKeys() (*signature.KeyMaterial, error) {
	return signature.LoadKeys(getKeyFilePath())
}
