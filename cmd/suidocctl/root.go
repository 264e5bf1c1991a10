package main

import (
	"os"

	"github.com/spf13/cobra"
)

// keyEnv holds a keystore entry so it does not have to be passed on the command line.
const keyEnv = "SUIDOC_KEY"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "suidocctl",
		Short: "suidocctl - wallet and signature helper for SuiDoc",
		Long: `suidocctl manages ed25519 Sui keys, signs document content hashes
the same way a browser wallet does, and checks signatures and transactions.

Usage:
  suidocctl <command> [flags]
`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newKeygenCmd(),
		newAddressCmd(),
		newHashCmd(),
		newSignCmd(),
		newVerifyCmd(),
		newWaitCmd(),
	)
	return root
}

// keyFrom resolves the keystore entry from the --key flag or SUIDOC_KEY.
func keyFrom(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv(keyEnv)
}
