package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"suidoc/internal/wallet"
)

var errNoKey = errors.New("no key given: pass --key or set " + keyEnv)

func newKeygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a new ed25519 keypair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kp, err := wallet.NewKeypair()
			if err != nil {
				return fmt.Errorf("generate key: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, color.GreenString("✓")+" New keypair generated")
			fmt.Fprintln(out, "  Address: "+color.YellowString(kp.Address()))
			fmt.Fprintln(out, "  Key:     "+kp.Export())
			fmt.Fprintln(out, color.CyanString("→")+" Keep the key secret. Export it as "+color.YellowString(keyEnv)+" to use it with other commands.")
			return nil
		},
	}
}

func newAddressCmd() *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "address",
		Short: "Print the Sui address of a keystore entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kp, err := loadKey(key)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), kp.Address())
			return nil
		},
	}
	cmd.Flags().StringVarP(&key, "key", "k", "", "keystore entry (base64 flag||seed)")
	return cmd
}

func loadKey(flag string) (*wallet.Keypair, error) {
	entry := keyFrom(flag)
	if entry == "" {
		return nil, errNoKey
	}
	kp, err := wallet.ParseKeystoreEntry(entry)
	if err != nil {
		return nil, fmt.Errorf("parse key: %w", err)
	}
	return kp, nil
}
