package main

import (
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"suidoc/internal/httpx"
	"suidoc/internal/sui"
)

const (
	defaultRPCURL      = "https://fullnode.testnet.sui.io:443"
	defaultExplorerURL = "https://suiscan.xyz/testnet/tx"
)

func startSpinner(cmd *cobra.Command, message string) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
	s.Suffix = " " + message
	_ = s.Color("cyan")
	s.Start()
	return s
}

func newWaitCmd() *cobra.Command {
	var (
		rpcURL   string
		explorer string
		interval time.Duration
		timeout  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "wait <digest>",
		Short: "Wait until a transaction is confirmed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			digest := args[0]
			client := sui.NewClient(rpcURL, httpx.NewClient(httpx.Options{Timeout: 30 * time.Second}))

			s := startSpinner(cmd, "Waiting for "+digest+"...")
			resp, err := client.WaitForTransaction(cmd.Context(), digest, interval, timeout)
			s.Stop()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, color.GreenString("✓")+" Transaction confirmed")
			if resp.Checkpoint != "" {
				fmt.Fprintln(out, "  Checkpoint: "+resp.Checkpoint)
			}
			fmt.Fprintln(out, "  Explorer:   "+color.YellowString(sui.ExplorerURL(explorer, digest)))
			return nil
		},
	}
	cmd.Flags().StringVar(&rpcURL, "rpc", defaultRPCURL, "Sui fullnode JSON-RPC URL")
	cmd.Flags().StringVar(&explorer, "explorer", defaultExplorerURL, "explorer transaction base URL")
	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "poll interval")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "give up after this long")
	return cmd
}
