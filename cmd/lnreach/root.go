package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for lnreach.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lnreach",
		Short: "Find Lightning nodes reachable over clearnet",
		Long: `lnreach inventories the Lightning Network channel graph known to your lnd
node and reports which nodes advertise a publicly reachable address, as
opposed to Tor onion addresses only.

By default the graph is read through lncli. Use --backend grpc to talk to
lnd's gRPC interface directly with a TLS certificate and macaroon.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
