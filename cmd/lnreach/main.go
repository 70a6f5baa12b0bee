// Package main provides the entry point for the lnreach CLI.
//
// lnreach walks the channel graph known to an lnd node and lists the nodes
// that advertise at least one clearnet (non-Tor) address.
//
// Usage:
//
//	lnreach scan
//	lnreach scan --network mainnet --json
//	lnreach scan --backend grpc --rpcserver node:10009
//
// See --help for all available options.
package main

func main() {
	Execute()
}
