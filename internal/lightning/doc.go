// Package lightning queries a Lightning Network node for its view of the
// channel graph.
//
// Backend is the seam between the inventory pipeline and lnd. Two
// implementations exist:
//   - LncliBackend shells out to lncli and parses its JSON output. Process
//     execution goes through a Runner so the parsing can be exercised without
//     an lncli binary.
//   - GRPCBackend talks to lnd's Lightning service directly using the
//     generated lnrpc client, authenticated with TLS and a macaroon.
//
// Neither backend retries. A failed call returns an error and the caller
// decides whether the failure is fatal.
package lightning
