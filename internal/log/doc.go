// Package log provides secure logging functionality with automatic sanitization
// of sensitive information, built on top of the standard slog package.
//
// lnreach talks to lnd with macaroons and TLS material; the SecureHandler makes
// sure none of that ends up in diagnostic output:
//   - Credential keys (macaroon, rpcpass, password, token, seed)
//   - Hex or base64 encoded lnd macaroons detected by pattern
//   - Private key blocks and wallet mnemonics
//
// Node public keys are long hex strings but are not secret, and are left
// untouched so failures can be traced to a node.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Error("node lookup failed", "pubkey", pubKey, "error", err)
//	slog.SetDefault(logger)
package log
