package lightning

import "errors"

// Backend errors. Callers use errors.Is to tell failure classes apart.
var (
	// ErrCommandFailed is returned when the lncli process could not be
	// started or exited with a non-zero status.
	ErrCommandFailed = errors.New("lncli command failed")

	// ErrParseOutput is returned when lncli output is not the expected JSON
	// document.
	ErrParseOutput = errors.New("failed to parse lncli output")

	// ErrRPCFailed is returned when a gRPC call to lnd fails.
	ErrRPCFailed = errors.New("lnd rpc failed")

	// ErrNoNodeData is returned when a node lookup succeeded but the response
	// carries no node details.
	ErrNoNodeData = errors.New("node lookup returned no node data")

	// ErrEmptyPubKey is returned when a node lookup is requested without a
	// public key.
	ErrEmptyPubKey = errors.New("node public key cannot be empty")
)
