package config

import "errors"

// Configuration validation errors, returned by Config.Validate().
// Callers match them with errors.Is.
var (
	// ErrInvalidNetwork is returned when the network is not one lncli accepts.
	ErrInvalidNetwork = errors.New("invalid network: must be one of mainnet, testnet, testnet4, signet, regtest, simnet")

	// ErrInvalidBackend is returned when the backend is neither lncli nor grpc.
	ErrInvalidBackend = errors.New("invalid backend: must be lncli or grpc")

	// ErrEmptyLncliPath is returned when the lncli backend has no binary.
	ErrEmptyLncliPath = errors.New("lncli path cannot be empty")

	// ErrEmptyRPCServer is returned when the grpc backend has no server address.
	ErrEmptyRPCServer = errors.New("rpc server address cannot be empty")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidLogFormat is returned when the log format is neither text nor json.
	ErrInvalidLogFormat = errors.New("invalid log format: must be text or json")
)
