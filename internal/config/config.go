package config

import (
	"path/filepath"
	"slices"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultNetwork is the Lightning network inventoried when none is given.
	DefaultNetwork = "testnet"

	// DefaultBackend queries lnd through lncli.
	DefaultBackend = BackendLncli

	// DefaultLncliPath is the lncli binary looked up in PATH.
	DefaultLncliPath = "lncli"

	// DefaultRPCServer is lnd's default gRPC listen address.
	DefaultRPCServer = "localhost:10009"

	// DefaultTimeout bounds each call to lnd. describegraph on mainnet
	// returns tens of megabytes, so this is generous.
	DefaultTimeout = 2 * time.Minute

	// DefaultMacaroonName is the macaroon used by the gRPC backend.
	// Graph queries only need read access.
	DefaultMacaroonName = "readonly.macaroon"

	// DefaultTLSCertName is the TLS certificate file inside the lnd dir.
	DefaultTLSCertName = "tls.cert"

	// AppName is the application name used for XDG directory paths.
	AppName = "lnreach"
)

// Backend names.
const (
	// BackendLncli runs lncli and parses its JSON output.
	BackendLncli = "lncli"

	// BackendGRPC calls lnd's gRPC interface directly.
	BackendGRPC = "grpc"
)

// supportedNetworks are the values lncli accepts for --network.
var supportedNetworks = []string{"mainnet", "testnet", "testnet4", "signet", "regtest", "simnet"}

// Config holds all configuration options for lnreach.
// It is populated from the config file and CLI flags and passed explicitly
// to the pipeline; there is no package-level state.
type Config struct {
	// Network selects the Lightning network (lncli --network).
	Network string

	// Backend selects how lnd is queried: "lncli" or "grpc".
	Backend string

	// LncliPath is the lncli binary used by the lncli backend.
	LncliPath string

	// LncliArgs are extra global flags passed to every lncli invocation,
	// e.g. "--rpcserver=host:10009".
	LncliArgs []string

	// LndDir is lnd's base directory. TLSCertPath and MacaroonPath default
	// to files below it.
	LndDir string

	// RPCServer is lnd's gRPC "host:port", used by the grpc backend.
	RPCServer string

	// TLSCertPath is lnd's TLS certificate, used by the grpc backend.
	TLSCertPath string

	// MacaroonPath is the macaroon used by the grpc backend.
	MacaroonPath string

	// Timeout bounds each call to lnd.
	Timeout time.Duration

	// Verbose enables debug logging.
	Verbose bool

	// LogFormat is "text" (default) or "json".
	LogFormat string

	// NoProgress suppresses the per-node progress line on stderr.
	NoProgress bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, FindConfigFile searches the default locations.
	ConfigFilePath string

	// JSONReport selects JSON report output. Mutually exclusive with
	// MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown report output. Mutually exclusive with
	// JSONReport.
	MarkdownReport bool

	// ReportFile is the output path for the report. Empty means stdout.
	ReportFile string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Network:   DefaultNetwork,
		Backend:   DefaultBackend,
		LncliPath: DefaultLncliPath,
		LndDir:    DefaultLndDir(),
		RPCServer: DefaultRPCServer,
		Timeout:   DefaultTimeout,
		LogFormat: LogFormatText,
	}
}

// Log formats.
const (
	// LogFormatText writes logfmt-style lines.
	LogFormatText = "text"

	// LogFormatJSON writes one JSON object per line.
	LogFormatJSON = "json"
)

// XDGConfigDir returns the XDG config directory for lnreach.
// On Linux: ~/.config/lnreach
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ResolveLndPaths fills TLSCertPath and MacaroonPath from LndDir and
// Network when they were not set explicitly, the way lncli does.
// User-supplied paths have "~" and environment variables expanded.
func (c *Config) ResolveLndPaths() {
	c.LndDir = CleanAndExpandPath(c.LndDir)

	if c.TLSCertPath == "" {
		c.TLSCertPath = filepath.Join(c.LndDir, DefaultTLSCertName)
	} else {
		c.TLSCertPath = CleanAndExpandPath(c.TLSCertPath)
	}

	if c.MacaroonPath == "" {
		c.MacaroonPath = filepath.Join(
			c.LndDir, "data", "chain", "bitcoin", c.Network, DefaultMacaroonName,
		)
	} else {
		c.MacaroonPath = CleanAndExpandPath(c.MacaroonPath)
	}
}

// Validate checks if the configuration is valid.
// It returns the first sentinel error found.
func (c *Config) Validate() error {
	if !slices.Contains(supportedNetworks, c.Network) {
		return ErrInvalidNetwork
	}

	switch c.Backend {
	case BackendLncli:
		if c.LncliPath == "" {
			return ErrEmptyLncliPath
		}
	case BackendGRPC:
		if c.RPCServer == "" {
			return ErrEmptyRPCServer
		}
	default:
		return ErrInvalidBackend
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.LogFormat != LogFormatText && c.LogFormat != LogFormatJSON {
		return ErrInvalidLogFormat
	}

	return nil
}

// SupportedNetworks returns the accepted --network values.
func SupportedNetworks() []string {
	return slices.Clone(supportedNetworks)
}
