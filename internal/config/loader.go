package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".lnreach"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .lnreach configuration file.
// Zero values mean "not set" and leave the corresponding Config field alone.
type File struct {
	// Network selects the Lightning network.
	Network string `yaml:"network,omitempty"`

	// Backend is "lncli" or "grpc".
	Backend string `yaml:"backend,omitempty"`

	// Lncli holds settings for the lncli backend.
	Lncli LncliFile `yaml:"lncli,omitempty"`

	// Lnd holds settings for the grpc backend and path defaults.
	Lnd LndFile `yaml:"lnd,omitempty"`

	// Timeout bounds each call to lnd, e.g. "90s".
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// LncliFile is the "lncli" section of the configuration file.
type LncliFile struct {
	// Path is the lncli binary.
	Path string `yaml:"path,omitempty"`

	// Args are extra global flags for every lncli invocation.
	Args []string `yaml:"args,omitempty"`
}

// LndFile is the "lnd" section of the configuration file.
type LndFile struct {
	// Dir is lnd's base directory.
	Dir string `yaml:"dir,omitempty"`

	// RPCServer is lnd's gRPC "host:port".
	RPCServer string `yaml:"rpcserver,omitempty"`

	// TLSCertPath is lnd's TLS certificate.
	TLSCertPath string `yaml:"tlscertpath,omitempty"`

	// MacaroonPath is the macaroon for gRPC calls.
	MacaroonPath string `yaml:"macaroonpath,omitempty"`
}

// LoadConfigFile loads settings from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	return &cf, nil
}

// Apply copies every value set in the file onto cfg.
func (f *File) Apply(cfg *Config) {
	if f.Network != "" {
		cfg.Network = f.Network
	}
	if f.Backend != "" {
		cfg.Backend = f.Backend
	}
	if f.Lncli.Path != "" {
		cfg.LncliPath = f.Lncli.Path
	}
	if len(f.Lncli.Args) > 0 {
		cfg.LncliArgs = append([]string(nil), f.Lncli.Args...)
	}
	if f.Lnd.Dir != "" {
		cfg.LndDir = f.Lnd.Dir
	}
	if f.Lnd.RPCServer != "" {
		cfg.RPCServer = f.Lnd.RPCServer
	}
	if f.Lnd.TLSCertPath != "" {
		cfg.TLSCertPath = f.Lnd.TLSCertPath
	}
	if f.Lnd.MacaroonPath != "" {
		cfg.MacaroonPath = f.Lnd.MacaroonPath
	}
	if f.Timeout > 0 {
		cfg.Timeout = f.Timeout
	}
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .lnreach in the current directory
// 3. Look for .lnreach in the user's home directory
// 4. Look for config.yaml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), "config.yaml"))

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return ""
}
