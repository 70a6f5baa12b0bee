package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nao1215/lnreach/internal/config"
	"github.com/nao1215/lnreach/internal/lightning"
	lnlog "github.com/nao1215/lnreach/internal/log"
	"github.com/nao1215/lnreach/internal/model"
	"github.com/nao1215/lnreach/internal/pipeline"
	"github.com/nao1215/lnreach/internal/report"
	"github.com/spf13/cobra"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List Lightning nodes that advertise a clearnet address",
		Long: `Scan fetches the channel graph from lnd, collects every node that appears
in it, looks up each node's advertised addresses, and lists the nodes with at
least one address that is not a Tor onion address.

Progress is written to stderr; the report is written to stdout or --output.
Failed lookups are skipped and counted, they do not abort the scan.

Examples:
  # Scan the testnet graph through lncli
  lnreach scan

  # Scan mainnet and output a JSON report
  lnreach scan --network mainnet --json

  # Use a remote node through lncli
  lnreach scan --rpcserver node.example.com:10009 --macaroonpath ./readonly.macaroon

  # Talk to lnd's gRPC interface directly
  lnreach scan --backend grpc --lnddir ~/.lnd

  # Write a Markdown report to a file
  lnreach scan --markdown -o reports/testnet.md

Configuration file (.lnreach) example:
  network: testnet
  backend: lncli
  lncli:
    path: /usr/local/bin/lncli
    args:
      - --rpcserver=localhost:10010
  lnd:
    dir: ~/.lnd`,
		Args: cobra.NoArgs,
		RunE: runScanCmd,
	}

	// lnd connection flags
	cmd.Flags().StringP("network", "n", config.DefaultNetwork,
		"Lightning network to inventory (mainnet, testnet, testnet4, signet, regtest, simnet)")
	cmd.Flags().StringP("backend", "b", config.DefaultBackend,
		"How to query lnd: lncli or grpc")
	cmd.Flags().String("lncli", config.DefaultLncliPath,
		"Path to the lncli binary")
	cmd.Flags().StringArray("lncli-arg", nil,
		"Extra global flag passed to every lncli call (repeatable)")
	cmd.Flags().String("lnddir", "",
		"lnd base directory (default: platform lnd directory)")
	cmd.Flags().String("rpcserver", config.DefaultRPCServer,
		"lnd gRPC host:port")
	cmd.Flags().String("tlscertpath", "",
		"lnd TLS certificate (default: <lnddir>/tls.cert)")
	cmd.Flags().String("macaroonpath", "",
		"macaroon file (default: <lnddir>/data/chain/bitcoin/<network>/readonly.macaroon)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each call to lnd")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .lnreach in current or home directory)")

	// Output flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("no-progress", false,
		"Do not write the per-node progress line to stderr")
	cmd.Flags().String("log-format", config.LogFormatText,
		"Log format on stderr: text or json")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	stderr := cmd.ErrOrStderr()
	logger := setupLogger(stderr, cfg)
	slog.SetDefault(logger)

	backend, closeBackend, err := newBackend(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up %s backend: %w", cfg.Backend, err)
	}
	defer func() {
		if err := closeBackend(); err != nil {
			logger.Warn("failed to close backend", "backend", backend.Name(), "error", err)
		}
	}()

	return runScan(cmd.Context(), cfg, backend, logger, cmd.OutOrStdout(), stderr)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from defaults, the configuration file and
// cobra command flags, in increasing order of precedence. Only flags that
// were set on the command line override the file.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// If the user named a config file it must exist; otherwise a missing
	// file just means defaults.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(config.CleanAndExpandPath(cfg.ConfigFilePath))

	lndOverrides := lndFlagOverrides{}
	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.Apply(cfg)
		lndOverrides.fromFile(file)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	stringFlags := []struct {
		name string
		dst  *string
	}{
		{"network", &cfg.Network},
		{"backend", &cfg.Backend},
		{"lncli", &cfg.LncliPath},
		{"lnddir", &cfg.LndDir},
		{"rpcserver", &cfg.RPCServer},
		{"tlscertpath", &cfg.TLSCertPath},
		{"macaroonpath", &cfg.MacaroonPath},
		{"log-format", &cfg.LogFormat},
	}
	for _, f := range stringFlags {
		if !flags.Changed(f.name) {
			continue
		}
		if *f.dst, err = flags.GetString(f.name); err != nil {
			return nil, err
		}
	}
	lndOverrides.fromFlags(cmd)

	if flags.Changed("lncli-arg") {
		if cfg.LncliArgs, err = flags.GetStringArray("lncli-arg"); err != nil {
			return nil, err
		}
	}

	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}

	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cfg.NoProgress, err = flags.GetBool("no-progress"); err != nil {
		return nil, err
	}
	cfg.Verbose = getVerboseFlag(cmd)

	// lncli derives its own paths; only forward what the user chose.
	cfg.LncliArgs = append(lndOverrides.lncliArgs(cfg), cfg.LncliArgs...)
	cfg.ResolveLndPaths()

	return cfg, nil
}

// lndFlagOverrides records which lnd connection settings the user chose
// explicitly, in the file or on the command line.
type lndFlagOverrides struct {
	lndDir       bool
	rpcServer    bool
	tlsCertPath  bool
	macaroonPath bool
}

func (o *lndFlagOverrides) fromFile(f *config.File) {
	o.lndDir = o.lndDir || f.Lnd.Dir != ""
	o.rpcServer = o.rpcServer || f.Lnd.RPCServer != ""
	o.tlsCertPath = o.tlsCertPath || f.Lnd.TLSCertPath != ""
	o.macaroonPath = o.macaroonPath || f.Lnd.MacaroonPath != ""
}

func (o *lndFlagOverrides) fromFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	o.lndDir = o.lndDir || flags.Changed("lnddir")
	o.rpcServer = o.rpcServer || flags.Changed("rpcserver")
	o.tlsCertPath = o.tlsCertPath || flags.Changed("tlscertpath")
	o.macaroonPath = o.macaroonPath || flags.Changed("macaroonpath")
}

// lncliArgs turns the explicit lnd settings into lncli global flags.
func (o lndFlagOverrides) lncliArgs(cfg *config.Config) []string {
	args := make([]string, 0, 4)
	if o.lndDir && cfg.LndDir != "" {
		args = append(args, "--lnddir="+config.CleanAndExpandPath(cfg.LndDir))
	}
	if o.rpcServer && cfg.RPCServer != "" {
		args = append(args, "--rpcserver="+cfg.RPCServer)
	}
	if o.tlsCertPath && cfg.TLSCertPath != "" {
		args = append(args, "--tlscertpath="+config.CleanAndExpandPath(cfg.TLSCertPath))
	}
	if o.macaroonPath && cfg.MacaroonPath != "" {
		args = append(args, "--macaroonpath="+config.CleanAndExpandPath(cfg.MacaroonPath))
	}
	return args
}

// setupLogger creates the secure stderr logger for the configured format.
func setupLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	if cfg.LogFormat == config.LogFormatJSON {
		return lnlog.NewSecureJSONLogger(w, cfg.Verbose)
	}
	return lnlog.NewSecureLogger(w, cfg.Verbose)
}

// newBackend creates the backend selected by cfg. The returned function
// releases its resources.
func newBackend(cfg *config.Config) (lightning.Backend, func() error, error) {
	switch cfg.Backend {
	case config.BackendGRPC:
		b, err := lightning.NewGRPCBackend(lightning.GRPCConfig{
			RPCServer:    cfg.RPCServer,
			TLSCertPath:  cfg.TLSCertPath,
			MacaroonPath: cfg.MacaroonPath,
			Timeout:      cfg.Timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return b, b.Close, nil
	case config.BackendLncli:
		b := lightning.NewLncliBackend(cfg.Network,
			lightning.WithLncliPath(cfg.LncliPath),
			lightning.WithGlobalArgs(cfg.LncliArgs...),
			lightning.WithCommandTimeout(cfg.Timeout),
		)
		return b, func() error { return nil }, nil
	default:
		return nil, nil, config.ErrInvalidBackend
	}
}

// runScan executes the pipeline against backend and writes the report.
// Only a schema violation in the graph or a report write failure is
// returned as an error.
func runScan(ctx context.Context, cfg *config.Config, backend lightning.Backend, logger *slog.Logger, stdout, stderr io.Writer) error {
	logger.Info("starting scan",
		"network", cfg.Network,
		"backend", backend.Name(),
		"timeout", cfg.Timeout,
	)

	var progress io.Writer
	if !cfg.NoProgress {
		progress = stderr
	}

	p := pipeline.DefaultPipeline(backend,
		pipeline.WithPipelineLogger(logger),
		pipeline.WithPipelineProgress(progress),
	)

	reachReport := model.NewReachReport(cfg.Network, backend.Name())
	if err := p.Execute(ctx, reachReport); err != nil {
		return err
	}

	logger.Info("scan finished",
		"unique_nodes", reachReport.UniqueNodes,
		"non_tor_nodes", reachReport.NodeCount(),
		"failed_lookups", reachReport.FailedCount,
	)

	if err := outputReport(cfg, reachReport, stdout); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// outputReport writes the report in the requested format to cfg.ReportFile,
// or to stdout when no file is configured.
func outputReport(cfg *config.Config, reachReport *model.ReachReport, stdout io.Writer) error {
	output := stdout
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports list node addresses; keep them private to the owner.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	_, err := newReportWriter(cfg, output).Write(reachReport)
	return err
}

// newReportWriter selects the report writer for cfg.
func newReportWriter(cfg *config.Config, output io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}
}
