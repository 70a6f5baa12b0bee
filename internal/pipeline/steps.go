package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/nao1215/lnreach/internal/lightning"
	"github.com/nao1215/lnreach/internal/model"
	"github.com/nao1215/lnreach/internal/reach"
)

// FetchGraphStep retrieves the channel graph from the backend.
//
// A failed fetch is not fatal: the error is logged, recorded in
// report.GraphError, and the run continues with zero edges.
type FetchGraphStep struct {
	backend  lightning.Backend
	progress io.Writer
	logger   *slog.Logger
}

// FetchGraphStepOption configures a FetchGraphStep.
type FetchGraphStepOption func(*FetchGraphStep)

// WithFetchLogger sets a custom logger for the fetch step.
func WithFetchLogger(logger *slog.Logger) FetchGraphStepOption {
	return func(s *FetchGraphStep) {
		s.logger = logger
	}
}

// WithFetchProgress sets where the "Fetching network graph..." notice is
// written. A nil writer disables it.
func WithFetchProgress(w io.Writer) FetchGraphStepOption {
	return func(s *FetchGraphStep) {
		s.progress = w
	}
}

// NewFetchGraphStep creates a graph fetch step backed by backend.
func NewFetchGraphStep(backend lightning.Backend, opts ...FetchGraphStepOption) *FetchGraphStep {
	s := &FetchGraphStep{
		backend: backend,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.progress == nil {
		s.progress = io.Discard
	}

	return s
}

// Name returns the step name.
func (s *FetchGraphStep) Name() string {
	return "fetch_graph"
}

// Do executes the fetch step.
func (s *FetchGraphStep) Do(ctx context.Context, report *model.ReachReport) error {
	fmt.Fprintln(s.progress, "Fetching network graph...")

	edges, err := s.backend.DescribeGraph(ctx)
	if err != nil {
		s.logger.Error("failed to fetch network graph",
			"backend", s.backend.Name(),
			"error", err,
		)
		report.GraphError = err.Error()
		report.SetEdges(nil)
		return nil
	}

	s.logger.Debug("fetched network graph", "edges", len(edges))
	report.SetEdges(edges)
	return nil
}

// ExtractIdentitiesStep reduces the fetched edges to the set of unique
// node public keys. An edge without both endpoints stops the pipeline.
type ExtractIdentitiesStep struct {
	logger *slog.Logger
}

// NewExtractIdentitiesStep creates an identity extraction step.
func NewExtractIdentitiesStep(logger *slog.Logger) *ExtractIdentitiesStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractIdentitiesStep{logger: logger}
}

// Name returns the step name.
func (s *ExtractIdentitiesStep) Name() string {
	return "extract_identities"
}

// Do executes the extraction step.
func (s *ExtractIdentitiesStep) Do(_ context.Context, report *model.ReachReport) error {
	set, err := model.ExtractIdentities(report.Edges())
	if err != nil {
		return fmt.Errorf("failed to extract node identities: %w", err)
	}

	report.SetIdentities(set)
	report.DiscardEdges()

	s.logger.Debug("extracted node identities", "unique_nodes", set.Len())
	return nil
}

// InspectNodesStep looks up every identity in the report, one at a time,
// and keeps the nodes that advertise at least one clearnet address.
//
// Before each lookup a "\rChecking node i/n..." line is written to the
// progress writer. Lookups that fail are logged and counted in
// report.FailedCount; they never produce a node.
type InspectNodesStep struct {
	backend  lightning.Backend
	progress io.Writer
	logger   *slog.Logger
}

// InspectNodesStepOption configures an InspectNodesStep.
type InspectNodesStepOption func(*InspectNodesStep)

// WithProgressWriter sets where progress lines are written.
// A nil writer disables progress output.
func WithProgressWriter(w io.Writer) InspectNodesStepOption {
	return func(s *InspectNodesStep) {
		s.progress = w
	}
}

// WithInspectLogger sets a custom logger for the inspect step.
func WithInspectLogger(logger *slog.Logger) InspectNodesStepOption {
	return func(s *InspectNodesStep) {
		s.logger = logger
	}
}

// NewInspectNodesStep creates a node inspection step backed by backend.
// Progress output is disabled unless WithProgressWriter is given.
func NewInspectNodesStep(backend lightning.Backend, opts ...InspectNodesStepOption) *InspectNodesStep {
	s := &InspectNodesStep{
		backend: backend,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.progress == nil {
		s.progress = io.Discard
	}

	return s
}

// Name returns the step name.
func (s *InspectNodesStep) Name() string {
	return "inspect_nodes"
}

// Do executes the inspection step.
func (s *InspectNodesStep) Do(ctx context.Context, report *model.ReachReport) error {
	if report.Identities == nil || report.Identities.Len() == 0 {
		return nil
	}

	keys := report.Identities.Keys()
	total := len(keys)

	for i, pubKey := range keys {
		fmt.Fprintf(s.progress, "\rChecking node %d/%d...", i+1, total)

		node, err := s.backend.GetNodeInfo(ctx, pubKey)
		if err != nil {
			report.FailedCount++
			s.logLookupFailure(pubKey, err)
			continue
		}

		report.InspectedCount++
		if reach.IsNodeReachable(node) {
			report.AddNode(node)
		}
	}

	fmt.Fprintln(s.progress)
	return nil
}

func (s *InspectNodesStep) logLookupFailure(pubKey string, err error) {
	switch {
	case errors.Is(err, lightning.ErrParseOutput):
		s.logger.Error("failed to parse node info", "pubkey", pubKey, "error", err)
	case errors.Is(err, lightning.ErrNoNodeData):
		s.logger.Debug("no node data returned", "pubkey", pubKey)
	default:
		s.logger.Error("failed to get node info", "pubkey", pubKey, "error", err)
	}
}

// DefaultPipelineConfig holds the options for DefaultPipeline.
type DefaultPipelineConfig struct {
	// Progress receives the fetch notice and the per-node progress line.
	// Nil disables both.
	Progress io.Writer

	// Logger is shared by all steps.
	Logger *slog.Logger
}

// DefaultPipelineOption configures the default pipeline.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineProgress sets the progress writer for the fetch and inspect
// steps.
func WithPipelineProgress(w io.Writer) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Progress = w
	}
}

// WithPipelineLogger sets the logger shared by the pipeline and its steps.
func WithPipelineLogger(logger *slog.Logger) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Logger = logger
	}
}

// DefaultPipeline creates the standard fetch, extract, inspect pipeline
// over backend.
func DefaultPipeline(backend lightning.Backend, opts ...DefaultPipelineOption) *Pipeline {
	cfg := &DefaultPipelineConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	p := New(WithLogger(cfg.Logger))
	p.AddSteps(
		NewFetchGraphStep(backend,
			WithFetchProgress(cfg.Progress),
			WithFetchLogger(cfg.Logger),
		),
		NewExtractIdentitiesStep(cfg.Logger),
		NewInspectNodesStep(backend,
			WithProgressWriter(cfg.Progress),
			WithInspectLogger(cfg.Logger),
		),
	)

	return p
}
