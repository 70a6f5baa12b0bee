package lightning

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nao1215/lnreach/internal/model"
)

// DefaultLncliPath is the lncli binary looked up in PATH.
const DefaultLncliPath = "lncli"

// describeGraphOutput is the subset of `lncli describegraph` output we read.
type describeGraphOutput struct {
	Edges []lncliEdge `json:"edges"`
}

// lncliEdge is one element of the describegraph "edges" array.
type lncliEdge struct {
	Node1Pub string `json:"node1_pub"`
	Node2Pub string `json:"node2_pub"`
}

// nodeInfoOutput is the subset of `lncli getnodeinfo` output we read.
type nodeInfoOutput struct {
	Node *lncliNode `json:"node"`
}

// lncliNode is the "node" object of getnodeinfo output.
type lncliNode struct {
	PubKey    string         `json:"pub_key"`
	Alias     string         `json:"alias"`
	Addresses []lncliAddress `json:"addresses"`
}

// lncliAddress is one element of the "addresses" array.
type lncliAddress struct {
	Network string `json:"network"`
	Addr    string `json:"addr"`
}

// LncliBackend queries lnd by running lncli and decoding its JSON output.
type LncliBackend struct {
	// runner executes lncli.
	runner Runner

	// path is the lncli binary.
	path string

	// network is passed as --network on every invocation.
	network string

	// globalArgs are extra global flags placed before the subcommand,
	// e.g. --rpcserver or --macaroonpath.
	globalArgs []string

	// timeout bounds each invocation. Zero means no bound.
	timeout time.Duration
}

// LncliOption configures an LncliBackend.
type LncliOption func(*LncliBackend)

// WithRunner sets the command runner. Tests use this to substitute a fake.
func WithRunner(runner Runner) LncliOption {
	return func(b *LncliBackend) {
		b.runner = runner
	}
}

// WithLncliPath sets the lncli binary path.
func WithLncliPath(path string) LncliOption {
	return func(b *LncliBackend) {
		if path != "" {
			b.path = path
		}
	}
}

// WithGlobalArgs appends global lncli flags.
func WithGlobalArgs(args ...string) LncliOption {
	return func(b *LncliBackend) {
		b.globalArgs = append(b.globalArgs, args...)
	}
}

// WithCommandTimeout bounds each lncli invocation.
func WithCommandTimeout(timeout time.Duration) LncliOption {
	return func(b *LncliBackend) {
		b.timeout = timeout
	}
}

// NewLncliBackend creates a backend that runs lncli against network.
func NewLncliBackend(network string, opts ...LncliOption) *LncliBackend {
	b := &LncliBackend{
		runner:  ExecRunner{},
		path:    DefaultLncliPath,
		network: network,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Name returns "lncli".
func (b *LncliBackend) Name() string {
	return BackendLncli
}

// Args returns the full argument list for an lncli subcommand.
func (b *LncliBackend) Args(subcommand string, args ...string) []string {
	result := make([]string, 0, 2+len(b.globalArgs)+len(args))
	result = append(result, "--network="+b.network)
	result = append(result, b.globalArgs...)
	result = append(result, subcommand)
	result = append(result, args...)
	return result
}

// DescribeGraph runs `lncli describegraph` and returns its edges.
// A document without an "edges" field yields no edges.
func (b *LncliBackend) DescribeGraph(ctx context.Context) ([]model.Edge, error) {
	out, err := b.run(ctx, "describegraph")
	if err != nil {
		return nil, err
	}

	var graph describeGraphOutput
	if err := json.Unmarshal(out, &graph); err != nil {
		return nil, fmt.Errorf("%w: describegraph: %w", ErrParseOutput, err)
	}

	edges := make([]model.Edge, len(graph.Edges))
	for i, e := range graph.Edges {
		edges[i] = model.Edge{
			Node1Pub: e.Node1Pub,
			Node2Pub: e.Node2Pub,
		}
	}

	return edges, nil
}

// GetNodeInfo runs `lncli getnodeinfo <pubKey>` and returns the node's
// alias and addresses.
func (b *LncliBackend) GetNodeInfo(ctx context.Context, pubKey string) (*model.NodeRecord, error) {
	if pubKey == "" {
		return nil, ErrEmptyPubKey
	}

	out, err := b.run(ctx, "getnodeinfo", pubKey)
	if err != nil {
		return nil, err
	}

	var info nodeInfoOutput
	if err := json.Unmarshal(out, &info); err != nil {
		return nil, fmt.Errorf("%w: getnodeinfo %s: %w", ErrParseOutput, pubKey, err)
	}

	if info.Node == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoNodeData, pubKey)
	}

	addresses := make([]model.Address, len(info.Node.Addresses))
	for i, a := range info.Node.Addresses {
		addresses[i] = model.Address{
			Network: a.Network,
			Addr:    a.Addr,
		}
	}

	return model.NewNodeRecord(pubKey, info.Node.Alias, addresses), nil
}

// run invokes lncli with the backend's global flags.
func (b *LncliBackend) run(ctx context.Context, subcommand string, args ...string) ([]byte, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	return b.runner.Run(ctx, b.path, b.Args(subcommand, args...)...)
}
