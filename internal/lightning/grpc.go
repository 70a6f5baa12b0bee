package lightning

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/lightningnetwork/lnd/lnrpc"
	"github.com/lightningnetwork/lnd/macaroons"
	"github.com/nao1215/lnreach/internal/model"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"gopkg.in/macaroon.v2"
)

// maxGraphMsgSize is the largest describegraph response accepted.
// The mainnet graph is well above gRPC's 4MB default.
const maxGraphMsgSize = 200 * 1024 * 1024

// GRPCConfig holds the connection settings for lnd's gRPC interface.
type GRPCConfig struct {
	// RPCServer is lnd's RPC "host:port".
	RPCServer string

	// TLSCertPath is the path to lnd's TLS certificate.
	TLSCertPath string

	// MacaroonPath is the path to a macaroon allowed to read the graph.
	MacaroonPath string

	// Timeout bounds each RPC. Zero means no bound.
	Timeout time.Duration
}

// GRPCBackend queries lnd through its Lightning gRPC service.
type GRPCBackend struct {
	client  lnrpc.LightningClient
	conn    *grpc.ClientConn
	timeout time.Duration
}

// NewGRPCBackend dials lnd using the TLS certificate and macaroon in cfg.
// The connection is established lazily on the first call.
func NewGRPCBackend(cfg GRPCConfig) (*GRPCBackend, error) {
	creds, err := credentials.NewClientTLSFromFile(cfg.TLSCertPath, "")
	if err != nil {
		return nil, fmt.Errorf("could not load TLS cert %s: %w", cfg.TLSCertPath, err)
	}

	macCred, err := loadMacaroonCredential(cfg.MacaroonPath)
	if err != nil {
		return nil, err
	}

	conn, err := grpc.NewClient(cfg.RPCServer,
		grpc.WithTransportCredentials(creds),
		grpc.WithPerRPCCredentials(macCred),
		grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(maxGraphMsgSize)),
	)
	if err != nil {
		return nil, fmt.Errorf("could not connect to lnd at %s: %w", cfg.RPCServer, err)
	}

	return &GRPCBackend{
		client:  lnrpc.NewLightningClient(conn),
		conn:    conn,
		timeout: cfg.Timeout,
	}, nil
}

// NewGRPCBackendFromClient wraps an existing Lightning client.
func NewGRPCBackendFromClient(client lnrpc.LightningClient, timeout time.Duration) *GRPCBackend {
	return &GRPCBackend{
		client:  client,
		timeout: timeout,
	}
}

// loadMacaroonCredential reads a binary macaroon file and turns it into
// per-RPC credentials.
func loadMacaroonCredential(path string) (macaroons.MacaroonCredential, error) {
	macBytes, err := os.ReadFile(path) //nolint:gosec // User-provided macaroon path is intentional
	if err != nil {
		return macaroons.MacaroonCredential{}, fmt.Errorf("could not read macaroon %s: %w", path, err)
	}

	mac := &macaroon.Macaroon{}
	if err := mac.UnmarshalBinary(macBytes); err != nil {
		return macaroons.MacaroonCredential{}, fmt.Errorf("could not decode macaroon %s: %w", path, err)
	}

	cred, err := macaroons.NewMacaroonCredential(mac)
	if err != nil {
		return macaroons.MacaroonCredential{}, fmt.Errorf("could not create macaroon credential: %w", err)
	}

	return cred, nil
}

// Name returns "grpc".
func (b *GRPCBackend) Name() string {
	return BackendGRPC
}

// Close releases the underlying connection, if the backend owns one.
func (b *GRPCBackend) Close() error {
	if b.conn == nil {
		return nil
	}
	return b.conn.Close()
}

// DescribeGraph returns the edges of lnd's announced channel graph.
func (b *GRPCBackend) DescribeGraph(ctx context.Context) ([]model.Edge, error) {
	ctx, cancel := b.callContext(ctx)
	defer cancel()

	graph, err := b.client.DescribeGraph(ctx, &lnrpc.ChannelGraphRequest{})
	if err != nil {
		return nil, fmt.Errorf("%w: describegraph: %w", ErrRPCFailed, err)
	}

	edges := make([]model.Edge, len(graph.GetEdges()))
	for i, e := range graph.GetEdges() {
		edges[i] = model.Edge{
			Node1Pub: e.GetNode1Pub(),
			Node2Pub: e.GetNode2Pub(),
		}
	}

	return edges, nil
}

// GetNodeInfo returns the alias and addresses lnd knows for pubKey.
func (b *GRPCBackend) GetNodeInfo(ctx context.Context, pubKey string) (*model.NodeRecord, error) {
	if pubKey == "" {
		return nil, ErrEmptyPubKey
	}

	ctx, cancel := b.callContext(ctx)
	defer cancel()

	info, err := b.client.GetNodeInfo(ctx, &lnrpc.NodeInfoRequest{PubKey: pubKey})
	if err != nil {
		return nil, fmt.Errorf("%w: getnodeinfo %s: %w", ErrRPCFailed, pubKey, err)
	}

	node := info.GetNode()
	if node == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoNodeData, pubKey)
	}

	addresses := make([]model.Address, len(node.GetAddresses()))
	for i, a := range node.GetAddresses() {
		addresses[i] = model.Address{
			Network: a.GetNetwork(),
			Addr:    a.GetAddr(),
		}
	}

	return model.NewNodeRecord(pubKey, node.GetAlias(), addresses), nil
}

// callContext derives a per-call context bounded by the backend timeout.
func (b *GRPCBackend) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.timeout > 0 {
		return context.WithTimeout(ctx, b.timeout)
	}
	return context.WithCancel(ctx)
}
