package lightning

import (
	"context"

	"github.com/nao1215/lnreach/internal/model"
)

// Backend names accepted by configuration.
const (
	// BackendLncli selects LncliBackend.
	BackendLncli = "lncli"

	// BackendGRPC selects GRPCBackend.
	BackendGRPC = "grpc"
)

// Backend retrieves graph data from a Lightning node.
type Backend interface {
	// Name returns the backend name for logging and reports.
	Name() string

	// DescribeGraph returns every edge of the node's channel graph.
	// Edge endpoints missing from the response are left empty.
	DescribeGraph(ctx context.Context) ([]model.Edge, error)

	// GetNodeInfo returns the alias and advertised addresses of the node
	// identified by pubKey. It returns ErrNoNodeData when the response holds
	// no node details.
	GetNodeInfo(ctx context.Context, pubKey string) (*model.NodeRecord, error)
}
