package model

import "time"

// ReachReport is the result of one inventory run over a network graph.
// It is built up by the pipeline steps and rendered by the report writers.
// It lives only for the duration of the run.
type ReachReport struct {
	// Network is the Lightning network that was inventoried (e.g. "testnet").
	Network string `json:"network"`

	// Backend names the query backend that produced the data ("lncli", "grpc").
	Backend string `json:"backend"`

	// DateScanned is when the run started.
	DateScanned time.Time `json:"date_scanned"`

	// EdgeCount is the number of edges returned by the graph fetch.
	// Zero when the fetch failed.
	EdgeCount int `json:"edge_count"`

	// GraphError holds the graph fetch failure message, if any.
	GraphError string `json:"graph_error,omitempty"`

	// Identities is the set of unique public keys. It is consumed by the
	// inspect step and not serialized.
	Identities *IdentitySet `json:"-"`

	// UniqueNodes is the number of unique public keys in the graph.
	UniqueNodes int `json:"unique_nodes"`

	// InspectedCount is the number of lookups that returned node data.
	InspectedCount int `json:"inspected_count"`

	// FailedCount is the number of lookups that failed and were skipped.
	FailedCount int `json:"failed_count"`

	// Nodes holds the nodes classified as reachable, in inspection order.
	Nodes []*NodeRecord `json:"nodes"`

	// PerformedSteps lists the pipeline steps that ran.
	PerformedSteps []string `json:"performed_steps"`

	// edges is the fetched edge list. It is discarded once identities are
	// extracted.
	edges []Edge
}

// NewReachReport creates an empty report for the given network and backend.
func NewReachReport(network, backend string) *ReachReport {
	return &ReachReport{
		Network:        network,
		Backend:        backend,
		DateScanned:    time.Now(),
		Nodes:          make([]*NodeRecord, 0),
		PerformedSteps: make([]string, 0),
	}
}

// SetEdges stores the fetched edges and records their count.
func (r *ReachReport) SetEdges(edges []Edge) {
	r.edges = edges
	r.EdgeCount = len(edges)
}

// Edges returns the fetched edges that have not yet been discarded.
func (r *ReachReport) Edges() []Edge {
	return r.edges
}

// DiscardEdges drops the edge list once it is no longer needed.
func (r *ReachReport) DiscardEdges() {
	r.edges = nil
}

// SetIdentities stores the extracted identity set.
func (r *ReachReport) SetIdentities(set *IdentitySet) {
	r.Identities = set
	r.UniqueNodes = set.Len()
}

// AddNode appends a node classified as reachable.
func (r *ReachReport) AddNode(node *NodeRecord) {
	r.Nodes = append(r.Nodes, node)
}

// HasNodes reports whether any node was classified as reachable.
func (r *ReachReport) HasNodes() bool {
	return len(r.Nodes) > 0
}

// NodeCount returns the number of nodes classified as reachable.
func (r *ReachReport) NodeCount() int {
	return len(r.Nodes)
}
