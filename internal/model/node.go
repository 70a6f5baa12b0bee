package model

// UnknownAlias is the alias reported for nodes that did not announce one.
const UnknownAlias = "Unknown"

// Address is one network endpoint advertised by a node.
type Address struct {
	// Network is the address family reported by lnd, e.g. "tcp".
	Network string `json:"network,omitempty"`

	// Addr is the "host:port" text exactly as advertised.
	Addr string `json:"addr"`
}

// NodeRecord is the result of inspecting one node.
// It only exists for nodes whose lookup succeeded and returned node data.
type NodeRecord struct {
	// PubKey is the node's identity public key.
	PubKey string `json:"pub_key"`

	// Alias is the node's display name, or UnknownAlias.
	Alias string `json:"alias"`

	// Addresses are the advertised endpoints in the order returned by the
	// lookup. They are never re-sorted or deduplicated.
	Addresses []Address `json:"addresses"`
}

// NewNodeRecord creates a NodeRecord, substituting UnknownAlias for an empty
// alias. A nil address list is replaced with an empty one.
func NewNodeRecord(pubKey, alias string, addresses []Address) *NodeRecord {
	if alias == "" {
		alias = UnknownAlias
	}
	if addresses == nil {
		addresses = []Address{}
	}
	return &NodeRecord{
		PubKey:    pubKey,
		Alias:     alias,
		Addresses: addresses,
	}
}

// AddrStrings returns the literal address strings in advertised order.
func (n *NodeRecord) AddrStrings() []string {
	addrs := make([]string, len(n.Addresses))
	for i, a := range n.Addresses {
		addrs[i] = a.Addr
	}
	return addrs
}
