package reach

import (
	"strings"

	"github.com/nao1215/lnreach/internal/model"
)

const (
	// PortSeparator separates host and port in an advertised address.
	PortSeparator = ":"

	// OnionSuffix is the reserved top-level domain of Tor onion services.
	OnionSuffix = ".onion"

	// onionHostMarker matches an onion host immediately followed by a port.
	onionHostMarker = OnionSuffix + PortSeparator
)

// IsClearnetAddress reports whether addr is a non-anonymized endpoint: it
// contains a port separator and its host does not end in ".onion".
func IsClearnetAddress(addr string) bool {
	return strings.Contains(addr, PortSeparator) &&
		!strings.Contains(addr, onionHostMarker)
}

// IsReachable reports whether at least one of the addresses is a clearnet
// endpoint. An empty list is never reachable.
func IsReachable(addrs []model.Address) bool {
	for _, a := range addrs {
		if IsClearnetAddress(a.Addr) {
			return true
		}
	}
	return false
}

// ClearnetAddresses returns the clearnet endpoints among addrs, preserving
// their advertised order.
func ClearnetAddresses(addrs []model.Address) []model.Address {
	result := make([]model.Address, 0, len(addrs))
	for _, a := range addrs {
		if IsClearnetAddress(a.Addr) {
			result = append(result, a)
		}
	}
	return result
}

// IsNodeReachable reports whether node advertises a clearnet endpoint.
// A nil node is not reachable.
func IsNodeReachable(node *model.NodeRecord) bool {
	if node == nil {
		return false
	}
	return IsReachable(node.Addresses)
}
