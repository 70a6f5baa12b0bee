// Package reach decides whether a Lightning node can be reached over the
// clearnet.
//
// A node advertises zero or more "host:port" addresses. Addresses whose host
// is a Tor onion service are only reachable through the Tor overlay; every
// other address carrying a port separator counts as a clearnet endpoint.
// The check is a literal substring test: addresses are not parsed, resolved,
// normalized or deduplicated, and private or loopback hosts are not treated
// specially.
package reach
