// Package model defines the core data structures used throughout lnreach.
//
// This package contains the following main types:
//   - Edge: A channel between two participants, as read from the graph
//   - IdentitySet: The unique node public keys referenced by the graph
//   - NodeRecord: The alias and advertised addresses of one node
//   - ReachReport: The result of one inventory run
//
// Multiple packages (lightning, pipeline, report) share these types, so they
// live here to avoid import cycles. All types are serializable to JSON for
// report output. Nothing in this package is persisted between runs.
package model
