package model

import (
	"errors"
	"fmt"
)

// ErrMalformedEdge is returned when an edge does not reference two node
// public keys. It means the graph document does not have the expected shape,
// so continuing would produce a meaningless node set.
var ErrMalformedEdge = errors.New("malformed edge: missing node public key")

// Edge is a channel between two participants of the network graph.
// A public key missing from the source document is the empty string.
type Edge struct {
	// Node1Pub is the public key of the first channel endpoint.
	Node1Pub string `json:"node1_pub"`

	// Node2Pub is the public key of the second channel endpoint.
	Node2Pub string `json:"node2_pub"`
}

// IdentitySet is the set of unique node public keys found in a graph.
// Membership is unique; iteration follows first insertion order so that
// two passes over the same set visit keys identically.
type IdentitySet struct {
	index map[string]struct{}
	keys  []string
}

// NewIdentitySet creates an empty IdentitySet.
func NewIdentitySet() *IdentitySet {
	return &IdentitySet{
		index: make(map[string]struct{}),
		keys:  make([]string, 0),
	}
}

// Add inserts pubKey into the set. It reports whether the key was new.
func (s *IdentitySet) Add(pubKey string) bool {
	if _, ok := s.index[pubKey]; ok {
		return false
	}
	s.index[pubKey] = struct{}{}
	s.keys = append(s.keys, pubKey)
	return true
}

// Contains reports whether pubKey is in the set.
func (s *IdentitySet) Contains(pubKey string) bool {
	_, ok := s.index[pubKey]
	return ok
}

// Len returns the number of unique keys.
func (s *IdentitySet) Len() int {
	return len(s.keys)
}

// Keys returns a copy of the keys in insertion order.
func (s *IdentitySet) Keys() []string {
	keys := make([]string, len(s.keys))
	copy(keys, s.keys)
	return keys
}

// ExtractIdentities reduces edges to the set of public keys referenced by
// either endpoint of any edge.
//
// It returns ErrMalformedEdge, wrapped with the offending edge index, if an
// edge lacks either public key.
func ExtractIdentities(edges []Edge) (*IdentitySet, error) {
	set := NewIdentitySet()
	for i, edge := range edges {
		if edge.Node1Pub == "" || edge.Node2Pub == "" {
			return nil, fmt.Errorf("edge %d: %w", i, ErrMalformedEdge)
		}
		set.Add(edge.Node1Pub)
		set.Add(edge.Node2Pub)
	}
	return set, nil
}
