// Package config provides configuration structures and utilities for lnreach.
// It defines which Lightning network to inventory, how to reach lnd (lncli or
// gRPC), and report output preferences. Values come from defaults, an
// optional YAML file and CLI flags, in increasing order of precedence.
package config
