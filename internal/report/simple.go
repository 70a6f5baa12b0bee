package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/lnreach/internal/model"
)

// Rule is the underline printed below the result header.
const Rule = "==================="

// NoNodesMessage is printed when no node advertises a clearnet address.
const NoNodesMessage = "No non-Tor nodes found with valid addresses."

// SimpleWriter outputs the plain text report:
//
//	Found 3 unique nodes
//
//	Searching for non-Tor nodes...
//
//	Found 1 non-Tor nodes:
//	===================
//
//	1. Alias: alpha
//	   Pubkey: 02ab...
//	   Addresses:
//	     - 1.2.3.4:9735
//
// Every advertised address of a listed node is printed, not only the
// clearnet ones.
type SimpleWriter struct {
	baseWriter

	// verbose adds the run details (network, backend, lookup counts).
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables the run details block.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in plain text.
func (w *SimpleWriter) Write(report *model.ReachReport) (int, error) {
	var sb strings.Builder

	w.writeSummary(&sb, report)
	w.writeNodes(&sb, report)

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.ReachReport) {
	fmt.Fprintf(sb, "Found %d unique nodes\n", report.UniqueNodes)

	if w.verbose {
		fmt.Fprintf(sb, "Network:        %s\n", report.Network)
		fmt.Fprintf(sb, "Backend:        %s\n", report.Backend)
		fmt.Fprintf(sb, "Scan Date:      %s\n", report.DateScanned.Format("2006-01-02 15:04:05 MST"))
		fmt.Fprintf(sb, "Channels:       %d\n", report.EdgeCount)
		fmt.Fprintf(sb, "Inspected:      %d\n", report.InspectedCount)
		if report.GraphError != "" {
			fmt.Fprintf(sb, "Graph Error:    %s\n", report.GraphError)
		}
	}

	sb.WriteString("\nSearching for non-Tor nodes...\n")

	if report.FailedCount > 0 {
		fmt.Fprintf(sb, "Skipped %d nodes whose lookup failed\n", report.FailedCount)
	}
}

func (w *SimpleWriter) writeNodes(sb *strings.Builder, report *model.ReachReport) {
	if !report.HasNodes() {
		sb.WriteString("\n" + NoNodesMessage + "\n")
		return
	}

	fmt.Fprintf(sb, "\nFound %d non-Tor nodes:\n", report.NodeCount())
	sb.WriteString(Rule + "\n")

	for i, node := range report.Nodes {
		fmt.Fprintf(sb, "\n%d. Alias: %s\n", i+1, node.Alias)
		fmt.Fprintf(sb, "   Pubkey: %s\n", node.PubKey)
		sb.WriteString("   Addresses:\n")
		for _, addr := range node.Addresses {
			fmt.Fprintf(sb, "     - %s\n", addr.Addr)
		}
	}
}
