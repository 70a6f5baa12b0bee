package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/lnreach/internal/model"
)

const (
	pubKeyA = "02aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	pubKeyB = "03bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

// createTestReport creates a report with two reachable nodes and one
// failed lookup.
func createTestReport() *model.ReachReport {
	report := model.NewReachReport("testnet", "lncli")
	report.DateScanned = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	report.SetEdges(make([]model.Edge, 4))

	set := model.NewIdentitySet()
	for _, k := range []string{pubKeyA, pubKeyB, "C", "D", "E"} {
		set.Add(k)
	}
	report.SetIdentities(set)
	report.DiscardEdges()

	report.InspectedCount = 4
	report.FailedCount = 1
	report.AddNode(model.NewNodeRecord(pubKeyA, "alpha", []model.Address{
		{Network: "tcp", Addr: "abc123xyz.onion:9735"},
		{Network: "tcp", Addr: "1.2.3.4:9735"},
	}))
	report.AddNode(model.NewNodeRecord(pubKeyB, "", []model.Address{
		{Network: "tcp", Addr: "[2001:db8::1]:9735"},
	}))

	return report
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes nodes in the classic layout", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := "Found 5 unique nodes\n" +
			"\nSearching for non-Tor nodes...\n" +
			"Skipped 1 nodes whose lookup failed\n" +
			"\nFound 2 non-Tor nodes:\n" +
			"===================\n" +
			"\n1. Alias: alpha\n" +
			"   Pubkey: " + pubKeyA + "\n" +
			"   Addresses:\n" +
			"     - abc123xyz.onion:9735\n" +
			"     - 1.2.3.4:9735\n" +
			"\n2. Alias: Unknown\n" +
			"   Pubkey: " + pubKeyB + "\n" +
			"   Addresses:\n" +
			"     - [2001:db8::1]:9735\n"

		if got := buf.String(); got != want {
			t.Errorf("unexpected output:\n got: %q\nwant: %q", got, want)
		}
	})

	t.Run("writes no nodes message", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		report := model.NewReachReport("testnet", "lncli")
		report.SetIdentities(model.NewIdentitySet())

		if _, err := NewSimpleWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := "Found 0 unique nodes\n" +
			"\nSearching for non-Tor nodes...\n" +
			"\nNo non-Tor nodes found with valid addresses.\n"
		if got := buf.String(); got != want {
			t.Errorf("unexpected output:\n got: %q\nwant: %q", got, want)
		}
	})

	t.Run("verbose adds run details", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		report := createTestReport()
		report.GraphError = "connection refused"

		if _, err := NewSimpleWriter(&buf, WithVerbose(true)).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"Network:        testnet",
			"Backend:        lncli",
			"Channels:       4",
			"Inspected:      4",
			"Graph Error:    connection refused",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("returns bytes written", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewSimpleWriter(&buf).Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("expected %d bytes, got %d", buf.Len(), n)
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes valid JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
		}
		if decoded["network"] != "testnet" {
			t.Errorf("expected network testnet, got %v", decoded["network"])
		}
		if decoded["unique_nodes"] != float64(5) {
			t.Errorf("expected unique_nodes 5, got %v", decoded["unique_nodes"])
		}
		if decoded["failed_count"] != float64(1) {
			t.Errorf("expected failed_count 1, got %v", decoded["failed_count"])
		}
		nodes, ok := decoded["nodes"].([]any)
		if !ok || len(nodes) != 2 {
			t.Fatalf("expected 2 nodes, got %v", decoded["nodes"])
		}
		if _, ok := decoded["Identities"]; ok {
			t.Error("identity set should not be serialized")
		}
	})

	t.Run("compact output is a single line", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Count(buf.String(), "\n") != 1 {
			t.Errorf("expected single line output, got:\n%s", buf.String())
		}
	})

	t.Run("pretty print indents output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"network\": \"testnet\"") {
			t.Errorf("expected indented output, got:\n%s", buf.String())
		}
	})

	t.Run("WithIndent uses custom indentation", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithIndent("", "\t")).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n\t\"network\"") {
			t.Errorf("expected tab indentation, got:\n%s", buf.String())
		}
	})
}

func TestFullJSONWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewFullJSONWriter(&buf, "v1.2.3", WithPrettyPrint())
	if _, err := w.Write(createTestReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded JSONReport
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.Version != "v1.2.3" {
		t.Errorf("expected version v1.2.3, got %q", decoded.Version)
	}
	if decoded.Report == nil || decoded.Report.NodeCount() != 2 {
		t.Fatalf("expected wrapped report with 2 nodes, got %+v", decoded.Report)
	}
	if decoded.Report.Nodes[1].Alias != model.UnknownAlias {
		t.Errorf("expected alias %q, got %q", model.UnknownAlias, decoded.Report.Nodes[1].Alias)
	}
}

// failingWriter is a Writer that always fails.
type failingWriter struct{}

func (failingWriter) Write(*model.ReachReport) (int, error) {
	return 0, errors.New("disk full")
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var text, js bytes.Buffer
		w := NewMultiWriter(NewSimpleWriter(&text), NewJSONWriter(&js))

		n, err := w.Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != text.Len()+js.Len() {
			t.Errorf("expected %d bytes, got %d", text.Len()+js.Len(), n)
		}
		if text.Len() == 0 || js.Len() == 0 {
			t.Error("expected both writers to receive output")
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		var after bytes.Buffer
		w := NewMultiWriter(failingWriter{}, NewSimpleWriter(&after))

		if _, err := w.Write(createTestReport()); err == nil {
			t.Fatal("expected error")
		}
		if after.Len() != 0 {
			t.Error("writer after the failing one should not be called")
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header, summary and nodes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"# lnreach Report",
			"## Summary",
			"## Non-Tor Nodes",
			"### 1. alpha",
			"### 2. Unknown",
			"`" + pubKeyA + "`",
			"`1.2.3.4:9735`",
			"`abc123xyz.onion:9735`",
			"```mermaid",
			"Node Reachability",
			"lookup(s) failed",
			"lnreach](https://github.com/nao1215/lnreach)",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("writes no nodes message", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		report := model.NewReachReport("signet", "grpc")
		report.SetIdentities(model.NewIdentitySet())

		if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, NoNodesMessage) {
			t.Errorf("expected no nodes message, got:\n%s", output)
		}
		if strings.Contains(output, "```mermaid") {
			t.Error("expected no chart for an empty graph")
		}
	})

	t.Run("reports graph fetch failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		report := model.NewReachReport("testnet", "grpc")
		report.GraphError = "connection refused"
		report.SetIdentities(model.NewIdentitySet())

		if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "could not be fetched: connection refused") {
			t.Errorf("expected graph error alert, got:\n%s", buf.String())
		}
	})
}

func TestEscapeAlias(t *testing.T) {
	t.Parallel()

	tests := []struct {
		alias string
		want  string
	}{
		{"alpha", "alpha"},
		{"my_node", "my\\_node"},
		{"a|b", "a\\|b"},
		{"**bold**", "\\*\\*bold\\*\\*"},
		{"two\nlines", "two lines"},
	}

	for _, tt := range tests {
		t.Run(tt.alias, func(t *testing.T) {
			t.Parallel()

			if got := escapeAlias(tt.alias); got != tt.want {
				t.Errorf("escapeAlias(%q) = %q, want %q", tt.alias, got, tt.want)
			}
		})
	}
}
