package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/nao1215/lnreach/internal/lightning"
	"github.com/nao1215/lnreach/internal/model"
)

// fakeBackend is an in-memory lightning.Backend.
type fakeBackend struct {
	edges    []model.Edge
	graphErr error
	nodes    map[string]*model.NodeRecord
	nodeErrs map[string]error
	lookups  []string
}

func (f *fakeBackend) Name() string {
	return "fake"
}

func (f *fakeBackend) DescribeGraph(_ context.Context) ([]model.Edge, error) {
	if f.graphErr != nil {
		return nil, f.graphErr
	}
	return f.edges, nil
}

func (f *fakeBackend) GetNodeInfo(_ context.Context, pubKey string) (*model.NodeRecord, error) {
	f.lookups = append(f.lookups, pubKey)
	if err, ok := f.nodeErrs[pubKey]; ok {
		return nil, err
	}
	if node, ok := f.nodes[pubKey]; ok {
		return node, nil
	}
	return nil, fmt.Errorf("%w: %s", lightning.ErrNoNodeData, pubKey)
}

func tcp(addrs ...string) []model.Address {
	result := make([]model.Address, 0, len(addrs))
	for _, a := range addrs {
		result = append(result, model.Address{Network: "tcp", Addr: a})
	}
	return result
}

func TestFetchGraphStep(t *testing.T) {
	t.Parallel()

	t.Run("Name returns correct value", func(t *testing.T) {
		t.Parallel()

		if got := NewFetchGraphStep(&fakeBackend{}).Name(); got != "fetch_graph" {
			t.Errorf("expected name fetch_graph, got %q", got)
		}
	})

	t.Run("stores fetched edges", func(t *testing.T) {
		t.Parallel()

		backend := &fakeBackend{edges: []model.Edge{{Node1Pub: "A", Node2Pub: "B"}}}
		step := NewFetchGraphStep(backend, WithFetchLogger(discardLogger()))
		report := model.NewReachReport("testnet", "fake")

		if err := step.Do(t.Context(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.EdgeCount != 1 || len(report.Edges()) != 1 {
			t.Errorf("expected 1 edge, got count=%d edges=%d", report.EdgeCount, len(report.Edges()))
		}
		if report.GraphError != "" {
			t.Errorf("expected no graph error, got %q", report.GraphError)
		}
	})

	t.Run("writes fetch notice to progress writer", func(t *testing.T) {
		t.Parallel()

		var progress bytes.Buffer
		step := NewFetchGraphStep(&fakeBackend{},
			WithFetchProgress(&progress),
			WithFetchLogger(discardLogger()),
		)

		if err := step.Do(t.Context(), model.NewReachReport("testnet", "fake")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if progress.String() != "Fetching network graph...\n" {
			t.Errorf("unexpected progress output %q", progress.String())
		}
	})

	t.Run("fetch failure yields zero edges without error", func(t *testing.T) {
		t.Parallel()

		backend := &fakeBackend{graphErr: lightning.ErrCommandFailed}
		step := NewFetchGraphStep(backend, WithFetchLogger(discardLogger()))
		report := model.NewReachReport("testnet", "fake")

		if err := step.Do(t.Context(), report); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if report.EdgeCount != 0 {
			t.Errorf("expected 0 edges, got %d", report.EdgeCount)
		}
		if !strings.Contains(report.GraphError, "lncli command failed") {
			t.Errorf("expected graph error to be recorded, got %q", report.GraphError)
		}
	})
}

func TestExtractIdentitiesStep(t *testing.T) {
	t.Parallel()

	t.Run("extracts unique identities and discards edges", func(t *testing.T) {
		t.Parallel()

		report := model.NewReachReport("testnet", "fake")
		report.SetEdges([]model.Edge{
			{Node1Pub: "A", Node2Pub: "B"},
			{Node1Pub: "B", Node2Pub: "C"},
		})

		step := NewExtractIdentitiesStep(discardLogger())
		if err := step.Do(t.Context(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if report.UniqueNodes != 3 {
			t.Errorf("expected 3 unique nodes, got %d", report.UniqueNodes)
		}
		if report.Edges() != nil {
			t.Error("expected edges to be discarded")
		}
		if report.EdgeCount != 2 {
			t.Errorf("expected edge count to be kept, got %d", report.EdgeCount)
		}
	})

	t.Run("malformed edge is fatal", func(t *testing.T) {
		t.Parallel()

		report := model.NewReachReport("testnet", "fake")
		report.SetEdges([]model.Edge{{Node1Pub: "A"}})

		err := NewExtractIdentitiesStep(nil).Do(t.Context(), report)
		if !errors.Is(err, model.ErrMalformedEdge) {
			t.Errorf("expected ErrMalformedEdge, got %v", err)
		}
	})

	t.Run("no edges yields empty set", func(t *testing.T) {
		t.Parallel()

		report := model.NewReachReport("testnet", "fake")
		if err := NewExtractIdentitiesStep(nil).Do(t.Context(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.UniqueNodes != 0 || report.Identities == nil {
			t.Errorf("expected empty identity set, got %d", report.UniqueNodes)
		}
	})
}

func TestInspectNodesStep(t *testing.T) {
	t.Parallel()

	newReport := func(keys ...string) *model.ReachReport {
		set := model.NewIdentitySet()
		for _, k := range keys {
			set.Add(k)
		}
		report := model.NewReachReport("testnet", "fake")
		report.SetIdentities(set)
		return report
	}

	t.Run("keeps only clearnet nodes", func(t *testing.T) {
		t.Parallel()

		backend := &fakeBackend{
			nodes: map[string]*model.NodeRecord{
				"A": model.NewNodeRecord("A", "alpha", tcp("1.2.3.4:9735")),
				"B": model.NewNodeRecord("B", "bravo", tcp("x.onion:9735")),
				"C": model.NewNodeRecord("C", "charlie", nil),
			},
		}
		step := NewInspectNodesStep(backend, WithInspectLogger(discardLogger()))
		report := newReport("A", "B", "C")

		if err := step.Do(t.Context(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if report.NodeCount() != 1 || report.Nodes[0].PubKey != "A" {
			t.Fatalf("expected only node A, got %+v", report.Nodes)
		}
		if report.InspectedCount != 3 {
			t.Errorf("expected 3 inspected, got %d", report.InspectedCount)
		}
		if report.FailedCount != 0 {
			t.Errorf("expected 0 failed, got %d", report.FailedCount)
		}
	})

	t.Run("failed lookup is skipped and counted", func(t *testing.T) {
		t.Parallel()

		backend := &fakeBackend{
			nodes: map[string]*model.NodeRecord{
				"A": model.NewNodeRecord("A", "alpha", tcp("1.2.3.4:9735")),
				"C": model.NewNodeRecord("C", "charlie", tcp("5.6.7.8:9735")),
			},
			nodeErrs: map[string]error{
				"B": fmt.Errorf("%w: getnodeinfo B: bad json", lightning.ErrParseOutput),
			},
		}
		step := NewInspectNodesStep(backend, WithInspectLogger(discardLogger()))
		report := newReport("A", "B", "C")

		if err := step.Do(t.Context(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if report.NodeCount() != 2 {
			t.Fatalf("expected 2 nodes, got %d", report.NodeCount())
		}
		if report.Nodes[0].PubKey != "A" || report.Nodes[1].PubKey != "C" {
			t.Errorf("unexpected node order: %s, %s", report.Nodes[0].PubKey, report.Nodes[1].PubKey)
		}
		if report.FailedCount != 1 {
			t.Errorf("expected 1 failed lookup, got %d", report.FailedCount)
		}
		if len(backend.lookups) != 3 {
			t.Errorf("expected 3 lookups, got %d", len(backend.lookups))
		}
	})

	t.Run("writes progress lines", func(t *testing.T) {
		t.Parallel()

		backend := &fakeBackend{}
		var progress bytes.Buffer
		step := NewInspectNodesStep(backend,
			WithProgressWriter(&progress),
			WithInspectLogger(discardLogger()),
		)

		if err := step.Do(t.Context(), newReport("A", "B")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := "\rChecking node 1/2...\rChecking node 2/2...\n"
		if progress.String() != want {
			t.Errorf("progress = %q, want %q", progress.String(), want)
		}
	})

	t.Run("no identities means no lookups", func(t *testing.T) {
		t.Parallel()

		backend := &fakeBackend{}
		var progress bytes.Buffer
		step := NewInspectNodesStep(backend, WithProgressWriter(&progress))

		if err := step.Do(t.Context(), newReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(backend.lookups) != 0 {
			t.Errorf("expected no lookups, got %v", backend.lookups)
		}
		if progress.Len() != 0 {
			t.Errorf("expected no progress output, got %q", progress.String())
		}
	})
}

func TestDefaultPipeline(t *testing.T) {
	t.Parallel()

	t.Run("has fetch, extract and inspect steps", func(t *testing.T) {
		t.Parallel()

		p := DefaultPipeline(&fakeBackend{})

		want := []string{"fetch_graph", "extract_identities", "inspect_nodes"}
		got := p.StepNames()
		if len(got) != len(want) {
			t.Fatalf("expected %d steps, got %v", len(want), got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("step %d: got %q, want %q", i, got[i], want[i])
			}
		}
	})

	t.Run("end to end classification", func(t *testing.T) {
		t.Parallel()

		backend := &fakeBackend{
			edges: []model.Edge{
				{Node1Pub: "A", Node2Pub: "B"},
				{Node1Pub: "B", Node2Pub: "C"},
			},
			nodes: map[string]*model.NodeRecord{
				"A": model.NewNodeRecord("A", "alpha", tcp("1.2.3.4:9735")),
				"B": model.NewNodeRecord("B", "bravo", tcp("x.onion:9735")),
			},
			nodeErrs: map[string]error{
				"C": lightning.ErrCommandFailed,
			},
		}

		p := DefaultPipeline(backend, WithPipelineLogger(discardLogger()))
		report := model.NewReachReport("testnet", backend.Name())

		if err := p.Execute(t.Context(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if report.UniqueNodes != 3 {
			t.Errorf("expected 3 unique nodes, got %d", report.UniqueNodes)
		}
		if report.NodeCount() != 1 || report.Nodes[0].PubKey != "A" {
			t.Fatalf("expected only node A, got %+v", report.Nodes)
		}
		if report.Nodes[0].Alias != "alpha" {
			t.Errorf("expected alias alpha, got %q", report.Nodes[0].Alias)
		}
		if report.FailedCount != 1 {
			t.Errorf("expected 1 failed lookup, got %d", report.FailedCount)
		}
		if len(report.PerformedSteps) != 3 {
			t.Errorf("expected 3 performed steps, got %v", report.PerformedSteps)
		}
	})

	t.Run("graph failure produces empty report", func(t *testing.T) {
		t.Parallel()

		backend := &fakeBackend{graphErr: errors.New("connection refused")}
		p := DefaultPipeline(backend, WithPipelineLogger(discardLogger()))
		report := model.NewReachReport("testnet", backend.Name())

		if err := p.Execute(t.Context(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.HasNodes() {
			t.Error("expected no nodes")
		}
		if len(backend.lookups) != 0 {
			t.Errorf("expected no lookups, got %v", backend.lookups)
		}
		if report.GraphError == "" {
			t.Error("expected graph error to be recorded")
		}
	})

	t.Run("malformed edge stops the pipeline", func(t *testing.T) {
		t.Parallel()

		backend := &fakeBackend{
			edges: []model.Edge{{Node1Pub: "A", Node2Pub: "B"}, {Node2Pub: "C"}},
		}
		p := DefaultPipeline(backend, WithPipelineLogger(discardLogger()))
		report := model.NewReachReport("testnet", backend.Name())

		err := p.Execute(t.Context(), report)
		if !errors.Is(err, model.ErrMalformedEdge) {
			t.Fatalf("expected ErrMalformedEdge, got %v", err)
		}
		if len(backend.lookups) != 0 {
			t.Errorf("expected no lookups, got %v", backend.lookups)
		}
	})
}
