package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/lnreach/internal/model"
	"github.com/nao1215/lnreach/internal/reach"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs reports in GitHub-flavored Markdown, built with
// nao1215/markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.ReachReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeNodes(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.ReachReport) {
	md.H1("lnreach Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Network", "`" + report.Network + "`"},
			{"Backend", "`" + report.Backend + "`"},
			{"Scan Date", report.DateScanned.Format("2006-01-02 15:04:05 MST")},
			{"Status", w.getStatusText(report)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.ReachReport) string {
	if report.GraphError != "" {
		return "❌ Graph fetch failed - " + report.GraphError
	}
	if report.FailedCount > 0 {
		return "⚠️ Complete (" + strconv.Itoa(report.FailedCount) + " lookups failed)"
	}
	return "✅ Complete"
}

// writeSummary writes the counts table, the distribution chart and an alert.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.ReachReport) {
	md.H2("Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Channels", strconv.Itoa(report.EdgeCount)},
			{"Unique nodes", strconv.Itoa(report.UniqueNodes)},
			{"Inspected", strconv.Itoa(report.InspectedCount)},
			{"Failed lookups", strconv.Itoa(report.FailedCount)},
			{"**Non-Tor nodes**", "**" + strconv.Itoa(report.NodeCount()) + "**"},
		},
	})
	md.PlainText("")

	if report.UniqueNodes > 0 {
		w.writePieChart(md, report)
	}

	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart of the lookup outcomes.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.ReachReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Node Reachability"),
		piechart.WithShowData(true),
	)

	torOnly := report.InspectedCount - report.NodeCount()
	if report.NodeCount() > 0 {
		chart.LabelAndIntValue("Clearnet", uint64(report.NodeCount()))
	}
	if torOnly > 0 {
		chart.LabelAndIntValue("Tor only or unadvertised", uint64(torOnly))
	}
	if report.FailedCount > 0 {
		chart.LabelAndIntValue("Lookup failed", uint64(report.FailedCount))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert describing the overall outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.ReachReport) {
	switch {
	case report.GraphError != "":
		md.Cautionf("The network graph could not be fetched: %s", report.GraphError)
	case report.FailedCount > 0:
		md.Warningf("%d node lookup(s) failed and were skipped.", report.FailedCount)
	case report.HasNodes():
		md.Note(strconv.Itoa(report.NodeCount()) + " node(s) advertise a clearnet address.")
	default:
		md.Tip(NoNodesMessage)
	}
	md.PlainText("")
}

// writeNodes writes one section per reachable node.
func (w *MarkdownWriter) writeNodes(md *markdown.Markdown, report *model.ReachReport) {
	md.H2("Non-Tor Nodes")
	md.PlainText("")

	if !report.HasNodes() {
		md.PlainText(NoNodesMessage)
		md.PlainText("")
		return
	}

	for i, node := range report.Nodes {
		md.PlainText("### " + strconv.Itoa(i+1) + ". " + escapeAlias(node.Alias))
		md.PlainText("")
		md.PlainText("Pubkey: `" + node.PubKey + "`")
		md.PlainText("")
		w.writeAddressTable(md, node)
	}
}

// writeAddressTable lists every advertised address and marks the clearnet ones.
func (w *MarkdownWriter) writeAddressTable(md *markdown.Markdown, node *model.NodeRecord) {
	rows := make([][]string, len(node.Addresses))
	for i, addr := range node.Addresses {
		clearnet := "no"
		if reach.IsClearnetAddress(addr.Addr) {
			clearnet = "yes"
		}
		network := addr.Network
		if network == "" {
			network = "-"
		}
		rows[i] = []string{"`" + addr.Addr + "`", network, clearnet}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Address", "Network", "Clearnet"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [lnreach](https://github.com/nao1215/lnreach)*")
}

// escapeAlias keeps node-chosen aliases from breaking Markdown structure.
func escapeAlias(alias string) string {
	r := strings.NewReplacer("|", "\\|", "`", "\\`", "*", "\\*", "_", "\\_", "\n", " ")
	return r.Replace(alias)
}
