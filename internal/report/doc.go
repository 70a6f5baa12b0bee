// Package report renders a model.ReachReport.
//
// This package contains writers for different output formats:
//   - SimpleWriter: plain text for terminal display
//   - JSONWriter and FullJSONWriter: structured JSON for tool integration
//   - MarkdownWriter: GitHub-flavored Markdown for sharing
//
// Writers implement the Writer interface, so they can be used
// interchangeably and composed with MultiWriter. They never validate the
// report; classification has already happened in the pipeline.
package report
