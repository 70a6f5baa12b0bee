// Package pipeline runs the inventory of a Lightning channel graph as a
// sequence of steps.
//
// Each stage is a Step that receives the shared *model.ReachReport and
// fills in its part: FetchGraphStep stores the edges, ExtractIdentitiesStep
// reduces them to unique public keys, and InspectNodesStep looks up every
// key and keeps the nodes that advertise a clearnet address.
//
// Steps run sequentially in a single goroutine. Recoverable failures (a
// failed graph fetch or node lookup) are logged and recorded in the report;
// only schema violations stop the pipeline.
package pipeline
