// Package appgraph is the mutation protocol of the graph engine. It is the only
// supported way to change the membership and connectivity of a Graph.
//
// # Why A Protocol Exists
//
// Every mutation runs in three stages:
//
//   - **Should:** a pure check of structural preconditions, then the graph's
//     policy and validation, then the acting vertex's policy, the other
//     vertex's policy, the acting vertex's validation and the other vertex's
//     validation. The first rejection wins.
//   - **Process:** the raw change on the underlying dag.Graph, with rollback of
//     any part already applied when a later step fails.
//   - **Callbacks:** every interested party (the graph and both endpoints) is
//     notified concurrently in one batch, after the change has committed and
//     the single-writer window has been released.
//
// Recoverable outcomes are returned as *failure.Failure values restricted to
// the kinds each operation can produce. Graph-scoped policies fall back to the
// graph's accept-unset default; vertex-scoped policies fall back to the
// vertex's own default.
package appgraph
