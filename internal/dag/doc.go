// Package dag is the storage layer of the graph engine. It keeps vertices and
// weighted edges of a directed acyclic graph and answers topology and path
// queries over it.
//
// # Why This Layer Is Raw
//
// The Graph performs no policy or validation checks; the mutation protocol in
// package appgraph owns those. The Graph only guarantees its own structure:
//
//   - **No cycles:** an edge that would close a cycle is rejected with ErrCycle.
//   - **No self-loops or duplicates:** rejected with ErrSelfLoop and ErrEdgeExists.
//   - **Fail fast:** any lookup on an absent vertex returns ErrVertexNotFound.
//
// Results are returned in vertex insertion order so callers see a stable view.
package dag
