// Package computation schedules updates over a DAG of computations.
//
// # Why Computation Exists
//
// An Updater owns a graph whose vertices are Computations, one per updated
// object. Running a cycle starts every root; each computation, once finished,
// tells its children, and a child runs as soon as every one of its
// predecessors has reported in for the current cycle.
//
//   - **Gated:** a computation never runs before all of its parents finished.
//   - **Bounded:** a per-computation semaphore limits concurrent executions of
//     the same node.
//   - **Governed:** structural edits go through the appgraph mutation
//     protocol, so policies and validations apply to the computation graph
//     as to any other.
package computation
