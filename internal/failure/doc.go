// Package failure defines the closed set of recoverable failure kinds shared by
// every graph mutation, and the typed domains that restrict which kinds a given
// operation may report.
//
// # Why Domains Exist
//
// Every mutation returns a *Failure[D], where D names the exact subset of kinds
// the operation can produce. A caller that switches over the kinds of D can
// handle every cause without a catch-all arm, and the constructor refuses (by
// panicking) to build a failure outside of its domain.
//
//   - **Recoverable** outcomes (policy rejection, missing vertex, duplicate edge,
//     cycle) are always returned as values.
//   - **Invariant** violations panic with *InvariantError.
//   - **Fatal** conditions (a failed callback batch after a committed mutation)
//     panic with *FatalError wrapping the cause.
package failure
