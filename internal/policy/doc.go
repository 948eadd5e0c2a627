// Package policy implements three-valued authorization for graph mutations.
//
// A policy resolves to Accept, Reject or Unset. States are registered either
// for a specific element (object-keyed), for a declared element type
// (type-keyed) or for an ordered pair of either. Type-keyed states are matched
// through a Hierarchy using the most specific registered type.
//
// Registrations return a Handle. Releasing the handle removes exactly that
// association, so no registration depends on garbage collection to disappear.
package policy
