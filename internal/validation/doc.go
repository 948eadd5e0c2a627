// Package validation holds per-operation predicate registries. Every
// predicate registered for an operation must pass for the operation to be
// valid; when some fail, all of their messages are reported together.
package validation
