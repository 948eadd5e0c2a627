// Package config defines the format-agnostic model of a workload: the graph
// settings, the type hierarchy, the policies and validations governing the
// graph, and the computations scheduled over it.
//
// The Model is the single source of truth for the app package. Concrete
// loaders, such as the HCL one, live in separate packages.
package config
