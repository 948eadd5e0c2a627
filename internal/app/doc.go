// Package app contains the core application logic. It turns a loaded
// configuration model into a computation graph of tasks and drives that graph
// through its update cycles, decoupled from any specific entrypoint like a
// CLI or server.
package app
