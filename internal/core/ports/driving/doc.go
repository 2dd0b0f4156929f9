// Package driving defines the inbound ports: interfaces the foreground
// (CLI, TUI) uses to drive the core.
package driving
