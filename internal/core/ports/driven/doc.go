// Package driven defines the outbound ports: interfaces the core depends
// on and adapters implement (credential storage, remote service clients).
package driven
