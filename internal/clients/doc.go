// Package clients contains the typed REST clients for each remote service
// family, built on the shared httpx transport.
package clients
