// Package domain contains the core business entities for FabreXLens:
// credential identities, dashboard snapshots, the worker command/event
// vocabulary, and the error taxonomy shared across services and adapters.
//
// Domain types have no dependencies on adapters or external services.
package domain
