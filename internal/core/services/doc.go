// Package services implements the driving port interfaces.
// Services contain the core business logic: the credential gate, the
// snapshot builder, the polling scheduler, and the background worker
// that ties them together. They orchestrate calls to driven ports
// (adapters) and never touch transport or storage directly.
package services
