// Package file provides TOML configuration loading for FabreXLens.
// Configuration is layered: built-in defaults, config.toml, an optional
// per-profile overlay, then environment variable overrides.
package file
