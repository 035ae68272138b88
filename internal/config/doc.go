// Package config loads, normalizes, and validates redust configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// REDUST_QUALITY. The Config type centralizes every knob the CLI needs, so the
// workspace layout, CDN endpoints, and helper tool locations are discovered in
// one pass.
package config
