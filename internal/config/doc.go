// Package config loads, normalizes, and validates animmuf configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and validates every knob once at startup so
// downstream code never reinterprets configuration at runtime.
package config
