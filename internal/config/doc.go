// Package config loads, normalizes, and validates vidup configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and applies VIDUP_* environment overrides on
// top. The Config type centralizes every knob the CLI needs: where the index
// lives, how frames are produced, and how results and logs are presented.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
