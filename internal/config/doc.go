// Package config loads, validates, and defaults the TOML configuration that
// wires the content generation engine to its external collaborators.
package config
