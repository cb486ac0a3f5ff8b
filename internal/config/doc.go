// Package config loads, validates, and normalizes reelsync configuration.
//
// Configuration is a single TOML file (default ~/.config/reelsync/config.toml,
// falling back to ./reelsync.toml). Load applies defaults first, then the
// file, then normalization (path expansion, suffix cleanup) and validation.
// Watched roots are not configured here; they live in the catalog database
// and are managed with `reelsync roots`.
package config
