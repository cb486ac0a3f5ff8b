// Package logging assembles the structured slog loggers used across
// reelsync.
//
// It owns the console and JSON handlers, level plumbing, standardized field
// keys, and the no-op logger tests and optional wiring rely on. Prefer these
// constructors over hand-rolled slog setup so every component emits records
// with the same shape.
package logging
