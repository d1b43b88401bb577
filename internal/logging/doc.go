// Package logging builds the slog loggers used across the curator pipeline.
//
// Loggers are constructed from configuration: console (text) or JSON format,
// a minimum level, and an optional log file alongside stdout. Helper attribute
// constructors keep call sites terse and consistent.
package logging
