// Package logging assembles structured slog loggers and attribute helpers used
// across vidup.
//
// Console output goes through tint and is coloured only when the destination
// is a terminal; the JSON format keeps short, stable keys for machine
// consumption. Every logger built by New stamps records with the invocation's
// run_id so lines from one command can be grepped together. A no-op logger is
// provided for tests and for wiring code that must not fail.
package logging
