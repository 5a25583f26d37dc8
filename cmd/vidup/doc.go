// Package main hosts the vidup CLI entrypoint and command graph.
//
// Each command resolves configuration, opens the fingerprint index under its
// exclusive lock, performs one operation and exits. There is no daemon: the
// index file lock is the only coordination between concurrent invocations.
//
// Keep this package lean: analysis lives in internal/analysis, queries in
// internal/duplicate, and storage in internal/index. Commands here only parse
// flags, wire those packages together and render results.
package main
