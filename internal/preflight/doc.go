// Package preflight provides readiness checks for the index and the external
// tools vidup depends on.
//
// The "vidup doctor" command runs RunAll and CheckSystemDeps and renders the
// results as a table. Other commands rely on the store's own errors.
package preflight
