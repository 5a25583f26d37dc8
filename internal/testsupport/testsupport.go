// Package testsupport holds fixtures shared by package tests: temporary
// configurations, opened indexes, stub binaries and synthetic frame clips.
package testsupport
