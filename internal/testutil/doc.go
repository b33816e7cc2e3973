// Package testutil provides test doubles and fixtures shared by the package
// tests: deterministic identifiers, in-memory collaborators, and an
// in-memory SQLite store with migrations applied.
package testutil
