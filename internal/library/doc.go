// Package library is the orchestration layer behind the CLI: it owns
// the run lock and sequences scanning, planning, committing, and
// duplicate handling against one catalog.
package library
