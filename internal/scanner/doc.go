// Package scanner walks watched roots and produces the ephemeral file
// records the reconciler diffs against the catalog.
package scanner
