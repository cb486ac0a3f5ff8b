// Package pathtext provides Unicode-safe path normalization and token-based
// path similarity scoring.
//
// The reconciliation planner uses Similarity to break ties when several
// missing catalog entries could claim the same relocated file: the pairing
// whose old and new paths share the most tokens wins. Scores are cosine
// similarities over term-frequency vectors, in [0, 1].
package pathtext
