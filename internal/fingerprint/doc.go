// Package fingerprint computes cheap, deterministic content identifiers for
// video files.
//
// Hashing whole multi-gigabyte files on every scan is not viable, so the
// Engine hashes a fixed-size prefix (default 1 MiB) together with the file
// length. Same bytes always yield the same identifier; two files sharing a
// fingerprint are duplicate candidates that must be confirmed with Verify
// before anything destructive happens to either.
package fingerprint
