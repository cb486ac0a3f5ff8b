package fingerprint

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

// DefaultPrefixBytes bounds the number of leading bytes hashed per file.
const DefaultPrefixBytes = 1 << 20

// ErrUnreadable marks fingerprint failures caused by the file itself:
// missing, locked, or permission-denied. Callers treat it as "fingerprint
// unavailable" for that file, never as a fatal condition.
var ErrUnreadable = errors.New("file unreadable")

// Engine computes bounded-prefix content fingerprints.
//
// The fingerprint covers the first PrefixBytes of the file plus its byte
// length, so every computation costs O(PrefixBytes) regardless of file size.
// Identical prefixes on different-length files still fingerprint apart;
// files differing only past the prefix do not, which is why fingerprint
// equality is a duplicate candidate signal, not proof.
type Engine struct {
	PrefixBytes int64
}

// New returns an Engine hashing the given number of leading bytes.
// Non-positive values fall back to DefaultPrefixBytes.
func New(prefixBytes int64) *Engine {
	if prefixBytes <= 0 {
		prefixBytes = DefaultPrefixBytes
	}
	return &Engine{PrefixBytes: prefixBytes}
}

// File returns the fingerprint for the file at path. The result is prefixed
// with the hashed byte bound (for example "p1048576:..."), so fingerprints
// produced under different prefix configurations never compare equal.
func (e *Engine) File(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %v", ErrUnreadable, path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("%w: stat %s: %v", ErrUnreadable, path, err)
	}

	h := sha256.New()
	_, _ = h.Write([]byte(strconv.FormatInt(info.Size(), 10)))
	_, _ = h.Write([]byte{0})
	if _, err := io.Copy(h, io.LimitReader(file, e.PrefixBytes)); err != nil {
		return "", fmt.Errorf("%w: read %s: %v", ErrUnreadable, path, err)
	}

	return "p" + strconv.FormatInt(e.PrefixBytes, 10) + ":" + hex.EncodeToString(h.Sum(nil)), nil
}

// Verify streams both files in full and reports whether their contents are
// byte-identical. This is the confirmation hook for destructive duplicate
// deletion; a shared prefix fingerprint alone is never trusted that far.
func Verify(ctx context.Context, pathA, pathB string) (bool, error) {
	sumA, err := fullSum(ctx, pathA)
	if err != nil {
		return false, err
	}
	sumB, err := fullSum(ctx, pathB)
	if err != nil {
		return false, err
	}
	return bytes.Equal(sumA, sumB), nil
}

func fullSum(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrUnreadable, path, err)
	}
	defer file.Close()

	h := sha256.New()
	if _, err := io.Copy(h, file); err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrUnreadable, path, err)
	}
	return h.Sum(nil), nil
}
