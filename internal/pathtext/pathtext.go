package pathtext

import (
	"math"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// tokenSplitPattern matches separator sequences for path tokenization.
var tokenSplitPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Normalize returns the NFC form of a path. macOS and some NAS exports spell
// the same name in NFD; catalog paths are always compared in NFC.
func Normalize(path string) string {
	if norm.NFC.IsNormalString(path) {
		return path
	}
	return norm.NFC.String(path)
}

// Vector is a term-frequency vector over path tokens.
type Vector struct {
	tokens map[string]float64
	norm   float64
}

// NewVector builds a token vector from a path. Returns nil when the path
// yields no tokens.
func NewVector(path string) *Vector {
	tokens := Tokenize(path)
	if len(tokens) == 0 {
		return nil
	}
	counts := make(map[string]float64, len(tokens))
	for _, token := range tokens {
		counts[token]++
	}
	var sum float64
	for _, count := range counts {
		sum += count * count
	}
	return &Vector{tokens: counts, norm: math.Sqrt(sum)}
}

// Tokenize splits a path into lowercase tokens. Unlike prose tokenization
// there is no minimum token length; single-letter directory names still
// carry signal when breaking relocation ties.
func Tokenize(path string) []string {
	lowered := strings.ToLower(Normalize(path))
	raw := tokenSplitPattern.Split(lowered, -1)
	tokens := make([]string, 0, len(raw))
	for _, token := range raw {
		if token == "" {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}

// Similarity computes the cosine similarity between two paths' token
// vectors. Returns 0 when either path produces no tokens.
func Similarity(a, b string) float64 {
	return CosineSimilarity(NewVector(a), NewVector(b))
}

// CosineSimilarity computes the cosine similarity between two vectors.
// Returns 0 if either vector is nil or has zero norm.
func CosineSimilarity(a, b *Vector) float64 {
	if a == nil || b == nil || a.norm == 0 || b.norm == 0 {
		return 0
	}
	var dot float64
	for token, count := range a.tokens {
		if other, ok := b.tokens[token]; ok {
			dot += count * other
		}
	}
	if dot == 0 {
		return 0
	}
	return dot / (a.norm * b.norm)
}
