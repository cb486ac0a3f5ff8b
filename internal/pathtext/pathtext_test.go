package pathtext_test

import (
	"math"
	"reflect"
	"testing"

	"golang.org/x/text/unicode/norm"

	"reelsync/internal/pathtext"
)

func TestTokenize(t *testing.T) {
	cases := []struct {
		name string
		path string
		want []string
	}{
		{"movie path", "/media/Movies/Heat (1995).mkv", []string{"media", "movies", "heat", "1995", "mkv"}},
		{"single letter dirs kept", "/a/b/c.mp4", []string{"a", "b", "c", "mp4"}},
		{"separators collapse", "some---weird___name.mkv", []string{"some", "weird", "name", "mkv"}},
		{"empty", "", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := pathtext.Tokenize(tc.path)
			if len(got) == 0 && len(tc.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Tokenize(%q) = %v, want %v", tc.path, got, tc.want)
			}
		})
	}
}

func TestNormalizeNFC(t *testing.T) {
	decomposed := norm.NFD.String("/media/Amélie.mkv")
	composed := pathtext.Normalize(decomposed)
	if composed != "/media/Amélie.mkv" {
		t.Fatalf("expected NFC form, got %q", composed)
	}
	if pathtext.Normalize(composed) != composed {
		t.Fatal("normalizing an NFC path must be a no-op")
	}
}

func TestSimilarityOrdering(t *testing.T) {
	original := "/nas/movies/Heat (1995).mkv"
	renamed := "/nas/archive/Heat (1995).mkv"
	unrelated := "/nas/shows/Cooking Hour S01E01.mp4"

	identical := pathtext.Similarity(original, original)
	if math.Abs(identical-1) > 1e-9 {
		t.Fatalf("identical paths should score 1, got %f", identical)
	}

	near := pathtext.Similarity(original, renamed)
	far := pathtext.Similarity(original, unrelated)
	if near <= far {
		t.Fatalf("expected renamed path to outscore unrelated path: %f vs %f", near, far)
	}
}

func TestSimilarityEmptyPaths(t *testing.T) {
	if got := pathtext.Similarity("", "/media/a.mkv"); got != 0 {
		t.Fatalf("empty path should score 0, got %f", got)
	}
	if pathtext.NewVector("///") != nil {
		t.Fatal("separator-only path should yield a nil vector")
	}
}
