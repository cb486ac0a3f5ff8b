package main

import (
	"strings"
	"testing"
)

func TestRenderListingIncludesHeadersAndRows(t *testing.T) {
	out := renderListing(
		[]column{{"ID", true}, {"Path", false}},
		[][]string{{"7", "/media/clip.mkv"}},
	)
	for _, want := range []string{"ID", "Path", "7", "/media/clip.mkv"} {
		if !strings.Contains(out, want) {
			t.Fatalf("listing missing %q:\n%s", want, out)
		}
	}
}

func TestRenderSummaryPairsNamesWithValues(t *testing.T) {
	out := renderSummary("Catalog", [][2]string{{"Online entries", "3"}})
	for _, want := range []string{"Catalog", "Online entries", "3"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}
