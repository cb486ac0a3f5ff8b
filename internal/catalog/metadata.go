package catalog

import (
	"path/filepath"
	"strings"
)

// ParseStars maps a leading run of '!' in a filename to a star rating.
// One mark is two stars, each further mark adds one, capped at five.
// Filenames without marks rate zero.
func ParseStars(filename string) int {
	count := 0
	for _, r := range filename {
		if r != '!' {
			break
		}
		count++
	}
	switch {
	case count == 0:
		return 0
	case count >= 4:
		return 5
	default:
		return count + 1
	}
}

// ParseTitle derives a display title from a filename: rating marks and the
// extension are stripped.
func ParseTitle(filename string) string {
	title := strings.TrimLeft(filename, "!")
	title = strings.TrimSuffix(title, filepath.Ext(title))
	return strings.TrimSpace(title)
}
