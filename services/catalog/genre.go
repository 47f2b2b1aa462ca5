package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const DefaultGenre = "Uncategorized"

// ParseGenres splits free-form genre text ("action, Drama ,sci-fi") into a
// normalized, de-duplicated list. The result is never empty.
func ParseGenres(text string) []string {
	return NormalizeGenres(strings.Split(text, ","))
}

func NormalizeGenres(genres []string) []string {
	var res []string
	seen := map[string]bool{}
	caser := cases.Title(language.English)
	for _, g := range genres {
		g = strings.Join(strings.Fields(g), " ")
		if g == "" {
			continue
		}
		g = caser.String(g)
		if seen[g] {
			continue
		}
		seen[g] = true
		res = append(res, g)
	}
	if len(res) == 0 {
		res = []string{DefaultGenre}
	}
	return res
}
