// Package songbook defines the catalog policy for song collections:
// known songbook prefixes, the catalog-ID grammar, and the psalm
// numbering ranges that put a song under stricter validation rules.
package songbook

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Range is an inclusive numeric range of catalog numbers.
type Range struct {
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
}

// Contains reports whether n falls into the range.
func (r Range) Contains(n float64) bool {
	return r.Start <= n && n <= r.End
}

// Policy bundles all songbook-specific tables. A Policy is immutable
// after construction and shared between documents.
type Policy struct {
	// Prefixes are the short prefix tokens that must not appear inside
	// song titles (e.g. "EG", "FJ", "WWDLP").
	Prefixes []string

	// KnownPrefixes are the full prefixes that are expected to be
	// followed by a catalog number (e.g. "FJ5").
	KnownPrefixes []string

	// PsalmRanges maps a prefix to the catalog-number range reserved
	// for psalms (e.g. EG 701-758).
	PsalmRanges map[string]Range

	// FolderPrefixes maps a collection folder name to the songbook
	// prefix its files should carry. An empty value means no prefix.
	FolderPrefixes map[string]string

	idPattern      *regexp.Regexp
	prefixPatterns []*regexp.Regexp
}

// idGrammar accepts the three catalog numbering grammars:
// "Wwdlp 123", "FJ1/123" .. "FJ6/123", and "EG 123" with an optional
// sub-number ("EG 123.45") and an optional psalm annotation
// ("EG 709 - Psalm 22 1-3").
const idGrammar = `^(Wwdlp \d{3})$|(^FJ([1-6])\/\d{3})$|` +
	`^(EG \d{3}(\.\d{1,2})?)( - Psalm \d{1,3}( .{1,3})?)?$`

// DefaultPolicy returns the policy for the known song collections.
func DefaultPolicy() *Policy {
	p := &Policy{
		Prefixes: []string{"EG", "FJ", "WWDLP"},
		KnownPrefixes: []string{
			"EG", "FJ1", "FJ2", "FJ3", "FJ4", "FJ5", "FJ6", "Wwdlp", "test",
		},
		PsalmRanges: map[string]Range{
			"EG":    {Start: 701, End: 758},
			"WWDLP": {Start: 901, End: 921},
		},
		FolderPrefixes: map[string]string{
			"EG Lieder":                "EG",
			"EG Psalmen & Sonstiges":   "EG",
			"Feiert Jesus 1":           "FJ1",
			"Feiert Jesus 2":           "FJ2",
			"Feiert Jesus 3":           "FJ3",
			"Feiert Jesus 4":           "FJ4",
			"Feiert Jesus 5":           "FJ5",
			"Feiert Jesus 6":           "FJ6",
			"Sonstige Lieder":          "",
			"Sonstige Texte":           "",
			"Hintergrundmusik":         "",
			"Test":                     "",
			"Wwdlp (Wo wir dich loben, wachsen neue Lieder plus)": "Wwdlp",
		},
	}
	p.compile()
	return p
}

// NewPolicy builds a policy from explicit tables. Nil maps and slices
// fall back to empty tables, not to the defaults.
func NewPolicy(prefixes, knownPrefixes []string, psalmRanges map[string]Range, folderPrefixes map[string]string) *Policy {
	p := &Policy{
		Prefixes:       prefixes,
		KnownPrefixes:  knownPrefixes,
		PsalmRanges:    psalmRanges,
		FolderPrefixes: folderPrefixes,
	}
	p.compile()
	return p
}

func (p *Policy) compile() {
	p.idPattern = regexp.MustCompile(idGrammar)
	p.prefixPatterns = make([]*regexp.Regexp, 0, len(p.Prefixes))
	for _, prefix := range p.Prefixes {
		pattern := fmt.Sprintf(`(%[1]s\W+.*)|(.*\W+%[1]s)|(%[1]s\d+.*)|(.*\d+%[1]s)|(^%[1]s)|(%[1]s$)`,
			regexp.QuoteMeta(prefix))
		p.prefixPatterns = append(p.prefixPatterns, regexp.MustCompile(pattern))
	}
}

// ValidID reports whether s matches one of the catalog numbering grammars.
func (p *Policy) ValidID(s string) bool {
	return p.idPattern.MatchString(s)
}

// ContainsPrefix reports whether text contains any songbook prefix token.
// Matching is case-insensitive via upper-casing and anchored at the start,
// mirroring the catalog conventions (prefix at word edge or glued to digits).
func (p *Policy) ContainsPrefix(text string) bool {
	upper := strings.ToUpper(text)
	for _, pattern := range p.prefixPatterns {
		if loc := pattern.FindStringIndex(upper); loc != nil && loc[0] == 0 {
			return true
		}
	}
	return false
}

// IsKnownPrefix reports whether prefix is one of the full prefixes that
// are expected to be followed by a catalog number.
func (p *Policy) IsKnownPrefix(prefix string) bool {
	for _, known := range p.KnownPrefixes {
		if prefix == known {
			return true
		}
	}
	return false
}

// IsPsalm reports whether a file belongs to the psalm section of its
// songbook: the configured songbook prefix must contain a prefix with a
// psalm range, and the first space-separated token of the file name must
// be a number inside that range.
func (p *Policy) IsPsalm(songbookPrefix, filename string) bool {
	var psalmRange Range
	found := false
	for prefix, r := range p.PsalmRanges {
		if strings.Contains(songbookPrefix, prefix) {
			psalmRange = r
			found = true
			break
		}
	}
	if !found {
		return false
	}

	first, _, _ := strings.Cut(filename, " ")
	number, err := strconv.ParseFloat(first, 64)
	if err != nil {
		return false
	}
	return psalmRange.Contains(number)
}

// PrefixForFolder returns the songbook prefix configured for a
// collection folder name, or "" if the folder carries none.
func (p *Policy) PrefixForFolder(folder string) string {
	return p.FolderPrefixes[folder]
}
