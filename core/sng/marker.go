package sng

import (
	"regexp"
	"strings"
)

// Marker kinds produced by the heuristic generator.
const (
	KindVerse  = "Verse"
	KindChorus = "Chorus"
	KindBridge = "Bridge"
)

// Heuristic marker abbreviations: R/Refrain and C/Chorus open a chorus,
// V/Verse and S/Strophe a verse, B/Bridge a bridge; a bare leading
// number with no keyword counts as a verse number.
var (
	heuristicPattern = regexp.MustCompile(
		`(?i)^((?:R(?:efrain)?|C(?:horus)?|V(?:erse)?|S(?:trophe)?|B(?:ridge)?) ?)?(\d*)[:.]?`)
	versePrefixPattern  = regexp.MustCompile(`(?i)^(?:V(?:erse)?|S(?:trophe)?) ?`)
	chorusPrefixPattern = regexp.MustCompile(`(?i)^(?:R(?:efrain)?|C(?:horus)?) ?`)
	bridgePrefixPattern = regexp.MustCompile(`(?i)^B(?:ridge)? ?`)
)

// ClassifyMarkerLine is the strict recognizer used while parsing
// existing files. A line is a marker if it starts with the custom-label
// sentinel, or if its first whitespace-separated token is a vocabulary
// keyword and the line has at most two such tokens (keyword plus
// optional number/suffix). Returns nil when the line is no marker.
func (c *Config) ClassifyMarkerLine(line string) *Marker {
	if strings.HasPrefix(line, CustomPrefix) {
		return &Marker{Kind: CustomPrefix, Number: line[len(CustomPrefix):]}
	}

	tokens := strings.Split(line, " ")
	if len(tokens) > 2 {
		return nil
	}
	if !c.isVerseKeyword(tokens[0]) {
		return nil
	}
	m := &Marker{Kind: tokens[0]}
	if len(tokens) == 2 {
		m.Number = tokens[1]
	}
	return m
}

// GenerateMarker is the heuristic used when splitting an "Unknown"
// block. It recognizes abbreviated labels at the start of a lyric line
// ("R1:", "Strophe 2", "4.", a bare leading number) and returns the
// classified marker plus the line with the marker prefix stripped.
// When nothing matches the line is returned untouched with a nil marker.
//
// Tie-break: a keyword-prefixed number beats a bare-number reading, and
// a bare number with no keyword is treated as a verse number.
func GenerateMarker(line string) (*Marker, string) {
	m := heuristicPattern.FindStringSubmatch(line)
	prefix, number := m[1], m[2]
	if prefix == "" && number == "" {
		return nil, line
	}

	rest := strings.TrimLeft(line[len(m[0]):], " ")
	switch {
	case prefix == "" || versePrefixPattern.MatchString(prefix):
		return &Marker{Kind: KindVerse, Number: number}, rest
	case chorusPrefixPattern.MatchString(prefix):
		return &Marker{Kind: KindChorus, Number: number}, rest
	case bridgePrefixPattern.MatchString(prefix):
		return &Marker{Kind: KindBridge, Number: number}, rest
	default:
		return nil, line
	}
}

// isDigits reports whether s is a non-empty run of ASCII digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// isNumberToken reports whether every rune of s is a digit or a dot,
// the character class used for catalog numbers in file names.
func isNumberToken(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return true
}

// containsDigit reports whether s contains any digit or dot, the
// character class that is not allowed in regular song titles.
func containsDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789.")
}

// validVerseLabel reports whether a marker is a well-formed standard
// label: vocabulary keyword plus an optional purely numeric suffix.
func (c *Config) validVerseLabel(m Marker) bool {
	if !c.isVerseKeyword(m.Kind) {
		return false
	}
	if m.Number != "" && !isDigits(m.Number) {
		return false
	}
	return true
}
