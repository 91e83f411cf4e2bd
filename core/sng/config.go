// Package sng implements parsing, validation, auto-repair, and
// serialization of SongBeamer SNG song files. A file is parsed into a
// Document (ordered header plus ordered lyric blocks), the validation
// rules run against the Document in any order, and the writer turns the
// Document back into the original line grammar.
package sng

import (
	"fmt"
	"time"

	"github.com/beamertools/sngward/core/songbook"
)

// Well-known header field names.
const (
	HeaderTitle           = "Title"
	HeaderAuthor          = "Author"
	HeaderMelody          = "Melody"
	HeaderCopyright       = "(c)"
	HeaderCCLI            = "CCLI"
	HeaderSongbook        = "Songbook"
	HeaderChurchSongID    = "ChurchSongID"
	HeaderVerseOrder      = "VerseOrder"
	HeaderVersion         = "Version"
	HeaderEditor          = "Editor"
	HeaderLangCount       = "LangCount"
	HeaderTranslation     = "Translation"
	HeaderBible           = "Bible"
	HeaderBackgroundImage = "BackgroundImage"
	HeaderID              = "id"
)

// Reserved labels in block and verse-order handling.
const (
	// UnknownLabel holds content that precedes any recognized marker.
	UnknownLabel = "Unknown"
	// StopLabel is the end-of-presentation sentinel in the verse order.
	StopLabel = "STOP"
	// CustomPrefix starts a free-text block label ("$$M=<text>").
	CustomPrefix = "$$M="
)

// Config carries the immutable rule configuration shared by all
// documents of one run. Use DefaultConfig as the starting point.
type Config struct {
	// RequiredHeaders must be present in every song.
	RequiredHeaders []string

	// IllegalHeaders are removed by the illegal-header fixer.
	IllegalHeaders []string

	// VerseMarkers is the fixed vocabulary of recognized section
	// keywords for the strict classifier.
	VerseMarkers []string

	// MaxSlideLines is the slide line count enforced by the reformatter.
	MaxSlideLines int

	// EditorStamp overwrites the Editor header whenever a fixer
	// modifies a document.
	EditorStamp string

	// PsalmBackground is the one background image accepted for psalms.
	PsalmBackground string

	// Songbook is the catalog policy (prefix tables, ID grammar,
	// psalm ranges).
	Songbook *songbook.Policy
}

// DefaultConfig returns the rule configuration used by the QS tooling.
func DefaultConfig() *Config {
	return &Config{
		RequiredHeaders: []string{
			HeaderTitle,
			HeaderAuthor,
			HeaderMelody,
			HeaderCopyright,
			HeaderCCLI,
			HeaderSongbook,
			HeaderChurchSongID,
			HeaderVerseOrder,
			HeaderVersion,
			HeaderEditor,
		},
		IllegalHeaders: []string{
			"TitleFormat",
			"FontSize",
			"Format",
		},
		VerseMarkers: []string{
			"Unbekannt",
			"Unbenannt",
			"Unknown",
			"Intro",
			"Vers",
			"Verse",
			"Strophe",
			"Pre - Bridge",
			"Bridge",
			"Misc",
			"Pre-Refrain",
			"Refrain",
			"Pre-Chorus",
			"Chorus",
			"Pre-Coda",
			"Zwischenspiel",
			"Instrumental",
			"Interlude",
			"Coda",
			"Ending",
			"Outro",
			"Teil",
			"Part",
			"Chor",
			"Solo",
		},
		MaxSlideLines:   4,
		EditorStamp:     fmt.Sprintf("sngward QS am %s", time.Now().Format("2006-01-02")),
		PsalmBackground: "Evangelisches Gesangbuch.jpg",
		Songbook:        songbook.DefaultPolicy(),
	}
}

// isVerseKeyword reports whether word is part of the marker vocabulary.
func (c *Config) isVerseKeyword(word string) bool {
	for _, marker := range c.VerseMarkers {
		if word == marker {
			return true
		}
	}
	return false
}
