package sng

import (
	"log/slog"
	"strconv"
	"strings"
)

// languageMarkerPrefix starts a language-tagged lyric line ("##1 ...").
const languageMarkerPrefix = "##"

// lineLanguageMarker returns the three-character language marker of a
// line ("##1"), or the empty string for an unmarked line.
func lineLanguageMarker(line string) string {
	if strings.HasPrefix(line, languageMarkerPrefix) && len(line) >= 3 {
		return line[:3]
	}
	return ""
}

// UniqueLanguageMarkers returns the set of language markers explicitly
// used across all content lines. The empty string stands for unmarked
// lines. The declared LangCount header is ignored.
func (d *Document) UniqueLanguageMarkers() map[string]bool {
	markers := make(map[string]bool)
	for _, label := range d.blockLabels {
		for _, slide := range d.blocks[label].Slides {
			for _, line := range slide {
				markers[lineLanguageMarker(line)] = true
			}
		}
	}
	return markers
}

// ValidateLanguageCount checks that the declared LangCount header
// matches the number of distinct languages used in content. Unmarked
// lines count as one language only when no explicit marker co-occurs
// with them. The fix overwrites the header with the observed count.
func (d *Document) ValidateLanguageCount(fix bool) bool {
	declared := -1
	if raw := d.Header.Get(HeaderLangCount); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			declared = n
		}
	}

	markers := d.UniqueLanguageMarkers()
	used := len(markers)
	if used > 1 && markers[""] {
		used--
	}

	valid := declared == used
	if !valid && fix {
		slog.Info("overwriting language count",
			"file", d.Filename, "from", declared, "to", used)
		d.Header.Set(HeaderLangCount, strconv.Itoa(used))
		d.markModified()
		valid = d.ValidateLanguageCount(false)
	}
	return valid
}

// ValidateLanguageMarkers checks that every content line of a
// multi-language song carries one of the expected markers. The fix
// assigns expected markers cyclically to the unmarked lines of each
// slide, preserving lines that already carry one. Psalms use the
// stricter non-fixable variant instead.
func (d *Document) ValidateLanguageMarkers(fix bool) bool {
	if d.IsPsalm() {
		return d.validatePsalmLanguageMarkers(fix)
	}

	expected, err := strconv.Atoi(d.Header.Get(HeaderLangCount))
	if err != nil {
		slog.Warn("missing or malformed LangCount, cannot check language markers",
			"file", d.Filename)
		return false
	}
	if expected < 1 {
		slog.Warn("LangCount below 1, cannot check language markers",
			"file", d.Filename, "count", expected)
		return false
	}

	if len(d.UniqueLanguageMarkers()) == 1 && expected == 1 {
		return true
	}

	cycle := make([]string, expected)
	for i := range cycle {
		cycle[i] = languageMarkerPrefix + strconv.Itoa(i+1) + " "
	}

	valid := true
	for _, label := range d.blockLabels {
		for _, slide := range d.blocks[label].Slides {
			valid = d.fixSlideLanguageMarkers(slide, cycle, fix) && valid
		}
	}
	return valid
}

// fixSlideLanguageMarkers assigns the expected markers cyclically to
// the unmarked lines of one slide. The cycle restarts per slide.
func (d *Document) fixSlideLanguageMarkers(slide Slide, cycle []string, fix bool) bool {
	next := 0
	for i, line := range slide {
		if strings.HasPrefix(line, languageMarkerPrefix) {
			continue
		}
		if !fix {
			return false
		}
		slide[i] = cycle[next%len(cycle)] + line
		next++
		d.markModified()
	}
	return true
}

// validatePsalmLanguageMarkers is the non-fixable psalm variant: every
// line must carry one of ##1, ##3 or ##4 (##2 is reserved for the
// second language of regular songs and never used in psalms).
func (d *Document) validatePsalmLanguageMarkers(fix bool) bool {
	for _, label := range d.blockLabels {
		for _, slide := range d.blocks[label].Slides {
			for _, line := range slide {
				switch lineLanguageMarker(line) {
				case "##1", "##3", "##4":
					continue
				}
				if fix {
					slog.Warn("cannot fix language marker of psalm line",
						"file", d.Filename, "line", line)
				}
				return false
			}
		}
	}
	return true
}

// FilterLanguages removes every content line whose language marker is
// not in keep. An empty string in keep retains unmarked lines. The
// block and slide structure is preserved, including emptied slides.
func (d *Document) FilterLanguages(keep []string) {
	keepSet := make(map[string]bool, len(keep))
	for _, marker := range keep {
		keepSet[marker] = true
	}
	for _, label := range d.blockLabels {
		b := d.blocks[label]
		for i, slide := range b.Slides {
			kept := slide[:0]
			for _, line := range slide {
				if keepSet[lineLanguageMarker(line)] {
					kept = append(kept, line)
				}
			}
			b.Slides[i] = kept
		}
	}
}
