package sng

import (
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/beamertools/sngward/core/bibleref"
)

// ValidateHeaders checks that all required headers are present, plus the
// conditionally required ones: Bible for psalms and Translation for
// multi-language songs. There is no auto-fix; the caller must supply the
// missing data. Returns the list of missing field names.
func (d *Document) ValidateHeaders() (bool, []string) {
	var missing []string
	for _, key := range d.cfg.RequiredHeaders {
		if !d.Header.Has(key) {
			missing = append(missing, key)
		}
	}

	if d.IsPsalm() && !d.Header.Has(HeaderBible) {
		missing = append(missing, HeaderBible)
	}

	if raw := d.Header.Get(HeaderLangCount); raw != "" {
		if count, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && count > 1 {
			if !d.Header.Has(HeaderTranslation) {
				missing = append(missing, HeaderTranslation)
			}
		}
	}

	if len(missing) > 0 {
		slog.Warn("missing required headers", "file", d.Filename, "missing", missing)
		return false, missing
	}
	return true, nil
}

// ValidateTitle checks the Title header: it must exist, and for songs
// that follow a catalog prefix it must not contain digits or a songbook
// prefix token. Psalms and prefix-less songs are exempt from the digit
// rule (psalm titles carry their number). The fix derives a title from
// the file name with number and prefix tokens stripped.
func (d *Document) ValidateTitle(fix bool) bool {
	title := d.Header.Get(HeaderTitle)

	problem := ""
	switch {
	case title == "":
		problem = "song without a title in header"
	case d.SongbookPrefix == "" || d.IsPsalm():
		// Songs without a catalog prefix may legitimately carry numbers,
		// e.g. "Psalm 21" outside the EG psalm section.
		return true
	}

	if problem == "" {
		if containsDigit(title) {
			problem = "number in title " + strconv.Quote(title)
		}
		if d.cfg.Songbook.ContainsPrefix(title) {
			problem = "songbook prefix in title " + strconv.Quote(title)
		}
	}

	if problem == "" {
		return true
	}
	if fix {
		return d.fixTitle()
	}
	slog.Warn("invalid title", "file", d.Filename, "detail", problem)
	return false
}

// fixTitle rebuilds the title from the file name, dropping number and
// songbook-prefix tokens. Psalm file names cannot be fixed this way
// because the psalm heading is part of the title.
func (d *Document) fixTitle() bool {
	stem := strings.TrimSuffix(d.Filename, filepath.Ext(d.Filename))
	parts := strings.Split(stem, " ")

	if slices.Contains(parts, "Psalm") {
		slog.Warn("cannot fix title of psalm without complete heading", "file", d.Filename)
		return d.ValidateTitle(false)
	}

	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if isNumberToken(part) || d.cfg.Songbook.ContainsPrefix(part) {
			d.markModified()
			continue
		}
		kept = append(kept, part)
	}
	d.Header.Set(HeaderTitle, strings.Join(kept, " "))
	slog.Debug("fixed title from filename", "file", d.Filename, "title", d.Header.Get(HeaderTitle))
	return d.ValidateTitle(false)
}

// ValidateSongbook checks the paired Songbook and ChurchSongID headers:
// both present, equal, containing the configured catalog prefix, and
// matching one of the catalog numbering grammars. The fix normalizes a
// miscapitalized ChurchSongID key and derives the catalog number from
// the file name; psalms are never auto-fixed (their annotation is
// ambiguous) and keep placeholder values.
func (d *Document) ValidateSongbook(fix bool) bool {
	valid := false
	if d.Header.Has(HeaderChurchSongID) && d.Header.Has(HeaderSongbook) {
		// A ChurchSongID of " " or "" is dropped by the presentation
		// program itself on edit, so presence alone is not enough.
		songbook := d.Header.Get(HeaderSongbook)
		valid = d.Header.Get(HeaderChurchSongID) == songbook
		valid = valid && strings.Contains(songbook, d.SongbookPrefix)
		valid = valid && d.cfg.Songbook.ValidID(songbook)
	}
	slog.Debug("songbook validation", "file", d.Filename, "valid", valid)

	if fix && !valid {
		d.FixChurchSongIDCaps()
		d.fixSongbookFromFilename()
		valid = d.ValidateSongbook(false)
	}

	if !valid {
		slog.Error("songbook not fixed, kept original",
			"file", d.Filename,
			"songbook", d.Header.Get(HeaderSongbook),
			"church_song_id", d.Header.Get(HeaderChurchSongID))
		return false
	}
	return true
}

// fixSongbookFromFilename derives Songbook and ChurchSongID from the
// first space-separated token of the file name. Files that do not start
// with a catalog number get the blank placeholder instead.
func (d *Document) fixSongbookFromFilename() bool {
	first, _, _ := strings.Cut(d.Filename, " ")

	if isNumberToken(first) {
		return d.fixSongbookNumber(first)
	}

	if d.SongbookPrefix != "" {
		if d.cfg.Songbook.IsKnownPrefix(d.SongbookPrefix) {
			slog.Warn("missing catalog digits in filename, cannot fix songbook", "file", d.Filename)
		} else {
			slog.Warn("unknown songbook prefix, cannot fix songbook", "file", d.Filename)
		}
	}

	if d.Header.Get(HeaderSongbook) == " " && d.Header.Get(HeaderChurchSongID) == " " &&
		d.Header.Has(HeaderSongbook) && d.Header.Has(HeaderChurchSongID) {
		return false
	}
	before := d.Header.Get(HeaderSongbook)
	d.Header.Set(HeaderSongbook, " ")
	d.Header.Set(HeaderChurchSongID, " ")
	slog.Debug("corrected songbook to placeholder", "file", d.Filename, "before", before)
	d.markModified()
	return true
}

// fixSongbookNumber writes the catalog ID derived from the file name's
// leading number. Psalm IDs carry a free-form annotation that cannot be
// derived, so psalms keep placeholders and report as unfixable.
func (d *Document) fixSongbookNumber(number string) bool {
	if d.IsPsalm() {
		if !d.Header.Has(HeaderSongbook) {
			d.Header.Set(HeaderSongbook, " ")
		}
		if !d.Header.Has(HeaderChurchSongID) {
			d.Header.Set(HeaderChurchSongID, " ")
		}
		slog.Info("psalm songbook cannot be auto-corrected, adjust manually",
			"file", d.Filename,
			"songbook", d.Header.Get(HeaderSongbook),
			"church_song_id", d.Header.Get(HeaderChurchSongID))
		return false
	}

	var songbook string
	if strings.Contains(d.SongbookPrefix, "FJ") {
		songbook = d.SongbookPrefix + "/" + number
	} else {
		songbook = d.SongbookPrefix + " " + number
	}

	if d.Header.Get(HeaderSongbook) == songbook && d.Header.Get(HeaderChurchSongID) == songbook {
		return false
	}
	before := d.Header.Get(HeaderSongbook)
	d.Header.Set(HeaderSongbook, songbook)
	d.Header.Set(HeaderChurchSongID, songbook)
	slog.Debug("corrected songbook from filename", "file", d.Filename, "before", before, "after", songbook)
	d.markModified()
	return true
}

// FixChurchSongIDCaps renames a header key that differs from
// ChurchSongID only in letter case to the canonical name.
func (d *Document) FixChurchSongIDCaps() bool {
	return d.fixHeaderKeyCaps(HeaderChurchSongID)
}

// FixCCLICaps renames a header key that differs from CCLI only in
// letter case to the canonical name.
func (d *Document) FixCCLICaps() bool {
	return d.fixHeaderKeyCaps(HeaderCCLI)
}

func (d *Document) fixHeaderKeyCaps(canonical string) bool {
	if d.Header.Has(canonical) {
		return false
	}
	for _, key := range d.Header.Keys() {
		if strings.EqualFold(key, canonical) {
			d.Header.Set(canonical, d.Header.Get(key))
			d.Header.Delete(key)
			slog.Debug("renamed header key", "file", d.Filename, "from", key, "to", canonical)
			d.markModified()
			return true
		}
	}
	return false
}

// ValidateIllegalHeaders checks that no deny-listed header is present.
// Check mode fails on the first one found; fix mode removes them all.
func (d *Document) ValidateIllegalHeaders(fix bool) bool {
	for _, key := range d.Header.Keys() {
		if !slices.Contains(d.cfg.IllegalHeaders, key) {
			continue
		}
		if !fix {
			slog.Debug("illegal header not fixed", "file", d.Filename, "key", key)
			return false
		}
		d.Header.Delete(key)
		d.markModified()
		slog.Debug("removed illegal header", "file", d.Filename, "key", key)
	}
	return true
}

// ValidateBackground checks that a background image is set, and that
// psalms use the one reference image for a common visual appearance.
// Only the psalm case has a fix.
func (d *Document) ValidateBackground(fix bool) bool {
	problem := ""
	if !d.Header.Has(HeaderBackgroundImage) {
		problem = "no background image"
	} else if d.IsPsalm() && d.Header.Get(HeaderBackgroundImage) != d.cfg.PsalmBackground {
		problem = "incorrect psalm background"
	}

	if problem == "" {
		return true
	}
	if fix {
		return d.fixBackground()
	}
	slog.Debug("invalid background", "file", d.Filename, "detail", problem)
	return false
}

func (d *Document) fixBackground() bool {
	if d.IsPsalm() {
		d.Header.Set(HeaderBackgroundImage, d.cfg.PsalmBackground)
		slog.Debug("fixed psalm background", "file", d.Filename)
		d.markModified()
		return true
	}
	slog.Warn("cannot fix background", "file", d.Filename)
	return false
}

// ValidateBibleReference checks the syntax of the Bible header when
// present. Malformed references are reported, never repaired. Songs
// without the header pass; its presence is covered by ValidateHeaders.
func (d *Document) ValidateBibleReference() bool {
	raw := d.Header.Get(HeaderBible)
	if raw == "" {
		return true
	}
	if _, err := bibleref.Parse(raw); err != nil {
		slog.Warn("malformed Bible reference", "file", d.Filename, "reference", raw, "error", err)
		return false
	}
	return true
}
