package sng

import (
	"log/slog"
	"strings"
)

// mojibakeTable maps the byte sequences produced by reading UTF-8
// encoded German umlauts as ISO-8859-1 back to the intended character.
var mojibakeTable = []struct{ bad, good string }{
	{"Ã¤", "ä"},
	{"Ã¶", "ö"},
	{"Ã¼", "ü"},
	{"Ã", "Ä"},
	{"Ã", "Ö"},
	{"Ã", "Ü"},
	{"Ã", "ß"},
}

// hasMojibake reports whether text contains any known corruption
// sequence.
func hasMojibake(text string) bool {
	for _, e := range mojibakeTable {
		if strings.Contains(text, e.bad) {
			return true
		}
	}
	return false
}

// repairMojibake substitutes every known corruption sequence and
// reports whether anything changed.
func repairMojibake(text string) (string, bool) {
	repaired := text
	for _, e := range mojibakeTable {
		repaired = strings.ReplaceAll(repaired, e.bad, e.good)
	}
	return repaired, repaired != text
}

// ValidateSuspiciousEncoding scans header values and content lines for
// UTF-8-read-as-Latin-1 corruption. Check mode reports findings (the
// content scan stops at the first one, the header scan covers all
// fields); fix mode substitutes in place.
func (d *Document) ValidateSuspiciousEncoding(fix bool) bool {
	validHeader := d.validateSuspiciousEncodingHeader(fix)
	validContent := d.validateSuspiciousEncodingContent(fix)
	return validHeader && validContent
}

func (d *Document) validateSuspiciousEncodingHeader(fix bool) bool {
	valid := true
	for _, key := range d.Header.Keys() {
		value := d.Header.Get(key)
		if !hasMojibake(value) {
			continue
		}
		if !fix {
			slog.Info("found problematic encoding in header",
				"file", d.Filename, "key", key, "value", value)
			valid = false
			continue
		}
		repaired, changed := repairMojibake(value)
		if !changed {
			slog.Warn("header encoding could not be fixed",
				"file", d.Filename, "key", key, "value", value)
			valid = false
			continue
		}
		d.Header.Set(key, repaired)
		d.markModified()
		slog.Debug("repaired header encoding",
			"file", d.Filename, "key", key, "value", repaired)
	}
	return valid
}

func (d *Document) validateSuspiciousEncodingContent(fix bool) bool {
	valid := true
	for _, label := range d.blockLabels {
		b := d.blocks[label]
		for slideNo, slide := range b.Slides {
			for lineNo, line := range slide {
				if !hasMojibake(line) {
					continue
				}
				if !fix {
					slog.Info("found problematic encoding in content",
						"file", d.Filename, "block", label,
						"slide", slideNo, "line", lineNo)
					return false
				}
				repaired, changed := repairMojibake(line)
				if !changed {
					slog.Warn("content encoding could not be fixed",
						"file", d.Filename, "block", label, "text", line)
					valid = false
					continue
				}
				slide[lineNo] = repaired
				d.markModified()
			}
		}
	}
	return valid
}
