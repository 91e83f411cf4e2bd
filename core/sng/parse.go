package sng

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/beamertools/sngward/core/errors"
)

// ParseFile opens and parses one SNG file. The songbook prefix controls
// catalog and psalm classification for the resulting document.
//
// Encoding is resolved per DecodeBytes; a fatal parse error (lyric text
// before the first slide separator) yields no document at all.
func ParseFile(path, songbookPrefix string, cfg *Config) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}

	text, enc := DecodeBytes(data)
	switch enc {
	case EncodingUTF8BOM:
		slog.Debug("detected utf-8 because of BOM", "path", path)
	case EncodingUTF8NoBOM:
		slog.Info("read as utf-8 but no BOM", "path", path)
	case EncodingLatin1:
		slog.Info("read as iso-8859-1, encoding changes on write", "path", path)
	}

	d := NewDocument(filepath.Base(path), songbookPrefix, cfg)
	d.Path = filepath.Dir(path)
	d.Encoding = enc
	if err := d.parseText(text); err != nil {
		return nil, err
	}
	return d, nil
}

// ParseText parses already-decoded SNG text as if it were the content
// of the named file. Used by importers and tests.
func ParseText(filename, songbookPrefix, text string, cfg *Config) (*Document, error) {
	d := NewDocument(filename, songbookPrefix, cfg)
	if err := d.parseText(text); err != nil {
		return nil, err
	}
	return d, nil
}

// parseText splits raw text into header fields and slide groups, then
// assembles the groups into labeled blocks.
func (d *Document) parseText(text string) error {
	var groups [][]string
	slideOpen := false

	for lineNo, raw := range strings.Split(text, "\n") {
		line := strings.TrimLeft(strings.TrimRight(raw, "\r"), " \t")
		if line == "" {
			continue
		}
		switch {
		case line[0] == '#' && !strings.HasPrefix(line, "##"):
			d.parseHeaderLine(line)
		case line == "---":
			groups = append(groups, nil)
			slideOpen = true
		default:
			if !slideOpen {
				return errors.NewParse(filepath.Join(d.Path, d.Filename), lineNo+1,
					"lyric line before first slide separator")
			}
			groups[len(groups)-1] = append(groups[len(groups)-1], line)
		}
	}

	d.assembleBlocks(groups)
	return nil
}

// parseHeaderLine stores one "#Key=Value" line. Lines without "=" are
// ignored; the VerseOrder value is split into its list form; all other
// values are stored verbatim, embedded "=" included.
func (d *Document) parseHeaderLine(line string) {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return
	}
	d.Header.Set(key[1:], value)
}

// assembleBlocks groups raw slide-groups into labeled blocks: a group
// whose first line classifies as a marker starts a new block, a group
// before any marker opens the "Unknown" bucket, and every other group
// becomes the next slide of the currently open block. Empty groups
// (trailing separators) are dropped and flag the document as modified.
func (d *Document) assembleBlocks(groups [][]string) {
	current := ""
	for _, group := range groups {
		if len(group) == 0 {
			d.markModified()
			continue
		}
		if m := d.cfg.ClassifyMarkerLine(group[0]); m != nil {
			current = group[0]
			b := &Block{Marker: *m, Slides: []Slide{Slide(group[1:])}}
			d.SetBlock(current, b)
			continue
		}
		if current == "" {
			d.markModified()
			current = UnknownLabel
			b := &Block{Marker: Marker{Kind: UnknownLabel}, Slides: []Slide{Slide(group)}}
			d.SetBlock(UnknownLabel, b)
			continue
		}
		b, _ := d.Block(current)
		b.Slides = append(b.Slides, Slide(group))
	}
}
