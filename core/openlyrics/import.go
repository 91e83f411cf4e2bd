// Package openlyrics imports OpenLyrics XML songs into the SNG
// document model.
package openlyrics

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/beamertools/sngward/core/sng"
)

// Queries reused across imports are compiled once.
var (
	songQuery  = xpath.MustCompile("//song")
	verseQuery = xpath.MustCompile("//lyrics/verse")
)

// Import converts one OpenLyrics XML song into an SNG document named
// filename. Properties map onto the SNG header, each <verse> becomes a
// block, and each <lines> element becomes one slide with <br/> line
// breaks expanded.
func Import(data []byte, filename string, cfg *sng.Config) (*sng.Document, error) {
	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing OpenLyrics XML: %w", err)
	}
	if xmlquery.QuerySelector(root, songQuery) == nil {
		return nil, fmt.Errorf("no <song> element in %s", filename)
	}

	d := sng.NewDocument(filename, "", cfg)
	importProperties(root, d)
	if err := importLyrics(root, d); err != nil {
		return nil, err
	}

	if !d.Header.Has(sng.HeaderVerseOrder) {
		d.Header.SetVerseOrder(d.BlockLabels())
	}
	order := append(d.Header.VerseOrder(), sng.StopLabel)
	d.Header.SetVerseOrder(order)
	d.Header.Set(sng.HeaderEditor, d.Config().EditorStamp)
	return d, nil
}

func importProperties(root *xmlquery.Node, d *sng.Document) {
	if n := xmlquery.FindOne(root, "//properties/titles/title"); n != nil {
		d.Header.Set(sng.HeaderTitle, strings.TrimSpace(n.InnerText()))
	}

	var authors []string
	for _, n := range xmlquery.Find(root, "//properties/authors/author") {
		if name := strings.TrimSpace(n.InnerText()); name != "" {
			authors = append(authors, name)
		}
	}
	if len(authors) > 0 {
		d.Header.Set(sng.HeaderAuthor, strings.Join(authors, ", "))
	}

	if n := xmlquery.FindOne(root, "//properties/copyright"); n != nil {
		d.Header.Set(sng.HeaderCopyright, strings.TrimSpace(n.InnerText()))
	}
	if n := xmlquery.FindOne(root, "//properties/ccliNo"); n != nil {
		d.Header.Set(sng.HeaderCCLI, strings.TrimSpace(n.InnerText()))
	}

	if n := xmlquery.FindOne(root, "//properties/songbooks/songbook"); n != nil {
		name := n.SelectAttr("name")
		entry := n.SelectAttr("entry")
		if name != "" && entry != "" {
			id := name + " " + entry
			d.Header.Set(sng.HeaderSongbook, id)
			d.Header.Set(sng.HeaderChurchSongID, id)
		}
	}

	if n := xmlquery.FindOne(root, "//properties/verseOrder"); n != nil {
		var order []string
		for _, name := range strings.Fields(n.InnerText()) {
			order = append(order, blockLabel(name))
		}
		if len(order) > 0 {
			d.Header.SetVerseOrder(order)
		}
	}
}

func importLyrics(root *xmlquery.Node, d *sng.Document) error {
	verses := xmlquery.QuerySelectorAll(root, verseQuery)
	if len(verses) == 0 {
		return fmt.Errorf("no <verse> elements in %s", d.Filename)
	}

	for _, verse := range verses {
		label := blockLabel(verse.SelectAttr("name"))
		var slides []sng.Slide
		for _, lines := range xmlquery.Find(verse, "lines") {
			slides = append(slides, slideFromLines(lines))
		}
		d.SetBlock(label, &sng.Block{
			Marker: markerForLabel(label),
			Slides: slides,
		})
	}
	return nil
}

// slideFromLines flattens one <lines> element into lyric lines,
// treating <br/> as the line separator.
func slideFromLines(lines *xmlquery.Node) sng.Slide {
	var slide sng.Slide
	var current strings.Builder

	flush := func() {
		if text := strings.TrimSpace(current.String()); text != "" {
			slide = append(slide, text)
		}
		current.Reset()
	}

	for child := lines.FirstChild; child != nil; child = child.NextSibling {
		switch {
		case child.Type == xmlquery.ElementNode && child.Data == "br":
			flush()
		case child.Type == xmlquery.TextNode || child.Type == xmlquery.CharDataNode:
			current.WriteString(child.Data)
		default:
			current.WriteString(child.InnerText())
		}
	}
	flush()
	return slide
}

// blockLabel maps an OpenLyrics verse name ("v1", "c", "b2") onto the
// corresponding SNG block label. Unrecognized names become custom
// labels.
func blockLabel(name string) string {
	if name == "" {
		return sng.UnknownLabel
	}

	var kind string
	switch name[0] {
	case 'v':
		kind = "Verse"
	case 'c':
		kind = "Chorus"
	case 'b':
		kind = "Bridge"
	case 'p':
		kind = "Pre-Chorus"
	case 'i':
		kind = "Intro"
	case 'e':
		kind = "Ending"
	case 'o':
		kind = "Outro"
	default:
		return sng.CustomPrefix + name
	}

	if suffix := name[1:]; suffix != "" {
		return kind + " " + suffix
	}
	return kind
}

// markerForLabel rebuilds the marker for a label produced by
// blockLabel.
func markerForLabel(label string) sng.Marker {
	if rest, ok := strings.CutPrefix(label, sng.CustomPrefix); ok {
		return sng.Marker{Kind: sng.CustomPrefix, Number: rest}
	}
	kind, number, found := strings.Cut(label, " ")
	if !found {
		return sng.Marker{Kind: label}
	}
	return sng.Marker{Kind: kind, Number: number}
}
