package sng

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/beamertools/sngward/core/errors"
)

// Lines renders the document back into its line grammar, without the
// encoding marker: header fields in insertion order, then each block as
// "---", its label, and its slides separated by further "---" lines.
func (d *Document) Lines() []string {
	var lines []string

	for _, key := range d.Header.Keys() {
		if key == HeaderVerseOrder {
			lines = append(lines, "#"+key+"="+strings.Join(d.Header.VerseOrder(), ","))
			continue
		}
		lines = append(lines, "#"+key+"="+d.Header.Get(key))
	}

	for _, label := range d.blockLabels {
		block := d.blocks[label]
		lines = append(lines, "---", label)
		newBlock := true
		for _, slide := range block.Slides {
			if !newBlock {
				lines = append(lines, "---")
			}
			if len(slide) != 0 {
				lines = append(lines, slide...)
				newBlock = false
			}
		}
	}

	return lines
}

// Bytes serializes the document for its encoding, re-adding the UTF-8
// BOM on the UTF-8 path. The Latin-1 fallback path never writes a BOM.
func (d *Document) Bytes() ([]byte, error) {
	var sb strings.Builder
	for _, line := range d.Lines() {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return encodeText(sb.String(), d.Encoding)
}

// Write serializes the document to the given path.
func (d *Document) Write(path string) error {
	data, err := d.Bytes()
	if err != nil {
		return errors.NewIO("encode", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.NewIO("write", path, err)
	}
	return nil
}

// WriteBack serializes the document over its source file.
func (d *Document) WriteBack() error {
	return d.Write(filepath.Join(d.Path, d.Filename))
}

// ConvertToUTF8 switches the write encoding to UTF-8 with BOM. Files
// read through the Latin-1 fallback are normally converted on write.
func (d *Document) ConvertToUTF8() {
	d.Encoding = EncodingUTF8BOM
}
