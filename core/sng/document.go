package sng

import (
	"strconv"
	"strings"
)

// Slide is one screen's worth of lyric lines.
type Slide []string

// Marker is the classified label opening a block: a recognized keyword
// with an optional number/suffix, or a custom "$$M=" label whose text is
// carried in Number.
type Marker struct {
	Kind   string
	Number string
}

// IsCustom reports whether the marker is a free-text "$$M=" label.
func (m Marker) IsCustom() bool {
	return m.Kind == CustomPrefix
}

// Label returns the canonical block label for the marker.
func (m Marker) Label() string {
	if m.IsCustom() {
		return CustomPrefix + m.Number
	}
	if m.Number == "" {
		return m.Kind
	}
	return m.Kind + " " + m.Number
}

// Block is one named lyric section: its marker plus an ordered list of
// slides. A block without slides is a valid empty section.
type Block struct {
	Marker Marker
	Slides []Slide
}

// lineCount returns the total number of text lines across all slides.
func (b *Block) lineCount() int {
	n := 0
	for _, slide := range b.Slides {
		n += len(slide)
	}
	return n
}

// Header is an ordered mapping from field name to value. The VerseOrder
// field is special-cased as a string list; its position among the other
// keys is preserved for serialization.
type Header struct {
	keys       []string
	values     map[string]string
	verseOrder []string
}

// NewHeader returns an empty header.
func NewHeader() *Header {
	return &Header{values: make(map[string]string)}
}

// Has reports whether the field is present.
func (h *Header) Has(key string) bool {
	if key == HeaderVerseOrder {
		return h.hasKey(key)
	}
	_, ok := h.values[key]
	return ok
}

func (h *Header) hasKey(key string) bool {
	for _, k := range h.keys {
		if k == key {
			return true
		}
	}
	return false
}

// Get returns the value of a plain string field. For VerseOrder it
// returns the comma-joined list form.
func (h *Header) Get(key string) string {
	if key == HeaderVerseOrder {
		return strings.Join(h.verseOrder, ",")
	}
	return h.values[key]
}

// Set stores a plain string value, appending the key to the order if it
// is new. Setting VerseOrder through Set splits the value on commas.
func (h *Header) Set(key, value string) {
	if key == HeaderVerseOrder {
		h.SetVerseOrder(strings.Split(value, ","))
		return
	}
	if _, ok := h.values[key]; !ok {
		h.keys = append(h.keys, key)
	}
	h.values[key] = value
}

// Delete removes a field, preserving the order of the remaining keys.
func (h *Header) Delete(key string) {
	if !h.hasKey(key) {
		return
	}
	kept := h.keys[:0]
	for _, k := range h.keys {
		if k != key {
			kept = append(kept, k)
		}
	}
	h.keys = kept
	if key == HeaderVerseOrder {
		h.verseOrder = nil
		return
	}
	delete(h.values, key)
}

// Keys returns the field names in insertion order.
func (h *Header) Keys() []string {
	out := make([]string, len(h.keys))
	copy(out, h.keys)
	return out
}

// VerseOrder returns the play-order list. The returned slice is the
// header's own backing storage; callers that mutate it must do so via
// SetVerseOrder to keep the key order consistent.
func (h *Header) VerseOrder() []string {
	return h.verseOrder
}

// SetVerseOrder replaces the play-order list, appending the VerseOrder
// key to the order if it is new.
func (h *Header) SetVerseOrder(order []string) {
	if !h.hasKey(HeaderVerseOrder) {
		h.keys = append(h.keys, HeaderVerseOrder)
	}
	h.verseOrder = order
}

// Document is the in-memory form of one SNG file: the ordered header
// plus the ordered mapping from block label to block.
type Document struct {
	// Filename is the base name of the source file, Path its directory.
	Filename string
	Path     string

	// SongbookPrefix is the catalog prefix the file is expected to
	// follow (e.g. "EG"), usually derived from its collection folder.
	SongbookPrefix string

	// Encoding records how the source bytes were decoded.
	Encoding Encoding

	Header *Header

	cfg         *Config
	blockLabels []string
	blocks      map[string]*Block
}

// NewDocument returns an empty document bound to a rule configuration.
func NewDocument(filename, prefix string, cfg *Config) *Document {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Document{
		Filename:       filename,
		SongbookPrefix: prefix,
		Encoding:       EncodingUTF8BOM,
		Header:         NewHeader(),
		cfg:            cfg,
		blocks:         make(map[string]*Block),
	}
}

// Config returns the rule configuration the document is bound to.
func (d *Document) Config() *Config {
	return d.cfg
}

// BlockLabels returns the block labels in document order.
func (d *Document) BlockLabels() []string {
	out := make([]string, len(d.blockLabels))
	copy(out, d.blockLabels)
	return out
}

// Block returns the block with the given label.
func (d *Document) Block(label string) (*Block, bool) {
	b, ok := d.blocks[label]
	return b, ok
}

// SetBlock stores a block under label, appending it to the block order
// if the label is new.
func (d *Document) SetBlock(label string, b *Block) {
	if _, ok := d.blocks[label]; !ok {
		d.blockLabels = append(d.blockLabels, label)
	}
	d.blocks[label] = b
}

// DeleteBlock removes a block, preserving the order of the rest.
func (d *Document) DeleteBlock(label string) {
	if _, ok := d.blocks[label]; !ok {
		return
	}
	kept := d.blockLabels[:0]
	for _, l := range d.blockLabels {
		if l != label {
			kept = append(kept, l)
		}
	}
	d.blockLabels = kept
	delete(d.blocks, label)
}

// renameBlock changes a block's label in place, keeping its position.
func (d *Document) renameBlock(oldLabel, newLabel string) {
	b, ok := d.blocks[oldLabel]
	if !ok {
		return
	}
	for i, l := range d.blockLabels {
		if l == oldLabel {
			d.blockLabels[i] = newLabel
			break
		}
	}
	delete(d.blocks, oldLabel)
	d.blocks[newLabel] = b
}

// insertBlockFront puts a new block at the head of the block order.
func (d *Document) insertBlockFront(label string, b *Block) {
	if _, ok := d.blocks[label]; ok {
		return
	}
	d.blockLabels = append([]string{label}, d.blockLabels...)
	d.blocks[label] = b
}

// markModified overwrites the Editor header to flag the document as
// changed relative to its source file.
func (d *Document) markModified() {
	d.Header.Set(HeaderEditor, d.cfg.EditorStamp)
}

// ID returns the numeric CRM id header, or -1 when absent or malformed.
func (d *Document) ID() int {
	raw := d.Header.Get(HeaderID)
	if raw == "" {
		return -1
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return id
}

// SetID stores the numeric CRM id header and marks the document modified.
func (d *Document) SetID(id int) {
	d.Header.Set(HeaderID, strconv.Itoa(id))
	d.markModified()
}

// IsPsalm reports whether the document falls under the psalm rules of
// its songbook (catalog prefix with a psalm range, file number inside it).
func (d *Document) IsPsalm() bool {
	return d.cfg.Songbook.IsPsalm(d.SongbookPrefix, d.Filename)
}
