package sng

import (
	"log/slog"
	"slices"
	"strings"
)

// resolvesToBlock reports whether a play-order entry names an existing
// block, a custom block via the "$$M=" convention, or the STOP sentinel.
func (d *Document) resolvesToBlock(entry string) bool {
	if entry == StopLabel {
		return true
	}
	if _, ok := d.blocks[entry]; ok {
		return true
	}
	_, ok := d.blocks[CustomPrefix+entry]
	return ok
}

// ValidateVerseOrderCoverage checks the bidirectional containment
// between the VerseOrder list and the content blocks: every order entry
// must resolve to a block or STOP, and every block label (stripped of
// the custom prefix) must appear in the order.
func (d *Document) ValidateVerseOrderCoverage(fix bool) bool {
	if d.Header.Has(HeaderVerseOrder) {
		order := d.Header.VerseOrder()
		covered := true
		for _, entry := range order {
			if !d.resolvesToBlock(entry) {
				covered = false
				break
			}
		}
		if covered {
			for _, label := range d.blockLabels {
				if !slices.Contains(order, strings.TrimPrefix(label, CustomPrefix)) {
					covered = false
					break
				}
			}
		}
		if covered {
			return true
		}
	}

	if fix {
		return d.fixVerseOrderCoverage()
	}

	slog.Warn("verse order and blocks don't match", "file", d.Filename)
	if !d.Header.Has(HeaderVerseOrder) {
		slog.Debug("missing VerseOrder header", "file", d.Filename)
	} else {
		slog.Debug("coverage not fixed",
			"file", d.Filename,
			"order", d.Header.VerseOrder(),
			"blocks", d.blockLabels)
	}
	return false
}

// fixVerseOrderCoverage appends every block not yet listed (custom
// blocks via their stripped form), then drops every order entry with no
// resolving block, preserving the relative order of the rest.
func (d *Document) fixVerseOrderCoverage() bool {
	order := slices.Clone(d.Header.VerseOrder())

	for _, label := range d.blockLabels {
		entry := strings.TrimPrefix(label, CustomPrefix)
		if !slices.Contains(order, entry) {
			order = append(order, entry)
		}
	}

	kept := order[:0]
	for _, entry := range order {
		if d.resolvesToBlock(entry) {
			kept = append(kept, entry)
		}
	}

	d.Header.SetVerseOrder(kept)
	slog.Debug("fixed verse order", "file", d.Filename, "order", kept)
	d.markModified()
	return true
}

// ValidateStop checks the STOP sentinel in the VerseOrder list. With
// shouldBeAtEnd any STOP not in final position is removed when fixing;
// a missing STOP is appended at the end when fixing.
func (d *Document) ValidateStop(fix, shouldBeAtEnd bool) bool {
	result := true
	order := slices.Clone(d.Header.VerseOrder())

	if shouldBeAtEnd && slices.Contains(order, StopLabel) && order[len(order)-1] != StopLabel {
		if fix {
			i := slices.Index(order, StopLabel)
			order = slices.Delete(order, i, i+1)
			d.Header.SetVerseOrder(order)
			d.markModified()
			slog.Debug("removed misplaced STOP", "file", d.Filename, "order", order)
		} else {
			slog.Warn("STOP not at end of verse order", "file", d.Filename, "order", order)
			result = false
		}
	}

	if !slices.Contains(order, StopLabel) {
		if fix {
			order = append(order, StopLabel)
			d.Header.SetVerseOrder(order)
			d.markModified()
			slog.Debug("appended STOP to verse order", "file", d.Filename, "order", order)
		} else {
			slog.Warn("STOP missing in verse order", "file", d.Filename, "order", order)
			result = false
		}
	}

	return result
}

// GenerateVersesFromUnknown splits the "Unknown" bucket into labeled
// blocks. Each slide whose first line the heuristic recognizes as a
// marker starts a new block; the marker text is stripped from the line
// and the slide's remaining lines follow it. Slides with no recognized
// marker stay attached to the block opened last (or remain in the
// bucket when no marker has been seen yet). The "Unknown" entry in the
// VerseOrder list is replaced in place by the new labels; an emptied
// bucket is dropped. Returns the new labels, or nil when there was
// nothing to split.
func (d *Document) GenerateVersesFromUnknown() []string {
	bucket, ok := d.Block(UnknownLabel)
	if !ok {
		return nil
	}

	var leftover []Slide
	var labels []string
	created := make(map[string]*Block)
	current := ""

	for _, slide := range bucket.Slides {
		var marker *Marker
		rest := ""
		if len(slide) > 0 {
			marker, rest = GenerateMarker(slide[0])
		}

		if marker == nil {
			if current == "" {
				leftover = append(leftover, slide)
			} else {
				created[current].Slides = append(created[current].Slides, slide)
			}
			continue
		}

		label := marker.Label()
		slog.Debug("detected marker in unknown block", "file", d.Filename, "label", label)

		first := Slide{}
		if rest != "" {
			first = append(first, rest)
		}
		first = append(first, slide[1:]...)

		if existing, dup := created[label]; dup {
			existing.Slides = append(existing.Slides, first)
		} else {
			created[label] = &Block{Marker: *marker, Slides: []Slide{first}}
			labels = append(labels, label)
		}
		current = label
	}

	if len(labels) == 0 {
		// No marker recognized anywhere, the bucket stays as it is.
		return nil
	}

	d.DeleteBlock(UnknownLabel)
	newEntries := labels
	if len(leftover) > 0 {
		d.SetBlock(UnknownLabel, &Block{Marker: Marker{Kind: UnknownLabel}, Slides: leftover})
		newEntries = append([]string{UnknownLabel}, labels...)
	}
	for _, label := range labels {
		if existing, dup := d.Block(label); dup {
			existing.Slides = append(existing.Slides, created[label].Slides...)
			continue
		}
		d.SetBlock(label, created[label])
	}

	order := slices.Clone(d.Header.VerseOrder())
	if i := slices.Index(order, UnknownLabel); i >= 0 {
		order = slices.Concat(order[:i], newEntries, order[i+1:])
	} else {
		order = append(order, newEntries...)
	}
	d.Header.SetVerseOrder(order)

	slog.Info("replaced unknown bucket in verse order",
		"file", d.Filename, "labels", newEntries)
	d.markModified()
	return newEntries
}

// ValidateVerseNumbers canonicalizes block labels whose marker carries
// a non-numeric suffix ("Refrain 1b"). When fixing, the suffix is
// stripped to its digits; if the canonical block already exists the
// slides merge into it and the old order entry is dropped, otherwise
// the block and its order entry are renamed in place. Blocks without a
// vocabulary marker kind are never touched, only reported.
func (d *Document) ValidateVerseNumbers(fix bool) bool {
	valid := true
	for _, label := range d.BlockLabels() {
		b, ok := d.Block(label)
		if !ok {
			continue
		}
		if d.cfg.validVerseLabel(b.Marker) {
			continue
		}
		if !fix || b.Marker.IsCustom() || !d.cfg.isVerseKeyword(b.Marker.Kind) {
			valid = false
			slog.Debug("invalid verse label not fixed", "file", d.Filename, "label", label)
			continue
		}

		canonical := Marker{Kind: b.Marker.Kind, Number: stripNonDigits(b.Marker.Number)}
		newLabel := canonical.Label()
		order := slices.Clone(d.Header.VerseOrder())

		if target, exists := d.Block(newLabel); exists && newLabel != label {
			slog.Debug("merging into existing verse label",
				"file", d.Filename, "from", label, "to", newLabel)
			target.Slides = append(target.Slides, b.Slides...)
			d.DeleteBlock(label)
			kept := order[:0]
			for _, entry := range order {
				if entry != label {
					kept = append(kept, entry)
				}
			}
			d.Header.SetVerseOrder(kept)
		} else {
			slog.Debug("renaming verse label",
				"file", d.Filename, "from", label, "to", newLabel)
			b.Marker = canonical
			d.renameBlock(label, newLabel)
			for i, entry := range order {
				if entry == label {
					order[i] = newLabel
				}
			}
			d.Header.SetVerseOrder(order)
		}
		d.markModified()
	}
	return valid
}

// FixIntroSlide ensures an Intro entry heads the VerseOrder list and an
// empty Intro block heads the content.
func (d *Document) FixIntroSlide() {
	order := d.Header.VerseOrder()
	if !slices.Contains(order, "Intro") {
		d.Header.SetVerseOrder(append([]string{"Intro"}, order...))
		d.markModified()
		slog.Debug("added Intro to verse order", "file", d.Filename)
	}

	if _, ok := d.Block("Intro"); !ok {
		d.insertBlockFront("Intro", &Block{Marker: Marker{Kind: "Intro"}, Slides: []Slide{{}}})
		d.markModified()
		slog.Debug("added Intro block", "file", d.Filename)
	}
}

// stripNonDigits removes every non-digit rune.
func stripNonDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
