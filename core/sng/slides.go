package sng

import "log/slog"

// ValidateSlideLines checks that within every block each slide except
// the last has exactly cfg.MaxSlideLines lines and the last has no
// more. The fix flattens a violating block's lines and re-chunks them
// into fixed-size slides, the last one possibly shorter. Check mode
// stops at the first violating block.
func (d *Document) ValidateSlideLines(fix bool) bool {
	max := d.cfg.MaxSlideLines
	for _, label := range d.blockLabels {
		b := d.blocks[label]
		if len(b.Slides) == 0 {
			continue
		}

		issues := false
		for _, slide := range b.Slides[:len(b.Slides)-1] {
			if len(slide) != max {
				issues = true
				break
			}
		}
		issues = issues || len(b.Slides[len(b.Slides)-1]) > max

		if !issues {
			continue
		}
		if !fix {
			return false
		}

		slog.Debug("reflowing block slides",
			"file", d.Filename, "block", label, "lines_per_slide", max)

		lines := make([]string, 0, b.lineCount())
		for _, slide := range b.Slides {
			lines = append(lines, slide...)
		}
		b.Slides = b.Slides[:0]
		for i := 0; i < len(lines); i += max {
			end := min(i+max, len(lines))
			b.Slides = append(b.Slides, Slide(lines[i:end]))
		}
		d.markModified()
	}
	return true
}
