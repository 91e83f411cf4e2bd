package sng

import (
	"slices"
	"testing"
)

// TestCoverageValid verifies the bidirectional containment check.
func TestCoverageValid(t *testing.T) {
	d := mustParse(t, "x.sng", "", sampleSong)
	if !d.ValidateVerseOrderCoverage(false) {
		t.Error("covered document reported invalid")
	}
}

// TestCoverageFix verifies appending missing blocks and dropping stale
// entries.
func TestCoverageFix(t *testing.T) {
	text := "#Title=T\n#VerseOrder=Verse 1,Verse 9,STOP\n" +
		"---\nVerse 1\neins\n---\nChorus\nrefrain\n"
	d := mustParse(t, "x.sng", "", text)

	if d.ValidateVerseOrderCoverage(false) {
		t.Fatal("uncovered document reported valid")
	}
	if !d.ValidateVerseOrderCoverage(true) {
		t.Fatal("coverage fix failed")
	}

	order := d.Header.VerseOrder()
	want := []string{"Verse 1", "STOP", "Chorus"}
	if !slices.Equal(order, want) {
		t.Errorf("VerseOrder = %v, want %v", order, want)
	}
	if !d.ValidateVerseOrderCoverage(false) {
		t.Error("coverage invariant violated after fix")
	}
}

// TestCoverageFixCustomBlock verifies the stripped form of custom
// labels in the order list.
func TestCoverageFixCustomBlock(t *testing.T) {
	text := "#Title=T\n#VerseOrder=STOP\n---\n$$M=Anhang\nZeile\n"
	d := mustParse(t, "x.sng", "", text)
	if !d.ValidateVerseOrderCoverage(true) {
		t.Fatal("coverage fix failed")
	}
	order := d.Header.VerseOrder()
	if !slices.Contains(order, "Anhang") {
		t.Errorf("VerseOrder = %v, want stripped custom label Anhang", order)
	}
	if slices.Contains(order, "$$M=Anhang") {
		t.Errorf("VerseOrder = %v, custom label must be stripped", order)
	}
}

// TestCoverageMissingVerseOrder verifies the fix when the header field
// is absent entirely.
func TestCoverageMissingVerseOrder(t *testing.T) {
	d := mustParse(t, "x.sng", "", "#Title=T\n---\nVerse 1\neins\n")
	if d.ValidateVerseOrderCoverage(false) {
		t.Fatal("document without VerseOrder reported valid")
	}
	if !d.ValidateVerseOrderCoverage(true) {
		t.Fatal("coverage fix failed")
	}
	if !slices.Equal(d.Header.VerseOrder(), []string{"Verse 1"}) {
		t.Errorf("VerseOrder = %v, want [Verse 1]", d.Header.VerseOrder())
	}
}

// TestValidateStop verifies STOP placement handling.
func TestValidateStop(t *testing.T) {
	d := mustParse(t, "x.sng", "", "#Title=T\n#VerseOrder=Verse 1\n---\nVerse 1\neins\n")
	if d.ValidateStop(false, false) {
		t.Error("missing STOP reported valid")
	}
	if !d.ValidateStop(true, false) {
		t.Fatal("STOP fix failed")
	}
	order := d.Header.VerseOrder()
	if order[len(order)-1] != StopLabel {
		t.Errorf("VerseOrder = %v, want STOP at end", order)
	}
}

// TestValidateStopNotAtEnd verifies relocation of a misplaced STOP.
func TestValidateStopNotAtEnd(t *testing.T) {
	d := mustParse(t, "x.sng", "",
		"#Title=T\n#VerseOrder=Verse 1,STOP,Chorus\n---\nVerse 1\neins\n---\nChorus\nrefrain\n")
	if d.ValidateStop(false, true) {
		t.Error("misplaced STOP reported valid")
	}
	if !d.ValidateStop(true, true) {
		t.Fatal("STOP fix failed")
	}
	want := []string{"Verse 1", "Chorus", "STOP"}
	if !slices.Equal(d.Header.VerseOrder(), want) {
		t.Errorf("VerseOrder = %v, want %v", d.Header.VerseOrder(), want)
	}
}

// TestGenerateVersesFromUnknown verifies splitting the Unknown bucket
// into labeled blocks.
func TestGenerateVersesFromUnknown(t *testing.T) {
	text := "#Title=T\n#VerseOrder=Intro,Unknown,STOP\n" +
		"---\n1. Erste Zeile\n---\n2. Zweite Zeile\n---\nR: Refrainzeile\n---\nIntro\n"
	d := mustParse(t, "x.sng", "", text)

	labels := d.GenerateVersesFromUnknown()
	want := []string{"Verse 1", "Verse 2", "Chorus"}
	if !slices.Equal(labels, want) {
		t.Fatalf("new labels = %v, want %v", labels, want)
	}

	wantOrder := []string{"Intro", "Verse 1", "Verse 2", "Chorus", "STOP"}
	if !slices.Equal(d.Header.VerseOrder(), wantOrder) {
		t.Errorf("VerseOrder = %v, want %v", d.Header.VerseOrder(), wantOrder)
	}

	if _, ok := d.Block(UnknownLabel); ok {
		t.Error("emptied Unknown bucket still present")
	}
	v1, ok := d.Block("Verse 1")
	if !ok {
		t.Fatal("Verse 1 block missing")
	}
	if len(v1.Slides) != 1 || v1.Slides[0][0] != "Erste Zeile" {
		t.Errorf("Verse 1 slides = %v, want marker text stripped", v1.Slides)
	}

	if d.GenerateVersesFromUnknown() != nil {
		t.Error("second split found something to do")
	}
}

// TestGenerateVersesKeepsUnmatchedSlides verifies that slides without a
// recognized marker stay attached to the block opened last.
func TestGenerateVersesKeepsUnmatchedSlides(t *testing.T) {
	text := "#Title=T\n#VerseOrder=Unknown,STOP\n" +
		"---\n1. Anfang\n---\nnur Text\n"
	d := mustParse(t, "x.sng", "", text)

	d.GenerateVersesFromUnknown()
	v1, ok := d.Block("Verse 1")
	if !ok {
		t.Fatal("Verse 1 block missing")
	}
	if len(v1.Slides) != 2 {
		t.Fatalf("Verse 1 slides = %d, want 2", len(v1.Slides))
	}
	if v1.Slides[1][0] != "nur Text" {
		t.Errorf("second slide = %v, want [nur Text]", v1.Slides[1])
	}
}

// TestGenerateVersesLeftoverBucket verifies that unmatched leading
// slides keep the Unknown bucket alive.
func TestGenerateVersesLeftoverBucket(t *testing.T) {
	text := "#Title=T\n#VerseOrder=Unknown,STOP\n" +
		"---\nfreier Text\n---\n2. Strophe zwei\n"
	d := mustParse(t, "x.sng", "", text)

	d.GenerateVersesFromUnknown()
	if _, ok := d.Block(UnknownLabel); !ok {
		t.Error("Unknown bucket with leftover slides was dropped")
	}
	wantOrder := []string{"Unknown", "Verse 2", "STOP"}
	if !slices.Equal(d.Header.VerseOrder(), wantOrder) {
		t.Errorf("VerseOrder = %v, want %v", d.Header.VerseOrder(), wantOrder)
	}
}

// TestGenerateVersesNoMarkersLeavesBucket verifies that a bucket with
// no recognizable marker in any slide is left completely untouched.
func TestGenerateVersesNoMarkersLeavesBucket(t *testing.T) {
	text := "#Title=T\n#VerseOrder=Unknown,STOP\n" +
		"---\nnur Text\nnoch Text\n---\nmehr Text\n"
	d := mustParse(t, "x.sng", "", text)
	before := d.Lines()

	if got := d.GenerateVersesFromUnknown(); got != nil {
		t.Errorf("labels = %v, want nil", got)
	}
	b, ok := d.Block(UnknownLabel)
	if !ok {
		t.Fatal("Unknown bucket was dropped")
	}
	if len(b.Slides) != 2 {
		t.Errorf("Unknown slides = %d, want 2", len(b.Slides))
	}
	wantOrder := []string{"Unknown", "STOP"}
	if !slices.Equal(d.Header.VerseOrder(), wantOrder) {
		t.Errorf("VerseOrder = %v, want %v", d.Header.VerseOrder(), wantOrder)
	}
	if !slices.Equal(d.Lines(), before) {
		t.Error("document changed without a marker to split on")
	}
}

// TestValidateVerseNumbers verifies canonicalization of lettered verse
// suffixes, including the merge of Scenario-style variants.
func TestValidateVerseNumbers(t *testing.T) {
	text := "#Title=T\n#VerseOrder=Refrain 1a,Refrain 1b,STOP\n" +
		"---\nRefrain 1a\nZeile a\n---\nRefrain 1b\nZeile b\n"
	d := mustParse(t, "x.sng", "", text)

	if d.ValidateVerseNumbers(false) {
		t.Fatal("lettered suffixes reported valid")
	}
	if !d.ValidateVerseNumbers(true) {
		t.Fatal("verse number fix failed")
	}

	merged, ok := d.Block("Refrain 1")
	if !ok {
		t.Fatal("Refrain 1 block missing")
	}
	if len(merged.Slides) != 2 {
		t.Fatalf("Refrain 1 slides = %d, want 2", len(merged.Slides))
	}
	if merged.Slides[0][0] != "Zeile a" || merged.Slides[1][0] != "Zeile b" {
		t.Errorf("merged slides = %v", merged.Slides)
	}

	wantOrder := []string{"Refrain 1", "STOP"}
	if !slices.Equal(d.Header.VerseOrder(), wantOrder) {
		t.Errorf("VerseOrder = %v, want %v", d.Header.VerseOrder(), wantOrder)
	}

	if !d.ValidateVerseNumbers(false) {
		t.Error("document invalid after fix")
	}
}

// TestValidateVerseNumbersCustomUntouched verifies that custom labels
// are reported but never rewritten.
func TestValidateVerseNumbersCustomUntouched(t *testing.T) {
	text := "#Title=T\n#VerseOrder=Teil A,STOP\n---\n$$M=Teil A\nZeile\n"
	d := mustParse(t, "x.sng", "", text)

	if d.ValidateVerseNumbers(true) {
		t.Error("custom label reported valid")
	}
	if _, ok := d.Block("$$M=Teil A"); !ok {
		t.Error("custom block was rewritten")
	}
}

// TestFixIntroSlide verifies inserting the Intro entry and block.
func TestFixIntroSlide(t *testing.T) {
	d := mustParse(t, "x.sng", "", sampleSong)
	d.FixIntroSlide()

	if d.Header.VerseOrder()[0] != "Intro" {
		t.Errorf("VerseOrder = %v, want Intro first", d.Header.VerseOrder())
	}
	if d.BlockLabels()[0] != "Intro" {
		t.Errorf("BlockLabels = %v, want Intro first", d.BlockLabels())
	}

	before := d.BlockLabels()
	d.FixIntroSlide()
	if !slices.Equal(d.BlockLabels(), before) {
		t.Error("second FixIntroSlide changed the document")
	}
}
