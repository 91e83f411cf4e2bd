package openlyrics

import (
	"slices"
	"strings"
	"testing"

	"github.com/beamertools/sngward/core/sng"
)

const sampleXML = `<?xml version="1.0" encoding="UTF-8"?>
<song xmlns="http://openlyrics.info/namespace/2009/song" version="0.8">
  <properties>
    <titles><title>Amazing Grace</title></titles>
    <authors><author>John Newton</author></authors>
    <copyright>Public Domain</copyright>
    <ccliNo>22025</ccliNo>
    <verseOrder>v1 c v2</verseOrder>
    <songbooks><songbook name="EG" entry="123"/></songbooks>
  </properties>
  <lyrics>
    <verse name="v1">
      <lines>Amazing grace how sweet the sound<br/>that saved a wretch like me</lines>
    </verse>
    <verse name="c">
      <lines>Praise God<br/>praise God</lines>
    </verse>
    <verse name="v2">
      <lines>Twas grace that taught my heart to fear</lines>
      <lines>and grace my fears relieved</lines>
    </verse>
  </lyrics>
</song>`

// TestImport verifies property mapping and block conversion.
func TestImport(t *testing.T) {
	d, err := Import([]byte(sampleXML), "Amazing Grace.sng", nil)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	if got := d.Header.Get(sng.HeaderTitle); got != "Amazing Grace" {
		t.Errorf("Title = %q, want %q", got, "Amazing Grace")
	}
	if got := d.Header.Get(sng.HeaderAuthor); got != "John Newton" {
		t.Errorf("Author = %q, want %q", got, "John Newton")
	}
	if got := d.Header.Get(sng.HeaderCCLI); got != "22025" {
		t.Errorf("CCLI = %q, want %q", got, "22025")
	}
	if got := d.Header.Get(sng.HeaderSongbook); got != "EG 123" {
		t.Errorf("Songbook = %q, want %q", got, "EG 123")
	}

	wantOrder := []string{"Verse 1", "Chorus", "Verse 2", "STOP"}
	if !slices.Equal(d.Header.VerseOrder(), wantOrder) {
		t.Errorf("VerseOrder = %v, want %v", d.Header.VerseOrder(), wantOrder)
	}

	v1, ok := d.Block("Verse 1")
	if !ok {
		t.Fatal("Verse 1 block missing")
	}
	if len(v1.Slides) != 1 || len(v1.Slides[0]) != 2 {
		t.Fatalf("Verse 1 slides = %v, want one slide with two lines", v1.Slides)
	}
	if v1.Slides[0][1] != "that saved a wretch like me" {
		t.Errorf("line = %q", v1.Slides[0][1])
	}

	v2, _ := d.Block("Verse 2")
	if len(v2.Slides) != 2 {
		t.Errorf("Verse 2 slides = %d, want 2", len(v2.Slides))
	}

	// The imported document passes the coverage check and serializes.
	if !d.ValidateVerseOrderCoverage(false) {
		t.Error("imported document fails verse order coverage")
	}
	lines := strings.Join(d.Lines(), "\n")
	if !strings.Contains(lines, "#Title=Amazing Grace") {
		t.Errorf("serialized output missing title:\n%s", lines)
	}
}

// TestImportRejectsNonSong verifies the error paths.
func TestImportRejectsNonSong(t *testing.T) {
	if _, err := Import([]byte("<html></html>"), "x.sng", nil); err == nil {
		t.Error("expected error for non-song XML")
	}
	if _, err := Import([]byte("<song><lyrics/></song>"), "x.sng", nil); err == nil {
		t.Error("expected error for song without verses")
	}
}

// TestBlockLabel verifies the verse-name mapping.
func TestBlockLabel(t *testing.T) {
	cases := []struct{ in, want string }{
		{"v1", "Verse 1"},
		{"c", "Chorus"},
		{"b2", "Bridge 2"},
		{"i", "Intro"},
		{"e", "Ending"},
		{"x9", "$$M=x9"},
		{"", "Unknown"},
	}
	for _, c := range cases {
		if got := blockLabel(c.in); got != c.want {
			t.Errorf("blockLabel(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
