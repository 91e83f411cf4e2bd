package sng

import "testing"

// TestRepairMojibake verifies the substitution table.
func TestRepairMojibake(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Ã¤aaaÃ¤a", "äaaaäa"},
		{"GÃ¶tter", "Götter"},
		{"Ãlberg", "Ölberg"},
		{"StraÃe", "Straße"},
		{"kein Problem", "kein Problem"},
	}
	for _, c := range cases {
		got, changed := repairMojibake(c.in)
		if got != c.want {
			t.Errorf("repairMojibake(%q) = %q, want %q", c.in, got, c.want)
		}
		if changed != (c.in != c.want) {
			t.Errorf("repairMojibake(%q) changed = %v", c.in, changed)
		}
	}
}

// TestSuspiciousEncodingContent verifies detection and in-place repair
// of corrupted content lines.
func TestSuspiciousEncodingContent(t *testing.T) {
	text := "#Title=T\n---\nVerse 1\nÃ¤aaaÃ¤a\n"
	d := mustParse(t, "x.sng", "", text)

	if d.ValidateSuspiciousEncoding(false) {
		t.Fatal("corrupted content reported valid")
	}
	if !d.ValidateSuspiciousEncoding(true) {
		t.Fatal("encoding fix failed")
	}

	b, _ := d.Block("Verse 1")
	if b.Slides[0][0] != "äaaaäa" {
		t.Errorf("line = %q, want %q", b.Slides[0][0], "äaaaäa")
	}

	// Idempotence: the repaired text is clean.
	if !d.ValidateSuspiciousEncoding(false) {
		t.Error("repaired document reported invalid")
	}
	if !d.ValidateSuspiciousEncoding(true) {
		t.Error("second fix reported a failure")
	}
}

// TestSuspiciousEncodingHeader verifies that the header scan covers all
// fields and repairs in place.
func TestSuspiciousEncodingHeader(t *testing.T) {
	text := "#Title=GÃ¶tter\n#Author=JÃ¼rgen\n---\nVerse 1\nZeile\n"
	d := mustParse(t, "x.sng", "", text)

	if d.ValidateSuspiciousEncoding(false) {
		t.Fatal("corrupted header reported valid")
	}
	if !d.ValidateSuspiciousEncoding(true) {
		t.Fatal("encoding fix failed")
	}
	if got := d.Header.Get(HeaderTitle); got != "Götter" {
		t.Errorf("Title = %q, want %q", got, "Götter")
	}
	if got := d.Header.Get(HeaderAuthor); got != "Jürgen" {
		t.Errorf("Author = %q, want %q", got, "Jürgen")
	}
	if d.Header.Get(HeaderEditor) != d.Config().EditorStamp {
		t.Error("document not marked modified")
	}
}
