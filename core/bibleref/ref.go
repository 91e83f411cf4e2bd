// Package bibleref parses the Bible header of psalm files into a
// structured reference ("Psalm 22", "Psalm 22,1-6", "1 Mose 3,15").
package bibleref

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Ref is a parsed scripture reference.
type Ref struct {
	// Book is the book name as written, numbered books included
	// ("Psalm", "1 Mose").
	Book string

	// Chapter is the chapter (or psalm) number.
	Chapter int

	// VerseFrom and VerseTo bound the optional verse range. Both are 0
	// for whole-chapter references; VerseTo is 0 for a single verse.
	VerseFrom int
	VerseTo   int
}

// refGrammar covers "Buch Kapitel", "Buch Kapitel,Vers" and
// "Buch Kapitel,Vers-Vers" with an optional leading book number.
//
//nolint:govet // participle grammar tags are not standard struct tags
type refGrammar struct {
	BookNumber string     `parser:"@Int?"`
	BookWords  []string   `parser:"@Ident+"`
	Chapter    int        `parser:"@Int"`
	Verses     *versePart `parser:"( ',' @@ )?"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type versePart struct {
	From int  `parser:"@Int"`
	To   *int `parser:"( '-' @Int )?"`
}

var refLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[A-Za-zÄÖÜäöüß]+`},
	{Name: "Punct", Pattern: `[,\-]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var refParser = participle.MustBuild[refGrammar](
	participle.Lexer(refLexer),
	participle.Elide("Whitespace"),
)

// Parse parses a reference string.
// Supported formats:
//   - "Psalm 22" (book and chapter)
//   - "Psalm 22,1" (single verse)
//   - "Psalm 22,1-6" (verse range)
//   - "1 Mose 3,15" (numbered book)
func Parse(s string) (*Ref, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty reference string")
	}

	parsed, err := refParser.ParseString("", s)
	if err != nil {
		return nil, fmt.Errorf("invalid reference format: %q: %w", s, err)
	}

	book := strings.Join(parsed.BookWords, " ")
	if parsed.BookNumber != "" {
		book = parsed.BookNumber + " " + book
	}

	ref := &Ref{
		Book:    book,
		Chapter: parsed.Chapter,
	}
	if parsed.Verses != nil {
		ref.VerseFrom = parsed.Verses.From
		if parsed.Verses.To != nil {
			ref.VerseTo = *parsed.Verses.To
		}
	}
	if ref.VerseTo != 0 && ref.VerseTo < ref.VerseFrom {
		return nil, fmt.Errorf("verse range %d-%d is reversed in %q",
			ref.VerseFrom, ref.VerseTo, s)
	}
	return ref, nil
}

// String renders the reference back into header form.
func (r *Ref) String() string {
	var sb strings.Builder
	sb.WriteString(r.Book)
	sb.WriteString(" ")
	sb.WriteString(strconv.Itoa(r.Chapter))
	if r.VerseFrom != 0 {
		sb.WriteString(",")
		sb.WriteString(strconv.Itoa(r.VerseFrom))
		if r.VerseTo != 0 {
			sb.WriteString("-")
			sb.WriteString(strconv.Itoa(r.VerseTo))
		}
	}
	return sb.String()
}
