package sng

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Encoding records how the source bytes of a document were decoded.
type Encoding int

const (
	// EncodingUTF8BOM is UTF-8 with a leading byte-order mark.
	EncodingUTF8BOM Encoding = iota
	// EncodingUTF8NoBOM is UTF-8 without a byte-order mark.
	EncodingUTF8NoBOM
	// EncodingLatin1 is the ISO-8859-1 fallback for files that are not
	// valid UTF-8.
	EncodingLatin1
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// String returns the diagnostic name of the encoding.
func (e Encoding) String() string {
	switch e {
	case EncodingUTF8BOM:
		return "utf-8-with-BOM"
	case EncodingUTF8NoBOM:
		return "utf-8-no-BOM"
	case EncodingLatin1:
		return "latin1-fallback"
	default:
		return "unknown"
	}
}

// IsUTF8 reports whether the encoding is a UTF-8 variant.
func (e Encoding) IsUTF8() bool {
	return e == EncodingUTF8BOM || e == EncodingUTF8NoBOM
}

// DecodeBytes decodes raw file bytes into text. UTF-8 is tried first; a
// leading BOM is stripped and recorded. Bytes that are not valid UTF-8
// fall back to ISO-8859-1, which always succeeds.
func DecodeBytes(data []byte) (string, Encoding) {
	if utf8.Valid(data) {
		if bytes.HasPrefix(data, utf8BOM) {
			return string(data[len(utf8BOM):]), EncodingUTF8BOM
		}
		return string(data), EncodingUTF8NoBOM
	}
	// Every byte maps to a code point in Latin-1, so this cannot fail.
	decoded, _ := charmap.ISO8859_1.NewDecoder().Bytes(data)
	return string(decoded), EncodingLatin1
}

// encodeText converts text back to file bytes for the given encoding.
// UTF-8 output is prefixed with the BOM; the Latin-1 path never is.
// Runes outside Latin-1 are substituted by the encoder.
func encodeText(text string, enc Encoding) ([]byte, error) {
	if enc.IsUTF8() {
		out := make([]byte, 0, len(text)+len(utf8BOM))
		out = append(out, utf8BOM...)
		return append(out, text...), nil
	}
	encoded, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, err
	}
	return encoded, nil
}
