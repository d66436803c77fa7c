package textutil

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Encoding identifies how a text file was stored on disk.
type Encoding int

const (
	// UTF8 is plain UTF-8 without a byte-order mark.
	UTF8 Encoding = iota
	// UTF8BOM is UTF-8 prefixed with EF BB BF.
	UTF8BOM
	// Windows1252 is the legacy western code page most CNC software writes.
	Windows1252
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func (e Encoding) String() string {
	switch e {
	case UTF8BOM:
		return "utf-8-bom"
	case Windows1252:
		return "windows-1252"
	default:
		return "utf-8"
	}
}

func (e Encoding) codec() encoding.Encoding {
	switch e {
	case UTF8BOM:
		return unicode.UTF8BOM
	case Windows1252:
		return charmap.Windows1252
	default:
		return unicode.UTF8
	}
}

// Detect picks UTF-8 (with or without BOM) when the bytes are valid UTF-8 and
// falls back to Windows-1252 otherwise.
func Detect(data []byte) Encoding {
	if bytes.HasPrefix(data, utf8BOM) {
		if utf8.Valid(data[len(utf8BOM):]) {
			return UTF8BOM
		}
		return Windows1252
	}
	if utf8.Valid(data) {
		return UTF8
	}
	return Windows1252
}

// Decode converts raw file bytes to a string, returning the encoding needed to
// write it back unchanged.
func Decode(data []byte) (string, Encoding, error) {
	enc := Detect(data)
	switch enc {
	case UTF8:
		return string(data), enc, nil
	default:
		out, err := enc.codec().NewDecoder().Bytes(data)
		if err != nil {
			return "", enc, fmt.Errorf("decode %s: %w", enc, err)
		}
		return string(out), enc, nil
	}
}

// Encode converts text back to the on-disk representation of enc.
func Encode(text string, enc Encoding) ([]byte, error) {
	if enc == UTF8 {
		return []byte(text), nil
	}
	out, err := enc.codec().NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", enc, err)
	}
	return out, nil
}
