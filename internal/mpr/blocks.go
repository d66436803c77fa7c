package mpr

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
)

var headerPattern = regexp.MustCompile(`(?m)^[ \t]*<[ \t]*(\d+)[ \t]*\\`)

// Block is one macro block, from its header line through its last line.
type Block struct {
	ID   int
	Text string
}

// Header returns the block's first line without the line terminator.
func (b Block) Header() string {
	line, _, _ := strings.Cut(b.Text, "\n")
	return strings.TrimRight(line, "\r")
}

// Param returns a parameter value from the block.
func (b Block) Param(key string) (string, bool) {
	return Param(b.Text, key)
}

// Segment is either a macro block or verbatim text between blocks.
type Segment struct {
	Block *Block
	Raw   string
}

// Text returns the segment's original bytes.
func (s Segment) Text() string {
	if s.Block != nil {
		return s.Block.Text
	}
	return s.Raw
}

// Document is an MPR file split into segments. Joining every segment's text
// reproduces the input exactly.
type Document struct {
	Segments []Segment
}

// Split breaks text into blocks and the verbatim text around them.
func Split(text string) Document {
	var doc Document
	locs := headerPattern.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		if text != "" {
			doc.Segments = append(doc.Segments, Segment{Raw: text})
		}
		return doc
	}
	if locs[0][0] > 0 {
		doc.Segments = append(doc.Segments, Segment{Raw: text[:locs[0][0]]})
	}
	for i, loc := range locs {
		start := loc[0]
		limit := len(text)
		if i+1 < len(locs) {
			limit = locs[i+1][0]
		}
		id, err := strconv.Atoi(text[loc[2]:loc[3]])
		if err != nil {
			doc.Segments = append(doc.Segments, Segment{Raw: text[start:limit]})
			continue
		}
		end := blockEnd(text, start, limit)
		doc.Segments = append(doc.Segments, Segment{Block: &Block{ID: id, Text: text[start:end]}})
		if end < limit {
			doc.Segments = append(doc.Segments, Segment{Raw: text[end:limit]})
		}
	}
	return doc
}

// blockEnd returns the offset of the first `!` end line after the header, or
// limit when there is none.
func blockEnd(text string, start, limit int) int {
	pos := strings.IndexByte(text[start:limit], '\n')
	if pos < 0 {
		return limit
	}
	pos += start + 1
	for pos < limit {
		next := strings.IndexByte(text[pos:limit], '\n')
		lineEnd := limit
		if next >= 0 {
			lineEnd = pos + next + 1
		}
		if strings.TrimSpace(text[pos:lineEnd]) == "!" {
			return pos
		}
		pos = lineEnd
	}
	return limit
}

// Blocks returns the macro blocks in document order.
func (d Document) Blocks() []Block {
	out := make([]Block, 0, len(d.Segments))
	for _, seg := range d.Segments {
		if seg.Block != nil {
			out = append(out, *seg.Block)
		}
	}
	return out
}

// String reassembles the document text.
func (d Document) String() string {
	var b strings.Builder
	for _, seg := range d.Segments {
		b.WriteString(seg.Text())
	}
	return b.String()
}

// Param extracts a parameter such as BM="LSL" or DU=5 from block text. Keys
// match case-insensitively at the start of a line; quoted values are returned
// without their quotes and trimmed.
func Param(block, key string) (string, bool) {
	m := paramPattern(key).FindStringSubmatchIndex(block)
	if m == nil {
		return "", false
	}
	if m[2] >= 0 {
		return strings.TrimSpace(block[m[2]:m[3]]), true
	}
	return strings.TrimSpace(block[m[4]:m[5]]), true
}

var paramPatterns sync.Map

func paramPattern(key string) *regexp.Regexp {
	upper := strings.ToUpper(key)
	if re, ok := paramPatterns.Load(upper); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`(?mi)^\s*` + regexp.QuoteMeta(upper) + `\s*=\s*(?:"([^"]*)"|([^\s\\\r\n]+))`)
	actual, _ := paramPatterns.LoadOrStore(upper, re)
	return actual.(*regexp.Regexp)
}

// numericParam reads a parameter as a float.
func numericParam(b Block, key string) (float64, bool) {
	raw, ok := b.Param(key)
	if !ok {
		return 0, false
	}
	return parseNumber(raw)
}

// workpieceSize reads LA and BR from the first macro 100 block; absent or
// non-numeric values are zero.
func workpieceSize(blocks []Block) (la, br float64) {
	for _, b := range blocks {
		if b.ID != 100 {
			continue
		}
		la, _ = numericParam(b, "LA")
		br, _ = numericParam(b, "BR")
		return la, br
	}
	return 0, 0
}

// toolValue returns the T_ value with quotes and `!` removed.
func toolValue(b Block) string {
	raw, _ := b.Param("T_")
	raw = strings.ReplaceAll(raw, `"`, "")
	raw = strings.ReplaceAll(raw, "!", "")
	return strings.TrimSpace(raw)
}
