package mpr

import (
	"fmt"
	"regexp"
	"strings"

	"kerf/internal/textutil"
)

// DefaultComponentTag opens the component block removed by Rewrite.
const DefaultComponentTag = `<139 \Komponente\`

// Options controls Rewrite.
type Options struct {
	ToolDiameter   float64
	RemoveMacro124 bool
	// BelowTool matches 109 tool ids to convert. Nil uses
	// DefaultBelowToolPattern.
	BelowTool *regexp.Regexp
	// ComponentTag overrides DefaultComponentTag.
	ComponentTag string
}

// DefaultOptions returns the rewrite settings used when no configuration
// overrides them.
func DefaultOptions() Options {
	return Options{
		ToolDiameter:   10,
		RemoveMacro124: true,
		BelowTool:      DefaultBelowToolPattern,
		ComponentTag:   DefaultComponentTag,
	}
}

// Conversion records one 109 groove rewritten as a 151 pocket.
type Conversion struct {
	Axis         string
	GrooveLength float64
	Diameter     float64
	Tool         string
}

func (c Conversion) String() string {
	return "axis=" + c.Axis + " L=" + textutil.FormatFloat(c.GrooveLength)
}

// SlotChange records an LA or BR value written into a generated 151 block.
type SlotChange struct {
	Slot  string
	Value float64
}

// Actions summarises what Rewrite did to one file.
type Actions struct {
	ComponentRemoved bool
	ComponentBlocks  int
	Macro124Found    int
	Macro124Removed  int
	Remove124        bool
	Conversions      []Conversion
	LABR             []SlotChange
	// Skipped lists 109 blocks that matched the tool pattern but could not be
	// converted.
	Skipped []string
}

// Macro124Status is the operator-facing state of the macro 124 rule.
func (a Actions) Macro124Status() string {
	switch {
	case a.Macro124Found == 0:
		return ""
	case a.Macro124Removed > 0:
		return fmt.Sprintf("removed: %d", a.Macro124Removed)
	case !a.Remove124:
		return "kept (toggle off)"
	default:
		return "present"
	}
}

// ConversionSummary joins conversions as "axis=X L=600.0, ...".
func (a Actions) ConversionSummary() string {
	parts := make([]string, 0, len(a.Conversions))
	for _, c := range a.Conversions {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, ", ")
}

// Flags lists the actions taken in short form.
func (a Actions) Flags() []string {
	var flags []string
	if a.ComponentRemoved {
		flags = append(flags, "component removed")
	}
	if status := a.Macro124Status(); status != "" {
		flags = append(flags, "124 "+status)
	}
	for _, c := range a.Conversions {
		flags = append(flags, "109→151 "+c.String())
	}
	for _, s := range a.LABR {
		flags = append(flags, "LA/BR "+s.Slot+"="+textutil.FormatFloat(s.Value))
	}
	return flags
}

// Result is the proposed rewrite of one file.
type Result struct {
	Text    string
	Changed bool
	LA100   float64
	BR100   float64
	Actions Actions
}

// Rewrite applies the component removal, macro 124 and 109→151 rules to text
// and returns the proposed text. Preamble and trailer text outside blocks is
// kept byte for byte, as are blocks no rule applies to.
func Rewrite(text string, opts Options) Result {
	below := opts.BelowTool
	if below == nil {
		below = DefaultBelowToolPattern
	}
	tag := strings.TrimSpace(opts.ComponentTag)
	if tag == "" {
		tag = DefaultComponentTag
	}

	doc := Split(text)
	res := Result{Actions: Actions{Remove124: opts.RemoveMacro124}}
	res.LA100, res.BR100 = workpieceSize(doc.Blocks())

	out := Document{Segments: make([]Segment, 0, len(doc.Segments))}
	for _, seg := range doc.Segments {
		b := seg.Block
		if b == nil {
			out.Segments = append(out.Segments, seg)
			continue
		}
		switch {
		case isComponentBlock(*b, tag):
			res.Actions.ComponentRemoved = true
			res.Actions.ComponentBlocks++
			continue
		case b.ID == MacroAngleSaw:
			res.Actions.Macro124Found++
			if opts.RemoveMacro124 {
				res.Actions.Macro124Removed++
				continue
			}
		case b.ID == MacroSawGroove:
			tool := toolValue(*b)
			if !below.MatchString(tool) {
				break
			}
			conv, ok := convertGroove(*b, res.LA100, res.BR100, opts.ToolDiameter)
			if !ok {
				res.Actions.Skipped = append(res.Actions.Skipped, strings.TrimSpace(b.Header())+" T_="+tool)
				break
			}
			conv.record.Tool = tool
			res.Actions.Conversions = append(res.Actions.Conversions, conv.record)
			res.Actions.LABR = append(res.Actions.LABR, conv.slots...)
			out.Segments = append(out.Segments, Segment{Block: &Block{ID: MacroPocketBelow, Text: conv.text}})
			continue
		}
		out.Segments = append(out.Segments, seg)
	}

	res.Text = out.String()
	res.Changed = res.Text != text
	return res
}

func isComponentBlock(b Block, tag string) bool {
	header := strings.TrimSpace(b.Header())
	return strings.HasPrefix(normalizeHeader(header), normalizeHeader(tag))
}

// normalizeHeader drops whitespace between `<`, the id and the name so
// `< 139  \Komponente\` matches the tag.
func normalizeHeader(h string) string {
	return whitespace.ReplaceAllString(h, "")
}

// RemoveComponentBlocks applies only the component removal rule.
func RemoveComponentBlocks(text, tag string) (string, int) {
	if strings.TrimSpace(tag) == "" {
		tag = DefaultComponentTag
	}
	doc := Split(text)
	out := Document{Segments: make([]Segment, 0, len(doc.Segments))}
	removed := 0
	for _, seg := range doc.Segments {
		if seg.Block != nil && isComponentBlock(*seg.Block, tag) {
			removed++
			continue
		}
		out.Segments = append(out.Segments, seg)
	}
	if removed == 0 {
		return text, 0
	}
	return out.String(), removed
}

// HasComponentBlock reports whether text contains the component block.
func HasComponentBlock(text, tag string) bool {
	_, n := RemoveComponentBlocks(text, tag)
	return n > 0
}
