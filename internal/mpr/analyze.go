package mpr

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"kerf/internal/textutil"
)

// AnalyzeOptions tunes Analyze.
type AnalyzeOptions struct {
	// SkipDisabled ignores blocks carrying EN="0".
	SkipDisabled bool
	// BelowTool matches 109 tool ids milled from below. Nil uses
	// DefaultBelowToolPattern.
	BelowTool *regexp.Regexp
}

// Summary is the result of analysing one MPR file.
type Summary struct {
	CountsByID    map[int]int
	UnknownIDs    map[int]int
	VDrills       map[string]int
	HDrills       map[string]int
	AngleLengths  []string
	GrooveLengths []string
	LA100         float64
	BR100         float64
}

// DefaultBelowToolPattern matches five or six character tool ids ending in 2.
var DefaultBelowToolPattern = regexp.MustCompile(`^\S{4,5}2$`)

// Analyze counts macros by id and derives drill signatures and groove lengths.
func Analyze(text string, opts AnalyzeOptions) Summary {
	below := opts.BelowTool
	if below == nil {
		below = DefaultBelowToolPattern
	}
	blocks := Split(text).Blocks()

	s := Summary{
		CountsByID: map[int]int{},
		UnknownIDs: map[int]int{},
		VDrills:    map[string]int{},
		HDrills:    map[string]int{},
	}
	s.LA100, s.BR100 = workpieceSize(blocks)

	for _, b := range blocks {
		if opts.SkipDisabled {
			if en, ok := b.Param("EN"); ok && strings.TrimSpace(en) == "0" {
				continue
			}
		}
		s.CountsByID[b.ID]++
		if _, known := Describe(b.ID); !known {
			s.UnknownIDs[b.ID]++
		}

		switch b.ID {
		case MacroVDrill:
			s.VDrills[VDrillSignature(b)]++
		case MacroHDrill:
			s.HDrills[HDrillSignature(b)]++
		case MacroSawGroove:
			if length, ok := grooveLength(b, s.LA100, s.BR100, below); ok {
				s.GrooveLengths = append(s.GrooveLengths, length)
			}
		case MacroAngleSaw:
			if length, ok := grooveLength(b, s.LA100, s.BR100, nil); ok {
				s.AngleLengths = append(s.AngleLengths, length)
			}
		}
	}
	return s
}

// grooveLength builds `<dx>_On_PL<LA>` or `<dy>_On_PW<BR>` descriptors. A
// non-nil below pattern marks a 109 groove and adds the milling suffix inside
// the brackets.
func grooveLength(b Block, la, br float64, below *regexp.Regexp) (string, bool) {
	xa, ok1 := numericParam(b, "XA")
	ya, ok2 := numericParam(b, "YA")
	xe, ok3 := numericParam(b, "XE")
	ye, ok4 := numericParam(b, "YE")
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return "", false
	}
	dx := math.Abs(xa - xe)
	dy := math.Abs(ya - ye)

	suffix := ""
	if below != nil {
		if below.MatchString(toolValue(b)) {
			suffix = "_Milling_From_Below"
		} else {
			suffix = "_Top_Saw_Grv"
		}
	}

	switch {
	case dy == 0:
		return textutil.FormatFloat(dx) + "_On_PL<" + textutil.FormatFloat(la) + suffix + ">", true
	case dx == 0:
		return textutil.FormatFloat(dy) + "_On_PW<" + textutil.FormatFloat(br) + suffix + ">", true
	default:
		return textutil.FormatFloat(math.Max(dx, dy)), true
	}
}

// ProcessSummary renders `description:count` per mapped macro id in id order,
// adding `[L=...]` length lists for 109 and 124. Unknown ids are left out.
func (s Summary) ProcessSummary() string {
	ids := make([]int, 0, len(s.CountsByID))
	for id := range s.CountsByID {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		count := s.CountsByID[id]
		desc, known := Describe(id)
		if count <= 0 || !known {
			continue
		}
		part := desc + ":" + strconv.Itoa(count)
		switch {
		case id == MacroAngleSaw && len(s.AngleLengths) > 0:
			part += " [L=" + leadingValues(s.AngleLengths) + "]"
		case id == MacroSawGroove && len(s.GrooveLengths) > 0:
			part += " [L=" + leadingValues(s.GrooveLengths) + "]"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "@")
}

// VerticalDetail renders the 102 signature counts.
func (s Summary) VerticalDetail() string { return joinCounts(s.VDrills) }

// HorizontalDetail renders the 103 signature counts.
func (s Summary) HorizontalDetail() string { return joinCounts(s.HDrills) }

// AngleGrooveLength joins the 124 length descriptors.
func (s Summary) AngleGrooveLength() string { return strings.Join(s.AngleLengths, "@") }

// SawGrooveLength joins the 109 length descriptors.
func (s Summary) SawGrooveLength() string { return strings.Join(s.GrooveLengths, "@") }

func joinCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return ""
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+":"+strconv.Itoa(counts[k]))
	}
	return strings.Join(parts, "@")
}

func leadingValues(lengths []string) string {
	vals := make([]string, 0, len(lengths))
	for _, l := range lengths {
		head, _, _ := strings.Cut(l, "_")
		vals = append(vals, head)
	}
	return strings.Join(vals, ",")
}
