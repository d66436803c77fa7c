package mpr

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var vdrillStyles = map[string]string{
	"LS":   "SF",
	"SS":   "FF",
	"LSL":  "SFS",
	"SSS":  "FFF",
	"LSU":  "SF",
	"LSLU": "SFS",
}

var vdrillDepths = map[string]string{
	"LS":   "ToDepth",
	"SS":   "ToDepth",
	"LSL":  "Through",
	"SSS":  "Through",
	"LSU":  "FromBottom",
	"LSLU": "FromBottom",
}

var hdrillDirections = map[string]string{
	"XP": "+X",
	"XM": "-X",
	"YP": "+Y",
	"YM": "-Y",
}

var whitespace = regexp.MustCompile(`\s+`)

// VDrillSignature describes a macro 102 vertical drilling as
// VDrill_<diameter>_<style>_<depth>.
func VDrillSignature(b Block) string {
	bm := blockParamUpper(b, "BM")
	du, _ := b.Param("DU")
	tno, _ := b.Param("TNO")
	diameter := formatDiameter(du, tno)

	style, ok := vdrillStyles[bm]
	if !ok {
		style = "BM" + orUnknown(bm)
	}
	depth, ok := vdrillDepths[bm]
	if !ok {
		depth = "UNK"
	}
	return "VDrill_" + diameter + "_" + style + "_" + depth
}

// HDrillSignature describes a macro 103 horizontal drilling as
// HDrill_<diameter>_<direction>.
func HDrillSignature(b Block) string {
	bm := blockParamUpper(b, "BM")
	du, _ := b.Param("DU")
	tool, _ := b.Param("T_")
	diameter := formatDiameter(du, tool)

	direction, ok := hdrillDirections[bm]
	switch {
	case ok:
	case bm == "C":
		wi, _ := b.Param("WI")
		direction = "C" + wi
	default:
		direction = "BM" + orUnknown(bm)
	}
	return "HDrill_" + diameter + "_" + direction
}

// formatDiameter prefers DU ("5D", "5.5D"), then the tool number ("Tool12"),
// then "DUNK".
func formatDiameter(du, tool string) string {
	if du != "" {
		if v, err := strconv.ParseFloat(du, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			if math.Abs(v-math.Trunc(v)) < 1e-9 {
				return strconv.FormatInt(int64(v), 10) + "D"
			}
			return strconv.FormatFloat(v, 'f', -1, 64) + "D"
		}
		return whitespace.ReplaceAllString(du, "") + "D"
	}
	if tool != "" {
		return "Tool" + whitespace.ReplaceAllString(tool, "")
	}
	return "DUNK"
}

func blockParamUpper(b Block, key string) string {
	v, _ := b.Param(key)
	return strings.ToUpper(v)
}

func orUnknown(v string) string {
	if v == "" {
		return "UNK"
	}
	return v
}
