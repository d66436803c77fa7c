package mpr

import "kerf/internal/textutil"

// Macro identifiers with special handling.
const (
	MacroWorkpiece   = 100
	MacroVDrill      = 102
	MacroHDrill      = 103
	MacroSawGroove   = 109
	MacroAngleSaw    = 124
	MacroComponent   = 139
	MacroPocketBelow = 151
)

// UnknownDescription labels macro ids missing from the process table.
const UnknownDescription = "Unknown/Unmapped macro ID"

var processDescriptions = map[int]string{
	102: "V_drill",
	103: "H_drill",
	104: "U_drilling",
	105: "Milling_from_top",
	106: "Edge-banding on contour",
	107: "Flush trimming on contour",
	108: "End trimming / capping on contour",
	109: "Saw_Grooving",
	112: "Pocket_milling",
	113: "Milling_from_below",
	124: "Angle_sawing[45_Handle]",
	131: "Drilling from below",
	133: "Contour milling",
	151: "Pocketing_from_below",
	181: "Freeform pocket milling",
}

// Describe returns the process description for a macro id.
func Describe(id int) (string, bool) {
	desc, ok := processDescriptions[id]
	if !ok {
		return UnknownDescription, false
	}
	return desc, true
}

func parseNumber(raw string) (float64, bool) {
	return textutil.ParseFloat(raw)
}
