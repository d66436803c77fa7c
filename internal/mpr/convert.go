package mpr

import (
	"math"
	"strings"

	"kerf/internal/textutil"
)

type grooveConversion struct {
	text   string
	record Conversion
	slots  []SlotChange
}

// convertGroove turns a 109 saw groove into a 151 pocket milled from below.
// The pocket is centred on the workpiece axis (LA/2 or BR/2 from macro 100)
// when known, offset by half the groove width NB according to the radius
// correction RK, and lengthened by the tool diameter.
func convertGroove(b Block, la100, br100, diameter float64) (grooveConversion, bool) {
	xa, ok1 := numericParam(b, "XA")
	ya, ok2 := numericParam(b, "YA")
	xe, ok3 := numericParam(b, "XE")
	ye, ok4 := numericParam(b, "YE")
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return grooveConversion{}, false
	}
	ti, _ := b.Param("TI")
	nb := 0.0
	if raw, ok := b.Param("NB"); ok && raw != "" {
		nb, _ = parseNumber(raw)
	}
	rk := "NOWRK"
	if raw, ok := b.Param("RK"); ok {
		rk = strings.ToUpper(raw)
	}

	dx := math.Abs(xa - xe)
	dy := math.Abs(ya - ye)
	ddx := xe - xa
	ddy := ye - ya
	alongX := dx != 0

	var x, y, la, br, length float64
	var axis string
	var slots []SlotChange
	half := nb / 2
	if alongX {
		axis = "X"
		length = dx
		x = xa
		if la100 != 0 {
			x = la100 / 2
		}
		y = ya
		switch rk {
		case "WRKL":
			if ddx > 0 {
				y = ya + half
			} else {
				y = ya - half
			}
		case "WRKR":
			if ddx > 0 {
				y = ya - half
			} else {
				y = ya + half
			}
		}
		la = length + diameter
		br = nb
		slots = append(slots, SlotChange{Slot: "LA", Value: la})
	} else {
		axis = "Y"
		length = dy
		x = xa
		switch rk {
		case "WRKL":
			if ddy > 0 {
				x = xa - half
			} else {
				x = xa + half
			}
		case "WRKR":
			if ddy > 0 {
				x = xa + half
			} else {
				x = xa - half
			}
		}
		y = ya
		if br100 != 0 {
			y = br100 / 2
		}
		la = nb
		br = length + diameter
		slots = append(slots, SlotChange{Slot: "BR", Value: br})
	}

	nl := "\n"
	if strings.Contains(b.Text, "\r\n") {
		nl = "\r\n"
	}
	lines := []string{
		`<151 \UflurTasche\`,
		`XA="` + textutil.FormatFloat(x) + `"`,
		`YA="` + textutil.FormatFloat(y) + `"`,
		`LA="` + textutil.FormatFloat(la) + `"`,
		`BR="` + textutil.FormatFloat(br) + `"`,
		`TI="` + ti + `"`,
		`RD="0"`,
		`WI="0"`,
		`ZT="0"`,
		`XY="80"`,
		`AB="30"`,
		`AM="1"`,
		`DS="0"`,
		`T_="3"`,
		`KO="00"`,
	}
	text := strings.Join(lines, nl) + nl + trailingBlankLines(b.Text)

	return grooveConversion{
		text:   text,
		record: Conversion{Axis: axis, GrooveLength: length, Diameter: diameter},
		slots:  slots,
	}, true
}

// trailingBlankLines returns the blank lines that follow a block's last
// content line, so the replacement keeps the spacing before the next block.
func trailingBlankLines(block string) string {
	idx := strings.LastIndexFunc(block, func(r rune) bool {
		return r != ' ' && r != '\t' && r != '\r' && r != '\n'
	})
	if idx < 0 {
		return ""
	}
	rest := block[idx+1:]
	switch {
	case strings.HasPrefix(rest, "\r\n"):
		rest = rest[2:]
	case strings.HasPrefix(rest, "\n"):
		rest = rest[1:]
	default:
		return ""
	}
	// keep only whole blank lines
	last := strings.LastIndexByte(rest, '\n')
	if last < 0 {
		return ""
	}
	return rest[:last+1]
}
