package cutlist

import (
	"strings"

	"kerf/internal/convention"
)

// EdgeClass is the banding configuration of a panel.
type EdgeClass int

const (
	EdgeNone EdgeClass = iota
	EdgeOne
	EdgeTwoOpposite
	EdgeTwoAdjacent
	EdgeThree
	EdgeFour
)

func (c EdgeClass) String() string {
	switch c {
	case EdgeNone:
		return "0"
	case EdgeOne:
		return "1"
	case EdgeTwoOpposite:
		return "2-non-adjacent"
	case EdgeTwoAdjacent:
		return "2-adjacent"
	case EdgeThree:
		return "3"
	case EdgeFour:
		return "4"
	default:
		return "unknown"
	}
}

// Column returns the convention column holding the code for the class.
func (c EdgeClass) Column() string {
	switch c {
	case EdgeOne:
		return convention.ColEdge1
	case EdgeTwoOpposite:
		return convention.ColEdge2NoConnect
	case EdgeTwoAdjacent:
		return convention.ColEdge2Connect
	case EdgeThree:
		return convention.ColEdge3
	case EdgeFour:
		return convention.ColEdge4
	default:
		return convention.ColEdge0
	}
}

// Banded reports whether a raw edge field denotes a banded side.
func Banded(raw string) bool {
	v := strings.TrimSpace(raw)
	return v != "" && !strings.EqualFold(v, "nan")
}

// Classify maps the four edge fields to a class and the number of banded
// sides. Right/Left and Bottom/Top are the opposite pairs; two banded sides
// are non-adjacent only when they form one of those pairs.
func Classify(right, left, bottom, top string) (EdgeClass, int) {
	r, l, b, t := Banded(right), Banded(left), Banded(bottom), Banded(top)
	count := 0
	for _, banded := range []bool{r, l, b, t} {
		if banded {
			count++
		}
	}
	switch count {
	case 0:
		return EdgeNone, 0
	case 1:
		return EdgeOne, 1
	case 2:
		if (r && l) || (b && t) {
			return EdgeTwoOpposite, 2
		}
		return EdgeTwoAdjacent, 2
	case 3:
		return EdgeThree, 3
	default:
		return EdgeFour, 4
	}
}

// ClassifyRow classifies the edge columns of row.
func ClassifyRow(row Row) (EdgeClass, int) {
	return Classify(
		row.Get(ColRightEdge),
		row.Get(ColLeftEdge),
		row.Get(ColBottomEdge),
		row.Get(ColTopEdge),
	)
}
