package cutlist

import "strconv"

// Row is one cutlist line with its derived columns.
type Row struct {
	// Line is the 1-based line number in the source file.
	Line   int
	Source []string

	Component     string
	Matched       bool
	EdgeClass     EdgeClass
	FaceName      string
	Process       string
	VerticalDrill string
	HorizDrill    string
	AngleGroove   string
	SawGroove     string
	EdgeBandCount int
	UniqueID      string
}

// NewRow builds a row from source values, padding or truncating to the
// source column count.
func NewRow(line int, values []string) Row {
	src := make([]string, len(SourceColumns))
	copy(src, values)
	return Row{Line: line, Source: src}
}

// Get returns a source column value. Unknown columns yield "".
func (r Row) Get(column string) string {
	i, ok := sourceIndex[column]
	if !ok || i >= len(r.Source) {
		return ""
	}
	return r.Source[i]
}

// Set assigns a source column value.
func (r *Row) Set(column, value string) {
	i, ok := sourceIndex[column]
	if !ok {
		return
	}
	if len(r.Source) < len(SourceColumns) {
		src := make([]string, len(SourceColumns))
		copy(src, r.Source)
		r.Source = src
	}
	r.Source[i] = value
}

// Reference returns the row's Reference column.
func (r Row) Reference() string { return r.Get(ColReference) }

// ToolingFile returns the MPR file name the row points at.
func (r Row) ToolingFile() string { return r.Get(ColToolingFile) }

// Record returns the row's values in Header order.
func (r Row) Record() []string {
	out := make([]string, 0, len(SourceColumns)+len(DerivedColumns))
	for _, col := range SourceColumns {
		out = append(out, r.Get(col))
	}
	return append(out,
		r.FaceName,
		r.Process,
		r.VerticalDrill,
		r.HorizDrill,
		r.AngleGroove,
		r.SawGroove,
		strconv.Itoa(r.EdgeBandCount),
		r.UniqueID,
	)
}
