package cutlist

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"kerf/internal/convention"
	"kerf/internal/logging"
	"kerf/internal/mpr"
	"kerf/internal/textutil"
)

// UniqueID derives the row identifier from the ordered tuple
// (project, cabinet, reference, cutting list number). The same tuple always
// yields the same UUID.
func UniqueID(project, cabinet, reference, number string) string {
	name := strings.Join([]string{
		strings.TrimSpace(project),
		strings.TrimSpace(cabinet),
		strings.TrimSpace(reference),
		strings.TrimSpace(number),
	}, "|")
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(name)).String()
}

// ConvertGrain maps the design tool's grain codes to N, Y and X. Other
// values pass through unchanged.
func ConvertGrain(raw string) string {
	switch strings.TrimSpace(raw) {
	case "0":
		return "N"
	case "1":
		return "Y"
	case "2":
		return "X"
	default:
		return raw
	}
}

// Report summarises an enrichment pass.
type Report struct {
	Rows int
	// Unmatched lists references with no convention entry, in first-seen
	// order without duplicates.
	Unmatched []string
}

// Enrich fills the convention-derived columns of every row in place:
// component match, edge code, face name, edge-band count, grain and
// Unique_ID. Rows are never dropped.
func Enrich(rows []Row, table *convention.Table, logger *slog.Logger) Report {
	logger = logging.NewComponentLogger(logger, "enrich")
	report := Report{Rows: len(rows)}
	seen := map[string]struct{}{}

	for i := range rows {
		row := &rows[i]
		class, count := ClassifyRow(*row)
		row.EdgeClass = class
		row.EdgeBandCount = count
		row.Set(ColGrainDirection, ConvertGrain(row.Get(ColGrainDirection)))
		row.UniqueID = UniqueID(
			row.Get(ColProject),
			row.Get(ColCabinet),
			row.Reference(),
			row.Get(ColCuttingListNumber),
		)

		component, ok := "", false
		if table != nil {
			component, ok = table.Match(row.Reference())
		}
		row.Component = component
		row.Matched = ok
		if !ok {
			row.Set(ColEdgingDiagram, "")
			row.FaceName = ""
			ref := row.Reference()
			if _, dup := seen[ref]; !dup {
				seen[ref] = struct{}{}
				report.Unmatched = append(report.Unmatched, ref)
			}
			logger.Debug("no convention entry",
				logging.Int(logging.FieldRow, row.Line),
				logging.String("reference", ref),
			)
			continue
		}
		entry, _ := table.Lookup(component)
		code, _ := entry.Get(class.Column())
		row.Set(ColEdgingDiagram, code)
		row.FaceName = entry.Face(row.Get(ColFace))
	}

	if len(report.Unmatched) > 0 {
		logging.WarnWithContext(logger, "references without convention entry",
			"convention_unmatched",
			logging.Int("count", len(report.Unmatched)),
			logging.String("references", strings.Join(report.Unmatched, ", ")),
			logging.String(logging.FieldErrorHint, "add the components with kerf convention set"),
		)
	}
	return report
}

// Annotate fills the MPR-derived columns from an analysis summary.
func Annotate(row *Row, summary mpr.Summary) {
	row.Process = summary.ProcessSummary()
	row.VerticalDrill = summary.VerticalDetail()
	row.HorizDrill = summary.HorizontalDetail()
	row.AngleGroove = summary.AngleGrooveLength()
	row.SawGroove = summary.SawGrooveLength()
}

// ToolingFiles returns the distinct MPR file names referenced by rows,
// sorted.
func ToolingFiles(rows []Row) []string {
	set := map[string]struct{}{}
	for _, row := range rows {
		name := strings.TrimSpace(row.ToolingFile())
		if name == "" || strings.EqualFold(name, "nan") {
			continue
		}
		set[name] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// DefaultOutputPrefix is used when the configured prefix is empty or
// sanitizes to nothing.
const DefaultOutputPrefix = "To_Cutrite"

// OutputName returns the default export file name for a cutlist:
// <prefix>_<yymmdd>_<HHMM>_<cutlist file name>. The prefix is sanitized so it
// cannot introduce path separators.
func OutputName(prefix, cutlistPath string, now time.Time) string {
	prefix = textutil.SanitizeFileName(prefix)
	if prefix == "" {
		prefix = DefaultOutputPrefix
	}
	return fmt.Sprintf("%s_%s_%s", prefix, now.Format("060102_1504"), filepath.Base(cutlistPath))
}
