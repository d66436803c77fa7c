package history

import "time"

// Run is one confirmed export.
type Run struct {
	ID             int64
	StartedAt      time.Time
	CutlistPath    string
	OutputPath     string
	ProjectDir     string
	RowCount       int
	UnmatchedCount int
	ToolDiameter   float64
	FilesChanged   int

	// Files and Rows are populated by Record callers and by Get.
	Files []FileChange
	Rows  []ExportedRow
}

// FileChange is the outcome for one MPR file in a run.
type FileChange struct {
	Path             string
	BackupPath       string
	Changed          bool
	ComponentRemoved bool
	Macro124Removed  int
	Conversions      int
	LA100            float64
	BR100            float64
	Error            string
}

// ExportedRow ties a Unique_ID to the run that exported it.
type ExportedRow struct {
	UniqueID  string
	Project   string
	Cabinet   string
	Reference string
}
