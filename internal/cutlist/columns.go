package cutlist

// Source columns in file order. The input file has no header row.
const (
	ColReference         = "Reference"
	ColMaterial          = "Material"
	ColHeightNet         = "Height_Net"
	ColWidthNet          = "Width_Net"
	ColQuantity          = "Quantity"
	ColGrainDirection    = "Grain_Direction"
	ColRightEdge         = "Right_Edge"
	ColLeftEdge          = "Left_Edge"
	ColBottomEdge        = "Bottom_Edge"
	ColTopEdge           = "Top_Edge"
	ColCuttingListNumber = "Cutting_List_Number"
	ColProject           = "Project"
	ColCabinet           = "Cabinet"
	ColHeightOverall     = "Height_Overall"
	ColWidthOverall      = "Width_Overall"
	ColToolingFile       = "Tooling_File_First_Face"
	ColEdgingDiagram     = "Edging_Diagram"
	ColThickness         = "Thickness"
	ColFace              = "Face"
	ColFaceName          = "Face Name"
	ColProcessSummary    = "MPR_Process_Summary"
	ColVerticalDrill     = "Vertical_Drill_Detail"
	ColHorizontalDrill   = "Horizontal_Drill_Detail"
	ColAngleGrooveLength = "Angle_Groove_Length"
	ColSawGrooveLength   = "Saw_Groove_Length"
	ColEdgeBandCount     = "Edge_Band_Count"
	ColUniqueID          = "Unique_ID"
)

// SourceColumns lists the input columns in order.
var SourceColumns = []string{
	ColReference,
	ColMaterial,
	ColHeightNet,
	ColWidthNet,
	ColQuantity,
	ColGrainDirection,
	ColRightEdge,
	ColLeftEdge,
	ColBottomEdge,
	ColTopEdge,
	ColCuttingListNumber,
	ColProject,
	ColCabinet,
	ColHeightOverall,
	ColWidthOverall,
	ColToolingFile,
	ColEdgingDiagram,
	ColThickness,
	ColFace,
}

// DerivedColumns lists the columns appended on export, in order.
var DerivedColumns = []string{
	ColFaceName,
	ColProcessSummary,
	ColVerticalDrill,
	ColHorizontalDrill,
	ColAngleGrooveLength,
	ColSawGrooveLength,
	ColEdgeBandCount,
	ColUniqueID,
}

var sourceIndex = func() map[string]int {
	m := make(map[string]int, len(SourceColumns))
	for i, col := range SourceColumns {
		m[col] = i
	}
	return m
}()

// Header returns the output header: source columns then derived columns.
func Header() []string {
	out := make([]string, 0, len(SourceColumns)+len(DerivedColumns))
	out = append(out, SourceColumns...)
	return append(out, DerivedColumns...)
}
