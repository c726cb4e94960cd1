package model

// ImportRowError describes why a single imported row was rejected.
// Row numbers are 1-based and include the header row, matching what the
// operator sees in a spreadsheet.
type ImportRowError struct {
	Row       int    `json:"row"`
	StudentID string `json:"student_id,omitempty"`
	Reason    string `json:"reason"`
}

// ImportReport summarizes a best-effort bulk import: accepted rows are
// persisted, rejected rows are listed individually.
type ImportReport struct {
	TotalRows int              `json:"total_rows"`
	Imported  int              `json:"imported"`
	Rejected  int              `json:"rejected"`
	Errors    []ImportRowError `json:"errors,omitempty"`
}
