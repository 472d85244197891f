package models

import "strings"

// repeatPlaceholders are what the slips (and the extraction service reading
// them) use for "same as above".
var repeatPlaceholders = map[string]bool{
	"u": true,
	"U": true,
	`"`: true,
}

// PropagateRepeats repairs the ditto-mark transcription artifact: in each
// target column, a placeholder cell takes the value of the cell directly
// above it. Single top-down pass per column, columns independent of each
// other, row 0 never modified. Rows are mutated in place and returned.
func PropagateRepeats(rows []map[string]string, columns []string) []map[string]string {
	for _, col := range columns {
		for i := 1; i < len(rows); i++ {
			if repeatPlaceholders[strings.TrimSpace(rows[i][col])] {
				rows[i][col] = rows[i-1][col]
			}
		}
	}
	return rows
}
