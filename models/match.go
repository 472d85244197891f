package models

import "strings"

// MatchBudgetLine maps a scanned entry onto a budget category. Candidates are
// restricted to the entry's zone; the category label must appear inside the
// normalized designation or inside the normalized sub-type (a match on either
// counts), either verbatim or with both sides singularized. Containment
// rather than equality is what lets "voile rdc batiment A" land on the
// generic "Voile" category.
//
// The first candidate in row order wins. There is no specificity ranking:
// callers that need determinism must fix the budget-table order first.
//
// Returns the index of the matched line, or (-1, false) when nothing in the
// zone matches; the caller is responsible for flagging the entry.
func MatchBudgetLine(designation, subType string, zone Zone, lines []BudgetLine) (int, bool) {
	searchDes := NormalizeLabel(designation)
	searchSub := NormalizeLabel(subType)

	for i, line := range lines {
		if line.Zone != zone {
			continue
		}
		key := NormalizeLabel(line.Designation)
		if key == "" {
			continue
		}
		if containsForm(searchDes, key) || containsForm(searchSub, key) {
			return i, true
		}
	}
	return -1, false
}

func containsForm(search, key string) bool {
	if search == "" {
		return false
	}
	if strings.Contains(search, key) {
		return true
	}
	return strings.Contains(Singularize(search), Singularize(key))
}
