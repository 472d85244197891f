package models

import "strings"

// Zone splits the budget between substructure and superstructure.
type Zone string

const (
	ZoneInfra Zone = "INFRA"
	ZoneSuper Zone = "SUPER"
)

// infraKeywords are the lexical markers of substructure work on French
// delivery slips. Substring match, order-independent.
var infraKeywords = []string{
	"r-", "s-sol", "sous-sol", "fondation", "radier",
	"pieux", "semelle", "longrine", "infra", "gros beton",
}

// DetectZone classifies a free-text label. Total: every input yields INFRA
// or SUPER, with SUPER as the default. The zone of a ledger entry is always
// re-derived from its text, never stored as ground truth.
func DetectZone(text string) Zone {
	t := NormalizeLabel(text)
	for _, kw := range infraKeywords {
		if strings.Contains(t, kw) {
			return ZoneInfra
		}
	}
	return ZoneSuper
}

// ParseZone maps a workbook cell to a Zone. Anything that is not SUPER
// (including the empty cell of a pre-Zone workbook) defaults to INFRA, which
// mirrors how the sheets were migrated when the Zone column was introduced.
func ParseZone(cell string) Zone {
	if strings.EqualFold(strings.TrimSpace(cell), string(ZoneSuper)) {
		return ZoneSuper
	}
	return ZoneInfra
}
