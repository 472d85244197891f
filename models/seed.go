package models

import "github.com/shopspring/decimal"

type standardItem struct {
	Designation string
	Zone        Zone
}

// StandardBudgetItems is the fixed grid every site starts from. Order
// matters: it is the row order of a freshly seeded budget and therefore the
// matcher's tie-break order until users reorder the sheet.
var StandardBudgetItems = []standardItem{
	{"Pieux / Micropieu", ZoneInfra},
	{"Fondation", ZoneInfra},
	{"Semelle", ZoneInfra},
	{"Longrine", ZoneInfra},
	{"Voile", ZoneInfra},
	{"Poteau", ZoneInfra},
	{"Poutre", ZoneInfra},
	{"Dalle", ZoneInfra},
	{"Plancher Haut", ZoneInfra},
	{"Voile", ZoneSuper},
	{"Poteau", ZoneSuper},
	{"Poutre", ZoneSuper},
	{"Dalle", ZoneSuper},
	{"Acrotère", ZoneSuper},
	{"Édicule", ZoneSuper},
	{"Plancher Haut", ZoneSuper},
	{"Balcons", ZoneSuper},
	{"Divers", ZoneSuper},
}

// SeedStandardItems appends any standard (Designation, Zone) pair missing
// from the budget, with planned quantity 0. The key check is exact string
// equality, not normalized: a renamed row counts as a different category on
// purpose, so users can rename without the seeder re-adding the original.
// Existing rows keep their position; idempotent.
func SeedStandardItems(existing []BudgetLine) ([]BudgetLine, bool) {
	keys := make(map[string]bool, len(existing))
	for _, line := range existing {
		keys[line.Designation+"_"+string(line.Zone)] = true
	}

	out := existing
	changed := false
	for _, item := range StandardBudgetItems {
		if keys[item.Designation+"_"+string(item.Zone)] {
			continue
		}
		out = append(out, BudgetLine{
			Designation: item.Designation,
			Planned:     decimal.Zero,
			Zone:        item.Zone,
		})
		changed = true
	}
	return out, changed
}
