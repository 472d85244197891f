package models

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// RecapLine is one derived budget-vs-actual row. Never persisted: the recap
// is recomputed from scratch on every request by replaying the full concrete
// ledger against the current budget table.
type RecapLine struct {
	Designation string          `json:"designation"`
	Zone        Zone            `json:"zone"`
	Planned     decimal.Decimal `json:"planned"`
	Actual      decimal.Decimal `json:"actual"`
	Study       decimal.Decimal `json:"study"`
	Remaining   decimal.Decimal `json:"remaining"`
	Percent     decimal.Decimal `json:"percent"`
}

// Active reports whether the line carries any data. Screen, PDF and xlsx
// exports all filter on this same predicate; the full table still contains
// inactive lines.
func (l RecapLine) Active() bool {
	return l.Planned.IsPositive() || l.Actual.IsPositive() || l.Study.IsPositive()
}

// Reconcile replays the concrete ledger against the budget table.
//
// For every entry the zone is re-derived from designation + concrete type,
// the matcher is run against the budget lines of that zone, and on a hit the
// full volume accumulates on that single category (first match wins). An
// entry matching no category contributes to no total at all. The quantity
// is dropped from the aggregate; the review-time Doute flag is the only
// trace of it.
//
// Study quantities are left-joined by exact (Designation, Zone), missing
// values default to 0. Output keeps budget row order within each zone,
// INFRA lines first, then SUPER.
//
// The second return value is the per-concrete-type volume breakdown of
// whatever landed on the "fondation" category, kept because site managers
// track foundation pours by concrete grade.
func Reconcile(concrete []ConcreteEntry, budget []BudgetLine, study []ConcreteStudyLine) ([]RecapLine, map[string]decimal.Decimal) {
	actuals := make([]decimal.Decimal, len(budget))
	for i := range actuals {
		actuals[i] = decimal.Zero
	}
	fondationDetails := map[string]decimal.Decimal{}

	for _, entry := range concrete {
		zone := DetectZone(entry.Designation + " " + entry.ConcreteType)
		idx, ok := MatchBudgetLine(entry.Designation, entry.ConcreteType, zone, budget)
		if !ok {
			continue
		}
		actuals[idx] = actuals[idx].Add(entry.Volume)

		if NormalizeLabel(budget[idx].Designation) == "fondation" {
			grade := entry.ConcreteType
			if grade == "" {
				grade = "Non spécifié"
			}
			fondationDetails[grade] = fondationDetails[grade].Add(entry.Volume)
		}
	}

	studyByKey := map[string]decimal.Decimal{}
	for _, s := range study {
		studyByKey[s.Designation+"_"+string(s.Zone)] = s.Study
	}

	lines := make([]RecapLine, 0, len(budget))
	for _, zone := range []Zone{ZoneInfra, ZoneSuper} {
		for i, b := range budget {
			if b.Zone != zone {
				continue
			}
			studyVal, ok := studyByKey[b.Designation+"_"+string(b.Zone)]
			if !ok {
				studyVal = decimal.Zero
			}
			percent := decimal.Zero
			if b.Planned.IsPositive() {
				percent = actuals[i].Div(b.Planned).Mul(hundred)
			}
			lines = append(lines, RecapLine{
				Designation: b.Designation,
				Zone:        b.Zone,
				Planned:     b.Planned,
				Actual:      actuals[i],
				Study:       studyVal,
				Remaining:   b.Planned.Sub(actuals[i]),
				Percent:     percent,
			})
		}
	}
	return lines, fondationDetails
}
