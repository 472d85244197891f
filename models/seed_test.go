package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSeedStandardItemsFromEmpty(t *testing.T) {
	lines, changed := SeedStandardItems(nil)
	if !changed {
		t.Fatal("seeding an empty budget reported no change")
	}
	if len(lines) != len(StandardBudgetItems) {
		t.Fatalf("got %d lines, want %d", len(lines), len(StandardBudgetItems))
	}
	for i, item := range StandardBudgetItems {
		if lines[i].Designation != item.Designation || lines[i].Zone != item.Zone {
			t.Fatalf("line %d: got %s/%s, want %s/%s",
				i, lines[i].Designation, lines[i].Zone, item.Designation, item.Zone)
		}
		if !lines[i].Planned.IsZero() {
			t.Fatalf("line %d seeded with planned %s", i, lines[i].Planned)
		}
	}
}

func TestSeedStandardItemsIdempotent(t *testing.T) {
	first, _ := SeedStandardItems(nil)
	second, changed := SeedStandardItems(first)
	if changed {
		t.Fatal("second seeding reported a change")
	}
	if len(second) != len(first) {
		t.Fatalf("got %d lines, want %d", len(second), len(first))
	}
}

func TestSeedStandardItemsKeepsCustomRows(t *testing.T) {
	existing := []BudgetLine{
		{Designation: "Mur de soutènement", Planned: decimal.NewFromInt(25), Zone: ZoneInfra},
		{Designation: "Voile", Planned: decimal.NewFromInt(80), Zone: ZoneSuper},
	}

	lines, changed := SeedStandardItems(existing)
	if !changed {
		t.Fatal("expected missing standard rows to be appended")
	}
	if lines[0].Designation != "Mur de soutènement" || !lines[0].Planned.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("custom row moved or altered: %+v", lines[0])
	}
	if lines[1].Designation != "Voile" || !lines[1].Planned.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("existing standard row altered: %+v", lines[1])
	}

	// The standard Voile/SUPER already exists and must not be re-added.
	count := 0
	for _, l := range lines {
		if l.Designation == "Voile" && l.Zone == ZoneSuper {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("Voile/SUPER appears %d times", count)
	}
	if len(lines) != len(StandardBudgetItems)+1 {
		t.Fatalf("got %d lines, want %d", len(lines), len(StandardBudgetItems)+1)
	}
}

// A renamed category is a different key on purpose: the seeder must put the
// standard name back only when the exact pair is gone, which it is here.
func TestSeedStandardItemsExactKey(t *testing.T) {
	existing := []BudgetLine{{Designation: "voile", Zone: ZoneSuper}}
	lines, _ := SeedStandardItems(existing)

	found := false
	for _, l := range lines {
		if l.Designation == "Voile" && l.Zone == ZoneSuper {
			found = true
		}
	}
	if !found {
		t.Fatal("lowercase rename suppressed the standard row; key check must be exact")
	}
}
