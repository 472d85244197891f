package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func reviewBudget() []BudgetLine {
	return []BudgetLine{
		{Designation: "Fondation", Planned: decimal.NewFromInt(100), Zone: ZoneInfra},
		{Designation: "Voile", Planned: decimal.NewFromInt(40), Zone: ZoneSuper},
	}
}

func TestBuildReviewBatchMatching(t *testing.T) {
	raw := []map[string]any{
		{
			ColFournisseur: "Lafarge",
			ColDesignation: "Voile RDC Bat A",
			ColTypeBeton:   "C25/30",
			ColVolume:      12.5,
			ColDoute:       false,
		},
		{
			ColFournisseur: "Cemex",
			ColDesignation: "Enrobé parking",
			ColTypeBeton:   "",
			ColVolume:      "8,0",
			ColDoute:       false,
		},
	}

	batch := BuildReviewBatch("Chantier Melun", ReviewBeton, raw, reviewBudget())
	if batch.ID == "" {
		t.Fatal("batch has no id")
	}
	if len(batch.Rows) != 2 {
		t.Fatalf("got %d rows", len(batch.Rows))
	}
	if batch.Rows[0].Doute {
		t.Fatal("matched row flagged")
	}
	if !batch.Rows[1].Doute {
		t.Fatal("unmatched row not flagged")
	}
	if len(batch.UnknownTerms) != 1 || batch.UnknownTerms[0] != "Enrobé parking" {
		t.Fatalf("unknown terms = %v", batch.UnknownTerms)
	}
	// Numeric cells come back as floats from the JSON decode.
	if batch.Rows[0].Cells[ColVolume] != "12.5" {
		t.Fatalf("volume cell = %q", batch.Rows[0].Cells[ColVolume])
	}
}

func TestBuildReviewBatchServiceDouteKept(t *testing.T) {
	raw := []map[string]any{{
		ColDesignation: "Voile RDC",
		ColDoute:       true,
	}}
	batch := BuildReviewBatch("s", ReviewBeton, raw, reviewBudget())
	if !batch.Rows[0].Doute {
		t.Fatal("service Doute flag lost on a matched row")
	}
}

func TestBuildReviewBatchRepeatsBeforeMatching(t *testing.T) {
	raw := []map[string]any{
		{ColDesignation: "Fondation semelle B2", ColTypeBeton: "C25/30", ColVolume: 10},
		{ColDesignation: `"`, ColTypeBeton: "u", ColVolume: 4},
	}
	batch := BuildReviewBatch("s", ReviewBeton, raw, reviewBudget())

	if got := batch.Rows[1].Cells[ColDesignation]; got != "Fondation semelle B2" {
		t.Fatalf("ditto not propagated: %q", got)
	}
	// Propagation happens before matching, so the second row matches too.
	if batch.Rows[1].Doute {
		t.Fatal("propagated row flagged")
	}
	if len(batch.UnknownTerms) != 0 {
		t.Fatalf("unknown terms = %v", batch.UnknownTerms)
	}
}

func TestBuildReviewBatchEmptyDesignation(t *testing.T) {
	raw := []map[string]any{{ColVolume: 5}}
	batch := BuildReviewBatch("s", ReviewBeton, raw, reviewBudget())
	if !batch.Rows[0].Doute {
		t.Fatal("empty row not flagged")
	}
	if len(batch.UnknownTerms) != 1 || batch.UnknownTerms[0] != "Inconnu" {
		t.Fatalf("unknown terms = %v", batch.UnknownTerms)
	}
}

func TestConcreteEntries(t *testing.T) {
	batch := &ReviewBatch{
		Kind: ReviewBeton,
		Rows: []ReviewRow{{
			Doute: true,
			Cells: map[string]string{
				ColFournisseur: "Lafarge",
				ColDesignation: "Voile RDC",
				ColTypeBeton:   "C25/30",
				ColVolume:      "12,5",
			},
		}},
	}
	entries := batch.ConcreteEntries()
	if len(entries) != 1 {
		t.Fatalf("got %d entries", len(entries))
	}
	e := entries[0]
	if e.Supplier != "Lafarge" || e.Designation != "Voile RDC" || e.ConcreteType != "C25/30" {
		t.Fatalf("entry = %+v", e)
	}
	if !e.Volume.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("volume = %s", e.Volume)
	}
	if !e.Doute {
		t.Fatal("Doute dropped")
	}
}

func TestSteelEntries(t *testing.T) {
	batch := &ReviewBatch{
		Kind: ReviewAcier,
		Rows: []ReviewRow{{
			Cells: map[string]string{
				ColFournisseur: "AMS",
				ColTypeAcier:   "HA12",
				ColDesignation: "Voile R+2",
				ColPoids:       "860",
			},
		}},
	}
	entries := batch.SteelEntries()
	if len(entries) != 1 {
		t.Fatalf("got %d entries", len(entries))
	}
	if entries[0].SteelType != "HA12" || !entries[0].Weight.Equal(decimal.NewFromInt(860)) {
		t.Fatalf("entry = %+v", entries[0])
	}
}

func TestReviewRegistry(t *testing.T) {
	reg := NewReviewRegistry()
	batch := &ReviewBatch{ID: "b1"}
	reg.Put(batch)

	got, ok := reg.Get("b1")
	if !ok || got != batch {
		t.Fatal("lookup failed")
	}
	reg.Delete("b1")
	if _, ok := reg.Get("b1"); ok {
		t.Fatal("delete failed")
	}
	// Deleting twice is a no-op.
	reg.Delete("b1")
}
