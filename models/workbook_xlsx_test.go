package models

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func TestWorkbookRoundtrip(t *testing.T) {
	wb := NewWorkbook()
	wb.Concrete = []ConcreteEntry{
		{Supplier: "Lafarge", Designation: "Voile RDC", ConcreteType: "C25/30", Volume: decimal.RequireFromString("12.5"), Doute: true},
	}
	wb.Steel = []SteelEntry{
		{Supplier: "AMS", SteelType: "HA12", Designation: "Voile R+2", Weight: decimal.NewFromInt(860)},
	}
	wb.Budget = []BudgetLine{
		{Designation: "Voile", Planned: decimal.NewFromInt(40), Zone: ZoneSuper},
		{Designation: "Fondation", Planned: decimal.NewFromInt(100), Zone: ZoneInfra},
	}
	wb.ConcreteStudy = []ConcreteStudyLine{
		{Designation: "Voile", Study: decimal.RequireFromString("38.2"), Zone: ZoneSuper},
	}
	wb.SteelStudy = []SteelStudyLine{
		{Designation: "Voile", AcierHA: decimal.NewFromInt(900), AcierTS: decimal.NewFromInt(120), Zone: ZoneSuper},
	}

	data, err := EncodeWorkbook(wb)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeWorkbook(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(got.Concrete) != 1 {
		t.Fatalf("concrete rows = %d", len(got.Concrete))
	}
	c := got.Concrete[0]
	if c.Supplier != "Lafarge" || c.ConcreteType != "C25/30" || !c.Volume.Equal(decimal.RequireFromString("12.5")) || !c.Doute {
		t.Fatalf("concrete = %+v", c)
	}

	if len(got.Steel) != 1 || got.Steel[0].SteelType != "HA12" || !got.Steel[0].Weight.Equal(decimal.NewFromInt(860)) {
		t.Fatalf("steel = %+v", got.Steel)
	}

	if len(got.Budget) != 2 {
		t.Fatalf("budget rows = %d", len(got.Budget))
	}
	if got.Budget[0].Zone != ZoneSuper || got.Budget[1].Zone != ZoneInfra {
		t.Fatalf("zones = %s, %s", got.Budget[0].Zone, got.Budget[1].Zone)
	}

	if len(got.ConcreteStudy) != 1 || !got.ConcreteStudy[0].Study.Equal(decimal.RequireFromString("38.2")) {
		t.Fatalf("study = %+v", got.ConcreteStudy)
	}
	if len(got.SteelStudy) != 1 || !got.SteelStudy[0].AcierTS.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("steel study = %+v", got.SteelStudy)
	}
}

func TestDecodeWorkbookEmpty(t *testing.T) {
	data, err := EncodeWorkbook(NewWorkbook())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	wb, err := DecodeWorkbook(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(wb.Concrete) != 0 || len(wb.Budget) != 0 {
		t.Fatalf("empty workbook decoded non-empty: %+v", wb)
	}
}

// Workbooks written before the Zone column existed decode with every budget
// row in INFRA, matching how the sheets were migrated by hand.
func TestDecodeWorkbookLegacyWithoutZone(t *testing.T) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetPrev); err != nil {
		t.Fatalf("sheet: %v", err)
	}
	if err := f.SetSheetRow(SheetPrev, "A1", &[]interface{}{ColDesignation, ColPrevu}); err != nil {
		t.Fatalf("header: %v", err)
	}
	if err := f.SetSheetRow(SheetPrev, "A2", &[]interface{}{"Voile", 40}); err != nil {
		t.Fatalf("row: %v", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}

	wb, err := DecodeWorkbook(buf.Bytes())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(wb.Budget) != 1 {
		t.Fatalf("budget rows = %d", len(wb.Budget))
	}
	if wb.Budget[0].Zone != ZoneInfra {
		t.Fatalf("zone = %s, want INFRA", wb.Budget[0].Zone)
	}
	// The other sheets are absent entirely; that is a valid first-use file.
	if len(wb.Concrete) != 0 || len(wb.Steel) != 0 {
		t.Fatal("missing sheets decoded non-empty")
	}
}

func TestDecodeWorkbookCoercesBadCells(t *testing.T) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetBeton); err != nil {
		t.Fatalf("sheet: %v", err)
	}
	header := []interface{}{ColFournisseur, ColDesignation, ColTypeBeton, ColVolume, ColDoute}
	if err := f.SetSheetRow(SheetBeton, "A1", &header); err != nil {
		t.Fatalf("header: %v", err)
	}
	if err := f.SetSheetRow(SheetBeton, "A2", &[]interface{}{"X", "Voile", "C25/30", "12,5", "vrai"}); err != nil {
		t.Fatalf("row: %v", err)
	}
	if err := f.SetSheetRow(SheetBeton, "A3", &[]interface{}{"X", "Dalle", "C25/30", "douze", ""}); err != nil {
		t.Fatalf("row: %v", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	wb, err := DecodeWorkbook(buf.Bytes())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if !wb.Concrete[0].Volume.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("comma volume = %s", wb.Concrete[0].Volume)
	}
	if !wb.Concrete[0].Doute {
		t.Fatal("vrai not parsed")
	}
	if !wb.Concrete[1].Volume.IsZero() {
		t.Fatalf("bad cell = %s, want 0", wb.Concrete[1].Volume)
	}
	if wb.Concrete[1].Doute {
		t.Fatal("empty Doute parsed true")
	}
}

func TestDecodeWorkbookGarbage(t *testing.T) {
	if _, err := DecodeWorkbook([]byte("not an xlsx")); err == nil {
		t.Fatal("expected error")
	}
}

func TestCoerceQuantity(t *testing.T) {
	cases := map[string]string{
		"12.5":  "12.5",
		"12,5":  "12.5",
		" 8 ":   "8",
		"":      "0",
		"n/a":   "0",
		"-3,25": "-3.25",
	}
	for in, want := range cases {
		if got := CoerceQuantity(in); !got.Equal(decimal.RequireFromString(want)) {
			t.Fatalf("CoerceQuantity(%q) = %s, want %s", in, got, want)
		}
	}
}
