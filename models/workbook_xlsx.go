package models

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// EncodeWorkbook renders the typed workbook back to xlsx, one sheet per
// table, header row first. Quantities are written as numbers so the file
// stays usable in Excel directly.
func EncodeWorkbook(wb *Workbook) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetBeton); err != nil {
		return nil, err
	}
	for _, name := range []string{SheetAcier, SheetPrev, SheetEtudeBeton, SheetEtudeAcier} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	if err := writeSheet(f, SheetBeton, ColsBeton, len(wb.Concrete), func(i int) []interface{} {
		e := wb.Concrete[i]
		vol, _ := e.Volume.Float64()
		return []interface{}{e.Supplier, e.Designation, e.ConcreteType, vol, e.Doute}
	}); err != nil {
		return nil, err
	}
	if err := writeSheet(f, SheetAcier, ColsAcier, len(wb.Steel), func(i int) []interface{} {
		e := wb.Steel[i]
		w, _ := e.Weight.Float64()
		return []interface{}{e.Supplier, e.SteelType, e.Designation, w, e.Doute}
	}); err != nil {
		return nil, err
	}
	if err := writeSheet(f, SheetPrev, ColsPrev, len(wb.Budget), func(i int) []interface{} {
		b := wb.Budget[i]
		p, _ := b.Planned.Float64()
		return []interface{}{b.Designation, p, string(b.Zone)}
	}); err != nil {
		return nil, err
	}
	if err := writeSheet(f, SheetEtudeBeton, ColsEtudeBeton, len(wb.ConcreteStudy), func(i int) []interface{} {
		s := wb.ConcreteStudy[i]
		v, _ := s.Study.Float64()
		return []interface{}{s.Designation, v, string(s.Zone)}
	}); err != nil {
		return nil, err
	}
	if err := writeSheet(f, SheetEtudeAcier, ColsEtudeAcier, len(wb.SteelStudy), func(i int) []interface{} {
		s := wb.SteelStudy[i]
		ha, _ := s.AcierHA.Float64()
		ts, _ := s.AcierTS.Float64()
		return []interface{}{s.Designation, ha, ts, string(s.Zone)}
	}); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, n int, rowValues func(i int) []interface{}) error {
	for c, h := range headers {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for i := 0; i < n; i++ {
		for c, v := range rowValues(i) {
			cell, err := excelize.CoordinatesToCellName(c+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// DecodeWorkbook parses a site xlsx into the typed workbook. Schema repair
// happens here, once, instead of being scattered through handlers: missing
// sheets become empty tables (first-use workbooks), a missing Zone column
// defaults every row to INFRA, and quantity cells that fail to parse are
// coerced to 0.
func DecodeWorkbook(data []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid workbook: %w", err)
	}
	defer f.Close()

	wb := NewWorkbook()

	for _, row := range sheetRows(f, SheetBeton) {
		wb.Concrete = append(wb.Concrete, ConcreteEntry{
			Supplier:     row[ColFournisseur],
			Designation:  row[ColDesignation],
			ConcreteType: row[ColTypeBeton],
			Volume:       CoerceQuantity(row[ColVolume]),
			Doute:        ParseDoute(row[ColDoute]),
		})
	}
	for _, row := range sheetRows(f, SheetAcier) {
		wb.Steel = append(wb.Steel, SteelEntry{
			Supplier:    row[ColFournisseur],
			SteelType:   row[ColTypeAcier],
			Designation: row[ColDesignation],
			Weight:      CoerceQuantity(row[ColPoids]),
			Doute:       ParseDoute(row[ColDoute]),
		})
	}
	for _, row := range sheetRows(f, SheetPrev) {
		wb.Budget = append(wb.Budget, BudgetLine{
			Designation: row[ColDesignation],
			Planned:     CoerceQuantity(row[ColPrevu]),
			Zone:        ParseZone(row[ColZone]),
		})
	}
	for _, row := range sheetRows(f, SheetEtudeBeton) {
		wb.ConcreteStudy = append(wb.ConcreteStudy, ConcreteStudyLine{
			Designation: row[ColDesignation],
			Study:       CoerceQuantity(row[ColEtude]),
			Zone:        ParseZone(row[ColZone]),
		})
	}
	for _, row := range sheetRows(f, SheetEtudeAcier) {
		wb.SteelStudy = append(wb.SteelStudy, SteelStudyLine{
			Designation: row[ColDesignation],
			AcierHA:     CoerceQuantity(row[ColAcierHA]),
			AcierTS:     CoerceQuantity(row[ColAcierTS]),
			Zone:        ParseZone(row[ColZone]),
		})
	}

	return wb, nil
}

// sheetRows reads a sheet into header-keyed maps. A missing sheet yields no
// rows; fully empty rows are skipped.
func sheetRows(f *excelize.File, sheet string) []map[string]string {
	raw, err := f.GetRows(sheet)
	if err != nil || len(raw) < 2 {
		return nil
	}

	headers := raw[0]
	var out []map[string]string
	for _, cells := range raw[1:] {
		row := map[string]string{}
		empty := true
		for c, h := range headers {
			v := ""
			if c < len(cells) {
				v = cells[c]
			}
			if v != "" {
				empty = false
			}
			row[h] = v
		}
		if !empty {
			out = append(out, row)
		}
	}
	return out
}
