package reports

import (
	"bytes"
	"fmt"
	"strings"

	"bitbucket.org/itb77/chantier_backend/models"
	"github.com/xuri/excelize/v2"
)

// recapHeaders is the export shape consumers of the recap agree on.
var recapHeaders = []string{
	"Designation", "Zone", "Prevu (m3)", "Volume Reel",
	"Etude (m3)", "Reste (m3)", "Avancement (%)",
}

// BuildSiteExport renders the styled multi-sheet xlsx download: the recap
// first (active lines only, same predicate as screen and PDF), then the raw
// tables. Each sheet gets an Excel table and autofitted columns.
func BuildSiteExport(wb *models.Workbook, recap []models.RecapLine) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Récapitulatif"); err != nil {
		return nil, err
	}

	var recapRows [][]interface{}
	for _, line := range recap {
		if !line.Active() {
			continue
		}
		planned, _ := line.Planned.Round(2).Float64()
		actual, _ := line.Actual.Round(2).Float64()
		study, _ := line.Study.Round(2).Float64()
		remaining, _ := line.Remaining.Round(2).Float64()
		percent, _ := line.Percent.Round(2).Float64()
		recapRows = append(recapRows, []interface{}{
			line.Designation, string(line.Zone), planned, actual, study, remaining, percent,
		})
	}
	if err := writeStyledSheet(f, "Récapitulatif", recapHeaders, recapRows); err != nil {
		return nil, err
	}

	var betonRows [][]interface{}
	for _, e := range wb.Concrete {
		v, _ := e.Volume.Float64()
		betonRows = append(betonRows, []interface{}{e.Supplier, e.Designation, e.ConcreteType, v})
	}
	if err := addStyledSheet(f, "Béton",
		[]string{models.ColFournisseur, models.ColDesignation, models.ColTypeBeton, models.ColVolume},
		betonRows); err != nil {
		return nil, err
	}

	var acierRows [][]interface{}
	for _, e := range wb.Steel {
		w, _ := e.Weight.Float64()
		acierRows = append(acierRows, []interface{}{e.Supplier, e.SteelType, e.Designation, w})
	}
	if err := addStyledSheet(f, "Acier",
		[]string{models.ColFournisseur, models.ColTypeAcier, models.ColDesignation, models.ColPoids},
		acierRows); err != nil {
		return nil, err
	}

	var prevRows [][]interface{}
	for _, b := range wb.Budget {
		p, _ := b.Planned.Float64()
		prevRows = append(prevRows, []interface{}{b.Designation, p, string(b.Zone)})
	}
	if err := addStyledSheet(f, "Prévisionnel",
		[]string{models.ColDesignation, models.ColPrevu, models.ColZone}, prevRows); err != nil {
		return nil, err
	}

	var etudeBRows [][]interface{}
	for _, s := range wb.ConcreteStudy {
		v, _ := s.Study.Float64()
		etudeBRows = append(etudeBRows, []interface{}{s.Designation, v, string(s.Zone)})
	}
	if err := addStyledSheet(f, "Étude Béton",
		[]string{models.ColDesignation, models.ColEtude, models.ColZone}, etudeBRows); err != nil {
		return nil, err
	}

	var etudeARows [][]interface{}
	for _, s := range wb.SteelStudy {
		ha, _ := s.AcierHA.Float64()
		ts, _ := s.AcierTS.Float64()
		etudeARows = append(etudeARows, []interface{}{s.Designation, ha, ts, string(s.Zone)})
	}
	if err := addStyledSheet(f, "Étude Acier",
		[]string{models.ColDesignation, models.ColAcierHA, models.ColAcierTS, models.ColZone},
		etudeARows); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func addStyledSheet(f *excelize.File, name string, headers []string, rows [][]interface{}) error {
	if _, err := f.NewSheet(name); err != nil {
		return err
	}
	return writeStyledSheet(f, name, headers, rows)
}

func writeStyledSheet(f *excelize.File, name string, headers []string, rows [][]interface{}) error {
	widths := make([]int, len(headers))
	for c, h := range headers {
		widths[c] = len(h)
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(name, cell, h); err != nil {
			return err
		}
	}
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(name, cell, v); err != nil {
				return err
			}
			if l := len(fmt.Sprint(v)); c < len(widths) && l > widths[c] {
				widths[c] = l
			}
		}
	}

	// A table needs at least one data row; a bare header keeps no styling.
	if len(rows) > 0 {
		endCell, err := excelize.CoordinatesToCellName(len(headers), len(rows)+1)
		if err != nil {
			return err
		}
		if err := f.AddTable(name, &excelize.Table{
			Range:     "A1:" + endCell,
			Name:      "Table_" + sanitizeTableName(name),
			StyleName: "TableStyleMedium2",
		}); err != nil {
			return err
		}
	}

	for c := range headers {
		col, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(name, col, col, float64(widths[c]+2)); err != nil {
			return err
		}
	}
	return nil
}

func sanitizeTableName(sheet string) string {
	return strings.ReplaceAll(models.RemoveAccents(sheet), " ", "_")
}
