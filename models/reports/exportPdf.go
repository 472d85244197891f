package reports

import (
	"bytes"
	"fmt"
	"time"

	"bitbucket.org/itb77/chantier_backend/models"
	"github.com/go-pdf/fpdf"
)

// BuildRecapPDF renders the one-page site recap: a section per zone, INFRA
// first, inactive lines filtered, negative remainders in red. fpdf core
// fonts are latin-1 only, so labels are transliterated before drawing.
func BuildRecapPDF(site string, recap []models.RecapLine) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Arial", "B", 15)
		pdf.CellFormat(0, 10, "RECAPITULATIF CHANTIER", "", 1, "C", false, 0, "")
		pdf.Ln(5)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 10, "Chantier : "+latin(site), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 10, "Date : "+time.Now().Format("02/01/2006"), "", 1, "L", false, 0, "")
	pdf.Ln(5)

	for _, zone := range []models.Zone{models.ZoneInfra, models.ZoneSuper} {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, string(zone)+"STRUCTURE", "", 1, "L", false, 0, "")
		pdf.Ln(2)

		var active []models.RecapLine
		for _, line := range recap {
			if line.Zone == zone && line.Active() {
				active = append(active, line)
			}
		}

		if len(active) == 0 {
			pdf.SetFont("Arial", "I", 10)
			pdf.CellFormat(0, 10, "Aucune donnee.", "", 1, "L", false, 0, "")
			pdf.Ln(5)
			continue
		}

		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(50, 8, "Designation", "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 8, "Budget", "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 8, "Conso", "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 8, "Etude", "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 8, "Reste", "1", 0, "C", false, 0, "")
		pdf.CellFormat(20, 8, "%", "1", 1, "C", false, 0, "")

		pdf.SetFont("Arial", "", 10)
		for _, line := range active {
			pdf.CellFormat(50, 8, latin(line.Designation), "1", 0, "L", false, 0, "")
			pdf.CellFormat(30, 8, line.Planned.StringFixed(2), "1", 0, "C", false, 0, "")
			pdf.CellFormat(30, 8, line.Actual.StringFixed(2), "1", 0, "C", false, 0, "")
			pdf.CellFormat(30, 8, line.Study.StringFixed(2), "1", 0, "C", false, 0, "")
			if line.Remaining.IsNegative() {
				pdf.SetTextColor(255, 0, 0)
			}
			pdf.CellFormat(30, 8, line.Remaining.StringFixed(2), "1", 0, "C", false, 0, "")
			pdf.CellFormat(20, 8, line.Percent.StringFixed(2)+"%", "1", 1, "C", false, 0, "")
			pdf.SetTextColor(0, 0, 0)
		}
		pdf.Ln(5)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func latin(s string) string {
	return models.RemoveAccents(s)
}
