package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Sheet names and column headers of the per-site workbook. The headers are
// the contract with the workbooks already in the store. Do not rename.
const (
	SheetBeton      = "Beton"
	SheetAcier      = "Acier"
	SheetPrev       = "Previsionnel"
	SheetEtudeBeton = "Etude_Beton"
	SheetEtudeAcier = "Etude_Acier"

	ColFournisseur = "Fournisseur"
	ColDesignation = "Designation"
	ColTypeBeton   = "Type de Beton"
	ColVolume      = "Volume (m3)"
	ColTypeAcier   = "Type d Acier"
	ColPoids       = "Poids (kg)"
	ColPrevu       = "Prevu (m3)"
	ColZone        = "Zone"
	ColEtude       = "Etude (m3)"
	ColAcierHA     = "Acier HA"
	ColAcierTS     = "Acier TS"
	ColDoute       = "Doute"
)

var (
	ColsBeton      = []string{ColFournisseur, ColDesignation, ColTypeBeton, ColVolume, ColDoute}
	ColsAcier      = []string{ColFournisseur, ColTypeAcier, ColDesignation, ColPoids, ColDoute}
	ColsPrev       = []string{ColDesignation, ColPrevu, ColZone}
	ColsEtudeBeton = []string{ColDesignation, ColEtude, ColZone}
	ColsEtudeAcier = []string{ColDesignation, ColAcierHA, ColAcierTS, ColZone}
)

// ConcreteEntry is one committed concrete delivery (Beton sheet row).
type ConcreteEntry struct {
	Supplier     string          `json:"supplier"`
	Designation  string          `json:"designation"`
	ConcreteType string          `json:"concreteType"`
	Volume       decimal.Decimal `json:"volume"`
	Doute        bool            `json:"doute"`
}

// SteelEntry is one committed steel delivery (Acier sheet row).
type SteelEntry struct {
	Supplier    string          `json:"supplier"`
	SteelType   string          `json:"steelType"`
	Designation string          `json:"designation"`
	Weight      decimal.Decimal `json:"weight"`
	Doute       bool            `json:"doute"`
}

// BudgetLine is one planned-quantity category (Previsionnel sheet row).
type BudgetLine struct {
	Designation string          `json:"designation"`
	Planned     decimal.Decimal `json:"planned"`
	Zone        Zone            `json:"zone"`
}

// ConcreteStudyLine carries the engineering-estimate quantity for a budget
// category. It is joined into the recap but never drives matching.
type ConcreteStudyLine struct {
	Designation string          `json:"designation"`
	Study       decimal.Decimal `json:"study"`
	Zone        Zone            `json:"zone"`
}

// SteelStudyLine is a free estimate row of the Etude_Acier sheet.
type SteelStudyLine struct {
	Designation string          `json:"designation"`
	AcierHA     decimal.Decimal `json:"acierHA"`
	AcierTS     decimal.Decimal `json:"acierTS"`
	Zone        Zone            `json:"zone"`
}

// Workbook is the typed in-memory form of one site's xlsx.
type Workbook struct {
	Concrete      []ConcreteEntry
	Steel         []SteelEntry
	Budget        []BudgetLine
	ConcreteStudy []ConcreteStudyLine
	SteelStudy    []SteelStudyLine
}

func NewWorkbook() *Workbook {
	return &Workbook{}
}

// CoerceQuantity parses a workbook or scan cell as a quantity. A cell that
// fails to parse is coerced to 0 rather than failing the whole batch; the
// slips are hand-written and a single bad digit must not block a commit.
func CoerceQuantity(cell string) decimal.Decimal {
	s := strings.TrimSpace(cell)
	if s == "" {
		return decimal.Zero
	}
	// French slips use the decimal comma.
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseDoute reads the persisted low-confidence flag.
func ParseDoute(cell string) bool {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "true", "vrai", "1", "oui":
		return true
	}
	return false
}
