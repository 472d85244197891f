package models

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ReviewKind selects which ledger a scan batch targets.
type ReviewKind string

const (
	ReviewBeton ReviewKind = "beton"
	ReviewAcier ReviewKind = "acier"
)

// ScanColumns returns the extraction schema for a kind (without Doute, which
// the extraction service adds on its own).
func ScanColumns(kind ReviewKind) []string {
	if kind == ReviewAcier {
		return []string{ColFournisseur, ColTypeAcier, ColDesignation, ColPoids}
	}
	return []string{ColFournisseur, ColDesignation, ColTypeBeton, ColVolume}
}

// repeatColumns are the columns the ditto-mark correction runs on.
func repeatColumns(kind ReviewKind) []string {
	if kind == ReviewAcier {
		return []string{ColDesignation}
	}
	return []string{ColDesignation, ColTypeBeton}
}

// ReviewRow is one extracted slip line awaiting human confirmation.
type ReviewRow struct {
	Doute bool              `json:"doute"`
	Cells map[string]string `json:"cells"`
}

// ReviewBatch is the session state of one scan under review. It exists only
// between extraction and commit/discard and never touches the persisted
// ledger; discarding it is a pure local reset.
type ReviewBatch struct {
	ID           string      `json:"id"`
	Site         string      `json:"site"`
	Kind         ReviewKind  `json:"kind"`
	Rows         []ReviewRow `json:"rows"`
	UnknownTerms []string    `json:"unknownTerms"`
	CreatedAt    time.Time   `json:"createdAt"`

	// Archived alongside the ledger append on commit.
	ImageData []byte `json:"-"`
	ImageExt  string `json:"-"`
}

// BuildReviewBatch runs the post-extraction pipeline: ditto-mark repair,
// then per-row budget matching. A row whose designation (or sub-type)
// matches no budget category of its derived zone is flagged Doute and its
// designation is collected for the reviewer. The service's own Doute flag is
// kept as-is and only ever raised here, never cleared.
func BuildReviewBatch(site string, kind ReviewKind, raw []map[string]any, budget []BudgetLine) *ReviewBatch {
	rows := make([]map[string]string, len(raw))
	doutes := make([]bool, len(raw))
	for i, r := range raw {
		cells := map[string]string{}
		for _, col := range ScanColumns(kind) {
			cells[col] = stringifyCell(r[col])
		}
		rows[i] = cells
		doutes[i] = truthyCell(r[ColDoute])
	}

	PropagateRepeats(rows, repeatColumns(kind))

	batch := &ReviewBatch{
		ID:        uuid.NewString(),
		Site:      site,
		Kind:      kind,
		CreatedAt: time.Now(),
	}

	for i, cells := range rows {
		doute := doutes[i]
		designation := cells[ColDesignation]
		subType := cells[ColTypeBeton]

		zone := DetectZone(designation + " " + subType)
		if _, ok := MatchBudgetLine(designation, subType, zone, budget); !ok {
			doute = true
			term := designation
			if term == "" {
				term = "Inconnu"
			}
			batch.UnknownTerms = append(batch.UnknownTerms, term)
		}
		batch.Rows = append(batch.Rows, ReviewRow{Doute: doute, Cells: cells})
	}
	return batch
}

// ConcreteEntries converts confirmed beton rows to ledger entries.
func (b *ReviewBatch) ConcreteEntries() []ConcreteEntry {
	entries := make([]ConcreteEntry, 0, len(b.Rows))
	for _, row := range b.Rows {
		entries = append(entries, ConcreteEntry{
			Supplier:     row.Cells[ColFournisseur],
			Designation:  row.Cells[ColDesignation],
			ConcreteType: row.Cells[ColTypeBeton],
			Volume:       CoerceQuantity(row.Cells[ColVolume]),
			Doute:        row.Doute,
		})
	}
	return entries
}

// SteelEntries converts confirmed acier rows to ledger entries.
func (b *ReviewBatch) SteelEntries() []SteelEntry {
	entries := make([]SteelEntry, 0, len(b.Rows))
	for _, row := range b.Rows {
		entries = append(entries, SteelEntry{
			Supplier:    row.Cells[ColFournisseur],
			SteelType:   row.Cells[ColTypeAcier],
			Designation: row.Cells[ColDesignation],
			Weight:      CoerceQuantity(row.Cells[ColPoids]),
			Doute:       row.Doute,
		})
	}
	return entries
}

func stringifyCell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func truthyCell(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return ParseDoute(t)
	}
	return false
}

// ReviewRegistry holds the batches pending confirmation, keyed by batch id.
// A batch is owned by its reviewing session from extraction until commit or
// discard; nothing here is persisted.
type ReviewRegistry struct {
	mu      sync.Mutex
	batches map[string]*ReviewBatch
}

func NewReviewRegistry() *ReviewRegistry {
	return &ReviewRegistry{batches: make(map[string]*ReviewBatch)}
}

func (r *ReviewRegistry) Put(b *ReviewBatch) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches[b.ID] = b
}

func (r *ReviewRegistry) Get(id string) (*ReviewBatch, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.batches[id]
	return b, ok
}

func (r *ReviewRegistry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.batches, id)
}
