package report

import (
	"time"

	"github.com/google/uuid"
)

// StockComparison checks a declared closing count against what the
// ledger implies. Expected = opening + purchased - sold; variance is
// declared minus expected, so a positive variance means surplus on the
// shelf and a negative one means shrinkage.
type StockComparison struct {
	Opening         int64 `json:"opening"`
	Purchased       int64 `json:"purchased"`
	Sold            int64 `json:"sold"`
	ExpectedClosing int64 `json:"expected_closing"`
	DeclaredClosing int64 `json:"declared_closing"`
	Variance        int64 `json:"variance"`
	Matches         bool  `json:"matches"`
}

// StockAuditRow summarizes one medicine's ledger activity inside a
// reporting window. Medicines with no movements appear with zero totals.
type StockAuditRow struct {
	MedicineID    uuid.UUID `json:"medicine_id"`
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	TotalSold     int64     `json:"total_sold"`     // sum of |sale| deltas
	TotalLost     int64     `json:"total_lost"`     // sum of |loss| deltas
	TotalExpired  int64     `json:"total_expired"`  // sum of |expired| deltas
	TotalAdjusted int64     `json:"total_adjusted"` // net signed adjustment
	CurrentStock  int64     `json:"current_stock"`
}

// StockAuditReport is the full audit fold for a window
type StockAuditReport struct {
	WindowStart time.Time       `json:"window_start"`
	WindowEnd   time.Time       `json:"window_end"`
	Rows        []StockAuditRow `json:"rows"`
}
