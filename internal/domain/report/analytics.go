package report

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RestockPriority buckets how urgently a medicine needs reordering
type RestockPriority string

const (
	RestockPriorityCritical RestockPriority = "critical" // under a week of cover
	RestockPriorityHigh     RestockPriority = "high"     // under two weeks
	RestockPriorityMedium   RestockPriority = "medium"   // under a month
	RestockPriorityLow      RestockPriority = "low"
)

// Rank orders priorities for sorting, most urgent first
func (p RestockPriority) Rank() int {
	switch p {
	case RestockPriorityCritical:
		return 0
	case RestockPriorityHigh:
		return 1
	case RestockPriorityMedium:
		return 2
	default:
		return 3
	}
}

// RestockRecommendation suggests a reorder quantity for one medicine
// based on its sales velocity over the lookback window.
type RestockRecommendation struct {
	MedicineID       uuid.UUID       `json:"medicine_id"`
	Name             string          `json:"name"`
	Category         string          `json:"category"`
	CurrentStock     int64           `json:"current_stock"`
	TotalSold        int64           `json:"total_sold"`
	AvgDailySales    decimal.Decimal `json:"avg_daily_sales"`
	DaysOfStock      int             `json:"days_of_stock"` // sentinel when sales are zero
	SuggestedReorder int64           `json:"suggested_reorder"`
	Priority         RestockPriority `json:"priority"`
}

// DeadStockItem is a medicine with shelf stock but no sales in the window
type DeadStockItem struct {
	MedicineID     uuid.UUID       `json:"medicine_id"`
	Name           string          `json:"name"`
	Category       string          `json:"category"`
	CurrentStock   int64           `json:"current_stock"`
	TiedUpCapital  decimal.Decimal `json:"tied_up_capital"` // current stock at cost
	LastSoldAt     *string         `json:"last_sold_at,omitempty"`
	DaysSinceSale  *int            `json:"days_since_sale,omitempty"`
}

// SellerPerformance ranks one medicine by window sales
type SellerPerformance struct {
	MedicineID   uuid.UUID       `json:"medicine_id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	QuantitySold int64           `json:"quantity_sold"` // base units
	Revenue      decimal.Decimal `json:"revenue"`
	Profit       decimal.Decimal `json:"profit"` // revenue minus quantity at cost
}

// CategoryPerformance aggregates seller performance per category
type CategoryPerformance struct {
	Category      string          `json:"category"`
	MedicineCount int64           `json:"medicine_count"`
	QuantitySold  int64           `json:"quantity_sold"`
	Revenue       decimal.Decimal `json:"revenue"`
	Profit        decimal.Decimal `json:"profit"`
}
