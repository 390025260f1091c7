package report

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/medstock/backend/internal/domain/ledger"
	"github.com/medstock/backend/internal/domain/report"
	"github.com/medstock/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AnalyticsConfig tunes the sales-velocity analytics
type AnalyticsConfig struct {
	// LookbackDays is the sales window used to estimate velocity
	LookbackDays int
	// MinimumBatch is the smallest reorder quantity worth placing
	MinimumBatch int64
	// BufferDays is how many days of cover a reorder should buy
	BufferDays int
	// FastMoverThreshold excludes slow movers from restock advice:
	// a low-priority medicine with window sales at or under this
	// many base units is not worth reordering yet
	FastMoverThreshold int64
	// DaysOfStockSentinel stands in for "infinite cover" when a
	// medicine had no sales in the window
	DaysOfStockSentinel int
}

// DefaultAnalyticsConfig returns the stock analytics defaults
func DefaultAnalyticsConfig() AnalyticsConfig {
	return AnalyticsConfig{
		LookbackDays:        30,
		MinimumBatch:        50,
		BufferDays:          30,
		FastMoverThreshold:  20,
		DaysOfStockSentinel: 999,
	}
}

// SellerRankingFilter bounds a seller ranking query
type SellerRankingFilter struct {
	StartDate time.Time `form:"start_date" time_format:"2006-01-02" binding:"required"`
	EndDate   time.Time `form:"end_date" time_format:"2006-01-02" binding:"required"`
	TopN      int       `form:"top_n" binding:"omitempty,min=1,max=100"`
}

// AnalyticsService derives restock advice and seller rankings from the
// movement ledger. All quantities are in base units.
type AnalyticsService struct {
	medicineRepo ledger.MedicineRepository
	movementRepo ledger.MovementRepository
	config       AnalyticsConfig
	now          func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(
	medicineRepo ledger.MedicineRepository,
	movementRepo ledger.MovementRepository,
	config AnalyticsConfig,
) *AnalyticsService {
	if config.LookbackDays <= 0 {
		config = DefaultAnalyticsConfig()
	}
	return &AnalyticsService{
		medicineRepo: medicineRepo,
		movementRepo: movementRepo,
		config:       config,
		now:          time.Now,
	}
}

// saleTotals is one medicine's sales fold over a window
type saleTotals struct {
	quantity int64
	revenue  decimal.Decimal
}

// foldSales sums sale movements per medicine over the window
func (s *AnalyticsService) foldSales(ctx context.Context, start, end time.Time) (map[uuid.UUID]saleTotals, error) {
	movements, err := s.movementRepo.FindInWindow(ctx, start, end)
	if err != nil {
		return nil, err
	}
	totals := make(map[uuid.UUID]saleTotals)
	for i := range movements {
		mv := &movements[i]
		if mv.Type != ledger.MovementTypeSale {
			continue
		}
		t := totals[mv.MedicineID]
		t.quantity += mv.AbsQuantity()
		t.revenue = t.revenue.Add(mv.Revenue())
		totals[mv.MedicineID] = t
	}
	return totals, nil
}

// RestockRecommendations suggests reorder quantities from recent sales
// velocity. Medicines that are low priority and barely selling are left
// out so the list stays actionable.
func (s *AnalyticsService) RestockRecommendations(ctx context.Context) ([]report.RestockRecommendation, error) {
	end := s.now()
	start := end.AddDate(0, 0, -s.config.LookbackDays)

	totals, err := s.foldSales(ctx, start, end)
	if err != nil {
		return nil, err
	}

	medicines, err := s.medicineRepo.FindAll(ctx, ledger.MedicineFilter{ActiveOnly: true})
	if err != nil {
		return nil, err
	}

	lookback := decimal.NewFromInt(int64(s.config.LookbackDays))
	recommendations := make([]report.RestockRecommendation, 0, len(medicines))
	for i := range medicines {
		m := &medicines[i]
		totalSold := totals[m.ID].quantity

		avgDaily := decimal.NewFromInt(totalSold).Div(lookback)
		daysOfStock := s.config.DaysOfStockSentinel
		if totalSold > 0 {
			daysOfStock = int(decimal.NewFromInt(m.CurrentStock).Div(avgDaily).IntPart())
		}

		priority := s.classify(daysOfStock)
		if priority == report.RestockPriorityLow && totalSold <= s.config.FastMoverThreshold {
			continue
		}

		// Order enough to top stock back up to bufferDays of cover;
		// what is already on the shelf counts toward that cover.
		suggested := avgDaily.Mul(decimal.NewFromInt(int64(s.config.BufferDays))).Ceil().IntPart() - m.CurrentStock
		if suggested < s.config.MinimumBatch {
			suggested = s.config.MinimumBatch
		}

		recommendations = append(recommendations, report.RestockRecommendation{
			MedicineID:       m.ID,
			Name:             m.Name,
			Category:         m.Category,
			CurrentStock:     m.CurrentStock,
			TotalSold:        totalSold,
			AvgDailySales:    avgDaily.Round(2),
			DaysOfStock:      daysOfStock,
			SuggestedReorder: suggested,
			Priority:         priority,
		})
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		if recommendations[i].Priority != recommendations[j].Priority {
			return recommendations[i].Priority.Rank() < recommendations[j].Priority.Rank()
		}
		return recommendations[i].TotalSold > recommendations[j].TotalSold
	})
	return recommendations, nil
}

// classify buckets days of remaining cover into a restock priority
func (s *AnalyticsService) classify(daysOfStock int) report.RestockPriority {
	switch {
	case daysOfStock < 7:
		return report.RestockPriorityCritical
	case daysOfStock < 14:
		return report.RestockPriorityHigh
	case daysOfStock < 30:
		return report.RestockPriorityMedium
	default:
		return report.RestockPriorityLow
	}
}

// DeadStock lists medicines holding stock that did not sell at all in
// the lookback window, with the capital tied up in them.
func (s *AnalyticsService) DeadStock(ctx context.Context) ([]report.DeadStockItem, error) {
	end := s.now()
	start := end.AddDate(0, 0, -s.config.LookbackDays)

	totals, err := s.foldSales(ctx, start, end)
	if err != nil {
		return nil, err
	}

	medicines, err := s.medicineRepo.FindAll(ctx, ledger.MedicineFilter{ActiveOnly: true})
	if err != nil {
		return nil, err
	}

	items := make([]report.DeadStockItem, 0)
	for i := range medicines {
		m := &medicines[i]
		if m.CurrentStock <= 0 || totals[m.ID].quantity > 0 {
			continue
		}

		item := report.DeadStockItem{
			MedicineID:    m.ID,
			Name:          m.Name,
			Category:      m.Category,
			CurrentStock:  m.CurrentStock,
			TiedUpCapital: m.StockValue(),
		}
		if lastSale, err := s.lastSale(ctx, m.ID); err == nil && lastSale != nil {
			soldAt := lastSale.CreatedAt.Format("2006-01-02")
			days := int(end.Sub(lastSale.CreatedAt).Hours() / 24)
			item.LastSoldAt = &soldAt
			item.DaysSinceSale = &days
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].TiedUpCapital.GreaterThan(items[j].TiedUpCapital)
	})
	return items, nil
}

// lastSale returns the most recent sale movement, or nil if the
// medicine never sold.
func (s *AnalyticsService) lastSale(ctx context.Context, medicineID uuid.UUID) (*ledger.Movement, error) {
	saleType := ledger.MovementTypeSale
	movements, err := s.movementRepo.FindByMedicine(ctx, medicineID, ledger.MovementFilter{
		Filter: shared.Filter{Page: 1, PageSize: 1, OrderBy: "created_at", OrderDir: "desc"},
		Type:   &saleType,
	})
	if err != nil {
		return nil, err
	}
	if len(movements) == 0 {
		return nil, nil
	}
	return &movements[0], nil
}

// TopSellers ranks medicines by base units sold in the window, best first
func (s *AnalyticsService) TopSellers(ctx context.Context, filter SellerRankingFilter) ([]report.SellerPerformance, error) {
	return s.rankSellers(ctx, filter, true)
}

// BottomSellers ranks medicines that did sell, worst first. Medicines
// with zero sales belong in the dead stock report instead.
func (s *AnalyticsService) BottomSellers(ctx context.Context, filter SellerRankingFilter) ([]report.SellerPerformance, error) {
	return s.rankSellers(ctx, filter, false)
}

func (s *AnalyticsService) rankSellers(ctx context.Context, filter SellerRankingFilter, best bool) ([]report.SellerPerformance, error) {
	performances, err := s.sellerPerformances(ctx, filter)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(performances, func(i, j int) bool {
		if performances[i].QuantitySold != performances[j].QuantitySold {
			if best {
				return performances[i].QuantitySold > performances[j].QuantitySold
			}
			return performances[i].QuantitySold < performances[j].QuantitySold
		}
		if best {
			return performances[i].Revenue.GreaterThan(performances[j].Revenue)
		}
		return performances[i].Revenue.LessThan(performances[j].Revenue)
	})

	topN := filter.TopN
	if topN <= 0 {
		topN = 10
	}
	if len(performances) > topN {
		performances = performances[:topN]
	}
	return performances, nil
}

// sellerPerformances folds window sales into one entry per medicine
// that sold at least one base unit.
func (s *AnalyticsService) sellerPerformances(ctx context.Context, filter SellerRankingFilter) ([]report.SellerPerformance, error) {
	if filter.EndDate.Before(filter.StartDate) {
		return nil, shared.ErrInvalidParameter
	}

	totals, err := s.foldSales(ctx, filter.StartDate, filter.EndDate)
	if err != nil {
		return nil, err
	}
	if len(totals) == 0 {
		return []report.SellerPerformance{}, nil
	}

	ids := make([]uuid.UUID, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	medicines, err := s.medicineRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	performances := make([]report.SellerPerformance, 0, len(medicines))
	for i := range medicines {
		m := &medicines[i]
		t := totals[m.ID]
		if t.quantity == 0 {
			continue
		}
		cost := m.CostPrice.Mul(decimal.NewFromInt(t.quantity))
		performances = append(performances, report.SellerPerformance{
			MedicineID:   m.ID,
			Name:         m.Name,
			Category:     m.Category,
			QuantitySold: t.quantity,
			Revenue:      t.revenue,
			Profit:       t.revenue.Sub(cost),
		})
	}
	return performances, nil
}

// CategoryPerformance aggregates window sales per category
func (s *AnalyticsService) CategoryPerformance(ctx context.Context, filter SellerRankingFilter) ([]report.CategoryPerformance, error) {
	performances, err := s.sellerPerformances(ctx, filter)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string]*report.CategoryPerformance)
	for _, p := range performances {
		category := p.Category
		if category == "" {
			category = "uncategorized"
		}
		cp, ok := byCategory[category]
		if !ok {
			cp = &report.CategoryPerformance{Category: category}
			byCategory[category] = cp
		}
		cp.MedicineCount++
		cp.QuantitySold += p.QuantitySold
		cp.Revenue = cp.Revenue.Add(p.Revenue)
		cp.Profit = cp.Profit.Add(p.Profit)
	}

	out := make([]report.CategoryPerformance, 0, len(byCategory))
	for _, cp := range byCategory {
		out = append(out, *cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Revenue.GreaterThan(out[j].Revenue)
	})
	return out, nil
}
