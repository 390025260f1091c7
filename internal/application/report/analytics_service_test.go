package report

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/medstock/backend/internal/domain/ledger"
	"github.com/medstock/backend/internal/domain/report"
	"github.com/medstock/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sale builds a backdated sale movement with price per base unit
func sale(t *testing.T, m *ledger.Medicine, qty, prev int64, price float64, at time.Time) ledger.Movement {
	t.Helper()
	mv, err := ledger.NewMovement(m.ID, ledger.MovementTypeSale, -qty, prev, prev-qty, "tester", "cashier")
	require.NoError(t, err)
	mv.WithUnit("SINGLE", qty, decimal.NewFromFloat(price))
	mv.WithOccurredAt(at)
	return *mv
}

func newAnalyticsService(medicines []ledger.Medicine, movements []ledger.Movement, now time.Time) *AnalyticsService {
	svc := NewAnalyticsService(
		&stubMedicineRepo{medicines: medicines},
		&stubMovementRepo{movements: movements},
		DefaultAnalyticsConfig(),
	)
	svc.now = func() time.Time { return now }
	return svc
}

func TestRestockRecommendations(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	inWindow := now.AddDate(0, 0, -10)

	critical := newMedicine(t, "Amoxicillin 250mg", "Antibiotic", 10, 0.4)
	high := newMedicine(t, "Paracetamol 500mg", "Analgesic", 40, 0.3)
	slow := newMedicine(t, "Zinc Tablets", "Supplement", 500, 0.1)
	steady := newMedicine(t, "Vitamin C", "Supplement", 5000, 0.05)

	movements := []ledger.Movement{
		sale(t, critical, 60, 100, 1, inWindow),
		sale(t, high, 120, 200, 1, inWindow),
		sale(t, slow, 15, 515, 1, inWindow),
		sale(t, steady, 30, 5030, 1, inWindow),
	}

	svc := newAnalyticsService(
		[]ledger.Medicine{*critical, *high, *slow, *steady},
		movements, now,
	)

	recs, err := svc.RestockRecommendations(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 3, "slow mover with low priority should be excluded")

	byID := make(map[uuid.UUID]report.RestockRecommendation)
	for _, r := range recs {
		byID[r.MedicineID] = r
	}

	t.Run("critical under a week of cover", func(t *testing.T) {
		r := byID[critical.ID]
		assert.Equal(t, report.RestockPriorityCritical, r.Priority)
		assert.Equal(t, 5, r.DaysOfStock)
		assert.Equal(t, int64(60), r.TotalSold)
		// ceil(2/day * 30 days) minus the 10 already on the shelf
		assert.Equal(t, int64(50), r.SuggestedReorder)
	})

	t.Run("high under two weeks of cover", func(t *testing.T) {
		r := byID[high.ID]
		assert.Equal(t, report.RestockPriorityHigh, r.Priority)
		assert.Equal(t, 10, r.DaysOfStock)
		// ceil(4/day * 30 days) minus the 40 already on the shelf
		assert.Equal(t, int64(80), r.SuggestedReorder)
	})

	t.Run("low priority fast mover gets the minimum batch", func(t *testing.T) {
		r := byID[steady.ID]
		assert.Equal(t, report.RestockPriorityLow, r.Priority)
		assert.Equal(t, int64(50), r.SuggestedReorder, "suggestion below minimum batch is bumped")
	})

	t.Run("most urgent first", func(t *testing.T) {
		assert.Equal(t, critical.ID, recs[0].MedicineID)
		assert.Equal(t, high.ID, recs[1].MedicineID)
		assert.Equal(t, steady.ID, recs[2].MedicineID)
	})
}

func TestRestockRecommendationsTieBreak(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	inWindow := now.AddDate(0, 0, -10)

	// Both critical; the bigger seller outranks the one with less cover.
	busy := newMedicine(t, "Metformin 500mg", "Antidiabetic", 50, 0.2)
	trickle := newMedicine(t, "Atenolol 50mg", "Cardiac", 2, 0.2)

	movements := []ledger.Movement{
		sale(t, busy, 300, 350, 1, inWindow),
		sale(t, trickle, 30, 32, 1, inWindow),
	}

	svc := newAnalyticsService([]ledger.Medicine{*busy, *trickle}, movements, now)
	recs, err := svc.RestockRecommendations(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)

	// busy: 10/day, 5 days of cover; trickle: 1/day, 2 days of cover
	require.Equal(t, report.RestockPriorityCritical, recs[0].Priority)
	require.Equal(t, report.RestockPriorityCritical, recs[1].Priority)
	assert.Equal(t, busy.ID, recs[0].MedicineID)
	assert.Equal(t, trickle.ID, recs[1].MedicineID)
	assert.Equal(t, int64(250), recs[0].SuggestedReorder)
	assert.Equal(t, int64(50), recs[1].SuggestedReorder, "suggestion below minimum batch is bumped")
}

func TestRestockRecommendationsNoSales(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	idle := newMedicine(t, "Gauze Rolls", "Supplies", 300, 0.2)

	svc := newAnalyticsService([]ledger.Medicine{*idle}, nil, now)
	recs, err := svc.RestockRecommendations(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recs, "nothing sold means nothing to restock")
}

func TestDeadStock(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	dead := newMedicine(t, "Cough Syrup", "Respiratory", 50, 2)
	neverSold := newMedicine(t, "Eye Drops", "Ophthalmic", 30, 1.5)
	selling := newMedicine(t, "Paracetamol 500mg", "Analgesic", 100, 0.3)
	emptyShelf := newMedicine(t, "Bandages", "Supplies", 0, 0.1)

	movements := []ledger.Movement{
		// last sold two months ago, outside the lookback window
		sale(t, dead, 5, 55, 3, now.AddDate(0, 0, -60)),
		sale(t, selling, 10, 110, 1, now.AddDate(0, 0, -5)),
	}

	svc := newAnalyticsService(
		[]ledger.Medicine{*dead, *neverSold, *selling, *emptyShelf},
		movements, now,
	)

	items, err := svc.DeadStock(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	// sorted by tied-up capital, largest first
	assert.Equal(t, dead.ID, items[0].MedicineID)
	assert.True(t, items[0].TiedUpCapital.Equal(decimal.NewFromInt(100)))
	require.NotNil(t, items[0].DaysSinceSale)
	assert.Equal(t, 60, *items[0].DaysSinceSale)
	require.NotNil(t, items[0].LastSoldAt)
	assert.Equal(t, "2026-06-21", *items[0].LastSoldAt)

	assert.Equal(t, neverSold.ID, items[1].MedicineID)
	assert.Nil(t, items[1].LastSoldAt)
	assert.Nil(t, items[1].DaysSinceSale)
}

func TestSellerRankings(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	start := now.AddDate(0, 0, -30)
	inWindow := now.AddDate(0, 0, -10)

	best := newMedicine(t, "Paracetamol 500mg", "Analgesic", 100, 0.3)
	middle := newMedicine(t, "Amoxicillin 250mg", "Antibiotic", 80, 0.4)
	worst := newMedicine(t, "Zinc Tablets", "Supplement", 60, 0.1)
	unsold := newMedicine(t, "Eye Drops", "Ophthalmic", 30, 1.5)

	movements := []ledger.Movement{
		sale(t, best, 100, 200, 1, inWindow),
		sale(t, best, 50, 100, 1, inWindow),
		sale(t, middle, 80, 160, 2, inWindow),
		sale(t, worst, 10, 70, 0.5, inWindow),
	}

	svc := newAnalyticsService(
		[]ledger.Medicine{*best, *middle, *worst, *unsold},
		movements, now,
	)
	filter := SellerRankingFilter{StartDate: start, EndDate: now}

	t.Run("top sellers by quantity", func(t *testing.T) {
		top, err := svc.TopSellers(context.Background(), filter)
		require.NoError(t, err)
		require.Len(t, top, 3, "unsold medicines are not ranked")

		assert.Equal(t, best.ID, top[0].MedicineID)
		assert.Equal(t, int64(150), top[0].QuantitySold)
		assert.True(t, top[0].Revenue.Equal(decimal.NewFromInt(150)))
		// 150 revenue minus 150 units at 0.3 cost
		assert.True(t, top[0].Profit.Equal(decimal.NewFromInt(105)))
	})

	t.Run("bottom sellers worst first", func(t *testing.T) {
		bottom, err := svc.BottomSellers(context.Background(), filter)
		require.NoError(t, err)
		require.Len(t, bottom, 3)
		assert.Equal(t, worst.ID, bottom[0].MedicineID)
		assert.Equal(t, int64(10), bottom[0].QuantitySold)
	})

	t.Run("top n truncates", func(t *testing.T) {
		limited := filter
		limited.TopN = 1
		top, err := svc.TopSellers(context.Background(), limited)
		require.NoError(t, err)
		require.Len(t, top, 1)
		assert.Equal(t, best.ID, top[0].MedicineID)
	})

	t.Run("inverted window rejected", func(t *testing.T) {
		_, err := svc.TopSellers(context.Background(), SellerRankingFilter{
			StartDate: now, EndDate: start,
		})
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVALID_PARAMETER", de.Code)
	})
}

func TestCategoryPerformance(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	start := now.AddDate(0, 0, -30)
	inWindow := now.AddDate(0, 0, -10)

	para := newMedicine(t, "Paracetamol 500mg", "Analgesic", 100, 0.3)
	ibu := newMedicine(t, "Ibuprofen 200mg", "Analgesic", 80, 0.4)
	amox := newMedicine(t, "Amoxicillin 250mg", "Antibiotic", 60, 0.4)
	uncategorized := newMedicine(t, "Misc Item", "", 40, 0.1)

	movements := []ledger.Movement{
		sale(t, para, 100, 200, 1, inWindow),
		sale(t, ibu, 50, 130, 2, inWindow),
		sale(t, amox, 40, 100, 3, inWindow),
		sale(t, uncategorized, 10, 50, 1, inWindow),
	}

	svc := newAnalyticsService(
		[]ledger.Medicine{*para, *ibu, *amox, *uncategorized},
		movements, now,
	)

	categories, err := svc.CategoryPerformance(context.Background(), SellerRankingFilter{
		StartDate: start, EndDate: now,
	})
	require.NoError(t, err)
	require.Len(t, categories, 3)

	// revenue descending: analgesic 200, antibiotic 120, uncategorized 10
	assert.Equal(t, "Analgesic", categories[0].Category)
	assert.Equal(t, int64(2), categories[0].MedicineCount)
	assert.Equal(t, int64(150), categories[0].QuantitySold)
	assert.True(t, categories[0].Revenue.Equal(decimal.NewFromInt(200)))

	assert.Equal(t, "Antibiotic", categories[1].Category)
	assert.Equal(t, "uncategorized", categories[2].Category)
}
