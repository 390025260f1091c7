package handler

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	appledger "github.com/medstock/backend/internal/application/ledger"
	appreport "github.com/medstock/backend/internal/application/report"
	"github.com/medstock/backend/internal/domain/ledger"
	"github.com/medstock/backend/internal/domain/report"
	"github.com/medstock/backend/internal/infrastructure/persistence"
	"github.com/medstock/backend/internal/interfaces/http/dto"
	"github.com/medstock/backend/internal/interfaces/http/router"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newReportAPI(t *testing.T) (*gin.Engine, *appledger.LedgerService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&ledger.Medicine{}, &ledger.Movement{}))

	medicineRepo := persistence.NewGormMedicineRepository(db)
	movementRepo := persistence.NewGormMovementRepository(db)
	scope := persistence.NewGormTransactionScope(db)
	ledgerService := appledger.NewLedgerService(medicineRepo, movementRepo, scope)

	reconciliation := appreport.NewReconciliationService(medicineRepo, movementRepo)
	analytics := appreport.NewAnalyticsService(medicineRepo, movementRepo, appreport.DefaultAnalyticsConfig())

	r := router.New(gin.New())
	r.Register(NewMedicineHandler(ledgerService), NewReportHandler(reconciliation, analytics))
	return r.Engine(), ledgerService
}

func TestCompareStock(t *testing.T) {
	engine, _ := newReportAPI(t)

	tests := []struct {
		name     string
		body     map[string]any
		variance int64
		matches  bool
	}{
		{"exact match", map[string]any{"opening": 100, "purchased": 50, "sold": 30, "declared_closing": 120}, 0, true},
		{"shrinkage", map[string]any{"opening": 100, "purchased": 0, "sold": 30, "declared_closing": 65}, -5, false},
		{"surplus", map[string]any{"opening": 100, "purchased": 0, "sold": 30, "declared_closing": 72}, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, engine, http.MethodPost, "/api/v1/reconciliation/compare", tt.body)

			require.Equal(t, http.StatusOK, w.Code)
			resp := decodeResponse[report.StockComparison](t, w)
			assert.Equal(t, tt.variance, resp.Data.Variance)
			assert.Equal(t, tt.matches, resp.Data.Matches)
		})
	}
}

func TestCompareStock_NegativeInput(t *testing.T) {
	engine, _ := newReportAPI(t)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/reconciliation/compare", map[string]any{
		"opening": -1, "purchased": 0, "sold": 0, "declared_closing": 0,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse[any](t, w)
	assert.Equal(t, dto.ErrCodeInvalidParameter, resp.Error.Code)
}

func TestAuditReport(t *testing.T) {
	engine, _ := newReportAPI(t)
	created := registerMedicine(t, engine, "Paracetamol 500mg", 100)
	registerMedicine(t, engine, "Ibuprofen 200mg", 50)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/medicines/"+created.Medicine.ID.String()+"/deduct", map[string]any{
		"quantity":          4,
		"unit_type":         "SINGLE",
		"performed_by":      "bob",
		"performed_by_role": "cashier",
	})
	require.Equal(t, http.StatusOK, w.Code)

	today := time.Now().Format("2006-01-02")
	w = doJSON(t, engine, http.MethodGet, "/api/v1/reconciliation/audit?start_date="+today+"&end_date="+today, nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeResponse[report.StockAuditReport](t, w)
	require.Len(t, resp.Data.Rows, 2, "every active medicine gets a row")

	var sold, quiet *report.StockAuditRow
	for i := range resp.Data.Rows {
		if resp.Data.Rows[i].MedicineID == created.Medicine.ID {
			sold = &resp.Data.Rows[i]
		} else {
			quiet = &resp.Data.Rows[i]
		}
	}
	require.NotNil(t, sold)
	require.NotNil(t, quiet)
	assert.Equal(t, int64(4), sold.TotalSold)
	assert.Equal(t, int64(96), sold.CurrentStock)
	assert.Equal(t, int64(0), quiet.TotalSold)
}

func TestAuditReport_MissingDates(t *testing.T) {
	engine, _ := newReportAPI(t)

	w := doJSON(t, engine, http.MethodGet, "/api/v1/reconciliation/audit", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRestockRecommendations(t *testing.T) {
	engine, _ := newReportAPI(t)
	created := registerMedicine(t, engine, "Paracetamol 500mg", 200)

	// Heavy sales push the medicine toward its reorder threshold.
	for i := 0; i < 3; i++ {
		w := doJSON(t, engine, http.MethodPost, "/api/v1/medicines/"+created.Medicine.ID.String()+"/deduct", map[string]any{
			"quantity":          6,
			"unit_type":         "STRIP",
			"performed_by":      "bob",
			"performed_by_role": "cashier",
		})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doJSON(t, engine, http.MethodGet, "/api/v1/reports/restock-recommendations", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse[[]report.RestockRecommendation](t, w)
	require.NotEmpty(t, resp.Data)
	rec := resp.Data[0]
	assert.Equal(t, created.Medicine.ID, rec.MedicineID)
	assert.Equal(t, int64(180), rec.TotalSold)
	assert.Greater(t, rec.SuggestedReorder, int64(0))
}

func TestDeadStock(t *testing.T) {
	engine, _ := newReportAPI(t)
	created := registerMedicine(t, engine, "Paracetamol 500mg", 40)

	w := doJSON(t, engine, http.MethodGet, "/api/v1/reports/dead-stock", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse[[]report.DeadStockItem](t, w)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, created.Medicine.ID, resp.Data[0].MedicineID)
	assert.True(t, resp.Data[0].TiedUpCapital.Equal(decimal.NewFromInt(12)), "40 units at cost 0.3")
	assert.Nil(t, resp.Data[0].LastSoldAt)
}

func TestSellerRankings(t *testing.T) {
	engine, _ := newReportAPI(t)
	fast := registerMedicine(t, engine, "Paracetamol 500mg", 500)
	slow := registerMedicine(t, engine, "Ibuprofen 200mg", 500)

	sell := func(id string, strips int) {
		w := doJSON(t, engine, http.MethodPost, "/api/v1/medicines/"+id+"/deduct", map[string]any{
			"quantity":          strips,
			"unit_type":         "STRIP",
			"performed_by":      "bob",
			"performed_by_role": "cashier",
		})
		require.Equal(t, http.StatusOK, w.Code)
	}
	sell(fast.Medicine.ID.String(), 10)
	sell(slow.Medicine.ID.String(), 2)

	today := time.Now().Format("2006-01-02")
	window := "start_date=" + today + "&end_date=" + today

	t.Run("top sellers", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodGet, "/api/v1/reports/top-sellers?"+window, nil)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse[[]report.SellerPerformance](t, w)
		require.Len(t, resp.Data, 2)
		assert.Equal(t, fast.Medicine.ID, resp.Data[0].MedicineID)
		assert.Equal(t, int64(100), resp.Data[0].QuantitySold)
	})

	t.Run("bottom sellers", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodGet, "/api/v1/reports/bottom-sellers?"+window, nil)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse[[]report.SellerPerformance](t, w)
		require.Len(t, resp.Data, 2)
		assert.Equal(t, slow.Medicine.ID, resp.Data[0].MedicineID)
	})

	t.Run("top_n limits results", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodGet, "/api/v1/reports/top-sellers?"+window+"&top_n=1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse[[]report.SellerPerformance](t, w)
		assert.Len(t, resp.Data, 1)
	})

	t.Run("category performance", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodGet, "/api/v1/reports/category-performance?"+window, nil)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse[[]report.CategoryPerformance](t, w)
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "Analgesic", resp.Data[0].Category)
		assert.Equal(t, int64(120), resp.Data[0].QuantitySold)
		assert.Equal(t, int64(2), resp.Data[0].MedicineCount)
	})

	t.Run("missing window", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodGet, "/api/v1/reports/top-sellers", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
