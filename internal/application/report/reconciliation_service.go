package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/medstock/backend/internal/domain/ledger"
	"github.com/medstock/backend/internal/domain/report"
	"github.com/medstock/backend/internal/domain/shared"
)

// StockComparisonRequest carries the counts for one reconciliation check.
// Opening, purchased and sold come from whatever records the pharmacist
// trusts; declared closing is what was physically counted on the shelf.
type StockComparisonRequest struct {
	Opening         int64 `json:"opening"`
	Purchased       int64 `json:"purchased"`
	Sold            int64 `json:"sold"`
	DeclaredClosing int64 `json:"declared_closing"`
}

// AuditReportFilter bounds the ledger window for an audit fold
type AuditReportFilter struct {
	StartDate time.Time `form:"start_date" time_format:"2006-01-02" binding:"required"`
	EndDate   time.Time `form:"end_date" time_format:"2006-01-02" binding:"required"`
}

// ReconciliationService answers "does the shelf match the books". The
// comparison itself is pure arithmetic; the audit report folds the
// movement ledger over a window.
type ReconciliationService struct {
	medicineRepo ledger.MedicineRepository
	movementRepo ledger.MovementRepository
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(
	medicineRepo ledger.MedicineRepository,
	movementRepo ledger.MovementRepository,
) *ReconciliationService {
	return &ReconciliationService{
		medicineRepo: medicineRepo,
		movementRepo: movementRepo,
	}
}

// CompareStock computes expected closing stock from the given counts and
// compares it with the declared count. Expected = opening + purchased -
// sold. Variance is declared minus expected: positive means surplus,
// negative means shrinkage. All four inputs must be non-negative.
func (s *ReconciliationService) CompareStock(req StockComparisonRequest) (*report.StockComparison, error) {
	if req.Opening < 0 || req.Purchased < 0 || req.Sold < 0 || req.DeclaredClosing < 0 {
		return nil, shared.ErrInvalidParameter
	}

	expected := req.Opening + req.Purchased - req.Sold
	variance := req.DeclaredClosing - expected
	return &report.StockComparison{
		Opening:         req.Opening,
		Purchased:       req.Purchased,
		Sold:            req.Sold,
		ExpectedClosing: expected,
		DeclaredClosing: req.DeclaredClosing,
		Variance:        variance,
		Matches:         variance == 0,
	}, nil
}

// AuditReport folds every ledger movement inside the window into one row
// per medicine. Medicines with no movements in the window still get a
// row with zero totals, so a quiet shelf is visible rather than missing.
// Deactivated medicines keep their rows too: their ledger history is
// part of the audit trail even after they leave the shelf.
func (s *ReconciliationService) AuditReport(ctx context.Context, filter AuditReportFilter) (*report.StockAuditReport, error) {
	if filter.EndDate.Before(filter.StartDate) {
		return nil, shared.ErrInvalidParameter
	}

	medicines, err := s.medicineRepo.FindAll(ctx, ledger.MedicineFilter{})
	if err != nil {
		return nil, err
	}

	movements, err := s.movementRepo.FindInWindow(ctx, filter.StartDate, filter.EndDate)
	if err != nil {
		return nil, err
	}

	rows := make(map[uuid.UUID]*report.StockAuditRow, len(medicines))
	order := make([]uuid.UUID, 0, len(medicines))
	for i := range medicines {
		m := &medicines[i]
		rows[m.ID] = &report.StockAuditRow{
			MedicineID:   m.ID,
			Name:         m.Name,
			Category:     m.Category,
			CurrentStock: m.CurrentStock,
		}
		order = append(order, m.ID)
	}

	for i := range movements {
		mv := &movements[i]
		row, ok := rows[mv.MedicineID]
		if !ok {
			continue
		}
		switch mv.Type {
		case ledger.MovementTypeSale:
			row.TotalSold += mv.AbsQuantity()
		case ledger.MovementTypeLoss:
			row.TotalLost += mv.AbsQuantity()
		case ledger.MovementTypeExpired:
			row.TotalExpired += mv.AbsQuantity()
		case ledger.MovementTypeAdjustment:
			row.TotalAdjusted += mv.QuantityDelta
		}
	}

	out := make([]report.StockAuditRow, 0, len(order))
	for _, id := range order {
		out = append(out, *rows[id])
	}
	return &report.StockAuditReport{
		WindowStart: filter.StartDate,
		WindowEnd:   filter.EndDate,
		Rows:        out,
	}, nil
}
