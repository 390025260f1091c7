package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/medstock/backend/internal/domain/ledger"
	"github.com/medstock/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// UnitRequest describes one sellable pack size at registration time
type UnitRequest struct {
	Type                string          `json:"type" binding:"required"`
	QuantityInBaseUnits int64           `json:"quantity_in_base_units" binding:"required,min=1"`
	Price               decimal.Decimal `json:"price"`
}

// RegisterMedicineRequest creates a medicine and its opening ledger entry
type RegisterMedicineRequest struct {
	Name            string        `json:"name" binding:"required,max=255"`
	GenericName     string        `json:"generic_name" binding:"max=255"`
	Category        string        `json:"category" binding:"max=100"`
	Manufacturer    string        `json:"manufacturer" binding:"max=255"`
	BatchNumber     string        `json:"batch_number" binding:"max=100"`
	ExpiryDate      *time.Time    `json:"expiry_date"`
	Units           []UnitRequest `json:"units" binding:"required,min=1,dive"`
	OpeningStock    int64         `json:"opening_stock" binding:"min=0"`
	ReorderLevel    int64         `json:"reorder_level" binding:"min=0"`
	CostPrice       decimal.Decimal `json:"cost_price"`
	PerformedBy     string        `json:"performed_by" binding:"required,max=100"`
	PerformedByRole string        `json:"performed_by_role" binding:"required,max=50"`
}

// DeductStockRequest records a sale in a named pack unit
type DeductStockRequest struct {
	Quantity        int64  `json:"quantity" binding:"required,min=1"`
	UnitType        string `json:"unit_type" binding:"required"`
	ReferenceID     string `json:"reference_id" binding:"max=100"`
	PerformedBy     string `json:"performed_by" binding:"required,max=100"`
	PerformedByRole string `json:"performed_by_role" binding:"required,max=50"`
}

// AddStockRequest receives purchased stock in base units
type AddStockRequest struct {
	Quantity        int64  `json:"quantity" binding:"required,min=1"`
	ReferenceID     string `json:"reference_id" binding:"max=100"`
	PerformedBy     string `json:"performed_by" binding:"required,max=100"`
	PerformedByRole string `json:"performed_by_role" binding:"required,max=50"`
}

// RecordLossRequest writes off damaged or missing stock
type RecordLossRequest struct {
	Quantity        int64  `json:"quantity" binding:"required,min=1"`
	Reason          string `json:"reason" binding:"required,max=255"`
	PerformedBy     string `json:"performed_by" binding:"required,max=100"`
	PerformedByRole string `json:"performed_by_role" binding:"required,max=50"`
}

// AdjustStockRequest applies a signed correction after a count
type AdjustStockRequest struct {
	Delta           int64  `json:"delta" binding:"required"`
	Reason          string `json:"reason" binding:"required,max=255"`
	PerformedBy     string `json:"performed_by" binding:"required,max=100"`
	PerformedByRole string `json:"performed_by_role" binding:"required,max=50"`
}

// ReturnStockRequest puts a customer return back into stock
type ReturnStockRequest struct {
	Quantity        int64  `json:"quantity" binding:"required,min=1"`
	ReferenceID     string `json:"reference_id" binding:"max=100"`
	PerformedBy     string `json:"performed_by" binding:"required,max=100"`
	PerformedByRole string `json:"performed_by_role" binding:"required,max=50"`
}

// ExpireStockRequest writes off stock past its expiry date
type ExpireStockRequest struct {
	Quantity        int64  `json:"quantity" binding:"required,min=1"`
	Reason          string `json:"reason" binding:"required,max=255"`
	PerformedBy     string `json:"performed_by" binding:"required,max=100"`
	PerformedByRole string `json:"performed_by_role" binding:"required,max=50"`
}

// MedicineListFilter represents filter options for the medicine list
type MedicineListFilter struct {
	Search     string `form:"search"`
	Category   string `form:"category"`
	ActiveOnly bool   `form:"active_only"`
	LowStock   bool   `form:"low_stock"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// MovementListFilter represents filter options for the ledger list
type MovementListFilter struct {
	MedicineID  *uuid.UUID `form:"-"`
	Type        string     `form:"type"`
	ReferenceID string     `form:"reference_id"`
	StartDate   *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate     *time.Time `form:"end_date" time_format:"2006-01-02"`
	Page        int        `form:"page" binding:"omitempty,min=1"`
	PageSize    int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// MedicineResponse represents a medicine in API responses
type MedicineResponse struct {
	ID                 uuid.UUID             `json:"id"`
	Name               string                `json:"name"`
	GenericName        string                `json:"generic_name,omitempty"`
	Category           string                `json:"category,omitempty"`
	Manufacturer       string                `json:"manufacturer,omitempty"`
	BatchNumber        string                `json:"batch_number,omitempty"`
	ExpiryDate         *time.Time            `json:"expiry_date,omitempty"`
	Units              []valueobject.UnitDTO `json:"units"`
	CurrentStock       int64                 `json:"current_stock"`
	ReorderLevel       int64                 `json:"reorder_level"`
	CostPrice          decimal.Decimal       `json:"cost_price"`
	StockValue         decimal.Decimal       `json:"stock_value"`
	BelowReorderLevel  bool                  `json:"below_reorder_level"`
	Active             bool                  `json:"active"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
	Version            int                   `json:"version"`
}

// MovementResponse represents a ledger entry in API responses
type MovementResponse struct {
	ID              uuid.UUID       `json:"id"`
	MedicineID      uuid.UUID       `json:"medicine_id"`
	Type            string          `json:"type"`
	QuantityDelta   int64           `json:"quantity_delta"`
	PreviousStock   int64           `json:"previous_stock"`
	NewStock        int64           `json:"new_stock"`
	UnitType        string          `json:"unit_type,omitempty"`
	UnitQuantity    int64           `json:"unit_quantity,omitempty"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	ReferenceID     string          `json:"reference_id,omitempty"`
	Reason          string          `json:"reason,omitempty"`
	PerformedBy     string          `json:"performed_by"`
	PerformedByRole string          `json:"performed_by_role"`
	CreatedAt       time.Time       `json:"created_at"`
}

// StockMutationResponse is returned by every stock mutation: the updated
// medicine snapshot plus the movement that was appended.
type StockMutationResponse struct {
	Medicine MedicineResponse `json:"medicine"`
	Movement MovementResponse `json:"movement"`
}

// ToMedicineResponse converts a domain medicine to its API shape
func ToMedicineResponse(m *ledger.Medicine) MedicineResponse {
	units := make([]valueobject.UnitDTO, 0, len(m.Units))
	for _, u := range m.Units {
		units = append(units, u.ToDTO())
	}
	return MedicineResponse{
		ID:                m.ID,
		Name:              m.Name,
		GenericName:       m.GenericName,
		Category:          m.Category,
		Manufacturer:      m.Manufacturer,
		BatchNumber:       m.BatchNumber,
		ExpiryDate:        m.ExpiryDate,
		Units:             units,
		CurrentStock:      m.CurrentStock,
		ReorderLevel:      m.ReorderLevel,
		CostPrice:         m.CostPrice,
		StockValue:        m.StockValue(),
		BelowReorderLevel: m.IsBelowReorderLevel(),
		Active:            m.Active,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
		Version:           m.Version,
	}
}

// ToMovementResponse converts a domain movement to its API shape
func ToMovementResponse(mv *ledger.Movement) MovementResponse {
	return MovementResponse{
		ID:              mv.ID,
		MedicineID:      mv.MedicineID,
		Type:            mv.Type.String(),
		QuantityDelta:   mv.QuantityDelta,
		PreviousStock:   mv.PreviousStock,
		NewStock:        mv.NewStock,
		UnitType:        mv.UnitType,
		UnitQuantity:    mv.UnitQuantity,
		UnitPrice:       mv.UnitPrice,
		ReferenceID:     mv.ReferenceID,
		Reason:          mv.Reason,
		PerformedBy:     mv.PerformedBy,
		PerformedByRole: mv.PerformedByRole,
		CreatedAt:       mv.CreatedAt,
	}
}
