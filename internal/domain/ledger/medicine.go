package ledger

import (
	"time"

	"github.com/medstock/backend/internal/domain/shared"
	"github.com/medstock/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Medicine is the aggregate root for stock operations. CurrentStock is
// held in base units (single tablets, capsules, bottles) and is mutated
// only through the aggregate methods below, each of which produces the
// matching ledger Movement in the same step.
type Medicine struct {
	shared.BaseAggregateRoot
	Name         string                `gorm:"type:varchar(255);not null;index:idx_medicine_name"`
	GenericName  string                `gorm:"type:varchar(255)"`
	Category     string                `gorm:"type:varchar(100);index:idx_medicine_category"`
	Manufacturer string                `gorm:"type:varchar(255)"`
	BatchNumber  string                `gorm:"type:varchar(100)"`
	ExpiryDate   *time.Time            `gorm:"type:date"`
	Units        valueobject.UnitList  `gorm:"serializer:json;not null"`
	CurrentStock int64                 `gorm:"not null;default:0"` // base units, never negative
	ReorderLevel int64                 `gorm:"not null;default:0"` // base units
	CostPrice    decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"` // cost per base unit
	Active       bool                  `gorm:"not null;default:true;index:idx_medicine_active"`
}

// TableName returns the table name for GORM
func (Medicine) TableName() string {
	return "medicines"
}

// NewMedicine creates a medicine with zero stock. The opening balance is
// applied separately through OpenStock so it lands in the ledger.
func NewMedicine(
	name string,
	genericName string,
	category string,
	manufacturer string,
	units []valueobject.Unit,
	reorderLevel int64,
	costPrice decimal.Decimal,
) (*Medicine, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Medicine name cannot be empty")
	}
	unitList, err := valueobject.NewUnitList(units)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_UNITS", err.Error())
	}
	if reorderLevel < 0 {
		return nil, shared.ErrInvalidParameter
	}
	if costPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Cost price cannot be negative")
	}

	m := &Medicine{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		GenericName:       genericName,
		Category:          category,
		Manufacturer:      manufacturer,
		Units:             unitList,
		CurrentStock:      0,
		ReorderLevel:      reorderLevel,
		CostPrice:         costPrice,
		Active:            true,
	}
	m.AddDomainEvent(NewMedicineRegisteredEvent(m))
	return m, nil
}

// WithBatch sets the supplier batch number and expiry date
func (m *Medicine) WithBatch(batchNumber string, expiryDate *time.Time) *Medicine {
	m.BatchNumber = batchNumber
	m.ExpiryDate = expiryDate
	return m
}

// ResolveUnit finds the pack size the caller named, case-insensitively
func (m *Medicine) ResolveUnit(unitType string) (valueobject.Unit, error) {
	u, ok := m.Units.Find(unitType)
	if !ok {
		return valueobject.Unit{}, shared.ErrUnknownUnit
	}
	return u, nil
}

// OpenStock records the opening balance at registration time.
// PreviousStock is always zero; a zero opening quantity is allowed and
// still leaves a ledger entry.
func (m *Medicine) OpenStock(baseQuantity int64, performedBy, performedByRole string) (*Movement, error) {
	if baseQuantity < 0 {
		return nil, shared.ErrInvalidQuantity
	}
	if m.CurrentStock != 0 {
		return nil, shared.NewDomainError("INVALID_STATE", "Opening balance can only be recorded once")
	}

	mv, err := NewMovement(m.ID, MovementTypeOpening, baseQuantity, 0, baseQuantity, performedBy, performedByRole)
	if err != nil {
		return nil, err
	}

	m.applyDelta(baseQuantity)
	m.AddDomainEvent(NewStockMovedEvent(m, mv))
	return mv, nil
}

// Deduct removes stock for a sale. The quantity is a pack count in the
// named unit and is converted to base units before the check; a sale
// that would drive stock negative is rejected, never clamped.
func (m *Medicine) Deduct(quantity int64, unitType, referenceID, performedBy, performedByRole string) (*Movement, error) {
	if quantity <= 0 {
		return nil, shared.ErrInvalidQuantity
	}
	unit, err := m.ResolveUnit(unitType)
	if err != nil {
		return nil, err
	}

	baseQuantity := unit.ConvertToBase(quantity)
	if baseQuantity > m.CurrentStock {
		return nil, shared.ErrInsufficientStock
	}

	prev := m.CurrentStock
	mv, err := NewMovement(m.ID, MovementTypeSale, -baseQuantity, prev, prev-baseQuantity, performedBy, performedByRole)
	if err != nil {
		return nil, err
	}
	mv.WithUnit(unit.Type().String(), quantity, unit.Price()).WithReference(referenceID)

	m.applyDelta(-baseQuantity)
	m.AddDomainEvent(NewStockMovedEvent(m, mv))
	m.checkReorderLevel()
	return mv, nil
}

// Add receives purchased stock, already expressed in base units
func (m *Medicine) Add(baseQuantity int64, referenceID, performedBy, performedByRole string) (*Movement, error) {
	if baseQuantity <= 0 {
		return nil, shared.ErrInvalidQuantity
	}

	prev := m.CurrentStock
	mv, err := NewMovement(m.ID, MovementTypePurchase, baseQuantity, prev, prev+baseQuantity, performedBy, performedByRole)
	if err != nil {
		return nil, err
	}
	mv.WithReference(referenceID)

	m.applyDelta(baseQuantity)
	m.AddDomainEvent(NewStockMovedEvent(m, mv))
	return mv, nil
}

// RecordLoss writes off damaged or missing stock. A loss larger than the
// shelf holds floors at zero and the movement records the quantity that
// was actually removed.
func (m *Medicine) RecordLoss(baseQuantity int64, reason, performedBy, performedByRole string) (*Movement, error) {
	return m.writeOff(MovementTypeLoss, baseQuantity, reason, performedBy, performedByRole)
}

// WriteOffExpired removes stock past its expiry date. Floors at zero
// like RecordLoss.
func (m *Medicine) WriteOffExpired(baseQuantity int64, reason, performedBy, performedByRole string) (*Movement, error) {
	return m.writeOff(MovementTypeExpired, baseQuantity, reason, performedBy, performedByRole)
}

func (m *Medicine) writeOff(movementType MovementType, baseQuantity int64, reason, performedBy, performedByRole string) (*Movement, error) {
	if baseQuantity <= 0 {
		return nil, shared.ErrInvalidQuantity
	}
	if reason == "" {
		return nil, shared.ErrMissingReason
	}

	applied := baseQuantity
	if applied > m.CurrentStock {
		applied = m.CurrentStock
	}

	prev := m.CurrentStock
	mv, err := NewMovement(m.ID, movementType, -applied, prev, prev-applied, performedBy, performedByRole)
	if err != nil {
		return nil, err
	}
	mv.WithReason(reason)

	m.applyDelta(-applied)
	m.AddDomainEvent(NewStockMovedEvent(m, mv))
	m.checkReorderLevel()
	return mv, nil
}

// Adjust applies a signed correction, typically after a physical count.
// An adjustment that would drive stock negative is rejected.
func (m *Medicine) Adjust(delta int64, reason, performedBy, performedByRole string) (*Movement, error) {
	if delta == 0 {
		return nil, shared.ErrInvalidQuantity
	}
	if reason == "" {
		return nil, shared.ErrMissingReason
	}
	if m.CurrentStock+delta < 0 {
		return nil, shared.ErrInvalidAdjustment
	}

	prev := m.CurrentStock
	mv, err := NewMovement(m.ID, MovementTypeAdjustment, delta, prev, prev+delta, performedBy, performedByRole)
	if err != nil {
		return nil, err
	}
	mv.WithReason(reason)

	m.applyDelta(delta)
	m.AddDomainEvent(NewStockMovedEvent(m, mv))
	m.checkReorderLevel()
	return mv, nil
}

// RecordReturn puts a customer return back on the shelf
func (m *Medicine) RecordReturn(baseQuantity int64, referenceID, performedBy, performedByRole string) (*Movement, error) {
	if baseQuantity <= 0 {
		return nil, shared.ErrInvalidQuantity
	}

	prev := m.CurrentStock
	mv, err := NewMovement(m.ID, MovementTypeReturn, baseQuantity, prev, prev+baseQuantity, performedBy, performedByRole)
	if err != nil {
		return nil, err
	}
	mv.WithReference(referenceID)

	m.applyDelta(baseQuantity)
	m.AddDomainEvent(NewStockMovedEvent(m, mv))
	return mv, nil
}

// Deactivate soft-deletes the medicine. Its movements stay in the ledger.
func (m *Medicine) Deactivate() error {
	if !m.Active {
		return shared.ErrInvalidState
	}
	m.Active = false
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
	m.AddDomainEvent(NewMedicineDeactivatedEvent(m))
	return nil
}

// Activate brings a deactivated medicine back
func (m *Medicine) Activate() error {
	if m.Active {
		return shared.ErrInvalidState
	}
	m.Active = true
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
	return nil
}

// SetReorderLevel updates the restock alert threshold
func (m *Medicine) SetReorderLevel(level int64) error {
	if level < 0 {
		return shared.ErrInvalidParameter
	}
	m.ReorderLevel = level
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
	return nil
}

// IsBelowReorderLevel reports whether stock has fallen to or under the threshold
func (m *Medicine) IsBelowReorderLevel() bool {
	return m.ReorderLevel > 0 && m.CurrentStock <= m.ReorderLevel
}

// StockValue returns the capital currently tied up in this medicine
func (m *Medicine) StockValue() decimal.Decimal {
	return m.CostPrice.Mul(decimal.NewFromInt(m.CurrentStock))
}

// IsExpired reports whether the current batch is past its expiry date
func (m *Medicine) IsExpired(now time.Time) bool {
	return m.ExpiryDate != nil && m.ExpiryDate.Before(now)
}

func (m *Medicine) applyDelta(delta int64) {
	m.CurrentStock += delta
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
}

func (m *Medicine) checkReorderLevel() {
	if m.IsBelowReorderLevel() {
		m.AddDomainEvent(NewStockBelowReorderLevelEvent(m))
	}
}
