package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/medstock/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MovementType classifies a stock movement
type MovementType string

const (
	// MovementTypeSale is a customer sale leaving the shelf
	MovementTypeSale MovementType = "sale"
	// MovementTypePurchase is a supplier delivery arriving into stock
	MovementTypePurchase MovementType = "purchase"
	// MovementTypeAdjustment is a signed manual correction
	MovementTypeAdjustment MovementType = "adjustment"
	// MovementTypeLoss is breakage, theft or damage
	MovementTypeLoss MovementType = "loss"
	// MovementTypeReturn is a customer return back into stock
	MovementTypeReturn MovementType = "return"
	// MovementTypeExpired is an expiry write-off
	MovementTypeExpired MovementType = "expired"
	// MovementTypeOpening is the opening balance recorded at registration
	MovementTypeOpening MovementType = "opening"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is known
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeSale,
		MovementTypePurchase,
		MovementTypeAdjustment,
		MovementTypeLoss,
		MovementTypeReturn,
		MovementTypeExpired,
		MovementTypeOpening:
		return true
	}
	return false
}

// IsIncrease returns true if this movement type adds stock
func (t MovementType) IsIncrease() bool {
	switch t {
	case MovementTypePurchase, MovementTypeReturn, MovementTypeOpening:
		return true
	}
	return false
}

// IsDecrease returns true if this movement type removes stock
func (t MovementType) IsDecrease() bool {
	switch t {
	case MovementTypeSale, MovementTypeLoss, MovementTypeExpired:
		return true
	}
	return false
}

// RequiresReason returns true if movements of this type must carry a reason
func (t MovementType) RequiresReason() bool {
	switch t {
	case MovementTypeAdjustment, MovementTypeLoss, MovementTypeExpired:
		return true
	}
	return false
}

// Movement is an immutable ledger record of a single stock change.
// Once created, movements cannot be modified - corrections are new
// adjustment movements.
type Movement struct {
	shared.BaseEntity
	MedicineID    uuid.UUID    `gorm:"type:uuid;not null;index:idx_movement_medicine"`
	Type          MovementType `gorm:"type:varchar(20);not null;index:idx_movement_type"`
	QuantityDelta int64        `gorm:"not null"` // signed, in base units
	PreviousStock int64        `gorm:"not null"` // base units before the movement
	NewStock      int64        `gorm:"not null"` // base units after the movement
	// UnitType, UnitQuantity and UnitPrice capture the pack the caller
	// transacted in: UnitQuantity packs at UnitPrice each. Recorded at
	// movement time so revenue survives later price list changes.
	UnitType        string          `gorm:"type:varchar(20)"`
	UnitQuantity    int64           `gorm:"not null;default:0"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReferenceID     string          `gorm:"type:varchar(100);index:idx_movement_reference"`
	Reason          string          `gorm:"type:varchar(255)"`
	PerformedBy     string          `gorm:"type:varchar(100);not null"`
	PerformedByRole string          `gorm:"type:varchar(50);not null"`
}

// TableName returns the table name for GORM
func (Movement) TableName() string {
	return "stock_movements"
}

// NewMovement creates a new movement and checks the ledger invariants:
// the type must be known, the snapshots must be non-negative, and
// NewStock must equal PreviousStock + QuantityDelta. A zero delta is
// allowed only for opening balances and write-offs that floored at an
// already empty shelf.
func NewMovement(
	medicineID uuid.UUID,
	movementType MovementType,
	quantityDelta int64,
	previousStock int64,
	newStock int64,
	performedBy string,
	performedByRole string,
) (*Movement, error) {
	if medicineID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MEDICINE", "Medicine ID cannot be empty")
	}
	if !movementType.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Invalid movement type")
	}
	if previousStock < 0 || newStock < 0 {
		return nil, shared.ErrInvalidQuantity
	}
	if newStock != previousStock+quantityDelta {
		return nil, shared.NewDomainError("INVALID_MOVEMENT", "Stock snapshots do not match quantity delta")
	}
	if quantityDelta == 0 && !allowsZeroDelta(movementType) {
		return nil, shared.ErrInvalidQuantity
	}
	if quantityDelta > 0 && movementType.IsDecrease() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT", "Movement type removes stock but delta is positive")
	}
	if quantityDelta < 0 && movementType.IsIncrease() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT", "Movement type adds stock but delta is negative")
	}
	if performedBy == "" || performedByRole == "" {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Performer name and role are required")
	}

	return &Movement{
		BaseEntity:      shared.NewBaseEntity(),
		MedicineID:      medicineID,
		Type:            movementType,
		QuantityDelta:   quantityDelta,
		PreviousStock:   previousStock,
		NewStock:        newStock,
		UnitPrice:       decimal.Zero,
		PerformedBy:     performedBy,
		PerformedByRole: performedByRole,
	}, nil
}

func allowsZeroDelta(t MovementType) bool {
	return t == MovementTypeOpening || t == MovementTypeLoss || t == MovementTypeExpired
}

// WithUnit tags the movement with the transacted pack count and price
func (m *Movement) WithUnit(unitType string, unitQuantity int64, unitPrice decimal.Decimal) *Movement {
	m.UnitType = unitType
	m.UnitQuantity = unitQuantity
	m.UnitPrice = unitPrice
	return m
}

// WithReference sets the source document reference (invoice, order number)
func (m *Movement) WithReference(referenceID string) *Movement {
	m.ReferenceID = referenceID
	return m
}

// WithReason sets the reason for the movement
func (m *Movement) WithReason(reason string) *Movement {
	m.Reason = reason
	return m
}

// WithOccurredAt backdates the movement timestamp
func (m *Movement) WithOccurredAt(t time.Time) *Movement {
	m.CreatedAt = t
	return m
}

// AbsQuantity returns the magnitude of the movement in base units
func (m *Movement) AbsQuantity() int64 {
	if m.QuantityDelta < 0 {
		return -m.QuantityDelta
	}
	return m.QuantityDelta
}

// IsInbound returns true if the movement added stock
func (m *Movement) IsInbound() bool {
	return m.QuantityDelta > 0
}

// IsOutbound returns true if the movement removed stock
func (m *Movement) IsOutbound() bool {
	return m.QuantityDelta < 0
}

// Revenue returns the money received for a sale movement, computed from
// the captured pack count and price. Zero for non-sale movements.
func (m *Movement) Revenue() decimal.Decimal {
	if m.Type != MovementTypeSale {
		return decimal.Zero
	}
	return m.UnitPrice.Mul(decimal.NewFromInt(m.UnitQuantity))
}
