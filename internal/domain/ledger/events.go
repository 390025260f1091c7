package ledger

import (
	"github.com/google/uuid"
	"github.com/medstock/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeMedicine = "Medicine"

// Event type constants
const (
	EventTypeMedicineRegistered    = "MedicineRegistered"
	EventTypeStockMoved            = "StockMoved"
	EventTypeStockBelowReorder     = "StockBelowReorderLevel"
	EventTypeMedicineDeactivated   = "MedicineDeactivated"
)

// MedicineRegisteredEvent is raised when a medicine enters the catalog
type MedicineRegisteredEvent struct {
	shared.BaseDomainEvent
	MedicineID uuid.UUID `json:"medicine_id"`
	Name       string    `json:"name"`
	Category   string    `json:"category"`
}

// NewMedicineRegisteredEvent creates a new MedicineRegisteredEvent
func NewMedicineRegisteredEvent(m *Medicine) *MedicineRegisteredEvent {
	return &MedicineRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMedicineRegistered, AggregateTypeMedicine, m.ID),
		MedicineID:      m.ID,
		Name:            m.Name,
		Category:        m.Category,
	}
}

// EventType returns the event type name
func (e *MedicineRegisteredEvent) EventType() string {
	return EventTypeMedicineRegistered
}

// StockMovedEvent is raised for every successful ledger movement
type StockMovedEvent struct {
	shared.BaseDomainEvent
	MedicineID    uuid.UUID    `json:"medicine_id"`
	MovementID    uuid.UUID    `json:"movement_id"`
	MovementType  MovementType `json:"movement_type"`
	QuantityDelta int64        `json:"quantity_delta"`
	NewStock      int64        `json:"new_stock"`
	ReferenceID   string       `json:"reference_id,omitempty"`
	Reason        string       `json:"reason,omitempty"`
}

// NewStockMovedEvent creates a new StockMovedEvent
func NewStockMovedEvent(m *Medicine, mv *Movement) *StockMovedEvent {
	return &StockMovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockMoved, AggregateTypeMedicine, m.ID),
		MedicineID:      m.ID,
		MovementID:      mv.ID,
		MovementType:    mv.Type,
		QuantityDelta:   mv.QuantityDelta,
		NewStock:        mv.NewStock,
		ReferenceID:     mv.ReferenceID,
		Reason:          mv.Reason,
	}
}

// EventType returns the event type name
func (e *StockMovedEvent) EventType() string {
	return EventTypeStockMoved
}

// StockBelowReorderLevelEvent is raised when stock falls to or under the
// reorder threshold
type StockBelowReorderLevelEvent struct {
	shared.BaseDomainEvent
	MedicineID   uuid.UUID `json:"medicine_id"`
	Name         string    `json:"name"`
	CurrentStock int64     `json:"current_stock"`
	ReorderLevel int64     `json:"reorder_level"`
}

// NewStockBelowReorderLevelEvent creates a new StockBelowReorderLevelEvent
func NewStockBelowReorderLevelEvent(m *Medicine) *StockBelowReorderLevelEvent {
	return &StockBelowReorderLevelEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBelowReorder, AggregateTypeMedicine, m.ID),
		MedicineID:      m.ID,
		Name:            m.Name,
		CurrentStock:    m.CurrentStock,
		ReorderLevel:    m.ReorderLevel,
	}
}

// EventType returns the event type name
func (e *StockBelowReorderLevelEvent) EventType() string {
	return EventTypeStockBelowReorder
}

// MedicineDeactivatedEvent is raised when a medicine is soft-deleted
type MedicineDeactivatedEvent struct {
	shared.BaseDomainEvent
	MedicineID uuid.UUID `json:"medicine_id"`
	Name       string    `json:"name"`
}

// NewMedicineDeactivatedEvent creates a new MedicineDeactivatedEvent
func NewMedicineDeactivatedEvent(m *Medicine) *MedicineDeactivatedEvent {
	return &MedicineDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMedicineDeactivated, AggregateTypeMedicine, m.ID),
		MedicineID:      m.ID,
		Name:            m.Name,
	}
}

// EventType returns the event type name
func (e *MedicineDeactivatedEvent) EventType() string {
	return EventTypeMedicineDeactivated
}
