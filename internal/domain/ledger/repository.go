package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/medstock/backend/internal/domain/shared"
)

// MedicineRepository defines the interface for medicine persistence
type MedicineRepository interface {
	// FindByID finds a medicine by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Medicine, error)

	// FindByIDs finds multiple medicines by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Medicine, error)

	// FindAll finds medicines matching the filter
	FindAll(ctx context.Context, filter MedicineFilter) ([]Medicine, error)

	// FindBelowReorderLevel finds active medicines at or under their threshold
	FindBelowReorderLevel(ctx context.Context, filter shared.Filter) ([]Medicine, error)

	// Save creates or updates a medicine
	Save(ctx context.Context, m *Medicine) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, m *Medicine) error

	// Count counts medicines matching the filter
	Count(ctx context.Context, filter MedicineFilter) (int64, error)

	// ExistsByName checks whether a medicine with this name and batch exists
	ExistsByName(ctx context.Context, name, batchNumber string) (bool, error)
}

// MovementRepository defines the interface for the append-only ledger.
// There are deliberately no update or delete operations.
type MovementRepository interface {
	// FindByID finds a movement by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Movement, error)

	// FindByMedicine finds movements for one medicine, newest first
	FindByMedicine(ctx context.Context, medicineID uuid.UUID, filter MovementFilter) ([]Movement, error)

	// FindAll finds movements matching the filter
	FindAll(ctx context.Context, filter MovementFilter) ([]Movement, error)

	// FindInWindow returns every movement created inside [start, end),
	// oldest first. Report folds iterate this.
	FindInWindow(ctx context.Context, start, end time.Time) ([]Movement, error)

	// Create appends a movement to the ledger
	Create(ctx context.Context, mv *Movement) error

	// Count counts movements matching the filter
	Count(ctx context.Context, filter MovementFilter) (int64, error)

	// CountByMedicine counts movements for one medicine
	CountByMedicine(ctx context.Context, medicineID uuid.UUID) (int64, error)
}

// MedicineFilter extends shared.Filter with medicine-specific filters
type MedicineFilter struct {
	shared.Filter
	Category   string
	ActiveOnly bool
	LowStock   bool
}

// MovementFilter extends shared.Filter with ledger-specific filters
type MovementFilter struct {
	shared.Filter
	MedicineID  *uuid.UUID
	Type        *MovementType
	ReferenceID string
	StartDate   *time.Time
	EndDate     *time.Time
}
