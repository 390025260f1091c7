package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/medstock/backend/internal/domain/ledger"
	"github.com/medstock/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormMovementRepository implements ledger.MovementRepository using GORM.
// The ledger is append-only: this repository deliberately exposes no
// update or delete methods.
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// FindByID finds a movement by its ID
func (r *GormMovementRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Movement, error) {
	var mv ledger.Movement
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&mv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find movement: %w", err)
	}
	return &mv, nil
}

// FindByMedicine finds movements for one medicine, newest first by default
func (r *GormMovementRepository) FindByMedicine(ctx context.Context, medicineID uuid.UUID, filter ledger.MovementFilter) ([]ledger.Movement, error) {
	filter.MedicineID = &medicineID
	return r.FindAll(ctx, filter)
}

// FindAll finds movements matching the filter
func (r *GormMovementRepository) FindAll(ctx context.Context, filter ledger.MovementFilter) ([]ledger.Movement, error) {
	var movements []ledger.Movement
	query := r.applyMovementConditions(r.db.WithContext(ctx), filter)
	query = applyPagination(query, filter.Filter)
	query = applyOrdering(query, filter.Filter, MovementSortFields, "created_at")
	if err := query.Find(&movements).Error; err != nil {
		return nil, fmt.Errorf("failed to find movements: %w", err)
	}
	return movements, nil
}

// FindInWindow returns every movement created inside [start, end), oldest
// first. Report folds iterate this, so the window is unpaginated.
func (r *GormMovementRepository) FindInWindow(ctx context.Context, start, end time.Time) ([]ledger.Movement, error) {
	var movements []ledger.Movement
	err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", start, end).
		Order("created_at ASC").
		Find(&movements).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find movements in window: %w", err)
	}
	return movements, nil
}

// Create appends a movement to the ledger
func (r *GormMovementRepository) Create(ctx context.Context, mv *ledger.Movement) error {
	if err := r.db.WithContext(ctx).Create(mv).Error; err != nil {
		return fmt.Errorf("failed to create movement: %w", err)
	}
	return nil
}

// Count counts movements matching the filter
func (r *GormMovementRepository) Count(ctx context.Context, filter ledger.MovementFilter) (int64, error) {
	var count int64
	query := r.applyMovementConditions(r.db.WithContext(ctx).Model(&ledger.Movement{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count movements: %w", err)
	}
	return count, nil
}

// CountByMedicine counts movements for one medicine
func (r *GormMovementRepository) CountByMedicine(ctx context.Context, medicineID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&ledger.Movement{}).
		Where("medicine_id = ?", medicineID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count movements for medicine: %w", err)
	}
	return count, nil
}

// applyMovementConditions applies the WHERE conditions, shared between
// listing and counting
func (r *GormMovementRepository) applyMovementConditions(query *gorm.DB, filter ledger.MovementFilter) *gorm.DB {
	if filter.MedicineID != nil {
		query = query.Where("medicine_id = ?", *filter.MedicineID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.ReferenceID != "" {
		query = query.Where("reference_id = ?", filter.ReferenceID)
	}
	if filter.StartDate != nil {
		query = query.Where("created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("created_at < ?", *filter.EndDate)
	}
	return query
}

// Ensure GormMovementRepository implements ledger.MovementRepository
var _ ledger.MovementRepository = (*GormMovementRepository)(nil)
