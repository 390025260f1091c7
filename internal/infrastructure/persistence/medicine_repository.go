package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/medstock/backend/internal/domain/ledger"
	"github.com/medstock/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormMedicineRepository implements ledger.MedicineRepository using GORM
type GormMedicineRepository struct {
	db *gorm.DB
}

// NewGormMedicineRepository creates a new GormMedicineRepository
func NewGormMedicineRepository(db *gorm.DB) *GormMedicineRepository {
	return &GormMedicineRepository{db: db}
}

// FindByID finds a medicine by its ID
func (r *GormMedicineRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Medicine, error) {
	var m ledger.Medicine
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find medicine: %w", err)
	}
	return &m, nil
}

// FindByIDs finds multiple medicines by their IDs
func (r *GormMedicineRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]ledger.Medicine, error) {
	if len(ids) == 0 {
		return []ledger.Medicine{}, nil
	}
	var medicines []ledger.Medicine
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&medicines).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find medicines by ids: %w", err)
	}
	return medicines, nil
}

// FindAll finds medicines matching the filter. A filter with PageSize <= 0
// returns the full result set; the audit report iterates every active
// medicine this way.
func (r *GormMedicineRepository) FindAll(ctx context.Context, filter ledger.MedicineFilter) ([]ledger.Medicine, error) {
	var medicines []ledger.Medicine
	query := r.applyMedicineFilter(r.db.WithContext(ctx), filter)
	if err := query.Find(&medicines).Error; err != nil {
		return nil, fmt.Errorf("failed to find medicines: %w", err)
	}
	return medicines, nil
}

// FindBelowReorderLevel finds active medicines at or under their threshold.
// Medicines with a zero threshold never alert.
func (r *GormMedicineRepository) FindBelowReorderLevel(ctx context.Context, filter shared.Filter) ([]ledger.Medicine, error) {
	var medicines []ledger.Medicine
	query := r.db.WithContext(ctx).
		Where("active = ?", true).
		Where("reorder_level > 0 AND current_stock <= reorder_level")
	query = applyPagination(query, filter)
	query = applyOrdering(query, filter, MedicineSortFields, "current_stock")
	if err := query.Find(&medicines).Error; err != nil {
		return nil, fmt.Errorf("failed to find medicines below reorder level: %w", err)
	}
	return medicines, nil
}

// Save creates or updates a medicine
func (r *GormMedicineRepository) Save(ctx context.Context, m *ledger.Medicine) error {
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return fmt.Errorf("failed to save medicine: %w", err)
	}
	return nil
}

// SaveWithLock saves with optimistic locking. The aggregate has already
// incremented its version in memory, so the row must still carry the
// previous one; zero rows affected means another writer got there first.
func (r *GormMedicineRepository) SaveWithLock(ctx context.Context, m *ledger.Medicine) error {
	result := r.db.WithContext(ctx).
		Model(&ledger.Medicine{}).
		Where("id = ? AND version = ?", m.ID, m.Version-1).
		Updates(map[string]interface{}{
			"name":          m.Name,
			"generic_name":  m.GenericName,
			"category":      m.Category,
			"manufacturer":  m.Manufacturer,
			"batch_number":  m.BatchNumber,
			"expiry_date":   m.ExpiryDate,
			"units":         m.Units,
			"current_stock": m.CurrentStock,
			"reorder_level": m.ReorderLevel,
			"cost_price":    m.CostPrice,
			"active":        m.Active,
			"version":       m.Version,
			"updated_at":    m.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to save medicine with lock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Count counts medicines matching the filter
func (r *GormMedicineRepository) Count(ctx context.Context, filter ledger.MedicineFilter) (int64, error) {
	var count int64
	query := r.applyMedicineConditions(r.db.WithContext(ctx).Model(&ledger.Medicine{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count medicines: %w", err)
	}
	return count, nil
}

// ExistsByName checks whether a medicine with this name and batch exists
func (r *GormMedicineRepository) ExistsByName(ctx context.Context, name, batchNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&ledger.Medicine{}).
		Where("LOWER(name) = LOWER(?) AND batch_number = ?", name, batchNumber).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check medicine existence: %w", err)
	}
	return count > 0, nil
}

// applyMedicineFilter applies conditions, pagination and ordering
func (r *GormMedicineRepository) applyMedicineFilter(query *gorm.DB, filter ledger.MedicineFilter) *gorm.DB {
	query = r.applyMedicineConditions(query, filter)
	query = applyPagination(query, filter.Filter)
	query = applyOrdering(query, filter.Filter, MedicineSortFields, "created_at")
	return query
}

// applyMedicineConditions applies only the WHERE conditions, shared
// between listing and counting
func (r *GormMedicineRepository) applyMedicineConditions(query *gorm.DB, filter ledger.MedicineFilter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(strings.TrimSpace(filter.Search)) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(generic_name) LIKE ?", pattern, pattern)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.ActiveOnly {
		query = query.Where("active = ?", true)
	}
	if filter.LowStock {
		query = query.Where("reorder_level > 0 AND current_stock <= reorder_level")
	}
	return query
}

// applyPagination applies offset and limit from the filter.
// PageSize <= 0 disables pagination.
func applyPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.PageSize <= 0 {
		return query
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	return query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
}

// applyOrdering applies a whitelisted ORDER BY clause
func applyOrdering(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField string) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	dir := ValidateSortOrder(filter.OrderDir)
	return query.Order(fmt.Sprintf("%s %s", field, dir))
}

// Ensure GormMedicineRepository implements ledger.MedicineRepository
var _ ledger.MedicineRepository = (*GormMedicineRepository)(nil)
