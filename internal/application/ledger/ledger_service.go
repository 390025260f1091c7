package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/medstock/backend/internal/domain/ledger"
	"github.com/medstock/backend/internal/domain/shared"
	"github.com/medstock/backend/internal/domain/shared/valueobject"
)

// maxConflictRetries bounds how often a mutation is replayed when the
// optimistic version check loses to a concurrent writer on the same row.
const maxConflictRetries = 3

// LedgerService handles all stock mutations. Each mutation loads the
// medicine, applies the aggregate method, and persists both the medicine
// (with a version check) and the new movement inside one transaction, so
// the row and its ledger can never diverge. A lost version check replays
// the whole read-apply-write cycle.
type LedgerService struct {
	medicineRepo   ledger.MedicineRepository
	movementRepo   ledger.MovementRepository
	scope          TransactionScope
	eventPublisher shared.EventPublisher
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	medicineRepo ledger.MedicineRepository,
	movementRepo ledger.MovementRepository,
	scope TransactionScope,
) *LedgerService {
	return &LedgerService{
		medicineRepo: medicineRepo,
		movementRepo: movementRepo,
		scope:        scope,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *LedgerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// publishDomainEvents publishes all pending events from the aggregate.
// Errors are logged by the event bus, not propagated; the mutation has
// already committed.
func (s *LedgerService) publishDomainEvents(ctx context.Context, m *ledger.Medicine) {
	if s.eventPublisher == nil {
		return
	}
	events := m.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	m.ClearDomainEvents()
}

// RegisterMedicine creates a medicine and appends its opening movement
// in the same transaction.
func (s *LedgerService) RegisterMedicine(ctx context.Context, req RegisterMedicineRequest) (*StockMutationResponse, error) {
	units := make([]valueobject.Unit, 0, len(req.Units))
	for _, ur := range req.Units {
		u, err := valueobject.NewUnit(ur.Type, ur.QuantityInBaseUnits, ur.Price)
		if err != nil {
			return nil, shared.NewDomainError("UNKNOWN_UNIT", err.Error())
		}
		units = append(units, u)
	}

	medicine, err := ledger.NewMedicine(req.Name, req.GenericName, req.Category, req.Manufacturer,
		units, req.ReorderLevel, req.CostPrice)
	if err != nil {
		return nil, err
	}
	medicine.WithBatch(req.BatchNumber, req.ExpiryDate)

	opening, err := medicine.OpenStock(req.OpeningStock, req.PerformedBy, req.PerformedByRole)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		exists, err := repos.Medicines().ExistsByName(ctx, req.Name, req.BatchNumber)
		if err != nil {
			return err
		}
		if exists {
			return shared.ErrAlreadyExists
		}
		if err := repos.Medicines().Save(ctx, medicine); err != nil {
			return err
		}
		return repos.Movements().Create(ctx, opening)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, medicine)
	return &StockMutationResponse{
		Medicine: ToMedicineResponse(medicine),
		Movement: ToMovementResponse(opening),
	}, nil
}

// DeductStock records a sale in the named pack unit
func (s *LedgerService) DeductStock(ctx context.Context, medicineID uuid.UUID, req DeductStockRequest) (*StockMutationResponse, error) {
	return s.mutate(ctx, medicineID, func(m *ledger.Medicine) (*ledger.Movement, error) {
		return m.Deduct(req.Quantity, req.UnitType, req.ReferenceID, req.PerformedBy, req.PerformedByRole)
	})
}

// AddStock receives purchased stock in base units
func (s *LedgerService) AddStock(ctx context.Context, medicineID uuid.UUID, req AddStockRequest) (*StockMutationResponse, error) {
	return s.mutate(ctx, medicineID, func(m *ledger.Medicine) (*ledger.Movement, error) {
		return m.Add(req.Quantity, req.ReferenceID, req.PerformedBy, req.PerformedByRole)
	})
}

// RecordLoss writes off damaged or missing stock, flooring at zero
func (s *LedgerService) RecordLoss(ctx context.Context, medicineID uuid.UUID, req RecordLossRequest) (*StockMutationResponse, error) {
	return s.mutate(ctx, medicineID, func(m *ledger.Medicine) (*ledger.Movement, error) {
		return m.RecordLoss(req.Quantity, req.Reason, req.PerformedBy, req.PerformedByRole)
	})
}

// RecordAdjustment applies a signed correction after a physical count
func (s *LedgerService) RecordAdjustment(ctx context.Context, medicineID uuid.UUID, req AdjustStockRequest) (*StockMutationResponse, error) {
	return s.mutate(ctx, medicineID, func(m *ledger.Medicine) (*ledger.Movement, error) {
		return m.Adjust(req.Delta, req.Reason, req.PerformedBy, req.PerformedByRole)
	})
}

// RecordReturn puts a customer return back into stock
func (s *LedgerService) RecordReturn(ctx context.Context, medicineID uuid.UUID, req ReturnStockRequest) (*StockMutationResponse, error) {
	return s.mutate(ctx, medicineID, func(m *ledger.Medicine) (*ledger.Movement, error) {
		return m.RecordReturn(req.Quantity, req.ReferenceID, req.PerformedBy, req.PerformedByRole)
	})
}

// WriteOffExpired removes stock past its expiry date, flooring at zero
func (s *LedgerService) WriteOffExpired(ctx context.Context, medicineID uuid.UUID, req ExpireStockRequest) (*StockMutationResponse, error) {
	return s.mutate(ctx, medicineID, func(m *ledger.Medicine) (*ledger.Movement, error) {
		return m.WriteOffExpired(req.Quantity, req.Reason, req.PerformedBy, req.PerformedByRole)
	})
}

// DeactivateMedicine soft-deletes a medicine; its ledger stays intact
func (s *LedgerService) DeactivateMedicine(ctx context.Context, medicineID uuid.UUID) (*MedicineResponse, error) {
	var updated *ledger.Medicine
	err := s.withConflictRetry(func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			m, err := repos.Medicines().FindByID(ctx, medicineID)
			if err != nil {
				return err
			}
			if err := m.Deactivate(); err != nil {
				return err
			}
			if err := repos.Medicines().SaveWithLock(ctx, m); err != nil {
				return err
			}
			updated = m
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, updated)
	resp := ToMedicineResponse(updated)
	return &resp, nil
}

// ActivateMedicine brings a deactivated medicine back
func (s *LedgerService) ActivateMedicine(ctx context.Context, medicineID uuid.UUID) (*MedicineResponse, error) {
	var updated *ledger.Medicine
	err := s.withConflictRetry(func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			m, err := repos.Medicines().FindByID(ctx, medicineID)
			if err != nil {
				return err
			}
			if err := m.Activate(); err != nil {
				return err
			}
			if err := repos.Medicines().SaveWithLock(ctx, m); err != nil {
				return err
			}
			updated = m
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	resp := ToMedicineResponse(updated)
	return &resp, nil
}

// GetMedicine retrieves one medicine by ID
func (s *LedgerService) GetMedicine(ctx context.Context, medicineID uuid.UUID) (*MedicineResponse, error) {
	m, err := s.medicineRepo.FindByID(ctx, medicineID)
	if err != nil {
		return nil, err
	}
	resp := ToMedicineResponse(m)
	return &resp, nil
}

// ListMedicines retrieves medicines with filtering and pagination
func (s *LedgerService) ListMedicines(ctx context.Context, filter MedicineListFilter) ([]MedicineResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}

	domainFilter := ledger.MedicineFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
		Category:   filter.Category,
		ActiveOnly: filter.ActiveOnly,
		LowStock:   filter.LowStock,
	}

	items, err := s.medicineRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.medicineRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]MedicineResponse, 0, len(items))
	for i := range items {
		responses = append(responses, ToMedicineResponse(&items[i]))
	}
	return responses, total, nil
}

// ListLowStock retrieves active medicines at or under their reorder level
func (s *LedgerService) ListLowStock(ctx context.Context) ([]MedicineResponse, error) {
	items, err := s.medicineRepo.FindBelowReorderLevel(ctx, shared.DefaultFilter())
	if err != nil {
		return nil, err
	}
	responses := make([]MedicineResponse, 0, len(items))
	for i := range items {
		responses = append(responses, ToMedicineResponse(&items[i]))
	}
	return responses, nil
}

// ListMovements retrieves ledger entries with filtering and pagination
func (s *LedgerService) ListMovements(ctx context.Context, filter MovementListFilter) ([]MovementResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, 0, shared.ErrInvalidParameter
	}

	domainFilter := ledger.MovementFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "created_at",
			OrderDir: "desc",
		},
		MedicineID:  filter.MedicineID,
		ReferenceID: filter.ReferenceID,
		StartDate:   filter.StartDate,
		EndDate:     filter.EndDate,
	}
	if filter.Type != "" {
		mt := ledger.MovementType(filter.Type)
		if !mt.IsValid() {
			return nil, 0, shared.ErrInvalidParameter
		}
		domainFilter.Type = &mt
	}

	items, err := s.movementRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.movementRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]MovementResponse, 0, len(items))
	for i := range items {
		responses = append(responses, ToMovementResponse(&items[i]))
	}
	return responses, total, nil
}

// mutate runs one stock mutation: load, apply, save with version check,
// append movement. The cycle is replayed on optimistic lock conflicts.
func (s *LedgerService) mutate(
	ctx context.Context,
	medicineID uuid.UUID,
	apply func(*ledger.Medicine) (*ledger.Movement, error),
) (*StockMutationResponse, error) {
	var updated *ledger.Medicine
	var movement *ledger.Movement

	err := s.withConflictRetry(func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			m, err := repos.Medicines().FindByID(ctx, medicineID)
			if err != nil {
				return err
			}
			mv, err := apply(m)
			if err != nil {
				return err
			}
			if err := repos.Medicines().SaveWithLock(ctx, m); err != nil {
				return err
			}
			if err := repos.Movements().Create(ctx, mv); err != nil {
				return err
			}
			updated = m
			movement = mv
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, updated)
	return &StockMutationResponse{
		Medicine: ToMedicineResponse(updated),
		Movement: ToMovementResponse(movement),
	}, nil
}

// withConflictRetry replays fn while it fails with a concurrency
// conflict, up to maxConflictRetries extra attempts.
func (s *LedgerService) withConflictRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt <= maxConflictRetries; attempt++ {
		err = fn()
		if err == nil || !isConcurrencyConflict(err) {
			return err
		}
	}
	return err
}

func isConcurrencyConflict(err error) bool {
	var de *shared.DomainError
	if !errors.As(err, &de) {
		return false
	}
	return de.Code == shared.ErrConcurrencyConflict.Code
}
