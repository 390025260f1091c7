package ledger

import (
	"context"

	"github.com/medstock/backend/internal/domain/ledger"
)

// TransactionScope provides transactional access to the ledger repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll
// back atomically. Every stock mutation runs inside one scope so the
// medicine row and its movement can never diverge.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the ledger repositories
// scoped to the current transaction.
type TransactionalRepositories interface {
	// Medicines returns the medicine repository scoped to the current transaction
	Medicines() ledger.MedicineRepository
	// Movements returns the movement repository scoped to the current transaction
	Movements() ledger.MovementRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for tests.
type NoOpTransactionScope struct {
	medicineRepo ledger.MedicineRepository
	movementRepo ledger.MovementRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	medicineRepo ledger.MedicineRepository,
	movementRepo ledger.MovementRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		medicineRepo: medicineRepo,
		movementRepo: movementRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Medicines returns the medicine repository.
func (s *NoOpTransactionScope) Medicines() ledger.MedicineRepository {
	return s.medicineRepo
}

// Movements returns the movement repository.
func (s *NoOpTransactionScope) Movements() ledger.MovementRepository {
	return s.movementRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
