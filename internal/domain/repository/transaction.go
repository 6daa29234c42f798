package repository

import "context"

// TransactionManager defines the interface for managing database transactions.
// This allows the use case layer to handle transactions without depending on a specific DB driver like GORM.
type TransactionManager interface {
	// Execute runs fn within a read-write transaction. If fn returns an error
	// or panics, every write performed through the factory is rolled back.
	Execute(ctx context.Context, fn func(txRepoFactory RepositoryFactory) error) error

	// ExecuteReadOnly runs fn against a consistent snapshot. The transaction
	// is always rolled back, so writes attempted inside fn never persist.
	ExecuteReadOnly(ctx context.Context, fn func(txRepoFactory RepositoryFactory) error) error
}

// RepositoryFactory provides a way to get repository instances that are bound to a specific transaction.
// A transaction spans every table, so all three repositories share it.
type RepositoryFactory interface {
	UserRepo() UserRepository
	MedicineRepo() MedicineRepository
	OrderRepo() OrderRepository
}
