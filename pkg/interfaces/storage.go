package interfaces

import "context"

// StorageProvider abstracts the output medium the site generator writes to.
// The operation string routes the request; arguments are positional per
// operation. Disk, in-memory, and object-store implementations all satisfy
// the same contract.
type StorageProvider interface {
	Query(ctx context.Context, op string, args ...any) (Rows, error)
	Exec(ctx context.Context, op string, args ...any) (Result, error)
	Transaction(ctx context.Context, fn func(tx Transaction) error) error
}

// Rows is a minimal cursor over query results.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
}

// Result reports the outcome of a mutating operation.
type Result interface {
	RowsAffected() (int64, error)
	LastInsertId() (int64, error)
}

// Transaction groups storage operations. Providers without transactional
// semantics may execute operations immediately and treat Commit/Rollback as
// no-ops.
type Transaction interface {
	StorageProvider
	Commit() error
	Rollback() error
}
