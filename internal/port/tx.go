package port

import "context"

// Tx is an explicit transaction handle. Checkout begins exactly one,
// threads it through every write, and commits or rolls it back exactly once
// at the top-level boundary.
type Tx interface {
	Commit() error
	// Rollback after a successful Commit is a no-op.
	Rollback() error
}

type TxManager interface {
	Begin(ctx context.Context) (Tx, error)
}
