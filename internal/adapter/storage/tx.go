package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/storefront/internal/port"
)

// sqlTx wraps *sql.Tx behind the port.Tx handle. done guards against a
// rollback after commit returning sql.ErrTxDone to the caller.
type sqlTx struct {
	tx   *sql.Tx
	done bool
}

func (t *sqlTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return err
	}
	t.done = true
	return nil
}

func (t *sqlTx) Rollback() error {
	if t.done {
		return nil
	}
	return t.tx.Rollback()
}

type SQLTxManager struct {
	db *sql.DB
}

func NewSQLTxManager(db *sql.DB) *SQLTxManager {
	return &SQLTxManager{db: db}
}

func (m *SQLTxManager) Begin(ctx context.Context) (port.Tx, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &sqlTx{tx: tx}, nil
}

// unwrap recovers the *sql.Tx from a port.Tx handed back by this package.
func unwrap(tx port.Tx) (*sql.Tx, error) {
	st, ok := tx.(*sqlTx)
	if !ok {
		return nil, fmt.Errorf("unexpected transaction handle %T", tx)
	}
	return st.tx, nil
}
