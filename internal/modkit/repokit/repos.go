// Package repokit holds the seams repositories are written against
package repokit

import (
	"context"

	"tasksync/internal/platform/store"
)

type (
	// Queryer is the sql surface a bound repository uses
	Queryer = store.RowQuerier

	// TxRunner runs work inside a transaction
	TxRunner = store.TxRunner

	// Rows is a result set
	Rows = store.Rows

	// Row is a single row
	Row = store.Row

	// CommandTag reports a write outcome
	CommandTag = store.CommandTag

	// Columnar is the append-only ledger surface
	Columnar = store.Clickhouse
)

// WithTx runs fn inside a transaction on tx
func WithTx(ctx context.Context, tx TxRunner, fn func(q Queryer) error) error {
	return tx.Tx(ctx, fn)
}
