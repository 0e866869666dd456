package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle. Its concrete type is infra-defined
// (pgx.Tx for Postgres); repositories accept nil for the non-transactional
// path and NoTX documents that intent at call sites.
type Tx interface{}

var NoTX Tx

// TransactionManager executes a function inside one database transaction,
// passing the underlying handle via tx. If fn returns an error the
// transaction is rolled back, otherwise committed. Use-case code wraps each
// atomic ledger unit in exactly one WithTx call.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
