package repositories

import "context"

// TxFn is the unit of work run by ExecTx. The class service uses it to read
// the ancestor chain and write the class atomically.
type TxFn func(ctx context.Context) error

// TransactionManager is implemented per backend. Postgres and sqlite open a
// real transaction; DynamoDB serializes fn behind a process-wide lock.
type TransactionManager interface {
	// ExecTx runs fn in a transaction, joining one already open on ctx
	ExecTx(ctx context.Context, fn TxFn) error
}
