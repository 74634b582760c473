package dynamodb

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jbaikge/boneless/internal/domain/repositories"
)

// TransactionManager serializes read-check-write sequences within this
// process. Multi-item atomicity comes from TransactWriteItems inside the
// repositories, so fn runs against the table directly.
type TransactionManager struct {
	mu     sync.Mutex
	logger *slog.Logger
}

// NewTransactionManager creates a new transaction manager
func NewTransactionManager(logger *slog.Logger) repositories.TransactionManager {
	return &TransactionManager{logger: logger}
}

type txKey struct{}

// ExecTx runs fn while holding the manager's lock, reusing it when ctx
// already holds it
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if ctx.Value(txKey{}) == tm {
		return fn(ctx)
	}
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return fn(context.WithValue(ctx, txKey{}, tm))
}
