package mocks

import (
	"context"

	"github.com/phrazzld/taskboard-api/internal/store"
)

// NoopTxRunner implements store.TxRunner without a database. The function is
// called with a nil *sql.Tx, which mock stores accept in WithTx.
type NoopTxRunner struct {
	// Err, when set, is returned instead of calling the function.
	Err error

	// Calls counts RunInTx invocations.
	Calls int
}

// RunInTx implements store.TxRunner.
func (r *NoopTxRunner) RunInTx(ctx context.Context, fn store.TxFn) error {
	r.Calls++
	if r.Err != nil {
		return r.Err
	}
	return fn(ctx, nil)
}

var _ store.TxRunner = (*NoopTxRunner)(nil)
