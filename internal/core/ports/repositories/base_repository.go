package repositories

import (
	"context"
)

// TransactionManager runs a function inside one unit of work. Repository calls
// made with the context passed to fn join that unit of work; if fn returns an
// error every write is rolled back. A nested call joins the outer unit.
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
