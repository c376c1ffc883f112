package repositories

import "context"

// Transactor runs fn inside a single storage transaction.
// Repositories called with the ctx passed to fn join that transaction.
// fn returning an error rolls the transaction back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
