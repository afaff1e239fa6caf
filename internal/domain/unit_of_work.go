package domain

import "context"

// UnitOfWork runs a function inside one database transaction.
// Repositories called with the context passed to fn take part in the transaction;
// if fn returns an error everything is rolled back.
type UnitOfWork interface {
	WithTransaction(ctx context.Context, fn func(context.Context) error) error
}
