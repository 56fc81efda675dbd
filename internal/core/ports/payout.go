package ports

import "context"

type PayoutService interface {
	Transfer(ctx context.Context, to string, amount uint64) error
	Balance(ctx context.Context, account string) (uint64, error)
	Close()
}
