package domain

import "context"

type RaffleRepository interface {
	Upsert(ctx context.Context, raffle Raffle) error
	// Get returns nil without error if the raffle does not exist.
	Get(ctx context.Context, id string) (*Raffle, error)
	Close()
}

type DrawRepository interface {
	Add(ctx context.Context, draw Draw) error
	GetDrawsForRaffle(ctx context.Context, raffleId string) ([]Draw, error)
	GetDrawWithRequestId(ctx context.Context, requestId string) (*Draw, error)
	Close()
}
