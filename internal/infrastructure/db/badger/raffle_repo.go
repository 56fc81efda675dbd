package badgerdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/ark-network/raffle/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const raffleStoreDir = "raffles"

type raffleRepository struct {
	store *badgerhold.Store
}

func NewRaffleRepository(config ...interface{}) (domain.RaffleRepository, error) {
	dir, logger, err := parseConfig(raffleStoreDir, config...)
	if err != nil {
		return nil, err
	}

	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open raffle store: %s", err)
	}

	return &raffleRepository{store}, nil
}

func (r *raffleRepository) Upsert(_ context.Context, raffle domain.Raffle) error {
	return r.store.Upsert(raffle.Id, raffle)
}

func (r *raffleRepository) Get(_ context.Context, id string) (*domain.Raffle, error) {
	var raffle domain.Raffle
	if err := r.store.Get(id, &raffle); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if raffle.Players == nil {
		raffle.Players = make([]string, 0)
	}
	return &raffle, nil
}

func (r *raffleRepository) Close() {
	r.store.Close()
}
