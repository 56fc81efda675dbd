package badgerdb

import (
	"context"
	"fmt"
	"sort"

	"github.com/ark-network/raffle/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const drawStoreDir = "draws"

type drawRepository struct {
	store *badgerhold.Store
}

func NewDrawRepository(config ...interface{}) (domain.DrawRepository, error) {
	dir, logger, err := parseConfig(drawStoreDir, config...)
	if err != nil {
		return nil, err
	}

	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open draw store: %s", err)
	}

	return &drawRepository{store}, nil
}

func (r *drawRepository) Add(_ context.Context, draw domain.Draw) error {
	return r.store.Insert(draw.Id, draw)
}

func (r *drawRepository) GetDrawsForRaffle(
	ctx context.Context, raffleId string,
) ([]domain.Draw, error) {
	query := badgerhold.Where("RaffleId").Eq(raffleId)
	draws, err := r.findDraws(ctx, query)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(draws, func(i, j int) bool {
		return draws[i].ResolvedAt < draws[j].ResolvedAt
	})
	return draws, nil
}

func (r *drawRepository) GetDrawWithRequestId(
	ctx context.Context, requestId string,
) (*domain.Draw, error) {
	query := badgerhold.Where("RequestId").Eq(requestId)
	draws, err := r.findDraws(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(draws) <= 0 {
		return nil, fmt.Errorf("draw with request id %s not found", requestId)
	}
	return &draws[0], nil
}

func (r *drawRepository) Close() {
	r.store.Close()
}

func (r *drawRepository) findDraws(
	_ context.Context, query *badgerhold.Query,
) ([]domain.Draw, error) {
	draws := make([]domain.Draw, 0)
	if err := r.store.Find(&draws, query); err != nil {
		return nil, err
	}
	return draws, nil
}
