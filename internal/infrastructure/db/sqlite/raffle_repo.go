package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ark-network/raffle/internal/core/domain"
	"github.com/ark-network/raffle/internal/infrastructure/db/sqlite/sqlc/queries"
)

type raffleRepository struct {
	db      *sql.DB
	querier *queries.Queries
}

func NewRaffleRepository(config ...interface{}) (domain.RaffleRepository, error) {
	db, err := parseConfig(config...)
	if err != nil {
		return nil, fmt.Errorf("cannot open raffle repository: %w", err)
	}

	return &raffleRepository{
		db:      db,
		querier: queries.New(db),
	}, nil
}

func (r *raffleRepository) Upsert(ctx context.Context, raffle domain.Raffle) error {
	txBody := func(querierWithTx *queries.Queries) error {
		if err := querierWithTx.UpsertRaffle(
			ctx,
			queries.UpsertRaffleParams{
				ID:               raffle.Id,
				EntranceFee:      int64(raffle.EntranceFee),
				DrawInterval:     int64(raffle.Interval),
				LastTimestamp:    raffle.LastTimestamp,
				State:            int64(raffle.State),
				Pot:              int64(raffle.Pot),
				RecentWinner:     raffle.RecentWinner,
				PendingRequestID: raffle.PendingRequestId,
				RequestTimestamp: raffle.RequestTimestamp,
				Version:          int64(raffle.Version),
			},
		); err != nil {
			return fmt.Errorf("failed to upsert raffle: %w", err)
		}

		if err := querierWithTx.DeleteRafflePlayers(ctx, raffle.Id); err != nil {
			return fmt.Errorf("failed to delete players: %w", err)
		}

		for i, player := range raffle.Players {
			if err := querierWithTx.InsertRafflePlayer(
				ctx,
				queries.InsertRafflePlayerParams{
					RaffleID: raffle.Id,
					Position: int64(i),
					Player:   player,
				},
			); err != nil {
				return fmt.Errorf("failed to insert player: %w", err)
			}
		}

		return nil
	}

	return execTx(ctx, r.db, txBody)
}

func (r *raffleRepository) Get(ctx context.Context, id string) (*domain.Raffle, error) {
	row, err := r.querier.SelectRaffle(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get raffle: %w", err)
	}

	players, err := r.querier.SelectRafflePlayers(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get players: %w", err)
	}
	if players == nil {
		players = make([]string, 0)
	}

	return &domain.Raffle{
		Id:               row.ID,
		EntranceFee:      uint64(row.EntranceFee),
		Interval:         uint64(row.DrawInterval),
		LastTimestamp:    row.LastTimestamp,
		State:            domain.RaffleState(row.State),
		Players:          players,
		Pot:              uint64(row.Pot),
		RecentWinner:     row.RecentWinner,
		PendingRequestId: row.PendingRequestID,
		RequestTimestamp: row.RequestTimestamp,
		Version:          uint(row.Version),
	}, nil
}

func (r *raffleRepository) Close() {
	_ = r.db.Close()
}
