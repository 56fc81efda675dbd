package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ark-network/raffle/internal/core/domain"
	"github.com/ark-network/raffle/internal/infrastructure/db/sqlite/sqlc/queries"
)

type drawRepository struct {
	db      *sql.DB
	querier *queries.Queries
}

func NewDrawRepository(config ...interface{}) (domain.DrawRepository, error) {
	db, err := parseConfig(config...)
	if err != nil {
		return nil, fmt.Errorf("cannot open draw repository: %w", err)
	}

	return &drawRepository{
		db:      db,
		querier: queries.New(db),
	}, nil
}

func (r *drawRepository) Add(ctx context.Context, draw domain.Draw) error {
	txBody := func(querierWithTx *queries.Queries) error {
		return querierWithTx.InsertDraw(
			ctx,
			queries.InsertDrawParams{
				ID:          draw.Id,
				RaffleID:    draw.RaffleId,
				RequestID:   draw.RequestId,
				Winner:      draw.Winner,
				WinnerIndex: int64(draw.WinnerIndex),
				Amount:      int64(draw.Amount),
				NumPlayers:  int64(draw.NumPlayers),
				RandomWord:  draw.RandomWord,
				RequestedAt: draw.RequestedAt,
				ResolvedAt:  draw.ResolvedAt,
			},
		)
	}

	return execTx(ctx, r.db, txBody)
}

func (r *drawRepository) GetDrawsForRaffle(
	ctx context.Context, raffleId string,
) ([]domain.Draw, error) {
	rows, err := r.querier.SelectDrawsForRaffle(ctx, raffleId)
	if err != nil {
		return nil, fmt.Errorf("failed to get draws: %w", err)
	}

	draws := make([]domain.Draw, 0, len(rows))
	for _, row := range rows {
		draws = append(draws, toDraw(row))
	}
	return draws, nil
}

func (r *drawRepository) GetDrawWithRequestId(
	ctx context.Context, requestId string,
) (*domain.Draw, error) {
	row, err := r.querier.SelectDrawWithRequestId(ctx, requestId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("draw with request id %s not found", requestId)
		}
		return nil, fmt.Errorf("failed to get draw: %w", err)
	}
	draw := toDraw(row)
	return &draw, nil
}

func (r *drawRepository) Close() {
	_ = r.db.Close()
}

func toDraw(row queries.Draw) domain.Draw {
	return domain.Draw{
		Id:          row.ID,
		RaffleId:    row.RaffleID,
		RequestId:   row.RequestID,
		Winner:      row.Winner,
		WinnerIndex: int(row.WinnerIndex),
		Amount:      uint64(row.Amount),
		NumPlayers:  int(row.NumPlayers),
		RandomWord:  row.RandomWord,
		RequestedAt: row.RequestedAt,
		ResolvedAt:  row.ResolvedAt,
	}
}
