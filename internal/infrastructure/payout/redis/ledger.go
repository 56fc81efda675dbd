package redispayout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ark-network/raffle/internal/core/ports"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	balanceKeyPrefix = "raffle:balance:"
	payoutsKey       = "raffle:payouts"
)

type payoutRecord struct {
	To        string `json:"to"`
	Amount    uint64 `json:"amount"`
	Timestamp int64  `json:"timestamp"`
}

type ledger struct {
	rdb          *redis.Client
	numOfRetries int
}

func NewLedger(redisUrl string, numOfRetries int) (ports.PayoutService, error) {
	opts, err := redis.ParseURL(redisUrl)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if numOfRetries <= 0 {
		numOfRetries = 1
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &ledger{rdb, numOfRetries}, nil
}

// Transfer credits the recipient and appends the payout to the history in a
// single optimistic transaction.
func (l *ledger) Transfer(ctx context.Context, to string, amount uint64) error {
	if len(to) <= 0 {
		return fmt.Errorf("missing recipient")
	}
	if amount == 0 {
		return fmt.Errorf("invalid amount, must be greater than 0")
	}
	if amount > math.MaxInt64 {
		return fmt.Errorf("invalid amount, exceeds max ledger value")
	}

	record, err := json.Marshal(payoutRecord{to, amount, time.Now().Unix()})
	if err != nil {
		return err
	}

	key := balanceKeyPrefix + to
	for attempt := 0; attempt < l.numOfRetries; attempt++ {
		err = l.rdb.Watch(ctx, func(tx *redis.Tx) error {
			balance, err := tx.Get(ctx, key).Int64()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
			if balance > math.MaxInt64-int64(amount) {
				return fmt.Errorf("balance overflow for %s", to)
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.IncrBy(ctx, key, int64(amount))
				pipe.RPush(ctx, payoutsKey, record)
				return nil
			})
			return err
		}, key)
		if err == nil {
			log.Debugf("credited %d to %s", amount, to)
			return nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("failed to credit %s after %d attempts: %w", to, l.numOfRetries, err)
}

func (l *ledger) Balance(ctx context.Context, account string) (uint64, error) {
	balance, err := l.rdb.Get(ctx, balanceKeyPrefix+account).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return balance, nil
}

func (l *ledger) Close() {
	if err := l.rdb.Close(); err != nil {
		log.WithError(err).Warn("failed to close redis client")
	}
}
