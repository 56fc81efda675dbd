package application

import (
	"context"
	"math/big"

	"github.com/ark-network/raffle/internal/core/domain"
	"github.com/ark-network/raffle/internal/core/ports"
)

type Service interface {
	Start() error
	Stop()
	EnterRaffle(ctx context.Context, player string, amount uint64) error
	CheckUpkeep(ctx context.Context) (*UpkeepStatus, error)
	PerformUpkeep(ctx context.Context) (requestId string, err error)
	FulfillRandomWords(
		ctx context.Context, requestId string, randomWords []*big.Int,
	) error
	// SubmitFulfillment accepts random words from outside the provider only
	// if their proof verifies against the configured request.
	SubmitFulfillment(
		ctx context.Context, fulfillment ports.RandomWordsFulfillment,
	) error
	GetEntranceFee(ctx context.Context) uint64
	GetRaffle(ctx context.Context) (*RaffleInfo, error)
	GetPlayer(ctx context.Context, index int) (string, error)
	GetDraws(ctx context.Context) ([]domain.Draw, error)
	GetPayoutBalance(ctx context.Context, account string) (uint64, error)
}

type Config struct {
	RaffleId    string
	EntranceFee uint64
	Interval    uint64
	Request     RequestConfig
}

// RequestConfig holds the parameters forwarded to the randomness provider on
// every draw request.
type RequestConfig struct {
	KeyHash              string
	SubscriptionId       uint64
	RequestConfirmations uint32
	CallbackGasLimit     uint32
	NumWords             uint32
}

func (c RequestConfig) toRequest() ports.RandomWordsRequest {
	return ports.RandomWordsRequest{
		KeyHash:              c.KeyHash,
		SubscriptionId:       c.SubscriptionId,
		RequestConfirmations: c.RequestConfirmations,
		CallbackGasLimit:     c.CallbackGasLimit,
		NumWords:             c.NumWords,
	}
}

type RaffleInfo struct {
	Id               string
	EntranceFee      uint64
	Interval         uint64
	LastTimestamp    int64
	State            domain.RaffleState
	Players          []string
	Pot              uint64
	RecentWinner     string
	PendingRequestId string
	Request          RequestConfig
}

type UpkeepStatus struct {
	Needed        bool
	Pot           uint64
	NumPlayers    int
	State         domain.RaffleState
	LastTimestamp int64
	Interval      uint64
}
