package httpservice

import (
	"github.com/ark-network/raffle/internal/core/application"
	"github.com/ark-network/raffle/internal/core/domain"
)

type EnterRaffleRequest struct {
	Player string `json:"player"`
	Amount uint64 `json:"amount"`
}

type FulfillRandomWordsRequest struct {
	RequestId   string   `json:"request_id"`
	RandomWords []string `json:"random_words"`
	Proof       string   `json:"proof"`
}

type RaffleResponse struct {
	Id                   string   `json:"id"`
	EntranceFee          uint64   `json:"entrance_fee"`
	Interval             uint64   `json:"interval"`
	LastTimestamp        int64    `json:"last_timestamp"`
	State                string   `json:"state"`
	Players              []string `json:"players"`
	NumPlayers           int      `json:"num_players"`
	Pot                  uint64   `json:"pot"`
	RecentWinner         string   `json:"recent_winner"`
	PendingRequestId     string   `json:"pending_request_id,omitempty"`
	KeyHash              string   `json:"key_hash"`
	SubscriptionId       uint64   `json:"subscription_id"`
	RequestConfirmations uint32   `json:"request_confirmations"`
	CallbackGasLimit     uint32   `json:"callback_gas_limit"`
	NumWords             uint32   `json:"num_words"`
}

type EntranceFeeResponse struct {
	EntranceFee uint64 `json:"entrance_fee"`
}

type PlayerResponse struct {
	Index  int    `json:"index"`
	Player string `json:"player"`
}

type UpkeepResponse struct {
	UpkeepNeeded  bool   `json:"upkeep_needed"`
	Pot           uint64 `json:"pot"`
	NumPlayers    int    `json:"num_players"`
	State         string `json:"state"`
	LastTimestamp int64  `json:"last_timestamp,omitempty"`
	Interval      uint64 `json:"interval,omitempty"`
}

type PerformUpkeepResponse struct {
	RequestId string `json:"request_id"`
}

type DrawResponse struct {
	Id          string `json:"id"`
	RequestId   string `json:"request_id"`
	Winner      string `json:"winner"`
	WinnerIndex int    `json:"winner_index"`
	Amount      uint64 `json:"amount"`
	NumPlayers  int    `json:"num_players"`
	RandomWord  string `json:"random_word"`
	RequestedAt int64  `json:"requested_at"`
	ResolvedAt  int64  `json:"resolved_at"`
}

type DrawsResponse struct {
	Draws []DrawResponse `json:"draws"`
}

type BalanceResponse struct {
	Account string `json:"account"`
	Balance uint64 `json:"balance"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	// set for rejected upkeeps only
	Upkeep *UpkeepResponse `json:"upkeep,omitempty"`
}

func toRaffleResponse(info *application.RaffleInfo) RaffleResponse {
	return RaffleResponse{
		Id:                   info.Id,
		EntranceFee:          info.EntranceFee,
		Interval:             info.Interval,
		LastTimestamp:        info.LastTimestamp,
		State:                info.State.String(),
		Players:              info.Players,
		NumPlayers:           len(info.Players),
		Pot:                  info.Pot,
		RecentWinner:         info.RecentWinner,
		PendingRequestId:     info.PendingRequestId,
		KeyHash:              info.Request.KeyHash,
		SubscriptionId:       info.Request.SubscriptionId,
		RequestConfirmations: info.Request.RequestConfirmations,
		CallbackGasLimit:     info.Request.CallbackGasLimit,
		NumWords:             info.Request.NumWords,
	}
}

func toUpkeepResponse(status *application.UpkeepStatus) UpkeepResponse {
	return UpkeepResponse{
		UpkeepNeeded:  status.Needed,
		Pot:           status.Pot,
		NumPlayers:    status.NumPlayers,
		State:         status.State.String(),
		LastTimestamp: status.LastTimestamp,
		Interval:      status.Interval,
	}
}

func toDrawsResponse(draws []domain.Draw) DrawsResponse {
	list := make([]DrawResponse, 0, len(draws))
	for _, d := range draws {
		list = append(list, DrawResponse{
			Id:          d.Id,
			RequestId:   d.RequestId,
			Winner:      d.Winner,
			WinnerIndex: d.WinnerIndex,
			Amount:      d.Amount,
			NumPlayers:  d.NumPlayers,
			RandomWord:  d.RandomWord,
			RequestedAt: d.RequestedAt,
			ResolvedAt:  d.ResolvedAt,
		})
	}
	return DrawsResponse{list}
}
