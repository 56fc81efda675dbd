package domain

import "github.com/google/uuid"

// Draw is the record of a completed round.
type Draw struct {
	Id          string
	RaffleId    string
	RequestId   string
	Winner      string
	WinnerIndex int
	Amount      uint64
	NumPlayers  int
	RandomWord  string
	RequestedAt int64
	ResolvedAt  int64
}

func NewDraw(requestedAt int64, numPlayers int, event WinnerPicked) Draw {
	return Draw{
		Id:          uuid.New().String(),
		RaffleId:    event.Id,
		RequestId:   event.RequestId,
		Winner:      event.Winner,
		WinnerIndex: event.WinnerIndex,
		Amount:      event.Amount,
		NumPlayers:  numPlayers,
		RandomWord:  event.RandomWord,
		RequestedAt: requestedAt,
		ResolvedAt:  event.Timestamp,
	}
}
