package domain

import (
	"fmt"
	"math"
	"math/big"

	"github.com/google/uuid"
)

const (
	RaffleOpen RaffleState = iota
	RaffleCalculating
)

type RaffleState int

func (s RaffleState) String() string {
	switch s {
	case RaffleOpen:
		return "OPEN"
	case RaffleCalculating:
		return "CALCULATING"
	default:
		return "UNDEFINED"
	}
}

type Raffle struct {
	Id               string
	EntranceFee      uint64
	Interval         uint64 // seconds
	LastTimestamp    int64
	State            RaffleState
	Players          []string
	Pot              uint64
	RecentWinner     string
	PendingRequestId string
	RequestTimestamp int64
	Version          uint
}

func NewRaffle(id string, entranceFee, interval uint64, now int64) (*Raffle, error) {
	if entranceFee == 0 {
		return nil, fmt.Errorf("invalid entrance fee, must be greater than 0")
	}
	if interval == 0 {
		return nil, fmt.Errorf("invalid interval, must be greater than 0")
	}
	if len(id) <= 0 {
		id = uuid.New().String()
	}

	return &Raffle{
		Id:            id,
		EntranceFee:   entranceFee,
		Interval:      interval,
		LastTimestamp: now,
		State:         RaffleOpen,
		Players:       make([]string, 0),
	}, nil
}

func (r *Raffle) Enter(player string, amount uint64, now int64) (Event, error) {
	if len(player) <= 0 {
		return nil, ErrInvalidPlayer
	}
	if amount < r.EntranceFee {
		return nil, ErrInsufficientFee
	}
	if !r.IsOpen() {
		return nil, ErrRaffleNotOpen
	}
	// The pot is paid out and stored as a signed 64-bit value.
	if r.Pot > math.MaxInt64 || amount > math.MaxInt64-r.Pot {
		return nil, ErrPotOverflow
	}

	event := RaffleEntered{
		RaffleEvent: RaffleEvent{Id: r.Id, Type: EventTypeRaffleEntered},
		Player:      player,
		Amount:      amount,
		Timestamp:   now,
	}
	r.raise(event)

	return event, nil
}

// CheckUpkeep tells whether a draw can be requested at the given time.
func (r *Raffle) CheckUpkeep(now int64) bool {
	timePassed := now >= r.LastTimestamp &&
		uint64(now-r.LastTimestamp) >= r.Interval
	return timePassed && r.IsOpen() && r.Pot > 0 && len(r.Players) > 0
}

func (r *Raffle) RequestDraw(requestId string, now int64) (Event, error) {
	if len(requestId) <= 0 {
		return nil, fmt.Errorf("missing request id")
	}
	if !r.CheckUpkeep(now) {
		return nil, r.UpkeepNotNeeded()
	}

	event := RaffleDrawRequested{
		RaffleEvent: RaffleEvent{Id: r.Id, Type: EventTypeRaffleDrawRequested},
		RequestId:   requestId,
		NumPlayers:  len(r.Players),
		Pot:         r.Pot,
		Timestamp:   now,
	}
	r.raise(event)

	return event, nil
}

// PickWinner selects players[word mod len(players)], empties the round and
// reopens the raffle. The pot is moved into the returned event.
func (r *Raffle) PickWinner(requestId string, randomWord *big.Int, now int64) (Event, error) {
	if !r.IsCalculating() || len(r.PendingRequestId) <= 0 ||
		requestId != r.PendingRequestId {
		return nil, ErrUnknownRequest
	}
	if randomWord == nil {
		return nil, ErrMissingRandomWords
	}
	if randomWord.Sign() < 0 {
		return nil, fmt.Errorf("invalid random word, must not be negative")
	}
	if len(r.Players) <= 0 {
		return nil, fmt.Errorf("no players to pick a winner from")
	}

	numPlayers := big.NewInt(int64(len(r.Players)))
	index := int(new(big.Int).Mod(randomWord, numPlayers).Int64())

	event := WinnerPicked{
		RaffleEvent: RaffleEvent{Id: r.Id, Type: EventTypeWinnerPicked},
		RequestId:   requestId,
		Winner:      r.Players[index],
		WinnerIndex: index,
		Amount:      r.Pot,
		RandomWord:  randomWord.String(),
		Timestamp:   now,
	}
	r.raise(event)

	return event, nil
}

func (r *Raffle) UpkeepNotNeeded() *UpkeepNotNeededError {
	return &UpkeepNotNeededError{
		Pot:        r.Pot,
		NumPlayers: len(r.Players),
		State:      r.State,
	}
}

func (r *Raffle) IsOpen() bool {
	return r.State == RaffleOpen
}

func (r *Raffle) IsCalculating() bool {
	return r.State == RaffleCalculating
}

func (r *Raffle) NumPlayers() int {
	return len(r.Players)
}

func (r *Raffle) GetPlayer(index int) (string, error) {
	if index < 0 || index >= len(r.Players) {
		return "", ErrPlayerNotFound
	}
	return r.Players[index], nil
}

func (r *Raffle) Clone() *Raffle {
	clone := *r
	clone.Players = append(make([]string, 0, len(r.Players)), r.Players...)
	return &clone
}

func (r *Raffle) raise(event Event) {
	r.on(event)
}

func (r *Raffle) on(event Event) {
	switch e := event.(type) {
	case RaffleEntered:
		r.Players = append(r.Players, e.Player)
		r.Pot += e.Amount
	case RaffleDrawRequested:
		r.State = RaffleCalculating
		r.PendingRequestId = e.RequestId
		r.RequestTimestamp = e.Timestamp
	case WinnerPicked:
		r.RecentWinner = e.Winner
		r.Players = make([]string, 0)
		r.State = RaffleOpen
		r.LastTimestamp = e.Timestamp
		r.PendingRequestId = ""
		r.RequestTimestamp = 0
		r.Pot = 0
	}

	r.Version++
}
