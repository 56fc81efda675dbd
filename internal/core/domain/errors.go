package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientFee      = errors.New("not enough value sent to enter the raffle")
	ErrRaffleNotOpen        = errors.New("raffle is not open")
	ErrUpkeepNotNeeded      = errors.New("upkeep not needed")
	ErrUnknownRequest       = errors.New("unknown randomness request")
	ErrPayoutTransferFailed = errors.New("payout transfer failed")
	ErrInvalidPlayer        = errors.New("missing player")
	ErrMissingRandomWords   = errors.New("missing random words")
	ErrPlayerNotFound       = errors.New("player not found")
	ErrPotOverflow          = errors.New("entry would overflow the pot")
	ErrInvalidProof         = errors.New("invalid randomness proof")
)

// UpkeepNotNeededError carries the raffle snapshot that made a draw request
// ineligible. It matches ErrUpkeepNotNeeded with errors.Is.
type UpkeepNotNeededError struct {
	Pot        uint64
	NumPlayers int
	State      RaffleState
}

func (e *UpkeepNotNeededError) Error() string {
	return fmt.Sprintf(
		"%s: pot %d, players %d, state %s",
		ErrUpkeepNotNeeded, e.Pot, e.NumPlayers, e.State,
	)
}

func (e *UpkeepNotNeededError) Is(target error) bool {
	return target == ErrUpkeepNotNeeded
}
