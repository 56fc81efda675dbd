package domain

import "context"

type EventType int

const (
	EventTypeUndefined EventType = iota

	// Raffle
	EventTypeRaffleEntered
	EventTypeRaffleDrawRequested
	EventTypeWinnerPicked
)

func (t EventType) String() string {
	switch t {
	case EventTypeRaffleEntered:
		return "RAFFLE_ENTERED"
	case EventTypeRaffleDrawRequested:
		return "RAFFLE_DRAW_REQUESTED"
	case EventTypeWinnerPicked:
		return "WINNER_PICKED"
	default:
		return "UNDEFINED"
	}
}

type Event interface {
	GetTopic() string
	GetType() EventType
}

type EventRepository interface {
	Save(ctx context.Context, topic, id string, events []Event) error
	RegisterEventsHandler(topic string, handler func(events []Event))
	ClearRegisteredHandlers(topic ...string)
	Close()
}
