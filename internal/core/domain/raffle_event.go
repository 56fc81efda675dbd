package domain

const RaffleTopic = "raffle"

type RaffleEvent struct {
	Id   string
	Type EventType
}

func (e RaffleEvent) GetTopic() string   { return RaffleTopic }
func (e RaffleEvent) GetType() EventType { return e.Type }

type RaffleEntered struct {
	RaffleEvent
	Player    string
	Amount    uint64
	Timestamp int64
}

type RaffleDrawRequested struct {
	RaffleEvent
	RequestId  string
	NumPlayers int
	Pot        uint64
	Timestamp  int64
}

type WinnerPicked struct {
	RaffleEvent
	RequestId   string
	Winner      string
	WinnerIndex int
	Amount      uint64
	RandomWord  string
	Timestamp   int64
}
