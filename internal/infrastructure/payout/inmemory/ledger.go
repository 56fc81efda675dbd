package inmemorypayout

import (
	"context"
	"fmt"
	"sync"

	"github.com/ark-network/raffle/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

type ledger struct {
	lock     *sync.RWMutex
	balances map[string]uint64
	closed   bool
}

// NewLedger returns a process local ledger, balances are lost on restart.
func NewLedger() ports.PayoutService {
	return &ledger{
		lock:     &sync.RWMutex{},
		balances: make(map[string]uint64),
	}
}

func (l *ledger) Transfer(_ context.Context, to string, amount uint64) error {
	if len(to) <= 0 {
		return fmt.Errorf("missing recipient")
	}
	if amount == 0 {
		return fmt.Errorf("invalid amount, must be greater than 0")
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	if l.closed {
		return fmt.Errorf("ledger is closed")
	}

	balance := l.balances[to]
	if balance+amount < balance {
		return fmt.Errorf("balance overflow for %s", to)
	}
	l.balances[to] = balance + amount

	log.Debugf("credited %d to %s", amount, to)
	return nil
}

func (l *ledger) Balance(_ context.Context, account string) (uint64, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.balances[account], nil
}

func (l *ledger) Close() {
	l.lock.Lock()
	defer l.lock.Unlock()

	l.closed = true
}
