package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ark-network/raffle/internal/core/domain"
	"github.com/ark-network/raffle/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

// Keeper periodically checks whether the raffle needs a draw and triggers it.
// It only goes through the public Service operations.
type Keeper struct {
	svc       Service
	scheduler ports.SchedulerService
	interval  time.Duration
}

func NewKeeper(
	svc Service, scheduler ports.SchedulerService, interval time.Duration,
) (*Keeper, error) {
	if svc == nil {
		return nil, fmt.Errorf("missing raffle service")
	}
	if scheduler == nil {
		return nil, fmt.Errorf("missing scheduler")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("invalid keeper interval, must be greater than 0")
	}
	return &Keeper{svc, scheduler, interval}, nil
}

func (k *Keeper) Start() error {
	if err := k.scheduler.ScheduleTaskEvery(k.interval, k.runUpkeep); err != nil {
		return fmt.Errorf("failed to schedule upkeep task: %w", err)
	}
	k.scheduler.Start()
	log.Debugf("keeper started, checking upkeep every %s", k.interval)
	return nil
}

func (k *Keeper) Stop() {
	k.scheduler.Stop()
	log.Debug("keeper stopped")
}

func (k *Keeper) runUpkeep() {
	ctx := context.Background()

	status, err := k.svc.CheckUpkeep(ctx)
	if err != nil {
		log.WithError(err).Warn("keeper: failed to check upkeep")
		return
	}
	if !status.Needed {
		log.Tracef(
			"keeper: upkeep not needed (state %s, players %d, pot %d)",
			status.State, status.NumPlayers, status.Pot,
		)
		return
	}

	requestId, err := k.svc.PerformUpkeep(ctx)
	if err != nil {
		// The raffle may have changed between the check and the perform.
		if errors.Is(err, domain.ErrUpkeepNotNeeded) {
			log.WithError(err).Debug("keeper: skipped upkeep")
			return
		}
		log.WithError(err).Warn("keeper: failed to perform upkeep")
		return
	}

	log.Infof("keeper: requested draw %s", requestId)
}
