package scheduler

import (
	"fmt"
	"time"

	"github.com/ark-network/raffle/internal/core/ports"
	"github.com/go-co-op/gocron"
)

type service struct {
	scheduler *gocron.Scheduler
}

func NewScheduler() ports.SchedulerService {
	svc := gocron.NewScheduler(time.UTC)
	// an upkeep still running when the next tick fires is not run twice
	svc.SingletonModeAll()
	return &service{svc}
}

func (s *service) Start() {
	s.scheduler.StartAsync()
}

func (s *service) Stop() {
	s.scheduler.Stop()
}

func (s *service) ScheduleTaskEvery(interval time.Duration, task func()) error {
	if interval <= 0 {
		return fmt.Errorf("invalid interval, must be greater than 0")
	}
	if task == nil {
		return fmt.Errorf("missing task")
	}

	_, err := s.scheduler.Every(interval).WaitForSchedule().Do(task)
	return err
}
