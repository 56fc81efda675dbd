package application

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"sync"
	"time"

	"github.com/ark-network/raffle/internal/core/domain"
	"github.com/ark-network/raffle/internal/core/ports"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/ark-network/raffle/internal/core/application"

type service struct {
	// services
	repoManager ports.RepoManager
	randomness  ports.RandomnessProvider
	payout      ports.PayoutService
	metrics     *Metrics
	tracer      trace.Tracer

	// config
	requestConfig RequestConfig
	now           func() time.Time

	lock   *sync.RWMutex
	raffle *domain.Raffle
}

func NewService(
	cfg Config,
	repoManager ports.RepoManager,
	randomness ports.RandomnessProvider,
	payout ports.PayoutService,
	metrics *Metrics,
) (Service, error) {
	return newService(cfg, repoManager, randomness, payout, metrics, time.Now)
}

func newService(
	cfg Config,
	repoManager ports.RepoManager,
	randomness ports.RandomnessProvider,
	payout ports.PayoutService,
	metrics *Metrics,
	now func() time.Time,
) (*service, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if randomness == nil {
		return nil, fmt.Errorf("missing randomness provider")
	}
	if payout == nil {
		return nil, fmt.Errorf("missing payout service")
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	if cfg.Request.NumWords == 0 {
		cfg.Request.NumWords = 1
	}

	ctx := context.Background()
	raffle, err := repoManager.Raffles().Get(ctx, cfg.RaffleId)
	if err != nil {
		return nil, fmt.Errorf("failed to get raffle from db: %w", err)
	}

	if raffle == nil {
		raffle, err = domain.NewRaffle(
			cfg.RaffleId, cfg.EntranceFee, cfg.Interval, now().Unix(),
		)
		if err != nil {
			return nil, err
		}
		if err := repoManager.Raffles().Upsert(ctx, *raffle); err != nil {
			return nil, fmt.Errorf("failed to store new raffle: %w", err)
		}
		log.Infof("created raffle %s", raffle.Id)
	} else {
		if raffle.EntranceFee != cfg.EntranceFee || raffle.Interval != cfg.Interval {
			log.Warnf(
				"raffle %s was created with entrance fee %d and interval %d, "+
					"ignoring configured entrance fee %d and interval %d",
				raffle.Id, raffle.EntranceFee, raffle.Interval,
				cfg.EntranceFee, cfg.Interval,
			)
		}
		log.Infof(
			"restored raffle %s in state %s with %d players",
			raffle.Id, raffle.State, len(raffle.Players),
		)
	}

	svc := &service{
		repoManager:   repoManager,
		randomness:    randomness,
		payout:        payout,
		metrics:       metrics,
		tracer:        otel.Tracer(tracerName),
		requestConfig: cfg.Request,
		now:           now,
		lock:          &sync.RWMutex{},
		raffle:        raffle,
	}
	metrics.observeRaffle(raffle)

	repoManager.Events().RegisterEventsHandler(
		domain.RaffleTopic, func(events []domain.Event) {
			defer func() {
				if r := recover(); r != nil {
					log.Errorf("recovered from panic in raffle events handler: %v", r)
				}
			}()

			svc.metrics.observeEvents(events)
			for _, event := range events {
				log.WithField("type", event.GetType()).Debugf("raffle event %+v", event)
			}
		},
	)

	randomness.RegisterFulfillmentHandler(svc.onFulfillment)

	return svc, nil
}

func (s *service) Start() error {
	log.Debug("starting randomness provider...")
	if err := s.randomness.Start(); err != nil {
		return fmt.Errorf("failed to start randomness provider: %w", err)
	}

	s.lock.RLock()
	calculating := s.raffle.IsCalculating()
	requestId := s.raffle.PendingRequestId
	s.lock.RUnlock()

	// A draw requested before a restart is still waiting for its random words.
	if calculating {
		if err := s.randomness.ResumeRequest(
			context.Background(), requestId, s.requestConfig.toRequest(),
		); err != nil {
			log.WithError(err).Warnf("failed to resume randomness request %s", requestId)
			return nil
		}
		log.Infof("resumed pending randomness request %s", requestId)
	}
	return nil
}

func (s *service) Stop() {
	s.randomness.Stop()
	log.Debug("stopped randomness provider")

	s.repoManager.Events().ClearRegisteredHandlers(domain.RaffleTopic)
	s.repoManager.Close()
	log.Debug("closed connection to db")

	s.payout.Close()
	log.Debug("closed payout service")
}

func (s *service) EnterRaffle(ctx context.Context, player string, amount uint64) error {
	ctx, span := s.tracer.Start(ctx, "raffle.enter", trace.WithAttributes(
		attribute.String("player", player),
		attribute.String("amount", strconv.FormatUint(amount, 10)),
	))
	defer span.End()

	s.lock.Lock()
	defer s.lock.Unlock()

	raffle := s.raffle.Clone()
	event, err := raffle.Enter(player, amount, s.now().Unix())
	if err != nil {
		recordError(span, err)
		return err
	}

	if err := s.repoManager.Raffles().Upsert(ctx, *raffle); err != nil {
		recordError(span, err)
		return fmt.Errorf("failed to store raffle: %w", err)
	}

	s.raffle = raffle
	s.metrics.entries.Inc()
	s.metrics.observeRaffle(raffle)
	s.propagateEvents(ctx, event)

	log.WithFields(log.Fields{
		"player": player,
		"amount": amount,
	}).Debug("raffle entered")
	return nil
}

func (s *service) CheckUpkeep(ctx context.Context) (*UpkeepStatus, error) {
	_, span := s.tracer.Start(ctx, "raffle.check_upkeep")
	defer span.End()

	s.lock.RLock()
	defer s.lock.RUnlock()

	return &UpkeepStatus{
		Needed:        s.raffle.CheckUpkeep(s.now().Unix()),
		Pot:           s.raffle.Pot,
		NumPlayers:    len(s.raffle.Players),
		State:         s.raffle.State,
		LastTimestamp: s.raffle.LastTimestamp,
		Interval:      s.raffle.Interval,
	}, nil
}

func (s *service) PerformUpkeep(ctx context.Context) (string, error) {
	ctx, span := s.tracer.Start(ctx, "raffle.perform_upkeep")
	defer span.End()

	s.lock.Lock()
	defer s.lock.Unlock()

	now := s.now().Unix()
	if !s.raffle.CheckUpkeep(now) {
		err := s.raffle.UpkeepNotNeeded()
		recordError(span, err)
		return "", err
	}

	requestId, err := s.randomness.RequestRandomWords(ctx, s.requestConfig.toRequest())
	if err != nil {
		recordError(span, err)
		return "", fmt.Errorf("failed to request random words: %w", err)
	}

	raffle := s.raffle.Clone()
	event, err := raffle.RequestDraw(requestId, now)
	if err != nil {
		recordError(span, err)
		return "", err
	}

	// The provider already holds the request, so the state flips even if
	// storing the snapshot fails.
	s.raffle = raffle
	s.storeRaffle(ctx)
	s.metrics.drawsRequested.Inc()
	s.metrics.observeRaffle(raffle)
	s.propagateEvents(ctx, event)

	span.SetAttributes(attribute.String("request_id", requestId))
	log.WithFields(log.Fields{
		"request_id": requestId,
		"players":    len(raffle.Players),
		"pot":        raffle.Pot,
	}).Info("requested random words for raffle draw")

	return requestId, nil
}

func (s *service) FulfillRandomWords(
	ctx context.Context, requestId string, randomWords []*big.Int,
) error {
	ctx, span := s.tracer.Start(ctx, "raffle.fulfill_random_words", trace.WithAttributes(
		attribute.String("request_id", requestId),
	))
	defer span.End()

	s.lock.Lock()
	defer s.lock.Unlock()

	if !s.raffle.IsCalculating() || requestId != s.raffle.PendingRequestId {
		recordError(span, domain.ErrUnknownRequest)
		return domain.ErrUnknownRequest
	}
	if len(randomWords) <= 0 {
		recordError(span, domain.ErrMissingRandomWords)
		return domain.ErrMissingRandomWords
	}

	requestedAt := s.raffle.RequestTimestamp
	numPlayers := len(s.raffle.Players)

	raffle := s.raffle.Clone()
	event, err := raffle.PickWinner(requestId, randomWords[0], s.now().Unix())
	if err != nil {
		recordError(span, err)
		return err
	}
	winnerPicked := event.(domain.WinnerPicked)

	if err := s.payout.Transfer(ctx, winnerPicked.Winner, winnerPicked.Amount); err != nil {
		s.metrics.payoutFailures.Inc()
		recordError(span, err)
		log.WithError(err).WithFields(log.Fields{
			"request_id": requestId,
			"winner":     winnerPicked.Winner,
			"amount":     winnerPicked.Amount,
		}).Warn("payout failed, raffle draw rolled back")
		return fmt.Errorf("%w: %w", domain.ErrPayoutTransferFailed, err)
	}

	s.raffle = raffle
	s.storeRaffle(ctx)
	draw := domain.NewDraw(requestedAt, numPlayers, winnerPicked)
	if err := s.repoManager.Draws().Add(ctx, draw); err != nil {
		s.metrics.storeErrors.Inc()
		log.WithError(err).Warnf("failed to store draw %s", draw.Id)
	}
	s.metrics.drawsCompleted.Inc()
	s.metrics.paidOut.Add(float64(winnerPicked.Amount))
	s.metrics.observeRaffle(raffle)
	s.propagateEvents(ctx, event)

	log.WithFields(log.Fields{
		"request_id": requestId,
		"winner":     winnerPicked.Winner,
		"amount":     winnerPicked.Amount,
	}).Info("raffle winner paid")

	return nil
}

func (s *service) SubmitFulfillment(
	ctx context.Context, fulfillment ports.RandomWordsFulfillment,
) error {
	if len(fulfillment.Proof) <= 0 {
		return fmt.Errorf("%w: missing proof", domain.ErrInvalidProof)
	}
	if err := s.randomness.VerifyFulfillment(
		s.requestConfig.toRequest(), fulfillment,
	); err != nil {
		log.WithError(err).Warnf(
			"rejected fulfillment for randomness request %s", fulfillment.RequestId,
		)
		return fmt.Errorf("%w: %w", domain.ErrInvalidProof, err)
	}

	return s.FulfillRandomWords(ctx, fulfillment.RequestId, fulfillment.RandomWords)
}

func (s *service) GetEntranceFee(_ context.Context) uint64 {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.raffle.EntranceFee
}

func (s *service) GetRaffle(_ context.Context) (*RaffleInfo, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	raffle := s.raffle.Clone()
	return &RaffleInfo{
		Id:               raffle.Id,
		EntranceFee:      raffle.EntranceFee,
		Interval:         raffle.Interval,
		LastTimestamp:    raffle.LastTimestamp,
		State:            raffle.State,
		Players:          raffle.Players,
		Pot:              raffle.Pot,
		RecentWinner:     raffle.RecentWinner,
		PendingRequestId: raffle.PendingRequestId,
		Request:          s.requestConfig,
	}, nil
}

func (s *service) GetPlayer(_ context.Context, index int) (string, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.raffle.GetPlayer(index)
}

func (s *service) GetDraws(ctx context.Context) ([]domain.Draw, error) {
	s.lock.RLock()
	raffleId := s.raffle.Id
	s.lock.RUnlock()

	return s.repoManager.Draws().GetDrawsForRaffle(ctx, raffleId)
}

func (s *service) GetPayoutBalance(ctx context.Context, account string) (uint64, error) {
	if len(account) <= 0 {
		return 0, fmt.Errorf("missing account")
	}
	return s.payout.Balance(ctx, account)
}

func (s *service) onFulfillment(
	ctx context.Context, fulfillment ports.RandomWordsFulfillment,
) error {
	err := s.FulfillRandomWords(ctx, fulfillment.RequestId, fulfillment.RandomWords)
	if err != nil {
		log.WithError(err).Warnf(
			"failed to fulfill randomness request %s", fulfillment.RequestId,
		)
	}
	return err
}

// storeRaffle must be called with the lock held.
func (s *service) storeRaffle(ctx context.Context) {
	if err := s.repoManager.Raffles().Upsert(ctx, *s.raffle); err != nil {
		s.metrics.storeErrors.Inc()
		log.WithError(err).Warnf("failed to store raffle %s", s.raffle.Id)
	}
}

func (s *service) propagateEvents(ctx context.Context, events ...domain.Event) {
	if err := s.repoManager.Events().Save(
		ctx, domain.RaffleTopic, s.raffle.Id, events,
	); err != nil {
		s.metrics.storeErrors.Inc()
		log.WithError(err).Warn("failed to publish raffle events")
	}
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
