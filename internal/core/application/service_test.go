package application

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ark-network/raffle/internal/core/domain"
	"github.com/ark-network/raffle/internal/core/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

var (
	testConfig = Config{
		RaffleId:    "test",
		EntranceFee: 100,
		Interval:    60,
		Request: RequestConfig{
			KeyHash:              "0000000000000000000000000000000000000000000000000000000000000000",
			SubscriptionId:       1,
			RequestConfirmations: 3,
			CallbackGasLimit:     500000,
			NumWords:             1,
		},
	}
	testStart = time.Unix(1_700_000_000, 0)
)

func TestService(t *testing.T) {
	t.Run("full round", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()

		for _, player := range []string{"A", "B", "C"} {
			require.NoError(t, f.svc.EnterRaffle(ctx, player, 100))
		}

		status, err := f.svc.CheckUpkeep(ctx)
		require.NoError(t, err)
		require.False(t, status.Needed)

		_, err = f.svc.PerformUpkeep(ctx)
		require.ErrorIs(t, err, domain.ErrUpkeepNotNeeded)

		f.clock.advance(60 * time.Second)

		status, err = f.svc.CheckUpkeep(ctx)
		require.NoError(t, err)
		require.True(t, status.Needed)
		require.Equal(t, uint64(300), status.Pot)
		require.Equal(t, 3, status.NumPlayers)
		require.Equal(t, domain.RaffleOpen, status.State)

		requestId, err := f.svc.PerformUpkeep(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, requestId)
		require.Len(t, f.randomness.requests, 1)
		require.Equal(t, testConfig.Request.toRequest(), f.randomness.requests[0])

		// Entries and new requests are rejected while calculating.
		err = f.svc.EnterRaffle(ctx, "D", 100)
		require.ErrorIs(t, err, domain.ErrRaffleNotOpen)

		_, err = f.svc.PerformUpkeep(ctx)
		require.ErrorIs(t, err, domain.ErrUpkeepNotNeeded)
		var upkeepErr *domain.UpkeepNotNeededError
		require.True(t, errors.As(err, &upkeepErr))
		require.Equal(t, uint64(300), upkeepErr.Pot)
		require.Equal(t, 3, upkeepErr.NumPlayers)
		require.Equal(t, domain.RaffleCalculating, upkeepErr.State)
		require.Len(t, f.randomness.requests, 1)

		f.clock.advance(5 * time.Second)
		err = f.svc.FulfillRandomWords(ctx, requestId, []*big.Int{big.NewInt(7)})
		require.NoError(t, err)

		require.Equal(t, []transfer{{"B", 300}}, f.payout.transfers)

		info, err := f.svc.GetRaffle(ctx)
		require.NoError(t, err)
		require.Equal(t, domain.RaffleOpen, info.State)
		require.Empty(t, info.Players)
		require.Zero(t, info.Pot)
		require.Equal(t, "B", info.RecentWinner)
		require.Empty(t, info.PendingRequestId)
		require.Equal(t, f.clock.now().Unix(), info.LastTimestamp)

		draws, err := f.svc.GetDraws(ctx)
		require.NoError(t, err)
		require.Len(t, draws, 1)
		require.Equal(t, "B", draws[0].Winner)
		require.Equal(t, 1, draws[0].WinnerIndex)
		require.Equal(t, uint64(300), draws[0].Amount)
		require.Equal(t, 3, draws[0].NumPlayers)
		require.Equal(t, "7", draws[0].RandomWord)
		require.Equal(t, requestId, draws[0].RequestId)

		balance, err := f.svc.GetPayoutBalance(ctx, "B")
		require.NoError(t, err)
		require.Equal(t, uint64(300), balance)

		require.Equal(t, []domain.EventType{
			domain.EventTypeRaffleEntered,
			domain.EventTypeRaffleEntered,
			domain.EventTypeRaffleEntered,
			domain.EventTypeRaffleDrawRequested,
			domain.EventTypeWinnerPicked,
		}, f.repo.events.types())

		stored, err := f.repo.raffles.Get(ctx, testConfig.RaffleId)
		require.NoError(t, err)
		require.Equal(t, "B", stored.RecentWinner)
		require.True(t, stored.IsOpen())

		// A new round starts from the draw timestamp.
		require.NoError(t, f.svc.EnterRaffle(ctx, "E", 100))
		status, err = f.svc.CheckUpkeep(ctx)
		require.NoError(t, err)
		require.False(t, status.Needed)
	})

	t.Run("enter", func(t *testing.T) {
		t.Run("valid", func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()

			require.NoError(t, f.svc.EnterRaffle(ctx, "A", 150))
			require.NoError(t, f.svc.EnterRaffle(ctx, "A", 100))

			info, err := f.svc.GetRaffle(ctx)
			require.NoError(t, err)
			require.Equal(t, []string{"A", "A"}, info.Players)
			require.Equal(t, uint64(250), info.Pot)

			player, err := f.svc.GetPlayer(ctx, 1)
			require.NoError(t, err)
			require.Equal(t, "A", player)
			require.Equal(t, uint64(100), f.svc.GetEntranceFee(ctx))
		})

		t.Run("invalid", func(t *testing.T) {
			fixtures := []struct {
				player      string
				amount      uint64
				storeErr    error
				expectedErr error
			}{
				{"A", 99, nil, domain.ErrInsufficientFee},
				{"", 100, nil, domain.ErrInvalidPlayer},
				{"A", math.MaxUint64, nil, domain.ErrPotOverflow},
				{"A", 100, fmt.Errorf("disk full"), nil},
			}

			for _, f := range fixtures {
				fx := newFixture(t)
				ctx := context.Background()
				fx.repo.raffles.upsertErr = f.storeErr

				err := fx.svc.EnterRaffle(ctx, f.player, f.amount)
				require.Error(t, err)
				if f.expectedErr != nil {
					require.ErrorIs(t, err, f.expectedErr)
				}

				info, err := fx.svc.GetRaffle(ctx)
				require.NoError(t, err)
				require.Empty(t, info.Players)
				require.Zero(t, info.Pot)
				require.Empty(t, fx.repo.events.types())
			}

			fx := newFixture(t)
			_, err := fx.svc.GetPlayer(context.Background(), 0)
			require.ErrorIs(t, err, domain.ErrPlayerNotFound)
		})
	})

	t.Run("perform upkeep", func(t *testing.T) {
		t.Run("provider failure", func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			f.enterAndWait(t, "A", "B")

			f.randomness.requestErr = fmt.Errorf("provider unavailable")
			_, err := f.svc.PerformUpkeep(ctx)
			require.EqualError(t, err, "failed to request random words: provider unavailable")

			info, err := f.svc.GetRaffle(ctx)
			require.NoError(t, err)
			require.Equal(t, domain.RaffleOpen, info.State)
			require.Empty(t, info.PendingRequestId)

			f.randomness.requestErr = nil
			requestId, err := f.svc.PerformUpkeep(ctx)
			require.NoError(t, err)
			require.NotEmpty(t, requestId)
		})

		t.Run("store failure", func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			f.enterAndWait(t, "A")

			f.repo.raffles.upsertErr = fmt.Errorf("disk full")
			requestId, err := f.svc.PerformUpkeep(ctx)
			require.NoError(t, err)

			info, err := f.svc.GetRaffle(ctx)
			require.NoError(t, err)
			require.Equal(t, domain.RaffleCalculating, info.State)
			require.Equal(t, requestId, info.PendingRequestId)
		})
	})

	t.Run("fulfill random words", func(t *testing.T) {
		t.Run("invalid", func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()

			err := f.svc.FulfillRandomWords(ctx, "unknown", []*big.Int{big.NewInt(1)})
			require.ErrorIs(t, err, domain.ErrUnknownRequest)

			f.enterAndWait(t, "A", "B")
			requestId, err := f.svc.PerformUpkeep(ctx)
			require.NoError(t, err)

			fixtures := []struct {
				requestId   string
				words       []*big.Int
				expectedErr error
			}{
				{"stale", []*big.Int{big.NewInt(1)}, domain.ErrUnknownRequest},
				{"", []*big.Int{big.NewInt(1)}, domain.ErrUnknownRequest},
				{requestId, nil, domain.ErrMissingRandomWords},
				{requestId, []*big.Int{}, domain.ErrMissingRandomWords},
			}

			for _, fx := range fixtures {
				err := f.svc.FulfillRandomWords(ctx, fx.requestId, fx.words)
				require.ErrorIs(t, err, fx.expectedErr)
			}

			info, err := f.svc.GetRaffle(ctx)
			require.NoError(t, err)
			require.Equal(t, domain.RaffleCalculating, info.State)
			require.Equal(t, []string{"A", "B"}, info.Players)
			require.Empty(t, f.payout.transfers)
		})

		t.Run("payout rollback", func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			f.enterAndWait(t, "A", "B", "C")

			requestId, err := f.svc.PerformUpkeep(ctx)
			require.NoError(t, err)
			eventsBefore := len(f.repo.events.types())

			f.payout.transferErr = fmt.Errorf("insufficient liquidity")
			err = f.svc.FulfillRandomWords(ctx, requestId, []*big.Int{big.NewInt(7)})
			require.ErrorIs(t, err, domain.ErrPayoutTransferFailed)
			require.ErrorContains(t, err, "insufficient liquidity")

			info, err := f.svc.GetRaffle(ctx)
			require.NoError(t, err)
			require.Equal(t, domain.RaffleCalculating, info.State)
			require.Equal(t, []string{"A", "B", "C"}, info.Players)
			require.Equal(t, uint64(300), info.Pot)
			require.Empty(t, info.RecentWinner)
			require.Equal(t, requestId, info.PendingRequestId)
			require.Len(t, f.repo.events.types(), eventsBefore)

			draws, err := f.svc.GetDraws(ctx)
			require.NoError(t, err)
			require.Empty(t, draws)

			// The same response can be delivered again once the payout recovers.
			f.payout.transferErr = nil
			err = f.svc.FulfillRandomWords(ctx, requestId, []*big.Int{big.NewInt(7)})
			require.NoError(t, err)
			require.Equal(t, []transfer{{"B", 300}}, f.payout.transfers)
		})

		t.Run("exclusive", func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			f.enterAndWait(t, "A", "B", "C")

			requestId, err := f.svc.PerformUpkeep(ctx)
			require.NoError(t, err)

			const attempts = 10
			errs := make(chan error, attempts)
			wg := &sync.WaitGroup{}
			wg.Add(attempts)
			for i := 0; i < attempts; i++ {
				go func(i int) {
					defer wg.Done()
					errs <- f.svc.FulfillRandomWords(
						ctx, requestId, []*big.Int{big.NewInt(int64(i))},
					)
				}(i)
			}
			wg.Wait()
			close(errs)

			succeeded := 0
			for err := range errs {
				if err == nil {
					succeeded++
					continue
				}
				require.ErrorIs(t, err, domain.ErrUnknownRequest)
			}
			require.Equal(t, 1, succeeded)
			require.Len(t, f.payout.transfers, 1)
			require.Equal(t, uint64(300), f.payout.transfers[0].amount)
		})

		t.Run("through provider", func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			f.enterAndWait(t, "A", "B")

			requestId, err := f.svc.PerformUpkeep(ctx)
			require.NoError(t, err)

			err = f.randomness.fulfill(ctx, ports.RandomWordsFulfillment{
				RequestId:   requestId,
				RandomWords: []*big.Int{big.NewInt(3)},
			})
			require.NoError(t, err)
			require.Equal(t, []transfer{{"B", 200}}, f.payout.transfers)

			err = f.randomness.fulfill(ctx, ports.RandomWordsFulfillment{
				RequestId:   requestId,
				RandomWords: []*big.Int{big.NewInt(3)},
			})
			require.ErrorIs(t, err, domain.ErrUnknownRequest)
		})

		t.Run("submitted", func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			f.enterAndWait(t, "A", "B", "C")

			requestId, err := f.svc.PerformUpkeep(ctx)
			require.NoError(t, err)

			f.randomness.verifyErr = fmt.Errorf("invalid signature for word 0")
			fixtures := []struct {
				name  string
				proof string
			}{
				{"missing proof", ""},
				{"forged proof", "00"},
			}
			for _, fx := range fixtures {
				err := f.svc.SubmitFulfillment(ctx, ports.RandomWordsFulfillment{
					RequestId:   requestId,
					RandomWords: []*big.Int{big.NewInt(2)},
					Proof:       fx.proof,
				})
				require.ErrorIs(t, err, domain.ErrInvalidProof, fx.name)
			}

			require.Empty(t, f.payout.transfers)
			info, err := f.svc.GetRaffle(ctx)
			require.NoError(t, err)
			require.Equal(t, domain.RaffleCalculating, info.State)
			require.Equal(t, requestId, info.PendingRequestId)

			f.randomness.verifyErr = nil
			err = f.svc.SubmitFulfillment(ctx, ports.RandomWordsFulfillment{
				RequestId:   requestId,
				RandomWords: []*big.Int{big.NewInt(2)},
				Proof:       "00",
			})
			require.NoError(t, err)
			require.Equal(t, []transfer{{"C", 300}}, f.payout.transfers)
		})
	})

	t.Run("restore", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		f.enterAndWait(t, "A", "B")
		requestId, err := f.svc.PerformUpkeep(ctx)
		require.NoError(t, err)

		cfg := testConfig
		cfg.EntranceFee = 500
		svc, err := newService(
			cfg, f.repo, f.randomness, f.payout, NewMetrics(nil), f.clock.now,
		)
		require.NoError(t, err)

		info, err := svc.GetRaffle(ctx)
		require.NoError(t, err)
		require.Equal(t, uint64(100), info.EntranceFee)
		require.Equal(t, domain.RaffleCalculating, info.State)
		require.Equal(t, []string{"A", "B"}, info.Players)

		require.NoError(t, svc.Start())
		require.Equal(t, []string{requestId}, f.randomness.resumed)

		err = svc.FulfillRandomWords(ctx, requestId, []*big.Int{big.NewInt(0)})
		require.NoError(t, err)
		require.Equal(t, []transfer{{"A", 200}}, f.payout.transfers)
	})

	t.Run("invalid config", func(t *testing.T) {
		repo := newFakeRepoManager()
		cfg := testConfig
		cfg.EntranceFee = 0
		_, err := NewService(cfg, repo, &fakeRandomness{}, newFakePayout(), nil)
		require.EqualError(t, err, "invalid entrance fee, must be greater than 0")

		_, err = NewService(testConfig, nil, &fakeRandomness{}, newFakePayout(), nil)
		require.EqualError(t, err, "missing repo manager")
	})
}

func TestTracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.EnterRaffle(ctx, "A", 100))
	err := f.svc.EnterRaffle(ctx, "B", math.MaxUint64)
	require.ErrorIs(t, err, domain.ErrPotOverflow)

	amounts := make([]string, 0)
	for _, span := range recorder.Ended() {
		if span.Name() != "raffle.enter" {
			continue
		}
		for _, attr := range span.Attributes() {
			if attr.Key == "amount" {
				amounts = append(amounts, attr.Value.AsString())
			}
		}
	}
	require.Equal(t, []string{"100", "18446744073709551615"}, amounts)
}

func TestKeeper(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	scheduler := &fakeScheduler{}

	keeper, err := NewKeeper(f.svc, scheduler, 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, keeper.Start())
	require.True(t, scheduler.started)
	require.Equal(t, 5*time.Second, scheduler.interval)
	require.NotNil(t, scheduler.task)

	// Nothing to do on an empty raffle.
	scheduler.task()
	require.Empty(t, f.randomness.requests)

	f.enterAndWait(t, "A", "B")
	scheduler.task()
	require.Len(t, f.randomness.requests, 1)

	// Already calculating.
	scheduler.task()
	require.Len(t, f.randomness.requests, 1)

	info, err := f.svc.GetRaffle(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.RaffleCalculating, info.State)

	keeper.Stop()
	require.False(t, scheduler.started)

	_, err = NewKeeper(f.svc, scheduler, 0)
	require.Error(t, err)
}

type fixture struct {
	svc        *service
	clock      *fakeClock
	repo       *fakeRepoManager
	randomness *fakeRandomness
	payout     *fakePayout
}

func newFixture(t *testing.T) *fixture {
	clock := &fakeClock{t: testStart}
	repo := newFakeRepoManager()
	randomness := &fakeRandomness{}
	payout := newFakePayout()

	svc, err := newService(
		testConfig, repo, randomness, payout,
		NewMetrics(prometheus.NewRegistry()), clock.now,
	)
	require.NoError(t, err)
	require.NoError(t, svc.Start())
	t.Cleanup(svc.Stop)

	return &fixture{svc, clock, repo, randomness, payout}
}

func (f *fixture) enterAndWait(t *testing.T, players ...string) {
	for _, player := range players {
		require.NoError(t, f.svc.EnterRaffle(context.Background(), player, 100))
	}
	f.clock.advance(time.Duration(testConfig.Interval) * time.Second)
}

type fakeClock struct {
	lock sync.Mutex
	t    time.Time
}

func (c *fakeClock) now() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.t = c.t.Add(d)
}

type fakeRepoManager struct {
	events  *fakeEventRepo
	raffles *fakeRaffleRepo
	draws   *fakeDrawRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		events:  &fakeEventRepo{handlers: map[string][]func([]domain.Event){}},
		raffles: &fakeRaffleRepo{store: map[string]domain.Raffle{}},
		draws:   &fakeDrawRepo{},
	}
}

func (r *fakeRepoManager) Events() domain.EventRepository { return r.events }
func (r *fakeRepoManager) Raffles() domain.RaffleRepository { return r.raffles }
func (r *fakeRepoManager) Draws() domain.DrawRepository { return r.draws }
func (r *fakeRepoManager) Close() {}

type fakeEventRepo struct {
	lock     sync.Mutex
	events   []domain.Event
	handlers map[string][]func([]domain.Event)
}

func (r *fakeEventRepo) Save(
	_ context.Context, topic, _ string, events []domain.Event,
) error {
	r.lock.Lock()
	r.events = append(r.events, events...)
	handlers := r.handlers[topic]
	r.lock.Unlock()

	for _, handler := range handlers {
		handler(events)
	}
	return nil
}

func (r *fakeEventRepo) RegisterEventsHandler(topic string, handler func([]domain.Event)) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.handlers[topic] = append(r.handlers[topic], handler)
}

func (r *fakeEventRepo) ClearRegisteredHandlers(topics ...string) {
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, topic := range topics {
		delete(r.handlers, topic)
	}
}

func (r *fakeEventRepo) Close() {}

func (r *fakeEventRepo) types() []domain.EventType {
	r.lock.Lock()
	defer r.lock.Unlock()
	types := make([]domain.EventType, 0, len(r.events))
	for _, event := range r.events {
		types = append(types, event.GetType())
	}
	return types
}

type fakeRaffleRepo struct {
	lock      sync.Mutex
	store     map[string]domain.Raffle
	upsertErr error
}

func (r *fakeRaffleRepo) Upsert(_ context.Context, raffle domain.Raffle) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.store[raffle.Id] = *raffle.Clone()
	return nil
}

func (r *fakeRaffleRepo) Get(_ context.Context, id string) (*domain.Raffle, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	raffle, ok := r.store[id]
	if !ok {
		return nil, nil
	}
	return raffle.Clone(), nil
}

func (r *fakeRaffleRepo) Close() {}

type fakeDrawRepo struct {
	lock  sync.Mutex
	draws []domain.Draw
}

func (r *fakeDrawRepo) Add(_ context.Context, draw domain.Draw) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.draws = append(r.draws, draw)
	return nil
}

func (r *fakeDrawRepo) GetDrawsForRaffle(_ context.Context, raffleId string) ([]domain.Draw, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	draws := make([]domain.Draw, 0)
	for _, draw := range r.draws {
		if draw.RaffleId == raffleId {
			draws = append(draws, draw)
		}
	}
	return draws, nil
}

func (r *fakeDrawRepo) GetDrawWithRequestId(_ context.Context, requestId string) (*domain.Draw, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, draw := range r.draws {
		if draw.RequestId == requestId {
			d := draw
			return &d, nil
		}
	}
	return nil, fmt.Errorf("draw not found")
}

func (r *fakeDrawRepo) Close() {}

type fakeRandomness struct {
	lock       sync.Mutex
	requests   []ports.RandomWordsRequest
	requestErr error
	verifyErr  error
	resumed    []string
	handler    ports.FulfillmentHandler
}

func (p *fakeRandomness) RequestRandomWords(
	_ context.Context, req ports.RandomWordsRequest,
) (string, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.requestErr != nil {
		return "", p.requestErr
	}
	p.requests = append(p.requests, req)
	return fmt.Sprintf("request-%d", len(p.requests)), nil
}

func (p *fakeRandomness) RegisterFulfillmentHandler(handler ports.FulfillmentHandler) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.handler = handler
}

func (p *fakeRandomness) VerifyFulfillment(
	_ ports.RandomWordsRequest, _ ports.RandomWordsFulfillment,
) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.verifyErr
}

func (p *fakeRandomness) ResumeRequest(
	_ context.Context, requestId string, _ ports.RandomWordsRequest,
) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.resumed = append(p.resumed, requestId)
	return nil
}

func (p *fakeRandomness) Start() error { return nil }
func (p *fakeRandomness) Stop() {}

func (p *fakeRandomness) fulfill(
	ctx context.Context, fulfillment ports.RandomWordsFulfillment,
) error {
	p.lock.Lock()
	handler := p.handler
	p.lock.Unlock()
	return handler(ctx, fulfillment)
}

type transfer struct {
	to     string
	amount uint64
}

type fakePayout struct {
	lock        sync.Mutex
	transfers   []transfer
	balances    map[string]uint64
	transferErr error
}

func newFakePayout() *fakePayout {
	return &fakePayout{balances: map[string]uint64{}}
}

func (p *fakePayout) Transfer(_ context.Context, to string, amount uint64) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.transferErr != nil {
		return p.transferErr
	}
	p.transfers = append(p.transfers, transfer{to, amount})
	p.balances[to] += amount
	return nil
}

func (p *fakePayout) Balance(_ context.Context, account string) (uint64, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.balances[account], nil
}

func (p *fakePayout) Close() {}

type fakeScheduler struct {
	started  bool
	interval time.Duration
	task     func()
}

func (s *fakeScheduler) Start() { s.started = true }
func (s *fakeScheduler) Stop() { s.started = false }

func (s *fakeScheduler) ScheduleTaskEvery(interval time.Duration, task func()) error {
	s.interval = interval
	s.task = task
	return nil
}
