package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magicstocks/calendar/internal/artifact"
	"github.com/magicstocks/calendar/internal/seasonal"
	"github.com/magicstocks/calendar/pkg/config"
	"github.com/magicstocks/calendar/pkg/logger"
)

type stubUniverse struct {
	equities    []string
	commodities []string
	gotLimit    int
}

func (s *stubUniverse) EquitySymbols(_ context.Context, limit int) []string {
	s.gotLimit = limit
	return s.equities
}

func (s *stubUniverse) CommoditySymbols() []string {
	return s.commodities
}

type stubTrainer struct {
	mu      sync.Mutex
	calls   int
	symbols []string
	result  *seasonal.TrainResult
	err     error
	block   chan struct{} // when set, Train waits on it
}

func (s *stubTrainer) Train(ctx context.Context, symbols []string) (*seasonal.TrainResult, error) {
	s.mu.Lock()
	s.calls++
	s.symbols = symbols
	s.mu.Unlock()

	if s.block != nil {
		<-s.block
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubTrainer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type recordingRegistry struct {
	mu       sync.Mutex
	upserts  int
	lastName string
	lastAcc  *float64
}

func (r *recordingRegistry) Upsert(_ context.Context, name, path string, accuracy *float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	r.lastName = name
	r.lastAcc = accuracy
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
}

func modelResult(acc float64) *seasonal.TrainResult {
	stats := map[int]seasonal.DayStats{15: {WinRate: 0.8, AvgReturn: 0.01, Count: 5}}
	return &seasonal.TrainResult{
		Accuracy:  &acc,
		Predictor: seasonal.NewHeuristicAverager(stats),
		Pooled:    stats,
		Symbols:   2,
		Examples:  100,
	}
}

func newTestRunner(t *testing.T, trainer CalendarTrainer, universe UniverseSource, registry ArtifactRegistry) (*Runner, *artifact.Store) {
	t.Helper()

	store := artifact.NewStore(t.TempDir(), "magic_calendar.json")
	return NewRunner(universe, trainer, store, registry, nil, testLogger(), time.Minute, 50), store
}

func TestRunPublishesModelCalendar(t *testing.T) {
	trainer := &stubTrainer{result: modelResult(0.61)}
	universe := &stubUniverse{equities: []string{"AAPL", "MSFT"}, commodities: []string{"GC=F"}}
	registry := &recordingRegistry{}
	runner, store := newTestRunner(t, trainer, universe, registry)

	cal, err := runner.Run(context.Background(), Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"AAPL", "MSFT", "GC=F"}, trainer.symbols)
	assert.Equal(t, 50, universe.gotLimit)
	require.NotNil(t, cal.ModelAccuracy)
	assert.InDelta(t, 0.61, *cal.ModelAccuracy, 1e-9)
	assert.Len(t, cal.CalendarByDayOfYear, seasonal.DaysInYear)

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, cal.CalendarByDayOfYear, loaded.CalendarByDayOfYear)

	assert.Equal(t, 1, registry.upserts)
	assert.Equal(t, "magic_calendar.json", registry.lastName)
	assert.InDelta(t, 0.61, *registry.lastAcc, 1e-9)
}

func TestRunDegradedPublishesHeuristicCalendar(t *testing.T) {
	trainer := &stubTrainer{result: &seasonal.TrainResult{
		Pooled: map[int]seasonal.DayStats{10: {WinRate: 0.9, AvgReturn: 0.02, Count: 3}},
	}}
	runner, store := newTestRunner(t, trainer, &stubUniverse{}, nil)

	cal, err := runner.Run(context.Background(), Options{Symbols: []string{"AAPL"}})
	require.NoError(t, err)

	assert.Nil(t, cal.ModelAccuracy)
	slot, ok := cal.Slot(10)
	require.True(t, ok)
	assert.Equal(t, string(seasonal.SignalBuy), slot.Signal)

	require.True(t, store.Exists())
}

func TestRunExplicitSymbolsBypassUniverse(t *testing.T) {
	trainer := &stubTrainer{result: modelResult(0.5)}
	universe := &stubUniverse{equities: []string{"SHOULD", "NOT", "APPEAR"}}
	runner, _ := newTestRunner(t, trainer, universe, nil)

	_, err := runner.Run(context.Background(), Options{Symbols: []string{"TSLA"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"TSLA"}, trainer.symbols)
	assert.Zero(t, universe.gotLimit)
}

func TestRunSkipsWhenAlreadyRunning(t *testing.T) {
	trainer := &stubTrainer{result: modelResult(0.55), block: make(chan struct{})}
	runner, _ := newTestRunner(t, trainer, &stubUniverse{equities: []string{"AAPL"}}, nil)

	done := make(chan error, 1)
	go func() {
		_, err := runner.Run(context.Background(), Options{})
		done <- err
	}()

	require.Eventually(t, runner.IsRunning, time.Second, time.Millisecond)

	_, err := runner.Run(context.Background(), Options{})
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	close(trainer.block)
	require.NoError(t, <-done)
	assert.False(t, runner.IsRunning())
	assert.Equal(t, 1, trainer.callCount())
}

func TestEnsureSeedPublishesNeutralCalendar(t *testing.T) {
	runner, store := newTestRunner(t, &stubTrainer{}, &stubUniverse{}, nil)

	require.NoError(t, runner.EnsureSeed(context.Background()))

	cal, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, cal.ModelAccuracy)
	assert.Len(t, cal.CalendarByDayOfYear, seasonal.DaysInYear)
	for _, slot := range cal.CalendarByDayOfYear {
		assert.Equal(t, string(seasonal.SignalHold), slot.Signal)
		assert.Equal(t, 0.5, slot.UpProbability)
	}
}

func TestEnsureSeedKeepsExistingArtifact(t *testing.T) {
	trainer := &stubTrainer{result: modelResult(0.7)}
	runner, store := newTestRunner(t, trainer, &stubUniverse{}, nil)

	_, err := runner.Run(context.Background(), Options{Symbols: []string{"AAPL"}})
	require.NoError(t, err)

	require.NoError(t, runner.EnsureSeed(context.Background()))

	cal, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, cal.ModelAccuracy)
}
