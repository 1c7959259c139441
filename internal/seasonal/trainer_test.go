package seasonal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magicstocks/calendar/internal/artifact"
	"github.com/magicstocks/calendar/internal/marketdata"
	"github.com/magicstocks/calendar/pkg/config"
	"github.com/magicstocks/calendar/pkg/logger"
)

type fakeFetcher map[string][]marketdata.PricePoint

func (f fakeFetcher) History(_ context.Context, symbol string) []marketdata.PricePoint {
	return f[symbol]
}

func testTrainerLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
}

// zigzagSeries alternates up and down days so both label classes exist.
func zigzagSeries(days int) []marketdata.PricePoint {
	start := time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC)
	prices := make([]marketdata.PricePoint, days)
	price := 100.0
	for i := 0; i < days; i++ {
		if i%2 == 0 {
			price *= 1.01
		} else {
			price *= 0.99
		}
		prices[i] = marketdata.PricePoint{Date: start.AddDate(0, 0, i), Close: price}
	}
	return prices
}

func TestTrainNoFetchableSymbols(t *testing.T) {
	trainer := NewTrainer(fakeFetcher{}, nil, nil, testTrainerLogger(), TrainerConfig{Workers: 2, Estimators: 10, Seed: 42})

	result, err := trainer.Train(context.Background(), []string{"AAPL", "MSFT"})
	require.NoError(t, err, "missing data is not an error")

	assert.Nil(t, result.Accuracy)
	assert.Nil(t, result.Predictor)
	assert.True(t, result.Degraded())
	assert.Empty(t, result.Pooled)
	assert.Equal(t, 0, result.Examples)

	// The synthesizer still emits a full calendar from the heuristic path.
	cal := Synthesize(NewHeuristicAverager(result.Pooled), result.Accuracy, time.Now())
	assert.Len(t, cal.CalendarByDayOfYear, DaysInYear)
}

func TestTrainSingleClassDegrades(t *testing.T) {
	// Monotonically rising prices: every label is "up".
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	prices := make([]marketdata.PricePoint, 30)
	for i := range prices {
		prices[i] = marketdata.PricePoint{Date: start.AddDate(0, 0, i), Close: 100 + float64(i)}
	}

	trainer := NewTrainer(fakeFetcher{"UP": prices}, nil, nil, testTrainerLogger(), TrainerConfig{Workers: 1, Estimators: 10, Seed: 42})

	result, err := trainer.Train(context.Background(), []string{"UP"})
	require.NoError(t, err)

	assert.True(t, result.Degraded())
	assert.NotEmpty(t, result.Pooled, "pooled stats stay available for the heuristic path")
}

func TestTrainFitsAndPersistsModel(t *testing.T) {
	fetcher := fakeFetcher{
		"AAA": zigzagSeries(300),
		"BBB": zigzagSeries(200),
		"DEAD": nil, // one bad symbol must not abort the run
	}
	models := artifact.NewModelStore(t.TempDir())

	trainer := NewTrainer(fetcher, models, nil, testTrainerLogger(), TrainerConfig{Workers: 4, Estimators: 20, Seed: 42})

	result, err := trainer.Train(context.Background(), []string{"AAA", "BBB", "DEAD"})
	require.NoError(t, err)

	assert.False(t, result.Degraded())
	require.NotNil(t, result.Accuracy)
	assert.GreaterOrEqual(t, *result.Accuracy, 0.0)
	assert.LessOrEqual(t, *result.Accuracy, 1.0)
	assert.Equal(t, 2, result.Symbols)
	assert.Equal(t, (300-1-1)+(200-1-1), result.Examples)

	for day := 1; day <= DaysInYear; day++ {
		p := result.Predictor.PredictUpProbability(day)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	}

	require.True(t, models.Exists(artifact.ModelID))
	persisted, err := models.Load(artifact.ModelID)
	require.NoError(t, err)
	assert.Len(t, persisted.UpProbabilityByDay, DaysInYear)
	require.NotNil(t, persisted.Accuracy)
	assert.InDelta(t, *result.Accuracy, *persisted.Accuracy, 1e-12)
}

func TestSplitDeterministic(t *testing.T) {
	features := make([][]float64, 100)
	labels := make([]int, 100)
	for i := range features {
		features[i] = []float64{float64(i)}
		labels[i] = i % 2
	}

	aX, aY, atX, atY := split(features, labels, 42)
	bX, bY, btX, btY := split(features, labels, 42)

	assert.Equal(t, aX, bX)
	assert.Equal(t, aY, bY)
	assert.Equal(t, atX, btX)
	assert.Equal(t, atY, btY)

	assert.Len(t, atX, 20, "80/20 split")
	assert.Len(t, aX, 80)
}

func TestSplitTinyDataset(t *testing.T) {
	features := [][]float64{{1}, {2}}
	labels := []int{0, 1}

	trainX, _, testX, _ := split(features, labels, 1)
	assert.Len(t, trainX, 1)
	assert.Len(t, testX, 1, "holdout keeps at least one example")
}
