package seasonal

import (
	"context"
	"math"
	"math/rand"
	"strconv"
	"sync"
	"time"

	randomforest "github.com/malaschitz/randomForest"

	"github.com/magicstocks/calendar/internal/artifact"
	"github.com/magicstocks/calendar/internal/marketdata"
	"github.com/magicstocks/calendar/pkg/logger"
	"github.com/magicstocks/calendar/pkg/metrics"
)

// HistoryFetcher supplies daily close series. An empty series means "no
// data available" and is skipped, never treated as a failure of the run.
type HistoryFetcher interface {
	History(ctx context.Context, symbol string) []marketdata.PricePoint
}

// TrainerConfig holds training parameters.
type TrainerConfig struct {
	Workers    int   // concurrent history fetches
	Estimators int   // trees in the forest
	Seed       int64 // train/holdout shuffle seed
}

// Trainer assembles the global training set across the symbol universe and
// fits the seasonal classifier.
type Trainer struct {
	fetcher HistoryFetcher
	models  *artifact.ModelStore // may be nil; model persistence is then skipped
	metrics *metrics.Recorder    // may be nil
	logger  *logger.Logger
	config  TrainerConfig
}

// TrainResult carries the outcome of a training run. Accuracy and Predictor
// are both nil in degraded mode; Pooled is always usable by the heuristic
// path.
type TrainResult struct {
	Accuracy  *float64
	Predictor Predictor
	Pooled    map[int]DayStats
	Symbols   int // symbols that produced at least one return
	Examples  int
}

// Degraded reports whether the run ended without a fitted model.
func (r *TrainResult) Degraded() bool {
	return r.Predictor == nil
}

// NewTrainer creates a trainer.
func NewTrainer(fetcher HistoryFetcher, models *artifact.ModelStore, rec *metrics.Recorder, log *logger.Logger, cfg TrainerConfig) *Trainer {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Estimators < 1 {
		cfg.Estimators = 200
	}

	return &Trainer{
		fetcher: fetcher,
		models:  models,
		metrics: rec,
		logger:  log.WithField("module", "trainer"),
		config:  cfg,
	}
}

// Train fetches history for every symbol, derives returns, builds next-day
// up/down labels, fits the classifier on an 80/20 split and persists the
// model. A symbol that yields no data is skipped; an entirely empty
// training set yields the degraded sentinel (nil accuracy, nil predictor),
// not an error.
func (t *Trainer) Train(ctx context.Context, symbols []string) (*TrainResult, error) {
	perSymbol := t.collectReturns(ctx, symbols)

	var pooled []ReturnRecord
	var features [][]float64
	var labels []int

	for _, records := range perSymbol {
		pooled = append(pooled, records...)

		// The last record has no known next-day return and is dropped.
		for i := 0; i+1 < len(records); i++ {
			r := records[i]
			features = append(features, []float64{
				float64(r.DayOfYear),
				float64(r.Month),
				float64(r.Week),
				float64(r.Quarter),
			})
			label := 0
			if records[i+1].Return > 0 {
				label = 1
			}
			labels = append(labels, label)
		}
	}

	result := &TrainResult{
		Pooled:   AggregateByDayOfYear(pooled),
		Symbols:  len(perSymbol),
		Examples: len(features),
	}

	if len(features) == 0 {
		t.logger.Warn("No training data from any symbol, using heuristic path")
		return result, nil
	}

	ups := 0
	for _, l := range labels {
		ups += l
	}
	if ups == 0 || ups == len(labels) {
		t.logger.WithField("examples", len(labels)).Warn("Single-class training set, using heuristic path")
		return result, nil
	}

	trainX, trainY, testX, testY := split(features, labels, t.config.Seed)

	forest := &randomforest.Forest{}
	forest.Data = randomforest.ForestData{X: trainX, Class: trainY}
	forest.Train(t.config.Estimators)

	accuracy := holdoutAccuracy(forest, testX, testY)
	result.Accuracy = &accuracy
	result.Predictor = NewForestPredictor(forest)

	t.logger.WithFields(map[string]interface{}{
		"symbols":  result.Symbols,
		"examples": result.Examples,
		"holdout":  len(testY),
		"accuracy": accuracy,
	}).Info("Classifier trained")

	if t.metrics != nil {
		t.metrics.RecordModelAccuracy(accuracy)
	}

	t.persistModel(result)

	return result, nil
}

// collectReturns fans symbol fetches out over a bounded worker pool and
// merges per-symbol return series through a fan-in channel.
func (t *Trainer) collectReturns(ctx context.Context, symbols []string) [][]ReturnRecord {
	symbolCh := make(chan string, len(symbols))
	resultCh := make(chan []ReturnRecord, len(symbols))

	var wg sync.WaitGroup
	for i := 0; i < t.config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range symbolCh {
				select {
				case <-ctx.Done():
					return
				default:
				}

				prices := t.fetcher.History(ctx, symbol)
				records := DeriveReturns(prices)
				if len(records) == 0 {
					if t.metrics != nil {
						t.metrics.RecordFetchError("history")
					}
					continue
				}

				if t.metrics != nil {
					t.metrics.RecordSymbolFetched()
				}
				resultCh <- records
			}
		}()
	}

	for _, symbol := range symbols {
		symbolCh <- symbol
	}
	close(symbolCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	var perSymbol [][]ReturnRecord
	for records := range resultCh {
		perSymbol = append(perSymbol, records)
	}

	t.logger.WithFields(map[string]interface{}{
		"symbols":  len(symbols),
		"withData": len(perSymbol),
	}).Info("History collection completed")

	return perSymbol
}

// persistModel writes the fitted model's evaluated probability table under
// the fixed model identifier. Persistence failures are logged, not fatal:
// the in-memory predictor still serves this run.
func (t *Trainer) persistModel(result *TrainResult) {
	if t.models == nil || result.Predictor == nil {
		return
	}

	table := make(map[string]float64, DaysInYear)
	for day := 1; day <= DaysInYear; day++ {
		table[strconv.Itoa(day)] = round4(result.Predictor.PredictUpProbability(day))
	}

	model := &artifact.Model{
		ID:                 artifact.ModelID,
		TrainedAt:          time.Now().UTC(),
		Accuracy:           result.Accuracy,
		UpProbabilityByDay: table,
	}

	if err := t.models.Save(model); err != nil {
		t.logger.WithError(err).Error("Model persistence failed")
	}
}

// split shuffles deterministically and partitions 80/20. The holdout always
// has at least one example when two or more exist.
func split(features [][]float64, labels []int, seed int64) (trainX [][]float64, trainY []int, testX [][]float64, testY []int) {
	n := len(features)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(n, func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

	testSize := n / 5
	if testSize == 0 && n > 1 {
		testSize = 1
	}
	cut := n - testSize

	for i, j := range idx {
		if i < cut {
			trainX = append(trainX, features[j])
			trainY = append(trainY, labels[j])
		} else {
			testX = append(testX, features[j])
			testY = append(testY, labels[j])
		}
	}
	return
}

// holdoutAccuracy scores the fitted forest on the holdout partition.
func holdoutAccuracy(forest *randomforest.Forest, testX [][]float64, testY []int) float64 {
	if len(testX) == 0 {
		return 0
	}

	correct := 0
	for i, x := range testX {
		votes := forest.Vote(x)
		pred := 0
		if len(votes) > 1 && votes[1] > votes[0] {
			pred = 1
		}
		if pred == testY[i] {
			correct++
		}
	}

	return float64(correct) / float64(len(testX))
}

// round4 rounds probabilities to four decimals for publication.
func round4(p float64) float64 {
	return math.Round(p*10000) / 10000
}
