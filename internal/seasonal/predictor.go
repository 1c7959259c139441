package seasonal

import (
	"time"

	randomforest "github.com/malaschitz/randomForest"
)

// Predictor estimates the probability that the next-day return is positive
// for a day-of-year slot. The synthesizer depends only on this abstraction;
// the trained-classifier and heuristic variants are interchangeable.
type Predictor interface {
	PredictUpProbability(day int) float64
}

// featureYear is the reference leap year used to derive true calendar
// features for inference slots 1..366.
const featureYear = 2024

// InferenceFeatures builds the feature vector (day_of_year, month, week,
// quarter) for a day-of-year slot, using real calendar arithmetic rather
// than the modular approximation.
func InferenceFeatures(day int) []float64 {
	date := time.Date(featureYear, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day-1)
	_, week := date.ISOWeek()
	month := int(date.Month())

	return []float64{
		float64(day),
		float64(month),
		float64(week),
		float64((month-1)/3 + 1),
	}
}

// HeuristicAverager is the fallback predictor backed by pooled day-of-year
// statistics. A positive pooled average return maps to 0.55, a negative one
// to 0.45, and a missing or flat slot to the neutral 0.5.
type HeuristicAverager struct {
	stats map[int]DayStats
}

// NewHeuristicAverager creates a heuristic predictor over pooled stats.
// stats may be nil or empty; every slot then resolves to neutral.
func NewHeuristicAverager(stats map[int]DayStats) *HeuristicAverager {
	return &HeuristicAverager{stats: stats}
}

// PredictUpProbability implements Predictor.
func (h *HeuristicAverager) PredictUpProbability(day int) float64 {
	s, ok := h.stats[day]
	if !ok {
		return 0.5
	}

	switch {
	case s.AvgReturn > 0:
		return 0.55
	case s.AvgReturn < 0:
		return 0.45
	default:
		return 0.5
	}
}

// ForestPredictor queries a fitted random forest for the up-probability of
// a calendar slot.
type ForestPredictor struct {
	forest *randomforest.Forest
}

// NewForestPredictor wraps a fitted forest.
func NewForestPredictor(forest *randomforest.Forest) *ForestPredictor {
	return &ForestPredictor{forest: forest}
}

// PredictUpProbability implements Predictor.
func (f *ForestPredictor) PredictUpProbability(day int) float64 {
	votes := f.forest.Vote(InferenceFeatures(day))
	if len(votes) < 2 {
		// Degenerate single-class forest; callers normally avoid this by
		// falling back to the heuristic path before wrapping the forest.
		return 0.5
	}
	return votes[1]
}
