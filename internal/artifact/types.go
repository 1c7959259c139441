// Package artifact persists the pipeline's durable outputs: the calendar
// artifact, the trained-model table and the optional Postgres registry of
// published calendar files.
package artifact

import "time"

// Slot is the published signal for one day-of-year.
type Slot struct {
	Signal        string  `json:"signal"` // BUY | SELL | HOLD
	UpProbability float64 `json:"up_probability"`
}

// Calendar is the durable output of a training run. It is overwritten
// wholesale on each run; readers treat a loaded calendar as an immutable
// snapshot.
type Calendar struct {
	GeneratedAt         time.Time       `json:"generated_at"`
	ModelAccuracy       *float64        `json:"model_accuracy"`
	CalendarByDayOfYear map[string]Slot `json:"calendar_by_dayofyear"`
}

// Model is the persisted form of a fitted classifier. The inference domain
// is the finite set of 366 day-of-year slots, so the model is stored as its
// evaluated probability table.
type Model struct {
	ID                 string             `json:"id"`
	TrainedAt          time.Time          `json:"trained_at"`
	Accuracy           *float64           `json:"accuracy"`
	UpProbabilityByDay map[string]float64 `json:"up_probability_by_day"`
}

// ModelID is the fixed identifier of the seasonal classifier; each training
// run overwrites the prior model under this key.
const ModelID = "seasonal-rf"

// CalendarFileName is the canonical file name of the published calendar.
const CalendarFileName = "magic_calendar.json"
