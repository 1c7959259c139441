// Package seasonal implements the calendar-seasonality pipeline: daily
// return derivation, day-of-year aggregation, classifier training and
// calendar synthesis.
package seasonal

import "time"

// Signal is the categorical trading signal for a calendar slot.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalHold Signal = "HOLD"
)

// DaysInYear is the number of day-of-year slots in the calendar.
// Slot 366 exists even when no leap-year data was observed.
const DaysInYear = 366

// Probability thresholds mapping up-probability to a signal.
const (
	BuyThreshold  = 0.53
	SellThreshold = 0.47
)

// ReturnRecord is one daily percent return with its calendar features.
type ReturnRecord struct {
	Date      time.Time
	Return    float64
	DayOfYear int // 1..366
	Week      int // 1..53, ISO week
	Month     int // 1..12
	Quarter   int // 1..4
}

// DayStats are pooled statistics for one day-of-year slot.
type DayStats struct {
	WinRate   float64
	AvgReturn float64
	Count     int
}
