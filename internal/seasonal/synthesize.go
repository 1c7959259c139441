package seasonal

import (
	"strconv"
	"time"

	"github.com/magicstocks/calendar/internal/artifact"
)

// Synthesize builds the full calendar artifact from a predictor. All 366
// day-of-year slots are always emitted; accuracy is nil on the heuristic
// path.
func Synthesize(pred Predictor, accuracy *float64, generatedAt time.Time) *artifact.Calendar {
	cal := &artifact.Calendar{
		GeneratedAt:         generatedAt.UTC(),
		ModelAccuracy:       accuracy,
		CalendarByDayOfYear: make(map[string]artifact.Slot, DaysInYear),
	}

	for day := 1; day <= DaysInYear; day++ {
		p := round4(pred.PredictUpProbability(day))
		cal.CalendarByDayOfYear[strconv.Itoa(day)] = artifact.Slot{
			Signal:        string(SignalFor(p)),
			UpProbability: p,
		}
	}

	return cal
}
