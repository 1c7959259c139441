package seasonal

import (
	"github.com/magicstocks/calendar/internal/marketdata"
)

// DeriveReturns computes daily percent returns and calendar features from a
// date-ascending price series. The first point has no prior close and is
// dropped, so the result always has max(0, len(prices)-1) records.
func DeriveReturns(prices []marketdata.PricePoint) []ReturnRecord {
	if len(prices) < 2 {
		return nil
	}

	records := make([]ReturnRecord, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		prev := prices[i-1].Close
		if prev == 0 {
			continue
		}

		date := prices[i].Date
		_, week := date.ISOWeek()
		month := int(date.Month())

		records = append(records, ReturnRecord{
			Date:      date,
			Return:    prices[i].Close/prev - 1,
			DayOfYear: date.YearDay(),
			Week:      week,
			Month:     month,
			Quarter:   (month-1)/3 + 1,
		})
	}

	return records
}
