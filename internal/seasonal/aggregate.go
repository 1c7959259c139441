package seasonal

// AggregateByDayOfYear pools return records (across the whole symbol
// universe) into per-slot win-rate and average-return statistics. Slots
// with no observations are absent from the map; callers treat a missing
// key as "no signal".
func AggregateByDayOfYear(records []ReturnRecord) map[int]DayStats {
	sums := make(map[int]float64)
	wins := make(map[int]int)
	counts := make(map[int]int)

	for _, r := range records {
		if r.DayOfYear < 1 || r.DayOfYear > DaysInYear {
			continue
		}
		sums[r.DayOfYear] += r.Return
		counts[r.DayOfYear]++
		if r.Return > 0 {
			wins[r.DayOfYear]++
		}
	}

	stats := make(map[int]DayStats, len(counts))
	for day, n := range counts {
		stats[day] = DayStats{
			WinRate:   float64(wins[day]) / float64(n),
			AvgReturn: sums[day] / float64(n),
			Count:     n,
		}
	}

	return stats
}
