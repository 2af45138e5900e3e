// Package runs finds streaks of consecutive active calendar days and the
// inactive gaps between them.
package runs

import (
	"slices"
	"time"
)

// Run is an inclusive span of calendar days.
type Run struct {
	Length int       `json:"length"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

// Result holds the streaks and gaps found by Analyze, longest first.
type Result struct {
	Streaks []Run
	Gaps    []Run
}

// Analyze walks days, which must be ascending distinct calendar days (any time
// of day is ignored), and splits them into streaks of consecutive days. Every
// break of more than one day also yields the gap between the two streaks.
// Both lists are sorted by length descending; equal lengths keep calendar order.
func Analyze(days []time.Time) Result {
	res := Result{Streaks: []Run{}, Gaps: []Run{}}
	if len(days) == 0 {
		return res
	}

	start := days[0]
	length := 1
	for i := 1; i < len(days); i++ {
		prev, curr := days[i-1], days[i]
		diff := DaysBetween(prev, curr)
		if diff == 1 {
			length++
			continue
		}

		res.Streaks = append(res.Streaks, Run{Length: length, Start: start, End: prev})
		if diff > 1 {
			res.Gaps = append(res.Gaps, Run{
				Length: diff - 1,
				Start:  prev.AddDate(0, 0, 1),
				End:    curr.AddDate(0, 0, -1),
			})
		}
		start = curr
		length = 1
	}
	res.Streaks = append(res.Streaks, Run{Length: length, Start: start, End: days[len(days)-1]})

	byLengthDesc := func(a, b Run) int { return b.Length - a.Length }
	slices.SortStableFunc(res.Streaks, byLengthDesc)
	slices.SortStableFunc(res.Gaps, byLengthDesc)
	return res
}

// Top returns at most n leading runs.
func Top(runs []Run, n int) []Run {
	if n >= 0 && len(runs) > n {
		return runs[:n]
	}
	return runs
}

// DaysBetween returns the number of calendar days from a to b, using each
// time's own wall-clock date so that DST shifts do not skew the count.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// Day truncates t to midnight of its calendar day in t's location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
