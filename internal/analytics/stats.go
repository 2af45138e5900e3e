package analytics

import (
	"time"

	"github.com/matheus3301/wrapped/internal/runs"
)

// Stats is the result of one analysis run over one year of messages.
type Stats struct {
	Year               int                `json:"year"`
	TotalMessages      int                `json:"totalMessages"`
	Participants       map[string]int     `json:"participants"`
	ActiveDaysByAuthor map[string]int     `json:"activeDays"`
	HourlyActivity     map[int]int        `json:"hourlyActivity"`
	DateRange          DateRange          `json:"dateRange"`
	TopStreaks         []runs.Run         `json:"topStreaks"`
	TopGaps            []runs.Run         `json:"topGaps"`
	TopWords           []WordCount        `json:"topWords"`
	AvgLengthPerAuthor map[string]float64 `json:"avgLengthPerPerson"`
	LongestMessages    []LongMessage      `json:"longestMessages"`
	BusiestDay         *DayCount          `json:"busiestDay"`
	AvgReplyTime       map[string]float64 `json:"avgReplyTime"`
	TotalActiveDays    int                `json:"totalActiveDays"`
}

// DateRange spans the earliest and latest message. Both are nil when no
// message was analyzed.
type DateRange struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

// WordCount is one vocabulary entry.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// LongMessage is a candidate for the longest-message ranking.
type LongMessage struct {
	Author  string    `json:"author"`
	Content string    `json:"content"`
	Length  int       `json:"length"`
	Date    time.Time `json:"date"`
}

// DayCount is the message volume of one calendar day.
type DayCount struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// DenseHourly returns message counts for every hour 0-23, zero-filling
// hours without activity.
func (s *Stats) DenseHourly() [24]int {
	var out [24]int
	for h, n := range s.HourlyActivity {
		if h >= 0 && h < len(out) {
			out[h] = n
		}
	}
	return out
}
