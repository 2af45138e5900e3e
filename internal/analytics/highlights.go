package analytics

import (
	"cmp"
	"slices"
)

// Chronotype labels a chat by the hour it is most active.
type Chronotype string

const (
	ChronotypeNone      Chronotype = ""
	ChronotypeNightOwl  Chronotype = "night owl"
	ChronotypeMorning   Chronotype = "morning person"
	ChronotypeAfternoon Chronotype = "afternoon chatter"
	ChronotypeEvening   Chronotype = "evening socialite"
)

// ChronotypeForHour maps an hour of day to its label: 22-03 night owl,
// 04-11 morning person, 12-16 afternoon chatter, 17-21 evening socialite.
func ChronotypeForHour(hour int) Chronotype {
	switch {
	case hour >= 22 || hour <= 3:
		return ChronotypeNightOwl
	case hour <= 11:
		return ChronotypeMorning
	case hour <= 16:
		return ChronotypeAfternoon
	default:
		return ChronotypeEvening
	}
}

// Ranked is one entry of a per-author leaderboard.
type Ranked struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Highlights are the headline figures derived from Stats.
type Highlights struct {
	TopChatters     []Ranked     `json:"topChatters"`
	FastestRepliers []Ranked     `json:"fastestRepliers"`
	TopEssayists    []Ranked     `json:"topEssayists"`
	PeakHour        int          `json:"peakHour"`
	Chronotype      Chronotype   `json:"chronotype"`
	LongestMessage  *LongMessage `json:"longestMessage,omitempty"`
}

// Highlights derives leaderboards of at most n entries each. Chatters and
// essayists rank descending, repliers ascending; equal values order by name.
func (s *Stats) Highlights(n int) Highlights {
	h := Highlights{
		TopChatters:     rank(intValues(s.Participants), false, n),
		FastestRepliers: rank(s.AvgReplyTime, true, n),
		TopEssayists:    rank(s.AvgLengthPerAuthor, false, n),
	}
	if s.TotalMessages > 0 {
		h.PeakHour = s.PeakHour()
		h.Chronotype = ChronotypeForHour(h.PeakHour)
	}
	if len(s.LongestMessages) > 0 {
		m := s.LongestMessages[0]
		h.LongestMessage = &m
	}
	return h
}

// PeakHour returns the busiest hour of day; the earliest hour wins a tie.
func (s *Stats) PeakHour() int {
	dense := s.DenseHourly()
	peak := 0
	for h, n := range dense {
		if n > dense[peak] {
			peak = h
		}
	}
	return peak
}

// TopChatter returns the author with the most messages.
func (s *Stats) TopChatter() (string, int, bool) {
	top := rank(intValues(s.Participants), false, 1)
	if len(top) == 0 {
		return "", 0, false
	}
	return top[0].Name, int(top[0].Value), true
}

func intValues(m map[string]int) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = float64(v)
	}
	return out
}

func rank(m map[string]float64, ascending bool, n int) []Ranked {
	out := make([]Ranked, 0, len(m))
	for name, v := range m {
		out = append(out, Ranked{Name: name, Value: v})
	}
	slices.SortFunc(out, func(a, b Ranked) int {
		c := cmp.Compare(b.Value, a.Value)
		if ascending {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
