// Package analytics aggregates a normalized message stream into yearly
// statistics: volume, participation, temporal patterns, streaks and gaps,
// vocabulary, reply latency and superlative messages.
package analytics

import (
	"cmp"
	"slices"
	"time"
	"unicode/utf8"

	"github.com/matheus3301/wrapped/internal/chat"
	"github.com/matheus3301/wrapped/internal/runs"
	"github.com/matheus3301/wrapped/internal/textstat"
)

const dayLayout = "2006-01-02"

// Options tunes the ranking sizes and heuristics of an analysis.
type Options struct {
	// ReplyWindow is the largest gap still counted as a reply; longer
	// silences start a new conversation.
	ReplyWindow     time.Duration
	TopStreaks      int
	TopGaps         int
	TopWords        int
	LongestMessages int
	// ExcludedAuthors never enter the longest-message ranking.
	ExcludedAuthors []string
}

// DefaultOptions returns the standard analysis settings.
func DefaultOptions() Options {
	return Options{
		ReplyWindow:     2 * time.Hour,
		TopStreaks:      5,
		TopGaps:         5,
		TopWords:        15,
		LongestMessages: 20,
		ExcludedAuthors: []string{"Meta AI"},
	}
}

// Analyze computes Stats for the messages of year with DefaultOptions.
func Analyze(messages []chat.Message, year int) *Stats {
	return AnalyzeWith(messages, year, DefaultOptions())
}

// AnalyzeWith computes Stats for the messages whose timestamp falls in year.
// The input is not modified; the year's messages are ordered by timestamp
// (stable for equal times) before any metric is computed.
func AnalyzeWith(messages []chat.Message, year int, opts Options) *Stats {
	filtered := make([]chat.Message, 0, len(messages))
	for _, m := range messages {
		if m.Timestamp.Year() == year {
			filtered = append(filtered, m)
		}
	}
	slices.SortStableFunc(filtered, func(a, b chat.Message) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	acc := newAccumulator(opts)
	for _, m := range filtered {
		acc.add(m)
	}

	stats := acc.finish()
	stats.Year = year
	stats.AvgReplyTime = replyTimes(filtered, opts.ReplyWindow)
	return stats
}

type accumulator struct {
	opts     Options
	excluded map[string]struct{}

	participants map[string]int
	chars        map[string]int
	dailyVolume  map[string]int
	days         map[string]time.Time
	authorDays   map[string]map[string]struct{}
	hourly       map[int]int
	words        map[string]int
	candidates   []LongMessage

	first, last time.Time
	seen        bool
}

func newAccumulator(opts Options) *accumulator {
	excluded := make(map[string]struct{}, len(opts.ExcludedAuthors))
	for _, a := range opts.ExcludedAuthors {
		excluded[a] = struct{}{}
	}
	return &accumulator{
		opts:         opts,
		excluded:     excluded,
		participants: make(map[string]int),
		chars:        make(map[string]int),
		dailyVolume:  make(map[string]int),
		days:         make(map[string]time.Time),
		authorDays:   make(map[string]map[string]struct{}),
		hourly:       make(map[int]int),
		words:        make(map[string]int),
	}
}

func (a *accumulator) add(m chat.Message) {
	a.participants[m.Author]++

	key := m.Timestamp.Format(dayLayout)
	a.dailyVolume[key]++
	if _, ok := a.days[key]; !ok {
		a.days[key] = runs.Day(m.Timestamp)
	}
	set, ok := a.authorDays[m.Author]
	if !ok {
		set = make(map[string]struct{})
		a.authorDays[m.Author] = set
	}
	set[key] = struct{}{}

	a.hourly[m.Timestamp.Hour()]++

	if !a.seen || m.Timestamp.Before(a.first) {
		a.first = m.Timestamp
	}
	if !a.seen || m.Timestamp.After(a.last) {
		a.last = m.Timestamp
	}
	a.seen = true

	length := utf8.RuneCountInString(m.Content)
	a.chars[m.Author] += length

	if _, skip := a.excluded[m.Author]; !skip && length > 0 && textstat.IsCleanText(m.Content) {
		a.candidates = append(a.candidates, LongMessage{
			Author:  m.Author,
			Content: m.Content,
			Length:  length,
			Date:    m.Timestamp,
		})
	}

	if !textstat.IsMediaPlaceholder(m.Content) {
		for _, w := range textstat.Tokenize(m.Content) {
			a.words[w]++
		}
	}
}

func (a *accumulator) finish() *Stats {
	total := 0
	for _, n := range a.participants {
		total += n
	}

	stats := &Stats{
		TotalMessages:      total,
		Participants:       a.participants,
		ActiveDaysByAuthor: make(map[string]int, len(a.authorDays)),
		HourlyActivity:     a.hourly,
		AvgLengthPerAuthor: make(map[string]float64, len(a.participants)),
		LongestMessages:    a.longestMessages(),
		TopWords:           a.topWords(),
		TotalActiveDays:    len(a.dailyVolume),
	}
	if a.seen {
		first, last := a.first, a.last
		stats.DateRange = DateRange{Start: &first, End: &last}
	}

	for author, n := range a.participants {
		stats.AvgLengthPerAuthor[author] = float64(a.chars[author]) / float64(n)
	}
	for author, set := range a.authorDays {
		stats.ActiveDaysByAuthor[author] = len(set)
	}

	keys := make([]string, 0, len(a.dailyVolume))
	for k := range a.dailyVolume {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	days := make([]time.Time, 0, len(keys))
	for _, k := range keys {
		days = append(days, a.days[k])
		if stats.BusiestDay == nil || a.dailyVolume[k] > stats.BusiestDay.Count {
			stats.BusiestDay = &DayCount{Date: a.days[k], Count: a.dailyVolume[k]}
		}
	}

	res := runs.Analyze(days)
	stats.TopStreaks = runs.Top(res.Streaks, a.opts.TopStreaks)
	stats.TopGaps = runs.Top(res.Gaps, a.opts.TopGaps)
	return stats
}

// longestMessages ranks clean candidates by length; equal lengths keep
// chronological order.
func (a *accumulator) longestMessages() []LongMessage {
	out := slices.Clone(a.candidates)
	slices.SortStableFunc(out, func(x, y LongMessage) int {
		return cmp.Compare(y.Length, x.Length)
	})
	if out == nil {
		out = []LongMessage{}
	}
	if a.opts.LongestMessages >= 0 && len(out) > a.opts.LongestMessages {
		out = out[:a.opts.LongestMessages]
	}
	return out
}

// topWords ranks the vocabulary by count, breaking ties alphabetically.
func (a *accumulator) topWords() []WordCount {
	out := make([]WordCount, 0, len(a.words))
	for w, n := range a.words {
		out = append(out, WordCount{Word: w, Count: n})
	}
	slices.SortFunc(out, func(x, y WordCount) int {
		if c := cmp.Compare(y.Count, x.Count); c != 0 {
			return c
		}
		return cmp.Compare(x.Word, y.Word)
	})
	if a.opts.TopWords >= 0 && len(out) > a.opts.TopWords {
		out = out[:a.opts.TopWords]
	}
	return out
}

// replyTimes averages, per author, the seconds between a message from
// someone else and that author's next message. Pairs further apart than
// window are treated as a new conversation and ignored. Authors without a
// qualifying reply are absent from the result.
func replyTimes(messages []chat.Message, window time.Duration) map[string]float64 {
	samples := make(map[string][]float64)
	for i := 1; i < len(messages); i++ {
		prev, curr := messages[i-1], messages[i]
		if prev.Author == curr.Author {
			continue
		}
		elapsed := curr.Timestamp.Sub(prev.Timestamp)
		if elapsed < window {
			samples[curr.Author] = append(samples[curr.Author], elapsed.Seconds())
		}
	}

	avg := make(map[string]float64, len(samples))
	for author, times := range samples {
		sum := 0.0
		for _, s := range times {
			sum += s
		}
		avg[author] = sum / float64(len(times))
	}
	return avg
}
