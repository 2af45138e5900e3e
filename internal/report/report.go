// Package report renders analysis results as plain text for the terminal.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/dustin/go-humanize"
	"github.com/matheus3301/wrapped/internal/analytics"
)

const (
	dateLayout     = "Jan 2, 2006"
	excerptRunes   = 60
	leaderboardLen = 5
)

// Write renders s as a sectioned text report.
func Write(w io.Writer, s *analytics.Stats) error {
	r := &writer{w: w}
	h := s.Highlights(leaderboardLen)

	r.line("%d wrapped", s.Year)
	r.line("%s", strings.Repeat("=", 40))

	if s.TotalMessages == 0 {
		r.line("No messages in %d.", s.Year)
		return r.err
	}

	r.line("Messages:     %s", humanize.Comma(int64(s.TotalMessages)))
	r.line("Active days:  %s", humanize.Comma(int64(s.TotalActiveDays)))
	if s.DateRange.Start != nil && s.DateRange.End != nil {
		r.line("First / last: %s / %s", s.DateRange.Start.Format(dateLayout), s.DateRange.End.Format(dateLayout))
	}
	if s.BusiestDay != nil {
		r.line("Busiest day:  %s (%s messages)", s.BusiestDay.Date.Format(dateLayout), humanize.Comma(int64(s.BusiestDay.Count)))
	}
	r.line("Peak hour:    %02d:00 (%s)", h.PeakHour, h.Chronotype)

	r.section("Top chatters")
	for i, e := range h.TopChatters {
		r.line("%s  %-20s %s messages, %d active days", humanize.Ordinal(i+1), e.Name,
			humanize.Comma(int64(e.Value)), s.ActiveDaysByAuthor[e.Name])
	}

	if len(h.FastestRepliers) > 0 {
		r.section("Fastest repliers")
		for i, e := range h.FastestRepliers {
			r.line("%s  %-20s %s", humanize.Ordinal(i+1), e.Name, seconds(e.Value))
		}
	}

	r.section("Essayists (avg characters)")
	for i, e := range h.TopEssayists {
		r.line("%s  %-20s %.1f", humanize.Ordinal(i+1), e.Name, e.Value)
	}

	if len(s.TopStreaks) > 0 {
		r.section("Longest streaks")
		for _, run := range s.TopStreaks {
			r.line("%s days  %s - %s", humanize.Comma(int64(run.Length)), run.Start.Format(dateLayout), run.End.Format(dateLayout))
		}
	}

	if len(s.TopGaps) > 0 {
		r.section("Longest silences")
		for _, run := range s.TopGaps {
			r.line("%s days  %s - %s", humanize.Comma(int64(run.Length)), run.Start.Format(dateLayout), run.End.Format(dateLayout))
		}
	}

	if len(s.TopWords) > 0 {
		r.section("Top words")
		for _, wc := range s.TopWords {
			r.line("%-20s %s", wc.Word, humanize.Comma(int64(wc.Count)))
		}
	}

	if h.LongestMessage != nil {
		m := h.LongestMessage
		r.section("Longest message")
		r.line("%s, %s (%s characters)", m.Author, m.Date.Format(dateLayout), humanize.Comma(int64(m.Length)))
		r.line("%q", excerpt(m.Content, excerptRunes))
	}

	return r.err
}

// writer remembers the first write error so rendering code stays linear.
type writer struct {
	w   io.Writer
	err error
}

func (r *writer) line(format string, args ...any) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.w, format+"\n", args...)
}

func (r *writer) section(title string) {
	r.line("")
	r.line("%s", title)
	r.line("%s", strings.Repeat("-", len(title)))
}

func seconds(v float64) string {
	return time.Duration(v * float64(time.Second)).Round(time.Second).String()
}

// excerpt shortens s to n runes after dropping emoji modifiers and control
// characters that break terminal column alignment.
func excerpt(s string, n int) string {
	runes := []rune(strings.Map(terminalRune, s))
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n]) + "..."
}

func terminalRune(r rune) rune {
	switch {
	case r >= 0x1F3FB && r <= 0x1F3FF: // skin tone modifiers
		return -1
	case r == 0x200D: // zero width joiner
		return -1
	case r >= 0xFE00 && r <= 0xFE0F, r >= 0xE0100 && r <= 0xE01EF: // variation selectors
		return -1
	case r == '\n' || r == '\t':
		return ' '
	case unicode.IsControl(r):
		return -1
	}
	return r
}
