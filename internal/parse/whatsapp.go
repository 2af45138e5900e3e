package parse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/matheus3301/wrapped/internal/chat"
	"go.uber.org/zap"
)

// Export lines come as "12/5/24, 9:26 PM - Alice: hi" (Android) or
// "[12/5/24, 21:26:13] Alice: hi" (iOS).
var (
	strictLine = regexp.MustCompile(`^\[?(\d{1,2}/\d{1,2}/\d{2,4})(?:,\s*|\s+)(\d{1,2}:\d{2}(?::\d{2})?(?:\s*[aApP][mM])?)(?:\]\s|\s+-\s+)(.*?): (.*)`)
	looseLine  = regexp.MustCompile(`^\[?(\d{1,2}/\d{1,2}/\d{2,4})(?:,|\s|\]).*? - (.*?): (.*)`)
)

// strictLayouts is tried in order; day-first before US month-first.
var strictLayouts = buildLayouts(
	[]string{"2/1/06", "2/1/2006", "1/2/06", "1/2/2006"},
	[]string{"3:04 PM", "3:04:05 PM", "15:04", "15:04:05"},
)

var looseLayouts = []string{"2/1/06", "2/1/2006"}

func buildLayouts(dates, clocks []string) []string {
	layouts := make([]string, 0, len(dates)*len(clocks))
	for _, d := range dates {
		for _, c := range clocks {
			layouts = append(layouts, d+" "+c)
		}
	}
	return layouts
}

// Exports put narrow or regular no-break spaces between the time and AM/PM.
var spaceNormalizer = strings.NewReplacer("\u202f", " ", "\u00a0", " ")

// ParseWhatsApp parses a WhatsApp text export line by line. Each line is
// matched against the dated-and-timed pattern first and the date-only pattern
// second; lines matching neither, including continuation lines of multi-line
// messages, are dropped.
func (p *Parser) ParseWhatsApp(text string) []chat.Message {
	text = strings.TrimPrefix(text, "\ufeff")
	messages := []chat.Message{}
	dropped := 0

	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		msg, ok := p.parseWhatsAppLine(line)
		if !ok {
			dropped++
			p.logger.Debug("dropped unparseable line", zap.Int("line", i+1))
			continue
		}
		messages = append(messages, msg)
	}

	p.logger.Info("parsed export",
		zap.String("source", string(chat.SourceWhatsApp)),
		zap.Int("messages", len(messages)),
		zap.Int("dropped", dropped),
	)
	return messages
}

func (p *Parser) parseWhatsAppLine(line string) (chat.Message, bool) {
	line = spaceNormalizer.Replace(line)

	if m := strictLine.FindStringSubmatch(line); m != nil {
		if ts, ok := p.parseDateTime(m[1], m[2]); ok {
			return p.newWhatsAppMessage(ts, m[3], m[4]), true
		}
	}

	if m := looseLine.FindStringSubmatch(line); m != nil {
		if ts, ok := p.parseDate(m[1]); ok {
			return p.newWhatsAppMessage(ts, m[2], m[3]), true
		}
	}

	return chat.Message{}, false
}

func (p *Parser) newWhatsAppMessage(ts time.Time, author, content string) chat.Message {
	return chat.Message{
		ID:        p.newID(),
		Timestamp: ts,
		Author:    strings.TrimSpace(author),
		Content:   strings.TrimSpace(content),
		Source:    chat.SourceWhatsApp,
	}
}

// parseDateTime tries every strict layout and then a generic day-first parse
// of the same text, with a meridiem dropped when the hour already reads as a
// 24-hour clock ("13:05 PM").
func (p *Parser) parseDateTime(date, clock string) (time.Time, bool) {
	clock = canonicalClock(clock)
	full := date + " " + clock
	for _, layout := range strictLayouts {
		if ts, err := time.ParseInLocation(layout, full, p.loc); err == nil {
			return ts, true
		}
	}
	full = date + " " + stripExtraMeridiem(clock)
	ts, err := dateparse.ParseIn(full, p.loc, dateparse.PreferMonthFirst(false))
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// stripExtraMeridiem removes AM/PM from a canonical clock whose hour is past 12.
func stripExtraMeridiem(clock string) string {
	rest, suffix, ok := strings.Cut(clock, " ")
	if !ok || (suffix != "AM" && suffix != "PM") {
		return clock
	}
	hour, _, _ := strings.Cut(rest, ":")
	if h, err := strconv.Atoi(hour); err == nil && h > 12 {
		return rest
	}
	return clock
}

// parseDate parses a day-first date with no time of day.
func (p *Parser) parseDate(date string) (time.Time, bool) {
	for _, layout := range looseLayouts {
		if ts, err := time.ParseInLocation(layout, date, p.loc); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// canonicalClock upper-cases the meridiem and puts exactly one space before
// it: "9:26pm" and "9:26  pm" both become "9:26 PM".
func canonicalClock(clock string) string {
	clock = strings.ToUpper(strings.TrimSpace(clock))
	for _, suffix := range []string{"AM", "PM"} {
		if rest, ok := strings.CutSuffix(clock, suffix); ok {
			return strings.TrimSpace(rest) + " " + suffix
		}
	}
	return clock
}
