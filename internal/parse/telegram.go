package parse

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/matheus3301/wrapped/internal/chat"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	telegramMessageType = "message"
	unknownAuthor       = "Unknown"
	telegramDateLayout  = "2006-01-02T15:04:05"
)

// TextKind tells which shape a Telegram "text" value had.
type TextKind int

const (
	TextNone TextKind = iota
	TextPlain
	TextRich
)

// TextField is a Telegram "text" value resolved once during parsing. The
// export writes plain messages as a string and formatted ones as a list of
// segments, each a string or an entity object with its own "text".
type TextField struct {
	Kind     TextKind
	Plain    string
	Segments []string
}

// String returns the message body; segments are joined without separator.
func (t TextField) String() string {
	switch t.Kind {
	case TextPlain:
		return t.Plain
	case TextRich:
		return strings.Join(t.Segments, "")
	default:
		return ""
	}
}

// ResolveText classifies a raw "text" value.
func ResolveText(v gjson.Result) TextField {
	switch {
	case v.Type == gjson.String:
		return TextField{Kind: TextPlain, Plain: v.Str}
	case v.IsArray():
		var segments []string
		v.ForEach(func(_, seg gjson.Result) bool {
			segments = append(segments, segmentText(seg))
			return true
		})
		return TextField{Kind: TextRich, Segments: segments}
	default:
		return TextField{Kind: TextNone}
	}
}

func segmentText(seg gjson.Result) string {
	switch {
	case seg.Type == gjson.String:
		return seg.Str
	case seg.IsObject():
		if t := seg.Get("text"); t.Type == gjson.String {
			return t.Str
		}
	}
	return ""
}

// ParseTelegram parses a Telegram Desktop JSON export. Only entries of type
// "message" are kept; service events are skipped. Malformed JSON yields an
// empty sequence.
func (p *Parser) ParseTelegram(data []byte) []chat.Message {
	messages := []chat.Message{}
	if !gjson.ValidBytes(data) {
		p.logger.Warn("telegram export is not valid json")
		return messages
	}

	list := gjson.GetBytes(data, "messages")
	if !list.IsArray() {
		p.logger.Info("telegram export has no message list")
		return messages
	}

	dropped := 0
	list.ForEach(func(_, entry gjson.Result) bool {
		if !entry.IsObject() {
			return true
		}
		if kind := entry.Get("type"); kind.Type != gjson.String || kind.Str != telegramMessageType {
			return true
		}
		ts, ok := p.telegramTimestamp(entry)
		if !ok {
			dropped++
			return true
		}
		messages = append(messages, chat.Message{
			ID:        p.telegramID(entry.Get("id")),
			Timestamp: ts,
			Author:    telegramAuthor(entry.Get("from")),
			Content:   ResolveText(entry.Get("text")).String(),
			Source:    chat.SourceTelegram,
		})
		return true
	})

	p.logger.Info("parsed export",
		zap.String("source", string(chat.SourceTelegram)),
		zap.Int("messages", len(messages)),
		zap.Int("dropped", dropped),
	)
	return messages
}

func (p *Parser) telegramID(v gjson.Result) string {
	switch v.Type {
	case gjson.String, gjson.Number, gjson.True, gjson.False:
		if id := v.String(); id != "" {
			return id
		}
	}
	return p.newID()
}

func telegramAuthor(v gjson.Result) string {
	if v.Type == gjson.String && v.Str != "" {
		return v.Str
	}
	return unknownAuthor
}

// telegramTimestamp reads "date_unixtime" (seconds, string or number) and
// falls back to the zone-less "date" field.
func (p *Parser) telegramTimestamp(entry gjson.Result) (time.Time, bool) {
	if ts, ok := unixSeconds(entry.Get("date_unixtime")); ok {
		return ts.In(p.loc), true
	}
	if d := entry.Get("date"); d.Type == gjson.String {
		if ts, err := time.ParseInLocation(telegramDateLayout, d.Str, p.loc); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// maxUnixSeconds keeps secs*1000 inside the int64 range of time.UnixMilli.
const maxUnixSeconds = math.MaxInt64 / 1000

func unixSeconds(v gjson.Result) (time.Time, bool) {
	var secs float64
	switch v.Type {
	case gjson.Number:
		secs = v.Num
	case gjson.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return time.Time{}, false
		}
		secs = f
	default:
		return time.Time{}, false
	}
	if math.IsNaN(secs) || math.IsInf(secs, 0) || math.Abs(secs) > maxUnixSeconds {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(secs * 1000)), true
}
