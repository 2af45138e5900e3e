package parse

import (
	"reflect"
	"strconv"
	"testing"
	"time"

	"github.com/matheus3301/wrapped/internal/chat"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func testParser() *Parser {
	n := 0
	return New(
		WithLocation(time.UTC),
		WithIDGenerator(func() string {
			n++
			return "gen-" + strconv.Itoa(n)
		}),
	)
}

func TestParseWhatsAppLine(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		wantTime   time.Time
		wantAuthor string
		wantBody   string
	}{
		{
			name:       "android 12h",
			line:       "12/5/24, 9:26 PM - Alice: Hello there",
			wantTime:   time.Date(2024, 5, 12, 21, 26, 0, 0, time.UTC),
			wantAuthor: "Alice",
			wantBody:   "Hello there",
		},
		{
			name:       "lower-case meridiem without space",
			line:       "12/5/24, 9:26pm - Alice: Hello there",
			wantTime:   time.Date(2024, 5, 12, 21, 26, 0, 0, time.UTC),
			wantAuthor: "Alice",
			wantBody:   "Hello there",
		},
		{
			name:       "narrow no-break space before meridiem",
			line:       "12/5/24, 9:26\u202fam - Alice: morning",
			wantTime:   time.Date(2024, 5, 12, 9, 26, 0, 0, time.UTC),
			wantAuthor: "Alice",
			wantBody:   "morning",
		},
		{
			name:       "ios bracketed 24h with seconds",
			line:       "[03/01/2025, 14:05:09] Bob Smith: lunch?",
			wantTime:   time.Date(2025, 1, 3, 14, 5, 9, 0, time.UTC),
			wantAuthor: "Bob Smith",
			wantBody:   "lunch?",
		},
		{
			name:       "ios bracketed 12h with seconds",
			line:       "[3/1/25, 2:05:09 PM] Bob: lunch?",
			wantTime:   time.Date(2025, 1, 3, 14, 5, 9, 0, time.UTC),
			wantAuthor: "Bob",
			wantBody:   "lunch?",
		},
		{
			name:       "24h without seconds",
			line:       "1/2/2024, 23:59 - Carol: late",
			wantTime:   time.Date(2024, 2, 1, 23, 59, 0, 0, time.UTC),
			wantAuthor: "Carol",
			wantBody:   "late",
		},
		{
			name:       "us month-first fallback",
			line:       "5/13/24, 10:00 AM - Dan: us locale",
			wantTime:   time.Date(2024, 5, 13, 10, 0, 0, 0, time.UTC),
			wantAuthor: "Dan",
			wantBody:   "us locale",
		},
		{
			name:       "colon inside content",
			line:       "12/5/24, 9:26 PM - Alice: note: buy milk",
			wantTime:   time.Date(2024, 5, 12, 21, 26, 0, 0, time.UTC),
			wantAuthor: "Alice",
			wantBody:   "note: buy milk",
		},
		{
			name:       "media placeholder",
			line:       "12/5/24, 9:27 PM - Alice: <Media omitted>",
			wantTime:   time.Date(2024, 5, 12, 21, 27, 0, 0, time.UTC),
			wantAuthor: "Alice",
			wantBody:   "<Media omitted>",
		},
		{
			name:       "24h clock with stray meridiem",
			line:       "12/5/24, 13:05 PM - Alice: x",
			wantTime:   time.Date(2024, 5, 12, 13, 5, 0, 0, time.UTC),
			wantAuthor: "Alice",
			wantBody:   "x",
		},
		{
			name:       "stray meridiem reads day-first",
			line:       "5/12/24, 18:40 AM - Bob: y",
			wantTime:   time.Date(2024, 12, 5, 18, 40, 0, 0, time.UTC),
			wantAuthor: "Bob",
			wantBody:   "y",
		},
		{
			name:       "loose date-only fallback",
			line:       "12/5/24 at 9.26 - Dave: odd clock",
			wantTime:   time.Date(2024, 5, 12, 0, 0, 0, 0, time.UTC),
			wantAuthor: "Dave",
			wantBody:   "odd clock",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs := testParser().ParseWhatsApp(tt.line)
			if len(msgs) != 1 {
				t.Fatalf("got %d messages, want 1", len(msgs))
			}
			m := msgs[0]
			if !m.Timestamp.Equal(tt.wantTime) {
				t.Errorf("Timestamp = %v, want %v", m.Timestamp, tt.wantTime)
			}
			if m.Author != tt.wantAuthor {
				t.Errorf("Author = %q, want %q", m.Author, tt.wantAuthor)
			}
			if m.Content != tt.wantBody {
				t.Errorf("Content = %q, want %q", m.Content, tt.wantBody)
			}
			if m.Source != chat.SourceWhatsApp {
				t.Errorf("Source = %q, want whatsapp", m.Source)
			}
		})
	}
}

func TestParseWhatsAppDropsUnparseableLines(t *testing.T) {
	lines := []string{
		"not a valid chat line",
		"12/5/24, 9:26 PM - Messages and calls are end-to-end encrypted.",
		"99/99/24, 9:26 PM - Ghost: impossible date",
		"and this is the second line of a multi-line message",
	}
	for _, line := range lines {
		t.Run(line, func(t *testing.T) {
			if msgs := testParser().ParseWhatsApp(line); len(msgs) != 0 {
				t.Errorf("ParseWhatsApp(%q) = %+v, want no messages", line, msgs)
			}
		})
	}
}

func TestParseWhatsAppLogsDroppedLineNumbers(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	p := New(WithLocation(time.UTC), WithLogger(zap.New(core)))

	export := "12/5/24, 9:26 PM - Alice: one\n" +
		"continued text\n" +
		"\n" +
		"12/5/24, 9:27 PM - Bob: two\n" +
		"99/99/24, 9:28 PM - Ghost: three\n"

	if msgs := p.ParseWhatsApp(export); len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}

	var lines []int64
	for _, e := range logs.FilterMessage("dropped unparseable line").All() {
		lines = append(lines, e.ContextMap()["line"].(int64))
	}
	if want := []int64{2, 5}; !reflect.DeepEqual(lines, want) {
		t.Errorf("dropped lines = %v, want %v", lines, want)
	}

	summary := logs.FilterMessage("parsed export").All()
	if len(summary) != 1 || summary[0].ContextMap()["dropped"] != int64(2) {
		t.Errorf("summary = %+v, want dropped=2", summary)
	}
}

func TestStripExtraMeridiem(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"13:05 PM", "13:05"},
		{"23:59:01 AM", "23:59:01"},
		{"12:30 PM", "12:30 PM"},
		{"9:26 AM", "9:26 AM"},
		{"21:26", "21:26"},
	}
	for _, tt := range tests {
		if got := stripExtraMeridiem(tt.in); got != tt.want {
			t.Errorf("stripExtraMeridiem(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseWhatsAppExport(t *testing.T) {
	export := "\ufeff12/5/24, 9:26 PM - Alice: Hello there\r\n" +
		"\r\n" +
		"12/5/24, 9:30 PM - Bob: hi Alice\r\n" +
		"how are you\r\n" +
		"  13/5/24, 8:00 AM -   Alice  :   fine  \r\n"

	msgs := testParser().ParseWhatsApp(export)
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}
	if msgs[0].Author != "Alice" || msgs[1].Author != "Bob" {
		t.Errorf("authors = %q, %q; want Alice, Bob", msgs[0].Author, msgs[1].Author)
	}
	if msgs[2].Author != "Alice" || msgs[2].Content != "fine" {
		t.Errorf("third message = %+v, want trimmed author and content", msgs[2])
	}
	if msgs[0].ID != "gen-1" || msgs[2].ID != "gen-3" {
		t.Errorf("ids = %q, %q; want generated ids", msgs[0].ID, msgs[2].ID)
	}
}

func TestParseWhatsAppEmpty(t *testing.T) {
	msgs := testParser().ParseWhatsApp("")
	if msgs == nil || len(msgs) != 0 {
		t.Errorf("ParseWhatsApp(\"\") = %v, want empty non-nil slice", msgs)
	}
}

func TestParseWhatsAppGeneratesUniqueIDs(t *testing.T) {
	msgs := New(WithLocation(time.UTC)).ParseWhatsApp(
		"12/5/24, 9:26 PM - Alice: one\n12/5/24, 9:26 PM - Alice: two",
	)
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].ID == "" || msgs[0].ID == msgs[1].ID {
		t.Errorf("ids = %q, %q; want distinct non-empty", msgs[0].ID, msgs[1].ID)
	}
}

func TestCanonicalClock(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"9:26 pm", "9:26 PM"},
		{"9:26PM", "9:26 PM"},
		{"9:26:01  am", "9:26:01 AM"},
		{"21:26", "21:26"},
	}
	for _, tt := range tests {
		if got := canonicalClock(tt.in); got != tt.want {
			t.Errorf("canonicalClock(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
