package analytics

import (
	"reflect"
	"testing"
	"time"

	"github.com/matheus3301/wrapped/internal/chat"
)

func at(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func msg(author, content string, ts time.Time) chat.Message {
	return chat.Message{ID: author + ts.String(), Timestamp: ts, Author: author, Content: content, Source: chat.SourceWhatsApp}
}

func sampleChat() []chat.Message {
	return []chat.Message{
		msg("Alice", "hello world coffee", at(2024, 3, 1, 10, 0)),
		msg("Bob", "coffee sounds great", at(2024, 3, 1, 10, 30)),
		msg("Alice", "<Media omitted>", at(2024, 3, 2, 22, 0)),
		msg("Bob", "coffee again tomorrow?", at(2024, 3, 5, 9, 0)),
		msg("Alice", "last year", at(2023, 12, 31, 23, 0)),
	}
}

func TestAnalyzeSampleChat(t *testing.T) {
	s := Analyze(sampleChat(), 2024)

	if s.TotalMessages != 4 {
		t.Errorf("TotalMessages = %d, want 4", s.TotalMessages)
	}
	if want := map[string]int{"Alice": 2, "Bob": 2}; !reflect.DeepEqual(s.Participants, want) {
		t.Errorf("Participants = %v, want %v", s.Participants, want)
	}
	if want := map[string]int{"Alice": 2, "Bob": 2}; !reflect.DeepEqual(s.ActiveDaysByAuthor, want) {
		t.Errorf("ActiveDaysByAuthor = %v, want %v", s.ActiveDaysByAuthor, want)
	}
	if want := map[int]int{9: 1, 10: 2, 22: 1}; !reflect.DeepEqual(s.HourlyActivity, want) {
		t.Errorf("HourlyActivity = %v, want %v", s.HourlyActivity, want)
	}
	if s.TotalActiveDays != 3 {
		t.Errorf("TotalActiveDays = %d, want 3", s.TotalActiveDays)
	}

	if s.DateRange.Start == nil || !s.DateRange.Start.Equal(at(2024, 3, 1, 10, 0)) {
		t.Errorf("DateRange.Start = %v, want 2024-03-01 10:00", s.DateRange.Start)
	}
	if s.DateRange.End == nil || !s.DateRange.End.Equal(at(2024, 3, 5, 9, 0)) {
		t.Errorf("DateRange.End = %v, want 2024-03-05 09:00", s.DateRange.End)
	}

	if s.BusiestDay == nil || !s.BusiestDay.Date.Equal(at(2024, 3, 1, 0, 0)) || s.BusiestDay.Count != 2 {
		t.Errorf("BusiestDay = %+v, want 2024-03-01 with 2", s.BusiestDay)
	}

	if len(s.TopStreaks) != 2 || s.TopStreaks[0].Length != 2 || s.TopStreaks[1].Length != 1 {
		t.Errorf("TopStreaks = %+v, want lengths [2 1]", s.TopStreaks)
	}
	if len(s.TopGaps) != 1 || s.TopGaps[0].Length != 2 ||
		!s.TopGaps[0].Start.Equal(at(2024, 3, 3, 0, 0)) || !s.TopGaps[0].End.Equal(at(2024, 3, 4, 0, 0)) {
		t.Errorf("TopGaps = %+v, want one gap 03-03..03-04", s.TopGaps)
	}

	wantWords := []WordCount{
		{"coffee", 3}, {"again", 1}, {"great", 1}, {"hello", 1},
		{"sounds", 1}, {"tomorrow", 1}, {"world", 1},
	}
	if !reflect.DeepEqual(s.TopWords, wantWords) {
		t.Errorf("TopWords = %v, want %v", s.TopWords, wantWords)
	}

	if want := map[string]float64{"Alice": 16.5, "Bob": 20.5}; !reflect.DeepEqual(s.AvgLengthPerAuthor, want) {
		t.Errorf("AvgLengthPerAuthor = %v, want %v", s.AvgLengthPerAuthor, want)
	}

	if want := map[string]float64{"Bob": 1800}; !reflect.DeepEqual(s.AvgReplyTime, want) {
		t.Errorf("AvgReplyTime = %v, want %v", s.AvgReplyTime, want)
	}

	gotLengths := make([]int, 0, len(s.LongestMessages))
	for _, m := range s.LongestMessages {
		gotLengths = append(gotLengths, m.Length)
	}
	if want := []int{22, 19, 18}; !reflect.DeepEqual(gotLengths, want) {
		t.Errorf("LongestMessages lengths = %v, want %v", gotLengths, want)
	}
}

func TestAnalyzeIsOrderIndependent(t *testing.T) {
	in := sampleChat()
	reversed := make([]chat.Message, len(in))
	for i, m := range in {
		reversed[len(in)-1-i] = m
	}

	a := Analyze(in, 2024)
	b := Analyze(reversed, 2024)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("Analyze differs by input order:\n%+v\n%+v", a, b)
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	in := sampleChat()
	first := Analyze(in, 2024)
	for i := 0; i < 5; i++ {
		if got := Analyze(in, 2024); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs from first run", i)
		}
	}
}

func TestAnalyzeDoesNotMutateInput(t *testing.T) {
	in := []chat.Message{
		msg("Bob", "second", at(2024, 1, 2, 0, 0)),
		msg("Alice", "first", at(2024, 1, 1, 0, 0)),
	}
	Analyze(in, 2024)
	if in[0].Author != "Bob" || in[1].Author != "Alice" {
		t.Errorf("input reordered: %+v", in)
	}
}

func TestAnalyzeParticipantsSumToTotal(t *testing.T) {
	s := Analyze(sampleChat(), 2024)
	sum := 0
	for _, n := range s.Participants {
		sum += n
	}
	if sum != s.TotalMessages {
		t.Errorf("sum(Participants) = %d, want %d", sum, s.TotalMessages)
	}
	hourly := 0
	for _, n := range s.DenseHourly() {
		hourly += n
	}
	if hourly != s.TotalMessages {
		t.Errorf("sum(DenseHourly) = %d, want %d", hourly, s.TotalMessages)
	}
}

func TestAnalyzeOutOfYear(t *testing.T) {
	s := Analyze(sampleChat(), 2030)

	if s.TotalMessages != 0 {
		t.Errorf("TotalMessages = %d, want 0", s.TotalMessages)
	}
	if s.DateRange.Start != nil || s.DateRange.End != nil {
		t.Errorf("DateRange = %+v, want nil bounds", s.DateRange)
	}
	if s.BusiestDay != nil {
		t.Errorf("BusiestDay = %+v, want nil", s.BusiestDay)
	}
	if len(s.TopStreaks) != 0 || len(s.TopGaps) != 0 || len(s.TopWords) != 0 || len(s.LongestMessages) != 0 {
		t.Errorf("rankings not empty: %+v", s)
	}
	if len(s.AvgReplyTime) != 0 || len(s.Participants) != 0 {
		t.Errorf("maps not empty: %+v", s)
	}
	if s.Year != 2030 {
		t.Errorf("Year = %d, want 2030", s.Year)
	}
}

func TestAnalyzeSingleAuthorHasNoReplies(t *testing.T) {
	in := []chat.Message{
		msg("Alice", "one", at(2024, 6, 1, 8, 0)),
		msg("Alice", "two", at(2024, 6, 1, 8, 1)),
		msg("Alice", "three", at(2024, 6, 1, 8, 2)),
	}
	s := Analyze(in, 2024)
	if len(s.AvgReplyTime) != 0 {
		t.Errorf("AvgReplyTime = %v, want empty", s.AvgReplyTime)
	}
}

func TestAnalyzeReplyWindowIsExclusive(t *testing.T) {
	in := []chat.Message{
		msg("Alice", "ping", at(2024, 6, 1, 8, 0)),
		msg("Bob", "pong", at(2024, 6, 1, 10, 0)),
		msg("Alice", "ping", at(2024, 6, 1, 11, 59)),
	}
	s := Analyze(in, 2024)
	if _, ok := s.AvgReplyTime["Bob"]; ok {
		t.Errorf("reply after exactly the window counted: %v", s.AvgReplyTime)
	}
	if got := s.AvgReplyTime["Alice"]; got != 7140 {
		t.Errorf("AvgReplyTime[Alice] = %v, want 7140", got)
	}
}

func TestAnalyzeBusiestDayTieTakesEarliest(t *testing.T) {
	in := []chat.Message{
		msg("Alice", "a", at(2024, 7, 9, 8, 0)),
		msg("Alice", "b", at(2024, 7, 9, 9, 0)),
		msg("Bob", "c", at(2024, 7, 2, 8, 0)),
		msg("Bob", "d", at(2024, 7, 2, 9, 0)),
	}
	s := Analyze(in, 2024)
	if s.BusiestDay == nil || !s.BusiestDay.Date.Equal(at(2024, 7, 2, 0, 0)) {
		t.Errorf("BusiestDay = %+v, want 2024-07-02", s.BusiestDay)
	}
}

func TestAnalyzeLongestMessagesFilters(t *testing.T) {
	in := []chat.Message{
		msg("Meta AI", "a very long and perfectly clean answer from the assistant", at(2024, 1, 1, 8, 0)),
		msg("Alice", "!!!!!!!!!!!!@@@@@@@@@@@@#####", at(2024, 1, 1, 9, 0)),
		msg("Bob", "!!!!!!!!!!!!!!!!!!!!", at(2024, 1, 1, 9, 30)),
		msg("Bob", "...?!?!...?!?!...?!?!", at(2024, 1, 1, 9, 45)),
		msg("Alice", "", at(2024, 1, 1, 10, 0)),
		msg("Bob", "short but clean", at(2024, 1, 1, 11, 0)),
		msg("Alice", "same size clean", at(2024, 1, 1, 12, 0)),
	}
	s := Analyze(in, 2024)
	if len(s.LongestMessages) != 2 {
		t.Fatalf("LongestMessages = %+v, want 2 entries", s.LongestMessages)
	}
	if s.LongestMessages[0].Author != "Bob" || s.LongestMessages[1].Author != "Alice" {
		t.Errorf("equal lengths not in chronological order: %+v", s.LongestMessages)
	}
}

func TestAnalyzeNegativeLimitsKeepEverything(t *testing.T) {
	opts := DefaultOptions()
	opts.TopWords = -1
	opts.LongestMessages = -3

	s := AnalyzeWith(sampleChat(), 2024, opts)
	full := Analyze(sampleChat(), 2024)
	if len(s.TopWords) == 0 || len(s.TopWords) != len(full.TopWords) {
		t.Errorf("TopWords = %d entries, want %d", len(s.TopWords), len(full.TopWords))
	}
	if len(s.LongestMessages) == 0 || len(s.LongestMessages) != len(full.LongestMessages) {
		t.Errorf("LongestMessages = %d entries, want %d", len(s.LongestMessages), len(full.LongestMessages))
	}
}

func TestAnalyzeTopWordsExcludeNoise(t *testing.T) {
	in := []chat.Message{
		msg("Alice", "the and is ok go", at(2024, 1, 1, 8, 0)),
		msg("Bob", "image omitted", at(2024, 1, 1, 9, 0)),
		msg("Bob", "Pizza, PIZZA! pizza?", at(2024, 1, 1, 10, 0)),
	}
	s := Analyze(in, 2024)
	want := []WordCount{{"pizza", 3}}
	if !reflect.DeepEqual(s.TopWords, want) {
		t.Errorf("TopWords = %v, want %v", s.TopWords, want)
	}
}

func TestAnalyzeWithOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.TopWords = 1
	opts.LongestMessages = 1
	opts.ReplyWindow = time.Minute

	s := AnalyzeWith(sampleChat(), 2024, opts)
	if len(s.TopWords) != 1 || s.TopWords[0].Word != "coffee" {
		t.Errorf("TopWords = %v, want [coffee]", s.TopWords)
	}
	if len(s.LongestMessages) != 1 {
		t.Errorf("LongestMessages = %d entries, want 1", len(s.LongestMessages))
	}
	if len(s.AvgReplyTime) != 0 {
		t.Errorf("AvgReplyTime = %v, want empty with 1m window", s.AvgReplyTime)
	}
}
