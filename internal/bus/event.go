package bus

import (
	"time"

	"github.com/matheus3301/wrapped/internal/chat"
)

// Event kinds. Subscribers filter on the dotted prefix, e.g. "analysis.".
const (
	KindAnalysisCompleted = "analysis.completed"
	KindAnalysisFailed    = "analysis.failed"
	KindStatusChanged     = "daemon.status_changed"
)

// Event represents a domain event published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}

// AnalysisCompleted is the payload of KindAnalysisCompleted.
type AnalysisCompleted struct {
	Source   chat.Source
	Year     int
	Messages int
	Analyzed int
	Duration time.Duration
}

// AnalysisFailed is the payload of KindAnalysisFailed.
type AnalysisFailed struct {
	Reason string
}
