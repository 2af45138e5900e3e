package api

import (
	"github.com/matheus3301/wrapped/internal/analytics"
)

// AnalyzeRequest uploads one export for analysis.
type AnalyzeRequest struct {
	// FileName drives format detection; ".json" means Telegram.
	FileName string `json:"fileName"`
	// Format is auto, whatsapp or telegram. Empty means auto.
	Format string `json:"format,omitempty"`
	// Year is the calendar year to analyze; 0 uses the daemon's configured year.
	Year int    `json:"year,omitempty"`
	Data []byte `json:"data"`
}

// AnalyzeResponse carries the statistics of one export.
type AnalyzeResponse struct {
	Source         string               `json:"source"`
	ParsedMessages int                  `json:"parsedMessages"`
	Stats          *analytics.Stats     `json:"stats"`
	Highlights     analytics.Highlights `json:"highlights"`
}

// StatusRequest asks for the daemon status.
type StatusRequest struct{}

// StatusResponse describes the daemon.
type StatusResponse struct {
	Status   string `json:"status"`
	UptimeMs int64  `json:"uptimeMs"`
	Analyses uint64 `json:"analyses"`
	PID      int    `json:"pid"`
}
