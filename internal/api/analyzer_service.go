package api

import (
	"context"
	"os"
	"sync/atomic"
	"time"

	"github.com/matheus3301/wrapped/internal/analytics"
	"github.com/matheus3301/wrapped/internal/bus"
	"github.com/matheus3301/wrapped/internal/chat"
	"github.com/matheus3301/wrapped/internal/config"
	"github.com/matheus3301/wrapped/internal/parse"
	"github.com/matheus3301/wrapped/internal/status"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"
)

// highlightsLen bounds every leaderboard in a response.
const highlightsLen = 5

// AnalyzerService implements the AnalyzerService gRPC service. Each call
// parses and analyzes its own upload; calls share no mutable state beyond
// the analysis counter.
type AnalyzerService struct {
	cfg      *config.Config
	parser   *parse.Parser
	machine  *status.Machine
	bus      *bus.Bus
	logger   *zap.Logger
	now      func() time.Time
	analyses atomic.Uint64
}

// NewAnalyzerService creates a new analyzer service.
func NewAnalyzerService(cfg *config.Config, parser *parse.Parser, machine *status.Machine, b *bus.Bus, logger *zap.Logger) *AnalyzerService {
	return &AnalyzerService{
		cfg:     cfg,
		parser:  parser,
		machine: machine,
		bus:     b,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *AnalyzerService) Analyze(ctx context.Context, req *AnalyzeRequest) (*AnalyzeResponse, error) {
	if len(req.Data) == 0 {
		return nil, s.fail(codes.InvalidArgument, "empty export")
	}
	if limit := s.cfg.MaxUploadBytes(); len(req.Data) > limit {
		return nil, s.fail(codes.InvalidArgument, "export is %d bytes, limit is %d", len(req.Data), limit)
	}
	format, err := parse.ParseFormat(req.Format)
	if err != nil {
		return nil, s.fail(codes.InvalidArgument, "%v", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, grpcstatus.FromContextError(err).Err()
	}

	if format == parse.FormatAuto {
		format = parse.DetectFormat(req.FileName, req.Data)
	}
	year := req.Year
	if year <= 0 {
		year = s.cfg.Year(s.now())
	}

	start := time.Now()
	msgs := s.parser.ParseAs(format, req.Data)
	stats := analytics.AnalyzeWith(msgs, year, s.cfg.Options())
	elapsed := time.Since(start)

	source := sourceOf(format)
	s.analyses.Add(1)
	s.bus.Publish(bus.Event{
		Kind:      bus.KindAnalysisCompleted,
		Timestamp: s.now(),
		Payload: bus.AnalysisCompleted{
			Source:   source,
			Year:     year,
			Messages: len(msgs),
			Analyzed: stats.TotalMessages,
			Duration: elapsed,
		},
	})
	s.logger.Info("analysis completed",
		zap.String("file", req.FileName),
		zap.String("source", string(source)),
		zap.Int("year", year),
		zap.Int("parsed", len(msgs)),
		zap.Int("analyzed", stats.TotalMessages),
		zap.Duration("elapsed", elapsed),
	)

	return &AnalyzeResponse{
		Source:         string(source),
		ParsedMessages: len(msgs),
		Stats:          stats,
		Highlights:     stats.Highlights(highlightsLen),
	}, nil
}

func (s *AnalyzerService) GetStatus(_ context.Context, _ *StatusRequest) (*StatusResponse, error) {
	return &StatusResponse{
		Status:   string(s.machine.Current()),
		UptimeMs: s.machine.Uptime().Milliseconds(),
		Analyses: s.analyses.Load(),
		PID:      os.Getpid(),
	}, nil
}

// fail publishes the failure and returns it as a gRPC status error.
func (s *AnalyzerService) fail(code codes.Code, format string, args ...any) error {
	st := grpcstatus.Newf(code, format, args...)
	s.bus.Publish(bus.Event{
		Kind:      bus.KindAnalysisFailed,
		Timestamp: s.now(),
		Payload:   bus.AnalysisFailed{Reason: st.Message()},
	})
	s.logger.Warn("analysis rejected", zap.String("reason", st.Message()))
	return st.Err()
}

func sourceOf(f parse.Format) chat.Source {
	if f == parse.FormatTelegram {
		return chat.SourceTelegram
	}
	return chat.SourceWhatsApp
}
