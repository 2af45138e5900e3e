package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/matheus3301/wrapped/internal/api"
	"github.com/matheus3301/wrapped/internal/bus"
	"github.com/matheus3301/wrapped/internal/config"
	"github.com/matheus3301/wrapped/internal/lock"
	"github.com/matheus3301/wrapped/internal/logging"
	"github.com/matheus3301/wrapped/internal/metrics"
	"github.com/matheus3301/wrapped/internal/parse"
	"github.com/matheus3301/wrapped/internal/paths"
	"github.com/matheus3301/wrapped/internal/status"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the startup options passed to the fx module.
type Params struct {
	ConfigPath string // empty = paths.ConfigPath()
	SocketPath string // optional override for testing; empty = use default
}

// Module returns the fx module for the daemon, composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideBus,
			provideStateMachine,
			provideLock,
			provideParser,
			provideCollector,
			provideAnalyzerService,
			NewServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideConfig(p Params) (*config.Config, error) {
	path := p.ConfigPath
	if path == "" {
		path = paths.ConfigPath()
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func provideLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(paths.LogPath(), cfg.LogLevel)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideStateMachine(b *bus.Bus) *status.Machine {
	return status.NewMachine(b)
}

func provideLock(logger *zap.Logger) (*lock.Lock, error) {
	if err := paths.EnsureDir(); err != nil {
		return nil, err
	}
	logger.Info("acquiring daemon lock", zap.String("dir", paths.BaseDir()))
	l, err := lock.Acquire(paths.BaseDir())
	if err != nil {
		return nil, err
	}
	logger.Info("daemon lock acquired")
	return l, nil
}

func provideParser(logger *zap.Logger) *parse.Parser {
	return parse.New(parse.WithLogger(logger.Named("parse")))
}

func provideCollector(b *bus.Bus, logger *zap.Logger) *metrics.Collector {
	return metrics.NewCollector(b, logger.Named("metrics"))
}

func provideAnalyzerService(cfg *config.Config, parser *parse.Parser, m *status.Machine, b *bus.Bus, logger *zap.Logger) *api.AnalyzerService {
	return api.NewAnalyzerService(cfg, parser, m, b, logger)
}

func registerLifecycle(lc fx.Lifecycle, cfg *config.Config, srv *Server, lk *lock.Lock, collector *metrics.Collector, machine *status.Machine, logger *zap.Logger) {
	var metricsSrv *http.Server

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			// Start metrics collector (subscribes to analysis.* bus events).
			collector.Start(context.Background())

			if cfg.MetricsAddr != "" {
				ln, err := net.Listen("tcp", cfg.MetricsAddr)
				if err != nil {
					collector.Stop()
					return fmt.Errorf("listen metrics: %w", err)
				}
				mux := http.NewServeMux()
				mux.Handle("/metrics", collector.Handler())
				metricsSrv = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
				go func() {
					if err := metricsSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logger.Error("metrics server error", zap.Error(err))
					}
				}()
				logger.Info("metrics listening", zap.String("addr", ln.Addr().String()))
			}

			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("gRPC server error", zap.Error(err))
					_ = machine.Transition(status.Error)
				}
			}()

			return machine.Transition(status.Serving)
		},
		OnStop: func(ctx context.Context) error {
			if err := machine.Transition(status.Stopping); err != nil {
				logger.Warn("status transition", zap.Error(err))
			}
			srv.Stop(ctx)
			if metricsSrv != nil {
				if err := metricsSrv.Shutdown(ctx); err != nil {
					logger.Warn("metrics shutdown", zap.Error(err))
				}
			}
			collector.Stop()
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("daemon stopped")
			_ = logger.Sync()
			return nil
		},
	})
}
