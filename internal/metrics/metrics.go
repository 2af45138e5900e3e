// Package metrics exposes daemon activity as Prometheus metrics. The
// collector is fed from the event bus rather than called directly.
package metrics

import (
	"context"
	"net/http"

	"github.com/matheus3301/wrapped/internal/bus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "wrapped"

// Collector counts analyses published on the bus.
type Collector struct {
	registry *prometheus.Registry
	bus      *bus.Bus
	logger   *zap.Logger
	cancel   context.CancelFunc
	done     chan struct{}

	analyses *prometheus.CounterVec
	messages *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewCollector creates a collector with its own registry, so that several
// daemons in one process (tests) do not clash on the global one.
func NewCollector(b *bus.Bus, logger *zap.Logger) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		bus:      b,
		logger:   logger,
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Analyses served, by export source and outcome.",
		}, []string{"source", "outcome"}),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_parsed_total",
			Help:      "Messages recovered from uploaded exports, by source.",
		}, []string{"source"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Wall time of parse plus analysis.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 4, 8),
		}),
	}

	c.registry.MustRegister(
		c.analyses,
		c.messages,
		c.duration,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bus_dropped_events",
			Help:      "Bus deliveries skipped because a subscriber was full.",
		}, func() float64 { return float64(b.Dropped()) }),
		collectors.NewGoCollector(),
	)
	return c
}

// Start subscribes to "analysis." events on the bus.
func (c *Collector) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})
	ch, unsub := c.bus.Subscribe("analysis.", 256)

	go func() {
		defer close(c.done)
		defer unsub()
		for {
			select {
			case evt := <-ch:
				c.handleEvent(evt)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the collector and waits for its goroutine to exit.
func (c *Collector) Stop() {
	if c.cancel != nil {
		c.cancel()
		<-c.done
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *Collector) handleEvent(evt bus.Event) {
	switch evt.Kind {
	case bus.KindAnalysisCompleted:
		p, ok := evt.Payload.(bus.AnalysisCompleted)
		if !ok {
			return
		}
		source := string(p.Source)
		c.analyses.WithLabelValues(source, "ok").Inc()
		c.messages.WithLabelValues(source).Add(float64(p.Messages))
		c.duration.Observe(p.Duration.Seconds())
	case bus.KindAnalysisFailed:
		c.analyses.WithLabelValues("unknown", "error").Inc()
		if p, ok := evt.Payload.(bus.AnalysisFailed); ok {
			c.logger.Debug("analysis failure counted", zap.String("reason", p.Reason))
		}
	}
}
