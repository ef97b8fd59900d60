package provider

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/leadline-ai/leadline/config"
)

// BreakerProvider wraps a Provider with a circuit breaker. After the
// configured number of consecutive failures the breaker opens and calls
// fail fast until the reset timeout elapses; callers see the same error
// surface either way (an open breaker is just another provider failure).
type BreakerProvider struct {
	inner   Provider
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger

	stateGauge prometheus.Gauge
	tripsTotal prometheus.Counter
}

// NewBreakerProvider wraps inner with a breaker configured from cfg.
// Metrics are registered on registry when it is non-nil.
func NewBreakerProvider(inner Provider, cfg config.CircuitBreakerConfig, logger *zap.Logger, registry *prometheus.Registry) *BreakerProvider {
	bp := &BreakerProvider{
		inner:  inner,
		logger: logger,
		stateGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "leadline_circuit_breaker_state",
			Help: "Current state of the completion circuit breaker (0=closed, 1=half-open, 2=open)",
		}),
		tripsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "leadline_circuit_breaker_trips_total",
			Help: "Total number of times the completion circuit breaker has tripped",
		}),
	}

	if registry != nil {
		registry.MustRegister(bp.stateGauge)
		registry.MustRegister(bp.tripsTotal)
	}

	bp.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "completion",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			bp.stateGauge.Set(float64(to))
			if to == gobreaker.StateOpen {
				bp.tripsTotal.Inc()
			}
			logger.Warn("circuit breaker state change",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return bp
}

var _ Provider = (*BreakerProvider)(nil)

// Complete runs the wrapped provider through the breaker.
func (bp *BreakerProvider) Complete(ctx context.Context, req Request) (Response, error) {
	v, err := bp.breaker.Execute(func() (interface{}, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return bp.inner.Complete(ctx, req)
	})
	if err != nil {
		return Response{}, err
	}
	return v.(Response), nil
}

// State exposes the breaker state for tests and health reporting.
func (bp *BreakerProvider) State() gobreaker.State {
	return bp.breaker.State()
}
