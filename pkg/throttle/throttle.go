// Package throttle gates every outbound call against a shared request-rate
// budget and wraps it with retry and uniform error translation. A call either
// returns fully formed or fails as a whole; a retried-then-succeeded call
// looks like success to the caller.
package throttle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/merchantkit/order-sync/pkg/budget"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Prometheus metrics for throttled calls.
var (
	callsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ordersync_calls_total",
		Help: "Total outbound calls by endpoint and outcome",
	}, []string{"endpoint", "outcome"})

	callDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ordersync_call_duration_seconds",
		Help:    "Outbound call duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	callErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ordersync_call_errors_total",
		Help: "Total outbound call errors by class",
	}, []string{"class"})
)

// Config holds the throttler configuration.
type Config struct {
	// RequestsPerSecond is the shared outbound rate budget.
	RequestsPerSecond float64

	// Burst is the token bucket burst size.
	Burst int

	// Budget optionally gates admission against the platform's advertised
	// request budget shared across workers. Nil disables the gate.
	Budget *budget.Tracker
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 10,
		Burst:             5,
	}
}

// Throttler wraps outbound calls with admission control, retry, and error
// translation. Safe for concurrent use; admission is serialized by the
// token bucket without starving any caller.
type Throttler struct {
	limiter *rate.Limiter
	budget  *budget.Tracker
	logger  zerolog.Logger
}

// New creates a new throttler.
func New(cfg Config) *Throttler {
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 10
	}
	if cfg.Burst <= 0 {
		cfg.Burst = max(1, int(cfg.RequestsPerSecond))
	}

	return &Throttler{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		budget:  cfg.Budget,
		logger:  log.With().Str("component", "throttle").Logger(),
	}
}

// Call wraps a single outbound operation. It checks cancellation before
// issuing anything, waits for admission into the rate budget, runs fn with
// retry-on-failure per error class, and translates any failure into a typed
// error carrying the endpoint and a correlation mark.
func (t *Throttler) Call(ctx context.Context, endpoint string, fn func(ctx context.Context) error) error {
	mark := uuid.NewString()
	logger := t.logger.With().Str("endpoint", endpoint).Str("mark", mark).Logger()

	startTime := time.Now()
	defer func() {
		callDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	// A pre-cancelled call is never sent
	if err := ctx.Err(); err != nil {
		callsTotal.WithLabelValues(endpoint, "cancelled").Inc()
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}

	// Admission into the shared rate budget
	if err := t.limiter.Wait(ctx); err != nil {
		callsTotal.WithLabelValues(endpoint, "cancelled").Inc()
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}

	if t.budget != nil {
		allowed, err := t.budget.ShouldAllowRequest(ctx)
		if err != nil {
			if ctx.Err() != nil {
				callsTotal.WithLabelValues(endpoint, "cancelled").Inc()
				return fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
			}
			return fmt.Errorf("budget check: %w", err)
		}
		if !allowed {
			logger.Warn().Msg("Call blocked by platform budget")
			callsTotal.WithLabelValues(endpoint, "blocked").Inc()
			return fmt.Errorf("%w: %s", ErrBudgetExhausted, endpoint)
		}
	}

	logger.Debug().Msg("Issuing outbound call")

	err := retryWithBackoff(ctx, logger, func() error {
		// Once cancellation is requested no new attempt is issued;
		// in-flight attempts finish or fail naturally
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrCancelled, err)
		}
		return fn(ctx)
	}, classify)

	if err != nil {
		err = stamp(err, endpoint, mark)
		callErrorsTotal.WithLabelValues(string(classify(err))).Inc()
		callsTotal.WithLabelValues(endpoint, "error").Inc()
		logger.Error().Err(err).Msg("Outbound call failed")
		return err
	}

	callsTotal.WithLabelValues(endpoint, "ok").Inc()
	return nil
}

// classify maps a failure to its error class for retry decisions.
func classify(err error) ErrorClass {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		// Cancellation is not retryable and not a remote failure
		return ""
	}

	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return ClassifyStatus(remoteErr.StatusCode)
	}

	return ErrorClassNetwork
}

// stamp attaches the endpoint and correlation mark to the typed failure.
// Remote errors already in the chain are stamped in place; cancellations
// pass through untouched; everything else is wrapped as a transport error.
func stamp(err error, endpoint, mark string) error {
	if errors.Is(err, ErrCancelled) || errors.Is(err, ErrBudgetExhausted) {
		return err
	}

	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		if remoteErr.Endpoint == "" {
			remoteErr.Endpoint = endpoint
		}
		if remoteErr.Mark == "" {
			remoteErr.Mark = mark
		}
		if remoteErr.Class == "" {
			remoteErr.Class = ClassifyStatus(remoteErr.StatusCode)
		}
		return err
	}

	return &TransportError{
		Endpoint: endpoint,
		Mark:     mark,
		Err:      err,
	}
}
