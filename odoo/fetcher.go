package odoo

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("repair_costs/odoo")

// Executor is the remote call a Fetcher retries. *Session implements it.
type Executor interface {
	ExecuteKw(ctx context.Context, model, method string, args []any, kwargs map[string]any) ([]Record, error)
}

type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
}

var DefaultRetryConfig = RetryConfig{
	MaxAttempts:  3,
	InitialDelay: 5 * time.Second,
}

// Fetcher runs queries with bounded retries. Only rate limiting is retried;
// the delay doubles after every rate-limited attempt, without jitter.
type Fetcher struct {
	executor Executor
	config   RetryConfig
	logger   logrus.FieldLogger
	sleep    func(ctx context.Context, d time.Duration) error
}

func NewFetcher(executor Executor, config RetryConfig, logger logrus.FieldLogger) *Fetcher {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultRetryConfig.MaxAttempts
	}
	if config.InitialDelay < 0 {
		config.InitialDelay = DefaultRetryConfig.InitialDelay
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Fetcher{
		executor: executor,
		config:   config,
		logger:   logger,
		sleep:    sleepContext,
	}
}

func (f *Fetcher) Fetch(ctx context.Context, q Query) ([]Record, error) {
	method := q.method()
	ctx, span := tracer.Start(ctx, "odoo."+q.Model+"."+method, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("odoo.model", q.Model), attribute.String("odoo.method", method))

	delay := f.config.InitialDelay
	var lastErr error
	for attempt := 1; attempt <= f.config.MaxAttempts; attempt++ {
		records, err := f.executor.ExecuteKw(ctx, q.Model, method, q.args(), q.kwargs())
		if err == nil {
			span.SetAttributes(attribute.Int("odoo.attempts", attempt), attribute.Int("odoo.records", len(records)))
			return records, nil
		}

		if KindOf(err) != KindRateLimited {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			if _, ok := err.(*FetchError); ok {
				return nil, err
			}
			return nil, &FetchError{Kind: KindOf(err), Model: q.Model, Method: method, Attempts: attempt, Err: err}
		}

		lastErr = err
		if attempt == f.config.MaxAttempts {
			break
		}
		f.logger.WithFields(logrus.Fields{
			"model":    q.Model,
			"attempt":  attempt,
			"attempts": f.config.MaxAttempts,
			"delay":    delay.String(),
		}).Warn("rate limit hit, retrying")

		if err := f.sleep(ctx, delay); err != nil {
			return nil, err
		}
		delay *= 2
	}

	exhausted := &FetchError{
		Kind:     KindExhaustedRetries,
		Model:    q.Model,
		Method:   method,
		Attempts: f.config.MaxAttempts,
		Err:      lastErr,
	}
	span.RecordError(exhausted)
	span.SetStatus(codes.Error, exhausted.Error())
	return nil, exhausted
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
