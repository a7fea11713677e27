package odoo

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

type scriptedExecutor struct {
	failures []error
	records  []Record
	calls    int
	lastArgs []any
	lastKw   map[string]any
}

func (e *scriptedExecutor) ExecuteKw(ctx context.Context, model, method string, args []any, kwargs map[string]any) ([]Record, error) {
	e.calls++
	e.lastArgs = args
	e.lastKw = kwargs
	if e.calls <= len(e.failures) {
		return nil, e.failures[e.calls-1]
	}
	return e.records, nil
}

func rateLimited() error {
	return &FetchError{Kind: KindRateLimited, StatusCode: 429, Err: ErrRateLimited}
}

func newTestFetcher(exec Executor, cfg RetryConfig) (*Fetcher, *[]time.Duration) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	f := NewFetcher(exec, cfg, logger)
	var slept []time.Duration
	f.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return f, &slept
}

func TestFetch_SucceedsAfterRateLimits(t *testing.T) {
	cases := []struct {
		name      string
		failures  int
		wantSleep time.Duration
	}{
		{"no rate limit", 0, 0},
		{"one rate limit", 1, 5 * time.Second},
		{"two rate limits", 2, 15 * time.Second},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			exec := &scriptedExecutor{records: []Record{{"id": int64(1)}}}
			for i := 0; i < tc.failures; i++ {
				exec.failures = append(exec.failures, rateLimited())
			}
			f, slept := newTestFetcher(exec, DefaultRetryConfig)

			records, err := f.Fetch(context.Background(), Query{Model: "product.product"})
			if err != nil {
				t.Fatalf("Fetch error: %v", err)
			}
			if len(records) != 1 {
				t.Fatalf("expected 1 record, got %d", len(records))
			}
			if exec.calls != tc.failures+1 {
				t.Fatalf("expected %d calls, got %d", tc.failures+1, exec.calls)
			}
			var total time.Duration
			for _, d := range *slept {
				total += d
			}
			if total != tc.wantSleep {
				t.Fatalf("expected total sleep %s, got %s (%v)", tc.wantSleep, total, *slept)
			}
		})
	}
}

func TestFetch_DelayDoublesDeterministically(t *testing.T) {
	exec := &scriptedExecutor{failures: []error{rateLimited(), rateLimited(), rateLimited()}}
	f, slept := newTestFetcher(exec, RetryConfig{MaxAttempts: 4, InitialDelay: 2 * time.Second})

	if _, err := f.Fetch(context.Background(), Query{Model: "repair.order"}); err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	want := []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}
	if len(*slept) != len(want) {
		t.Fatalf("expected sleeps %v, got %v", want, *slept)
	}
	for i := range want {
		if (*slept)[i] != want[i] {
			t.Fatalf("expected sleeps %v, got %v", want, *slept)
		}
	}
}

func TestFetch_ExhaustsRetries(t *testing.T) {
	exec := &scriptedExecutor{failures: []error{rateLimited(), rateLimited(), rateLimited(), rateLimited()}}
	f, slept := newTestFetcher(exec, DefaultRetryConfig)

	_, err := f.Fetch(context.Background(), Query{Model: "stock.move.line"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrExhaustedRetries) {
		t.Fatalf("expected ErrExhaustedRetries, got %v", err)
	}
	if KindOf(err) != KindExhaustedRetries {
		t.Fatalf("expected kind exhausted_retries, got %s", KindOf(err))
	}
	if exec.calls != DefaultRetryConfig.MaxAttempts {
		t.Fatalf("expected exactly %d attempts, got %d", DefaultRetryConfig.MaxAttempts, exec.calls)
	}
	if len(*slept) != DefaultRetryConfig.MaxAttempts-1 {
		t.Fatalf("expected %d sleeps, got %v", DefaultRetryConfig.MaxAttempts-1, *slept)
	}
	var fe *FetchError
	if !errors.As(err, &fe) || fe.Attempts != 3 || fe.Model != "stock.move.line" {
		t.Fatalf("unexpected fetch error detail: %#v", fe)
	}
}

func TestFetch_OtherErrorsAreNotRetried(t *testing.T) {
	boom := errors.New("connection reset by peer")
	exec := &scriptedExecutor{failures: []error{boom, rateLimited()}}
	f, slept := newTestFetcher(exec, DefaultRetryConfig)

	_, err := f.Fetch(context.Background(), Query{Model: "repair.order"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped original error, got %v", err)
	}
	if KindOf(err) != KindRemoteProtocol {
		t.Fatalf("expected remote protocol kind, got %s", KindOf(err))
	}
	if exec.calls != 1 {
		t.Fatalf("expected 1 call, got %d", exec.calls)
	}
	if len(*slept) != 0 {
		t.Fatalf("expected no sleep, got %v", *slept)
	}
}

func TestFetch_StopsWhenContextCancelledDuringBackoff(t *testing.T) {
	exec := &scriptedExecutor{failures: []error{rateLimited(), rateLimited()}}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	f := NewFetcher(exec, RetryConfig{MaxAttempts: 3, InitialDelay: time.Hour}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.Fetch(ctx, Query{Model: "repair.order"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if exec.calls != 1 {
		t.Fatalf("expected 1 call, got %d", exec.calls)
	}
}

func TestFetch_EncodesQuery(t *testing.T) {
	exec := &scriptedExecutor{}
	f, _ := newTestFetcher(exec, DefaultRetryConfig)

	q := Query{
		Model:  "stock.move.line",
		Domain: Domain{Where("move_id", "in", []int64{7, 9})},
		Fields: []string{"id", "qty_done"},
		Extra:  map[string]any{"limit": 10},
	}
	if _, err := f.Fetch(context.Background(), q); err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	domain, ok := exec.lastArgs[0].([]any)
	if !ok || len(domain) != 1 {
		t.Fatalf("unexpected domain: %#v", exec.lastArgs)
	}
	term := domain[0].([]any)
	if term[0] != "move_id" || term[1] != "in" {
		t.Fatalf("unexpected term: %#v", term)
	}
	ids := term[2].([]any)
	if len(ids) != 2 || ids[0] != int64(7) || ids[1] != int64(9) {
		t.Fatalf("unexpected ids: %#v", ids)
	}
	fields := exec.lastKw["fields"].([]any)
	if len(fields) != 2 || fields[1] != "qty_done" {
		t.Fatalf("unexpected fields: %#v", exec.lastKw)
	}
	if exec.lastKw["limit"] != 10 {
		t.Fatalf("expected extra kwargs to pass through, got %#v", exec.lastKw)
	}
}

func TestKindOf_ClassifiesForeignErrors(t *testing.T) {
	tests := []struct {
		err    error
		expect ErrorKind
	}{
		{errors.New("request error: bad status code - 429"), KindRateLimited},
		{errors.New("429 Too Many Requests"), KindRateLimited},
		{errors.New("500 Internal Server Error"), KindRemoteProtocol},
		{ErrAuthenticationFailed, KindAuthentication},
		{&FetchError{Kind: KindExhaustedRetries, Err: rateLimited()}, KindExhaustedRetries},
	}
	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.expect {
			t.Errorf("KindOf(%q) = %s, want %s", tt.err, got, tt.expect)
		}
	}
}
