// Package dispatch is the resilience layer between the tool façade and
// the backend transports. It fingerprints each request, consults the
// response cache, bounds backend concurrency, runs each attempt under a
// timeout, retries transient failures with geometric backoff, and tags
// every exchange with a request id that correlates log entries to the
// failure surfaced to the caller.
package dispatch

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/codexmcp/codexmcp/internal/backend"
	"github.com/codexmcp/codexmcp/internal/cache"
)

// Request is one tool call's worth of work, immutable once built.
// TemplateID, Params, Model and Options identify its semantic content for
// fingerprinting; Prompt is the rendered text sent to the backend.
type Request struct {
	TemplateID string
	Params     map[string]string
	Prompt     string
	Model      string
	Options    backend.Options
}

// Result is a successful resolution. Attempts is zero for cache hits —
// no backend call happened.
type Result struct {
	Text      string
	Attempts  int
	CacheHit  bool
	RequestID string
}

// Failure is the terminal error surfaced when all attempts are exhausted
// or a non-retryable error occurs. RequestID matches the log entries for
// the raw backend exchange.
type Failure struct {
	Kind      backend.ErrorKind
	Message   string
	Attempts  int
	RequestID string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s after %d attempt(s): %s [request %s]",
		f.Kind, f.Attempts, f.Message, f.RequestID)
}

// Config tunes the resilience behaviour.
type Config struct {
	// MaxAttempts is the total number of backend invocations per request,
	// including the first. Default: 3.
	MaxAttempts int

	// InitialBackoff is the delay before the second attempt. Default: 1s.
	InitialBackoff time.Duration

	// BackoffFactor multiplies the delay between successive attempts.
	// Default: 2.
	BackoffFactor float64

	// AttemptTimeout bounds each individual invocation. Default: 2m.
	AttemptTimeout time.Duration

	// CacheTTL is how long successful responses stay servable. Default: 1h.
	CacheTTL time.Duration

	// MaxConcurrent bounds in-flight backend calls. Default: 4.
	MaxConcurrent int64
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = time.Second
	}
	if c.BackoffFactor < 1 {
		c.BackoffFactor = 2
	}
	if c.AttemptTimeout <= 0 {
		c.AttemptTimeout = 2 * time.Minute
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = time.Hour
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = 4
	}
	return c
}

// Dispatcher executes requests against one invoker and one cache.
type Dispatcher struct {
	invoker backend.Invoker
	cache   cache.Cache
	cfg     Config
	log     *zap.Logger
	sem     *semaphore.Weighted
}

// New creates a Dispatcher. Zero fields in cfg take their defaults.
func New(invoker backend.Invoker, c cache.Cache, cfg Config, log *zap.Logger) *Dispatcher {
	cfg = cfg.withDefaults()
	return &Dispatcher{
		invoker: invoker,
		cache:   c,
		cfg:     cfg,
		log:     log,
		sem:     semaphore.NewWeighted(cfg.MaxConcurrent),
	}
}

// Execute resolves req from cache or the backend. It returns either a
// *Result, a *Failure (as error), or the context's error when the caller
// cancelled mid-flight. Nothing is cached on failure or cancellation.
func (d *Dispatcher) Execute(ctx context.Context, req Request) (*Result, error) {
	id := uuid.NewString()
	fp := cache.Fingerprint(req.TemplateID, req.Model, req.Params, optionsMap(req.Options))

	if value, ok := d.cache.Get(ctx, fp); ok {
		d.log.Info("cache hit",
			zap.String("request_id", id),
			zap.String("template", req.TemplateID),
			zap.String("fingerprint", fp[:12]))
		return &Result{Text: string(value), CacheHit: true, RequestID: id}, nil
	}

	if err := d.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer d.sem.Release(1)

	var lastErr *backend.Error
	for attempt := 1; attempt <= d.cfg.MaxAttempts; attempt++ {
		text, err := d.attempt(ctx, id, attempt, req)
		if err == nil {
			if cerr := d.cache.Set(ctx, fp, []byte(text), d.cfg.CacheTTL); cerr != nil {
				d.log.Warn("cache store failed", zap.String("request_id", id), zap.Error(cerr))
			}
			return &Result{Text: text, Attempts: attempt, RequestID: id}, nil
		}
		if ctx.Err() != nil {
			// Caller cancelled; the in-flight call was abandoned.
			return nil, ctx.Err()
		}

		lastErr = backend.AsError(err)
		d.log.Warn("attempt failed",
			zap.String("request_id", id),
			zap.Int("attempt", attempt),
			zap.String("kind", string(lastErr.Kind)),
			zap.Error(lastErr))

		if !lastErr.Transient() {
			return nil, &Failure{
				Kind:      lastErr.Kind,
				Message:   lastErr.Message,
				Attempts:  attempt,
				RequestID: id,
			}
		}
		if attempt == d.cfg.MaxAttempts {
			break
		}

		delay := d.backoff(attempt)
		d.log.Info("backing off",
			zap.String("request_id", id),
			zap.Duration("delay", delay))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, &Failure{
		Kind:      lastErr.Kind,
		Message:   lastErr.Message,
		Attempts:  d.cfg.MaxAttempts,
		RequestID: id,
	}
}

// attempt runs one invocation under the per-attempt timeout, logging the
// raw exchange under the request id.
func (d *Dispatcher) attempt(ctx context.Context, id string, n int, req Request) (string, error) {
	actx, cancel := context.WithTimeout(ctx, d.cfg.AttemptTimeout)
	defer cancel()

	d.log.Info("backend request",
		zap.String("request_id", id),
		zap.Int("attempt", n),
		zap.String("transport", d.invoker.Name()),
		zap.String("template", req.TemplateID),
		zap.String("model", req.Model),
		zap.String("prompt", req.Prompt))

	text, err := d.invoker.Invoke(actx, req.Prompt, req.Model, req.Options)
	if err != nil {
		if actx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			return "", backend.Errorf(backend.KindTimeout,
				"attempt timed out after %s", d.cfg.AttemptTimeout)
		}
		return "", err
	}

	d.log.Info("backend response",
		zap.String("request_id", id),
		zap.Int("attempt", n),
		zap.String("text", text))
	return text, nil
}

// backoff returns the delay before attempt n+1: initial × factor^(n−1).
func (d *Dispatcher) backoff(attempt int) time.Duration {
	mult := math.Pow(d.cfg.BackoffFactor, float64(attempt-1))
	return time.Duration(float64(d.cfg.InitialBackoff) * mult)
}

// optionsMap flattens Options into the fingerprint input. Unset fields
// are omitted so a zero Options matches an absent one.
func optionsMap(opts backend.Options) map[string]string {
	m := make(map[string]string)
	if opts.Temperature != nil {
		m["temperature"] = strconv.FormatFloat(*opts.Temperature, 'g', -1, 64)
	}
	if opts.MaxTokens > 0 {
		m["max_tokens"] = strconv.Itoa(opts.MaxTokens)
	}
	return m
}
