// Package core has the audit pipeline: extraction, derivation, aggregation and orchestration.
package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/pagepulse/internal/contract"
	"github.com/huangsam/pagepulse/internal/logging"
	"github.com/huangsam/pagepulse/internal/metrics"
	"github.com/sirupsen/logrus"
)

// Auditor runs audits end to end: rate limit, normalize, fetch, extract, store, prune.
// It holds no mutable state of its own, so one Auditor serves concurrent requests.
type Auditor struct {
	provider contract.AuditProvider
	store    contract.Store
	limiter  *RateLimiter
	log      logrus.FieldLogger
	metrics  *metrics.Recorder
	now      contract.Clock
	newID    func() string

	batchWorkers int
	batchQPS     float64
}

// Option customizes an Auditor.
type Option func(*Auditor)

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(a *Auditor) { a.log = log }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Recorder) Option {
	return func(a *Auditor) { a.metrics = m }
}

// WithClock sets the clock used for timestamps and windows.
func WithClock(now contract.Clock) Option {
	return func(a *Auditor) { a.now = now }
}

// WithIDGenerator sets the run and site ID generator.
func WithIDGenerator(newID func() string) Option {
	return func(a *Auditor) { a.newID = newID }
}

// WithBatch sets batch concurrency and provider pacing. qps <= 0 disables pacing.
func WithBatch(workers int, qps float64) Option {
	return func(a *Auditor) {
		a.batchWorkers = workers
		a.batchQPS = qps
	}
}

// NewAuditor wires an Auditor over a provider and a store.
func NewAuditor(provider contract.AuditProvider, store contract.Store, opts ...Option) *Auditor {
	a := &Auditor{
		provider:     provider,
		store:        store,
		log:          logging.Discard(),
		now:          time.Now,
		newID:        uuid.NewString,
		batchWorkers: 1,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.batchWorkers < 1 {
		a.batchWorkers = 1
	}
	a.limiter = NewRateLimiter(store, a.now)
	return a
}

// Limiter returns the rate limiter used by Trigger.
func (a *Auditor) Limiter() *RateLimiter { return a.limiter }
