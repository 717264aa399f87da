package core

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/huangsam/pagepulse/internal/contract"
	"github.com/huangsam/pagepulse/schema"
	"github.com/sirupsen/logrus"
)

// Trigger runs one audit for user and returns the persisted run.
// Input is validated and the rate limit checked before the provider is called.
func (a *Auditor) Trigger(ctx context.Context, user schema.User, req schema.AuditRequest) (*schema.Run, error) {
	if user.ID == "" {
		return nil, schema.NewError(schema.KindUnauthorized, "missing caller identity")
	}
	siteID := strings.TrimSpace(req.SiteID)
	if siteID == "" || strings.TrimSpace(req.URL) == "" || strings.TrimSpace(req.Strategy) == "" {
		return nil, schema.NewError(schema.KindInvalidInput, "siteId, url, strategy required")
	}
	target, err := contract.NormalizeURL(req.URL)
	if err != nil {
		return nil, err
	}
	strategy, err := schema.ParseStrategy(req.Strategy)
	if err != nil {
		return nil, err
	}

	if _, err := a.store.GetSite(ctx, user.ID, siteID); err != nil {
		return nil, err
	}
	if err := a.limiter.Check(ctx, user.ID); err != nil {
		if errors.Is(err, schema.ErrRateLimited) {
			a.metrics.IncRateLimited()
		}
		return nil, err
	}

	run, err := a.audit(ctx, user.ID, siteID, target, strategy)
	a.metrics.ObserveAudit(string(strategy), outcome(err))
	return run, err
}

// audit fetches, extracts, stores and prunes one run. Callers have already validated input.
func (a *Auditor) audit(ctx context.Context, userID, siteID, target string, strategy schema.Strategy) (*schema.Run, error) {
	log := a.log.WithFields(logrus.Fields{
		"site_id":  siteID,
		"strategy": string(strategy),
		"user_id":  userID,
	})

	start := time.Now()
	resp, err := a.provider.Fetch(ctx, target, strategy)
	a.metrics.ObserveProvider(string(strategy), time.Since(start))
	if err != nil {
		log.WithError(err).Warn("provider call failed")
		return nil, err
	}

	run := &schema.Run{
		ID:        a.newID(),
		SiteID:    siteID,
		UserID:    userID,
		Strategy:  strategy,
		CreatedAt: a.now().UTC(),
		Metrics:   ExtractMetrics(resp.Doc),
		Raw:       resp.Raw,
	}
	if err := a.store.InsertRun(ctx, run); err != nil {
		log.WithError(err).Error("insert run failed")
		return nil, asStorageError("insert run", err)
	}
	log = log.WithField("run_id", run.ID)

	pruned, err := a.store.PruneRuns(ctx, siteID, strategy, schema.RetainedRunsPerPair)
	if err != nil {
		log.WithError(err).Warn("prune runs failed")
	} else {
		a.metrics.AddPruned(pruned)
	}

	log.WithField("duration_ms", time.Since(start).Milliseconds()).Info("audit stored")
	return run, nil
}

// asStorageError keeps typed errors and classifies the rest as storage failures.
func asStorageError(msg string, err error) error {
	if schema.KindOf(err) != "" {
		return err
	}
	return schema.WrapError(schema.KindStorageError, msg, err)
}

// outcome labels an audit result for metrics.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if kind := schema.KindOf(err); kind != "" {
		return string(kind)
	}
	return "error"
}
